package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

type capturingMovementRepo struct {
	mu        sync.Mutex
	movements []domain.StockMovement
}

func (r *capturingMovementRepo) Insert(_ context.Context, m *domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *capturingMovementRepo) waitFor(t *testing.T, n int) []domain.StockMovement {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.movements) >= n {
			out := append([]domain.StockMovement(nil), r.movements...)
			r.mu.Unlock()
			return out
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d movements", n)
	return nil
}

func movement(stockID, reason string) domain.StockMovement {
	return domain.StockMovement{
		StockID:   stockID,
		Direction: domain.MovementOut,
		Quantity:  decimal.RequireFromString("1"),
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMovementWriter_PersistsRecords(t *testing.T) {
	repo := &capturingMovementRepo{}
	w := NewMovementWriter(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Record(movement("s1", domain.ReasonOrderCreated))
	w.Record(movement("s2", domain.ReasonOrderCancelled))
	w.Record(movement("s1", domain.ReasonOrderDeleted))

	got := repo.waitFor(t, 3)
	byStock := make(map[string]int)
	for _, m := range got {
		byStock[m.StockID]++
	}
	if byStock["s1"] != 2 || byStock["s2"] != 1 {
		t.Fatalf("unexpected movements: %v", byStock)
	}
}

func TestMovementWriter_SameStockKeepsOrder(t *testing.T) {
	repo := &capturingMovementRepo{}
	w := NewMovementWriter(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	reasons := []string{domain.ReasonOrderCreated, domain.ReasonOrderRollback, domain.ReasonOrderDeleted}
	for _, r := range reasons {
		w.Record(movement("s1", r))
	}

	got := repo.waitFor(t, 3)
	for i, m := range got {
		if m.Reason != reasons[i] {
			t.Fatalf("movement %d out of order: got %s, want %s", i, m.Reason, reasons[i])
		}
	}
}

func TestMovementWriter_ShardIsStable(t *testing.T) {
	w := NewMovementWriter(4, &capturingMovementRepo{}, zerolog.Nop())
	for _, id := range []string{"s1", "s2", "abc", ""} {
		first := w.shardIndex(id)
		for i := 0; i < 10; i++ {
			if w.shardIndex(id) != first {
				t.Fatalf("shard index for %q is not stable", id)
			}
		}
	}
}

func TestMovementWriter_DropsWhenQueueFull(t *testing.T) {
	repo := &capturingMovementRepo{}
	// workers never started, so the channel fills and further records drop
	w := NewMovementWriter(1, repo, zerolog.Nop())

	for i := 0; i < channelBuffer+10; i++ {
		w.Record(movement("s1", domain.ReasonManualAdjust))
	}
	if got := len(w.workers[0]); got != channelBuffer {
		t.Fatalf("expected %d queued records, got %d", channelBuffer, got)
	}
}
