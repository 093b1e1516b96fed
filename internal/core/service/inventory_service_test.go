package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

// stubStockRepo is an in-memory StockRepository with the same
// compare-and-set semantics as the persistent one. onFind, when set, is
// invoked before each lookup and can mutate state mid-flight; failCAS
// makes the next n swaps report a lost race without applying.
type stubStockRepo struct {
	mu      sync.Mutex
	stocks  map[string]*domain.Stock
	onFind  func(id string)
	failCAS int
}

func newStubStockRepo(stocks ...*domain.Stock) *stubStockRepo {
	r := &stubStockRepo{stocks: make(map[string]*domain.Stock)}
	for _, s := range stocks {
		r.stocks[s.ID] = s
	}
	return r
}

func (r *stubStockRepo) FindByID(_ context.Context, id string) (*domain.Stock, error) {
	if r.onFind != nil {
		r.onFind(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stocks[id]
	if !ok {
		return nil, domain.ErrStockNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubStockRepo) CompareAndSetQuantity(_ context.Context, id string, version int64, quantity decimal.Decimal, updatedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stocks[id]
	if !ok {
		return false, nil
	}
	if r.failCAS > 0 {
		r.failCAS--
		return false, nil
	}
	if s.Version != version {
		return false, nil
	}
	s.QuantityInStock = quantity
	s.Version++
	s.UpdatedAt = &updatedAt
	return true, nil
}

func (r *stubStockRepo) quantity(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stocks[id]
	if !ok {
		t.Fatalf("stock %s not found", id)
	}
	return s.QuantityInStock
}

type capturingRecorder struct {
	mu        sync.Mutex
	movements []domain.StockMovement
}

func (c *capturingRecorder) Record(m domain.StockMovement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.movements = append(c.movements, m)
}

func (c *capturingRecorder) all() []domain.StockMovement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.StockMovement(nil), c.movements...)
}

func testStock(id string, quantity string) *domain.Stock {
	return &domain.Stock{
		ID:              id,
		ProductName:     "Single Malt " + id,
		ProductType:     "whiskey",
		QuantityInStock: decimal.RequireFromString(quantity),
		UnitOfMeasure:   "bottle",
		UnitPrice:       decimal.RequireFromString("45.50"),
		CreatedAt:       time.Now().UTC(),
	}
}

func TestInventoryService_Decrement(t *testing.T) {
	repo := newStubStockRepo(testStock("s1", "10"))
	recorder := &capturingRecorder{}
	svc := NewInventoryService(repo, recorder, zerolog.Nop())

	stock, err := svc.Decrement(context.Background(), "s1", decimal.RequireFromString("3"), domain.ReasonOrderCreated, "ORD-1")
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if !stock.QuantityInStock.Equal(decimal.RequireFromString("7")) {
		t.Fatalf("expected quantity 7, got %s", stock.QuantityInStock)
	}
	if got := repo.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("7")) {
		t.Fatalf("expected stored quantity 7, got %s", got)
	}

	movements := recorder.all()
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	m := movements[0]
	if m.Direction != domain.MovementOut || m.Reason != domain.ReasonOrderCreated || m.OrderNumber != "ORD-1" {
		t.Fatalf("unexpected movement: %+v", m)
	}
	if !m.Quantity.Equal(decimal.RequireFromString("3")) || !m.Resulting.Equal(decimal.RequireFromString("7")) {
		t.Fatalf("unexpected movement amounts: %+v", m)
	}
}

func TestInventoryService_Decrement_ToExactlyZero(t *testing.T) {
	repo := newStubStockRepo(testStock("s1", "4"))
	svc := NewInventoryService(repo, nil, zerolog.Nop())

	stock, err := svc.Decrement(context.Background(), "s1", decimal.RequireFromString("4"), domain.ReasonManualAdjust, "")
	if err != nil {
		t.Fatalf("decrement to zero failed: %v", err)
	}
	if !stock.QuantityInStock.IsZero() {
		t.Fatalf("expected zero quantity, got %s", stock.QuantityInStock)
	}
}

func TestInventoryService_Decrement_Insufficient(t *testing.T) {
	repo := newStubStockRepo(testStock("s1", "2"))
	recorder := &capturingRecorder{}
	svc := NewInventoryService(repo, recorder, zerolog.Nop())

	_, err := svc.Decrement(context.Background(), "s1", decimal.RequireFromString("3"), domain.ReasonOrderCreated, "ORD-1")
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := repo.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("quantity changed on failed decrement: %s", got)
	}
	if len(recorder.all()) != 0 {
		t.Fatalf("expected no movements on failed decrement")
	}
}

func TestInventoryService_Decrement_NotFound(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewInventoryService(repo, nil, zerolog.Nop())

	_, err := svc.Decrement(context.Background(), "missing", decimal.RequireFromString("1"), domain.ReasonManualAdjust, "")
	if !errors.Is(err, domain.ErrStockNotFound) {
		t.Fatalf("expected ErrStockNotFound, got %v", err)
	}
}

func TestInventoryService_InvalidQuantity(t *testing.T) {
	repo := newStubStockRepo(testStock("s1", "10"))
	svc := NewInventoryService(repo, nil, zerolog.Nop())

	for _, q := range []string{"0", "-1"} {
		if _, err := svc.Decrement(context.Background(), "s1", decimal.RequireFromString(q), domain.ReasonManualAdjust, ""); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("decrement %s: expected ErrInvalidQuantity, got %v", q, err)
		}
		if _, err := svc.Increment(context.Background(), "s1", decimal.RequireFromString(q), domain.ReasonManualAdjust, ""); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("increment %s: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
}

func TestInventoryService_Increment(t *testing.T) {
	repo := newStubStockRepo(testStock("s1", "1.5"))
	svc := NewInventoryService(repo, nil, zerolog.Nop())

	stock, err := svc.Increment(context.Background(), "s1", decimal.RequireFromString("2.5"), domain.ReasonOrderCancelled, "ORD-2")
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if !stock.QuantityInStock.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected quantity 4, got %s", stock.QuantityInStock)
	}
}

func TestInventoryService_RetriesLostRace(t *testing.T) {
	repo := newStubStockRepo(testStock("s1", "10"))
	repo.failCAS = 2
	svc := NewInventoryService(repo, nil, zerolog.Nop())

	stock, err := svc.Decrement(context.Background(), "s1", decimal.RequireFromString("4"), domain.ReasonManualAdjust, "")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if !stock.QuantityInStock.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected quantity 6, got %s", stock.QuantityInStock)
	}
}

func TestInventoryService_ConflictAfterRetriesExhausted(t *testing.T) {
	repo := newStubStockRepo(testStock("s1", "10"))
	repo.failCAS = casRetries
	svc := NewInventoryService(repo, nil, zerolog.Nop())

	_, err := svc.Decrement(context.Background(), "s1", decimal.RequireFromString("1"), domain.ReasonManualAdjust, "")
	if !errors.Is(err, domain.ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}
	if got := repo.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("quantity changed despite conflict: %s", got)
	}
}

func TestInventoryService_ConcurrentDecrements_OneWinner(t *testing.T) {
	repo := newStubStockRepo(testStock("s1", "5"))
	svc := NewInventoryService(repo, nil, zerolog.Nop())

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Decrement(context.Background(), "s1", decimal.RequireFromString("3"), domain.ReasonOrderCreated, "ORD-race")
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one winner, got ok=%d insufficient=%d", ok, insufficient)
	}
	if got := repo.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected final quantity 2, got %s", got)
	}
}
