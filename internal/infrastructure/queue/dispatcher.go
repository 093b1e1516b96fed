package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
	"github.com/stillmaster/stillmaster-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// MovementWriter persists stock movement audit records off the ledger's
// write path. Records are routed to a fixed set of workers by hashing the
// stock id, so movements of one item are written in the order they were
// applied.
type MovementWriter struct {
	workers []chan domain.StockMovement
	repo    ports.MovementRepository
	log     zerolog.Logger
}

// NewMovementWriter creates a MovementWriter with numWorkers sharded
// workers. If numWorkers <= 0, defaultWorkers is used.
func NewMovementWriter(numWorkers int, repo ports.MovementRepository, log zerolog.Logger) *MovementWriter {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	w := &MovementWriter{
		workers: make([]chan domain.StockMovement, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range w.workers {
		w.workers[i] = make(chan domain.StockMovement, channelBuffer)
	}
	return w
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (w *MovementWriter) Start(ctx context.Context) {
	for i, ch := range w.workers {
		go w.runWorker(ctx, i, ch)
	}
}

// Record enqueues a movement for its stock item's worker. When the worker
// channel is full the record is dropped with an error log rather than
// blocking the ledger.
func (w *MovementWriter) Record(m domain.StockMovement) {
	idx := w.shardIndex(m.StockID)
	select {
	case w.workers[idx] <- m:
		metrics.MovementQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(w.workers[idx])))
	default:
		w.log.Error().
			Str("stock_id", m.StockID).
			Str("reason", m.Reason).
			Msg("movement queue full, audit record dropped")
	}
}

// shardIndex maps a stock id deterministically to a worker index.
func (w *MovementWriter) shardIndex(stockID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(stockID))
	return int(h.Sum32()) % len(w.workers)
}

func (w *MovementWriter) runWorker(ctx context.Context, id int, ch <-chan domain.StockMovement) {
	gauge := metrics.MovementQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			gauge.Set(float64(len(ch)))
			if err := w.repo.Insert(ctx, &m); err != nil {
				w.log.Error().Err(err).
					Str("stock_id", m.StockID).
					Int("worker_id", id).
					Msg("failed to write stock movement")
			}
		}
	}
}
