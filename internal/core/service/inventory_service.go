package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
	"github.com/stillmaster/stillmaster-api/internal/pkg/metrics"
)

// casRetries bounds how often a quantity update is retried after losing
// an optimistic-concurrency race before giving up with ErrStockConflict.
const casRetries = 5

// InventoryService is the ledger over stock quantity-on-hand. Each
// adjustment is a read-check-write cycle committed with a versioned
// compare-and-set, so concurrent adjustments against the same item
// serialise at the store instead of in process memory. Applied
// adjustments are mirrored into the movement audit trail.
type InventoryService struct {
	repo      ports.StockRepository
	movements ports.MovementRecorder
	logger    zerolog.Logger
}

func NewInventoryService(repo ports.StockRepository, movements ports.MovementRecorder, logger zerolog.Logger) *InventoryService {
	return &InventoryService{repo: repo, movements: movements, logger: logger}
}

// Lookup returns the stock item or domain.ErrStockNotFound.
func (s *InventoryService) Lookup(ctx context.Context, stockID string) (*domain.Stock, error) {
	return s.repo.FindByID(ctx, stockID)
}

// Decrement reduces quantity-on-hand by quantity. The availability check
// and the write commit as one atomic unit: when the CAS loses the race
// the availability is re-checked against the fresh document, so two
// concurrent decrements can never drive the quantity below zero.
func (s *InventoryService) Decrement(ctx context.Context, stockID string, quantity decimal.Decimal, reason, orderNumber string) (*domain.Stock, error) {
	if quantity.Sign() <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	stock, err := s.adjust(ctx, stockID, quantity.Neg())
	if err != nil {
		return nil, err
	}

	metrics.StockAdjustmentsTotal.WithLabelValues(domain.MovementOut, reason).Inc()
	s.record(stock, domain.MovementOut, quantity, reason, orderNumber)
	return stock, nil
}

// Increment restores quantity-on-hand by quantity. Succeeds for any
// positive quantity as long as the item exists.
func (s *InventoryService) Increment(ctx context.Context, stockID string, quantity decimal.Decimal, reason, orderNumber string) (*domain.Stock, error) {
	if quantity.Sign() <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	stock, err := s.adjust(ctx, stockID, quantity)
	if err != nil {
		return nil, err
	}

	metrics.StockAdjustmentsTotal.WithLabelValues(domain.MovementIn, reason).Inc()
	s.record(stock, domain.MovementIn, quantity, reason, orderNumber)
	return stock, nil
}

// adjust applies a signed quantity delta with an optimistic-concurrency
// retry loop. Returns the stock item as committed.
func (s *InventoryService) adjust(ctx context.Context, stockID string, delta decimal.Decimal) (*domain.Stock, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		stock, err := s.repo.FindByID(ctx, stockID)
		if err != nil {
			return nil, err
		}

		newQuantity := stock.QuantityInStock.Add(delta)
		if newQuantity.Sign() < 0 {
			return nil, domain.ErrInsufficientStock
		}

		now := time.Now().UTC()
		swapped, err := s.repo.CompareAndSetQuantity(ctx, stockID, stock.Version, newQuantity, now)
		if err != nil {
			return nil, err
		}
		if swapped {
			stock.QuantityInStock = newQuantity
			stock.Version++
			stock.UpdatedAt = &now
			return stock, nil
		}

		s.logger.Debug().
			Str("stock_id", stockID).
			Int("attempt", attempt+1).
			Msg("stock version conflict, retrying")
	}

	return nil, domain.ErrStockConflict
}

func (s *InventoryService) record(stock *domain.Stock, direction string, quantity decimal.Decimal, reason, orderNumber string) {
	if s.movements == nil {
		return
	}
	s.movements.Record(domain.StockMovement{
		StockID:     stock.ID,
		Direction:   direction,
		Quantity:    quantity,
		Resulting:   stock.QuantityInStock,
		Reason:      reason,
		OrderNumber: orderNumber,
		CreatedAt:   time.Now().UTC(),
	})
}
