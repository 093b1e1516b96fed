package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

// InventoryService is the ledger over stock quantity-on-hand. Decrement
// and Increment are atomic per stock item relative to concurrent calls:
// two concurrent decrements that together exceed the quantity-on-hand
// never both succeed.
type InventoryService interface {
	Lookup(ctx context.Context, stockID string) (*domain.Stock, error)
	// Decrement reduces quantity-on-hand. Fails with
	// domain.ErrInsufficientStock when the item holds less than quantity.
	Decrement(ctx context.Context, stockID string, quantity decimal.Decimal, reason, orderNumber string) (*domain.Stock, error)
	// Increment restores quantity-on-hand. Always succeeds when the item exists.
	Increment(ctx context.Context, stockID string, quantity decimal.Decimal, reason, orderNumber string) (*domain.Stock, error)
}

// MovementRecorder accepts stock movement audit records for asynchronous
// persistence. Record never blocks the ledger write path.
type MovementRecorder interface {
	Record(m domain.StockMovement)
}
