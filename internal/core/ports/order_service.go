package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

// OrderLineInput is one requested line of an order.
type OrderLineInput struct {
	StockID  string
	Quantity decimal.Decimal
}

// CreateOrderInput carries all data needed to create an order.
type CreateOrderInput struct {
	CustomerID      string
	OrderDate       time.Time
	TaxAmount       decimal.Decimal
	ShippingAmount  decimal.Decimal
	Notes           string
	ShippingAddress string
	Lines           []OrderLineInput
	// CreatedBy is the authenticated caller's email.
	CreatedBy string
	// IdempotencyKey, when non-empty, makes resubmissions of the same
	// request return the previously created order without side effects.
	IdempotencyKey string
}

// CreateOrderResult wraps the created order. AlreadyExisted is true when
// the idempotency key matched a previous submission.
type CreateOrderResult struct {
	Order          *domain.Order
	AlreadyExisted bool
}

// UpdateOrderInput carries the mutable order fields.
type UpdateOrderInput struct {
	Status         domain.OrderStatus
	ShipDate       *time.Time
	Notes          string
	TrackingNumber string
}

// OrderService orchestrates order creation, status updates and deletion
// against the inventory ledger.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, id string, input UpdateOrderInput) error
	DeleteOrder(ctx context.Context, id string) error
}

// OrderIdempotencyStore maps idempotency keys to order numbers for a
// bounded window.
type OrderIdempotencyStore interface {
	// Lookup returns the order number stored for key, or "" when unseen.
	Lookup(ctx context.Context, key string) (string, error)
	Remember(ctx context.Context, key, orderNumber string) error
}
