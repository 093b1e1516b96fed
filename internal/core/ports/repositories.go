package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

// UserRepository defines persistence for the credential store.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// CustomerRepository resolves customers referenced by orders.
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
}

// StockRepository defines persistence for stock items. Quantity changes
// go through CompareAndSetQuantity, which applies the new quantity only
// when the stored version still matches; the boolean result reports
// whether the swap took effect.
type StockRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Stock, error)
	CompareAndSetQuantity(ctx context.Context, id string, version int64, quantity decimal.Decimal, updatedAt time.Time) (bool, error)
}

// OrderRepository defines persistence for orders and their embedded line
// items. Update and Delete are predicate writes: they commit only while
// the stored status still equals from, so a status transition read by two
// callers can only be applied by one of them.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	// Update persists the mutable order fields. A write that misses
	// because the status changed underneath surfaces domain.ErrOrderConflict.
	Update(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
	// Delete removes the order only while its status still equals from.
	Delete(ctx context.Context, id string, from domain.OrderStatus) error
}

// MovementRepository persists stock movement audit records.
type MovementRepository interface {
	Insert(ctx context.Context, m *domain.StockMovement) error
}
