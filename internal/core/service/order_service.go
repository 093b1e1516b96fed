package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
	"github.com/stillmaster/stillmaster-api/internal/pkg/metrics"
)

// OrderService orchestrates order creation, status updates and deletion
// against the inventory ledger.
type OrderService struct {
	orders    ports.OrderRepository
	customers ports.CustomerRepository
	inventory ports.InventoryService
	idem      ports.OrderIdempotencyStore
	logger    zerolog.Logger
}

func NewOrderService(
	orders ports.OrderRepository,
	customers ports.CustomerRepository,
	inventory ports.InventoryService,
	idem ports.OrderIdempotencyStore,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		customers: customers,
		inventory: inventory,
		idem:      idem,
		logger:    logger,
	}
}

// CreateOrder validates the request, snapshots product names and unit
// prices into line items, reserves stock line by line and persists the
// order with status pending. Validation failures abort before any stock
// mutation; a decrement that loses a concurrent race is compensated by
// restoring every decrement already applied, so the order commits
// all-or-nothing.
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	start := time.Now()

	if input.IdempotencyKey != "" && s.idem != nil {
		if prior := s.replay(ctx, input.IdempotencyKey); prior != nil {
			return &ports.CreateOrderResult{Order: prior, AlreadyExisted: true}, nil
		}
	}

	if len(input.Lines) == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if input.TaxAmount.Sign() < 0 || input.ShippingAmount.Sign() < 0 {
		return nil, fmt.Errorf("%w: tax and shipping amounts must be non-negative", domain.ErrInvalidQuantity)
	}

	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		metrics.OrdersRejectedTotal.WithLabelValues("customer_not_found").Inc()
		return nil, err
	}

	// Pre-validate every line and snapshot price/name before touching any
	// quantity. Availability is re-checked atomically by each decrement.
	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity.Sign() <= 0 {
			return nil, domain.ErrInvalidQuantity
		}

		stock, err := s.inventory.Lookup(ctx, line.StockID)
		if err != nil {
			metrics.OrdersRejectedTotal.WithLabelValues("stock_not_found").Inc()
			return nil, err
		}
		if stock.QuantityInStock.LessThan(line.Quantity) {
			metrics.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, stock.ProductName)
		}

		lineTotal := line.Quantity.Mul(stock.UnitPrice)
		subtotal = subtotal.Add(lineTotal)
		items = append(items, domain.OrderItem{
			StockID:     stock.ID,
			ProductName: stock.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   stock.UnitPrice,
			TotalPrice:  lineTotal,
		})
	}

	orderNumber := generateOrderNumber(time.Now().UTC())

	// Reserve stock. Each decrement is atomic per item; on a partial
	// failure the applied decrements are compensated before returning.
	applied := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if _, err := s.inventory.Decrement(ctx, item.StockID, item.Quantity, domain.ReasonOrderCreated, orderNumber); err != nil {
			s.release(ctx, applied, domain.ReasonOrderRollback, orderNumber)
			if errors.Is(err, domain.ErrInsufficientStock) {
				metrics.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
				return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, item.ProductName)
			}
			return nil, err
		}
		applied = append(applied, item)
	}

	now := time.Now().UTC()
	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}

	order := &domain.Order{
		OrderNumber:     orderNumber,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		OrderDate:       orderDate,
		Status:          domain.StatusPending,
		Subtotal:        subtotal,
		TaxAmount:       input.TaxAmount,
		ShippingAmount:  input.ShippingAmount,
		TotalAmount:     subtotal.Add(input.TaxAmount).Add(input.ShippingAmount),
		Notes:           input.Notes,
		ShippingAddress: input.ShippingAddress,
		CreatedAt:       now,
		CreatedBy:       input.CreatedBy,
		Items:           items,
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		s.release(ctx, applied, domain.ReasonOrderRollback, orderNumber)
		return nil, err
	}

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, input.IdempotencyKey, created.OrderNumber); err != nil {
			s.logger.Warn().Err(err).Str("order_number", created.OrderNumber).Msg("failed to store idempotency key")
		}
	}

	metrics.OrdersCreatedTotal.Inc()
	metrics.OrderCreationDuration.Observe(time.Since(start).Seconds())
	s.logger.Info().
		Str("order_number", created.OrderNumber).
		Str("customer_id", created.CustomerID).
		Int("lines", len(created.Items)).
		Str("total", created.TotalAmount.String()).
		Msg("order created")

	return &ports.CreateOrderResult{Order: created}, nil
}

// GetOrder returns the order or domain.ErrOrderNotFound.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// ListOrders returns all orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

// UpdateOrder applies a status transition together with the mutable
// shipping fields. Transitioning a pending order to cancelled restores
// its reserved stock at that moment; deleting the cancelled order later
// does not restore again.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, input ports.UpdateOrderInput) error {
	if !input.Status.Valid() {
		return domain.ErrInvalidTransition
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}

	prior := order.Status
	if input.Status != prior {
		if !prior.CanTransitionTo(input.Status) {
			return fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, prior, input.Status)
		}
		order.Status = input.Status
	}

	order.ShipDate = input.ShipDate
	order.Notes = input.Notes
	order.TrackingNumber = input.TrackingNumber
	now := time.Now().UTC()
	order.UpdatedAt = &now

	// The predicate write is the atomic gate for the transition: of two
	// racing updates that both read the same prior status, only one can
	// commit; the other surfaces ErrOrderConflict.
	if err := s.orders.Update(ctx, order, prior); err != nil {
		return err
	}

	// Stock is restored only after the transition has committed, so a
	// raced or retried cancellation can never restore twice.
	if order.Status == domain.StatusCancelled && prior != domain.StatusCancelled {
		s.release(ctx, order.Items, domain.ReasonOrderCancelled, order.OrderNumber)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("status", string(order.Status)).
		Msg("order updated")
	return nil
}

// DeleteOrder removes an order. Only pending and cancelled orders may be
// deleted; a pending order releases its reserved stock, a cancelled one
// had its stock restored at cancellation.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !order.Status.Deletable() {
		return fmt.Errorf("%w (status %s)", domain.ErrInvalidOrderState, order.Status)
	}

	// The delete is filtered on the status just read; a raced transition
	// or double delete misses and no stock is restored.
	if err := s.orders.Delete(ctx, id, order.Status); err != nil {
		return err
	}

	if order.Status == domain.StatusPending {
		s.release(ctx, order.Items, domain.ReasonOrderDeleted, order.OrderNumber)
	}

	s.logger.Info().Str("order_number", order.OrderNumber).Msg("order deleted")
	return nil
}

// release restores the given line quantities to stock. Failures are
// logged and skipped: a missing stock item must not block the caller's
// compensation path, and the movement trail records what was applied.
func (s *OrderService) release(ctx context.Context, items []domain.OrderItem, reason, orderNumber string) {
	for _, item := range items {
		if _, err := s.inventory.Increment(ctx, item.StockID, item.Quantity, reason, orderNumber); err != nil {
			s.logger.Error().Err(err).
				Str("stock_id", item.StockID).
				Str("order_number", orderNumber).
				Str("reason", reason).
				Msg("failed to restore stock")
		}
	}
}

// replay looks up a previously submitted order for the idempotency key.
// Lookup failures are treated as a miss; creation proceeds normally.
func (s *OrderService) replay(ctx context.Context, key string) *domain.Order {
	orderNumber, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("idempotency lookup failed, proceeding with create")
		return nil
	}
	if orderNumber == "" {
		return nil
	}

	order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil
	}

	s.logger.Info().Str("order_number", orderNumber).Msg("idempotent replay")
	return order
}

const orderNumberAlphabet = "0123456789ABCDEF"

// generateOrderNumber returns a human-readable unique order number in the
// format ORD-<yyyyMMdd>-<8 uppercase hex chars>.
func generateOrderNumber(now time.Time) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// fallback: derive the suffix from the clock
		nano := now.UnixNano()
		for i := range b {
			b[i] = byte(nano >> (i * 8))
		}
	}
	suffix := make([]byte, 8)
	for i, v := range b {
		suffix[i] = orderNumberAlphabet[int(v)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
