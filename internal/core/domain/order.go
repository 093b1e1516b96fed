package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// validTransitions defines the allowed state machine transitions.
// Pending is the only source state; every other status is terminal for
// explicit updates (re-setting the current status is treated as a no-op
// by the workflow, not as a transition).
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Deletable reports whether an order in this status may be removed.
// Pending deletion releases reserved stock; cancelled orders had their
// stock restored at cancellation time.
func (s OrderStatus) Deletable() bool {
	return s == StatusPending || s == StatusCancelled
}

// Valid reports whether s is one of the recognised statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// OrderItem is a value copy of stock data taken at order time. Later
// stock edits never change historical orders.
type OrderItem struct {
	StockID     string          `json:"stock_id" bson:"stock_id"`
	ProductName string          `json:"product_name" bson:"product_name"`
	Quantity    decimal.Decimal `json:"quantity" bson:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" bson:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price" bson:"total_price"`
}

// Order is a customer purchase request composed of line items.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	OrderDate       time.Time       `json:"order_date"`
	ShipDate        *time.Time      `json:"ship_date,omitempty"`
	Status          OrderStatus     `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	ShippingAmount  decimal.Decimal `json:"shipping_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Notes           string          `json:"notes,omitempty"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	CreatedBy       string          `json:"created_by"`
	Items           []OrderItem     `json:"order_items"`
}
