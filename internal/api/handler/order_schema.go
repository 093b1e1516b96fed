package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type orderLineRequest struct {
	StockID  string `json:"stock_id" validate:"required"`
	Quantity string `json:"quantity" validate:"required"`
}

type createOrderRequest struct {
	CustomerID      string             `json:"customer_id" validate:"required"`
	OrderDate       *time.Time         `json:"order_date,omitempty"`
	TaxAmount       string             `json:"tax_amount,omitempty"`
	ShippingAmount  string             `json:"shipping_amount,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	ShippingAddress string             `json:"shipping_address,omitempty"`
	OrderItems      []orderLineRequest `json:"order_items" validate:"required,min=1,dive"`
}

type updateOrderRequest struct {
	Status         string     `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled refunded"`
	ShipDate       *time.Time `json:"ship_date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes. Monetary values render as decimal strings.

type orderItemResponse struct {
	StockID     string `json:"stock_id"`
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      string              `json:"customer_id"`
	CustomerName    string              `json:"customer_name"`
	OrderDate       time.Time           `json:"order_date"`
	ShipDate        *time.Time          `json:"ship_date,omitempty"`
	Status          string              `json:"status"`
	Subtotal        string              `json:"subtotal"`
	TaxAmount       string              `json:"tax_amount"`
	ShippingAmount  string              `json:"shipping_amount"`
	TotalAmount     string              `json:"total_amount"`
	Notes           string              `json:"notes,omitempty"`
	ShippingAddress string              `json:"shipping_address,omitempty"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       *time.Time          `json:"updated_at,omitempty"`
	CreatedBy       string              `json:"created_by"`
	OrderItems      []orderItemResponse `json:"order_items"`
}
