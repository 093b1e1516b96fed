package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

// toCreateOrderInput maps the HTTP request to the service DTO, parsing
// monetary strings into decimals. Malformed numbers fail with 400 before
// any service call.
func toCreateOrderInput(req createOrderRequest, createdBy, idempotencyKey string) (ports.CreateOrderInput, error) {
	tax, err := parseAmount(req.TaxAmount, "tax_amount")
	if err != nil {
		return ports.CreateOrderInput{}, err
	}
	shipping, err := parseAmount(req.ShippingAmount, "shipping_amount")
	if err != nil {
		return ports.CreateOrderInput{}, err
	}

	lines := make([]ports.OrderLineInput, 0, len(req.OrderItems))
	for i, item := range req.OrderItems {
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return ports.CreateOrderInput{}, echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("order_items[%d].quantity is not a valid number", i))
		}
		lines = append(lines, ports.OrderLineInput{StockID: item.StockID, Quantity: quantity})
	}

	input := ports.CreateOrderInput{
		CustomerID:      req.CustomerID,
		TaxAmount:       tax,
		ShippingAmount:  shipping,
		Notes:           req.Notes,
		ShippingAddress: req.ShippingAddress,
		Lines:           lines,
		CreatedBy:       createdBy,
		IdempotencyKey:  idempotencyKey,
	}
	if req.OrderDate != nil {
		input.OrderDate = *req.OrderDate
	}
	return input, nil
}

// parseAmount parses an optional non-negative monetary field; empty means zero.
func parseAmount(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, echo.NewHTTPError(http.StatusBadRequest, field+" is not a valid number")
	}
	if d.Sign() < 0 {
		return decimal.Zero, echo.NewHTTPError(http.StatusBadRequest, field+" must be non-negative")
	}
	return d, nil
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			StockID:     it.StockID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.String(),
			TotalPrice:  it.TotalPrice.String(),
		})
	}
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		OrderDate:       o.OrderDate,
		ShipDate:        o.ShipDate,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal.String(),
		TaxAmount:       o.TaxAmount.String(),
		ShippingAmount:  o.ShippingAmount.String(),
		TotalAmount:     o.TotalAmount.String(),
		Notes:           o.Notes,
		ShippingAddress: o.ShippingAddress,
		TrackingNumber:  o.TrackingNumber,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		CreatedBy:       o.CreatedBy,
		OrderItems:      items,
	}
}
