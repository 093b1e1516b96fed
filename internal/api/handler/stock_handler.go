package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

// StockHandler exposes the inventory ledger: lookup and manual adjustment.
type StockHandler struct {
	inventory ports.InventoryService
}

func NewStockHandler(inventory ports.InventoryService) *StockHandler {
	return &StockHandler{inventory: inventory}
}

type adjustStockRequest struct {
	Direction string `json:"direction" validate:"required,oneof=in out"`
	Quantity  string `json:"quantity"  validate:"required"`
	Reason    string `json:"reason,omitempty"`
}

type stockResponse struct {
	ID              string `json:"id"`
	ProductName     string `json:"product_name"`
	ProductType     string `json:"product_type"`
	BatchNumber     string `json:"batch_number,omitempty"`
	QuantityInStock string `json:"quantity_in_stock"`
	UnitOfMeasure   string `json:"unit_of_measure"`
	UnitPrice       string `json:"unit_price"`
	Location        string `json:"location"`
}

func toStockResponse(s *domain.Stock) stockResponse {
	return stockResponse{
		ID:              s.ID,
		ProductName:     s.ProductName,
		ProductType:     s.ProductType,
		BatchNumber:     s.BatchNumber,
		QuantityInStock: s.QuantityInStock.String(),
		UnitOfMeasure:   s.UnitOfMeasure,
		UnitPrice:       s.UnitPrice.String(),
		Location:        s.Location,
	}
}

// Get handles GET /api/v1/stocks/:id.
//
// @Summary      Get a stock item by id
// @Tags         stocks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Stock id"
// @Success      200  {object}  stockResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/stocks/{id} [get]
func (h *StockHandler) Get(c echo.Context) error {
	stock, err := h.inventory.Lookup(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "stock item not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, toStockResponse(stock))
}

// Adjust handles POST /api/v1/stocks/:id/adjust: a manual ledger
// correction. Admin and Manager only.
//
// @Summary      Adjust a stock item's quantity-on-hand
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Stock id"
// @Param        body  body      adjustStockRequest  true  "Adjustment"
// @Success      200   {object}  stockResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/stocks/{id}/adjust [post]
func (h *StockHandler) Adjust(c echo.Context) error {
	var req adjustStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity is not a valid number")
	}

	reason := req.Reason
	if reason == "" {
		reason = domain.ReasonManualAdjust
	}

	var stock *domain.Stock
	id := c.Param("id")
	if req.Direction == domain.MovementIn {
		stock, err = h.inventory.Increment(c.Request().Context(), id, quantity, reason, "")
	} else {
		stock, err = h.inventory.Decrement(c.Request().Context(), id, quantity, reason, "")
	}
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "stock item not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, toStockResponse(stock))
}
