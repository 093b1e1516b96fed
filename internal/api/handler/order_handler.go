package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /api/v1/orders.
//
// @Summary      Create a new order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createOrderRequest  true   "Order details"
// @Success      201              {object}  orderResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	input, err := toCreateOrderInput(req, identity.Email, c.Request().Header.Get("Idempotency-Key"))
	if err != nil {
		return err
	}

	result, err := h.service.CreateOrder(c.Request().Context(), input)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toOrderResponse(result.Order))
}

// List handles GET /api/v1/orders.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   orderResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.service.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/orders/:id.
//
// @Summary      Get an order by id
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// Update handles PUT /api/v1/orders/:id.
//
// @Summary      Update an order's status and shipping fields
// @Tags         orders
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string              true  "Order id"
// @Param        body  body  updateOrderRequest  true  "Order update"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/orders/{id} [put]
func (h *OrderHandler) Update(c echo.Context) error {
	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.service.UpdateOrder(c.Request().Context(), c.Param("id"), ports.UpdateOrderInput{
		Status:         domain.OrderStatus(req.Status),
		ShipDate:       req.ShipDate,
		Notes:          req.Notes,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/orders/:id.
//
// @Summary      Delete a pending or cancelled order
// @Tags         orders
// @Security     BearerAuth
// @Param        id  path  string  true  "Order id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
