package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

// UserHandler is the administrative surface over the credential store.
// List, Create, Update and Delete sit behind Admin RBAC in the router;
// Get additionally allows users to read their own account.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Email     string   `json:"email"      validate:"required,email"`
	Password  string   `json:"password"   validate:"required"`
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name"  validate:"required"`
	Roles     []string `json:"roles,omitempty"`
}

type updateUserRequest struct {
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name"  validate:"required"`
	IsActive  bool     `json:"is_active"`
	Roles     []string `json:"roles,omitempty"`
}

// List handles GET /api/v1/users. Admin only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/v1/users/:id. Users may read their own account;
// anything else requires the Admin role.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id != identity.UserID && !identity.HasRole(domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	user, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Create handles POST /api/v1/users. Admin only.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.CreateUser(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update handles PUT /api/v1/users/:id. Admin only.
//
// @Summary      Update a user's names, active flag and roles
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string             true  "User id"
// @Param        body  body  updateUserRequest  true  "User update"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		Roles:     req.Roles,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/users/:id. Admin only; deleting the
// calling account is rejected.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id"), identity.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
