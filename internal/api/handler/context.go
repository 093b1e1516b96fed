package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stillmaster/stillmaster-api/internal/api/middleware"
	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// fast-fails before any service call: a missing user id means the
// middleware did not run for this route.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	email, _ := c.Get(middleware.CtxEmail).(string)
	name, _ := c.Get(middleware.CtxName).(string)
	roles, _ := c.Get(middleware.CtxRoles).([]string)

	return &domain.Identity{
		UserID: userID,
		Email:  email,
		Name:   name,
		Roles:  roles,
	}, nil
}
