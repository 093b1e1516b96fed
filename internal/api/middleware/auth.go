package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

// Context keys populated by Auth.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxName   = "name"
	CtxRoles  = "roles"
)

// Auth validates the bearer token and injects the identity into context.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			identity, err := auth.VerifyToken(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxUserID, identity.UserID)
			c.Set(CtxEmail, identity.Email)
			c.Set(CtxName, identity.Name)
			c.Set(CtxRoles, identity.Roles)

			return next(c)
		}
	}
}
