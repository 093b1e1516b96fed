package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

func runRBAC(t *testing.T, roles []string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roles != nil {
		c.Set(CtxRoles, roles)
	}

	handler := RBAC(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestRBAC_AllowsMatchingRole(t *testing.T) {
	rec := runRBAC(t, []string{domain.RoleManager}, domain.RoleAdmin, domain.RoleManager)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_ForbidsMissingRole(t *testing.T) {
	rec := runRBAC(t, []string{domain.RoleUser}, domain.RoleAdmin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRBAC_ForbidsWithoutIdentity(t *testing.T) {
	rec := runRBAC(t, nil, domain.RoleAdmin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
