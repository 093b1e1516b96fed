package ports

import (
	"context"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	// Roles is optional; when empty the default "User" role is assigned.
	Roles []string
}

// AuthService implements login, registration and token verification.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// VerifyToken checks signature, issuer, audience and expiry, and
	// returns the identity embedded in the token claims.
	VerifyToken(token string) (*domain.Identity, error)
}
