package ports

import (
	"context"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

// UpdateUserInput carries the fields an administrator may change.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	IsActive  bool
	Roles     []string
}

// UserService is the administrative surface over the credential store.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, input RegisterInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, input UpdateUserInput) error
	// DeleteUser removes an account. Fails with domain.ErrSelfDeletion
	// when id matches actorID.
	DeleteUser(ctx context.Context, id, actorID string) error
}
