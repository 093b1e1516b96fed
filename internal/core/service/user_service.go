package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

// UserService is the administrative surface over the credential store.
// Account creation reuses the registration path so the password policy
// and duplicate checks apply uniformly.
type UserService struct {
	repo   ports.UserRepository
	auth   ports.AuthService
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, auth ports.AuthService, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, auth: auth, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	user, err := s.auth.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user created")
	return user, nil
}

// UpdateUser changes names, the active flag and role membership. Unknown
// role names are dropped; an empty resulting set falls back to "User" so
// no account ends up roleless.
func (s *UserService) UpdateUser(ctx context.Context, id string, input ports.UpdateUserInput) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	roles := make([]string, 0, len(input.Roles))
	for _, r := range input.Roles {
		if domain.IsKnownRole(r) {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.IsActive = input.IsActive
	user.Roles = roles

	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Bool("active", input.IsActive).Msg("user updated")
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return domain.ErrSelfDeletion
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
