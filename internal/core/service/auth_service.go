package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

// AuthService implements login, registration and stateless token
// verification. Tokens carry identity and role claims only; there is no
// server-side session, so logout is client-side token discard.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret string
	issuer    string
	audience  string
	tokenTTL  time.Duration
}

func NewAuthService(repo ports.UserRepository, jwtSecret, issuer, audience string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		jwtSecret: jwtSecret,
		issuer:    issuer,
		audience:  audience,
		tokenTTL:  tokenTTL,
	}
}

// Login validates credentials and issues a signed token. A missing user,
// an inactive account and a wrong password all surface
// domain.ErrInvalidCredentials so callers cannot probe which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.repo.Update(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user, now)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Register creates a new account with the default "User" role unless
// explicit roles are given. Unknown role names are dropped silently.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
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

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}

	return s.repo.Create(ctx, user)
}

// VerifyToken parses and validates a token and extracts the identity claims.
func (s *AuthService) VerifyToken(token string) (*domain.Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(s.jwtSecret), nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	identity := &domain.Identity{}
	identity.UserID, _ = claims["sub"].(string)
	identity.Email, _ = claims["email"].(string)
	identity.Name, _ = claims["name"].(string)
	if rawRoles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range rawRoles {
			if role, ok := r.(string); ok {
				identity.Roles = append(identity.Roles, role)
			}
		}
	}
	if identity.UserID == "" {
		return nil, domain.ErrInvalidToken
	}

	return identity, nil
}

func (s *AuthService) generateToken(user *domain.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.FullName(),
		"roles": user.Roles,
		"jti":   uuid.NewString(),
		"iss":   s.issuer,
		"aud":   s.audience,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
