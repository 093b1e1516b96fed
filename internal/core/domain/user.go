package domain

import "time"

const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleUser    = "User"
)

// KnownRoles is the fixed set of roles the system recognises.
var KnownRoles = []string{RoleAdmin, RoleManager, RoleUser}

// IsKnownRole reports whether role is one of the recognised role names.
func IsKnownRole(role string) bool {
	for _, r := range KnownRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User models an account in the credential store.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsActive     bool       `json:"is_active"`
	Roles        []string   `json:"roles"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// FullName returns the display name embedded in issued tokens.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Identity is the authenticated principal decoded from a token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Roles  []string
}

// HasRole reports whether the identity carries the given role claim.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
