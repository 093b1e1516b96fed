package domain

import "errors"

// Sentinel errors returned by services and repositories. The HTTP layer
// maps each one to a deterministic status code.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("access forbidden")

	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrWeakPassword = errors.New("password must be at least 8 characters with uppercase, lowercase, digit and symbol")
	ErrSelfDeletion = errors.New("cannot delete your own account")

	ErrCustomerNotFound = errors.New("customer not found")

	ErrStockNotFound     = errors.New("stock item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockConflict     = errors.New("stock item was modified concurrently, retry the operation")
	ErrInvalidQuantity   = errors.New("quantity must be positive")

	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderConflict     = errors.New("order was modified concurrently, retry the operation")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidOrderState = errors.New("order cannot be deleted in its current status")
)
