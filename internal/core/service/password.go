package service

import (
	"unicode"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

const minPasswordLength = 8

// ValidatePassword enforces the account password policy: at least 8
// characters with one uppercase letter, one lowercase letter, one digit
// and one symbol.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return domain.ErrWeakPassword
	}
	return nil
}
