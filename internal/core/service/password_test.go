package service

import (
	"testing"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

func TestValidatePassword(t *testing.T) {
	valid := []string{
		"Abcdef1!",
		"Str0ng!password",
		"P@ssw0rd with spaces",
		"Ünïcode1!",
	}
	for _, pw := range valid {
		if err := ValidatePassword(pw); err != nil {
			t.Fatalf("password %q: expected valid, got %v", pw, err)
		}
	}

	invalid := []string{
		"",
		"Ab1!xyz",          // 7 chars
		"abcdefg1!",        // no uppercase
		"ABCDEFG1!",        // no lowercase
		"Abcdefgh!",        // no digit
		"Abcdefgh1",        // no symbol
	}
	for _, pw := range invalid {
		if err := ValidatePassword(pw); err != domain.ErrWeakPassword {
			t.Fatalf("password %q: expected ErrWeakPassword, got %v", pw, err)
		}
	}
}
