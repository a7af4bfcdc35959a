// internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored user passwords.
const PasswordCost = bcrypt.DefaultCost

var (
	ErrEmptyPassword   = errors.New("password must not be empty")
	ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")
)

// HashPassword returns the bcrypt hash stored in place of a user's password.
// bcrypt reads at most 72 bytes, so longer input is rejected rather than truncated.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", ErrPasswordTooLong
	case err != nil:
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
