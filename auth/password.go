package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/atempo/hr-engine/hr"
)

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash against a candidate password.
// A mismatch is ErrUnauthorized, indistinguishable from an unknown
// username at the login endpoint.
func CheckPassword(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return fmt.Errorf("%w: invalid credentials", hr.ErrUnauthorized)
	}
	return nil
}
