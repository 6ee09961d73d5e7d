/*
Package auth covers authentication and access control: password
hashing, bearer tokens, the HTTP middleware that resolves the caller,
and the role/ownership guards the handlers lean on.

PURPOSE:
  Callers authenticate once (username + password) and receive a signed
  HS256 token carrying their user id and role. Every protected request
  presents that token; the middleware re-loads the user so role changes
  and deactivation take effect without waiting for token expiry.

KEY CONCEPTS:
  - Identity: the resolved caller, stored on the request context.
  - Guards: small predicate helpers. Handlers stay declarative:
    "RequireHR", "RequireSelfOrHR" and get back a typed error that
    hr.HTTPStatus maps to 401/403.

SEE ALSO:
  - hr/errors.go: ErrUnauthorized / ErrForbidden classification
  - api/server.go: where the middleware is mounted
*/
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/atempo/hr-engine/hr"
)

// Claims is the token payload. Role is advisory only: the middleware
// reads the authoritative role from the user row on every request.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the user, valid for ttl.
func IssueToken(secret []byte, user *hr.User, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the subject
// user id. Any failure maps to ErrUnauthorized; callers never learn
// which check failed.
func ParseToken(secret []byte, raw string) (uuid.UUID, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", hr.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid token subject", hr.ErrUnauthorized)
	}
	return userID, nil
}
