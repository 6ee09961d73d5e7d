package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
)

type contextKey struct{}

var identityKey contextKey

// Identity is the resolved caller of the current request.
type Identity struct {
	User *hr.User
}

func (id Identity) IsHR() bool {
	return id.User.Role == hr.RoleRRHH
}

// FromContext returns the caller set by Middleware. The second return
// is false on unauthenticated requests, which only happens on routes
// mounted outside the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity is used by tests to simulate an authenticated request.
func WithIdentity(ctx context.Context, user *hr.User) context.Context {
	return context.WithValue(ctx, identityKey, Identity{User: user})
}

// Middleware authenticates requests with a Bearer token. The user row
// is re-loaded on every request so a role change or deactivation takes
// effect immediately rather than at token expiry. Inactive users are
// rejected as if their token were invalid.
func Middleware(secret []byte, st store.Store, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				onError(w, r, hr.ErrUnauthorized)
				return
			}
			userID, err := ParseToken(secret, raw)
			if err != nil {
				onError(w, r, err)
				return
			}
			user, err := st.GetUser(r.Context(), userID)
			if err != nil {
				onError(w, r, err)
				return
			}
			if user == nil || !user.IsActive {
				onError(w, r, hr.ErrUnauthorized)
				return
			}
			ctx := WithIdentity(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
