package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atempo/hr-engine/hr"
)

// caller resolves the identity or fails closed with ErrUnauthorized.
func caller(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, hr.ErrUnauthorized
	}
	return id, nil
}

// RequireHR admits only the HR role.
func RequireHR(ctx context.Context) (Identity, error) {
	id, err := caller(ctx)
	if err != nil {
		return Identity{}, err
	}
	if !id.IsHR() {
		return Identity{}, fmt.Errorf("%w: requires %s role", hr.ErrForbidden, hr.RoleRRHH)
	}
	return id, nil
}

// RequireSelfOrHR admits HR unconditionally and employees only for
// their own resources.
func RequireSelfOrHR(ctx context.Context, ownerID uuid.UUID) (Identity, error) {
	id, err := caller(ctx)
	if err != nil {
		return Identity{}, err
	}
	if id.IsHR() || id.User.ID == ownerID {
		return id, nil
	}
	return Identity{}, fmt.Errorf("%w: not the resource owner", hr.ErrForbidden)
}

// RequireAuthenticated admits any resolved caller.
func RequireAuthenticated(ctx context.Context) (Identity, error) {
	return caller(ctx)
}

// selfEditable lists the user fields an employee may change on their
// own profile. Everything else (role, active flag, another user's
// profile) is HR-only.
var selfEditable = map[string]bool{
	"username":  true,
	"email":     true,
	"full_name": true,
}

// CheckSelfEdit rejects a self-update that touches fields outside the
// allow-list. HR callers skip this check entirely.
func CheckSelfEdit(id Identity, fields []string) error {
	if id.IsHR() {
		return nil
	}
	for _, f := range fields {
		if !selfEditable[f] {
			return fmt.Errorf("%w: field %q is not self-editable", hr.ErrForbidden, f)
		}
	}
	return nil
}
