package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atempo/hr-engine/auth"
	"github.com/atempo/hr-engine/hr"
)

var secret = []byte("test-secret")

func testUser(role hr.Role) *hr.User {
	return &hr.User{
		ID:       uuid.New(),
		Username: "jdoe",
		Role:     role,
		IsActive: true,
	}
}

// =============================================================================
// TOKENS
// =============================================================================

func TestToken_RoundTrip(t *testing.T) {
	// GIVEN: A token issued for a user
	// WHEN: Parsing it with the same secret
	// THEN: The subject comes back

	user := testUser(hr.RoleEmployee)
	token, err := auth.IssueToken(secret, user, time.Hour, time.Now())
	require.NoError(t, err)

	userID, err := auth.ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestToken_WrongSecretRejected(t *testing.T) {
	user := testUser(hr.RoleEmployee)
	token, err := auth.IssueToken(secret, user, time.Hour, time.Now())
	require.NoError(t, err)

	_, err = auth.ParseToken([]byte("other-secret"), token)
	assert.ErrorIs(t, err, hr.ErrUnauthorized)
}

func TestToken_ExpiredRejected(t *testing.T) {
	// GIVEN: A token issued two hours ago with a one hour TTL
	// THEN: Parsing fails as unauthorized

	user := testUser(hr.RoleEmployee)
	token, err := auth.IssueToken(secret, user, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = auth.ParseToken(secret, token)
	assert.ErrorIs(t, err, hr.ErrUnauthorized)
}

func TestToken_GarbageRejected(t *testing.T) {
	_, err := auth.ParseToken(secret, "not.a.token")
	assert.ErrorIs(t, err, hr.ErrUnauthorized)
}

// =============================================================================
// PASSWORDS
// =============================================================================

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, auth.CheckPassword(hash, "s3cret"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), hr.ErrUnauthorized)
}

// =============================================================================
// GUARDS
// =============================================================================

func TestRequireHR(t *testing.T) {
	// GIVEN: An HR context and an employee context
	// THEN: Only the HR caller passes

	hrCtx := auth.WithIdentity(context.Background(), testUser(hr.RoleRRHH))
	empCtx := auth.WithIdentity(context.Background(), testUser(hr.RoleEmployee))

	_, err := auth.RequireHR(hrCtx)
	assert.NoError(t, err)

	_, err = auth.RequireHR(empCtx)
	assert.ErrorIs(t, err, hr.ErrForbidden)

	_, err = auth.RequireHR(context.Background())
	assert.ErrorIs(t, err, hr.ErrUnauthorized)
}

func TestRequireSelfOrHR(t *testing.T) {
	employee := testUser(hr.RoleEmployee)
	ctx := auth.WithIdentity(context.Background(), employee)

	// Own resource: allowed
	_, err := auth.RequireSelfOrHR(ctx, employee.ID)
	assert.NoError(t, err)

	// Someone else's resource: forbidden
	_, err = auth.RequireSelfOrHR(ctx, uuid.New())
	assert.ErrorIs(t, err, hr.ErrForbidden)

	// HR reaches anything
	hrCtx := auth.WithIdentity(context.Background(), testUser(hr.RoleRRHH))
	_, err = auth.RequireSelfOrHR(hrCtx, uuid.New())
	assert.NoError(t, err)
}

func TestCheckSelfEdit_AllowList(t *testing.T) {
	// GIVEN: An employee editing their own profile
	// THEN: username/email/full_name pass, role and is_active do not

	employee := auth.Identity{User: testUser(hr.RoleEmployee)}

	assert.NoError(t, auth.CheckSelfEdit(employee, []string{"username", "email", "full_name"}))
	assert.ErrorIs(t, auth.CheckSelfEdit(employee, []string{"role"}), hr.ErrForbidden)
	assert.ErrorIs(t, auth.CheckSelfEdit(employee, []string{"full_name", "is_active"}), hr.ErrForbidden)

	// HR skips the allow-list entirely
	admin := auth.Identity{User: testUser(hr.RoleRRHH)}
	assert.NoError(t, auth.CheckSelfEdit(admin, []string{"role", "is_active"}))
}
