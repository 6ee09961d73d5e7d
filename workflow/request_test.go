package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/ledger"
	"github.com/atempo/hr-engine/workflow"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fundBalance accrues enough months to cover the given number of days.
func fundBalance(t *testing.T, f *workflowFixture, l *ledger.Ledger, months int) {
	ctx := context.Background()
	year := time.Now().UTC().Year()
	for i := 0; i < months; i++ {
		_, err := l.Accrue(ctx, f.store, f.employee, year, time.January, hr.LeaveVacation, 40)
		require.NoError(t, err)
	}
}

// =============================================================================
// CREATE
// =============================================================================

func TestRequests_Create_InclusiveDayCount(t *testing.T) {
	// GIVEN: A request spanning March 10-12
	// WHEN: No explicit day count is supplied
	// THEN: days_requested = 3 (both endpoints count)

	f := newWorkflowFixture(t)
	w := workflow.NewRequests(ledger.New())

	request, err := w.Create(context.Background(), f.store, f.employee,
		date(2025, time.March, 10), date(2025, time.March, 12), hr.LeaveVacation, "trip", nil)
	require.NoError(t, err)

	assert.True(t, request.DaysRequested.Equal(decimal.NewFromInt(3)), "got %s", request.DaysRequested)
	assert.Equal(t, hr.StatusPending, request.Status)
}

func TestRequests_Create_SingleDay(t *testing.T) {
	f := newWorkflowFixture(t)
	w := workflow.NewRequests(ledger.New())

	request, err := w.Create(context.Background(), f.store, f.employee,
		date(2025, time.March, 10), date(2025, time.March, 10), hr.LeaveSick, "", nil)
	require.NoError(t, err)
	assert.True(t, request.DaysRequested.Equal(decimal.NewFromInt(1)))
}

func TestRequests_Create_ExplicitDaysOverrideSpan(t *testing.T) {
	// GIVEN: A two-day span but an explicit half-day request
	// THEN: The explicit quantity wins

	f := newWorkflowFixture(t)
	w := workflow.NewRequests(ledger.New())

	half := decimal.RequireFromString("0.5")
	request, err := w.Create(context.Background(), f.store, f.employee,
		date(2025, time.March, 10), date(2025, time.March, 11), hr.LeavePersonal, "", &half)
	require.NoError(t, err)
	assert.True(t, request.DaysRequested.Equal(half))
}

func TestRequests_Create_InvalidRange(t *testing.T) {
	// GIVEN: start after end
	// THEN: Rejected with ErrInvalidRange, nothing stored

	f := newWorkflowFixture(t)
	w := workflow.NewRequests(ledger.New())

	_, err := w.Create(context.Background(), f.store, f.employee,
		date(2025, time.March, 12), date(2025, time.March, 10), hr.LeaveVacation, "", nil)
	assert.ErrorIs(t, err, hr.ErrInvalidRange)

	requests, err := f.store.ListRequestsByUser(context.Background(), f.employee)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestRequests_Create_UnknownLeaveType(t *testing.T) {
	f := newWorkflowFixture(t)
	w := workflow.NewRequests(ledger.New())

	_, err := w.Create(context.Background(), f.store, f.employee,
		date(2025, time.March, 10), date(2025, time.March, 10), hr.LeaveType("SABBATICAL"), "", nil)
	assert.ErrorIs(t, err, hr.ErrBadRequest)
}

// =============================================================================
// REVIEW
// =============================================================================

func TestRequests_ApproveDeductsOnce(t *testing.T) {
	// GIVEN: A funded balance and a pending 3-day request
	// WHEN: HR approves, then tries to approve again
	// THEN: Exactly one deduction; the second review conflicts

	f := newWorkflowFixture(t)
	l := ledger.New()
	w := workflow.NewRequests(l)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	fundBalance(t, f, l, 2) // seed 2.5 + 2 x 2.5 = 7.5 days

	request, err := w.Create(ctx, f.store, f.employee,
		date(year, time.March, 10), date(year, time.March, 12), hr.LeaveVacation, "", nil)
	require.NoError(t, err)

	reviewed, err := w.Review(ctx, f.store, request.ID, f.reviewer, hr.StatusApproved, "enjoy")
	require.NoError(t, err)
	assert.Equal(t, hr.StatusApproved, reviewed.Status)

	balance, err := f.store.GetBalance(ctx, f.employee, hr.LeaveVacation, year)
	require.NoError(t, err)
	assert.True(t, balance.UsedDays.Equal(decimal.NewFromInt(3)), "used: %s", balance.UsedDays)
	assert.True(t, balance.RemainingDays.Equal(decimal.RequireFromString("4.5")), "remaining: %s", balance.RemainingDays)

	_, err = w.Review(ctx, f.store, request.ID, f.reviewer, hr.StatusApproved, "again")
	assert.ErrorIs(t, err, hr.ErrAlreadyReviewed)

	balance, err = f.store.GetBalance(ctx, f.employee, hr.LeaveVacation, year)
	require.NoError(t, err)
	assert.True(t, balance.UsedDays.Equal(decimal.NewFromInt(3)), "re-review must not deduct again")
}

func TestRequests_InsufficientBalanceRollsBack(t *testing.T) {
	// GIVEN: A fresh balance (2.5 seeded days) and a 5-day request
	// WHEN: HR approves
	// THEN: The deduction fails, the status change rolls back, and the
	//       request stays PENDING for a later retry

	f := newWorkflowFixture(t)
	l := ledger.New()
	w := workflow.NewRequests(l)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	request, err := w.Create(ctx, f.store, f.employee,
		date(year, time.March, 10), date(year, time.March, 14), hr.LeaveVacation, "", nil)
	require.NoError(t, err)

	_, err = w.Review(ctx, f.store, request.ID, f.reviewer, hr.StatusApproved, "")
	assert.ErrorIs(t, err, hr.ErrInsufficientBalance)

	stored, err := f.store.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, hr.StatusPending, stored.Status, "failed approval must leave the request pending")
	assert.Nil(t, stored.ReviewedBy)
}

func TestRequests_RejectNeverTouchesBalance(t *testing.T) {
	f := newWorkflowFixture(t)
	l := ledger.New()
	w := workflow.NewRequests(l)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	fundBalance(t, f, l, 1)

	request, err := w.Create(ctx, f.store, f.employee,
		date(year, time.March, 10), date(year, time.March, 12), hr.LeaveVacation, "", nil)
	require.NoError(t, err)

	reviewed, err := w.Review(ctx, f.store, request.ID, f.reviewer, hr.StatusRejected, "blackout week")
	require.NoError(t, err)
	assert.Equal(t, hr.StatusRejected, reviewed.Status)
	assert.Equal(t, "blackout week", reviewed.ReviewComment)

	balance, err := f.store.GetBalance(ctx, f.employee, hr.LeaveVacation, year)
	require.NoError(t, err)
	assert.True(t, balance.UsedDays.IsZero())
}

func TestRequests_ReviewMissingRequest(t *testing.T) {
	f := newWorkflowFixture(t)
	w := workflow.NewRequests(ledger.New())

	_, err := w.Review(context.Background(), f.store, uuid.New(), f.reviewer, hr.StatusApproved, "")
	assert.ErrorIs(t, err, hr.ErrNotFound)
}
