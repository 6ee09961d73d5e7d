package tracking_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store/sqlite"
	"github.com/atempo/hr-engine/tracking"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestTracker(t *testing.T) (*tracking.Tracker, *sqlite.Store, uuid.UUID) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	user := &hr.User{
		ID:             uuid.New(),
		Username:       "jdoe",
		Email:          "jdoe@example.com",
		FullName:       "John Doe",
		HashedPassword: "x",
		Role:           hr.RoleEmployee,
		IsActive:       true,
	}
	require.NoError(t, st.CreateUser(context.Background(), user))

	return tracking.New(), st, user.ID
}

// insertRecord plants a record with a chosen timestamp, bypassing the
// tracker's server-side clock.
func insertRecord(t *testing.T, st *sqlite.Store, userID uuid.UUID, recordType hr.RecordType, at time.Time) *hr.TimeRecord {
	record := &hr.TimeRecord{
		ID:         uuid.New(),
		UserID:     userID,
		RecordType: recordType,
		Timestamp:  at.UTC(),
	}
	require.NoError(t, st.InsertTimeRecord(context.Background(), record))
	return record
}

// =============================================================================
// APPEND VALIDATION
// =============================================================================

func TestAppend_FirstRecordAlwaysAllowed(t *testing.T) {
	// GIVEN: A user with no records
	// WHEN: Checking in
	// THEN: The record is stored with a server-side UTC timestamp

	tracker, st, userID := newTestTracker(t)

	record, err := tracker.Append(context.Background(), st, userID, hr.CheckIn, "morning")
	require.NoError(t, err)
	assert.Equal(t, hr.CheckIn, record.RecordType)
	assert.WithinDuration(t, time.Now().UTC(), record.Timestamp, 5*time.Second)
}

func TestAppend_TooSoonRejected(t *testing.T) {
	// GIVEN: A check-in recorded moments ago
	// WHEN: Checking out immediately
	// THEN: Rejected with ErrTooSoon, nothing stored

	tracker, st, userID := newTestTracker(t)
	ctx := context.Background()

	insertRecord(t, st, userID, hr.CheckIn, time.Now())

	_, err := tracker.Append(ctx, st, userID, hr.CheckOut, "")
	assert.ErrorIs(t, err, hr.ErrTooSoon)

	records, err := st.TimeRecordsInRange(ctx, userID, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAppend_SameTypeRejected(t *testing.T) {
	// GIVEN: A check-in well past the minimum interval
	// WHEN: Checking in again
	// THEN: Rejected with a SequenceError naming both types

	tracker, st, userID := newTestTracker(t)

	insertRecord(t, st, userID, hr.CheckIn, time.Now().Add(-time.Hour))

	_, err := tracker.Append(context.Background(), st, userID, hr.CheckIn, "")
	require.Error(t, err)

	var seq *hr.SequenceError
	require.ErrorAs(t, err, &seq)
	assert.ErrorIs(t, err, hr.ErrInvalidSequence)
	assert.Equal(t, hr.CheckIn, seq.Last)
	assert.Equal(t, hr.CheckIn, seq.New)
}

func TestAppend_AlternatingAfterIntervalAllowed(t *testing.T) {
	// GIVEN: A check-in one hour ago
	// WHEN: Checking out now
	// THEN: The record is accepted

	tracker, st, userID := newTestTracker(t)

	insertRecord(t, st, userID, hr.CheckIn, time.Now().Add(-time.Hour))

	record, err := tracker.Append(context.Background(), st, userID, hr.CheckOut, "")
	require.NoError(t, err)
	assert.Equal(t, hr.CheckOut, record.RecordType)
}

func TestAppend_UnknownTypeRejected(t *testing.T) {
	tracker, st, userID := newTestTracker(t)

	_, err := tracker.Append(context.Background(), st, userID, hr.RecordType("LUNCH"), "")
	assert.ErrorIs(t, err, hr.ErrBadRequest)
}

func TestAppend_RulesArePerUser(t *testing.T) {
	// GIVEN: User A checked in moments ago
	// WHEN: User B checks in
	// THEN: B is unaffected by A's interval and sequence state

	tracker, st, userA := newTestTracker(t)
	ctx := context.Background()

	userB := &hr.User{
		ID:             uuid.New(),
		Username:       "asmith",
		Email:          "asmith@example.com",
		HashedPassword: "x",
		Role:           hr.RoleEmployee,
		IsActive:       true,
	}
	require.NoError(t, st.CreateUser(ctx, userB))

	insertRecord(t, st, userA, hr.CheckIn, time.Now())

	_, err := tracker.Append(ctx, st, userB.ID, hr.CheckIn, "")
	assert.NoError(t, err)
}
