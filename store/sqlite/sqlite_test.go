package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
	"github.com/atempo/hr-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func createUser(t *testing.T, st *sqlite.Store, username, fullName string) *hr.User {
	user := &hr.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          username + "@example.com",
		FullName:       fullName,
		HashedPassword: "x",
		Role:           hr.RoleEmployee,
		IsActive:       true,
	}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return user
}

func insertRecordAt(t *testing.T, st *sqlite.Store, userID uuid.UUID, rt hr.RecordType, ts time.Time) {
	require.NoError(t, st.InsertTimeRecord(context.Background(), &hr.TimeRecord{
		ID: uuid.New(), UserID: userID, RecordType: rt, Timestamp: ts.UTC(),
	}))
}

// =============================================================================
// USERS
// =============================================================================

func TestUsers_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createUser(t, st, "jdoe", "John Doe")

	byID, err := st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "jdoe", byID.Username)
	assert.True(t, byID.IsActive)

	byName, err := st.GetUserByUsername(ctx, "jdoe")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)

	missing, err := st.GetUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing, "unknown id must be (nil, nil), not an error")
}

func TestDeleteUser_CascadesToBalances(t *testing.T) {
	// GIVEN: A user with a balance row
	// WHEN: Deleting the user
	// THEN: The balance row goes with them

	st := newTestStore(t)
	ctx := context.Background()

	user := createUser(t, st, "jdoe", "John Doe")
	require.NoError(t, st.SaveBalance(ctx, &hr.LeaveBalance{
		ID: uuid.New(), UserID: user.ID, LeaveType: hr.LeaveVacation, Year: 2025,
		UsedDays: decimal.Zero, RemainingDays: decimal.RequireFromString("2.5"),
		WeeklyHours: 40, MonthlyHours: 173.2, LastUpdated: time.Now().UTC(),
	}))

	require.NoError(t, st.DeleteUser(ctx, user.ID))

	balance, err := st.GetBalance(ctx, user.ID, hr.LeaveVacation, 2025)
	require.NoError(t, err)
	assert.Nil(t, balance)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestBalances_DecimalsSurviveRoundTrip(t *testing.T) {
	// GIVEN: A balance with fractional day quantities
	// WHEN: Saving and reloading
	// THEN: The decimals come back exact, not as floats

	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "jdoe", "John Doe")

	balance := &hr.LeaveBalance{
		ID: uuid.New(), UserID: user.ID, LeaveType: hr.LeaveVacation, Year: 2025,
		UsedDays:      decimal.RequireFromString("0.1"),
		RemainingDays: decimal.RequireFromString("7.25"),
		WeeklyHours:   37.5, MonthlyHours: 162.375, LastUpdated: time.Now().UTC(),
	}
	require.NoError(t, st.SaveBalance(ctx, balance))

	loaded, err := st.GetBalance(ctx, user.ID, hr.LeaveVacation, 2025)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "0.1", loaded.UsedDays.String())
	assert.Equal(t, "7.25", loaded.RemainingDays.String())
}

// =============================================================================
// TIME RECORD QUERIES
// =============================================================================

func TestLatestTimeRecord_ByTimestampNotInsertion(t *testing.T) {
	// GIVEN: Records inserted out of chronological order
	// THEN: Latest is decided by timestamp

	st := newTestStore(t)
	user := createUser(t, st, "jdoe", "John Doe")

	later := time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	insertRecordAt(t, st, user.ID, hr.CheckOut, later)
	insertRecordAt(t, st, user.ID, hr.CheckIn, earlier)

	latest, err := st.LatestTimeRecord(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, hr.CheckOut, latest.RecordType)
	assert.True(t, latest.Timestamp.Equal(later))
}

func TestTimeRecordsInRange_InclusiveWindow(t *testing.T) {
	st := newTestStore(t)
	user := createUser(t, st, "jdoe", "John Doe")
	ctx := context.Background()

	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	insertRecordAt(t, st, user.ID, hr.CheckIn, day.Add(9*time.Hour))
	insertRecordAt(t, st, user.ID, hr.CheckOut, day.Add(17*time.Hour))
	insertRecordAt(t, st, user.ID, hr.CheckIn, day.AddDate(0, 0, 2))

	records, err := st.TimeRecordsInRange(ctx, user.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearchTimeRecords_FullNameSubstring(t *testing.T) {
	// GIVEN: Records owned by "John Doe" and "Alice Smith"
	// WHEN: Searching full_name for "doe" (lowercase)
	// THEN: Only John's records match, with the right total

	st := newTestStore(t)
	ctx := context.Background()

	john := createUser(t, st, "jdoe", "John Doe")
	alice := createUser(t, st, "asmith", "Alice Smith")

	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	insertRecordAt(t, st, john.ID, hr.CheckIn, base)
	insertRecordAt(t, st, john.ID, hr.CheckOut, base.Add(8*time.Hour))
	insertRecordAt(t, st, alice.ID, hr.CheckIn, base)

	records, total, err := st.SearchTimeRecords(ctx, store.RecordFilter{FullName: "doe"}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "John Doe", rec.UserFullName)
		assert.Equal(t, "jdoe", rec.Username)
	}
}

func TestSearchTimeRecords_PaginationAndOrder(t *testing.T) {
	// GIVEN: Five records
	// WHEN: Paging two at a time
	// THEN: Total stays 5, pages are newest-first and do not overlap

	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "jdoe", "John Doe")

	base := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rt := hr.CheckIn
		if i%2 == 1 {
			rt = hr.CheckOut
		}
		insertRecordAt(t, st, user.ID, rt, base.Add(time.Duration(i)*time.Hour))
	}

	page1, total, err := st.SearchTimeRecords(ctx, store.RecordFilter{UserID: &user.ID}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)
	assert.True(t, page1[0].Timestamp.After(page1[1].Timestamp), "newest first")

	page2, _, err := st.SearchTimeRecords(ctx, store.RecordFilter{UserID: &user.ID}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.True(t, page1[1].Timestamp.After(page2[0].Timestamp), "pages must not overlap")
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollbackOnError(t *testing.T) {
	// GIVEN: A transaction that inserts a record and then fails
	// THEN: The insert is rolled back

	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "jdoe", "John Doe")

	sentinel := assert.AnError
	err := st.WithTx(ctx, func(tx store.Store) error {
		if err := tx.InsertTimeRecord(ctx, &hr.TimeRecord{
			ID: uuid.New(), UserID: user.ID, RecordType: hr.CheckIn,
			Timestamp: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	latest, err := st.LatestTimeRecord(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, latest, "rolled-back insert must not be visible")
}

func TestWithTx_CommitOnNil(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, st, "jdoe", "John Doe")

	err := st.WithTx(ctx, func(tx store.Store) error {
		return tx.InsertTimeRecord(ctx, &hr.TimeRecord{
			ID: uuid.New(), UserID: user.ID, RecordType: hr.CheckIn,
			Timestamp: time.Now().UTC(),
		})
	})
	require.NoError(t, err)

	latest, err := st.LatestTimeRecord(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
}
