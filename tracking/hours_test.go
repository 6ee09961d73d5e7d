package tracking_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/tracking"
)

// =============================================================================
// SCAN FIXTURES
// =============================================================================

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, 0, 0, time.UTC)
}

func record(recordType hr.RecordType, ts time.Time) hr.TimeRecord {
	return hr.TimeRecord{ID: uuid.New(), RecordType: recordType, Timestamp: ts}
}

func approvedAdjustment(adjType hr.AdjustmentType, ts time.Time) hr.TimeAdjustment {
	return hr.TimeAdjustment{
		ID:                uuid.New(),
		AdjustedType:      adjType,
		AdjustedTimestamp: ts,
		Status:            hr.StatusApproved,
	}
}

// =============================================================================
// PAIRING SCAN
// =============================================================================

func TestCalculateHoursWorked_FullDayWithLunch(t *testing.T) {
	// GIVEN: in 09:00, out 13:00, in 14:00, out 18:15
	// WHEN: Running the pairing scan
	// THEN: 4h + 4.25h = 8.25 hours

	records := []hr.TimeRecord{
		record(hr.CheckIn, at(9, 0)),
		record(hr.CheckOut, at(13, 0)),
		record(hr.CheckIn, at(14, 0)),
		record(hr.CheckOut, at(18, 15)),
	}

	assert.InDelta(t, 8.25, tracking.CalculateHoursWorked(records, nil), 1e-9)
}

func TestCalculateHoursWorked_UnmatchedCheckOutIgnored(t *testing.T) {
	// GIVEN: A stray check-out at 08:00 before a normal 09:00-17:00 day
	// WHEN: Running the pairing scan
	// THEN: The stray check-out contributes nothing, 8 hours

	records := []hr.TimeRecord{
		record(hr.CheckOut, at(8, 0)),
		record(hr.CheckIn, at(9, 0)),
		record(hr.CheckOut, at(17, 0)),
	}

	assert.InDelta(t, 8.0, tracking.CalculateHoursWorked(records, nil), 1e-9)
}

func TestCalculateHoursWorked_LaterCheckInOverwritesOpenOne(t *testing.T) {
	// GIVEN: in 08:00, in 10:00 (no check-out between), out 14:00
	// THEN: The second check-in wins; 4 hours, not 6

	records := []hr.TimeRecord{
		record(hr.CheckIn, at(8, 0)),
		record(hr.CheckIn, at(10, 0)),
		record(hr.CheckOut, at(14, 0)),
	}

	assert.InDelta(t, 4.0, tracking.CalculateHoursWorked(records, nil), 1e-9)
}

func TestCalculateHoursWorked_TrailingOpenCheckInContributesNothing(t *testing.T) {
	records := []hr.TimeRecord{
		record(hr.CheckIn, at(9, 0)),
		record(hr.CheckOut, at(12, 0)),
		record(hr.CheckIn, at(13, 0)),
	}

	assert.InDelta(t, 3.0, tracking.CalculateHoursWorked(records, nil), 1e-9)
}

func TestCalculateHoursWorked_UnorderedInputIsSorted(t *testing.T) {
	// GIVEN: The same day delivered out of order
	// THEN: The scan sorts by timestamp first, result unchanged

	records := []hr.TimeRecord{
		record(hr.CheckOut, at(17, 0)),
		record(hr.CheckIn, at(9, 0)),
	}

	assert.InDelta(t, 8.0, tracking.CalculateHoursWorked(records, nil), 1e-9)
}

// =============================================================================
// ADJUSTMENT OVERLAY
// =============================================================================

func TestCalculateHoursWorked_EntryCorrectionSuppliesMissingCheckIn(t *testing.T) {
	// GIVEN: Only a 17:00 check-out, plus an approved standalone
	//        ENTRY_CORRECTION at 09:00
	// WHEN: Running the pairing scan
	// THEN: The correction acts as the check-in, 8 hours

	records := []hr.TimeRecord{record(hr.CheckOut, at(17, 0))}
	adjustments := []hr.TimeAdjustment{approvedAdjustment(hr.EntryCorrection, at(9, 0))}

	assert.InDelta(t, 8.0, tracking.CalculateHoursWorked(records, adjustments), 1e-9)
}

func TestCalculateHoursWorked_ManualEntryCountsAsCheckIn(t *testing.T) {
	records := []hr.TimeRecord{record(hr.CheckOut, at(15, 0))}
	adjustments := []hr.TimeAdjustment{approvedAdjustment(hr.ManualEntry, at(9, 0))}

	assert.InDelta(t, 6.0, tracking.CalculateHoursWorked(records, adjustments), 1e-9)
}

func TestCalculateHoursWorked_PendingAdjustmentNotOverlaid(t *testing.T) {
	// GIVEN: A pending (undecided) correction
	// THEN: It contributes nothing

	records := []hr.TimeRecord{record(hr.CheckOut, at(17, 0))}
	adj := approvedAdjustment(hr.EntryCorrection, at(9, 0))
	adj.Status = hr.StatusPending

	assert.InDelta(t, 0.0, tracking.CalculateHoursWorked(records, []hr.TimeAdjustment{adj}), 1e-9)
}

func TestCalculateHoursWorked_LinkedAdjustmentNotOverlaid(t *testing.T) {
	// GIVEN: An approved correction linked to a stored record
	// WHEN: Running the scan over the already-rewritten record
	// THEN: The correction is not overlaid again; no double counting

	recordID := uuid.New()
	records := []hr.TimeRecord{
		{ID: recordID, RecordType: hr.CheckIn, Timestamp: at(9, 0)},
		record(hr.CheckOut, at(17, 0)),
	}
	adj := approvedAdjustment(hr.EntryCorrection, at(9, 0))
	adj.TimeRecordID = &recordID

	assert.InDelta(t, 8.0, tracking.CalculateHoursWorked(records, []hr.TimeAdjustment{adj}), 1e-9)
}

func TestCalculateHoursWorked_OtherAdjustmentNeverAnEvent(t *testing.T) {
	records := []hr.TimeRecord{record(hr.CheckOut, at(17, 0))}
	adjustments := []hr.TimeAdjustment{approvedAdjustment(hr.OtherAdjustment, at(9, 0))}

	assert.InDelta(t, 0.0, tracking.CalculateHoursWorked(records, adjustments), 1e-9)
}

// =============================================================================
// WINDOW REPORTS
// =============================================================================

func TestWeekly_OverLimitReported(t *testing.T) {
	// GIVEN: Five 9-hour days in one week (45 h)
	// WHEN: Requesting the weekly report
	// THEN: 45 worked, 40 limit, 5 over

	tracker, st, userID := newTestTracker(t)
	ctx := context.Background()

	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 5; day++ {
		start := monday.AddDate(0, 0, day).Add(8 * time.Hour)
		insertRecord(t, st, userID, hr.CheckIn, start)
		insertRecord(t, st, userID, hr.CheckOut, start.Add(9*time.Hour))
	}

	report, err := tracker.Weekly(ctx, st, userID, monday)
	require.NoError(t, err)
	assert.InDelta(t, 45.0, report.HoursWorked, 1e-9)
	assert.Equal(t, tracking.WeeklyHoursLimit, report.Limit)
	assert.InDelta(t, 5.0, report.OverLimit, 1e-9)
}

func TestWeekly_ExcludesNeighboringDays(t *testing.T) {
	// GIVEN: A worked day inside the week and one the day before it
	// THEN: Only the in-window day counts

	tracker, st, userID := newTestTracker(t)

	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	sunday := monday.AddDate(0, 0, -1)

	insertRecord(t, st, userID, hr.CheckIn, sunday.Add(9*time.Hour))
	insertRecord(t, st, userID, hr.CheckOut, sunday.Add(17*time.Hour))
	insertRecord(t, st, userID, hr.CheckIn, monday.Add(9*time.Hour))
	insertRecord(t, st, userID, hr.CheckOut, monday.Add(13*time.Hour))

	report, err := tracker.Weekly(context.Background(), st, userID, monday)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, report.HoursWorked, 1e-9)
}

func TestMonthly_CalendarMonthWindow(t *testing.T) {
	// GIVEN: An 8-hour day in March and one in April
	// WHEN: Requesting the March report
	// THEN: Only March counts, against the 160 h limit

	tracker, st, userID := newTestTracker(t)

	march5 := time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)
	april2 := time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)

	insertRecord(t, st, userID, hr.CheckIn, march5)
	insertRecord(t, st, userID, hr.CheckOut, march5.Add(8*time.Hour))
	insertRecord(t, st, userID, hr.CheckIn, april2)
	insertRecord(t, st, userID, hr.CheckOut, april2.Add(8*time.Hour))

	report, err := tracker.Monthly(context.Background(), st, userID, 2025, time.March)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, report.HoursWorked, 1e-9)
	assert.Equal(t, tracking.MonthlyHoursLimit, report.Limit)
	assert.Zero(t, report.OverLimit)
}

func TestMonthly_InvalidMonthRejected(t *testing.T) {
	tracker, st, userID := newTestTracker(t)

	_, err := tracker.Monthly(context.Background(), st, userID, 2025, time.Month(13))
	assert.ErrorIs(t, err, hr.ErrBadRequest)
}
