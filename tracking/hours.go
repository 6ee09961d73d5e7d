/*
hours.go - Worked-hours aggregation

PURPOSE:
  Pairs check-in/check-out events in timestamp order to produce worked
  hours. The scan is deterministic and order-sensitive; it feeds
  overtime and payroll-adjacent figures and must reproduce bit-identical
  results for identical inputs.

PAIRING SCAN:
  - CHECK_IN opens an interval, overwriting any unmatched prior check-in
    (the dropped check-in contributes nothing)
  - CHECK_OUT with an open check-in closes the interval and accumulates
    its seconds
  - CHECK_OUT with no open check-in is ignored

ADJUSTMENT OVERLAY:
  Approved adjustments with no linked record are synthesized as virtual
  events (ENTRY_CORRECTION/MANUAL_ENTRY as CHECK_IN, EXIT_CORRECTION as
  CHECK_OUT). Adjustments linked to a record are NOT overlaid: their
  approval already rewrote the stored record in place, and overlaying
  them again would count the same correction twice.

WINDOWS:
  Weekly:  [weekStart, weekStart+7d), 40 h limit
  Monthly: calendar month, 160 h limit
*/
package tracking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
)

const (
	WeeklyHoursLimit  = 40.0
	MonthlyHoursLimit = 160.0
)

// HoursReport is the worked-hours summary for a window.
type HoursReport struct {
	HoursWorked float64
	Limit       float64
	OverLimit   float64
}

func newReport(worked, limit float64) *HoursReport {
	over := worked - limit
	if over < 0 {
		over = 0
	}
	return &HoursReport{HoursWorked: worked, Limit: limit, OverLimit: over}
}

// CalculateHoursWorked runs the pairing scan over the records plus the
// overlay of approved standalone adjustments.
func CalculateHoursWorked(records []hr.TimeRecord, adjustments []hr.TimeAdjustment) float64 {
	working := make([]hr.TimeRecord, len(records), len(records)+len(adjustments))
	copy(working, records)

	for _, adj := range adjustments {
		if adj.Status != hr.StatusApproved || adj.TimeRecordID != nil {
			continue
		}
		recordType, ok := adj.AdjustedType.RecordTypeFor()
		if !ok {
			// OTHER adjustments never become events.
			continue
		}
		working = append(working, hr.TimeRecord{
			ID:          adj.ID,
			UserID:      adj.UserID,
			RecordType:  recordType,
			Timestamp:   adj.AdjustedTimestamp,
			Description: adj.Reason,
		})
	}

	// Stable sort keeps raw-record order ahead of overlays on timestamp
	// ties, which keeps the scan deterministic.
	sort.SliceStable(working, func(i, j int) bool {
		return working[i].Timestamp.Before(working[j].Timestamp)
	})

	var total time.Duration
	var openCheckIn *time.Time
	for i := range working {
		switch working[i].RecordType {
		case hr.CheckIn:
			ts := working[i].Timestamp
			openCheckIn = &ts
		case hr.CheckOut:
			if openCheckIn != nil {
				total += working[i].Timestamp.Sub(*openCheckIn)
				openCheckIn = nil
			}
		}
	}

	return total.Seconds() / 3600
}

// Weekly reports worked hours for [weekStart, weekStart+7d) against the
// 40-hour limit.
func (t *Tracker) Weekly(ctx context.Context, st store.Store, userID uuid.UUID, weekStart time.Time) (*HoursReport, error) {
	from := weekStart.UTC()
	to := from.AddDate(0, 0, 7).Add(-time.Second)

	worked, err := t.hoursInWindow(ctx, st, userID, from, to)
	if err != nil {
		return nil, err
	}
	return newReport(worked, WeeklyHoursLimit), nil
}

// Monthly reports worked hours for the calendar month against the
// 160-hour limit.
func (t *Tracker) Monthly(ctx context.Context, st store.Store, userID uuid.UUID, year int, month time.Month) (*HoursReport, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: invalid month %d", hr.ErrBadRequest, month)
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	worked, err := t.hoursInWindow(ctx, st, userID, from, to)
	if err != nil {
		return nil, err
	}
	return newReport(worked, MonthlyHoursLimit), nil
}

func (t *Tracker) hoursInWindow(ctx context.Context, st store.Store, userID uuid.UUID, from, to time.Time) (float64, error) {
	records, err := st.TimeRecordsInRange(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to load records: %w", err)
	}
	adjustments, err := st.AdjustmentsInRange(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to load adjustments: %w", err)
	}
	return CalculateHoursWorked(records, adjustments), nil
}
