/*
Package tracking implements the time record store and the hours
aggregator.

PURPOSE:
  Check-in/check-out events are append-only: a new record must alternate
  with the previous one and respect a minimum interval. Corrections never
  delete; they arrive through the adjustment workflow. Worked hours are
  computed by pairing events over a window, with approved standalone
  adjustments overlaid as synthetic events.

VALIDATION RULES (Append):
  1. now - last.Timestamp >= 600 s, else Conflict
  2. record type must alternate with the previous record, else BadRequest
  3. timestamp is assigned server-side, in UTC

SEE ALSO:
  - hours.go: the pairing scan and weekly/monthly reports
  - workflow/adjustment.go: the only mutation path for stored records
*/
package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
)

// MinRecordInterval is the minimum gap between two records of one user.
const MinRecordInterval = 600 * time.Second

// Tracker appends records and computes hour reports against a store
// handle passed per call.
type Tracker struct {
	now func() time.Time
}

func New() *Tracker {
	return &Tracker{now: time.Now}
}

// Append validates and persists a new check-in/check-out event. The
// record's timestamp is now (UTC); callers cannot backdate through this
// interface.
func (t *Tracker) Append(ctx context.Context, st store.Store, userID uuid.UUID, recordType hr.RecordType, description string) (*hr.TimeRecord, error) {
	if !recordType.Valid() {
		return nil, fmt.Errorf("%w: unknown record type %q", hr.ErrBadRequest, recordType)
	}

	last, err := st.LatestTimeRecord(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest record: %w", err)
	}

	now := t.now().UTC()
	if last != nil {
		if now.Sub(last.Timestamp) < MinRecordInterval {
			return nil, fmt.Errorf("%w: wait %d seconds between records",
				hr.ErrTooSoon, int(MinRecordInterval.Seconds()))
		}
		if last.RecordType == recordType {
			return nil, &hr.SequenceError{Last: last.RecordType, New: recordType}
		}
	}

	record := &hr.TimeRecord{
		ID:          uuid.New(),
		UserID:      userID,
		RecordType:  recordType,
		Timestamp:   now,
		Description: description,
	}
	if err := st.InsertTimeRecord(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
