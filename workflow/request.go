package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/ledger"
	"github.com/atempo/hr-engine/store"
)

// Requests is the time-off request workflow. Approval is the only path
// that touches the leave ledger.
type Requests struct {
	now    func() time.Time
	ledger *ledger.Ledger
}

func NewRequests(l *ledger.Ledger) *Requests {
	return &Requests{now: time.Now, ledger: l}
}

// Create inserts a PENDING request. When daysRequested is nil or not
// positive, it defaults to the inclusive calendar-day span of the
// range. Balance is NOT checked here; that happens at approval.
func (w *Requests) Create(ctx context.Context, st store.Store, userID uuid.UUID, startDate, endDate time.Time, leaveType hr.LeaveType, reason string, daysRequested *decimal.Decimal) (*hr.TimeOffRequest, error) {
	if !leaveType.Valid() {
		return nil, fmt.Errorf("%w: unknown leave type %q", hr.ErrBadRequest, leaveType)
	}
	start := dateOnly(startDate)
	end := dateOnly(endDate)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date %s is after end date %s",
			hr.ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	days := inclusiveDays(start, end)
	if daysRequested != nil && daysRequested.IsPositive() {
		days = *daysRequested
	}

	request := &hr.TimeOffRequest{
		ID:            uuid.New(),
		UserID:        userID,
		StartDate:     start,
		EndDate:       end,
		LeaveType:     leaveType,
		DaysRequested: days,
		Reason:        reason,
		Status:        hr.StatusPending,
	}
	if err := st.InsertRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Review decides a PENDING request. The PENDING -> APPROVED transition
// deducts days_requested from the user's balance in the same
// transaction, so an insufficient balance rolls the status change back
// and the request stays PENDING. Terminal states cannot be re-reviewed,
// which keeps the deduction exactly-once.
func (w *Requests) Review(ctx context.Context, st store.TxStore, requestID, reviewer uuid.UUID, status hr.ReviewStatus, comment string) (*hr.TimeOffRequest, error) {
	var reviewed *hr.TimeOffRequest

	err := st.WithTx(ctx, func(tx store.Store) error {
		request, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}
		if request == nil {
			return fmt.Errorf("%w: time-off request %s", hr.ErrNotFound, requestID)
		}

		if err := hr.Transition(request, status, reviewer, comment, w.now().UTC()); err != nil {
			return err
		}

		if status == hr.StatusApproved {
			if _, err := w.ledger.Deduct(ctx, tx, request.UserID, request.LeaveType, request.DaysRequested); err != nil {
				return err
			}
		}

		if err := tx.UpdateRequest(ctx, request); err != nil {
			return err
		}
		reviewed = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inclusiveDays counts both endpoints: a one-day request has equal
// start and end dates.
func inclusiveDays(start, end time.Time) decimal.Decimal {
	days := int64(end.Sub(start).Hours()/24) + 1
	return decimal.NewFromInt(days)
}
