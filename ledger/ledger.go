/*
Package ledger implements the leave balance ledger: per-user, per-year,
per-leave-type accrual and deduction arithmetic.

PURPOSE:
  A balance row is created lazily on first access and mutated only here.
  Accrual is proportional to the user's weekly hours against a 40-hour
  full-time baseline; deduction enforces the non-negative invariant at
  the moment of write.

ACCRUAL FORMULA:
  effective_weekly_hours = weekly_hours if weekly_hours > 0 else 40
  accrual_days_per_month = 2.5 * (effective_weekly_hours / 40)
  monthly_hours          = weekly_hours * 4.33

PRECISION:
  All day quantities are decimal.Decimal. Repeated fractional accruals
  (e.g. 1.25 for a 20-hour week) must not drift.

IDEMPOTENCY:
  Accrue has no internal de-duplication. It is designed to be invoked
  once per calendar month per user; periodic triggering is the caller's
  responsibility.

SEE ALSO:
  - workflow/request.go: deducts on time-off approval
  - store/store.go: the transactional handles this package writes through
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
)

const (
	// FullTimeWeeklyHours is the accrual baseline.
	FullTimeWeeklyHours = 40.0

	// MonthlyHoursFactor converts weekly hours to the stored monthly figure.
	MonthlyHoursFactor = 4.33
)

// VacationDaysPerFullTimeMonth is the monthly accrual at a 40-hour week.
var VacationDaysPerFullTimeMonth = decimal.NewFromFloat(2.5)

// Ledger performs balance arithmetic against a store handle passed per
// call, so a workflow can run it inside its own transaction.
type Ledger struct {
	now func() time.Time
}

func New() *Ledger {
	return &Ledger{now: time.Now}
}

// EffectiveWeeklyHours falls back to full time when hours are unset.
func EffectiveWeeklyHours(weeklyHours float64) float64 {
	if weeklyHours <= 0 {
		return FullTimeWeeklyHours
	}
	return weeklyHours
}

// AccrualDaysForMonth returns one month's accrual for the given weekly hours.
func AccrualDaysForMonth(weeklyHours float64) decimal.Decimal {
	hours := decimal.NewFromFloat(EffectiveWeeklyHours(weeklyHours))
	ratio := hours.Div(decimal.NewFromFloat(FullTimeWeeklyHours))
	return VacationDaysPerFullTimeMonth.Mul(ratio)
}

// GetOrCreate returns the (user, leaveType, year) balance, creating it
// seeded with one month's accrual when absent. Creation and first read
// happen on the same handle, so a transactional caller sees its own row.
func (l *Ledger) GetOrCreate(ctx context.Context, st store.Store, userID uuid.UUID, leaveType hr.LeaveType, year int, defaultWeeklyHours float64) (*hr.LeaveBalance, error) {
	balance, err := st.GetBalance(ctx, userID, leaveType, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	if balance != nil {
		return balance, nil
	}

	weeklyHours := EffectiveWeeklyHours(defaultWeeklyHours)
	balance = &hr.LeaveBalance{
		ID:            uuid.New(),
		UserID:        userID,
		LeaveType:     leaveType,
		Year:          year,
		UsedDays:      decimal.Zero,
		RemainingDays: AccrualDaysForMonth(weeklyHours),
		WeeklyHours:   weeklyHours,
		MonthlyHours:  weeklyHours * MonthlyHoursFactor,
		LastUpdated:   l.now().UTC(),
	}
	if err := st.SaveBalance(ctx, balance); err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", err)
	}
	return balance, nil
}

// Accrue adds one month's accrual days to the user's year balance,
// optionally updating the stored weekly/monthly hours first. The month
// argument identifies the accrual run for the caller's bookkeeping; the
// arithmetic is identical for every month.
func (l *Ledger) Accrue(ctx context.Context, st store.Store, userID uuid.UUID, year int, month time.Month, leaveType hr.LeaveType, weeklyHours float64) (*hr.LeaveBalance, error) {
	balance, err := l.GetOrCreate(ctx, st, userID, leaveType, year, weeklyHours)
	if err != nil {
		return nil, err
	}

	if weeklyHours > 0 {
		balance.WeeklyHours = EffectiveWeeklyHours(weeklyHours)
		balance.MonthlyHours = balance.WeeklyHours * MonthlyHoursFactor
	}

	balance.RemainingDays = balance.RemainingDays.Add(AccrualDaysForMonth(balance.WeeklyHours))
	balance.LastUpdated = l.now().UTC()

	if err := st.SaveBalance(ctx, balance); err != nil {
		return nil, fmt.Errorf("failed to accrue %s/%d-%02d: %w", leaveType, year, month, err)
	}
	return balance, nil
}

// Deduct consumes daysTaken from the user's current-year balance. It
// fails with an InsufficientBalanceError (leaving the balance unchanged)
// when remaining days do not cover the deduction; otherwise used_days and
// remaining_days move by exactly daysTaken.
//
// Run inside a transaction when the deduction accompanies another write.
func (l *Ledger) Deduct(ctx context.Context, st store.Store, userID uuid.UUID, leaveType hr.LeaveType, daysTaken decimal.Decimal) (*hr.LeaveBalance, error) {
	year := l.now().UTC().Year()

	balance, err := l.GetOrCreate(ctx, st, userID, leaveType, year, 0)
	if err != nil {
		return nil, err
	}

	if balance.RemainingDays.LessThan(daysTaken) {
		return nil, &hr.InsufficientBalanceError{
			UserID:    userID.String(),
			LeaveType: leaveType,
			Year:      year,
			Remaining: balance.RemainingDays,
			Requested: daysTaken,
		}
	}

	balance.UsedDays = balance.UsedDays.Add(daysTaken)
	balance.RemainingDays = balance.RemainingDays.Sub(daysTaken)
	balance.LastUpdated = l.now().UTC()

	if err := st.SaveBalance(ctx, balance); err != nil {
		return nil, fmt.Errorf("failed to deduct from balance: %w", err)
	}
	return balance, nil
}
