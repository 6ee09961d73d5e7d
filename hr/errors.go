/*
errors.go - Centralized error taxonomy for the engine

PURPOSE:
  Every failure a request can surface falls into one of five classes:
  BadRequest, Unauthorized, Forbidden, NotFound, Conflict. Anything else is
  an internal fault: logged with path context, generic message to the caller.

USAGE:
  Domain code returns sentinels (or structured errors unwrapping to them);
  the HTTP layer maps the class to a status with HTTPStatus().

    if errors.Is(err, hr.ErrInsufficientBalance) { ... }

SEE ALSO:
  - api/handlers.go: status translation at the request boundary
*/
package hr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientBalance is returned when a deduction exceeds the
	// remaining days on a leave balance. The balance is left unchanged.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrInvalidRange is returned when a request's start date is after its
	// end date.
	ErrInvalidRange = errors.New("invalid date range: start after end")

	// ErrInvalidSequence is returned on a double check-in or double
	// check-out.
	ErrInvalidSequence = errors.New("record type repeats previous record")

	// ErrTooSoon is returned when two records from the same user arrive
	// within the minimum interval.
	ErrTooSoon = errors.New("minimum interval between records not elapsed")

	// ErrAlreadyReviewed is returned when re-reviewing a decided
	// adjustment or request. Terminal states are terminal.
	ErrAlreadyReviewed = errors.New("already reviewed")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized covers missing/invalid/expired credentials and
	// inactive accounts.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden covers role and ownership violations.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest covers malformed input and business-rule violations
	// without a more specific sentinel.
	ErrBadRequest = errors.New("bad request")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError details a balance shortage.
type InsufficientBalanceError struct {
	UserID    string
	LeaveType LeaveType
	Year      int
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s/%d: remaining %s, requested %s",
		e.LeaveType, e.Year, e.Remaining, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// SequenceError details an alternation violation on the record store.
type SequenceError struct {
	Last RecordType
	New  RecordType
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("cannot %s twice in a row", e.New)
}

func (e *SequenceError) Unwrap() error { return ErrInvalidSequence }

// =============================================================================
// CLASSIFICATION
// =============================================================================

// HTTPStatus maps the taxonomy to a response status. Unclassified errors
// map to 500; callers must not leak their message.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrTooSoon), errors.Is(err, ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrInvalidSequence),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the error is attributable to the caller.
func IsClientError(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
