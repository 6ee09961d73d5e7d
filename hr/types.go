/*
Package hr contains the core domain types shared by every subsystem.

PURPOSE:
  Central definitions for roles, record types, leave types, review statuses
  and the entities they describe. Workflows, the ledger and the HTTP layer
  all speak in these types; nothing here touches persistence or transport.

KEY CONCEPTS IN THIS FILE (types.go):
  - Role: closed two-valued enum (RRHH | EMPLOYEE) so authorization logic
    can be written exhaustively instead of via string lookups
  - TimeRecord: an append-only check-in/check-out event
  - TimeAdjustment: a proposed correction to a historical record
  - TimeOffRequest: an employee leave request
  - LeaveBalance: per (user, leave type, year) accrual/debit state

DESIGN PRINCIPLES:
  1. Precision: day quantities use decimal.Decimal, never float64
  2. Type safety: enums are named types, not bare strings
  3. UTC everywhere: all timestamps are stored and compared in UTC

SEE ALSO:
  - errors.go: the request-boundary error taxonomy
  - review.go: the shared approve/reject capability
*/
package hr

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES
// =============================================================================

// Role is a closed enum. There are exactly two roles; authorization code
// switches over them exhaustively.
type Role string

const (
	RoleRRHH     Role = "RRHH"
	RoleEmployee Role = "EMPLOYEE"
)

func (r Role) Valid() bool {
	return r == RoleRRHH || r == RoleEmployee
}

// =============================================================================
// USER
// =============================================================================

type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	FullName       string
	HashedPassword string
	Role           Role
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// =============================================================================
// TIME RECORDS
// =============================================================================

type RecordType string

const (
	CheckIn  RecordType = "CHECK_IN"
	CheckOut RecordType = "CHECK_OUT"
)

func (rt RecordType) Valid() bool {
	return rt == CheckIn || rt == CheckOut
}

// TimeRecord is an append-only check-in/check-out event. Ordering is by
// Timestamp, not insertion order. The only mutation path is an approved
// adjustment overwriting Timestamp/RecordType in place.
type TimeRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	RecordType  RecordType
	Timestamp   time.Time
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// =============================================================================
// TIME ADJUSTMENTS
// =============================================================================

type AdjustmentType string

const (
	EntryCorrection AdjustmentType = "ENTRY_CORRECTION"
	ExitCorrection  AdjustmentType = "EXIT_CORRECTION"
	ManualEntry     AdjustmentType = "MANUAL_ENTRY"
	OtherAdjustment AdjustmentType = "OTHER"
)

func (at AdjustmentType) Valid() bool {
	switch at {
	case EntryCorrection, ExitCorrection, ManualEntry, OtherAdjustment:
		return true
	}
	return false
}

// RecordTypeFor maps an adjustment type to the record type it corrects.
// OTHER maps to nothing: it never mutates a record and is never overlaid.
func (at AdjustmentType) RecordTypeFor() (RecordType, bool) {
	switch at {
	case EntryCorrection, ManualEntry:
		return CheckIn, true
	case ExitCorrection:
		return CheckOut, true
	}
	return "", false
}

// TimeAdjustment proposes a correction to a historical record.
// TimeRecordID is nil for standalone manual entries.
type TimeAdjustment struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	TimeRecordID      *uuid.UUID
	AdjustedTimestamp time.Time
	AdjustedType      AdjustmentType
	Reason            string
	Status            ReviewStatus
	ReviewedBy        *uuid.UUID
	ReviewComment     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// =============================================================================
// LEAVE
// =============================================================================

type LeaveType string

const (
	LeaveVacation LeaveType = "VACATION"
	LeaveSick     LeaveType = "SICK"
	LeavePersonal LeaveType = "PERSONAL"
	LeaveOther    LeaveType = "OTHER"
)

func (lt LeaveType) Valid() bool {
	switch lt {
	case LeaveVacation, LeaveSick, LeavePersonal, LeaveOther:
		return true
	}
	return false
}

// LeaveBalance is keyed by the unique (UserID, LeaveType, Year). Mutated only
// by the ledger's accrue and deduct operations. RemainingDays >= 0 is
// enforced at deduction time, not at rest.
type LeaveBalance struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	LeaveType     LeaveType
	Year          int
	UsedDays      decimal.Decimal
	RemainingDays decimal.Decimal
	WeeklyHours   float64
	MonthlyHours  float64
	LastUpdated   time.Time
}

// TimeOffRequest is an employee leave request. DaysRequested is the
// inclusive day count of [StartDate, EndDate] unless explicitly supplied.
type TimeOffRequest struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	LeaveType     LeaveType
	DaysRequested decimal.Decimal
	Reason        string
	Status        ReviewStatus
	ReviewedBy    *uuid.UUID
	ReviewComment string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
