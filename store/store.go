/*
Package store defines the persistence interface between the domain logic
and the database.

PURPOSE:
  Workflows never hold a database connection; they receive a Store. A
  TxStore additionally hands out transaction-scoped Store handles via
  WithTx, so a review that must mutate a record AND a balance either
  commits both writes or neither. There are no process-wide singletons:
  every call takes the handle it operates on.

KEY INTERFACES:
  Store:   Entity CRUD + the filtered/paginated queries the API exposes
  TxStore: Store + WithTx for all-or-nothing request transactions

QUERY CAPABILITIES:
  Equality (user id), range (timestamp windows), case-insensitive
  substring (full name search), offset/limit pagination with total counts.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite via database/sql

SEE ALSO:
  - workflow/: consumes transaction-scoped handles
  - ledger/: balance reads/writes inside the same transactions
*/
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atempo/hr-engine/hr"
)

// =============================================================================
// FILTERS AND PAGES
// =============================================================================

// RecordFilter narrows a time-record search. Zero values mean "no filter".
// FullName matches as a case-insensitive substring.
type RecordFilter struct {
	UserID   *uuid.UUID
	FullName string
}

// RecordWithUser is a time record joined with its owner's identity, for
// the HR-facing listings.
type RecordWithUser struct {
	hr.TimeRecord
	Username     string
	UserFullName string
	UserEmail    string
}

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence surface the engine is written against.
//
// Time records are append-only through the engine: UpdateTimeRecord exists
// solely for the adjustment-approval mutation path and there is no delete.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *hr.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*hr.User, error)
	GetUserByUsername(ctx context.Context, username string) (*hr.User, error)
	GetUserByEmail(ctx context.Context, email string) (*hr.User, error)
	ListUsers(ctx context.Context) ([]hr.User, error)
	UpdateUser(ctx context.Context, u *hr.User) error
	// DeleteUser cascades to the user's leave balances.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Leave balances. GetBalance returns (nil, nil) when absent.
	GetBalance(ctx context.Context, userID uuid.UUID, leaveType hr.LeaveType, year int) (*hr.LeaveBalance, error)
	ListBalances(ctx context.Context) ([]hr.LeaveBalance, error)
	ListBalancesByUser(ctx context.Context, userID uuid.UUID) ([]hr.LeaveBalance, error)
	SaveBalance(ctx context.Context, b *hr.LeaveBalance) error

	// Time records
	InsertTimeRecord(ctx context.Context, r *hr.TimeRecord) error
	GetTimeRecord(ctx context.Context, id uuid.UUID) (*hr.TimeRecord, error)
	// LatestTimeRecord returns the user's most recent record by timestamp,
	// or (nil, nil) when the user has none.
	LatestTimeRecord(ctx context.Context, userID uuid.UUID) (*hr.TimeRecord, error)
	UpdateTimeRecord(ctx context.Context, r *hr.TimeRecord) error
	TimeRecordsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]hr.TimeRecord, error)
	// SearchTimeRecords returns a page ordered by timestamp descending,
	// plus the total match count before pagination.
	SearchTimeRecords(ctx context.Context, filter RecordFilter, limit, offset int) ([]RecordWithUser, int, error)

	// Adjustments
	InsertAdjustment(ctx context.Context, a *hr.TimeAdjustment) error
	GetAdjustment(ctx context.Context, id uuid.UUID) (*hr.TimeAdjustment, error)
	UpdateAdjustment(ctx context.Context, a *hr.TimeAdjustment) error
	ListAdjustmentsByUser(ctx context.Context, userID uuid.UUID) ([]hr.TimeAdjustment, error)
	ListAdjustments(ctx context.Context) ([]hr.TimeAdjustment, error)
	// AdjustmentsInRange returns a user's adjustments whose adjusted
	// timestamp falls in [from, to].
	AdjustmentsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]hr.TimeAdjustment, error)

	// Time-off requests
	InsertRequest(ctx context.Context, r *hr.TimeOffRequest) error
	GetRequest(ctx context.Context, id uuid.UUID) (*hr.TimeOffRequest, error)
	UpdateRequest(ctx context.Context, r *hr.TimeOffRequest) error
	ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]hr.TimeOffRequest, error)
	ListRequests(ctx context.Context) ([]hr.TimeOffRequest, error)
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore hands out transaction-scoped Store handles.
type TxStore interface {
	Store

	// WithTx executes fn within one database transaction. If fn returns
	// an error the transaction is rolled back and the error is returned.
	WithTx(ctx context.Context, fn func(Store) error) error
}
