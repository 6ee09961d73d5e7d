/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements store.Store and store.TxStore using database/sql. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  users:             Accounts with role and active flag
  leave_balances:    One row per (user, leave type, year), day quantities
                     stored as decimal strings
  time_records:      Append-only check-in/check-out events
  time_adjustments:  Proposed corrections with review state
  time_off_requests: Leave requests with review state

APPEND-ONLY ENFORCEMENT:
  time_records has no delete path. The single UPDATE statement exists for
  the adjustment-approval mutation and runs inside the same transaction
  that decides the adjustment.

CONCURRENCY:
  The pool is capped at one connection and transactions are opened with
  _txlock=immediate, so writers are serialized by the database itself.
  Two concurrent deductions against the same balance therefore cannot
  interleave: the second reads the state the first committed.

WAL MODE:
  SQLite is opened with WAL for better read concurrency and crash
  recovery.

USAGE:
  st, err := sqlite.New("./data/hr.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool.

SEE ALSO:
  - store/store.go: interface definitions
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
)

const (
	// RFC3339 strings order lexicographically, which the range queries
	// rely on. The 600 s append interval makes sub-second precision moot.
	timeFormat = time.RFC3339
	dateFormat = "2006-01-02"
)

// Store implements store.TxStore using SQLite.
type Store struct {
	db *sql.DB
	conn
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, conn: conn{db: db}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		hashed_password TEXT NOT NULL,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- One balance row per (user, leave type, year). Day quantities are
	-- decimal strings; REAL would drift across fractional accruals.
	CREATE TABLE IF NOT EXISTS leave_balances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		leave_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		used_days TEXT NOT NULL,
		remaining_days TEXT NOT NULL,
		weekly_hours REAL NOT NULL DEFAULT 0,
		monthly_hours REAL NOT NULL DEFAULT 0,
		last_updated TEXT NOT NULL,
		UNIQUE(user_id, leave_type, year)
	);

	CREATE INDEX IF NOT EXISTS idx_balances_user
		ON leave_balances(user_id);

	CREATE TABLE IF NOT EXISTS time_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		record_type TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path: latest-record lookup and window queries.
	CREATE INDEX IF NOT EXISTS idx_records_user_timestamp
		ON time_records(user_id, timestamp DESC);

	CREATE TABLE IF NOT EXISTS time_adjustments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		time_record_id TEXT REFERENCES time_records(id),
		adjusted_timestamp TEXT NOT NULL,
		adjusted_type TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING',
		reviewed_by TEXT,
		review_comment TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_adjustments_user_timestamp
		ON time_adjustments(user_id, adjusted_timestamp);
	CREATE INDEX IF NOT EXISTS idx_adjustments_status
		ON time_adjustments(status);

	CREATE TABLE IF NOT EXISTS time_off_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		days_requested TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING',
		reviewed_by TEXT,
		review_comment TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user
		ON time_off_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON time_off_requests(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within one database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&conn{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// CONNECTION - All queries run against either *sql.DB or *sql.Tx
// =============================================================================

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	db dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// USERS
// =============================================================================

const userColumns = `id, username, email, full_name, hashed_password, role, is_active, created_at, updated_at`

func (c *conn) CreateUser(ctx context.Context, u *hr.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Username, u.Email, u.FullName, u.HashedPassword,
		string(u.Role), u.IsActive,
		u.CreatedAt.Format(timeFormat), u.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (c *conn) GetUser(ctx context.Context, id uuid.UUID) (*hr.User, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	return scanUserRow(row)
}

func (c *conn) GetUserByUsername(ctx context.Context, username string) (*hr.User, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUserRow(row)
}

func (c *conn) GetUserByEmail(ctx context.Context, email string) (*hr.User, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUserRow(row)
}

func (c *conn) ListUsers(ctx context.Context) ([]hr.User, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []hr.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (c *conn) UpdateUser(ctx context.Context, u *hr.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := c.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, full_name = ?, hashed_password = ?,
		        role = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		u.Username, u.Email, u.FullName, u.HashedPassword,
		string(u.Role), u.IsActive, u.UpdatedAt.Format(timeFormat),
		u.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrNotFound
	}
	return nil
}

func (c *conn) DeleteUser(ctx context.Context, id uuid.UUID) error {
	// leave_balances rows go with the user via ON DELETE CASCADE.
	res, err := c.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrNotFound
	}
	return nil
}

func scanUserRow(row *sql.Row) (*hr.User, error) {
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func scanUser(s rowScanner) (*hr.User, error) {
	var (
		u                    hr.User
		id, role             string
		createdAt, updatedAt string
	)
	err := s.Scan(&id, &u.Username, &u.Email, &u.FullName, &u.HashedPassword,
		&role, &u.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	u.Role = hr.Role(role)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}

// =============================================================================
// LEAVE BALANCES
// =============================================================================

const balanceColumns = `id, user_id, leave_type, year, used_days, remaining_days, weekly_hours, monthly_hours, last_updated`

func (c *conn) GetBalance(ctx context.Context, userID uuid.UUID, leaveType hr.LeaveType, year int) (*hr.LeaveBalance, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+balanceColumns+` FROM leave_balances
		 WHERE user_id = ? AND leave_type = ? AND year = ?`,
		userID.String(), string(leaveType), year)

	b, err := scanBalance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (c *conn) ListBalances(ctx context.Context) ([]hr.LeaveBalance, error) {
	return c.queryBalances(ctx,
		`SELECT `+balanceColumns+` FROM leave_balances ORDER BY year DESC, leave_type`)
}

func (c *conn) ListBalancesByUser(ctx context.Context, userID uuid.UUID) ([]hr.LeaveBalance, error) {
	return c.queryBalances(ctx,
		`SELECT `+balanceColumns+` FROM leave_balances
		 WHERE user_id = ? ORDER BY year DESC, leave_type`, userID.String())
}

func (c *conn) SaveBalance(ctx context.Context, b *hr.LeaveBalance) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO leave_balances (`+balanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, leave_type, year) DO UPDATE SET
			used_days = excluded.used_days,
			remaining_days = excluded.remaining_days,
			weekly_hours = excluded.weekly_hours,
			monthly_hours = excluded.monthly_hours,
			last_updated = excluded.last_updated`,
		b.ID.String(), b.UserID.String(), string(b.LeaveType), b.Year,
		b.UsedDays.String(), b.RemainingDays.String(),
		b.WeeklyHours, b.MonthlyHours,
		b.LastUpdated.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

func (c *conn) queryBalances(ctx context.Context, query string, args ...any) ([]hr.LeaveBalance, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []hr.LeaveBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, rows.Err()
}

func scanBalance(s rowScanner) (*hr.LeaveBalance, error) {
	var (
		b                            hr.LeaveBalance
		id, userID, leaveType        string
		usedDays, remaining, lastUpd string
	)
	err := s.Scan(&id, &userID, &leaveType, &b.Year, &usedDays, &remaining,
		&b.WeeklyHours, &b.MonthlyHours, &lastUpd)
	if err != nil {
		return nil, err
	}
	b.ID, _ = uuid.Parse(id)
	b.UserID, _ = uuid.Parse(userID)
	b.LeaveType = hr.LeaveType(leaveType)
	b.UsedDays = mustDecimal(usedDays)
	b.RemainingDays = mustDecimal(remaining)
	b.LastUpdated = parseTime(lastUpd)
	return &b, nil
}

// =============================================================================
// TIME RECORDS
// =============================================================================

const recordColumns = `id, user_id, record_type, timestamp, description, created_at, updated_at`

func (c *conn) InsertTimeRecord(ctx context.Context, r *hr.TimeRecord) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO time_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.UserID.String(), string(r.RecordType),
		r.Timestamp.UTC().Format(timeFormat), r.Description,
		r.CreatedAt.Format(timeFormat), r.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert time record: %w", err)
	}
	return nil
}

func (c *conn) GetTimeRecord(ctx context.Context, id uuid.UUID) (*hr.TimeRecord, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM time_records WHERE id = ?`, id.String())
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (c *conn) LatestTimeRecord(ctx context.Context, userID uuid.UUID) (*hr.TimeRecord, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM time_records
		 WHERE user_id = ? ORDER BY timestamp DESC LIMIT 1`, userID.String())
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// UpdateTimeRecord is the adjustment-approval mutation path. Only
// timestamp and record_type change; the event is otherwise immutable.
func (c *conn) UpdateTimeRecord(ctx context.Context, r *hr.TimeRecord) error {
	r.UpdatedAt = time.Now().UTC()
	res, err := c.db.ExecContext(ctx,
		`UPDATE time_records SET record_type = ?, timestamp = ?, updated_at = ? WHERE id = ?`,
		string(r.RecordType), r.Timestamp.UTC().Format(timeFormat),
		r.UpdatedAt.Format(timeFormat), r.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update time record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrNotFound
	}
	return nil
}

func (c *conn) TimeRecordsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]hr.TimeRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM time_records
		 WHERE user_id = ? AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC`,
		userID.String(), from.UTC().Format(timeFormat), to.UTC().Format(timeFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []hr.TimeRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func (c *conn) SearchTimeRecords(ctx context.Context, filter store.RecordFilter, limit, offset int) ([]store.RecordWithUser, int, error) {
	where := " WHERE 1=1"
	var args []any
	if filter.UserID != nil {
		where += " AND r.user_id = ?"
		args = append(args, filter.UserID.String())
	}
	if filter.FullName != "" {
		where += " AND lower(u.full_name) LIKE '%' || lower(?) || '%'"
		args = append(args, filter.FullName)
	}

	var total int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM time_records r JOIN users u ON r.user_id = u.id`+where,
		args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT r.id, r.user_id, r.record_type, r.timestamp, r.description,
	                 r.created_at, r.updated_at, u.username, u.full_name, u.email
	          FROM time_records r JOIN users u ON r.user_id = u.id` + where +
		` ORDER BY r.timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []store.RecordWithUser
	for rows.Next() {
		var (
			rw                   store.RecordWithUser
			id, userID, rtype    string
			ts, created, updated string
		)
		if err := rows.Scan(&id, &userID, &rtype, &ts, &rw.Description,
			&created, &updated, &rw.Username, &rw.UserFullName, &rw.UserEmail); err != nil {
			return nil, 0, err
		}
		rw.ID, _ = uuid.Parse(id)
		rw.UserID, _ = uuid.Parse(userID)
		rw.RecordType = hr.RecordType(rtype)
		rw.Timestamp = parseTime(ts)
		rw.CreatedAt = parseTime(created)
		rw.UpdatedAt = parseTime(updated)
		results = append(results, rw)
	}
	return results, total, rows.Err()
}

func scanRecord(s rowScanner) (*hr.TimeRecord, error) {
	var (
		r                           hr.TimeRecord
		id, userID, recordType      string
		timestamp, created, updated string
	)
	err := s.Scan(&id, &userID, &recordType, &timestamp, &r.Description, &created, &updated)
	if err != nil {
		return nil, err
	}
	r.ID, _ = uuid.Parse(id)
	r.UserID, _ = uuid.Parse(userID)
	r.RecordType = hr.RecordType(recordType)
	r.Timestamp = parseTime(timestamp)
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return &r, nil
}

// =============================================================================
// TIME ADJUSTMENTS
// =============================================================================

const adjustmentColumns = `id, user_id, time_record_id, adjusted_timestamp, adjusted_type, reason, status, reviewed_by, review_comment, created_at, updated_at`

func (c *conn) InsertAdjustment(ctx context.Context, a *hr.TimeAdjustment) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO time_adjustments (`+adjustmentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.UserID.String(), uuidPtr(a.TimeRecordID),
		a.AdjustedTimestamp.UTC().Format(timeFormat), string(a.AdjustedType),
		a.Reason, string(a.Status), uuidPtr(a.ReviewedBy), a.ReviewComment,
		a.CreatedAt.Format(timeFormat), a.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert adjustment: %w", err)
	}
	return nil
}

func (c *conn) GetAdjustment(ctx context.Context, id uuid.UUID) (*hr.TimeAdjustment, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+adjustmentColumns+` FROM time_adjustments WHERE id = ?`, id.String())
	a, err := scanAdjustment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (c *conn) UpdateAdjustment(ctx context.Context, a *hr.TimeAdjustment) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := c.db.ExecContext(ctx,
		`UPDATE time_adjustments SET status = ?, reviewed_by = ?, review_comment = ?, updated_at = ?
		 WHERE id = ?`,
		string(a.Status), uuidPtr(a.ReviewedBy), a.ReviewComment,
		a.UpdatedAt.Format(timeFormat), a.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update adjustment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrNotFound
	}
	return nil
}

func (c *conn) ListAdjustmentsByUser(ctx context.Context, userID uuid.UUID) ([]hr.TimeAdjustment, error) {
	return c.queryAdjustments(ctx,
		`SELECT `+adjustmentColumns+` FROM time_adjustments
		 WHERE user_id = ? ORDER BY created_at DESC`, userID.String())
}

func (c *conn) ListAdjustments(ctx context.Context) ([]hr.TimeAdjustment, error) {
	return c.queryAdjustments(ctx,
		`SELECT `+adjustmentColumns+` FROM time_adjustments ORDER BY created_at DESC`)
}

func (c *conn) AdjustmentsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]hr.TimeAdjustment, error) {
	return c.queryAdjustments(ctx,
		`SELECT `+adjustmentColumns+` FROM time_adjustments
		 WHERE user_id = ? AND adjusted_timestamp >= ? AND adjusted_timestamp <= ?
		 ORDER BY adjusted_timestamp ASC`,
		userID.String(), from.UTC().Format(timeFormat), to.UTC().Format(timeFormat))
}

func (c *conn) queryAdjustments(ctx context.Context, query string, args ...any) ([]hr.TimeAdjustment, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []hr.TimeAdjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, *a)
	}
	return adjustments, rows.Err()
}

func scanAdjustment(s rowScanner) (*hr.TimeAdjustment, error) {
	var (
		a                            hr.TimeAdjustment
		id, userID, adjType, status  string
		recordID, reviewedBy         sql.NullString
		adjustedAt, created, updated string
	)
	err := s.Scan(&id, &userID, &recordID, &adjustedAt, &adjType, &a.Reason,
		&status, &reviewedBy, &a.ReviewComment, &created, &updated)
	if err != nil {
		return nil, err
	}
	a.ID, _ = uuid.Parse(id)
	a.UserID, _ = uuid.Parse(userID)
	a.TimeRecordID = parseUUIDPtr(recordID)
	a.ReviewedBy = parseUUIDPtr(reviewedBy)
	a.AdjustedTimestamp = parseTime(adjustedAt)
	a.AdjustedType = hr.AdjustmentType(adjType)
	a.Status = hr.ReviewStatus(status)
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	return &a, nil
}

// =============================================================================
// TIME-OFF REQUESTS
// =============================================================================

const requestColumns = `id, user_id, start_date, end_date, leave_type, days_requested, reason, status, reviewed_by, review_comment, created_at, updated_at`

func (c *conn) InsertRequest(ctx context.Context, r *hr.TimeOffRequest) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO time_off_requests (`+requestColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.UserID.String(),
		r.StartDate.Format(dateFormat), r.EndDate.Format(dateFormat),
		string(r.LeaveType), r.DaysRequested.String(), r.Reason,
		string(r.Status), uuidPtr(r.ReviewedBy), r.ReviewComment,
		r.CreatedAt.Format(timeFormat), r.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (c *conn) GetRequest(ctx context.Context, id uuid.UUID) (*hr.TimeOffRequest, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM time_off_requests WHERE id = ?`, id.String())
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (c *conn) UpdateRequest(ctx context.Context, r *hr.TimeOffRequest) error {
	r.UpdatedAt = time.Now().UTC()
	res, err := c.db.ExecContext(ctx,
		`UPDATE time_off_requests SET status = ?, reviewed_by = ?, review_comment = ?, updated_at = ?
		 WHERE id = ?`,
		string(r.Status), uuidPtr(r.ReviewedBy), r.ReviewComment,
		r.UpdatedAt.Format(timeFormat), r.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrNotFound
	}
	return nil
}

func (c *conn) ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]hr.TimeOffRequest, error) {
	return c.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM time_off_requests
		 WHERE user_id = ? ORDER BY created_at DESC`, userID.String())
}

func (c *conn) ListRequests(ctx context.Context) ([]hr.TimeOffRequest, error) {
	return c.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM time_off_requests ORDER BY created_at DESC`)
}

func (c *conn) queryRequests(ctx context.Context, query string, args ...any) ([]hr.TimeOffRequest, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []hr.TimeOffRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanRequest(s rowScanner) (*hr.TimeOffRequest, error) {
	var (
		r                             hr.TimeOffRequest
		id, userID, leaveType, status string
		startDate, endDate, days      string
		reviewedBy                    sql.NullString
		created, updated              string
	)
	err := s.Scan(&id, &userID, &startDate, &endDate, &leaveType, &days,
		&r.Reason, &status, &reviewedBy, &r.ReviewComment, &created, &updated)
	if err != nil {
		return nil, err
	}
	r.ID, _ = uuid.Parse(id)
	r.UserID, _ = uuid.Parse(userID)
	r.StartDate = parseDate(startDate)
	r.EndDate = parseDate(endDate)
	r.LeaveType = hr.LeaveType(leaveType)
	r.DaysRequested = mustDecimal(days)
	r.Status = hr.ReviewStatus(status)
	r.ReviewedBy = parseUUIDPtr(reviewedBy)
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return &r, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateFormat, s)
	return t.UTC()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func uuidPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func parseUUIDPtr(ns sql.NullString) *uuid.UUID {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	id, err := uuid.Parse(ns.String)
	if err != nil {
		return nil
	}
	return &id
}
