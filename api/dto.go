/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

PAGINATED LISTINGS:
  List endpoints that page return the envelope
    {"total": N, "count": len, "limit": L, "offset": O, "results": [...]}
  where total is the match count before pagination and count the size of
  this page.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
	"github.com/atempo/hr-engine/tracking"
)

const dateLayout = "2006-01-02"

// =============================================================================
// ENVELOPES
// =============================================================================

// PageDTO is the pagination envelope shared by paged listings.
type PageDTO struct {
	Total   int `json:"total"`
	Count   int `json:"count"`
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Results any `json:"results"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest uses pointers so absent fields are left unchanged.
// Employees editing themselves may only set username, email and
// full_name; the rest is HR-only.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// =============================================================================
// LEAVE BALANCES
// =============================================================================

type BalanceDTO struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	LeaveType     string  `json:"leave_type"`
	Year          int     `json:"year"`
	UsedDays      string  `json:"used_days"`
	RemainingDays string  `json:"remaining_days"`
	WeeklyHours   float64 `json:"weekly_hours"`
	MonthlyHours  float64 `json:"monthly_hours"`
	LastUpdated   string  `json:"last_updated"`
}

type AccrueRequest struct {
	UserID      string   `json:"user_id"`
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	LeaveType   string   `json:"leave_type"`
	WeeklyHours *float64 `json:"weekly_hours,omitempty"`
}

// =============================================================================
// TIME TRACKING
// =============================================================================

type CreateTimeRecordRequest struct {
	RecordType  string `json:"record_type"`
	Description string `json:"description,omitempty"`
}

type TimeRecordDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	RecordType  string `json:"record_type"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// TimeRecordWithUserDTO adds owner identity for the HR listing.
type TimeRecordWithUserDTO struct {
	TimeRecordDTO
	Username     string `json:"username"`
	UserFullName string `json:"user_full_name"`
	UserEmail    string `json:"user_email"`
}

type HoursReportDTO struct {
	UserID      string  `json:"user_id"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	HoursWorked float64 `json:"hours_worked"`
	Limit       float64 `json:"limit"`
	OverLimit   float64 `json:"over_limit"`
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

type CreateAdjustmentRequest struct {
	TimeRecordID      *string `json:"time_record_id,omitempty"`
	AdjustedTimestamp string  `json:"adjusted_timestamp"`
	AdjustedType      string  `json:"adjusted_type"`
	Reason            string  `json:"reason"`
}

type AdjustmentDTO struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	TimeRecordID      *string `json:"time_record_id,omitempty"`
	AdjustedTimestamp string  `json:"adjusted_timestamp"`
	AdjustedType      string  `json:"adjusted_type"`
	Reason            string  `json:"reason,omitempty"`
	Status            string  `json:"status"`
	ReviewedBy        *string `json:"reviewed_by,omitempty"`
	ReviewComment     string  `json:"review_comment,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
}

// ReviewRequest decides a pending adjustment or time-off request.
type ReviewRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// =============================================================================
// TIME-OFF REQUESTS
// =============================================================================

type CreateTimeOffRequest struct {
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	LeaveType     string  `json:"leave_type"`
	Reason        string  `json:"reason,omitempty"`
	DaysRequested *string `json:"days_requested,omitempty"`
}

type TimeOffRequestDTO struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	LeaveType     string  `json:"leave_type"`
	DaysRequested string  `json:"days_requested"`
	Reason        string  `json:"reason,omitempty"`
	Status        string  `json:"status"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewComment string  `json:"review_comment,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toUserDTO(u *hr.User) UserDTO {
	return UserDTO{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toBalanceDTO(b *hr.LeaveBalance) BalanceDTO {
	return BalanceDTO{
		ID:            b.ID.String(),
		UserID:        b.UserID.String(),
		LeaveType:     string(b.LeaveType),
		Year:          b.Year,
		UsedDays:      b.UsedDays.String(),
		RemainingDays: b.RemainingDays.String(),
		WeeklyHours:   b.WeeklyHours,
		MonthlyHours:  b.MonthlyHours,
		LastUpdated:   b.LastUpdated.Format(time.RFC3339),
	}
}

func toTimeRecordDTO(rec *hr.TimeRecord) TimeRecordDTO {
	return TimeRecordDTO{
		ID:          rec.ID.String(),
		UserID:      rec.UserID.String(),
		RecordType:  string(rec.RecordType),
		Timestamp:   rec.Timestamp.Format(time.RFC3339),
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func toTimeRecordWithUserDTO(rec store.RecordWithUser) TimeRecordWithUserDTO {
	return TimeRecordWithUserDTO{
		TimeRecordDTO: toTimeRecordDTO(&rec.TimeRecord),
		Username:      rec.Username,
		UserFullName:  rec.UserFullName,
		UserEmail:     rec.UserEmail,
	}
}

func toAdjustmentDTO(a *hr.TimeAdjustment) AdjustmentDTO {
	dto := AdjustmentDTO{
		ID:                a.ID.String(),
		UserID:            a.UserID.String(),
		AdjustedTimestamp: a.AdjustedTimestamp.Format(time.RFC3339),
		AdjustedType:      string(a.AdjustedType),
		Reason:            a.Reason,
		Status:            string(a.Status),
		ReviewComment:     a.ReviewComment,
		CreatedAt:         a.CreatedAt.Format(time.RFC3339),
	}
	if a.TimeRecordID != nil {
		id := a.TimeRecordID.String()
		dto.TimeRecordID = &id
	}
	if a.ReviewedBy != nil {
		id := a.ReviewedBy.String()
		dto.ReviewedBy = &id
	}
	return dto
}

func toTimeOffRequestDTO(req *hr.TimeOffRequest) TimeOffRequestDTO {
	dto := TimeOffRequestDTO{
		ID:            req.ID.String(),
		UserID:        req.UserID.String(),
		StartDate:     req.StartDate.Format(dateLayout),
		EndDate:       req.EndDate.Format(dateLayout),
		LeaveType:     string(req.LeaveType),
		DaysRequested: req.DaysRequested.String(),
		Reason:        req.Reason,
		Status:        string(req.Status),
		ReviewComment: req.ReviewComment,
		CreatedAt:     req.CreatedAt.Format(time.RFC3339),
	}
	if req.ReviewedBy != nil {
		id := req.ReviewedBy.String()
		dto.ReviewedBy = &id
	}
	return dto
}

func toHoursReportDTO(userID string, from, to time.Time, report *tracking.HoursReport) HoursReportDTO {
	return HoursReportDTO{
		UserID:      userID,
		PeriodStart: from.Format(dateLayout),
		PeriodEnd:   to.Format(dateLayout),
		HoursWorked: report.HoursWorked,
		Limit:       report.Limit,
		OverLimit:   report.OverLimit,
	}
}
