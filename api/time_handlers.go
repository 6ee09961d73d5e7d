/*
time_handlers.go - Time tracking endpoints: records, worked-hours
reports, and adjustments.

ENDPOINTS IN THIS FILE:
  Records:
    POST   /api/time-records              Check in / check out
    GET    /api/time-records/me           Own records (paged)
    GET    /api/time-records              All records, filter + search (HR)

  Reports:
    GET    /api/time-records/hours/weekly  Worked hours for a week
    GET    /api/time-records/hours/monthly Worked hours for a month

  Adjustments:
    POST   /api/adjustments               Propose a correction
    GET    /api/adjustments/me            Own adjustments
    GET    /api/adjustments               All adjustments (HR)
    POST   /api/adjustments/{id}/review   Approve or reject (HR)

SEE ALSO:
  - tracking/: interval + alternation rules, hours aggregation
  - workflow/adjustment.go: the review state machine
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atempo/hr-engine/auth"
	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
)

// =============================================================================
// TIME RECORD HANDLERS
// =============================================================================

// CreateTimeRecord appends a check-in or check-out for the caller. The
// timestamp is always server-side now; clients cannot backdate here,
// that is what adjustments are for.
func (h *Handler) CreateTimeRecord(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req CreateTimeRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.Tracker.Append(r.Context(), h.Store, id.User.ID, hr.RecordType(req.RecordType), req.Description)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeRecordDTO(record))
}

// ListMyTimeRecords pages through the caller's own records, newest first.
func (h *Handler) ListMyTimeRecords(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.listRecords(w, r, store.RecordFilter{UserID: &id.User.ID})
}

// SearchTimeRecords pages through everyone's records with optional
// user_id and full-name substring filters. HR only.
func (h *Handler) SearchTimeRecords(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireHR(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	filter := store.RecordFilter{FullName: r.URL.Query().Get("full_name")}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user_id", err)
			return
		}
		filter.UserID = &userID
	}
	h.listRecords(w, r, filter)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request, filter store.RecordFilter) {
	limit, offset := pageParams(r)
	records, total, err := h.Store.SearchTimeRecords(r.Context(), filter, limit, offset)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	dtos := make([]TimeRecordWithUserDTO, len(records))
	for i, rec := range records {
		dtos[i] = toTimeRecordWithUserDTO(rec)
	}
	writeJSON(w, http.StatusOK, PageDTO{
		Total:   total,
		Count:   len(dtos),
		Limit:   limit,
		Offset:  offset,
		Results: dtos,
	})
}

// =============================================================================
// HOURS REPORTS
// =============================================================================

// WeeklyHours reports hours worked in the seven days from week_start.
// Employees see their own week; HR may pass user_id.
func (h *Handler) WeeklyHours(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.reportSubject(w, r)
	if !ok {
		return
	}

	weekStart, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("week_start"), time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week_start (use YYYY-MM-DD)", err)
		return
	}

	report, err := h.Tracker.Weekly(r.Context(), h.Store, userID, weekStart)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHoursReportDTO(userID.String(), weekStart, weekStart.AddDate(0, 0, 6), report))
}

// MonthlyHours reports hours worked in a calendar month.
func (h *Handler) MonthlyHours(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.reportSubject(w, r)
	if !ok {
		return
	}

	year := queryInt(r, "year", h.now().UTC().Year())
	month := queryInt(r, "month", int(h.now().UTC().Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12", nil)
		return
	}

	report, err := h.Tracker.Monthly(r.Context(), h.Store, userID, year, time.Month(month))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	writeJSON(w, http.StatusOK, toHoursReportDTO(userID.String(), first, last, report))
}

// reportSubject resolves whose hours a report covers: the caller by
// default, or ?user_id= when the caller may see that user.
func (h *Handler) reportSubject(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return uuid.Nil, false
	}

	subject := id.User.ID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		subject, err = uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user_id", err)
			return uuid.Nil, false
		}
	}
	if _, err := auth.RequireSelfOrHR(r.Context(), subject); err != nil {
		h.handleError(w, r, err)
		return uuid.Nil, false
	}
	return subject, true
}

// =============================================================================
// ADJUSTMENT HANDLERS
// =============================================================================

// CreateAdjustment proposes a correction to the caller's own records.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	adjustedAt, err := time.Parse(time.RFC3339, req.AdjustedTimestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid adjusted_timestamp (use RFC 3339)", err)
		return
	}

	var recordID *uuid.UUID
	if req.TimeRecordID != nil {
		parsed, err := uuid.Parse(*req.TimeRecordID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid time_record_id", err)
			return
		}
		recordID = &parsed
	}

	adjustment, err := h.Adjustments.Propose(r.Context(), h.Store, id.User.ID, recordID, adjustedAt, hr.AdjustmentType(req.AdjustedType), req.Reason)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdjustmentDTO(adjustment))
}

// ListMyAdjustments returns the caller's adjustments, newest first.
func (h *Handler) ListMyAdjustments(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	adjustments, err := h.Store.ListAdjustmentsByUser(r.Context(), id.User.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterAdjustmentDTOs(adjustments, r.URL.Query().Get("status")))
}

// ListAdjustments returns every adjustment, optionally by status. HR only.
func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireHR(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	adjustments, err := h.Store.ListAdjustments(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterAdjustmentDTOs(adjustments, r.URL.Query().Get("status")))
}

// ReviewAdjustment approves or rejects a pending adjustment. HR only.
// Re-reviewing a decided adjustment answers 409.
func (h *Handler) ReviewAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireHR(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	adjustmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid adjustment id", err)
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	adjustment, err := h.Adjustments.Review(r.Context(), h.Store, adjustmentID, id.User.ID, hr.ReviewStatus(req.Status), req.Comment)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdjustmentDTO(adjustment))
}

func filterAdjustmentDTOs(adjustments []hr.TimeAdjustment, status string) []AdjustmentDTO {
	dtos := make([]AdjustmentDTO, 0, len(adjustments))
	for i := range adjustments {
		if status != "" && string(adjustments[i].Status) != status {
			continue
		}
		dtos = append(dtos, toAdjustmentDTO(&adjustments[i]))
	}
	return dtos
}
