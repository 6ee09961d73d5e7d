/*
leave_handlers.go - Leave balance and time-off request endpoints.

ENDPOINTS IN THIS FILE:
  Balances:
    GET    /api/leave-balances/me           Own balances, all types/years
    GET    /api/leave-balances              All balances (HR)
    POST   /api/leave-balances/accrue       Run a monthly accrual (HR)

  Time-off requests:
    POST   /api/time-off-requests             Submit a request
    GET    /api/time-off-requests/me          Own requests
    GET    /api/time-off-requests             All requests (HR)
    GET    /api/time-off-requests/{id}        Single request (owner or HR)
    POST   /api/time-off-requests/{id}/review Approve or reject (HR)

APPROVAL SEMANTICS:
  Approving a request deducts its day count from the matching balance in
  the same transaction. Insufficient balance answers 400 and leaves the
  request PENDING; a decided request answers 409 on re-review.

SEE ALSO:
  - ledger/: accrual formula and deduction invariants
  - workflow/request.go: the review transaction
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atempo/hr-engine/auth"
	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/ledger"
	"github.com/atempo/hr-engine/store"
)

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// ListMyBalances returns the caller's balances across types and years.
// The current-year vacation balance is created on first read so a new
// employee never sees an empty list.
func (h *Handler) ListMyBalances(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	year := h.now().UTC().Year()
	if _, err := h.Ledger.GetOrCreate(r.Context(), h.Store, id.User.ID, hr.LeaveVacation, year, ledger.FullTimeWeeklyHours); err != nil {
		h.handleError(w, r, err)
		return
	}

	balances, err := h.Store.ListBalancesByUser(r.Context(), id.User.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTOs(balances))
}

// ListBalances returns all balances, optionally for one user. HR only.
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireHR(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	var (
		balances []hr.LeaveBalance
		err      error
	)
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid user_id", parseErr)
			return
		}
		balances, err = h.Store.ListBalancesByUser(r.Context(), userID)
	} else {
		balances, err = h.Store.ListBalances(r.Context())
	}
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTOs(balances))
}

// Accrue runs one monthly accrual for a user, optionally updating their
// weekly hours first. HR only.
func (h *Handler) Accrue(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireHR(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	var req AccrueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user_id", err)
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12", nil)
		return
	}
	leaveType := hr.LeaveType(req.LeaveType)
	if req.LeaveType == "" {
		leaveType = hr.LeaveVacation
	}
	if !leaveType.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown leave_type", nil)
		return
	}

	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	weeklyHours := 0.0
	if req.WeeklyHours != nil {
		weeklyHours = *req.WeeklyHours
	}

	var balance *hr.LeaveBalance
	err = h.Store.WithTx(r.Context(), func(tx store.Store) error {
		balance, err = h.Ledger.Accrue(r.Context(), tx, userID, req.Year, time.Month(req.Month), leaveType, weeklyHours)
		return err
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

func toBalanceDTOs(balances []hr.LeaveBalance) []BalanceDTO {
	dtos := make([]BalanceDTO, len(balances))
	for i := range balances {
		dtos[i] = toBalanceDTO(&balances[i])
	}
	return dtos
}

// =============================================================================
// TIME-OFF REQUEST HANDLERS
// =============================================================================

// CreateTimeOffRequest submits a request for the caller. No balance
// check happens here, only at approval.
func (h *Handler) CreateTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req CreateTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	var days *decimal.Decimal
	if req.DaysRequested != nil {
		parsed, err := decimal.NewFromString(*req.DaysRequested)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid days_requested", err)
			return
		}
		days = &parsed
	}

	request, err := h.Requests.Create(r.Context(), h.Store, id.User.ID, start, end, hr.LeaveType(req.LeaveType), req.Reason, days)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeOffRequestDTO(request))
}

// ListMyTimeOffRequests returns the caller's requests, newest first.
func (h *Handler) ListMyTimeOffRequests(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	requests, err := h.Store.ListRequestsByUser(r.Context(), id.User.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterTimeOffRequestDTOs(requests, r.URL.Query().Get("status")))
}

// ListTimeOffRequests returns every request, optionally by status. HR only.
func (h *Handler) ListTimeOffRequests(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireHR(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	requests, err := h.Store.ListRequests(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filterTimeOffRequestDTOs(requests, r.URL.Query().Get("status")))
}

// GetTimeOffRequest returns a single request. Owner or HR.
func (h *Handler) GetTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id", err)
		return
	}

	request, err := h.Store.GetRequest(r.Context(), requestID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if request == nil {
		writeError(w, http.StatusNotFound, "Time-off request not found", nil)
		return
	}
	if _, err := auth.RequireSelfOrHR(r.Context(), request.UserID); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeOffRequestDTO(request))
}

// ReviewTimeOffRequest approves or rejects a pending request. HR only.
func (h *Handler) ReviewTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireHR(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id", err)
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	request, err := h.Requests.Review(r.Context(), h.Store, requestID, id.User.ID, hr.ReviewStatus(req.Status), req.Comment)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeOffRequestDTO(request))
}

func filterTimeOffRequestDTOs(requests []hr.TimeOffRequest, status string) []TimeOffRequestDTO {
	dtos := make([]TimeOffRequestDTO, 0, len(requests))
	for i := range requests {
		if status != "" && string(requests[i].Status) != status {
			continue
		}
		dtos = append(dtos, toTimeOffRequestDTO(&requests[i]))
	}
	return dtos
}
