/*
handlers.go - HTTP API handlers: handler context, auth, user management

PURPOSE:
  Exposes the HR engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS IN THIS FILE:
  Auth:
    POST   /api/auth/login          Exchange credentials for a token

  Users:
    GET    /api/users               List users (HR)
    POST   /api/users               Create user (HR)
    GET    /api/users/me            Current user's profile
    PUT    /api/users/me            Update own profile (allow-listed fields)
    GET    /api/users/{id}          Get user (self or HR)
    PUT    /api/users/{id}          Update user (self restricted, HR full)
    DELETE /api/users/{id}          Delete user (HR)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: transactional database access
  - Ledger/Tracker/workflows: domain logic
  - TokenSecret/TokenTTL: auth material

ERROR HANDLING:
  Domain errors carry their classification; handleError maps them with
  hr.HTTPStatus, so handlers never pick status codes for domain failures.
  Server-side failures (500) are logged; client errors are not.

SEE ALSO:
  - time_handlers.go: time records, hours, adjustments
  - leave_handlers.go: balances and time-off requests
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/atempo/hr-engine/auth"
	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/ledger"
	"github.com/atempo/hr-engine/store"
	"github.com/atempo/hr-engine/tracking"
	"github.com/atempo/hr-engine/workflow"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       store.TxStore
	Ledger      *ledger.Ledger
	Tracker     *tracking.Tracker
	Adjustments *workflow.Adjustments
	Requests    *workflow.Requests

	TokenSecret []byte
	TokenTTL    time.Duration

	Log *logrus.Logger

	now func() time.Time
}

// NewHandler wires the domain services around the given store.
func NewHandler(st store.TxStore, secret []byte, ttl time.Duration, log *logrus.Logger) *Handler {
	l := ledger.New()
	return &Handler{
		Store:       st,
		Ledger:      l,
		Tracker:     tracking.New(),
		Adjustments: workflow.NewAdjustments(),
		Requests:    workflow.NewRequests(l),
		TokenSecret: secret,
		TokenTTL:    ttl,
		Log:         log,
		now:         time.Now,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges username + password for a bearer token. Unknown user,
// wrong password and deactivated account all answer 401 identically.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if user == nil || !user.IsActive {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err := auth.CheckPassword(user.HashedPassword, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	now := h.now().UTC()
	token, err := auth.IssueToken(h.TokenSecret, user, h.TokenTTL, now)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenDTO{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   now.Add(h.TokenTTL).Format(time.RFC3339),
	})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users. HR only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireHR(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser creates a new user. HR only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireHR(r.Context()); err != nil {
		h.handleError(w, r, err)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required", nil)
		return
	}
	role := hr.Role(req.Role)
	if req.Role == "" {
		role = hr.RoleEmployee
	}
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown role %q", req.Role), nil)
		return
	}

	if err := h.checkUniqueUser(r, req.Username, req.Email, uuid.Nil); err != nil {
		h.handleError(w, r, err)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	user := &hr.User{
		ID:             uuid.New(),
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hashed,
		Role:           role,
		IsActive:       true,
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// GetMe returns the caller's own profile.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(id.User))
}

// UpdateMe updates the caller's own profile. Only allow-listed fields.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.updateUser(w, r, id, id.User.ID)
}

// GetUser returns a single user. Self or HR.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	if _, err := auth.RequireSelfOrHR(r.Context(), userID); err != nil {
		h.handleError(w, r, err)
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
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// UpdateUser updates a user. HR may change anything; an employee may
// only change their own username, email and full name.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	id, err := auth.RequireSelfOrHR(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.updateUser(w, r, id, userID)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, id auth.Identity, userID uuid.UUID) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := auth.CheckSelfEdit(id, requestedFields(req)); err != nil {
		h.handleError(w, r, err)
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

	if req.Username != nil || req.Email != nil {
		username, email := user.Username, user.Email
		if req.Username != nil {
			username = *req.Username
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := h.checkUniqueUser(r, username, email, user.ID); err != nil {
			h.handleError(w, r, err)
			return
		}
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		user.HashedPassword = hashed
	}
	if req.Role != nil {
		role := hr.Role(*req.Role)
		if !role.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown role %q", *req.Role), nil)
			return
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.Store.UpdateUser(r.Context(), user); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// DeleteUser removes a user and, via cascade, their leave balances.
// HR only; HR cannot delete themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := auth.RequireHR(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}
	if userID == id.User.ID {
		writeError(w, http.StatusBadRequest, "Cannot delete your own account", nil)
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

	if err := h.Store.DeleteUser(r.Context(), userID); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkUniqueUser rejects a username or email already taken by another
// user. exclude skips the user being updated.
func (h *Handler) checkUniqueUser(r *http.Request, username, email string, exclude uuid.UUID) error {
	existing, err := h.Store.GetUserByUsername(r.Context(), username)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exclude {
		return fmt.Errorf("%w: username %q already taken", hr.ErrBadRequest, username)
	}
	existing, err = h.Store.GetUserByEmail(r.Context(), email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exclude {
		return fmt.Errorf("%w: email %q already taken", hr.ErrBadRequest, email)
	}
	return nil
}

// requestedFields lists the profile fields a patch touches, for the
// self-edit allow-list check.
func requestedFields(req UpdateUserRequest) []string {
	var fields []string
	if req.Username != nil {
		fields = append(fields, "username")
	}
	if req.Email != nil {
		fields = append(fields, "email")
	}
	if req.FullName != nil {
		fields = append(fields, "full_name")
	}
	if req.Password != nil {
		fields = append(fields, "password")
	}
	if req.Role != nil {
		fields = append(fields, "role")
	}
	if req.IsActive != nil {
		fields = append(fields, "is_active")
	}
	return fields
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// handleError classifies a domain error and writes the matching status.
// Server-side failures are logged with request context; client errors
// are the caller's problem and stay out of the logs.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := hr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
		writeError(w, status, "Internal server error", nil)
		return
	}
	writeError(w, status, err.Error(), nil)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}

// pageParams reads limit/offset with the listing defaults and caps.
func pageParams(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 50)
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
