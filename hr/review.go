/*
review.go - Shared approve/reject capability

PURPOSE:
  Adjustments and time-off requests share the same review shape: a PENDING
  item transitions once to APPROVED or REJECTED, stamped with reviewer and
  comment. Reviewable models that capability so the transition rules live
  in one place instead of being duplicated per entity.

STATE MACHINE:
  PENDING ──▶ APPROVED   (terminal)
          └─▶ REJECTED   (terminal)

  Re-reviewing a decided item fails with ErrAlreadyReviewed.
*/
package hr

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// REVIEW STATUS
// =============================================================================

type ReviewStatus string

const (
	StatusPending  ReviewStatus = "PENDING"
	StatusApproved ReviewStatus = "APPROVED"
	StatusRejected ReviewStatus = "REJECTED"
)

func (s ReviewStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Terminal reports whether no further transition is allowed.
func (s ReviewStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// =============================================================================
// REVIEWABLE
// =============================================================================

// Reviewable is implemented by *TimeAdjustment and *TimeOffRequest.
type Reviewable interface {
	ReviewStatus() ReviewStatus
	SetReview(status ReviewStatus, reviewer uuid.UUID, comment string, at time.Time)
}

// Transition applies a review decision, enforcing the single-transition
// rule. The new status must itself be terminal (a review decides).
func Transition(r Reviewable, status ReviewStatus, reviewer uuid.UUID, comment string, at time.Time) error {
	if !status.Terminal() {
		return ErrBadRequest
	}
	if r.ReviewStatus().Terminal() {
		return ErrAlreadyReviewed
	}
	r.SetReview(status, reviewer, comment, at)
	return nil
}

func (a *TimeAdjustment) ReviewStatus() ReviewStatus { return a.Status }

func (a *TimeAdjustment) SetReview(status ReviewStatus, reviewer uuid.UUID, comment string, at time.Time) {
	a.Status = status
	a.ReviewedBy = &reviewer
	a.ReviewComment = comment
	a.UpdatedAt = at
}

func (r *TimeOffRequest) ReviewStatus() ReviewStatus { return r.Status }

func (r *TimeOffRequest) SetReview(status ReviewStatus, reviewer uuid.UUID, comment string, at time.Time) {
	r.Status = status
	r.ReviewedBy = &reviewer
	r.ReviewComment = comment
	r.UpdatedAt = at
}
