/*
Package workflow implements the two review workflows: time-record
adjustments and time-off requests.

PURPOSE:
  Both workflows share the PENDING -> {APPROVED, REJECTED} state machine
  from hr.Reviewable. What differs is the side effect a review carries:
  an approved adjustment rewrites its linked time record in place; an
  approved request deducts from the leave balance ledger. Either side
  effect commits in the same transaction as the status change, or not at
  all.

REVIEW FLOW:
  ┌────────────────────────────────────────────────────────────┐
  │                                                            │
  │  Employee       PENDING item        HR reviews             │
  │  proposes  ──▶  persisted      ──▶  (one transaction)      │
  │                                          │                 │
  │                                    ┌──────────┐            │
  │                                    │ APPROVED │──▶ side    │
  │                                    └──────────┘    effect  │
  │                                          │                 │
  │                                    ┌──────────┐            │
  │                                    │ REJECTED │──▶ none    │
  │                                    └──────────┘            │
  │                                                            │
  └────────────────────────────────────────────────────────────┘

  Terminal states are terminal: re-reviewing fails with Conflict, which
  is also what makes the ledger deduction exactly-once.

SEE ALSO:
  - hr/review.go: the shared transition rules
  - ledger/ledger.go: the deduction an approved request triggers
*/
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atempo/hr-engine/hr"
	"github.com/atempo/hr-engine/store"
)

// Adjustments is the time-record adjustment workflow.
type Adjustments struct {
	now func() time.Time
}

func NewAdjustments() *Adjustments {
	return &Adjustments{now: time.Now}
}

// Propose inserts a PENDING adjustment. When a record is referenced it
// must exist; beyond that, no validation against existing records.
func (w *Adjustments) Propose(ctx context.Context, st store.Store, userID uuid.UUID, timeRecordID *uuid.UUID, adjustedAt time.Time, adjustedType hr.AdjustmentType, reason string) (*hr.TimeAdjustment, error) {
	if !adjustedType.Valid() {
		return nil, fmt.Errorf("%w: unknown adjustment type %q", hr.ErrBadRequest, adjustedType)
	}
	if timeRecordID != nil {
		record, err := st.GetTimeRecord(ctx, *timeRecordID)
		if err != nil {
			return nil, fmt.Errorf("failed to load time record: %w", err)
		}
		if record == nil {
			return nil, fmt.Errorf("%w: time record %s", hr.ErrNotFound, timeRecordID)
		}
		if record.UserID != userID {
			return nil, fmt.Errorf("%w: time record belongs to another user", hr.ErrForbidden)
		}
	}

	adjustment := &hr.TimeAdjustment{
		ID:                uuid.New(),
		UserID:            userID,
		TimeRecordID:      timeRecordID,
		AdjustedTimestamp: adjustedAt.UTC(),
		AdjustedType:      adjustedType,
		Reason:            reason,
		Status:            hr.StatusPending,
	}
	if err := st.InsertAdjustment(ctx, adjustment); err != nil {
		return nil, err
	}
	return adjustment, nil
}

// Review decides a PENDING adjustment. On APPROVED with a linked record,
// the record's timestamp is overwritten and its type set per the
// adjustment type; OTHER approvals and rejections leave the record
// untouched. Status change and record mutation commit together.
func (w *Adjustments) Review(ctx context.Context, st store.TxStore, adjustmentID, reviewer uuid.UUID, status hr.ReviewStatus, comment string) (*hr.TimeAdjustment, error) {
	var reviewed *hr.TimeAdjustment

	err := st.WithTx(ctx, func(tx store.Store) error {
		adjustment, err := tx.GetAdjustment(ctx, adjustmentID)
		if err != nil {
			return fmt.Errorf("failed to load adjustment: %w", err)
		}
		if adjustment == nil {
			return fmt.Errorf("%w: adjustment %s", hr.ErrNotFound, adjustmentID)
		}

		if err := hr.Transition(adjustment, status, reviewer, comment, w.now().UTC()); err != nil {
			return err
		}

		if status == hr.StatusApproved && adjustment.TimeRecordID != nil {
			if err := applyToRecord(ctx, tx, adjustment); err != nil {
				return err
			}
		}

		if err := tx.UpdateAdjustment(ctx, adjustment); err != nil {
			return err
		}
		reviewed = adjustment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// applyToRecord rewrites the linked record from an approved adjustment.
// This is the single mutation path for stored time records.
func applyToRecord(ctx context.Context, tx store.Store, adjustment *hr.TimeAdjustment) error {
	recordType, ok := adjustment.AdjustedType.RecordTypeFor()
	if !ok {
		return nil
	}

	record, err := tx.GetTimeRecord(ctx, *adjustment.TimeRecordID)
	if err != nil {
		return fmt.Errorf("failed to load time record: %w", err)
	}
	if record == nil {
		return fmt.Errorf("%w: time record %s", hr.ErrNotFound, adjustment.TimeRecordID)
	}

	record.Timestamp = adjustment.AdjustedTimestamp
	record.RecordType = recordType
	return tx.UpdateTimeRecord(ctx, record)
}
