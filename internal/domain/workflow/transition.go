// Package workflow holds the pure state-transition rules of the approval
// engine. Functions here operate on immutable snapshots and return the
// resulting state plus the ledger entry documenting it; persistence and
// locking are the application layer's concern.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrkit/approval-engine/internal/domain/entity"
)

// Transition is the computed outcome of applying one action to an instance
// snapshot. Entry carries the ledger record for the transition with
// InstanceID left unset (the caller fills it in when persisting).
type Transition struct {
	CurrentStep int
	Status      string
	CompletedAt *time.Time
	Entry       entity.WorkflowHistory
}

// Approve computes the transition for one approval of the instance's current
// step. The step satisfied is steps[CurrentStep] (zero-based), recorded with
// its 1-based order. Reaching the end of the step list is the terminal
// success transition; there is no separate final sign-off.
//
// When actorRole is non-empty it must match the current step's approver
// role. An empty actorRole skips the check so that trusted internal callers
// can act on behalf of a resolved identity.
func Approve(inst *entity.WorkflowInstance, steps []entity.WorkflowStep, actorEmail, actorRole, comments string, now time.Time) (*Transition, error) {
	if inst.IsTerminal() {
		return nil, fmt.Errorf("%w: instance %d is %s", ErrInvalidState, inst.ID, inst.Status)
	}
	if inst.CurrentStep < 0 || inst.CurrentStep >= len(steps) {
		return nil, fmt.Errorf("%w: instance %d at step %d of %d", ErrInvalidState, inst.ID, inst.CurrentStep, len(steps))
	}

	step := steps[inst.CurrentStep]
	if actorRole != "" && actorRole != step.ApproverRole {
		return nil, fmt.Errorf("%w: step %d requires role %s, got %s", ErrUnauthorized, step.StepOrder, step.ApproverRole, actorRole)
	}

	nextStep := inst.CurrentStep + 1
	t := &Transition{
		CurrentStep: nextStep,
		Status:      entity.StatusInProgress,
		Entry: entity.WorkflowHistory{
			StepOrder: nextStep,
			StepName:  step.StepName,
			Action:    entity.ActionApproved,
			ActionBy:  actorEmail,
			Comments:  comments,
			Timestamp: now,
		},
	}

	if nextStep >= len(steps) {
		t.Status = entity.StatusApproved
		t.CompletedAt = &now
	}

	return t, nil
}

// Reject computes the terminal rejection transition. The current step is
// left unchanged and recorded as the step at which rejection occurred.
// Rejecting an already-terminal instance fails with ErrInvalidState, and a
// rejection always carries a non-empty comment.
func Reject(inst *entity.WorkflowInstance, actorEmail, comments string, now time.Time) (*Transition, error) {
	if inst.IsTerminal() {
		return nil, fmt.Errorf("%w: instance %d is already %s", ErrInvalidState, inst.ID, inst.Status)
	}
	if strings.TrimSpace(comments) == "" {
		return nil, fmt.Errorf("%w: rejection requires a comment", ErrValidation)
	}

	return &Transition{
		CurrentStep: inst.CurrentStep,
		Status:      entity.StatusRejected,
		CompletedAt: &now,
		Entry: entity.WorkflowHistory{
			StepOrder: inst.CurrentStep,
			Action:    entity.ActionRejected,
			ActionBy:  actorEmail,
			Comments:  comments,
			Timestamp: now,
		},
	}, nil
}
