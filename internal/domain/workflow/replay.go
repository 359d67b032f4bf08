package workflow

import "github.com/hrkit/approval-engine/internal/domain/entity"

// Replay reconstructs an instance's current step and status from its ledger
// entries in chronological order. The ledger is authoritative: if the
// instance row ever diverges, the replayed values win.
func Replay(entries []entity.WorkflowHistory, totalSteps int) (currentStep int, status string) {
	status = entity.StatusInProgress
	for _, e := range entries {
		switch e.Action {
		case entity.ActionApproved:
			currentStep = e.StepOrder
			if currentStep >= totalSteps {
				status = entity.StatusApproved
			}
		case entity.ActionRejected:
			status = entity.StatusRejected
		}
	}
	return currentStep, status
}
