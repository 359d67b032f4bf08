package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/hrkit/approval-engine/internal/domain/entity"
)

func twoStepFlow() []entity.WorkflowStep {
	return []entity.WorkflowStep{
		{StepOrder: 1, StepName: "Manager Review", ApproverRole: "MANAGER"},
		{StepOrder: 2, StepName: "HR Review", ApproverRole: "HR"},
	}
}

func inProgressInstance(currentStep int) *entity.WorkflowInstance {
	return &entity.WorkflowInstance{
		ID:          42,
		CurrentStep: currentStep,
		Status:      entity.StatusInProgress,
		Version:     1,
	}
}

func TestApprove_AdvancesByExactlyOne(t *testing.T) {
	now := time.Now().UTC()
	inst := inProgressInstance(0)

	tr, err := Approve(inst, twoStepFlow(), "mgr@corp.test", "MANAGER", "ok", now)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if tr.CurrentStep != 1 {
		t.Errorf("CurrentStep = %d, want 1", tr.CurrentStep)
	}
	if tr.Status != entity.StatusInProgress {
		t.Errorf("Status = %s, want %s", tr.Status, entity.StatusInProgress)
	}
	if tr.CompletedAt != nil {
		t.Errorf("CompletedAt set on non-terminal transition")
	}
	if tr.Entry.StepOrder != 1 || tr.Entry.StepName != "Manager Review" {
		t.Errorf("Entry = {order:%d name:%q}, want step 1 Manager Review", tr.Entry.StepOrder, tr.Entry.StepName)
	}
	if tr.Entry.Action != entity.ActionApproved {
		t.Errorf("Entry.Action = %s, want %s", tr.Entry.Action, entity.ActionApproved)
	}
}

func TestApprove_LastStepIsTerminalSuccess(t *testing.T) {
	now := time.Now().UTC()
	inst := inProgressInstance(1)

	tr, err := Approve(inst, twoStepFlow(), "hr@corp.test", "HR", "", now)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if tr.Status != entity.StatusApproved {
		t.Errorf("Status = %s, want %s", tr.Status, entity.StatusApproved)
	}
	if tr.CurrentStep != 2 {
		t.Errorf("CurrentStep = %d, want 2", tr.CurrentStep)
	}
	if tr.CompletedAt == nil || !tr.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", tr.CompletedAt, now)
	}
}

func TestApprove_RoleGate(t *testing.T) {
	tests := []struct {
		name      string
		actorRole string
		wantErr   error
	}{
		{name: "matching role passes", actorRole: "MANAGER", wantErr: nil},
		{name: "empty role skips the check", actorRole: "", wantErr: nil},
		{name: "wrong role is rejected", actorRole: "HR", wantErr: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Approve(inProgressInstance(0), twoStepFlow(), "a@corp.test", tt.actorRole, "", time.Now())
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Approve() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Approve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApprove_TerminalInstanceFails(t *testing.T) {
	for _, status := range []string{entity.StatusApproved, entity.StatusRejected} {
		inst := inProgressInstance(2)
		inst.Status = status

		_, err := Approve(inst, twoStepFlow(), "a@corp.test", "", "", time.Now())
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("Approve() on %s instance: error = %v, want ErrInvalidState", status, err)
		}
	}
}

func TestReject_TerminatesAtCurrentStep(t *testing.T) {
	now := time.Now().UTC()
	inst := inProgressInstance(1)

	tr, err := Reject(inst, "mgr@corp.test", "missing receipts", now)
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	if tr.Status != entity.StatusRejected {
		t.Errorf("Status = %s, want %s", tr.Status, entity.StatusRejected)
	}
	if tr.CurrentStep != 1 {
		t.Errorf("CurrentStep = %d, want unchanged 1", tr.CurrentStep)
	}
	if tr.CompletedAt == nil {
		t.Errorf("CompletedAt not set on rejection")
	}
	if tr.Entry.StepOrder != 1 || tr.Entry.Action != entity.ActionRejected {
		t.Errorf("Entry = {order:%d action:%s}, want {1 REJECTED}", tr.Entry.StepOrder, tr.Entry.Action)
	}
	if tr.Entry.Comments != "missing receipts" {
		t.Errorf("Entry.Comments = %q", tr.Entry.Comments)
	}
}

// Rejection of an already-terminal instance is refused. The behavior is
// stricter than simply recording a late veto; tests pin it down so the
// choice stays deliberate.
func TestReject_TerminalInstanceFails(t *testing.T) {
	for _, status := range []string{entity.StatusApproved, entity.StatusRejected} {
		inst := inProgressInstance(2)
		inst.Status = status

		_, err := Reject(inst, "a@corp.test", "too late", time.Now())
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("Reject() on %s instance: error = %v, want ErrInvalidState", status, err)
		}
	}
}

func TestReject_RequiresComment(t *testing.T) {
	for _, comments := range []string{"", "   "} {
		_, err := Reject(inProgressInstance(0), "a@corp.test", comments, time.Now())
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Reject() with comments %q: error = %v, want ErrValidation", comments, err)
		}
	}
}

func TestApprove_NeverExceedsStepCount(t *testing.T) {
	steps := twoStepFlow()
	inst := inProgressInstance(0)
	now := time.Now().UTC()

	for i := 0; i < len(steps); i++ {
		tr, err := Approve(inst, steps, "a@corp.test", "", "", now)
		if err != nil {
			t.Fatalf("Approve() step %d error = %v", i+1, err)
		}
		if tr.CurrentStep != inst.CurrentStep+1 {
			t.Fatalf("step %d advanced to %d, want %d", i+1, tr.CurrentStep, inst.CurrentStep+1)
		}
		inst.CurrentStep = tr.CurrentStep
		inst.Status = tr.Status
	}

	if inst.CurrentStep != len(steps) || inst.Status != entity.StatusApproved {
		t.Fatalf("final state = {%d %s}, want {%d APPROVED}", inst.CurrentStep, inst.Status, len(steps))
	}

	if _, err := Approve(inst, steps, "a@corp.test", "", "", now); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Approve() past the last step: error = %v, want ErrInvalidState", err)
	}
}
