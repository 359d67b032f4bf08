package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hrkit/approval-engine/internal/domain/entity"
	"github.com/hrkit/approval-engine/internal/domain/workflow"
)

func TestDefinitionService_Create(t *testing.T) {
	var stored *entity.WorkflowDefinition
	defRepo := &mockDefinitionRepo{
		createFunc: func(ctx context.Context, def *entity.WorkflowDefinition) error {
			def.ID = 10
			stored = def
			return nil
		},
	}
	svc := NewDefinitionService(defRepo, &mockTxManager{}, &mockLogger{})

	def := &entity.WorkflowDefinition{
		Name:       "Expense Approval",
		EntityType: "EXPENSE",
		IsActive:   true,
		Steps: []entity.WorkflowStep{
			{StepOrder: 5, StepName: "Manager Review", ApproverRole: "MANAGER"},
			{StepOrder: 5, StepName: "Finance Review", ApproverRole: "FINANCE"},
		},
	}

	created, err := svc.Create(context.Background(), def)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != 10 {
		t.Errorf("ID = %d, want 10", created.ID)
	}
	if stored == nil {
		t.Fatalf("repository never received the definition")
	}

	// Caller-supplied orders are replaced by slice position
	for i, step := range created.Steps {
		if step.StepOrder != i+1 {
			t.Errorf("step %q order = %d, want %d", step.StepName, step.StepOrder, i+1)
		}
	}
}

func TestDefinitionService_Create_Invalid(t *testing.T) {
	svc := NewDefinitionService(&mockDefinitionRepo{
		createFunc: func(ctx context.Context, def *entity.WorkflowDefinition) error {
			t.Fatalf("Create reached the repository with an invalid definition")
			return nil
		},
	}, &mockTxManager{}, &mockLogger{})

	def := &entity.WorkflowDefinition{
		Name:       "No Steps",
		EntityType: "EXPENSE",
	}
	if _, err := svc.Create(context.Background(), def); !errors.Is(err, workflow.ErrValidation) {
		t.Errorf("Create() error = %v, want ErrValidation", err)
	}
}

func TestDefinitionService_Get_NotFound(t *testing.T) {
	svc := NewDefinitionService(&mockDefinitionRepo{}, &mockTxManager{}, &mockLogger{})
	if _, err := svc.Get(context.Background(), 123); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestDefinitionService_FindActiveByEntityType(t *testing.T) {
	def := leaveDefinition()
	svc := NewDefinitionService(&mockDefinitionRepo{
		findActiveByEntityTypeFunc: func(ctx context.Context, entityType string) ([]*entity.WorkflowDefinition, error) {
			if entityType == "LEAVE" {
				return []*entity.WorkflowDefinition{def}, nil
			}
			return nil, nil
		},
	}, &mockTxManager{}, &mockLogger{})

	defs, err := svc.FindActiveByEntityType(context.Background(), "LEAVE")
	if err != nil {
		t.Fatalf("FindActiveByEntityType() error = %v", err)
	}
	if len(defs) != 1 || defs[0].ID != def.ID {
		t.Errorf("FindActiveByEntityType() = %d definitions", len(defs))
	}

	defs, err = svc.FindActiveByEntityType(context.Background(), "EXPENSE")
	if err != nil {
		t.Fatalf("FindActiveByEntityType() error = %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("FindActiveByEntityType(EXPENSE) = %d definitions, want 0", len(defs))
	}
}
