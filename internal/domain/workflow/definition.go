package workflow

import (
	"fmt"
	"strings"

	"github.com/hrkit/approval-engine/internal/domain/entity"
)

// ValidateDefinition checks a definition before it is persisted.
func ValidateDefinition(def *entity.WorkflowDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("%w: definition name is required", ErrValidation)
	}
	if strings.TrimSpace(def.EntityType) == "" {
		return fmt.Errorf("%w: entity type is required", ErrValidation)
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("%w: definition requires at least one step", ErrValidation)
	}
	for i, step := range def.Steps {
		if strings.TrimSpace(step.StepName) == "" {
			return fmt.Errorf("%w: step %d has no name", ErrValidation, i+1)
		}
		if strings.TrimSpace(step.ApproverRole) == "" {
			return fmt.Errorf("%w: step %d has no approver role", ErrValidation, i+1)
		}
	}
	return nil
}

// NormalizeSteps reassigns step orders 1..N from slice position, discarding
// whatever ordering the caller supplied.
func NormalizeSteps(steps []entity.WorkflowStep) []entity.WorkflowStep {
	normalized := make([]entity.WorkflowStep, len(steps))
	for i, step := range steps {
		step.StepOrder = i + 1
		normalized[i] = step
	}
	return normalized
}
