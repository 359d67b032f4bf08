package service

import (
	"context"

	"github.com/hrkit/approval-engine/internal/application/port"
	"github.com/hrkit/approval-engine/internal/domain/entity"
)

// PendingApproval is one inbox item: an in-flight instance whose current
// step requires the caller's role.
type PendingApproval struct {
	Instance     *entity.WorkflowInstance `json:"instance"`
	StepOrder    int                      `json:"step_order"`
	StepName     string                   `json:"step_name"`
	ApproverRole string                   `json:"approver_role"`
}

// InboxService resolves which in-flight instances currently require action
// from a given user.
type InboxService interface {
	PendingApprovals(ctx context.Context, userEmail, userRole string) ([]PendingApproval, error)
}

type inboxServiceImpl struct {
	definitionRepo port.DefinitionRepository
	instanceRepo   port.InstanceRepository
	logger         Logger
}

// NewInboxService creates a new InboxService
func NewInboxService(
	definitionRepo port.DefinitionRepository,
	instanceRepo port.InstanceRepository,
	logger Logger,
) InboxService {
	return &inboxServiceImpl{
		definitionRepo: definitionRepo,
		instanceRepo:   instanceRepo,
		logger:         logger,
	}
}

// PendingApprovals scans in-progress instances and keeps those whose
// pending step (steps[currentStep], the one about to be satisfied) requires
// userRole. Matching is role-based; userEmail identifies the caller in logs
// but does not participate in the filter since steps carry no per-user
// assignment.
func (s *inboxServiceImpl) PendingApprovals(ctx context.Context, userEmail, userRole string) ([]PendingApproval, error) {
	instances, err := s.instanceRepo.ListInProgress(ctx)
	if err != nil {
		s.logger.Error("Failed to list in-progress instances", "error", err, "user", userEmail)
		return nil, err
	}

	// Definitions repeat across instances; load each once per call.
	defCache := make(map[int64]*entity.WorkflowDefinition)

	var pending []PendingApproval
	for _, inst := range instances {
		def, ok := defCache[inst.DefinitionID]
		if !ok {
			def, err = s.definitionRepo.GetByID(ctx, inst.DefinitionID)
			if err != nil {
				return nil, err
			}
			defCache[inst.DefinitionID] = def
		}
		if def == nil {
			s.logger.Error("Instance references missing definition",
				"instance_id", inst.ID,
				"definition_id", inst.DefinitionID)
			continue
		}
		if inst.CurrentStep >= len(def.Steps) {
			continue
		}

		step := def.Steps[inst.CurrentStep]
		if step.ApproverRole != userRole {
			continue
		}

		pending = append(pending, PendingApproval{
			Instance:     inst,
			StepOrder:    step.StepOrder,
			StepName:     step.StepName,
			ApproverRole: step.ApproverRole,
		})
	}

	return pending, nil
}
