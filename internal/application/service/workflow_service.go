package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hrkit/approval-engine/internal/application/port"
	"github.com/hrkit/approval-engine/internal/domain/entity"
	"github.com/hrkit/approval-engine/internal/domain/workflow"
)

// WorkflowService runs approval instances through their lifecycle. Every
// mutation writes the instance row and its ledger entry in one transaction.
type WorkflowService interface {
	Initiate(ctx context.Context, definitionID int64, entityType string, entityID int64, initiatedBy string) (*entity.WorkflowInstance, error)
	Approve(ctx context.Context, instanceID int64, actorEmail, actorRole, comments string) (*entity.WorkflowInstance, error)
	Reject(ctx context.Context, instanceID int64, actorEmail, actorRole, comments string) (*entity.WorkflowInstance, error)
	GetInstance(ctx context.Context, id int64) (*entity.WorkflowInstance, error)
	GetInstancesByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.WorkflowInstance, error)
	GetHistory(ctx context.Context, instanceID int64) ([]*entity.WorkflowHistory, error)
}

type workflowServiceImpl struct {
	definitionRepo port.DefinitionRepository
	instanceRepo   port.InstanceRepository
	historyRepo    port.HistoryRepository
	txManager      port.TransactionManager
	locks          instanceLocks
	logger         Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	definitionRepo port.DefinitionRepository,
	instanceRepo port.InstanceRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	logger Logger,
) WorkflowService {
	return &workflowServiceImpl{
		definitionRepo: definitionRepo,
		instanceRepo:   instanceRepo,
		historyRepo:    historyRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

// Initiate starts a new approval instance bound to one business record.
// No approver acts yet; the first real approval step is the definition's
// step 1.
func (s *workflowServiceImpl) Initiate(ctx context.Context, definitionID int64, entityType string, entityID int64, initiatedBy string) (*entity.WorkflowInstance, error) {
	def, err := s.definitionRepo.GetByID(ctx, definitionID)
	if err != nil {
		s.logger.Error("Failed to load definition", "error", err, "definition_id", definitionID)
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("definition %d: %w", definitionID, workflow.ErrNotFound)
	}
	if !def.IsActive {
		return nil, fmt.Errorf("%w: definition %d is inactive", workflow.ErrValidation, definitionID)
	}

	inst := &entity.WorkflowInstance{
		DefinitionID: definitionID,
		EntityType:   entityType,
		EntityID:     entityID,
		InitiatedBy:  initiatedBy,
		CurrentStep:  0,
		Status:       entity.StatusInProgress,
		Version:      1,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.instanceRepo.Create(txCtx, inst); err != nil {
			return fmt.Errorf("create instance: %w", err)
		}

		entry := &entity.WorkflowHistory{
			InstanceID: inst.ID,
			StepOrder:  0,
			StepName:   entity.StepNameInitiated,
			Action:     entity.ActionPending,
			ActionBy:   initiatedBy,
			Timestamp:  time.Now().UTC(),
		}
		if err := s.historyRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to initiate workflow", "error", err, "definition_id", definitionID)
		return nil, err
	}

	s.logger.Info("Workflow initiated",
		"instance_id", inst.ID,
		"definition_id", definitionID,
		"entity_type", entityType,
		"entity_id", entityID)
	return inst, nil
}

// Approve advances the instance by exactly one step. When actorRole is
// supplied it must match the current step's approver role.
func (s *workflowServiceImpl) Approve(ctx context.Context, instanceID int64, actorEmail, actorRole, comments string) (*entity.WorkflowInstance, error) {
	unlock := s.locks.lock(instanceID)
	defer unlock()

	inst, err := s.loadInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	def, err := s.definitionRepo.GetByID(ctx, inst.DefinitionID)
	if err != nil {
		s.logger.Error("Failed to load definition", "error", err, "definition_id", inst.DefinitionID)
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("definition %d: %w", inst.DefinitionID, workflow.ErrNotFound)
	}

	t, err := workflow.Approve(inst, def.Steps, actorEmail, actorRole, comments, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.commitTransition(ctx, inst, t); err != nil {
		return nil, err
	}

	s.logger.Info("Step approved",
		"instance_id", inst.ID,
		"step", t.Entry.StepOrder,
		"status", inst.Status,
		"actor", actorEmail)
	return inst, nil
}

// Reject terminates the instance at its current step with a mandatory
// comment. The actor role is recorded only through the ledger's action_by
// identity; rejection carries no role gate.
func (s *workflowServiceImpl) Reject(ctx context.Context, instanceID int64, actorEmail, actorRole, comments string) (*entity.WorkflowInstance, error) {
	unlock := s.locks.lock(instanceID)
	defer unlock()

	inst, err := s.loadInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	t, err := workflow.Reject(inst, actorEmail, comments, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.commitTransition(ctx, inst, t); err != nil {
		return nil, err
	}

	s.logger.Info("Workflow rejected",
		"instance_id", inst.ID,
		"step", inst.CurrentStep,
		"actor", actorEmail,
		"actor_role", actorRole)
	return inst, nil
}

// GetInstance retrieves an instance by ID
func (s *workflowServiceImpl) GetInstance(ctx context.Context, id int64) (*entity.WorkflowInstance, error) {
	return s.loadInstance(ctx, id)
}

// GetInstancesByEntity retrieves all instances bound to one business record
func (s *workflowServiceImpl) GetInstancesByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.WorkflowInstance, error) {
	instances, err := s.instanceRepo.GetByEntity(ctx, entityType, entityID)
	if err != nil {
		s.logger.Error("Failed to get instances by entity", "error", err, "entity_type", entityType, "entity_id", entityID)
		return nil, err
	}
	return instances, nil
}

// GetHistory retrieves the ledger for one instance in chronological order
func (s *workflowServiceImpl) GetHistory(ctx context.Context, instanceID int64) ([]*entity.WorkflowHistory, error) {
	if _, err := s.loadInstance(ctx, instanceID); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.GetByInstanceID(ctx, instanceID)
	if err != nil {
		s.logger.Error("Failed to get history", "error", err, "instance_id", instanceID)
		return nil, err
	}
	return entries, nil
}

func (s *workflowServiceImpl) loadInstance(ctx context.Context, id int64) (*entity.WorkflowInstance, error) {
	inst, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get instance", "error", err, "id", id)
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("instance %d: %w", id, workflow.ErrNotFound)
	}
	return inst, nil
}

// commitTransition writes the instance projection and its ledger entry in
// one transaction. The UpdateState call carries the version predicate, so a
// racing transition surfaces as workflow.ErrConflict and rolls back the
// ledger append with it.
func (s *workflowServiceImpl) commitTransition(ctx context.Context, inst *entity.WorkflowInstance, t *workflow.Transition) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		inst.CurrentStep = t.CurrentStep
		inst.Status = t.Status
		inst.CompletedAt = t.CompletedAt

		if err := s.instanceRepo.UpdateState(txCtx, inst); err != nil {
			return err
		}

		entry := t.Entry
		entry.InstanceID = inst.ID
		if err := s.historyRepo.Create(txCtx, &entry); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
}
