package port

import (
	"context"

	"github.com/hrkit/approval-engine/internal/domain/entity"
)

// DefinitionRepository defines persistence operations for WorkflowDefinition
type DefinitionRepository interface {
	// Create persists a definition together with its steps
	Create(ctx context.Context, def *entity.WorkflowDefinition) error

	// GetByID retrieves a definition with its steps, or nil if absent
	GetByID(ctx context.Context, id int64) (*entity.WorkflowDefinition, error)

	// ListActive retrieves all active definitions with their steps
	ListActive(ctx context.Context) ([]*entity.WorkflowDefinition, error)

	// FindActiveByEntityType retrieves active definitions for one entity
	// type via the entity_type index
	FindActiveByEntityType(ctx context.Context, entityType string) ([]*entity.WorkflowDefinition, error)
}

// InstanceRepository defines persistence operations for WorkflowInstance
type InstanceRepository interface {
	Create(ctx context.Context, inst *entity.WorkflowInstance) error
	GetByID(ctx context.Context, id int64) (*entity.WorkflowInstance, error)
	GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.WorkflowInstance, error)
	ListInProgress(ctx context.Context) ([]*entity.WorkflowInstance, error)

	// UpdateState applies a transition with an optimistic-lock predicate on
	// version. It returns workflow.ErrConflict when another transition won
	// the race (zero rows matched).
	UpdateState(ctx context.Context, inst *entity.WorkflowInstance) error
}

// HistoryRepository defines persistence operations for WorkflowHistory.
// The ledger is append-only; there are deliberately no update or delete
// methods.
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.WorkflowHistory) error
	GetByInstanceID(ctx context.Context, instanceID int64) ([]*entity.WorkflowHistory, error)
}

// TransactionManager handles database transactions. The instance mutation
// and its ledger entry must always be committed through one transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
