package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hrkit/approval-engine/internal/application/port"
	"github.com/hrkit/approval-engine/internal/domain/entity"
	"github.com/hrkit/approval-engine/internal/domain/workflow"
	"github.com/hrkit/approval-engine/internal/infrastructure/persistence/sqlite"
)

// InstanceRepository implements port.InstanceRepository
type InstanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInstanceRepository creates a new instance repository
func NewInstanceRepository(db *sql.DB, logger *zap.Logger) port.InstanceRepository {
	return &InstanceRepository{
		db:     db,
		logger: logger,
	}
}

const instanceColumns = `id, definition_id, entity_type, entity_id, initiated_by,
	current_step, status, version, completed_at, created_at, updated_at`

// Create persists a new workflow instance
func (r *InstanceRepository) Create(ctx context.Context, inst *entity.WorkflowInstance) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		INSERT INTO workflow_instances (
			definition_id, entity_type, entity_id, initiated_by,
			current_step, status, version
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		inst.DefinitionID,
		inst.EntityType,
		inst.EntityID,
		inst.InitiatedBy,
		inst.CurrentStep,
		inst.Status,
		inst.Version,
	)
	if err != nil {
		r.logger.Error("Failed to create instance", zap.Error(err))
		return fmt.Errorf("failed to create instance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	inst.ID = id
	return nil
}

// GetByID retrieves a workflow instance by ID, or nil if absent
func (r *InstanceRepository) GetByID(ctx context.Context, id int64) (*entity.WorkflowInstance, error) {
	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+instanceColumns+`
		FROM workflow_instances
		WHERE id = ?
	`, id)

	inst, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get instance by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}
	return inst, nil
}

// GetByEntity retrieves all instances bound to one business record
func (r *InstanceRepository) GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.WorkflowInstance, error) {
	return r.queryInstances(ctx, `
		SELECT `+instanceColumns+`
		FROM workflow_instances
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at ASC
	`, entityType, entityID)
}

// ListInProgress retrieves all in-flight instances
func (r *InstanceRepository) ListInProgress(ctx context.Context) ([]*entity.WorkflowInstance, error) {
	return r.queryInstances(ctx, `
		SELECT `+instanceColumns+`
		FROM workflow_instances
		WHERE status = ?
		ORDER BY created_at ASC
	`, entity.StatusInProgress)
}

// UpdateState applies a state transition with the instance's version as the
// optimistic-lock predicate. The write bumps the version; zero matched rows
// means another transition committed first.
func (r *InstanceRepository) UpdateState(ctx context.Context, inst *entity.WorkflowInstance) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		UPDATE workflow_instances
		SET current_step = ?, status = ?, completed_at = ?,
			version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`,
		inst.CurrentStep,
		inst.Status,
		inst.CompletedAt,
		inst.ID,
		inst.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update instance state", zap.Int64("id", inst.ID), zap.Error(err))
		return fmt.Errorf("failed to update instance state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		r.logger.Warn("Optimistic lock conflict on instance",
			zap.Int64("id", inst.ID),
			zap.Int64("version", inst.Version))
		return fmt.Errorf("instance %d version %d: %w", inst.ID, inst.Version, workflow.ErrConflict)
	}

	inst.Version++
	inst.UpdatedAt = time.Now()
	return nil
}

func (r *InstanceRepository) queryInstances(ctx context.Context, query string, args ...interface{}) ([]*entity.WorkflowInstance, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query instances", zap.Error(err))
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer rows.Close()

	var instances []*entity.WorkflowInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInstance(row rowScanner) (*entity.WorkflowInstance, error) {
	var inst entity.WorkflowInstance
	var completedAt sql.NullTime

	err := row.Scan(
		&inst.ID,
		&inst.DefinitionID,
		&inst.EntityType,
		&inst.EntityID,
		&inst.InitiatedBy,
		&inst.CurrentStep,
		&inst.Status,
		&inst.Version,
		&completedAt,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		inst.CompletedAt = &completedAt.Time
	}
	return &inst, nil
}

// Verify interface compliance
var _ port.InstanceRepository = (*InstanceRepository)(nil)
