package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/hrkit/approval-engine/internal/application/port"
	"github.com/hrkit/approval-engine/internal/domain/entity"
	"github.com/hrkit/approval-engine/internal/infrastructure/persistence/sqlite"
)

// DefinitionRepository implements port.DefinitionRepository
type DefinitionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDefinitionRepository creates a new definition repository
func NewDefinitionRepository(db *sql.DB, logger *zap.Logger) port.DefinitionRepository {
	return &DefinitionRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a definition and its steps
func (r *DefinitionRepository) Create(ctx context.Context, def *entity.WorkflowDefinition) error {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO workflow_definitions (name, description, entity_type, is_active)
		VALUES (?, ?, ?, ?)
	`, def.Name, def.Description, def.EntityType, def.IsActive)
	if err != nil {
		r.logger.Error("Failed to create definition", zap.Error(err))
		return fmt.Errorf("failed to create definition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	def.ID = id

	for i := range def.Steps {
		step := &def.Steps[i]
		step.DefinitionID = id

		stepResult, err := exec.ExecContext(ctx, `
			INSERT INTO workflow_steps (definition_id, step_order, step_name, approver_role)
			VALUES (?, ?, ?, ?)
		`, step.DefinitionID, step.StepOrder, step.StepName, step.ApproverRole)
		if err != nil {
			r.logger.Error("Failed to create step",
				zap.Int64("definition_id", id),
				zap.Int("step_order", step.StepOrder),
				zap.Error(err))
			return fmt.Errorf("failed to create step %d: %w", step.StepOrder, err)
		}

		stepID, err := stepResult.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		step.ID = stepID
	}

	return nil
}

// GetByID retrieves a definition with its steps
func (r *DefinitionRepository) GetByID(ctx context.Context, id int64) (*entity.WorkflowDefinition, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	var def entity.WorkflowDefinition
	err := exec.QueryRowContext(ctx, `
		SELECT id, name, description, entity_type, is_active, created_at
		FROM workflow_definitions
		WHERE id = ?
	`, id).Scan(&def.ID, &def.Name, &def.Description, &def.EntityType, &def.IsActive, &def.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get definition", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get definition: %w", err)
	}

	if err := r.loadSteps(ctx, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// ListActive retrieves all active definitions with their steps
func (r *DefinitionRepository) ListActive(ctx context.Context) ([]*entity.WorkflowDefinition, error) {
	return r.queryDefinitions(ctx, `
		SELECT id, name, description, entity_type, is_active, created_at
		FROM workflow_definitions
		WHERE is_active = 1
		ORDER BY id
	`)
}

// FindActiveByEntityType retrieves active definitions for one entity type
func (r *DefinitionRepository) FindActiveByEntityType(ctx context.Context, entityType string) ([]*entity.WorkflowDefinition, error) {
	return r.queryDefinitions(ctx, `
		SELECT id, name, description, entity_type, is_active, created_at
		FROM workflow_definitions
		WHERE is_active = 1 AND entity_type = ?
		ORDER BY id
	`, entityType)
}

func (r *DefinitionRepository) queryDefinitions(ctx context.Context, query string, args ...interface{}) ([]*entity.WorkflowDefinition, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query definitions", zap.Error(err))
		return nil, fmt.Errorf("failed to query definitions: %w", err)
	}
	defer rows.Close()

	var defs []*entity.WorkflowDefinition
	for rows.Next() {
		var def entity.WorkflowDefinition
		if err := rows.Scan(&def.ID, &def.Name, &def.Description, &def.EntityType, &def.IsActive, &def.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		defs = append(defs, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, def := range defs {
		if err := r.loadSteps(ctx, def); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func (r *DefinitionRepository) loadSteps(ctx context.Context, def *entity.WorkflowDefinition) error {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT id, definition_id, step_order, step_name, approver_role
		FROM workflow_steps
		WHERE definition_id = ?
		ORDER BY step_order ASC
	`, def.ID)
	if err != nil {
		r.logger.Error("Failed to load steps", zap.Int64("definition_id", def.ID), zap.Error(err))
		return fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	var steps []entity.WorkflowStep
	for rows.Next() {
		var step entity.WorkflowStep
		if err := rows.Scan(&step.ID, &step.DefinitionID, &step.StepOrder, &step.StepName, &step.ApproverRole); err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, step)
	}
	def.Steps = steps
	return rows.Err()
}

// Verify interface compliance
var _ port.DefinitionRepository = (*DefinitionRepository)(nil)
