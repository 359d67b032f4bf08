package service

import (
	"context"
	"fmt"

	"github.com/hrkit/approval-engine/internal/application/port"
	"github.com/hrkit/approval-engine/internal/domain/entity"
	"github.com/hrkit/approval-engine/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// DefinitionService manages reusable workflow templates
type DefinitionService interface {
	Create(ctx context.Context, def *entity.WorkflowDefinition) (*entity.WorkflowDefinition, error)
	Get(ctx context.Context, id int64) (*entity.WorkflowDefinition, error)
	ListActive(ctx context.Context) ([]*entity.WorkflowDefinition, error)
	FindActiveByEntityType(ctx context.Context, entityType string) ([]*entity.WorkflowDefinition, error)
}

type definitionServiceImpl struct {
	definitionRepo port.DefinitionRepository
	txManager      port.TransactionManager
	logger         Logger
}

// NewDefinitionService creates a new DefinitionService
func NewDefinitionService(
	definitionRepo port.DefinitionRepository,
	txManager port.TransactionManager,
	logger Logger,
) DefinitionService {
	return &definitionServiceImpl{
		definitionRepo: definitionRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

// Create validates and persists a definition. Step orders are reassigned
// 1..N from slice position; caller-supplied orders are ignored.
func (s *definitionServiceImpl) Create(ctx context.Context, def *entity.WorkflowDefinition) (*entity.WorkflowDefinition, error) {
	if err := workflow.ValidateDefinition(def); err != nil {
		return nil, err
	}
	def.Steps = workflow.NormalizeSteps(def.Steps)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.definitionRepo.Create(txCtx, def)
	})
	if err != nil {
		s.logger.Error("Failed to create definition", "error", err, "name", def.Name)
		return nil, err
	}

	s.logger.Info("Definition created",
		"id", def.ID,
		"entity_type", def.EntityType,
		"steps", len(def.Steps))
	return def, nil
}

// Get retrieves a definition by ID
func (s *definitionServiceImpl) Get(ctx context.Context, id int64) (*entity.WorkflowDefinition, error) {
	def, err := s.definitionRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get definition", "error", err, "id", id)
		return nil, err
	}
	if def == nil {
		return nil, fmt.Errorf("definition %d: %w", id, workflow.ErrNotFound)
	}
	return def, nil
}

// ListActive retrieves all active definitions
func (s *definitionServiceImpl) ListActive(ctx context.Context) ([]*entity.WorkflowDefinition, error) {
	defs, err := s.definitionRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active definitions", "error", err)
		return nil, err
	}
	return defs, nil
}

// FindActiveByEntityType retrieves the active templates for one entity type
func (s *definitionServiceImpl) FindActiveByEntityType(ctx context.Context, entityType string) ([]*entity.WorkflowDefinition, error) {
	defs, err := s.definitionRepo.FindActiveByEntityType(ctx, entityType)
	if err != nil {
		s.logger.Error("Failed to find definitions by entity type", "error", err, "entity_type", entityType)
		return nil, err
	}
	return defs, nil
}
