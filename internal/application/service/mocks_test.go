package service

import (
	"context"
	"sync"

	"github.com/hrkit/approval-engine/internal/domain/entity"
)

// Mock repositories in the func-field style: each method delegates to an
// optional override, with a usable default.

type mockDefinitionRepo struct {
	createFunc                 func(ctx context.Context, def *entity.WorkflowDefinition) error
	getByIDFunc                func(ctx context.Context, id int64) (*entity.WorkflowDefinition, error)
	listActiveFunc             func(ctx context.Context) ([]*entity.WorkflowDefinition, error)
	findActiveByEntityTypeFunc func(ctx context.Context, entityType string) ([]*entity.WorkflowDefinition, error)
}

func (m *mockDefinitionRepo) Create(ctx context.Context, def *entity.WorkflowDefinition) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, def)
	}
	def.ID = 1
	return nil
}

func (m *mockDefinitionRepo) GetByID(ctx context.Context, id int64) (*entity.WorkflowDefinition, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockDefinitionRepo) ListActive(ctx context.Context) ([]*entity.WorkflowDefinition, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockDefinitionRepo) FindActiveByEntityType(ctx context.Context, entityType string) ([]*entity.WorkflowDefinition, error) {
	if m.findActiveByEntityTypeFunc != nil {
		return m.findActiveByEntityTypeFunc(ctx, entityType)
	}
	return nil, nil
}

type mockInstanceRepo struct {
	createFunc         func(ctx context.Context, inst *entity.WorkflowInstance) error
	getByIDFunc        func(ctx context.Context, id int64) (*entity.WorkflowInstance, error)
	getByEntityFunc    func(ctx context.Context, entityType string, entityID int64) ([]*entity.WorkflowInstance, error)
	listInProgressFunc func(ctx context.Context) ([]*entity.WorkflowInstance, error)
	updateStateFunc    func(ctx context.Context, inst *entity.WorkflowInstance) error
}

func (m *mockInstanceRepo) Create(ctx context.Context, inst *entity.WorkflowInstance) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, inst)
	}
	inst.ID = 1
	return nil
}

func (m *mockInstanceRepo) GetByID(ctx context.Context, id int64) (*entity.WorkflowInstance, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockInstanceRepo) GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.WorkflowInstance, error) {
	if m.getByEntityFunc != nil {
		return m.getByEntityFunc(ctx, entityType, entityID)
	}
	return nil, nil
}

func (m *mockInstanceRepo) ListInProgress(ctx context.Context) ([]*entity.WorkflowInstance, error) {
	if m.listInProgressFunc != nil {
		return m.listInProgressFunc(ctx)
	}
	return nil, nil
}

func (m *mockInstanceRepo) UpdateState(ctx context.Context, inst *entity.WorkflowInstance) error {
	if m.updateStateFunc != nil {
		return m.updateStateFunc(ctx, inst)
	}
	inst.Version++
	return nil
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.WorkflowHistory

	createFunc          func(ctx context.Context, h *entity.WorkflowHistory) error
	getByInstanceIDFunc func(ctx context.Context, instanceID int64) ([]*entity.WorkflowHistory, error)
}

func (m *mockHistoryRepo) Create(ctx context.Context, h *entity.WorkflowHistory) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, h)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, h)
	return nil
}

func (m *mockHistoryRepo) GetByInstanceID(ctx context.Context, instanceID int64) ([]*entity.WorkflowHistory, error) {
	if m.getByInstanceIDFunc != nil {
		return m.getByInstanceIDFunc(ctx, instanceID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.WorkflowHistory
	for _, e := range m.entries {
		if e.InstanceID == instanceID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// leaveDefinition is the canonical two-step template used across tests.
func leaveDefinition() *entity.WorkflowDefinition {
	return &entity.WorkflowDefinition{
		ID:         1,
		Name:       "Leave Approval",
		EntityType: "LEAVE",
		IsActive:   true,
		Steps: []entity.WorkflowStep{
			{ID: 1, DefinitionID: 1, StepOrder: 1, StepName: "Manager Review", ApproverRole: "MANAGER"},
			{ID: 2, DefinitionID: 1, StepOrder: 2, StepName: "HR Review", ApproverRole: "HR"},
		},
	}
}
