package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hrkit/approval-engine/internal/domain/entity"
	"github.com/hrkit/approval-engine/internal/domain/workflow"
)

func TestExportService_ExportHistory(t *testing.T) {
	completedAt := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	inst := &entity.WorkflowInstance{
		ID:           42,
		DefinitionID: 1,
		EntityType:   "LEAVE",
		EntityID:     301,
		InitiatedBy:  "alice@corp.test",
		CurrentStep:  2,
		Status:       entity.StatusApproved,
		CompletedAt:  &completedAt,
		Version:      3,
	}
	entries := []*entity.WorkflowHistory{
		{ID: 1, InstanceID: 42, StepOrder: 0, StepName: entity.StepNameInitiated, Action: entity.ActionPending, ActionBy: "alice@corp.test", Timestamp: completedAt.Add(-2 * time.Hour)},
		{ID: 2, InstanceID: 42, StepOrder: 1, StepName: "Manager Review", Action: entity.ActionApproved, ActionBy: "manager@corp.test", Comments: "ok", Timestamp: completedAt.Add(-time.Hour)},
		{ID: 3, InstanceID: 42, StepOrder: 2, StepName: "HR Review", Action: entity.ActionApproved, ActionBy: "hr@corp.test", Timestamp: completedAt},
	}

	svc := NewExportService(
		&mockDefinitionRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.WorkflowDefinition, error) {
				return leaveDefinition(), nil
			},
		},
		&mockInstanceRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.WorkflowInstance, error) {
				return inst, nil
			},
		},
		&mockHistoryRepo{
			getByInstanceIDFunc: func(ctx context.Context, instanceID int64) ([]*entity.WorkflowHistory, error) {
				return entries, nil
			},
		},
		&mockLogger{},
	)

	data, filename, err := svc.ExportHistory(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "approval-history-42.xlsx", filename)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue("Audit Trail", ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Instance ID", cell("A1"))
	assert.Equal(t, "42", cell("B1"))
	assert.Equal(t, "Leave Approval", cell("B2"))
	assert.Equal(t, "LEAVE/301", cell("B3"))
	assert.Equal(t, entity.StatusApproved, cell("B5"))
	assert.Equal(t, completedAt.Format(time.RFC3339), cell("B7"))

	assert.Equal(t, "Step", cell("A9"))
	assert.Equal(t, "Timestamp", cell("F9"))

	// One row per ledger entry, chronological
	assert.Equal(t, entity.StepNameInitiated, cell("B10"))
	assert.Equal(t, "Manager Review", cell("B11"))
	assert.Equal(t, "ok", cell("E11"))
	assert.Equal(t, "HR Review", cell("B12"))
	assert.Equal(t, entity.ActionApproved, cell("C12"))
	assert.Equal(t, "", cell("B13"))
}

func TestExportService_ExportHistory_NotFound(t *testing.T) {
	svc := NewExportService(&mockDefinitionRepo{}, &mockInstanceRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.WorkflowInstance, error) {
			return nil, nil
		},
	}, &mockHistoryRepo{}, &mockLogger{})

	_, _, err := svc.ExportHistory(context.Background(), 404)
	assert.True(t, errors.Is(err, workflow.ErrNotFound))
}
