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

// HistoryRepository implements port.HistoryRepository. The backing table is
// insert-only; this type deliberately exposes no update or delete.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a ledger entry
func (r *HistoryRepository) Create(ctx context.Context, h *entity.WorkflowHistory) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		INSERT INTO workflow_history (
			instance_id, step_order, step_name, action, action_by, comments, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		h.InstanceID,
		h.StepOrder,
		h.StepName,
		h.Action,
		h.ActionBy,
		h.Comments,
		h.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry", zap.Int64("instance_id", h.InstanceID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	h.ID = id
	return nil
}

// GetByInstanceID retrieves the ledger for one instance in chronological order
func (r *HistoryRepository) GetByInstanceID(ctx context.Context, instanceID int64) ([]*entity.WorkflowHistory, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, `
		SELECT id, instance_id, step_order, step_name, action, action_by, comments, timestamp
		FROM workflow_history
		WHERE instance_id = ?
		ORDER BY timestamp ASC, id ASC
	`, instanceID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.Int64("instance_id", instanceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.WorkflowHistory
	for rows.Next() {
		var h entity.WorkflowHistory
		err := rows.Scan(
			&h.ID,
			&h.InstanceID,
			&h.StepOrder,
			&h.StepName,
			&h.Action,
			&h.ActionBy,
			&h.Comments,
			&h.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &h)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
