package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hrkit/approval-engine/internal/application/port"
	"github.com/hrkit/approval-engine/internal/domain/workflow"
)

const exportSheetName = "Audit Trail"

// ExportService renders an instance's ledger as an Excel workbook for
// auditors and payroll reviewers.
type ExportService interface {
	// ExportHistory returns the xlsx bytes and a suggested file name.
	ExportHistory(ctx context.Context, instanceID int64) ([]byte, string, error)
}

type exportServiceImpl struct {
	definitionRepo port.DefinitionRepository
	instanceRepo   port.InstanceRepository
	historyRepo    port.HistoryRepository
	logger         Logger
}

// NewExportService creates a new ExportService
func NewExportService(
	definitionRepo port.DefinitionRepository,
	instanceRepo port.InstanceRepository,
	historyRepo port.HistoryRepository,
	logger Logger,
) ExportService {
	return &exportServiceImpl{
		definitionRepo: definitionRepo,
		instanceRepo:   instanceRepo,
		historyRepo:    historyRepo,
		logger:         logger,
	}
}

// ExportHistory builds the audit workbook: a summary block for the instance
// followed by one row per ledger entry in chronological order.
func (s *exportServiceImpl) ExportHistory(ctx context.Context, instanceID int64) ([]byte, string, error) {
	inst, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, "", err
	}
	if inst == nil {
		return nil, "", fmt.Errorf("instance %d: %w", instanceID, workflow.ErrNotFound)
	}

	def, err := s.definitionRepo.GetByID(ctx, inst.DefinitionID)
	if err != nil {
		return nil, "", err
	}

	entries, err := s.historyRepo.GetByInstanceID(ctx, instanceID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		s.logger.Error("Failed to remove default sheet", "error", err)
	}

	definitionName := ""
	if def != nil {
		definitionName = def.Name
	}

	s.setCell(f, "A1", "Instance ID")
	s.setCell(f, "B1", inst.ID)
	s.setCell(f, "A2", "Definition")
	s.setCell(f, "B2", definitionName)
	s.setCell(f, "A3", "Entity")
	s.setCell(f, "B3", fmt.Sprintf("%s/%d", inst.EntityType, inst.EntityID))
	s.setCell(f, "A4", "Initiated By")
	s.setCell(f, "B4", inst.InitiatedBy)
	s.setCell(f, "A5", "Status")
	s.setCell(f, "B5", inst.Status)
	s.setCell(f, "A6", "Current Step")
	s.setCell(f, "B6", inst.CurrentStep)
	if inst.CompletedAt != nil {
		s.setCell(f, "A7", "Completed At")
		s.setCell(f, "B7", inst.CompletedAt.UTC().Format(time.RFC3339))
	}

	headerRow := 9
	headers := []string{"Step", "Step Name", "Action", "Action By", "Comments", "Timestamp"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		s.setCell(f, cell, h)
	}

	for i, e := range entries {
		row := headerRow + 1 + i
		values := []interface{}{
			e.StepOrder,
			e.StepName,
			e.Action,
			e.ActionBy,
			e.Comments,
			e.Timestamp.UTC().Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			s.setCell(f, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("Failed to write workbook", "error", err, "instance_id", instanceID)
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("approval-history-%d.xlsx", instanceID)
	s.logger.Info("Exported audit trail",
		"instance_id", instanceID,
		"entries", len(entries))
	return buf.Bytes(), filename, nil
}

func (s *exportServiceImpl) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
		s.logger.Error("Failed to set cell", "cell", cell, "error", err)
	}
}
