package entity

import "time"

// WorkflowDefinition is a reusable approval template for one entity type.
// Steps are immutable after creation; changing a process requires creating
// a new definition.
type WorkflowDefinition struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	EntityType  string         `json:"entity_type"`
	IsActive    bool           `json:"is_active"`
	Steps       []WorkflowStep `json:"steps"`
	CreatedAt   time.Time      `json:"created_at"`
}

// WorkflowStep is one position in a definition's ordered approval sequence.
// StepOrder is 1-based and contiguous within a definition.
type WorkflowStep struct {
	ID           int64  `json:"id"`
	DefinitionID int64  `json:"definition_id"`
	StepOrder    int    `json:"step_order"`
	StepName     string `json:"step_name"`
	ApproverRole string `json:"approver_role"`
}
