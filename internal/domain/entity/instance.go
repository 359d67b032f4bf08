package entity

import "time"

// WorkflowInstance is one running or completed approval process bound to a
// single business record identified by (EntityType, EntityID).
//
// CurrentStep starts at 0 ("before step 1") and increases by exactly 1 per
// approval. Version is bumped on every state transition and used as the
// optimistic-lock predicate in updates.
type WorkflowInstance struct {
	ID           int64      `json:"id"`
	DefinitionID int64      `json:"definition_id"`
	EntityType   string     `json:"entity_type"`
	EntityID     int64      `json:"entity_id"`
	InitiatedBy  string     `json:"initiated_by"`
	CurrentStep  int        `json:"current_step"`
	Status       string     `json:"status"`
	Version      int64      `json:"version"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the instance can no longer transition.
func (i *WorkflowInstance) IsTerminal() bool {
	return i.Status != StatusInProgress
}
