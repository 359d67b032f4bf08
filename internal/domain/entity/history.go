package entity

import "time"

// WorkflowHistory is one immutable ledger entry for an instance transition.
// Entries are append-only: no update or delete operation exists anywhere in
// the engine. Replayed in timestamp order they reconstruct the instance's
// current_step and status; the instance row is a cached projection.
type WorkflowHistory struct {
	ID         int64     `json:"id"`
	InstanceID int64     `json:"instance_id"`
	StepOrder  int       `json:"step_order"`
	StepName   string    `json:"step_name"`
	Action     string    `json:"action"`
	ActionBy   string    `json:"action_by"`
	Comments   string    `json:"comments"`
	Timestamp  time.Time `json:"timestamp"`
}
