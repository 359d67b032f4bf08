package entity

// Status constants for WorkflowInstance
const (
	StatusInProgress = "IN_PROGRESS"
	StatusApproved   = "APPROVED"
	StatusRejected   = "REJECTED"
)

// Action constants for WorkflowHistory
const (
	ActionPending  = "PENDING"
	ActionApproved = "APPROVED"
	ActionRejected = "REJECTED"
)

// StepNameInitiated is the synthetic step name recorded at instance creation,
// before the first real approval step acts.
const StepNameInitiated = "Initiated"
