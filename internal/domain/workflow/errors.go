package workflow

import "errors"

var (
	// ErrNotFound is returned when a definition or instance does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed definitions or actions
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned when an action is attempted on an
	// instance that is not IN_PROGRESS
	ErrInvalidState = errors.New("invalid instance state")

	// ErrUnauthorized is returned when the supplied actor role does not
	// match the current step's approver role
	ErrUnauthorized = errors.New("actor role not authorized for current step")

	// ErrConflict is returned when a concurrent transition won the
	// optimistic-lock race; callers must re-read and re-decide
	ErrConflict = errors.New("instance was modified concurrently")
)
