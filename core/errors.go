package core

import "errors"

// Sentinel errors shared by the engine and storage adapters.
var (
	// ErrProfileNotFound is returned when no profile exists for a user id.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrTaskNotFound is returned when a task id is unknown for the user.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskCompleted is returned when completing a task that is already
	// completed: completion fields are write-once.
	ErrTaskCompleted = errors.New("task already completed")
)
