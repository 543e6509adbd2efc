package errors

import "fmt"

// TransitionError reports a lifecycle operation that is not legal from the
// task's current status. It wraps ErrInvalidTransition so callers can match
// it with errors.Is() while still receiving the task id, current state and
// attempted operation required to decide their next action.
type TransitionError struct {
	// TaskID is the task the operation was attempted on.
	TaskID string

	// From is the task's status at the time of the attempt.
	From string

	// Operation is the lifecycle operation that was rejected
	// (e.g. "assign", "start", "complete", "unblock").
	Operation string
}

// NewTransitionError builds a TransitionError for the given task, state and
// operation.
func NewTransitionError(taskID, from, operation string) *TransitionError {
	return &TransitionError{TaskID: taskID, From: from, Operation: operation}
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("task %s: cannot %s from status %s: %s",
		e.TaskID, e.Operation, e.From, ErrInvalidTransition.Error())
}

// Unwrap returns ErrInvalidTransition so errors.Is() matching works.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
