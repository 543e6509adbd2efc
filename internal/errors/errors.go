// Package errors provides centralized error handling for the task pool.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrTaskNotFound indicates the requested task does not exist in the pool.
	ErrTaskNotFound = errors.New("task not found")

	// ErrWorkerNotFound indicates the requested worker is not in the registry.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrWorkerExists indicates an attempt to register a worker key twice.
	ErrWorkerExists = errors.New("worker already registered")

	// ErrInvalidTransition indicates an operation not legal from the task's
	// current status. A rejected transition leaves the task unchanged.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrStillBlocked indicates assignment was attempted on a task whose
	// dependencies are not all DONE.
	ErrStillBlocked = errors.New("task is still blocked")

	// ErrDependenciesNotMet indicates a manual unblock was attempted while
	// true dependencies remain open.
	ErrDependenciesNotMet = errors.New("dependencies not met")

	// ErrDependencyCycle indicates a dependency edge would create a cycle.
	// The graph is left unchanged when this is returned.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrSelfDependency indicates a task was declared to depend on itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")

	// ErrTaskSuperseded indicates a superseded task was used where a task
	// that can still reach DONE is required, such as a dependency target.
	ErrTaskSuperseded = errors.New("task superseded")

	// ErrUnknownTag indicates a tag outside the registry vocabulary was used
	// where strict vocabulary enforcement applies.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrNoMatch indicates routing found no worker above the escalation
	// threshold for a task's tags.
	ErrNoMatch = errors.New("no confident worker match")

	// ErrUnknownEscalationPath indicates an unrecognized escalation
	// resolution path was requested.
	ErrUnknownEscalationPath = errors.New("unknown escalation path")

	// ErrEscalationPayload indicates the escalation payload is missing or
	// malformed for the chosen path.
	ErrEscalationPayload = errors.New("invalid escalation payload")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrInvalidThreshold indicates a confidence threshold outside [0,1].
	ErrInvalidThreshold = errors.New("threshold out of range")

	// ErrInvalidDuration indicates a non-positive duration where a positive
	// one is required.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidPriority indicates a priority outside the 1-4 range.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidLogLevel indicates an unrecognized logging level name.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrPoolCorrupted indicates the persisted pool file could not be decoded.
	ErrPoolCorrupted = errors.New("pool state corrupted")

	// ErrArchiveNotFound indicates no archive partition exists for the date.
	ErrArchiveNotFound = errors.New("archive not found")
)
