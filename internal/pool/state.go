// Package pool provides the authoritative task store for the shared pool.
//
// This file implements the task state machine, which encodes transition
// validity in a single table instead of scattered conditionals.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/clock, std lib
//   - MUST NOT import: internal/cli, internal/config, internal/router
package pool

import "github.com/zinincorp/taskpool/internal/constants"

// Operation names the lifecycle operations callers can request.
type Operation string

// Lifecycle operations accepted by Transition and the CLI.
const (
	OpAssign   Operation = "assign"
	OpStart    Operation = "start"
	OpComplete Operation = "complete"
	OpBlock    Operation = "block"
	OpUnblock  Operation = "unblock"
)

// validTransitions defines all allowed state transitions in the task
// lifecycle. Format: operation -> statuses the operation is legal from.
//
// The state machine follows this flow:
//
//	TODO → ASSIGNED → IN_PROGRESS → DONE
//
// with BLOCKED as an overlay reachable from TODO, ASSIGNED and IN_PROGRESS
// (manual block) or held from creation (dependency block), clearing back to
// TODO. DONE is terminal.
var validTransitions = map[Operation][]constants.TaskStatus{
	OpAssign: {constants.TaskStatusTodo},
	OpStart:  {constants.TaskStatusAssigned},
	// Completing straight from ASSIGNED is the fast path for trivial work.
	OpComplete: {constants.TaskStatusInProgress, constants.TaskStatusAssigned},
	OpBlock:    {constants.TaskStatusTodo, constants.TaskStatusAssigned, constants.TaskStatusInProgress},
	OpUnblock:  {constants.TaskStatusBlocked},
}

// operationAllowed checks whether op is legal from the given status.
// DONE never appears in the table, making it a terminal sink.
func operationAllowed(op Operation, from constants.TaskStatus) bool {
	for _, s := range validTransitions[op] {
		if s == from {
			return true
		}
	}
	return false
}

// IsValidOperation reports whether op is a recognized lifecycle operation.
func IsValidOperation(op Operation) bool {
	_, ok := validTransitions[op]
	return ok
}
