// Package domain provides shared domain types for the task pool.
// These types are used across all internal packages to ensure consistent
// data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"slices"
	"time"

	"github.com/zinincorp/taskpool/internal/constants"
)

// Task represents a single unit of work in the shared pool.
// Tasks move through a fixed lifecycle (TODO, ASSIGNED, IN_PROGRESS, DONE)
// with BLOCKED as an overlay that applies while dependencies are open.
//
// Example JSON representation:
//
//	{
//	    "id": "a1b2c3d4",
//	    "title": "Reconcile Q3 revenue report",
//	    "status": "TODO",
//	    "tags": ["finance", "revenue"],
//	    "priority": 3,
//	    "blocked_by": [],
//	    "blocks": ["e5f6a7b8"],
//	    "created_at": "2026-08-30T10:00:00Z",
//	    "updated_at": "2026-08-30T10:00:00Z",
//	    "schema_version": "1.0"
//	}
type Task struct {
	// ID is the unique, immutable identifier assigned at creation.
	ID string `json:"id"`

	// Title is a human-readable summary of the work. Immutable after creation.
	Title string `json:"title"`

	// Description provides detail beyond the title. Immutable after creation.
	Description string `json:"description,omitempty"`

	// Status is the current state in the task lifecycle.
	Status constants.TaskStatus `json:"status"`

	// Assignee is the worker key responsible for execution. Set only by the
	// assignment operation, never self-claimed. Empty while TODO or BLOCKED.
	Assignee string `json:"assignee,omitempty"`

	// AssignedBy records who performed the assignment (a human identity,
	// "auto-claim", or an escalation path).
	AssignedBy string `json:"assigned_by,omitempty"`

	// Tags is the competency tag set computed once at creation.
	Tags []string `json:"tags,omitempty"`

	// Priority orders ready and stale listings. Lower is more urgent.
	Priority constants.TaskPriority `json:"priority"`

	// BlockedBy lists task ids this task cannot start until they are DONE.
	BlockedBy []string `json:"blocked_by,omitempty"`

	// Blocks is the maintained inverse of BlockedBy: ids of tasks gated on
	// this one. The two sides always form a symmetric edge set.
	Blocks []string `json:"blocks,omitempty"`

	// BlockReason is the free-text reason recorded by a manual block.
	// Cleared on unblock. Dependency-derived blocks leave it empty.
	BlockReason string `json:"block_reason,omitempty"`

	// Confidence is the routing confidence recorded at assignment time,
	// retained for audit.
	Confidence float64 `json:"confidence,omitempty"`

	// Source records where the task came from ("manual", "delegation",
	// "scheduler").
	Source string `json:"source,omitempty"`

	// Result is a free-text completion note recorded when the task is done.
	Result string `json:"result,omitempty"`

	// Superseded marks a task closed by the split escalation path. A
	// superseded task never entered DONE and is distinguishable from normal
	// completion in every listing and in the archive.
	Superseded bool `json:"superseded,omitempty"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every field mutation.
	UpdatedAt time.Time `json:"updated_at"`

	// AssignedAt is when the task was last assigned (nil if never assigned).
	AssignedAt *time.Time `json:"assigned_at,omitempty"`

	// CompletedAt is when the task reached DONE (nil if not complete).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// SchemaVersion indicates the version of the persisted task schema.
	SchemaVersion string `json:"schema_version"`
}

// Clone returns a deep copy of the task. The pool hands out clones so callers
// can never mutate store state through a returned pointer.
func (t *Task) Clone() *Task {
	c := *t
	c.Tags = slices.Clone(t.Tags)
	c.BlockedBy = slices.Clone(t.BlockedBy)
	c.Blocks = slices.Clone(t.Blocks)
	if t.AssignedAt != nil {
		at := *t.AssignedAt
		c.AssignedAt = &at
	}
	if t.CompletedAt != nil {
		ct := *t.CompletedAt
		c.CompletedAt = &ct
	}
	return &c
}

// IsTerminal reports whether the task has reached DONE.
func (t *Task) IsTerminal() bool {
	return t.Status == constants.TaskStatusDone
}

// IsLive reports whether the task still belongs in the live pool for stale
// scanning: TODO, ASSIGNED or IN_PROGRESS. BLOCKED inactivity is expected,
// not anomalous, and DONE tasks are finished.
func (t *Task) IsLive() bool {
	switch t.Status {
	case constants.TaskStatusTodo, constants.TaskStatusAssigned, constants.TaskStatusInProgress:
		return true
	default:
		return false
	}
}
