// Package constants provides centralized constant values used throughout the
// task pool. This package is the single source of truth for all shared
// constants and MUST NOT import any other internal packages.
package constants

import "time"

// TaskStatus represents the state of a task in the pool lifecycle.
type TaskStatus string

// Task lifecycle states. BLOCKED is an overlay on TODO: it applies while any
// dependency is not DONE and must clear before ASSIGNED is reachable.
const (
	// TaskStatusTodo indicates a task is in the pool and ready for routing.
	TaskStatusTodo TaskStatus = "TODO"

	// TaskStatusAssigned indicates a worker has been assigned but has not started.
	TaskStatusAssigned TaskStatus = "ASSIGNED"

	// TaskStatusInProgress indicates the assigned worker is actively executing.
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"

	// TaskStatusBlocked indicates the task is gated on unfinished dependencies
	// or was manually blocked.
	TaskStatusBlocked TaskStatus = "BLOCKED"

	// TaskStatusDone is the terminal state. No further transitions are allowed.
	TaskStatusDone TaskStatus = "DONE"
)

// IsValid reports whether the status is a known lifecycle state.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusAssigned, TaskStatusInProgress, TaskStatusBlocked, TaskStatusDone:
		return true
	default:
		return false
	}
}

// TaskPriority orders tasks in ready and stale listings. Lower is more urgent.
type TaskPriority int

// Task priority levels, critical first.
const (
	PriorityCritical TaskPriority = 1
	PriorityHigh     TaskPriority = 2
	PriorityMedium   TaskPriority = 3
	PriorityLow      TaskPriority = 4
)

// File names used by the pool for state persistence.
const (
	// PoolFileName is the JSON file that stores the live task pool.
	PoolFileName = "task_pool.json"

	// RegistryFileName is the YAML file that stores the competency registry.
	RegistryFileName = "registry.yaml"

	// EscalationLogFileName is the YAML audit log of escalation decisions.
	EscalationLogFileName = "escalations.yaml"
)

// Directory names used by the pool for organizing data.
const (
	// PoolHome is the hidden directory name where the pool stores all its data.
	// Created in the user's home directory unless overridden by configuration.
	PoolHome = ".taskpool"

	// ArchiveDir is the directory name where daily cold-storage files live.
	ArchiveDir = "archive"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Routing thresholds.
const (
	// DefaultEscalationThreshold is the minimum routing confidence below which
	// the router reports no confident match and the task is escalated.
	DefaultEscalationThreshold = 0.3

	// DefaultAutoClaimThreshold is the minimum routing confidence required to
	// auto-assign a freshly created task without human review.
	DefaultAutoClaimThreshold = 0.5
)

// Maintenance job defaults.
const (
	// DefaultRetention is how long a DONE task stays in the live pool before
	// the archiver moves it to cold storage.
	DefaultRetention = 24 * time.Hour

	// DefaultStaleBudget is how long a live task may sit without progress
	// before the stale patrol reports it.
	DefaultStaleBudget = 72 * time.Hour

	// DefaultArchiveInterval is how often the archiver runs.
	DefaultArchiveInterval = time.Hour

	// DefaultPatrolInterval is how often the stale patrol runs.
	DefaultPatrolInterval = 6 * time.Hour
)

// ArchiveDateLayout is the calendar-day partition key format for cold storage.
const ArchiveDateLayout = "2006-01-02"

// PoolSchemaVersion is the current version of the persisted pool schema.
// This enables forward-compatible schema migrations.
const PoolSchemaVersion = "1.0"
