// Package config provides configuration management for the task pool with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. Environment variables (TASKPOOL_* prefix)
//  2. Project config (.taskpool/config.yaml)
//  3. Global config (~/.taskpool/config.yaml)
//  4. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for the task pool.
type Config struct {
	// DataDir is where the pool file, registry, escalation log and archive
	// live. Empty means ~/.taskpool.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// Routing contains settings for assignee suggestion and auto-claim.
	Routing RoutingConfig `yaml:"routing" mapstructure:"routing"`

	// Archive contains settings for the cold-storage archiver.
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`

	// Patrol contains settings for the stale-task patrol.
	Patrol PatrolConfig `yaml:"patrol" mapstructure:"patrol"`

	// Logging contains settings for log output.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// RoutingConfig controls the agent router and auto-claim behavior.
type RoutingConfig struct {
	// EscalationThreshold is the minimum confidence below which the router
	// reports no confident match. Range [0,1]. Default: 0.3
	EscalationThreshold float64 `yaml:"escalation_threshold" mapstructure:"escalation_threshold"`

	// AutoClaimThreshold is the minimum confidence to auto-assign a freshly
	// created task without review. Range [0,1]. Default: 0.5
	AutoClaimThreshold float64 `yaml:"auto_claim_threshold" mapstructure:"auto_claim_threshold"`
}

// ArchiveConfig controls the cold-storage archiver.
type ArchiveConfig struct {
	// Retention is how long a DONE task stays live before archival.
	// Default: 24h
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`

	// Interval is how often the archiver pass runs. Default: 1h
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// PatrolConfig controls the stale-task patrol.
type PatrolConfig struct {
	// StaleBudget is how long a live task may sit without progress before
	// it is reported. Default: 72h
	StaleBudget time.Duration `yaml:"stale_budget" mapstructure:"stale_budget"`

	// Interval is how often the patrol pass runs. Default: 6h
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// File enables rotated log files under <data_dir>/logs. Default: true
	File bool `yaml:"file" mapstructure:"file"`
}
