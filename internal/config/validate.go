package config

import (
	"fmt"

	"github.com/zinincorp/taskpool/internal/errors"
)

// validLogLevels are the accepted logging.level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks a Config for values that would misbehave at runtime.
// A rejected config names the offending key and value.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.Routing.EscalationThreshold < 0 || cfg.Routing.EscalationThreshold > 1 {
		return fmt.Errorf("routing.escalation_threshold %.2f: %w",
			cfg.Routing.EscalationThreshold, errors.ErrInvalidThreshold)
	}
	if cfg.Routing.AutoClaimThreshold < 0 || cfg.Routing.AutoClaimThreshold > 1 {
		return fmt.Errorf("routing.auto_claim_threshold %.2f: %w",
			cfg.Routing.AutoClaimThreshold, errors.ErrInvalidThreshold)
	}
	if cfg.Archive.Retention <= 0 {
		return fmt.Errorf("archive.retention %s: %w", cfg.Archive.Retention, errors.ErrInvalidDuration)
	}
	if cfg.Archive.Interval <= 0 {
		return fmt.Errorf("archive.interval %s: %w", cfg.Archive.Interval, errors.ErrInvalidDuration)
	}
	if cfg.Patrol.StaleBudget <= 0 {
		return fmt.Errorf("patrol.stale_budget %s: %w", cfg.Patrol.StaleBudget, errors.ErrInvalidDuration)
	}
	if cfg.Patrol.Interval <= 0 {
		return fmt.Errorf("patrol.interval %s: %w", cfg.Patrol.Interval, errors.ErrInvalidDuration)
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level '%s': %w", cfg.Logging.Level, errors.ErrInvalidLogLevel)
	}
	return nil
}
