package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinincorp/taskpool/internal/constants"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Empty(t, cfg.DataDir)
	assert.InDelta(t, constants.DefaultEscalationThreshold, cfg.Routing.EscalationThreshold, 1e-9)
	assert.InDelta(t, constants.DefaultAutoClaimThreshold, cfg.Routing.AutoClaimThreshold, 1e-9)
	assert.Equal(t, constants.DefaultRetention, cfg.Archive.Retention)
	assert.Equal(t, constants.DefaultArchiveInterval, cfg.Archive.Interval)
	assert.Equal(t, constants.DefaultStaleBudget, cfg.Patrol.StaleBudget)
	assert.Equal(t, constants.DefaultPatrolInterval, cfg.Patrol.Interval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.File)

	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config { return Default() }

	t.Run("nil config", func(t *testing.T) {
		require.ErrorIs(t, Validate(nil), pkgerrors.ErrConfigNil)
	})

	t.Run("threshold bounds", func(t *testing.T) {
		cfg := valid()
		cfg.Routing.EscalationThreshold = -0.01
		require.ErrorIs(t, Validate(cfg), pkgerrors.ErrInvalidThreshold)

		cfg = valid()
		cfg.Routing.EscalationThreshold = 1.01
		require.ErrorIs(t, Validate(cfg), pkgerrors.ErrInvalidThreshold)

		cfg = valid()
		cfg.Routing.AutoClaimThreshold = 2
		require.ErrorIs(t, Validate(cfg), pkgerrors.ErrInvalidThreshold)

		// The boundaries themselves are legal.
		cfg = valid()
		cfg.Routing.EscalationThreshold = 0
		cfg.Routing.AutoClaimThreshold = 1
		require.NoError(t, Validate(cfg))
	})

	t.Run("durations must be positive", func(t *testing.T) {
		for name, mutate := range map[string]func(*Config){
			"archive retention": func(c *Config) { c.Archive.Retention = 0 },
			"archive interval":  func(c *Config) { c.Archive.Interval = -time.Hour },
			"stale budget":      func(c *Config) { c.Patrol.StaleBudget = 0 },
			"patrol interval":   func(c *Config) { c.Patrol.Interval = 0 },
		} {
			cfg := valid()
			mutate(cfg)
			require.ErrorIs(t, Validate(cfg), pkgerrors.ErrInvalidDuration, name)
		}
	})

	t.Run("log level", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			cfg := valid()
			cfg.Logging.Level = level
			require.NoError(t, Validate(cfg))
		}

		cfg := valid()
		cfg.Logging.Level = "verbose"
		require.ErrorIs(t, Validate(cfg), pkgerrors.ErrInvalidLogLevel)

		cfg = valid()
		cfg.Logging.Level = ""
		require.ErrorIs(t, Validate(cfg), pkgerrors.ErrInvalidLogLevel)
	})
}

func TestConfig_Paths(t *testing.T) {
	t.Parallel()

	t.Run("explicit data dir", func(t *testing.T) {
		dir := t.TempDir()
		cfg := Default()
		cfg.DataDir = dir

		resolved, err := cfg.ResolveDataDir()
		require.NoError(t, err)
		assert.Equal(t, dir, resolved)

		poolFile, err := cfg.PoolFile()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, constants.PoolFileName), poolFile)

		registryFile, err := cfg.RegistryFile()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, constants.RegistryFileName), registryFile)

		escalationFile, err := cfg.EscalationLogFile()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, constants.EscalationLogFileName), escalationFile)

		archiveDir, err := cfg.ArchiveDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, constants.ArchiveDir), archiveDir)

		logsDir, err := cfg.LogsDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, constants.LogsDir), logsDir)
	})

	t.Run("defaults to the home pool directory", func(t *testing.T) {
		cfg := Default()
		resolved, err := cfg.ResolveDataDir()
		require.NoError(t, err)
		assert.Equal(t, constants.PoolHome, filepath.Base(resolved))
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKPOOL_ROUTING_ESCALATION_THRESHOLD", "0.6")
	t.Setenv("TASKPOOL_PATROL_STALE_BUDGET", "48h")
	t.Setenv("TASKPOOL_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.6, cfg.Routing.EscalationThreshold, 1e-9)
	assert.Equal(t, 48*time.Hour, cfg.Patrol.StaleBudget)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsInvalidEnv(t *testing.T) {
	t.Setenv("TASKPOOL_LOGGING_LEVEL", "shout")

	_, err := Load()
	require.ErrorIs(t, err, pkgerrors.ErrInvalidLogLevel)
}
