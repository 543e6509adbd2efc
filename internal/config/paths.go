package config

import (
	"os"
	"path/filepath"

	"github.com/zinincorp/taskpool/internal/constants"
	"github.com/zinincorp/taskpool/internal/errors"
)

// ResolveDataDir returns the directory holding all pool state. An explicit
// data_dir wins; otherwise ~/.taskpool is used.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return filepath.Abs(c.DataDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, constants.PoolHome), nil
}

// PoolFile returns the path of the live pool JSON file.
func (c *Config) PoolFile() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.PoolFileName), nil
}

// RegistryFile returns the path of the competency registry YAML file.
func (c *Config) RegistryFile() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.RegistryFileName), nil
}

// EscalationLogFile returns the path of the escalation audit log.
func (c *Config) EscalationLogFile() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.EscalationLogFileName), nil
}

// ArchiveDir returns the cold-storage directory for daily partitions.
func (c *Config) ArchiveDir() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ArchiveDir), nil
}

// LogsDir returns the directory for rotated log files.
func (c *Config) LogsDir() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}
