package escalate

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

const (
	filePerm = 0o600
	dirPerm  = 0o750
)

// Decision is one recorded escalation resolution. The log is append-only:
// past decisions are never rewritten.
type Decision struct {
	// TaskID is the escalated task.
	TaskID string `yaml:"task_id"`

	// Path is the resolution path that was taken.
	Path Path `yaml:"path"`

	// Payload is the path-specific input as provided.
	Payload Payload `yaml:"payload"`

	// DecidedBy is the human identity that picked the path.
	DecidedBy string `yaml:"decided_by"`

	// DecidedAt is when the decision was applied.
	DecidedAt time.Time `yaml:"decided_at"`

	// Outcome is a short human-readable description of the effect.
	Outcome string `yaml:"outcome"`
}

// auditLog persists escalation decisions to a YAML file.
type auditLog struct {
	mu   sync.Mutex
	path string // empty disables persistence
}

func newAuditLog(path string) *auditLog {
	return &auditLog{path: path}
}

// append adds a decision to the log file, preserving existing entries.
func (a *auditLog) append(d Decision) error {
	if a.path == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	decisions, err := a.readLocked()
	if err != nil {
		return err
	}
	decisions = append(decisions, d)

	data, err := yaml.Marshal(decisions)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode escalation log")
	}
	if err := os.MkdirAll(filepath.Dir(a.path), dirPerm); err != nil {
		return pkgerrors.Wrap(err, "failed to create escalation log directory")
	}
	if err := os.WriteFile(a.path, data, filePerm); err != nil {
		return pkgerrors.Wrap(err, "failed to write escalation log")
	}
	return nil
}

// Decisions returns all recorded decisions, oldest first.
func (a *auditLog) Decisions() ([]Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.readLocked()
}

func (a *auditLog) readLocked() ([]Decision, error) {
	if a.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(a.path) //nolint:gosec // Path comes from configuration
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read escalation log")
	}
	var decisions []Decision
	if err := yaml.Unmarshal(data, &decisions); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse escalation log")
	}
	return decisions, nil
}

// Decisions exposes the audit trail for reporting.
func (m *Manager) Decisions() ([]Decision, error) {
	return m.audit.Decisions()
}
