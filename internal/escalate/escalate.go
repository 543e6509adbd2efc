// Package escalate resolves routing escalations.
//
// When the router reports no confident match for a task, a human picks
// exactly one of four mutually exclusive resolution paths. Each path is
// applied against the competency registry and/or the task pool, and the
// decision is recorded in a durable audit log so future routing benefits
// from it: extending a worker's competencies is a registry change, not a
// one-off override.
package escalate

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zinincorp/taskpool/internal/clock"
	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
	"github.com/zinincorp/taskpool/internal/pool"
	"github.com/zinincorp/taskpool/internal/registry"
	"github.com/zinincorp/taskpool/internal/router"
	"github.com/zinincorp/taskpool/internal/tagging"
)

// Path names one of the four escalation resolution paths.
type Path string

// The four mutually exclusive resolution paths. Exactly one is taken per
// escalation.
const (
	// PathExtend adds tags to an existing worker's competency set, then
	// re-routes the escalated task automatically.
	PathExtend Path = "extend"

	// PathNewWorker registers a new worker identity with a fresh competency
	// set and assigns the triggering task to it.
	PathNewWorker Path = "new-worker"

	// PathSplit replaces the task with two or more new tasks, each
	// independently tagged and routed. The original is superseded, which is
	// distinguishable from normal completion in the audit trail.
	PathSplit Path = "split"

	// PathManual bypasses routing: assign directly to a named worker, or
	// close the task as obsolete without execution.
	PathManual Path = "manual"
)

// Subtask describes one replacement task for the split path.
type Subtask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
}

// Payload carries the path-specific inputs for Resolve.
type Payload struct {
	// Worker is the target worker key (extend, new-worker, manual).
	Worker string `yaml:"worker,omitempty"`

	// WorkerName is the display name for a newly introduced worker.
	WorkerName string `yaml:"worker_name,omitempty"`

	// Tags are the competency tags to add (extend) or seed (new-worker).
	Tags []string `yaml:"tags,omitempty"`

	// Subtasks are the replacement tasks for the split path.
	Subtasks []Subtask `yaml:"subtasks,omitempty"`

	// Obsolete closes the task without execution on the manual path,
	// instead of assigning it.
	Obsolete bool `yaml:"obsolete,omitempty"`
}

// Manager applies escalation decisions.
type Manager struct {
	pool     *pool.Pool
	registry *registry.Registry
	router   *router.Router
	audit    *auditLog
	clk      clock.Clock
	logger   zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock substitutes the time source, for tests.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clk = c }
}

// New creates a Manager. auditPath is the YAML decision log; empty disables
// persistence (tests).
func New(p *pool.Pool, reg *registry.Registry, rt *router.Router, auditPath string, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		pool:     p,
		registry: reg,
		router:   rt,
		audit:    newAuditLog(auditPath),
		clk:      clock.RealClock{},
		logger:   logger.With().Str("component", "escalate").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve applies exactly one resolution path to the escalated task and
// records the decision. It returns the resulting task(s): the (re)assigned
// task for extend/new-worker/manual, or the replacement subtasks for split.
func (m *Manager) Resolve(taskID string, path Path, payload Payload, decidedBy string) ([]*domain.Task, error) {
	task, err := m.pool.Get(taskID)
	if err != nil {
		return nil, err
	}

	var (
		result  []*domain.Task
		outcome string
	)
	switch path {
	case PathExtend:
		result, outcome, err = m.resolveExtend(task, payload)
	case PathNewWorker:
		result, outcome, err = m.resolveNewWorker(task, payload)
	case PathSplit:
		result, outcome, err = m.resolveSplit(task, payload)
	case PathManual:
		result, outcome, err = m.resolveManual(task, payload, decidedBy)
	default:
		return nil, fmt.Errorf("path '%s': %w", path, pkgerrors.ErrUnknownEscalationPath)
	}
	if err != nil {
		return nil, err
	}

	decision := Decision{
		TaskID:    taskID,
		Path:      path,
		Payload:   payload,
		DecidedBy: decidedBy,
		DecidedAt: m.clk.Now().UTC(),
		Outcome:   outcome,
	}
	if logErr := m.audit.append(decision); logErr != nil {
		// The resolution already took effect; a failed audit write must not
		// roll it back. Surface it in the log instead.
		m.logger.Error().Err(logErr).Str("task", taskID).Msg("failed to record escalation decision")
	}
	m.logger.Info().
		Str("task", taskID).
		Str("path", string(path)).
		Str("outcome", outcome).
		Str("decided_by", decidedBy).
		Msg("escalation resolved")
	return result, nil
}

// resolveExtend durably adds tags to an existing worker, then re-routes the
// escalated task. The registry change stands even if re-routing still finds
// no confident match.
func (m *Manager) resolveExtend(task *domain.Task, payload Payload) ([]*domain.Task, string, error) {
	if payload.Worker == "" || len(payload.Tags) == 0 {
		return nil, "", fmt.Errorf("extend requires a worker and tags: %w", pkgerrors.ErrEscalationPayload)
	}
	if err := m.registry.Extend(payload.Worker, payload.Tags...); err != nil {
		return nil, "", err
	}

	suggestion, err := m.router.SuggestAssignee(task)
	if err != nil {
		return nil, "", pkgerrors.Wrapf(err, "competencies extended but task '%s' still unroutable", task.ID)
	}
	assigned, err := m.pool.Assign(task.ID, suggestion.Worker, "escalation:extend", suggestion.Confidence)
	if err != nil {
		return nil, "", err
	}
	outcome := fmt.Sprintf("extended %s, re-routed to %s (%.2f)", payload.Worker, suggestion.Worker, suggestion.Confidence)
	return []*domain.Task{assigned}, outcome, nil
}

// resolveNewWorker registers a fresh worker identity and assigns the
// triggering task to it.
func (m *Manager) resolveNewWorker(task *domain.Task, payload Payload) ([]*domain.Task, string, error) {
	if payload.Worker == "" || len(payload.Tags) == 0 {
		return nil, "", fmt.Errorf("new-worker requires a key and tags: %w", pkgerrors.ErrEscalationPayload)
	}

	rank := len(m.registry.Workers()) + 1
	worker := &domain.Worker{
		Key:                 payload.Worker,
		Name:                payload.WorkerName,
		Tags:                payload.Tags,
		Rank:                rank,
		CreatedByEscalation: true,
	}
	if err := m.registry.Register(worker); err != nil {
		return nil, "", err
	}

	confidence := overlapConfidence(task.Tags, payload.Tags)
	assigned, err := m.pool.Assign(task.ID, worker.Key, "escalation:new-worker", confidence)
	if err != nil {
		return nil, "", err
	}
	outcome := fmt.Sprintf("introduced worker %s, assigned (%.2f)", worker.Key, confidence)
	return []*domain.Task{assigned}, outcome, nil
}

// resolveSplit replaces the task with two or more independently tagged and
// routed subtasks, then supersedes the original.
func (m *Manager) resolveSplit(task *domain.Task, payload Payload) ([]*domain.Task, string, error) {
	if len(payload.Subtasks) < 2 {
		return nil, "", fmt.Errorf("split requires at least two subtasks: %w", pkgerrors.ErrEscalationPayload)
	}

	vocabulary := m.registry.Vocabulary()
	created := make([]*domain.Task, 0, len(payload.Subtasks))
	for _, sub := range payload.Subtasks {
		tags := tagging.Extract(sub.Title+" "+sub.Description, vocabulary)
		t, err := m.pool.Create(pool.CreateRequest{
			Title:       sub.Title,
			Description: sub.Description,
			Tags:        tags,
			Priority:    task.Priority,
			Source:      "escalation:split",
		})
		if err != nil {
			return nil, "", pkgerrors.Wrapf(err, "failed to create subtask of '%s'", task.ID)
		}
		created = append(created, t)
	}
	if _, err := m.pool.Supersede(task.ID); err != nil {
		return nil, "", err
	}
	outcome := fmt.Sprintf("split into %d subtasks", len(created))
	return created, outcome, nil
}

// resolveManual assigns directly to a named worker bypassing routing, or
// closes the task as obsolete without execution.
func (m *Manager) resolveManual(task *domain.Task, payload Payload, decidedBy string) ([]*domain.Task, string, error) {
	if payload.Obsolete {
		superseded, err := m.pool.Supersede(task.ID)
		if err != nil {
			return nil, "", err
		}
		return []*domain.Task{superseded}, "closed as obsolete", nil
	}

	if payload.Worker == "" {
		return nil, "", fmt.Errorf("manual requires a worker or obsolete: %w", pkgerrors.ErrEscalationPayload)
	}
	if _, err := m.registry.Get(payload.Worker); err != nil {
		return nil, "", err
	}
	confidence := overlapConfidence(task.Tags, workerTags(m.registry, payload.Worker))
	assigned, err := m.pool.Assign(task.ID, payload.Worker, decidedBy, confidence)
	if err != nil {
		return nil, "", err
	}
	outcome := fmt.Sprintf("manually assigned to %s", payload.Worker)
	return []*domain.Task{assigned}, outcome, nil
}

func workerTags(reg *registry.Registry, key string) []string {
	w, err := reg.Get(key)
	if err != nil {
		return nil
	}
	return w.Tags
}

// overlapConfidence mirrors the router's normalization for paths that
// bypass it: overlap size divided by the task's tag count.
func overlapConfidence(taskTags, workerTags []string) float64 {
	if len(taskTags) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(workerTags))
	for _, t := range workerTags {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range taskTags {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(taskTags))
}

// ParsePath validates a user-supplied path name.
func ParsePath(s string) (Path, error) {
	switch Path(s) {
	case PathExtend, PathNewWorker, PathSplit, PathManual:
		return Path(s), nil
	default:
		return "", fmt.Errorf("path '%s': %w", s, pkgerrors.ErrUnknownEscalationPath)
	}
}
