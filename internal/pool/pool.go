package pool

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zinincorp/taskpool/internal/clock"
	"github.com/zinincorp/taskpool/internal/constants"
	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

// Pool is the authoritative collection of live tasks. It enforces the
// status-transition and dependency invariants and is the single shared
// mutable resource of the subsystem.
//
// All mutations run under a single writer lock; reads take a shared lock and
// return deep copies so callers can never mutate store state through a
// returned pointer. Persistence happens outside the critical section from a
// snapshot taken under the lock.
type Pool struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task

	// seq counts mutations; each snapshot carries the sequence that produced
	// it. Guarded by mu.
	seq uint64

	// persistMu serializes snapshot writes so concurrent mutations cannot
	// interleave partial files. It is never held together with mu.
	// persistedSeq is the sequence of the snapshot last written to disk,
	// guarded by persistMu.
	persistMu    sync.Mutex
	persistedSeq uint64
	path         string // empty means in-memory only (tests)

	clk    clock.Clock
	logger zerolog.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithClock substitutes the time source, for tests.
func WithClock(c clock.Clock) Option {
	return func(p *Pool) { p.clk = c }
}

// WithLogger sets the pool logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pool) { p.logger = l.With().Str("component", "pool").Logger() }
}

// New creates a Pool persisted at path. If the file exists its contents are
// loaded; otherwise the pool starts empty. An empty path keeps the pool
// in-memory only.
func New(path string, opts ...Option) (*Pool, error) {
	p := &Pool{
		tasks:  make(map[string]*domain.Task),
		path:   path,
		clk:    clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateRequest carries the inputs for Create.
type CreateRequest struct {
	// Title is required free text describing the work.
	Title string

	// Description is optional free text detail.
	Description string

	// Tags is the competency tag set computed by the extractor. The pool
	// stores it as-is; tagging itself lives outside the store.
	Tags []string

	// Priority defaults to medium when zero.
	Priority constants.TaskPriority

	// BlockedBy lists ids of tasks that must be DONE before this one starts.
	// Every id must exist in the pool.
	BlockedBy []string

	// Source records where the task came from ("manual", "delegation",
	// "scheduler").
	Source string
}

// Create adds a new task to the pool in TODO, or BLOCKED when any dependency
// is not yet DONE. Dependency edges are recorded symmetrically on both sides.
func (p *Pool) Create(req CreateRequest) (*domain.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("task title %w", pkgerrors.ErrEmptyValue)
	}
	priority := req.Priority
	if priority == 0 {
		priority = constants.PriorityMedium
	}
	if priority < constants.PriorityCritical || priority > constants.PriorityLow {
		return nil, fmt.Errorf("priority %d: %w", priority, pkgerrors.ErrInvalidPriority)
	}

	deps := dedupe(req.BlockedBy)
	now := p.clk.Now().UTC()
	task := &domain.Task{
		ID:            newTaskID(),
		Title:         req.Title,
		Description:   req.Description,
		Status:        constants.TaskStatusTodo,
		Tags:          req.Tags,
		Priority:      priority,
		BlockedBy:     deps,
		Source:        req.Source,
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: constants.PoolSchemaVersion,
	}

	p.mu.Lock()
	// Every dependency must exist and must still be completable. A freshly
	// minted id has no inbound edges, so the new node's outgoing edges can
	// never close a cycle.
	for _, depID := range deps {
		dep, ok := p.tasks[depID]
		if !ok {
			p.mu.Unlock()
			return nil, fmt.Errorf("dependency '%s': %w", depID, pkgerrors.ErrTaskNotFound)
		}
		if dep.Superseded {
			// A superseded task never reaches DONE, so gating on it would
			// block the new task forever.
			p.mu.Unlock()
			return nil, fmt.Errorf("dependency '%s': %w", depID, pkgerrors.ErrTaskSuperseded)
		}
	}
	for _, depID := range deps {
		dep := p.tasks[depID]
		dep.Blocks = appendUnique(dep.Blocks, task.ID)
	}
	if len(p.unmetDeps(task)) > 0 {
		task.Status = constants.TaskStatusBlocked
	}
	p.tasks[task.ID] = task
	result := task.Clone()
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.persist(snapshot)
	p.logger.Info().
		Str("task", task.ID).
		Str("status", string(task.Status)).
		Strs("tags", task.Tags).
		Msg("task created")
	return result, nil
}

// Get returns a copy of the task with the given id.
func (p *Pool) Get(id string) (*domain.Task, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t, ok := p.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task '%s': %w", id, pkgerrors.ErrTaskNotFound)
	}
	return t.Clone(), nil
}

// Filter selects tasks in List. Zero-value fields match everything.
type Filter struct {
	// Status matches tasks in the given lifecycle state.
	Status constants.TaskStatus

	// Assignee matches tasks assigned to the given worker key.
	Assignee string

	// Tag matches tasks whose tag set contains the given tag.
	Tag string
}

// List returns copies of all live tasks matching the filter, ordered by
// creation time, oldest first, with id as a stable tie-break.
func (p *Pool) List(f Filter) []*domain.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*domain.Task
	for _, t := range p.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Assignee != "" && t.Assignee != f.Assignee {
			continue
		}
		if f.Tag != "" && !containsString(t.Tags, f.Tag) {
			continue
		}
		out = append(out, t.Clone())
	}
	sortByCreation(out)
	return out
}

// Assign moves a TODO task to ASSIGNED for the given worker and records the
// routing confidence for audit. Assigning a BLOCKED task fails with
// ErrStillBlocked; any other non-TODO state fails with a TransitionError.
func (p *Pool) Assign(id, worker, assignedBy string, confidence float64) (*domain.Task, error) {
	if worker == "" {
		return nil, fmt.Errorf("assignee %w", pkgerrors.ErrEmptyValue)
	}

	p.mu.Lock()
	t, ok := p.tasks[id]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("task '%s': %w", id, pkgerrors.ErrTaskNotFound)
	}
	if t.Status == constants.TaskStatusBlocked {
		p.mu.Unlock()
		return nil, fmt.Errorf("task '%s' has unmet dependencies: %w", id, pkgerrors.ErrStillBlocked)
	}
	if !operationAllowed(OpAssign, t.Status) || t.Superseded {
		p.mu.Unlock()
		return nil, p.transitionErr(t, OpAssign)
	}

	now := p.clk.Now().UTC()
	t.Assignee = worker
	t.AssignedBy = assignedBy
	t.Confidence = confidence
	t.Status = constants.TaskStatusAssigned
	t.AssignedAt = &now
	t.UpdatedAt = now
	result := t.Clone()
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.persist(snapshot)
	p.logger.Info().
		Str("task", id).
		Str("worker", worker).
		Float64("confidence", confidence).
		Msg("task assigned")
	return result, nil
}

// Start moves an ASSIGNED task to IN_PROGRESS.
func (p *Pool) Start(id string) (*domain.Task, error) {
	return p.transition(id, OpStart, func(t *domain.Task, now time.Time) {
		t.Status = constants.TaskStatusInProgress
	})
}

// Complete moves a task to DONE and propagates unblocking: every dependent
// whose dependencies are now all DONE flips from BLOCKED to TODO within the
// same call, making it immediately visible to routing.
func (p *Pool) Complete(id, result string) (*domain.Task, error) {
	p.mu.Lock()
	t, ok := p.tasks[id]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("task '%s': %w", id, pkgerrors.ErrTaskNotFound)
	}
	if !operationAllowed(OpComplete, t.Status) || t.Superseded {
		p.mu.Unlock()
		return nil, p.transitionErr(t, OpComplete)
	}

	now := p.clk.Now().UTC()
	t.Status = constants.TaskStatusDone
	t.Result = result
	t.CompletedAt = &now
	t.UpdatedAt = now

	unblocked := p.propagateCompletion(t, now)
	out := t.Clone()
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.persist(snapshot)
	evt := p.logger.Info().Str("task", id)
	if len(unblocked) > 0 {
		evt = evt.Strs("unblocked", unblocked)
	}
	evt.Msg("task completed")
	return out, nil
}

// Block manually blocks a task, independent of the dependency graph. The
// assignee is cleared: a blocked task is back in the pool, not owned.
func (p *Pool) Block(id, reason string) (*domain.Task, error) {
	return p.transition(id, OpBlock, func(t *domain.Task, now time.Time) {
		t.Status = constants.TaskStatusBlocked
		t.Assignee = ""
		t.BlockReason = reason
	})
}

// Unblock returns a BLOCKED task to TODO, but only when the
// dependency-derived block condition no longer holds. While true dependencies
// remain open it fails with ErrDependenciesNotMet.
func (p *Pool) Unblock(id string) (*domain.Task, error) {
	p.mu.Lock()
	t, ok := p.tasks[id]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("task '%s': %w", id, pkgerrors.ErrTaskNotFound)
	}
	if !operationAllowed(OpUnblock, t.Status) || t.Superseded {
		p.mu.Unlock()
		return nil, p.transitionErr(t, OpUnblock)
	}
	if unmet := p.unmetDeps(t); len(unmet) > 0 {
		p.mu.Unlock()
		return nil, fmt.Errorf("task '%s' still waits on %s: %w",
			id, strings.Join(unmet, ", "), pkgerrors.ErrDependenciesNotMet)
	}

	now := p.clk.Now().UTC()
	t.Status = constants.TaskStatusTodo
	t.BlockReason = ""
	t.UpdatedAt = now
	result := t.Clone()
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.persist(snapshot)
	p.logger.Info().Str("task", id).Msg("task unblocked")
	return result, nil
}

// Transition dispatches a named lifecycle operation. Assign has its own
// signature and is not reachable through here.
func (p *Pool) Transition(id string, op Operation, arg string) (*domain.Task, error) {
	switch op {
	case OpStart:
		return p.Start(id)
	case OpComplete:
		return p.Complete(id, arg)
	case OpBlock:
		return p.Block(id, arg)
	case OpUnblock:
		return p.Unblock(id)
	default:
		return nil, fmt.Errorf("operation '%s': %w", op, pkgerrors.ErrInvalidTransition)
	}
}

// transition applies a guarded single-task mutation under the writer lock.
func (p *Pool) transition(id string, op Operation, apply func(*domain.Task, time.Time)) (*domain.Task, error) {
	p.mu.Lock()
	t, ok := p.tasks[id]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("task '%s': %w", id, pkgerrors.ErrTaskNotFound)
	}
	if !operationAllowed(op, t.Status) || t.Superseded {
		p.mu.Unlock()
		return nil, p.transitionErr(t, op)
	}

	now := p.clk.Now().UTC()
	apply(t, now)
	t.UpdatedAt = now
	result := t.Clone()
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.persist(snapshot)
	p.logger.Info().
		Str("task", id).
		Str("operation", string(op)).
		Str("status", string(result.Status)).
		Msg("task transitioned")
	return result, nil
}

func (p *Pool) transitionErr(t *domain.Task, op Operation) error {
	from := string(t.Status)
	if t.Superseded {
		from = "SUPERSEDED"
	}
	return pkgerrors.NewTransitionError(t.ID, from, string(op))
}

// Summary returns the number of live tasks per status plus a "total" entry.
func (p *Pool) Summary() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]int)
	for _, t := range p.tasks {
		out[string(t.Status)]++
	}
	out["total"] = len(p.tasks)
	return out
}

// ReadyTasks returns TODO tasks with no unmet dependencies, most urgent
// first. These are the tasks routing should consider next.
func (p *Pool) ReadyTasks() []*domain.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*domain.Task
	for _, t := range p.tasks {
		if t.Status != constants.TaskStatusTodo || t.Superseded {
			continue
		}
		if len(p.unmetDeps(t)) > 0 {
			continue
		}
		out = append(out, t.Clone())
	}
	sortByPriority(out)
	return out
}

// StaleTasks returns live tasks (TODO, ASSIGNED, IN_PROGRESS) whose last
// update is older than cutoff, most urgent first. BLOCKED and DONE tasks are
// never reported: blocked inactivity is expected and done work is finished.
func (p *Pool) StaleTasks(cutoff time.Time) []*domain.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*domain.Task
	for _, t := range p.tasks {
		if !t.IsLive() || t.Superseded {
			continue
		}
		if t.UpdatedAt.Before(cutoff) {
			out = append(out, t.Clone())
		}
	}
	sortByPriority(out)
	return out
}

// ArchivableTasks returns copies of closed tasks (DONE, or superseded by a
// split escalation) whose last update is older than cutoff. The live pool is
// not modified; pair with RemoveArchived once the snapshots are safely on
// disk so a persistence failure can be retried on the next run.
func (p *Pool) ArchivableTasks(cutoff time.Time) []*domain.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*domain.Task
	for _, t := range p.tasks {
		if !t.IsTerminal() && !t.Superseded {
			continue
		}
		if t.UpdatedAt.Before(cutoff) {
			out = append(out, t.Clone())
		}
	}
	sortByCreation(out)
	return out
}

// RemoveArchived deletes the given tasks from the live pool, skipping any
// that are no longer closed (a guard against racing mutations between the
// snapshot and the removal). Returns the number removed.
func (p *Pool) RemoveArchived(ids []string) int {
	p.mu.Lock()
	removed := 0
	for _, id := range ids {
		t, ok := p.tasks[id]
		if !ok || (!t.IsTerminal() && !t.Superseded) {
			continue
		}
		p.detachEdges(t)
		delete(p.tasks, id)
		removed++
	}
	var snapshot poolSnapshot
	if removed > 0 {
		snapshot = p.snapshot()
	}
	p.mu.Unlock()

	if removed > 0 {
		p.persist(snapshot)
	}
	return removed
}

// Delete removes a task entirely and scrubs its edges from both indexes.
func (p *Pool) Delete(id string) error {
	p.mu.Lock()
	t, ok := p.tasks[id]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("task '%s': %w", id, pkgerrors.ErrTaskNotFound)
	}
	p.detachEdges(t)
	delete(p.tasks, id)
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.persist(snapshot)
	p.logger.Info().Str("task", id).Msg("task deleted")
	return nil
}

// Supersede closes a task that was replaced by the split escalation path.
// The task never enters DONE; dependents are re-pointed as if the task had
// been removed from the graph, so the replacement subtasks gate them instead.
func (p *Pool) Supersede(id string) (*domain.Task, error) {
	p.mu.Lock()
	t, ok := p.tasks[id]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("task '%s': %w", id, pkgerrors.ErrTaskNotFound)
	}
	if t.IsTerminal() || t.Superseded {
		p.mu.Unlock()
		return nil, p.transitionErr(t, "supersede")
	}

	now := p.clk.Now().UTC()
	p.detachEdges(t)
	t.Superseded = true
	t.Assignee = ""
	t.UpdatedAt = now
	result := t.Clone()
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.persist(snapshot)
	p.logger.Info().Str("task", id).Msg("task superseded")
	return result, nil
}

// Len returns the number of live tasks.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tasks)
}

// newTaskID generates a short unique task id (8 hex characters).
func newTaskID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func sortByCreation(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func sortByPriority(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	if containsString(list, s) {
		return list
	}
	return append(list, s)
}
