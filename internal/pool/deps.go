package pool

import (
	"fmt"
	"time"

	"github.com/zinincorp/taskpool/internal/constants"
	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

// AddDependency records that task cannot start until dependsOn is DONE.
// Both ids must exist, self-references and superseded dependencies are
// rejected, and an edge that would close a cycle fails with
// ErrDependencyCycle leaving the graph unchanged.
// The edge is stored symmetrically and the task's blocked status is
// recomputed in the same critical section.
func (p *Pool) AddDependency(taskID, dependsOn string) (*domain.Task, error) {
	if taskID == dependsOn {
		return nil, fmt.Errorf("task '%s': %w", taskID, pkgerrors.ErrSelfDependency)
	}

	p.mu.Lock()
	t, ok := p.tasks[taskID]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("task '%s': %w", taskID, pkgerrors.ErrTaskNotFound)
	}
	dep, ok := p.tasks[dependsOn]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("dependency '%s': %w", dependsOn, pkgerrors.ErrTaskNotFound)
	}
	if t.IsTerminal() || t.Superseded {
		p.mu.Unlock()
		return nil, p.transitionErr(t, "add-dependency")
	}
	if dep.Superseded {
		// A superseded task never reaches DONE; the edge would block taskID
		// forever.
		p.mu.Unlock()
		return nil, fmt.Errorf("dependency '%s': %w", dependsOn, pkgerrors.ErrTaskSuperseded)
	}
	if containsString(t.BlockedBy, dependsOn) {
		// Edge already present: idempotent no-op.
		result := t.Clone()
		p.mu.Unlock()
		return result, nil
	}

	// Depth-first walk from the dependency through its own blocked_by set:
	// reaching taskID means the new edge would close a cycle.
	if p.reaches(dependsOn, taskID) {
		p.mu.Unlock()
		return nil, fmt.Errorf("edge %s -> %s: %w", taskID, dependsOn, pkgerrors.ErrDependencyCycle)
	}

	now := p.clk.Now().UTC()
	t.BlockedBy = append(t.BlockedBy, dependsOn)
	dep.Blocks = appendUnique(dep.Blocks, taskID)
	p.recomputeBlocked(t, now)
	t.UpdatedAt = now

	result := t.Clone()
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.persist(snapshot)
	p.logger.Info().
		Str("task", taskID).
		Str("depends_on", dependsOn).
		Str("status", string(result.Status)).
		Msg("dependency added")
	return result, nil
}

// reaches reports whether start can reach target by following blocked_by
// edges. Callers must hold p.mu.
func (p *Pool) reaches(start, target string) bool {
	visited := make(map[string]bool)
	var walk func(id string) bool
	walk = func(id string) bool {
		if id == target {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		t, ok := p.tasks[id]
		if !ok {
			return false
		}
		for _, depID := range t.BlockedBy {
			if walk(depID) {
				return true
			}
		}
		return false
	}
	return walk(start)
}

// unmetDeps returns the ids in t.BlockedBy whose tasks are not DONE.
// Ids that no longer resolve (archived or deleted dependencies) count as
// met. Callers must hold p.mu.
func (p *Pool) unmetDeps(t *domain.Task) []string {
	var unmet []string
	for _, depID := range t.BlockedBy {
		dep, ok := p.tasks[depID]
		if !ok {
			continue
		}
		if dep.Status != constants.TaskStatusDone {
			unmet = append(unmet, depID)
		}
	}
	return unmet
}

// recomputeBlocked reconciles a task's stored status with the
// dependency-derived block condition. Only TODO, ASSIGNED and IN_PROGRESS
// tasks can be pulled into BLOCKED; an assignee is cleared because a blocked
// task returns to the pool. Callers must hold p.mu.
func (p *Pool) recomputeBlocked(t *domain.Task, now time.Time) {
	if t.IsTerminal() || t.Superseded {
		return
	}
	if len(p.unmetDeps(t)) > 0 && t.Status != constants.TaskStatusBlocked {
		t.Status = constants.TaskStatusBlocked
		t.Assignee = ""
		t.UpdatedAt = now
	}
}

// propagateCompletion runs the dependency engine after t reached DONE: every
// dependent whose dependencies are now all DONE flips from BLOCKED back to
// TODO. Propagation is one level deep per completion; a dependent becoming
// unblocked completes nothing itself. The edge stays recorded for audit.
// Callers must hold p.mu. Returns the ids that were unblocked.
func (p *Pool) propagateCompletion(t *domain.Task, now time.Time) []string {
	var unblocked []string
	for _, depID := range t.Blocks {
		dependent, ok := p.tasks[depID]
		if !ok {
			continue
		}
		if dependent.Status != constants.TaskStatusBlocked || dependent.BlockReason != "" {
			// Manual blocks need a manual unblock; only dependency-derived
			// blocks clear automatically.
			continue
		}
		if len(p.unmetDeps(dependent)) > 0 {
			continue
		}
		dependent.Status = constants.TaskStatusTodo
		dependent.UpdatedAt = now
		unblocked = append(unblocked, dependent.ID)
	}
	return unblocked
}

// detachEdges scrubs t from both indexes of every neighbor and recomputes
// former dependents, so removing a task can never strand a symmetric edge.
// Callers must hold p.mu.
func (p *Pool) detachEdges(t *domain.Task) {
	now := p.clk.Now().UTC()
	for _, depID := range t.BlockedBy {
		if dep, ok := p.tasks[depID]; ok {
			dep.Blocks = removeString(dep.Blocks, t.ID)
		}
	}
	for _, blockedID := range t.Blocks {
		dependent, ok := p.tasks[blockedID]
		if !ok {
			continue
		}
		dependent.BlockedBy = removeString(dependent.BlockedBy, t.ID)
		if dependent.Status == constants.TaskStatusBlocked && dependent.BlockReason == "" &&
			len(p.unmetDeps(dependent)) == 0 {
			dependent.Status = constants.TaskStatusTodo
			dependent.UpdatedAt = now
		}
	}
	t.BlockedBy = nil
	t.Blocks = nil
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
