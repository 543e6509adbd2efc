package pool

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zinincorp/taskpool/internal/constants"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

func TestPool_AddDependency(t *testing.T) {
	t.Parallel()

	t.Run("records edge on both sides and blocks the task", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		b := mustCreate(t, p, CreateRequest{Title: "b"})

		task, err := p.AddDependency(a, b)
		require.NoError(t, err)
		assert.Equal(t, []string{b}, task.BlockedBy)
		assert.Equal(t, constants.TaskStatusBlocked, task.Status)

		dep, err := p.Get(b)
		require.NoError(t, err)
		assert.Equal(t, []string{a}, dep.Blocks)
	})

	t.Run("on a DONE dependency leaves the task unblocked", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		b := mustCreate(t, p, CreateRequest{Title: "b"})
		_, err := p.Assign(b, "accountant", "tester", 1)
		require.NoError(t, err)
		_, err = p.Complete(b, "")
		require.NoError(t, err)

		task, err := p.AddDependency(a, b)
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusTodo, task.Status)
	})

	t.Run("clears the assignee when it blocks an ASSIGNED task", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		b := mustCreate(t, p, CreateRequest{Title: "b"})
		_, err := p.Assign(a, "accountant", "tester", 1)
		require.NoError(t, err)

		task, err := p.AddDependency(a, b)
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusBlocked, task.Status)
		assert.Empty(t, task.Assignee)
	})

	t.Run("self dependency", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		_, err := p.AddDependency(a, a)
		require.ErrorIs(t, err, pkgerrors.ErrSelfDependency)
	})

	t.Run("unknown ids", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})

		_, err := p.AddDependency("nope", a)
		require.ErrorIs(t, err, pkgerrors.ErrTaskNotFound)
		_, err = p.AddDependency(a, "nope")
		require.ErrorIs(t, err, pkgerrors.ErrTaskNotFound)
	})

	t.Run("duplicate edge is a no-op", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		b := mustCreate(t, p, CreateRequest{Title: "b"})
		_, err := p.AddDependency(a, b)
		require.NoError(t, err)

		task, err := p.AddDependency(a, b)
		require.NoError(t, err)
		assert.Equal(t, []string{b}, task.BlockedBy)

		dep, err := p.Get(b)
		require.NoError(t, err)
		assert.Equal(t, []string{a}, dep.Blocks)
	})

	t.Run("on a superseded dependency fails", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		b := mustCreate(t, p, CreateRequest{Title: "b"})
		_, err := p.Supersede(b)
		require.NoError(t, err)

		// b will never reach DONE, so the edge would leave a permanently
		// BLOCKED with nothing to complete or unblock.
		_, err = p.AddDependency(a, b)
		require.ErrorIs(t, err, pkgerrors.ErrTaskSuperseded)

		task, err := p.Get(a)
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusTodo, task.Status)
		assert.Empty(t, task.BlockedBy)
		dep, err := p.Get(b)
		require.NoError(t, err)
		assert.Empty(t, dep.Blocks)
	})

	t.Run("on a closed task fails", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		b := mustCreate(t, p, CreateRequest{Title: "b"})
		_, err := p.Assign(a, "accountant", "tester", 1)
		require.NoError(t, err)
		_, err = p.Complete(a, "")
		require.NoError(t, err)

		_, err = p.AddDependency(a, b)
		require.ErrorIs(t, err, pkgerrors.ErrInvalidTransition)
	})
}

func TestPool_CycleRejection(t *testing.T) {
	t.Parallel()

	t.Run("direct two-node cycle", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		b := mustCreate(t, p, CreateRequest{Title: "b"})
		_, err := p.AddDependency(a, b)
		require.NoError(t, err)

		_, err = p.AddDependency(b, a)
		require.ErrorIs(t, err, pkgerrors.ErrDependencyCycle)
	})

	t.Run("three-node cycle leaves the graph unchanged", func(t *testing.T) {
		p, _ := newTestPool(t)
		a := mustCreate(t, p, CreateRequest{Title: "a"})
		b := mustCreate(t, p, CreateRequest{Title: "b"})
		c := mustCreate(t, p, CreateRequest{Title: "c"})
		_, err := p.AddDependency(a, b)
		require.NoError(t, err)
		_, err = p.AddDependency(b, c)
		require.NoError(t, err)

		_, err = p.AddDependency(c, a)
		require.ErrorIs(t, err, pkgerrors.ErrDependencyCycle)

		task, err := p.Get(c)
		require.NoError(t, err)
		assert.Empty(t, task.BlockedBy)
		assert.Equal(t, constants.TaskStatusTodo, task.Status)
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		p, _ := newTestPool(t)
		top := mustCreate(t, p, CreateRequest{Title: "top"})
		left := mustCreate(t, p, CreateRequest{Title: "left"})
		right := mustCreate(t, p, CreateRequest{Title: "right"})
		bottom := mustCreate(t, p, CreateRequest{Title: "bottom"})

		for _, edge := range [][2]string{
			{left, top}, {right, top}, {bottom, left}, {bottom, right},
		} {
			_, err := p.AddDependency(edge[0], edge[1])
			require.NoError(t, err)
		}
	})
}

func TestPool_CompletionPropagation(t *testing.T) {
	t.Parallel()

	t.Run("completing the last dependency frees the dependent", func(t *testing.T) {
		p, _ := newTestPool(t)
		first := mustCreate(t, p, CreateRequest{Title: "first"})
		second := mustCreate(t, p, CreateRequest{Title: "second"})
		gated := mustCreate(t, p, CreateRequest{Title: "gated", BlockedBy: []string{first, second}})

		_, err := p.Assign(first, "accountant", "tester", 1)
		require.NoError(t, err)
		_, err = p.Complete(first, "")
		require.NoError(t, err)

		// One dependency remains open.
		task, err := p.Get(gated)
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusBlocked, task.Status)

		_, err = p.Assign(second, "accountant", "tester", 1)
		require.NoError(t, err)
		_, err = p.Complete(second, "")
		require.NoError(t, err)

		task, err = p.Get(gated)
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusTodo, task.Status)
		// Edges stay recorded for audit after the unblock.
		assert.ElementsMatch(t, []string{first, second}, task.BlockedBy)
	})

	t.Run("manual block survives dependency completion", func(t *testing.T) {
		p, _ := newTestPool(t)
		dep := mustCreate(t, p, CreateRequest{Title: "dep"})
		gated := mustCreate(t, p, CreateRequest{Title: "gated", BlockedBy: []string{dep}})

		free := mustCreate(t, p, CreateRequest{Title: "free"})
		_, err := p.Block(free, "paused until the offsite")
		require.NoError(t, err)

		_, err = p.Assign(dep, "accountant", "tester", 1)
		require.NoError(t, err)
		_, err = p.Complete(dep, "")
		require.NoError(t, err)

		// Dependency-derived block cleared, manual hold did not.
		task, err := p.Get(gated)
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusTodo, task.Status)

		held, err := p.Get(free)
		require.NoError(t, err)
		assert.Equal(t, constants.TaskStatusBlocked, held.Status)
	})
}

// TestPool_GraphProperties drives the dependency engine with generated edge
// sequences and checks the structural invariants hold regardless of order.
func TestPool_GraphProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		p, err := New("")
		if err != nil {
			rt.Fatalf("new pool: %v", err)
		}

		n := rapid.IntRange(2, 8).Draw(rt, "tasks")
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			task, createErr := p.Create(CreateRequest{Title: fmt.Sprintf("task %d", i)})
			if createErr != nil {
				rt.Fatalf("create: %v", createErr)
			}
			ids = append(ids, task.ID)
		}

		edges := rapid.IntRange(0, 20).Draw(rt, "edges")
		for i := 0; i < edges; i++ {
			from := rapid.SampledFrom(ids).Draw(rt, "from")
			to := rapid.SampledFrom(ids).Draw(rt, "to")
			_, depErr := p.AddDependency(from, to)
			if depErr != nil {
				// Self edges and cycle-closing edges are rejected; anything
				// else is a bug.
				if !isExpectedEdgeError(depErr) {
					rt.Fatalf("unexpected edge error: %v", depErr)
				}
				continue
			}
		}

		// The surviving graph must be acyclic: no task reaches itself.
		p.mu.RLock()
		defer p.mu.RUnlock()
		for _, id := range ids {
			task := p.tasks[id]
			if selfReachable(p, id) {
				rt.Fatalf("task %s reaches itself", id)
			}

			// Symmetry: every blocked_by edge has its mirror blocks edge.
			for _, depID := range task.BlockedBy {
				if !containsString(p.tasks[depID].Blocks, id) {
					rt.Fatalf("edge %s -> %s missing mirror", id, depID)
				}
			}

			// A task is BLOCKED exactly when it has unmet dependencies.
			blocked := task.Status == constants.TaskStatusBlocked
			if blocked != (len(p.unmetDeps(task)) > 0) {
				rt.Fatalf("task %s: blocked=%v with %d unmet deps",
					id, blocked, len(p.unmetDeps(task)))
			}
		}
	})
}

// selfReachable walks blocked_by edges from every dependency of id looking for
// a path back to id. Callers must hold p.mu.
func selfReachable(p *Pool, id string) bool {
	t := p.tasks[id]
	for _, depID := range t.BlockedBy {
		if p.reaches(depID, id) {
			return true
		}
	}
	return false
}

func isExpectedEdgeError(err error) bool {
	return stderrors.Is(err, pkgerrors.ErrSelfDependency) ||
		stderrors.Is(err, pkgerrors.ErrDependencyCycle)
}
