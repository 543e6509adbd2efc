package patrol

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinincorp/taskpool/internal/clock"
	"github.com/zinincorp/taskpool/internal/constants"
	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
	"github.com/zinincorp/taskpool/internal/pool"
)

func newTestPatrol(t *testing.T) (*Patrol, *pool.Pool, *clock.Fixed) {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	p, err := pool.New("", pool.WithClock(clk))
	require.NoError(t, err)
	return New(p, zerolog.Nop(), WithClock(clk)), p, clk
}

func TestPatrol_StaleTasks(t *testing.T) {
	t.Parallel()

	t.Run("reports live tasks past the budget", func(t *testing.T) {
		pt, p, clk := newTestPatrol(t)
		idle, err := p.Create(pool.CreateRequest{Title: "idle"})
		require.NoError(t, err)
		clk.Advance(73 * time.Hour)
		fresh, err := p.Create(pool.CreateRequest{Title: "fresh"})
		require.NoError(t, err)

		stale, err := pt.StaleTasks(72 * time.Hour)
		require.NoError(t, err)
		require.Len(t, stale, 1)
		assert.Equal(t, idle.ID, stale[0].ID)
		assert.NotEqual(t, fresh.ID, stale[0].ID)
	})

	t.Run("any progress resets the clock", func(t *testing.T) {
		pt, p, clk := newTestPatrol(t)
		task, err := p.Create(pool.CreateRequest{Title: "slow burn"})
		require.NoError(t, err)
		clk.Advance(71 * time.Hour)
		_, err = p.Assign(task.ID, "accountant", "tester", 1)
		require.NoError(t, err)
		clk.Advance(2 * time.Hour)

		stale, err := pt.StaleTasks(72 * time.Hour)
		require.NoError(t, err)
		assert.Empty(t, stale)
	})

	t.Run("never reports BLOCKED or DONE tasks", func(t *testing.T) {
		pt, p, clk := newTestPatrol(t)
		blocked, err := p.Create(pool.CreateRequest{Title: "held"})
		require.NoError(t, err)
		_, err = p.Block(blocked.ID, "waiting on legal")
		require.NoError(t, err)

		done, err := p.Create(pool.CreateRequest{Title: "finished"})
		require.NoError(t, err)
		_, err = p.Assign(done.ID, "accountant", "tester", 1)
		require.NoError(t, err)
		_, err = p.Complete(done.ID, "")
		require.NoError(t, err)

		clk.Advance(100 * time.Hour)
		stale, err := pt.StaleTasks(72 * time.Hour)
		require.NoError(t, err)
		assert.Empty(t, stale)
	})

	t.Run("most urgent first", func(t *testing.T) {
		pt, p, clk := newTestPatrol(t)
		low, err := p.Create(pool.CreateRequest{Title: "low", Priority: constants.PriorityLow})
		require.NoError(t, err)
		critical, err := p.Create(pool.CreateRequest{Title: "critical", Priority: constants.PriorityCritical})
		require.NoError(t, err)
		clk.Advance(73 * time.Hour)

		stale, err := pt.StaleTasks(72 * time.Hour)
		require.NoError(t, err)
		require.Len(t, stale, 2)
		assert.Equal(t, critical.ID, stale[0].ID)
		assert.Equal(t, low.ID, stale[1].ID)
	})

	t.Run("invalid budget", func(t *testing.T) {
		pt, _, _ := newTestPatrol(t)
		_, err := pt.StaleTasks(0)
		require.ErrorIs(t, err, pkgerrors.ErrInvalidDuration)
	})
}

func TestPatrol_Report(t *testing.T) {
	t.Parallel()

	t.Run("groups by assignee", func(t *testing.T) {
		pt, p, clk := newTestPatrol(t)
		stuck, err := p.Create(pool.CreateRequest{Title: "stuck reconciliation"})
		require.NoError(t, err)
		_, err = p.Assign(stuck.ID, "accountant", "tester", 1)
		require.NoError(t, err)
		_, err = p.Create(pool.CreateRequest{Title: "never picked up"})
		require.NoError(t, err)
		clk.Advance(80 * time.Hour)

		report, err := pt.Report(72 * time.Hour)
		require.NoError(t, err)
		assert.Contains(t, report, "2 task(s) without progress")
		assert.Contains(t, report, "accountant:")
		assert.Contains(t, report, "(unassigned):")
		assert.Contains(t, report, "stuck reconciliation")
		assert.Contains(t, report, "idle 80h")
	})

	t.Run("all clear when nothing is stale", func(t *testing.T) {
		pt, _, _ := newTestPatrol(t)
		report, err := pt.Report(72 * time.Hour)
		require.NoError(t, err)
		assert.Contains(t, report, "all tasks are moving")
	})
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	t.Run("long titles are truncated", func(t *testing.T) {
		title := strings.Repeat("x", 80)
		report := FormatReport([]*domain.Task{{
			ID:        "abc12345",
			Title:     title,
			Status:    constants.TaskStatusTodo,
			UpdatedAt: now.Add(-75 * time.Hour),
		}}, now)
		assert.NotContains(t, report, title)
		assert.Contains(t, report, "…")
	})

	t.Run("multibyte titles stay valid UTF-8 when truncated", func(t *testing.T) {
		title := strings.Repeat("é", 60)
		report := FormatReport([]*domain.Task{{
			ID:        "abc12345",
			Title:     title,
			Status:    constants.TaskStatusTodo,
			UpdatedAt: now.Add(-75 * time.Hour),
		}}, now)
		assert.True(t, utf8.ValidString(report))
		assert.Contains(t, report, strings.Repeat("é", 49)+"…")
		assert.NotContains(t, report, title)
	})

	t.Run("empty input", func(t *testing.T) {
		report := FormatReport(nil, now)
		assert.Contains(t, report, "nothing to report")
	})
}
