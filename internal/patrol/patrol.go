// Package patrol detects stale tasks in the live pool.
//
// A stale task is live (TODO, ASSIGNED or IN_PROGRESS) and has not changed
// state within the configured time budget. BLOCKED tasks are never reported:
// their inactivity is expected, not anomalous. DONE tasks are finished. The
// patrol only reads; it never mutates any task.
package patrol

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zinincorp/taskpool/internal/clock"
	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
	"github.com/zinincorp/taskpool/internal/pool"
)

// unassignedGroup labels tasks without an assignee in the report.
const unassignedGroup = "(unassigned)"

// Patrol scans the pool for tasks without progress.
type Patrol struct {
	pool   *pool.Pool
	clk    clock.Clock
	logger zerolog.Logger
}

// Option configures a Patrol.
type Option func(*Patrol)

// WithClock substitutes the time source, for tests.
func WithClock(c clock.Clock) Option {
	return func(p *Patrol) { p.clk = c }
}

// New creates a Patrol over the given pool.
func New(p *pool.Pool, logger zerolog.Logger, opts ...Option) *Patrol {
	pt := &Patrol{
		pool:   p,
		clk:    clock.RealClock{},
		logger: logger.With().Str("component", "patrol").Logger(),
	}
	for _, opt := range opts {
		opt(pt)
	}
	return pt
}

// StaleTasks returns live tasks whose last update exceeds the budget,
// most urgent first.
func (p *Patrol) StaleTasks(budget time.Duration) ([]*domain.Task, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("staleness budget %s: %w", budget, pkgerrors.ErrInvalidDuration)
	}
	cutoff := p.clk.Now().UTC().Add(-budget)
	stale := p.pool.StaleTasks(cutoff)
	if len(stale) > 0 {
		p.logger.Info().Int("count", len(stale)).Msg("stale tasks detected")
	}
	return stale, nil
}

// Report formats the stale tasks as a human-readable report grouped by
// assignee. The report does not mutate anything; it is a string for any
// transport to deliver.
func (p *Patrol) Report(budget time.Duration) (string, error) {
	stale, err := p.StaleTasks(budget)
	if err != nil {
		return "", err
	}
	return FormatReport(stale, p.clk.Now().UTC()), nil
}

// FormatReport renders stale tasks grouped by assignee. An empty input
// produces an all-clear line.
func FormatReport(tasks []*domain.Task, now time.Time) string {
	if len(tasks) == 0 {
		return "Stale task patrol: all tasks are moving, nothing to report."
	}

	groups := make(map[string][]*domain.Task)
	for _, t := range tasks {
		key := t.Assignee
		if key == "" {
			key = unassignedGroup
		}
		groups[key] = append(groups[key], t)
	}

	assignees := make([]string, 0, len(groups))
	for key := range groups {
		assignees = append(assignees, key)
	}
	sort.Strings(assignees)

	var b strings.Builder
	fmt.Fprintf(&b, "Stale task patrol: %d task(s) without progress\n", len(tasks))
	for _, assignee := range assignees {
		fmt.Fprintf(&b, "\n%s:\n", assignee)
		for _, t := range groups[assignee] {
			age := now.Sub(t.UpdatedAt).Round(time.Hour)
			fmt.Fprintf(&b, "  - %s %q [%s] idle %s\n", t.ID, truncate(t.Title, 50), t.Status, age)
		}
	}
	return b.String()
}

// truncate shortens s to at most n codepoints, ending with an ellipsis.
// Slicing runes keeps multibyte titles valid UTF-8.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
