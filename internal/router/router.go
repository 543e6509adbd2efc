// Package router suggests which worker should handle a task.
//
// Scoring is a pure competency overlap: for each registered worker,
// confidence = |task tags ∩ worker tags| / |task tags|, normalized into
// [0,1]. A task with no tags scores 0 for every worker. Ties break by the
// registry's fixed worker ordering (ascending rank, then lexical key), so
// routing is fully deterministic: identical tags against an unchanged
// registry always return the same worker and confidence.
package router

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

// Registry is the subset of the competency registry the router needs.
type Registry interface {
	// Workers returns all workers in deterministic routing order.
	Workers() []*domain.Worker
}

// Router scores tasks against worker competency sets.
type Router struct {
	registry  Registry
	threshold float64 // escalation threshold: below this, no confident match
	logger    zerolog.Logger
}

// New creates a Router. The threshold must be in [0,1]; confidence strictly
// below it yields ErrNoMatch instead of a forced suggestion.
func New(reg Registry, threshold float64, logger zerolog.Logger) (*Router, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("escalation threshold %.2f: %w", threshold, pkgerrors.ErrInvalidThreshold)
	}
	return &Router{
		registry:  reg,
		threshold: threshold,
		logger:    logger.With().Str("component", "router").Logger(),
	}, nil
}

// Threshold returns the configured escalation threshold.
func (r *Router) Threshold() float64 {
	return r.threshold
}

// Rank scores every registered worker against the tag set and returns all
// non-zero suggestions, best first. The order is deterministic: descending
// confidence, ties resolved by registry order.
func (r *Router) Rank(tags []string) []domain.Suggestion {
	if len(tags) == 0 {
		return nil
	}

	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}

	var out []domain.Suggestion
	// Workers arrive in registry order; insertion keeps that order among
	// equal confidences, which is the documented tie-break.
	for _, w := range r.registry.Workers() {
		overlap := 0
		for _, t := range w.Tags {
			if _, ok := tagSet[t]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		s := domain.Suggestion{
			Worker:     w.Key,
			Confidence: float64(overlap) / float64(len(tagSet)),
		}
		pos := len(out)
		for pos > 0 && out[pos-1].Confidence < s.Confidence {
			pos--
		}
		out = append(out, domain.Suggestion{})
		copy(out[pos+1:], out[pos:])
		out[pos] = s
	}
	return out
}

// SuggestAssignee returns the best worker for the task's tags. When the best
// confidence is below the escalation threshold it returns ErrNoMatch: the
// caller must hand the task to the escalation manager instead of forcing a
// bad assignment.
func (r *Router) SuggestAssignee(task *domain.Task) (domain.Suggestion, error) {
	ranked := r.Rank(task.Tags)
	if len(ranked) == 0 || ranked[0].Confidence < r.threshold {
		r.logger.Debug().
			Str("task", task.ID).
			Strs("tags", task.Tags).
			Msg("no confident worker match")
		return domain.Suggestion{}, fmt.Errorf("task '%s': %w", task.ID, pkgerrors.ErrNoMatch)
	}

	best := ranked[0]
	r.logger.Debug().
		Str("task", task.ID).
		Str("worker", best.Worker).
		Float64("confidence", best.Confidence).
		Msg("assignee suggested")
	return best, nil
}
