package router

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinincorp/taskpool/internal/constants"
	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
	"github.com/zinincorp/taskpool/internal/registry"
)

// stubRegistry returns a fixed roster in the order given.
type stubRegistry struct {
	workers []*domain.Worker
}

func (s *stubRegistry) Workers() []*domain.Worker { return s.workers }

func newTestRouter(t *testing.T, reg Registry, threshold float64) *Router {
	t.Helper()
	r, err := New(reg, threshold, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects thresholds outside the unit interval", func(t *testing.T) {
		for _, bad := range []float64{-0.1, 1.1, 2} {
			_, err := New(&stubRegistry{}, bad, zerolog.Nop())
			require.ErrorIs(t, err, pkgerrors.ErrInvalidThreshold, "threshold %v", bad)
		}
	})

	t.Run("accepts the boundaries", func(t *testing.T) {
		for _, ok := range []float64{0, 1, constants.DefaultEscalationThreshold} {
			_, err := New(&stubRegistry{}, ok, zerolog.Nop())
			require.NoError(t, err)
		}
	})
}

func TestRouter_Rank(t *testing.T) {
	t.Parallel()

	t.Run("full overlap scores 1.0", func(t *testing.T) {
		reg := registry.New(zerolog.Nop())
		r := newTestRouter(t, reg, constants.DefaultEscalationThreshold)

		ranked := r.Rank([]string{"finance", "budget", "crypto"})
		require.NotEmpty(t, ranked)
		assert.Equal(t, "accountant", ranked[0].Worker)
		assert.InDelta(t, 1.0, ranked[0].Confidence, 1e-9)
	})

	t.Run("partial overlap is proportional", func(t *testing.T) {
		reg := &stubRegistry{workers: []*domain.Worker{
			{Key: "a", Rank: 1, Tags: []string{"x", "y"}},
		}}
		r := newTestRouter(t, reg, 0)

		ranked := r.Rank([]string{"x", "y", "z", "w"})
		require.Len(t, ranked, 1)
		assert.InDelta(t, 0.5, ranked[0].Confidence, 1e-9)
	})

	t.Run("zero-overlap workers are omitted", func(t *testing.T) {
		reg := registry.New(zerolog.Nop())
		r := newTestRouter(t, reg, constants.DefaultEscalationThreshold)

		ranked := r.Rank([]string{"finance"})
		for _, s := range ranked {
			assert.Positive(t, s.Confidence)
		}
	})

	t.Run("no tags ranks nothing", func(t *testing.T) {
		reg := registry.New(zerolog.Nop())
		r := newTestRouter(t, reg, constants.DefaultEscalationThreshold)
		assert.Nil(t, r.Rank(nil))
	})

	t.Run("equal confidence breaks ties by registry order", func(t *testing.T) {
		reg := &stubRegistry{workers: []*domain.Worker{
			{Key: "senior", Rank: 1, Tags: []string{"x"}},
			{Key: "junior", Rank: 2, Tags: []string{"x"}},
		}}
		r := newTestRouter(t, reg, 0)

		ranked := r.Rank([]string{"x"})
		require.Len(t, ranked, 2)
		assert.Equal(t, "senior", ranked[0].Worker)
		assert.Equal(t, "junior", ranked[1].Worker)
	})

	t.Run("duplicate tags do not inflate confidence", func(t *testing.T) {
		reg := &stubRegistry{workers: []*domain.Worker{
			{Key: "a", Rank: 1, Tags: []string{"x"}},
		}}
		r := newTestRouter(t, reg, 0)

		ranked := r.Rank([]string{"x", "x"})
		require.Len(t, ranked, 1)
		assert.InDelta(t, 1.0, ranked[0].Confidence, 1e-9)
	})
}

func TestRouter_SuggestAssignee(t *testing.T) {
	t.Parallel()

	task := func(tags ...string) *domain.Task {
		return &domain.Task{ID: "t1", Title: "t", Tags: tags}
	}

	t.Run("returns the best match", func(t *testing.T) {
		reg := registry.New(zerolog.Nop())
		r := newTestRouter(t, reg, constants.DefaultEscalationThreshold)

		s, err := r.SuggestAssignee(task("content", "linkedin"))
		require.NoError(t, err)
		assert.Equal(t, "smm", s.Worker)
		assert.InDelta(t, 1.0, s.Confidence, 1e-9)
	})

	t.Run("confidence exactly at the threshold matches", func(t *testing.T) {
		reg := &stubRegistry{workers: []*domain.Worker{
			{Key: "a", Rank: 1, Tags: []string{"t1", "t2", "t3"}},
		}}
		r := newTestRouter(t, reg, 0.3)

		// 3 of 10 tags overlap: confidence 0.3, not strictly below.
		tags := []string{"t1", "t2", "t3"}
		for i := 4; i <= 10; i++ {
			tags = append(tags, fmt.Sprintf("t%d", i))
		}
		s, err := r.SuggestAssignee(task(tags...))
		require.NoError(t, err)
		assert.InDelta(t, 0.3, s.Confidence, 1e-9)
	})

	t.Run("confidence below the threshold escalates", func(t *testing.T) {
		reg := &stubRegistry{workers: []*domain.Worker{
			{Key: "a", Rank: 1, Tags: []string{"t1"}},
		}}
		r := newTestRouter(t, reg, 0.3)

		_, err := r.SuggestAssignee(task("t1", "t2", "t3", "t4", "t5"))
		require.ErrorIs(t, err, pkgerrors.ErrNoMatch)
	})

	t.Run("no tags escalates", func(t *testing.T) {
		reg := registry.New(zerolog.Nop())
		r := newTestRouter(t, reg, constants.DefaultEscalationThreshold)

		_, err := r.SuggestAssignee(task())
		require.ErrorIs(t, err, pkgerrors.ErrNoMatch)
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		reg := registry.New(zerolog.Nop())
		r := newTestRouter(t, reg, constants.DefaultEscalationThreshold)

		first, err := r.SuggestAssignee(task("finance", "report"))
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, suggestErr := r.SuggestAssignee(task("finance", "report"))
			require.NoError(t, suggestErr)
			assert.Equal(t, first, again)
		}
	})
}
