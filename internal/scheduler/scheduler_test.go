package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
	"github.com/zinincorp/taskpool/internal/testutil"
)

func TestNew(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }

	t.Run("accepts valid jobs", func(t *testing.T) {
		_, err := New(zerolog.Nop(),
			Job{Name: "a", Interval: time.Second, Run: noop},
			Job{Name: "b", Interval: time.Minute, Run: noop},
		)
		require.NoError(t, err)
	})

	t.Run("rejects a non-positive interval", func(t *testing.T) {
		_, err := New(zerolog.Nop(), Job{Name: "a", Interval: 0, Run: noop})
		require.ErrorIs(t, err, pkgerrors.ErrInvalidDuration)
	})

	t.Run("rejects a nil run func", func(t *testing.T) {
		_, err := New(zerolog.Nop(), Job{Name: "a", Interval: time.Second})
		require.ErrorIs(t, err, pkgerrors.ErrEmptyValue)
	})
}

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	t.Run("ticks jobs until canceled", func(t *testing.T) {
		var ticks atomic.Int64
		s, err := New(zerolog.Nop(), Job{
			Name:     "counter",
			Interval: 5 * time.Millisecond,
			Run: func(context.Context) error {
				ticks.Add(1)
				return nil
			},
		})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err = s.Run(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Positive(t, ticks.Load())
	})

	t.Run("a failing job keeps ticking", func(t *testing.T) {
		var ticks atomic.Int64
		s, err := New(zerolog.Nop(), Job{
			Name:     "flaky",
			Interval: 5 * time.Millisecond,
			Run: func(context.Context) error {
				ticks.Add(1)
				return testutil.ErrMockJob
			},
		})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err = s.Run(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Greater(t, ticks.Load(), int64(1))
	})

	t.Run("independent timers", func(t *testing.T) {
		var fast, slow atomic.Int64
		s, err := New(zerolog.Nop(),
			Job{Name: "fast", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
				fast.Add(1)
				return nil
			}},
			Job{Name: "slow", Interval: 40 * time.Millisecond, Run: func(context.Context) error {
				slow.Add(1)
				return nil
			}},
		)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
		defer cancel()

		err = s.Run(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Greater(t, fast.Load(), slow.Load())
	})

	t.Run("no jobs returns on cancel", func(t *testing.T) {
		s, err := New(zerolog.Nop())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, s.Run(ctx))
	})
}
