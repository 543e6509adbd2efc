//go:build unix

package flock_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinincorp/taskpool/internal/flock"
)

func openLockFile(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // Test path under t.TempDir
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExclusive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pool.lock")
	f := openLockFile(t, path)

	require.NoError(t, flock.Exclusive(f.Fd()))
	require.NoError(t, flock.Unlock(f.Fd()))
}

func TestTryExclusive(t *testing.T) {
	t.Parallel()

	t.Run("acquires a free lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pool.lock")
		f := openLockFile(t, path)

		require.NoError(t, flock.TryExclusive(f.Fd()))
		require.NoError(t, flock.Unlock(f.Fd()))
	})

	t.Run("fails while another descriptor holds the lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pool.lock")
		holder := openLockFile(t, path)
		require.NoError(t, flock.Exclusive(holder.Fd()))

		contender := openLockFile(t, path)
		assert.Error(t, flock.TryExclusive(contender.Fd()))

		// Released lock is acquirable again.
		require.NoError(t, flock.Unlock(holder.Fd()))
		assert.NoError(t, flock.TryExclusive(contender.Fd()))
		require.NoError(t, flock.Unlock(contender.Fd()))
	})

	t.Run("same descriptor can relock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pool.lock")
		f := openLockFile(t, path)

		require.NoError(t, flock.TryExclusive(f.Fd()))
		// flock on the same descriptor converts, it does not deadlock.
		require.NoError(t, flock.TryExclusive(f.Fd()))
		require.NoError(t, flock.Unlock(f.Fd()))
	})
}
