package pool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
	"github.com/zinincorp/taskpool/internal/flock"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// poolSnapshot pairs the pool contents with the mutation sequence that
// produced them, so persist can tell an older snapshot from a newer one.
type poolSnapshot struct {
	seq   uint64
	tasks []*domain.Task
}

// snapshot returns the full pool contents in creation order, stamped with
// the next mutation sequence. Callers must hold p.mu for writing.
func (p *Pool) snapshot() poolSnapshot {
	p.seq++
	out := make([]*domain.Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		out = append(out, t.Clone())
	}
	sortByCreation(out)
	return poolSnapshot{seq: p.seq, tasks: out}
}

// persist writes a snapshot to the pool file. It runs outside the store lock:
// mutations commit in memory first and the snapshot is flushed afterwards,
// serialized by persistMu so concurrent mutations cannot interleave writes.
// A write failure is logged, not fatal; the next mutation rewrites the full
// state.
func (p *Pool) persist(snap poolSnapshot) {
	if p.path == "" {
		return
	}

	p.persistMu.Lock()
	defer p.persistMu.Unlock()

	// Two mutations can race between releasing p.mu and acquiring persistMu.
	// A snapshot that lost that race must not overwrite the newer state that
	// already reached disk.
	if snap.seq <= p.persistedSeq {
		return
	}

	data, err := json.MarshalIndent(snap.tasks, "", "  ")
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode pool snapshot")
		return
	}

	// Advisory lock serializes rewrites across CLI processes; persistMu only
	// covers this one.
	release, err := lockPoolFile(p.path)
	if err != nil {
		p.logger.Error().Err(err).Str("path", p.path).Msg("failed to lock pool file")
		return
	}
	defer release()

	if err := atomicWrite(p.path, data); err != nil {
		p.logger.Error().Err(err).Str("path", p.path).Msg("failed to write pool file")
		return
	}
	p.persistedSeq = snap.seq
}

// lockPoolFile takes the cross-process advisory lock for the pool at path,
// blocking until it is available. The returned func releases it.
func lockPoolFile(path string) (func(), error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create data directory")
	}
	f, err := os.OpenFile(path+".lock", os.O_RDWR|os.O_CREATE, filePerm) //nolint:gosec // Path comes from configuration
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to open pool lock file")
	}
	if err := flock.Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, pkgerrors.Wrap(err, "failed to lock pool file")
	}
	return func() {
		_ = flock.Unlock(f.Fd())
		_ = f.Close()
	}, nil
}

// load reads the pool file into memory. A missing file is an empty pool;
// a file that cannot be decoded is surfaced as ErrPoolCorrupted rather than
// silently dropped.
func (p *Pool) load() error {
	if p.path == "" {
		return nil
	}

	release, err := lockPoolFile(p.path)
	if err != nil {
		return err
	}
	defer release()

	data, err := os.ReadFile(p.path) //nolint:gosec // Path comes from configuration
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read pool file")
	}

	var tasks []*domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return fmt.Errorf("failed to decode %s: %w", p.path, pkgerrors.ErrPoolCorrupted)
	}
	for _, t := range tasks {
		if t.ID == "" {
			return fmt.Errorf("task with empty id in %s: %w", p.path, pkgerrors.ErrPoolCorrupted)
		}
		p.tasks[t.ID] = t
	}
	return nil
}

// atomicWrite writes data to path via a temp file and rename, so readers
// never observe a partially written pool.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return pkgerrors.Wrap(err, "failed to create data directory")
	}

	tmp, err := os.CreateTemp(dir, ".pool-*.tmp")
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return pkgerrors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return pkgerrors.Wrap(err, "failed to close temp file")
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return pkgerrors.Wrap(err, "failed to set file permissions")
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return pkgerrors.Wrap(err, "failed to replace pool file")
	}
	return nil
}
