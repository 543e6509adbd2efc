// Package archive moves terminal tasks into dated cold storage.
//
// Cold storage is one JSON file per calendar day of archival; a file for a
// past day is append-only once written. Records are immutable snapshots of
// the archived task plus the archival timestamp.
//
// Archival is move-then-confirm: the snapshot is written to cold storage
// first and the task is removed from the live pool only after the write
// succeeds. A persistence failure leaves the task live and is retried on the
// next scheduled run, so tasks are never silently lost.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zinincorp/taskpool/internal/clock"
	"github.com/zinincorp/taskpool/internal/constants"
	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
	"github.com/zinincorp/taskpool/internal/pool"
)

const (
	filePerm = 0o600
	dirPerm  = 0o750
)

// Archiver owns the cold-storage directory and the archival pass.
type Archiver struct {
	pool   *pool.Pool
	dir    string
	mu     sync.Mutex // serializes partition file writes
	clk    clock.Clock
	logger zerolog.Logger
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithClock substitutes the time source, for tests.
func WithClock(c clock.Clock) Option {
	return func(a *Archiver) { a.clk = c }
}

// New creates an Archiver writing daily partitions under dir.
func New(p *pool.Pool, dir string, logger zerolog.Logger, opts ...Option) *Archiver {
	a := &Archiver{
		pool:   p,
		dir:    dir,
		clk:    clock.RealClock{},
		logger: logger.With().Str("component", "archiver").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ArchiveDone moves closed tasks whose last update is older than retention
// out of the live pool into today's partition. Running it twice in the same
// period is a no-op the second time: already-archived tasks are gone from
// the live pool and naturally skipped. Non-terminal tasks are never
// archived, regardless of age. Returns the number of tasks archived.
func (a *Archiver) ArchiveDone(retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention %s: %w", retention, pkgerrors.ErrInvalidDuration)
	}

	now := a.clk.Now().UTC()
	cutoff := now.Add(-retention)
	candidates := a.pool.ArchivableTasks(cutoff)
	if len(candidates) == 0 {
		return 0, nil
	}

	records := make([]domain.ArchiveRecord, 0, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, t := range candidates {
		records = append(records, domain.ArchiveRecord{Task: *t, ArchivedAt: now})
		ids = append(ids, t.ID)
	}

	// Partition key is the day of archival, not completion.
	date := now.Format(constants.ArchiveDateLayout)
	if err := a.appendRecords(date, records); err != nil {
		// Nothing was removed from the live pool; the next run retries.
		return 0, pkgerrors.Wrap(err, "failed to write archive partition")
	}

	removed := a.pool.RemoveArchived(ids)
	a.logger.Info().
		Int("archived", removed).
		Str("date", date).
		Msg("done tasks archived")
	return removed, nil
}

// Records returns the archive records for a calendar day (YYYY-MM-DD).
func (a *Archiver) Records(date string) ([]domain.ArchiveRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.readPartition(date)
	if err != nil {
		return nil, err
	}
	if records == nil {
		return nil, fmt.Errorf("date '%s': %w", date, pkgerrors.ErrArchiveNotFound)
	}
	return records, nil
}

// Stats summarizes cold storage: partition count, total records, dates.
func (a *Archiver) Stats() (domain.ArchiveStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := domain.ArchiveStats{}
	entries, err := os.ReadDir(a.dir)
	if os.IsNotExist(err) {
		return stats, nil
	}
	if err != nil {
		return stats, pkgerrors.Wrap(err, "failed to read archive directory")
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(name, ".json")
		if _, err := time.Parse(constants.ArchiveDateLayout, date); err != nil {
			continue
		}
		records, err := a.readPartition(date)
		if err != nil {
			return stats, err
		}
		stats.Files++
		stats.TotalTasks += len(records)
		stats.Dates = append(stats.Dates, date)
	}
	sort.Strings(stats.Dates)
	return stats, nil
}

// appendRecords merges new records into the partition for date.
func (a *Archiver) appendRecords(date string, records []domain.ArchiveRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, err := a.readPartition(date)
	if err != nil {
		return err
	}
	existing = append(existing, records...)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode archive records")
	}
	if err := os.MkdirAll(a.dir, dirPerm); err != nil {
		return pkgerrors.Wrap(err, "failed to create archive directory")
	}

	path := a.partitionPath(date)
	tmp, err := os.CreateTemp(a.dir, ".archive-*.tmp")
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
		return pkgerrors.Wrap(err, "failed to replace archive partition")
	}
	return nil
}

// readPartition loads one daily partition. A missing file returns nil, nil.
// Callers must hold a.mu.
func (a *Archiver) readPartition(date string) ([]domain.ArchiveRecord, error) {
	data, err := os.ReadFile(a.partitionPath(date)) //nolint:gosec // Path is built from a validated date
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read archive partition")
	}
	var records []domain.ArchiveRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode archive partition %s", date)
	}
	return records, nil
}

func (a *Archiver) partitionPath(date string) string {
	return filepath.Join(a.dir, date+".json")
}
