// Package registry provides the competency registry for the task pool.
//
// The registry maps worker identities to the sets of competency tags they can
// handle, plus the keyword vocabulary used to derive tags from free text.
// Both are data, not code: the registry persists to a single YAML file so
// escalation decisions (extending a worker's competencies, introducing a new
// worker) are durable and benefit future routing.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/zinincorp/taskpool/internal/domain"
	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

const (
	filePerm = 0o600
	dirPerm  = 0o750
)

// fileSchema is the on-disk YAML layout of the registry.
type fileSchema struct {
	Workers    []*domain.Worker    `yaml:"workers"`
	Vocabulary map[string][]string `yaml:"vocabulary"`
}

// Registry holds the worker competency sets and the tag vocabulary.
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	path    string // empty means in-memory only (tests)
	workers map[string]*domain.Worker
	vocab   map[string][]string // tag -> keywords that imply it
	logger  zerolog.Logger
}

// New creates an in-memory registry seeded with the default worker set.
// Use Load for a registry backed by a YAML file.
func New(logger zerolog.Logger) *Registry {
	r := &Registry{
		workers: make(map[string]*domain.Worker),
		vocab:   make(map[string][]string),
		logger:  logger.With().Str("component", "registry").Logger(),
	}
	r.seedDefaults()
	return r
}

// Load opens the registry file at path, creating it with the default worker
// set if it does not exist yet.
func Load(path string, logger zerolog.Logger) (*Registry, error) {
	r := New(logger)
	r.path = path

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from configuration
	if os.IsNotExist(err) {
		// First run: persist the defaults so later edits survive restarts.
		if saveErr := r.save(); saveErr != nil {
			return nil, pkgerrors.Wrap(saveErr, "failed to seed registry file")
		}
		return r, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read registry file")
	}

	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse registry file")
	}

	r.workers = make(map[string]*domain.Worker, len(file.Workers))
	for _, w := range file.Workers {
		if w.Key == "" {
			return nil, fmt.Errorf("registry file: worker key %w", pkgerrors.ErrEmptyValue)
		}
		r.workers[w.Key] = w
	}
	if len(file.Vocabulary) > 0 {
		r.vocab = file.Vocabulary
	}
	return r, nil
}

// Get returns a copy of the worker with the given key.
func (r *Registry) Get(key string) (*domain.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workers[key]
	if !ok {
		return nil, fmt.Errorf("worker '%s': %w", key, pkgerrors.ErrWorkerNotFound)
	}
	return w.Clone(), nil
}

// Workers returns copies of all registered workers in deterministic routing
// order: ascending rank, then lexical key.
func (r *Registry) Workers() []*domain.Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Worker, 0, len(r.workers))
	for _, w := range r.workers {
		out = append(out, w.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Register adds a new worker. Returns ErrWorkerExists if the key is taken.
// The change is persisted before the method returns.
func (r *Registry) Register(w *domain.Worker) error {
	if w == nil || w.Key == "" {
		return fmt.Errorf("worker key %w", pkgerrors.ErrEmptyValue)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workers[w.Key]; ok {
		return fmt.Errorf("worker '%s': %w", w.Key, pkgerrors.ErrWorkerExists)
	}
	r.workers[w.Key] = w.Clone()

	// New competencies enter the vocabulary so the extractor can find them.
	for _, tag := range w.Tags {
		if _, ok := r.vocab[tag]; !ok {
			r.vocab[tag] = []string{tag}
		}
	}

	if err := r.save(); err != nil {
		delete(r.workers, w.Key)
		return err
	}
	r.logger.Info().Str("worker", w.Key).Strs("tags", w.Tags).Msg("worker registered")
	return nil
}

// Extend durably adds tags to an existing worker's competency set.
// Already-present tags are ignored.
func (r *Registry) Extend(key string, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[key]
	if !ok {
		return fmt.Errorf("worker '%s': %w", key, pkgerrors.ErrWorkerNotFound)
	}

	before := len(w.Tags)
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if !w.HasTag(tag) {
			w.Tags = append(w.Tags, tag)
		}
		if _, known := r.vocab[tag]; !known {
			r.vocab[tag] = []string{tag}
		}
	}
	if len(w.Tags) == before {
		return nil
	}
	sort.Strings(w.Tags)

	if err := r.save(); err != nil {
		return err
	}
	r.logger.Info().Str("worker", key).Strs("tags", tags).Msg("worker competencies extended")
	return nil
}

// Vocabulary returns a copy of the tag vocabulary: tag -> keywords whose
// presence in task text implies the tag.
func (r *Registry) Vocabulary() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.vocab))
	for tag, words := range r.vocab {
		cp := make([]string, len(words))
		copy(cp, words)
		out[tag] = cp
	}
	return out
}

// KnownTag reports whether tag is in the registry vocabulary.
func (r *Registry) KnownTag(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.vocab[tag]
	return ok
}

// save persists the registry to its YAML file. Callers must hold r.mu.
// A registry without a path (tests) skips persistence.
func (r *Registry) save() error {
	if r.path == "" {
		return nil
	}

	workers := make([]*domain.Worker, 0, len(r.workers))
	for _, w := range r.workers {
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].Key < workers[j].Key })

	data, err := yaml.Marshal(fileSchema{Workers: workers, Vocabulary: r.vocab})
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode registry")
	}

	if err := os.MkdirAll(filepath.Dir(r.path), dirPerm); err != nil {
		return pkgerrors.Wrap(err, "failed to create registry directory")
	}
	if err := os.WriteFile(r.path, data, filePerm); err != nil {
		return pkgerrors.Wrap(err, "failed to write registry file")
	}
	return nil
}
