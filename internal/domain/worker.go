package domain

import "slices"

// Worker is a specialized executor identity with a competency tag set.
// Workers are registered in the competency registry; the router scores tasks
// against their tag sets.
type Worker struct {
	// Key is the unique worker identity (e.g. "accountant", "automator").
	Key string `json:"key" yaml:"key"`

	// Name is an optional display name for reports.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Tags is the competency tag set this worker can handle.
	Tags []string `json:"tags" yaml:"tags"`

	// Rank is the fixed tie-break priority among equally scored workers.
	// Lower rank wins; rank collisions fall back to lexical key order.
	Rank int `json:"rank" yaml:"rank"`

	// CreatedByEscalation marks workers introduced through the escalation
	// path rather than the initial registry file.
	CreatedByEscalation bool `json:"created_by_escalation,omitempty" yaml:"created_by_escalation,omitempty"`
}

// HasTag reports whether the worker's competency set contains tag.
func (w *Worker) HasTag(tag string) bool {
	return slices.Contains(w.Tags, tag)
}

// Clone returns a deep copy of the worker.
func (w *Worker) Clone() *Worker {
	c := *w
	c.Tags = slices.Clone(w.Tags)
	return &c
}

// Suggestion is a routing result for one worker.
type Suggestion struct {
	// Worker is the suggested worker key.
	Worker string `json:"worker"`

	// Confidence is the competency overlap normalized into [0,1].
	Confidence float64 `json:"confidence"`
}
