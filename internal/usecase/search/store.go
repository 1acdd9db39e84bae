package search

import (
	"slices"

	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/stream"
)

// Store folds stream events into the observable state of one search.
// It is not safe for concurrent use; a single reader owns it.
type Store struct {
	total   int64
	current int64
	percent int
	logs    []string
	outcome *outcome.Outcome
}

// State is a point-in-time copy of a Store.
type State struct {
	Total    int64            `json:"total"`
	Current  int64            `json:"current"`
	Progress int              `json:"progress"`
	Logs     []string         `json:"logs"`
	Outcome  *outcome.Outcome `json:"outcome,omitempty"`
	Done     bool             `json:"done"`
}

// NewStore creates an empty Store.
func NewStore() *Store { return &Store{} }

// Reset clears all state before a new search.
func (s *Store) Reset() { *s = Store{} }

// Apply folds one event into the state.
func (s *Store) Apply(ev stream.Event) {
	switch e := ev.(type) {
	case stream.Start:
		s.total = e.Total
	case stream.Progress:
		// The engine's reports are taken as they come, even if they go backwards.
		s.percent = e.Percent
		s.current = e.Current
	case stream.Log:
		s.logs = append(s.logs, e.Message)
	case stream.Result:
		s.outcome = e.Outcome
	}
}

// Progress returns the last reported percentage.
func (s *Store) Progress() int { return s.percent }

// Total returns the announced size of the search space.
func (s *Store) Total() int64 { return s.total }

// Current returns the last reported iteration counter.
func (s *Store) Current() int64 { return s.current }

// Logs returns a copy of the log lines in arrival order.
func (s *Store) Logs() []string { return slices.Clone(s.logs) }

// Outcome returns the received result, or nil before it arrives.
func (s *Store) Outcome() *outcome.Outcome { return s.outcome }

// Done reports whether a result has been received.
func (s *Store) Done() bool { return s.outcome != nil }

// Snapshot copies the current state. The outcome is shared: it is replaced,
// never mutated, once applied.
func (s *Store) Snapshot() State {
	return State{
		Total:    s.total,
		Current:  s.current,
		Progress: s.percent,
		Logs:     s.Logs(),
		Outcome:  s.outcome,
		Done:     s.Done(),
	}
}
