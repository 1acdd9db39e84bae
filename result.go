package concord

import (
	"io"
	"sync"

	"github.com/kailas-cloud/concord/internal/export"
	"github.com/kailas-cloud/concord/internal/stream"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
)

// Result is a finished search. It tracks the selected tied solution per
// criterion; every criterion starts at its first solution. Safe for
// concurrent use.
type Result struct {
	id       string
	mu       sync.Mutex
	store    *searchuc.Store
	selector *searchuc.Selector
}

func newResult(id string, store *searchuc.Store) *Result {
	return &Result{id: id, store: store, selector: searchuc.NewSelector(store)}
}

func resultFromOutcome(id string, o *Outcome) *Result {
	st := searchuc.NewStore()
	st.Apply(stream.Result{Outcome: o})
	return newResult(id, st)
}

// ID returns the search id.
func (r *Result) ID() string { return r.id }

// Outcome returns the raw outcome.
func (r *Result) Outcome() *Outcome { return r.store.Outcome() }

// Progress returns the last progress report received.
func (r *Result) Progress() Progress {
	return Progress{Total: r.store.Total(), Current: r.store.Current(), Percent: r.store.Progress()}
}

// Complete reports whether the engine delivered a result.
func (r *Result) Complete() bool { return r.store.Done() }

// Logs returns the engine log lines received during the search.
func (r *Result) Logs() []string { return r.store.Logs() }

// Criteria lists the criteria present in the result, in display order.
func (r *Result) Criteria() []Criterion { return r.store.Outcome().Kinds() }

// Select picks the tied solution at index for a criterion.
func (r *Result) Select(kind Criterion, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selector.Select(kind, index)
}

// Selected returns the selected solution index for a criterion.
func (r *Result) Selected(kind Criterion) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selector.Selected(kind)
}

// Solution returns the selected solution for a criterion.
func (r *Result) Solution(kind Criterion) (Solution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selector.Solution(kind)
}

// Stats returns every expert's distance and competence against the
// selected solution of a criterion.
func (r *Result) Stats(kind Criterion) ([]ExpertStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selector.Recompute(kind)
}

// Export writes the consensus CSV report with kind's selected solution as the ranking.
func (r *Result) Export(w io.Writer, kind Criterion) error {
	r.mu.Lock()
	sol, err := r.selector.Solution(kind)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	stats, err := r.selector.Recompute(kind)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return export.Consensus(w, export.Report{Outcome: r.store.Outcome(), Kind: kind, Solution: sol, Stats: stats})
}

// sink folds search events into a store and forwards them to callbacks.
type sink struct {
	cfg   *searchConfig
	store *searchuc.Store
}

var _ searchuc.Sink = (*sink)(nil)

func newSink(cfg *searchConfig) *sink {
	return &sink{cfg: cfg, store: searchuc.NewStore()}
}

func (s *sink) Reset() { s.store.Reset() }

func (s *sink) Apply(ev stream.Event) {
	s.store.Apply(ev)
	switch e := ev.(type) {
	case stream.Progress:
		if s.cfg.onProgress != nil {
			s.cfg.onProgress(Progress{Total: s.store.Total(), Current: e.Current, Percent: e.Percent})
		}
	case stream.Log:
		if s.cfg.onLog != nil {
			s.cfg.onLog(e.Message)
		}
	}
}
