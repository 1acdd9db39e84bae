package chi

import (
	"sync"
	"time"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/export"
	"github.com/kailas-cloud/concord/internal/stream"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
)

// Session is the server's single active search. The search loop writes to
// it through the search.Sink methods; handlers only read copies.
type Session struct {
	mu       sync.RWMutex
	id       string
	running  bool
	err      error
	started  time.Time
	finished time.Time
	// stale is set between begin and the search loop's Reset: the store
	// still holds the previous search and must not be shown.
	stale    bool
	store    *searchuc.Store
	selector *searchuc.Selector
}

var _ searchuc.Sink = (*Session)(nil)

// NewSession creates an idle session.
func NewSession() *Session {
	st := searchuc.NewStore()
	return &Session{store: st, selector: searchuc.NewSelector(st)}
}

// Reset implements search.Sink.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Reset()
	s.selector.Reset()
	s.stale = false
}

// Apply implements search.Sink.
func (s *Session) Apply(ev stream.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Apply(ev)
	if _, ok := ev.(stream.Result); ok {
		// A replaced outcome invalidates earlier tie-break picks.
		s.selector.Reset()
	}
}

func (s *Session) begin(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrSearchInProgress
	}
	s.id, s.running, s.err = id, true, nil
	s.started, s.finished = time.Now().UTC(), time.Time{}
	s.stale = true
	return nil
}

func (s *Session) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running, s.err = false, err
	s.finished = time.Now().UTC()
}

// SearchView is the client-facing state of the current search.
type SearchView struct {
	ID         string          `json:"id"`
	Running    bool            `json:"running"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Total      int64           `json:"total"`
	Current    int64           `json:"current"`
	Progress   int             `json:"progress"`
	Logs       []string        `json:"logs"`
	Criteria   []CriterionView `json:"criteria,omitempty"`
	// ExecutionTimeSec is the engine-reported search time.
	ExecutionTimeSec float64 `json:"execution_time_sec,omitempty"`
}

// CriterionView is one criterion with its currently selected solution.
type CriterionView struct {
	Kind      criterion.Kind       `json:"kind"`
	Label     string               `json:"label"`
	Objective float64              `json:"objective"`
	Solutions int                  `json:"solutions"`
	Selected  int                  `json:"selected"`
	Solution  outcome.Solution     `json:"solution"`
	Stats     []outcome.ExpertStat `json:"stats"`
}

func (s *Session) view() (SearchView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.id == "" {
		return SearchView{}, domain.ErrNoOutcome
	}

	var snap searchuc.State
	if !s.stale {
		snap = s.store.Snapshot()
	}
	v := SearchView{
		ID:        s.id,
		Running:   s.running,
		StartedAt: s.started,
		Total:     snap.Total,
		Current:   snap.Current,
		Progress:  snap.Progress,
		Logs:      snap.Logs,
	}
	if s.err != nil {
		v.Error = safeDomainMessage(s.err)
	}
	if !s.finished.IsZero() {
		f := s.finished
		v.FinishedAt = &f
	}
	if snap.Outcome == nil {
		return v, nil
	}

	v.ExecutionTimeSec = snap.Outcome.ExecutionTime.Seconds()
	for _, k := range snap.Outcome.Kinds() {
		cv, err := s.criterionLocked(k)
		if err != nil {
			return SearchView{}, err
		}
		v.Criteria = append(v.Criteria, cv)
	}
	return v, nil
}

func (s *Session) selectSolution(kind criterion.Kind, index int) (CriterionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale {
		return CriterionView{}, domain.ErrNoOutcome
	}
	if err := s.selector.Select(kind, index); err != nil {
		return CriterionView{}, err
	}
	return s.criterionLocked(kind)
}

func (s *Session) report(kind criterion.Kind) (export.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stale {
		return export.Report{}, domain.ErrNoOutcome
	}
	sol, err := s.selector.Solution(kind)
	if err != nil {
		return export.Report{}, err
	}
	stats, err := s.selector.Recompute(kind)
	if err != nil {
		return export.Report{}, err
	}
	return export.Report{Outcome: s.store.Outcome(), Kind: kind, Solution: sol, Stats: stats}, nil
}

func (s *Session) criterionLocked(kind criterion.Kind) (CriterionView, error) {
	res, _ := s.store.Outcome().Result(kind)
	cv := CriterionView{Kind: kind, Label: kind.Label(), Objective: res.Objective, Solutions: len(res.Solutions)}
	if len(res.Solutions) == 0 {
		return cv, nil
	}
	sol, err := s.selector.Solution(kind)
	if err != nil {
		return CriterionView{}, err
	}
	stats, err := s.selector.Recompute(kind)
	if err != nil {
		return CriterionView{}, err
	}
	cv.Selected, cv.Solution, cv.Stats = s.selector.Selected(kind), sol, stats
	return cv, nil
}
