package search

import (
	"fmt"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/competence"
	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
)

// Selector tracks which tied solution is shown for each criterion.
// Criteria never selected default to their first solution.
type Selector struct {
	store *Store
	index map[criterion.Kind]int
}

// NewSelector creates a Selector over the outcome held by store.
func NewSelector(store *Store) *Selector {
	return &Selector{store: store, index: make(map[criterion.Kind]int)}
}

// Reset returns every criterion to its first solution.
func (s *Selector) Reset() { clear(s.index) }

// Select picks the tied solution at index for a criterion.
func (s *Selector) Select(kind criterion.Kind, index int) error {
	res, err := s.result(kind)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(res.Solutions) {
		return fmt.Errorf("%w: %s has %d solutions, got %d",
			domain.ErrIndexOutOfRange, kind, len(res.Solutions), index)
	}
	s.index[kind] = index
	return nil
}

// Selected returns the selected index for a criterion.
func (s *Selector) Selected(kind criterion.Kind) int { return s.index[kind] }

// Solution returns the selected solution for a criterion.
func (s *Selector) Solution(kind criterion.Kind) (outcome.Solution, error) {
	res, err := s.result(kind)
	if err != nil {
		return outcome.Solution{}, err
	}
	i := s.index[kind]
	if i >= len(res.Solutions) {
		return outcome.Solution{}, fmt.Errorf("%w: %s index %d", domain.ErrIndexOutOfRange, kind, i)
	}
	return res.Solutions[i], nil
}

// Recompute evaluates the experts against the selected solution.
// Echoed expert orderings are used when the outcome carries them;
// otherwise the solution's own distances are normalized.
func (s *Selector) Recompute(kind criterion.Kind) ([]outcome.ExpertStat, error) {
	sol, err := s.Solution(kind)
	if err != nil {
		return nil, err
	}
	o := s.store.Outcome()
	if len(o.Experts) > 0 {
		return competence.Evaluate(kind, sol.Order(), o.Experts), nil
	}

	distances := sol.Distances
	if len(distances) == 0 {
		distances = make([]int, len(sol.Stats))
		for i, st := range sol.Stats {
			distances[i] = st.Distance
		}
	}
	stats := competence.Stats(nil, distances)
	names := o.Names()
	for i := range stats {
		switch {
		case i < len(sol.Stats):
			stats[i].Expert = sol.Stats[i].Expert
			stats[i].Weight = sol.Stats[i].Weight
		case i < len(names):
			stats[i].Expert = names[i]
		}
	}
	return stats, nil
}

func (s *Selector) result(kind criterion.Kind) (outcome.CriterionResult, error) {
	o := s.store.Outcome()
	if o == nil {
		return outcome.CriterionResult{}, domain.ErrNoOutcome
	}
	res, ok := o.Result(kind)
	if !ok || len(res.Solutions) == 0 {
		return outcome.CriterionResult{}, fmt.Errorf("%w: %s", domain.ErrNoCriterion, kind)
	}
	return res, nil
}
