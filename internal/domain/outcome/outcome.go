// Package outcome models what a consensus search returns: per criterion,
// the tied optimal orderings with their per-expert distances and
// competence weights.
package outcome

import (
	"time"

	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
)

// Expert is one evaluator's submitted ordering.
type Expert struct {
	Name   string           `json:"name"`
	Weight float64          `json:"weight"`
	Order  ranking.Ordering `json:"order"`
}

// ExpertStat is an expert's distance and solution-relative competence.
type ExpertStat struct {
	Expert     string  `json:"expert_name"`
	Weight     float64 `json:"input_weight"`
	Distance   int     `json:"distance"`
	Competence float64 `json:"competence"`
}

// Solution is one optimal ordering for a criterion.
type Solution struct {
	Items     []ranking.Item `json:"order"`
	Distances []int          `json:"distances"`
	Stats     []ExpertStat   `json:"expert_stats"`
}

// Order returns the solution ordering.
func (s Solution) Order() ranking.Ordering { return ranking.IDs(s.Items) }

// CriterionResult holds the objective value and the tied solutions reaching it.
type CriterionResult struct {
	Kind      criterion.Kind `json:"kind"`
	Objective float64        `json:"objective"`
	Solutions []Solution     `json:"solutions"`
}

// Outcome is the full result of one search.
type Outcome struct {
	Criteria      map[criterion.Kind]CriterionResult `json:"criteria"`
	Experts       []Expert                           `json:"experts"`
	ExpertNames   []string                           `json:"expert_names"`
	ExecutionTime time.Duration                      `json:"execution_time"`
}

// Result returns the result for a criterion.
func (o *Outcome) Result(k criterion.Kind) (CriterionResult, bool) {
	if o == nil {
		return CriterionResult{}, false
	}
	r, ok := o.Criteria[k]
	return r, ok
}

// Kinds lists the criteria present in the outcome, in display order.
func (o *Outcome) Kinds() []criterion.Kind {
	var kinds []criterion.Kind
	for _, k := range criterion.All() {
		if _, ok := o.Result(k); ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Names returns expert names, preferring the echoed inputs over expert_names.
func (o *Outcome) Names() []string {
	if o == nil {
		return nil
	}
	if len(o.Experts) > 0 {
		names := make([]string, len(o.Experts))
		for i, e := range o.Experts {
			names[i] = e.Name
		}
		return names
	}
	return o.ExpertNames
}
