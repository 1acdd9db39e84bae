package search

import (
	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
)

func items(ids ...ranking.ObjectID) []ranking.Item {
	out := make([]ranking.Item, len(ids))
	for i, id := range ids {
		out[i] = ranking.Item{ID: id}
	}
	return out
}

func threeExperts() []outcome.Expert {
	return []outcome.Expert{
		{Name: "A", Weight: 1, Order: ranking.Ordering{"1", "2", "3"}},
		{Name: "B", Weight: 1, Order: ranking.Ordering{"2", "1", "3"}},
		{Name: "C", Weight: 1, Order: ranking.Ordering{"1", "3", "2"}},
	}
}

func sampleOutcome() *outcome.Outcome {
	return &outcome.Outcome{
		Criteria: map[criterion.Kind]outcome.CriterionResult{
			criterion.SumRank: {
				Kind:      criterion.SumRank,
				Objective: 4,
				Solutions: []outcome.Solution{
					{Items: items("1", "2", "3"), Distances: []int{0, 2, 2}},
					{Items: items("2", "1", "3"), Distances: []int{2, 0, 4}},
				},
			},
			criterion.SumHamming: {
				Kind:      criterion.SumHamming,
				Objective: 2,
				Solutions: []outcome.Solution{
					{Items: items("1", "2", "3"), Distances: []int{0, 1, 1}},
				},
			},
		},
		Experts: threeExperts(),
	}
}
