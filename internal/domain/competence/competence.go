// Package competence measures how far each expert's ordering is from a
// candidate solution and turns those distances into normalized weights.
package competence

import (
	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/matrix"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
)

// RankDistance sums |rank in solution - rank in expert| over the objects
// both orderings rank. Objects only one side ranks contribute nothing.
func RankDistance(solution, expert ranking.Ordering) int {
	pos := expert.Positions()
	total := 0
	for i, id := range solution {
		j, ok := pos[id]
		if !ok {
			continue
		}
		d := i - j
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// HammingDistance counts the pairs of the solution's comparison set that the
// expert orders the other way. Pairs with an id the expert did not rank are skipped.
func HammingDistance(solution, expert ranking.Ordering) int {
	m := matrix.Decode(matrix.Encode(expert), solution)
	disagree := 0
	for _, p := range matrix.Encode(solution) {
		if c := m.Cell(p.I, p.J); c != 0 && c != p.Sign {
			disagree++
		}
	}
	return disagree
}

// Distance computes the metric between a solution and one expert ordering.
func Distance(m criterion.Metric, solution, expert ranking.Ordering) int {
	if m == criterion.MetricHamming {
		return HammingDistance(solution, expert)
	}
	return RankDistance(solution, expert)
}

// Distances computes the metric for every expert, in expert order.
func Distances(m criterion.Metric, solution ranking.Ordering, experts []outcome.Expert) []int {
	d := make([]int, len(experts))
	for i, e := range experts {
		d[i] = Distance(m, solution, e.Order)
	}
	return d
}

// Normalize maps distances to weights (1/(d+1)) / sum_k(1/(d_k+1)).
// The weights sum to 1; zero experts yield an empty vector.
func Normalize(distances []int) []float64 {
	out := make([]float64, len(distances))
	if len(distances) == 0 {
		return out
	}
	var sum float64
	for i, d := range distances {
		out[i] = 1 / (float64(d) + 1)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Evaluate computes distance and competence of every expert for a solution
// under the criterion's metric.
func Evaluate(kind criterion.Kind, solution ranking.Ordering, experts []outcome.Expert) []outcome.ExpertStat {
	return Stats(experts, Distances(kind.Metric(), solution, experts))
}

// Stats pairs experts with their distances and normalized competence.
// Missing experts (distances longer than experts) are left unnamed.
func Stats(experts []outcome.Expert, distances []int) []outcome.ExpertStat {
	weights := Normalize(distances)
	stats := make([]outcome.ExpertStat, len(distances))
	for i, d := range distances {
		stats[i] = outcome.ExpertStat{Distance: d, Competence: weights[i]}
		if i < len(experts) {
			stats[i].Expert = experts[i].Name
			stats[i].Weight = experts[i].Weight
		}
	}
	return stats
}
