// Package criterion names the four consensus objectives: a distance metric
// (rank position or pairwise Hamming) combined with an aggregation over
// experts (sum or max).
package criterion

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/concord/internal/domain"
)

// Kind is one of the four fixed optimality criteria.
type Kind string

// Criterion kinds, valued by their wire keys.
const (
	// SumRank minimizes the summed rank distance (Cook median).
	SumRank Kind = "k1_rank"
	// MaxRank minimizes the largest rank distance (GV median).
	MaxRank Kind = "k2_rank"
	// SumHamming minimizes the summed pairwise disagreement (Kemeny median).
	SumHamming Kind = "k1_hamming"
	// MaxHamming minimizes the largest pairwise disagreement (minimax).
	MaxHamming Kind = "k2_hamming"
)

// Metric is the per-expert distance a criterion is built on.
type Metric string

const (
	// MetricRank is the sum of absolute rank differences.
	MetricRank Metric = "rank"
	// MetricHamming counts disagreeing object pairs.
	MetricHamming Metric = "hamming"
)

// Aggregation combines per-expert distances into one objective value.
type Aggregation string

const (
	AggregateSum Aggregation = "sum"
	AggregateMax Aggregation = "max"
)

// All lists the kinds in display order.
func All() []Kind {
	return []Kind{SumRank, MaxRank, SumHamming, MaxHamming}
}

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == SumRank || k == MaxRank || k == SumHamming || k == MaxHamming
}

// Parse resolves a wire key case-insensitively ("K1_rank" and "k1_rank" are the same kind).
func Parse(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCriterion, s)
	}
	return k, nil
}

// Metric returns the distance metric the kind minimizes.
func (k Kind) Metric() Metric {
	if k == SumHamming || k == MaxHamming {
		return MetricHamming
	}
	return MetricRank
}

// Aggregation returns how per-expert distances are combined.
func (k Kind) Aggregation() Aggregation {
	if k == MaxRank || k == MaxHamming {
		return AggregateMax
	}
	return AggregateSum
}

// Objective aggregates per-expert distances the way the kind does.
// An empty distance vector yields 0.
func (k Kind) Objective(distances []int) int {
	total := 0
	for _, d := range distances {
		if k.Aggregation() == AggregateMax {
			total = max(total, d)
		} else {
			total += d
		}
	}
	return total
}

// Label returns the human-readable name used in exports.
func (k Kind) Label() string {
	switch k {
	case SumRank:
		return "K1 Rank (Cook)"
	case MaxRank:
		return "K2 Rank (GV)"
	case SumHamming:
		return "K1 Hamming (Kemeny)"
	case MaxHamming:
		return "K2 Hamming (Minimax)"
	default:
		return string(k)
	}
}
