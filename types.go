package concord

import (
	"github.com/kailas-cloud/concord/internal/domain/competence"
	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/matrix"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
)

// Ranking types.
type (
	ObjectID = ranking.ObjectID
	Ordering = ranking.Ordering
	Item     = ranking.Item
)

// Criterion names one of the four optimality criteria.
type Criterion = criterion.Kind

// Criteria.
const (
	SumRank    = criterion.SumRank
	MaxRank    = criterion.MaxRank
	SumHamming = criterion.SumHamming
	MaxHamming = criterion.MaxHamming
)

// ParseCriterion resolves a criterion key case-insensitively.
func ParseCriterion(s string) (Criterion, error) { return criterion.Parse(s) }

// Outcome types.
type (
	Outcome         = outcome.Outcome
	CriterionResult = outcome.CriterionResult
	Solution        = outcome.Solution
	Expert          = outcome.Expert
	ExpertStat      = outcome.ExpertStat
)

// Matrix types.
type (
	MatrixDocument = matrix.Document
	ComparisonSet  = matrix.ComparisonSet
	SignedPair     = matrix.SignedPair
	Matrix         = matrix.Dense
)

// EncodeMatrix turns an ordering into its persisted pairwise document.
func EncodeMatrix(o Ordering) (MatrixDocument, error) { return matrix.NewDocument(o) }

// DecodeMatrix rebuilds the dense matrix of a comparison set for the given id order.
func DecodeMatrix(set ComparisonSet, ids []ObjectID) Matrix { return matrix.Decode(set, ids) }

// Competence computes every expert's distance and competence against a solution.
func Competence(kind Criterion, solution Ordering, experts []Expert) []ExpertStat {
	return competence.Evaluate(kind, solution, experts)
}
