// Package matrix converts between orderings and their pairwise-comparison
// representation: a sparse list of signed pairs, one per unordered pair of
// objects, and the dense skew-symmetric matrix rebuilt from it.
package matrix

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
)

// Sign values of a pairwise comparison.
const (
	Outranks    int8 = 1
	OutrankedBy int8 = -1
)

// SignedPair records that I outranks J (Sign=+1) or J outranks I (Sign=-1).
type SignedPair struct {
	I    ranking.ObjectID
	J    ranking.ObjectID
	Sign int8
}

// MarshalJSON renders the pair as a [i, j, sign] triple.
func (p SignedPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.I, p.J, p.Sign})
}

// UnmarshalJSON parses a [i, j, sign] triple.
func (p *SignedPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: pair: %w", domain.ErrInvalidMatrix, err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("%w: pair must have 3 elements, got %d", domain.ErrInvalidMatrix, len(raw))
	}
	if err := p.I.UnmarshalJSON(raw[0]); err != nil {
		return fmt.Errorf("%w: pair i: %w", domain.ErrInvalidMatrix, err)
	}
	if err := p.J.UnmarshalJSON(raw[1]); err != nil {
		return fmt.Errorf("%w: pair j: %w", domain.ErrInvalidMatrix, err)
	}
	if err := json.Unmarshal(raw[2], &p.Sign); err != nil {
		return fmt.Errorf("%w: pair sign: %w", domain.ErrInvalidMatrix, err)
	}
	return nil
}

// ComparisonSet is the sparse pairwise representation of an ordering.
type ComparisonSet []SignedPair

// PairCount returns n(n-1)/2, the size of a complete comparison set over n objects.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// Encode emits one pair per unordered pair of the ordering, oriented so the
// earlier-ranked id gets +1 against the later one.
func Encode(o ranking.Ordering) ComparisonSet {
	set := make(ComparisonSet, 0, PairCount(len(o)))
	for a := 0; a < len(o); a++ {
		for b := a + 1; b < len(o); b++ {
			set = append(set, SignedPair{I: o[a], J: o[b], Sign: Outranks})
		}
	}
	return set
}

// Dense is an n x n comparison matrix indexed by a caller-chosen id order.
// Cell (a, b) is +1 when ids[a] outranks ids[b], -1 when it is outranked,
// 0 on the diagonal and for pairs with no recorded comparison.
type Dense struct {
	ids   []ranking.ObjectID
	cells [][]int8
}

// Decode rebuilds the dense matrix for the given id order. Signs are placed
// relative to positions in ids, so either stored orientation of a pair
// decodes to the same matrix. Pairs naming ids outside ids, self-pairs and
// pairs with a zero sign are skipped.
func Decode(set ComparisonSet, ids []ranking.ObjectID) Dense {
	pos := make(map[ranking.ObjectID]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}

	n := len(ids)
	cells := make([][]int8, n)
	for i := range cells {
		cells[i] = make([]int8, n)
	}

	for _, p := range set {
		a, okA := pos[p.I]
		b, okB := pos[p.J]
		if !okA || !okB || a == b {
			continue
		}
		sign := normalizeSign(p.Sign)
		if sign == 0 {
			continue
		}
		cells[a][b] = sign
		cells[b][a] = -sign
	}

	own := make([]ranking.ObjectID, n)
	copy(own, ids)
	return Dense{ids: own, cells: cells}
}

func normalizeSign(s int8) int8 {
	switch {
	case s > 0:
		return Outranks
	case s < 0:
		return OutrankedBy
	default:
		return 0
	}
}

// IDs returns the row/column order.
func (d Dense) IDs() []ranking.ObjectID { return d.ids }

// Size returns n.
func (d Dense) Size() int { return len(d.ids) }

// At returns cell (a, b) by index.
func (d Dense) At(a, b int) int8 { return d.cells[a][b] }

// Cell returns the comparison of id i against id j; 0 if either id is absent.
func (d Dense) Cell(i, j ranking.ObjectID) int8 {
	a, b := -1, -1
	for k, id := range d.ids {
		if id == i {
			a = k
		}
		if id == j {
			b = k
		}
	}
	if a < 0 || b < 0 {
		return 0
	}
	return d.cells[a][b]
}

// Rows returns a copy of the cells.
func (d Dense) Rows() [][]int8 {
	rows := make([][]int8, len(d.cells))
	for i, r := range d.cells {
		rows[i] = append([]int8(nil), r...)
	}
	return rows
}

// RowSum returns the net number of wins of ids[a].
func (d Dense) RowSum(a int) int {
	sum := 0
	for _, v := range d.cells[a] {
		sum += int(v)
	}
	return sum
}

// IsSkewSymmetric checks M[a][b] == -M[b][a] and a zero diagonal.
func (d Dense) IsSkewSymmetric() bool {
	for a := range d.cells {
		if d.cells[a][a] != 0 {
			return false
		}
		for b := a + 1; b < len(d.cells); b++ {
			if d.cells[a][b] != -d.cells[b][a] {
				return false
			}
		}
	}
	return true
}

// DerivedOrder ranks ids by row sum, most wins first. Ties keep the matrix order.
func (d Dense) DerivedOrder() ranking.Ordering {
	idx := make([]int, len(d.ids))
	sums := make([]int, len(d.ids))
	for i := range idx {
		idx[i] = i
		sums[i] = d.RowSum(i)
	}
	sort.SliceStable(idx, func(x, y int) bool { return sums[idx[x]] > sums[idx[y]] })

	o := make(ranking.Ordering, len(idx))
	for i, k := range idx {
		o[i] = d.ids[k]
	}
	return o
}
