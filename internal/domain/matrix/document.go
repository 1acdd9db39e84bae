package matrix

import (
	"fmt"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
)

// Document is the persisted form of an expert's pairwise matrix:
// {"order": [...], "n": 3, "pairs": [[i, j, sign], ...]}.
type Document struct {
	Order ranking.Ordering `json:"order"`
	N     int              `json:"n"`
	Pairs ComparisonSet    `json:"pairs"`
}

// NewDocument encodes an ordering into a matrix document.
func NewDocument(o ranking.Ordering) (Document, error) {
	if err := o.Validate(); err != nil {
		return Document{}, fmt.Errorf("matrix document: %w", err)
	}
	order := make(ranking.Ordering, len(o))
	copy(order, o)
	return Document{Order: order, N: len(o), Pairs: Encode(o)}, nil
}

// Validate checks n against the order length and that every pair names two
// distinct ids of the order with a non-zero sign.
func (d Document) Validate() error {
	if d.N != len(d.Order) {
		return fmt.Errorf("%w: n=%d but order has %d ids", domain.ErrInvalidMatrix, d.N, len(d.Order))
	}
	if err := d.Order.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidMatrix, err)
	}
	pos := d.Order.Positions()
	for k, p := range d.Pairs {
		if _, ok := pos[p.I]; !ok {
			return fmt.Errorf("%w: pair %d references unknown id %q", domain.ErrInvalidMatrix, k, p.I)
		}
		if _, ok := pos[p.J]; !ok {
			return fmt.Errorf("%w: pair %d references unknown id %q", domain.ErrInvalidMatrix, k, p.J)
		}
		if p.I == p.J {
			return fmt.Errorf("%w: pair %d compares %q with itself", domain.ErrInvalidMatrix, k, p.I)
		}
		if p.Sign != Outranks && p.Sign != OutrankedBy {
			return fmt.Errorf("%w: pair %d has sign %d", domain.ErrInvalidMatrix, k, p.Sign)
		}
	}
	return nil
}

// Dense decodes the document against its ids sorted ascending.
func (d Document) Dense() Dense {
	return Decode(d.Pairs, d.Order.Sorted())
}
