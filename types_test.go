package concord

import (
	"errors"
	"slices"
	"testing"
)

func TestEncodeDecodeMatrix(t *testing.T) {
	doc, err := EncodeMatrix(Ordering{"3", "1", "2"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if doc.N != 3 || len(doc.Pairs) != 3 {
		t.Fatalf("doc = %+v", doc)
	}

	m := DecodeMatrix(doc.Pairs, doc.Order.Sorted())
	if !m.IsSkewSymmetric() {
		t.Error("expected skew-symmetric matrix")
	}
	if got := m.DerivedOrder(); !slices.Equal(got, doc.Order) {
		t.Errorf("derived order = %v, want %v", got, doc.Order)
	}

	if _, err := EncodeMatrix(Ordering{"1", "1"}); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("expected ErrInvalidOrdering, got %v", err)
	}
}

func TestCompetence(t *testing.T) {
	kind, err := ParseCriterion("K1_hamming")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stats := Competence(kind, Ordering{"1", "2", "3"}, []Expert{
		{Name: "A", Order: Ordering{"1", "2", "3"}},
		{Name: "B", Order: Ordering{"3", "2", "1"}},
	})
	if len(stats) != 2 || stats[0].Distance != 0 || stats[1].Distance != 3 {
		t.Fatalf("stats = %+v", stats)
	}
	if sum := stats[0].Competence + stats[1].Competence; sum < 0.999999 || sum > 1.000001 {
		t.Errorf("competence sum = %v", sum)
	}

	if _, err := ParseCriterion("k3"); !errors.Is(err, ErrUnknownCriterion) {
		t.Errorf("expected ErrUnknownCriterion, got %v", err)
	}
}
