package domain

// SearchLimits bounds the number of objects a consensus search may rank.
// Exhaustive search over n objects costs n! permutations, so the engine
// stays interactive only for small n.
type SearchLimits struct {
	DefaultObjects int
	MinObjects     int
	MaxObjects     int
}

// DefaultSearchLimits returns the limits used by the engine UI: 8 objects by default, 3..12 allowed.
func DefaultSearchLimits() SearchLimits {
	return SearchLimits{
		DefaultObjects: 8,
		MinObjects:     3,
		MaxObjects:     12,
	}
}

// Clamp returns n bounded to [MinObjects, MaxObjects]; zero or negative n yields DefaultObjects.
func (l SearchLimits) Clamp(n int) int {
	switch {
	case n <= 0:
		return l.DefaultObjects
	case n < l.MinObjects:
		return l.MinObjects
	case n > l.MaxObjects:
		return l.MaxObjects
	default:
		return n
	}
}
