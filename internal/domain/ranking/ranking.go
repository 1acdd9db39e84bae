// Package ranking defines object identifiers and strict total orderings over them.
package ranking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/concord/internal/domain"
)

// ObjectID identifies a rankable object. Ids are never reused within a session.
type ObjectID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ObjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("object id: %w", err)
		}
		*id = ObjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("object id: %w", err)
	}
	*id = ObjectID(n.String())
	return nil
}

// MarshalJSON renders canonical integer ids as JSON numbers, everything else
// (including "007" and "+5") as strings.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Less orders ids numerically when both parse as integers, lexically otherwise.
// Numeric ids sort before non-numeric ones.
func Less(a, b ObjectID) bool {
	na, errA := strconv.ParseInt(string(a), 10, 64)
	nb, errB := strconv.ParseInt(string(b), 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// Ordering is a strict total order: the object at index i has rank i+1.
type Ordering []ObjectID

// Validate checks that the ordering has no empty and no duplicate ids.
func (o Ordering) Validate() error {
	seen := make(map[ObjectID]struct{}, len(o))
	for i, id := range o {
		if id == "" {
			return fmt.Errorf("%w: empty id at position %d", domain.ErrInvalidOrdering, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", domain.ErrInvalidOrdering, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Positions maps every id to its 0-based index.
func (o Ordering) Positions() map[ObjectID]int {
	pos := make(map[ObjectID]int, len(o))
	for i, id := range o {
		pos[id] = i
	}
	return pos
}

// Sorted returns a copy of the ids in ascending id order (see Less).
func (o Ordering) Sorted() []ObjectID {
	ids := make([]ObjectID, len(o))
	copy(ids, o)
	sort.SliceStable(ids, func(i, j int) bool { return Less(ids[i], ids[j]) })
	return ids
}

// Item is an ordered object with its display name, as echoed by the engine.
type Item struct {
	ID   ObjectID `json:"id"`
	Name string   `json:"name"`
}

// UnmarshalJSON accepts either a bare id or an {id, name} object.
func (it *Item) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		return it.ID.UnmarshalJSON(data)
	}
	var raw struct {
		ID   ObjectID `json:"id"`
		Name string   `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ordered item: %w", err)
	}
	it.ID, it.Name = raw.ID, raw.Name
	return nil
}

// IDs extracts the ordering from a list of items.
func IDs(items []Item) Ordering {
	o := make(Ordering, len(items))
	for i, it := range items {
		o[i] = it.ID
	}
	return o
}
