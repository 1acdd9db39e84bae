// Package archive keeps finished search outcomes in a key-value store
// under their search id.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/concord/internal/db"
	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
)

// DefaultKeyPrefix namespaces archive keys.
const DefaultKeyPrefix = "concord:search:"

// store is the consumer interface for the archive (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Entry is one archived search.
type Entry struct {
	ID      string           `json:"id"`
	SavedAt time.Time        `json:"saved_at"`
	Outcome *outcome.Outcome `json:"outcome"`
}

// Repo stores and loads archived outcomes.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// New creates an archive. A zero ttl keeps entries forever.
func New(s store, prefix string, ttl time.Duration) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix, ttl: ttl, now: time.Now}
}

// Save implements search.Archive.
func (r *Repo) Save(ctx context.Context, searchID string, o *outcome.Outcome) error {
	if searchID == "" || o == nil {
		return fmt.Errorf("%w: search id and outcome are required", domain.ErrValidation)
	}
	data, err := json.Marshal(Entry{ID: searchID, SavedAt: r.now().UTC(), Outcome: o})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, r.prefix+searchID, data, r.ttl); err != nil {
		return fmt.Errorf("save entry %s: %w", searchID, err)
	}
	return nil
}

// Get loads an archived search.
func (r *Repo) Get(ctx context.Context, searchID string) (Entry, error) {
	data, err := r.store.Get(ctx, r.prefix+searchID)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return Entry{}, fmt.Errorf("search %s: %w", searchID, domain.ErrNotFound)
		}
		return Entry{}, fmt.Errorf("get entry %s: %w", searchID, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("unmarshal entry %s: %w", searchID, err)
	}
	return e, nil
}

// List returns the ids of all archived searches, sorted.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan entries: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, r.prefix))
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
