package search

import (
	"context"
	"io"

	"github.com/kailas-cloud/concord/internal/domain/outcome"
)

// Request is what a consensus search is started with.
type Request struct {
	// ID names the search; Run assigns a fresh one when empty.
	ID string `json:"-"`
	// Weights maps expert name to input weight; experts absent from the map weigh 1.
	Weights      map[string]float64 `json:"weights"`
	LimitObjects int                `json:"limit_objects"`
}

// Engine opens the engine's event stream for a search.
type Engine interface {
	OpenStream(ctx context.Context, req Request) (io.ReadCloser, error)
}

// Archive persists finished outcomes.
type Archive interface {
	Save(ctx context.Context, searchID string, o *outcome.Outcome) error
}
