package health

import "context"

// Pinger checks archive store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SearchState reports whether a consensus search is in flight.
type SearchState interface {
	Running() bool
}

// EngineChecker checks consensus engine availability.
type EngineChecker interface {
	HealthCheck(ctx context.Context) error
}
