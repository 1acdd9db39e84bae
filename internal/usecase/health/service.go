package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the archive is down; searches still run.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine is down.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in a Report.
const (
	ComponentEngine  = "engine"
	ComponentArchive = "archive"
)

const checkTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Searching is set while a search holds the engine.
	Searching bool
}

// Service coordinates health checks.
type Service struct {
	engine  EngineChecker
	archive Pinger
	search  SearchState
}

// New creates a Service. archive can be nil when archiving is disabled;
// search can be nil when no search runs in this process.
func New(engine EngineChecker, archive Pinger, search SearchState) *Service {
	return &Service{engine: engine, archive: archive, search: search}
}

// Check runs all component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, 2)
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		record(ComponentEngine, s.engine.HealthCheck(cctx))
		return nil
	})
	if s.archive != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			record(ComponentArchive, s.archive.Ping(cctx))
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	switch {
	case checks[ComponentEngine] == CheckError:
		status = Unhealthy
	case checks[ComponentArchive] == CheckError:
		status = Degraded
	}
	r := Report{Status: status, Checks: checks}
	if s.search != nil {
		r.Searching = s.search.Running()
	}
	return r
}
