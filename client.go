package concord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kailas-cloud/concord/internal/db"
	dbRedis "github.com/kailas-cloud/concord/internal/db/redis"
	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/repository/archive"
	"github.com/kailas-cloud/concord/internal/transport/engine"
	healthuc "github.com/kailas-cloud/concord/internal/usecase/health"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
)

const (
	defaultEngineURL        = "http://127.0.0.1:8000"
	defaultHeaderTimeout    = 30 * time.Second
	defaultReadinessTimeout = 10 * time.Second
)

// Internal interfaces for test substitution.
type searchUseCase interface {
	Run(ctx context.Context, req searchuc.Request, sink searchuc.Sink) (searchuc.Summary, error)
}

type archiveUseCase interface {
	Get(ctx context.Context, searchID string) (archive.Entry, error)
	List(ctx context.Context) ([]string, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the concord SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	archive   archiveUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. With WithRedis or WithValkey it connects to the
// archive first; the provided context bounds that readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		engineURL:     defaultEngineURL,
		headerTimeout: defaultHeaderTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if cfg.driver != "" {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("concord: archive not ready: %w", err)
		}
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("concord: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("concord: unknown driver %q", cfg.driver)
	}
}

func limitsFrom(cfg *clientConfig) domain.SearchLimits {
	l := domain.DefaultSearchLimits()
	if cfg.defaultObjects > 0 {
		l.DefaultObjects = cfg.defaultObjects
	}
	if cfg.minObjects > 0 {
		l.MinObjects = cfg.minObjects
	}
	if cfg.maxObjects > 0 {
		l.MaxObjects = cfg.maxObjects
	}
	return l
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	eng := engine.NewClient(&engine.Config{
		BaseURL:       cfg.engineURL,
		Path:          cfg.enginePath,
		HeaderTimeout: cfg.headerTimeout,
	})

	c := &Client{store: store, obs: obs}

	// Keep the interfaces nil (not typed nil pointers) without an archive.
	var (
		searchArchive searchuc.Archive
		pinger        healthuc.Pinger
	)
	if store != nil {
		repo := archive.New(store, cfg.keyPrefix, cfg.ttl)
		searchArchive, pinger, c.archive = repo, store, repo
	}

	svc := searchuc.New(eng, searchArchive, limitsFrom(cfg))
	c.searchSvc = svc
	c.healthSvc = healthuc.New(eng, pinger, svc)
	return c
}

// Close releases the archive connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// SearchRequest starts a consensus search.
type SearchRequest struct {
	// Weights maps expert name to input weight; unnamed experts weigh 1.
	Weights map[string]float64
	// LimitObjects is the number of top objects to rank; 0 uses the default.
	LimitObjects int
}

// Progress is a snapshot of a running search.
type Progress struct {
	Total   int64
	Current int64
	Percent int
}

// SearchOption configures one Search call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	onProgress func(Progress)
	onLog      func(string)
}

// OnProgress is called for every progress report of the engine.
func OnProgress(fn func(Progress)) SearchOption {
	return func(c *searchConfig) { c.onProgress = fn }
}

// OnLog is called for every engine log line.
func OnLog(fn func(string)) SearchOption {
	return func(c *searchConfig) { c.onLog = fn }
}

// Search runs a consensus search to completion. Only one search runs per
// Client at a time; a concurrent call fails with ErrSearchInProgress.
// A stream that ends before its result fails with an *IncompleteError; the
// returned Result then carries the progress and logs received so far.
func (c *Client) Search(ctx context.Context, req SearchRequest, opts ...SearchOption) (*Result, error) {
	start := time.Now()
	sc := &searchConfig{}
	for _, o := range opts {
		o(sc)
	}

	sink := newSink(sc)
	sum, err := c.searchSvc.Run(ctx, searchuc.Request{
		Weights:      req.Weights,
		LimitObjects: req.LimitObjects,
	}, sink)
	c.obs.droppedFrames(sum.Dropped)
	c.obs.observe(opSearch, start, err,
		slog.String("search_id", sum.ID),
		slog.Int("frames_dropped", sum.Dropped),
	)
	if err != nil {
		var inc *IncompleteError
		if errors.As(err, &inc) {
			return newResult(sum.ID, sink.store), fmt.Errorf("concord: search: %w", err)
		}
		return nil, fmt.Errorf("concord: search: %w", err)
	}
	return newResult(sum.ID, sink.store), nil
}

// Archived loads a finished search from the archive.
func (c *Client) Archived(ctx context.Context, searchID string) (*Result, error) {
	start := time.Now()
	if c.archive == nil {
		err := fmt.Errorf("concord: archive disabled: %w", ErrNotFound)
		c.obs.observe(opArchived, start, err)
		return nil, err
	}
	entry, err := c.archive.Get(ctx, searchID)
	c.obs.observe(opArchived, start, err, slog.String("search_id", searchID))
	if err != nil {
		return nil, fmt.Errorf("concord: archived %s: %w", searchID, err)
	}
	return resultFromOutcome(entry.ID, entry.Outcome), nil
}

// ListArchived returns archived search ids, sorted.
func (c *Client) ListArchived(ctx context.Context) ([]string, error) {
	start := time.Now()
	if c.archive == nil {
		return nil, nil
	}
	ids, err := c.archive.List(ctx)
	c.obs.observe(opList, start, err, slog.Int("count", len(ids)))
	if err != nil {
		return nil, fmt.Errorf("concord: list archived: %w", err)
	}
	return ids, nil
}

// HealthStatus represents the aggregated engine and archive health.
type HealthStatus struct {
	Status    string            // "ok", "degraded", "error"
	Checks    map[string]string // component -> "ok"/"error"
	Searching bool              // a Search call is in flight
}

// Health checks the engine and, when configured, the archive.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	var err error
	if report.Status != healthuc.Healthy {
		err = fmt.Errorf("status %s", report.Status)
	}
	c.obs.observe(opHealth, start, err)
	return HealthStatus{Status: string(report.Status), Checks: checks, Searching: report.Searching}
}
