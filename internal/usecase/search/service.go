package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/logger"
	"github.com/kailas-cloud/concord/internal/metrics"
	"github.com/kailas-cloud/concord/internal/stream"
)

// Sink receives the events of a running search.
type Sink interface {
	Reset()
	Apply(ev stream.Event)
}

// Summary describes a finished search.
type Summary struct {
	ID       string
	Outcome  *outcome.Outcome
	Dropped  int
	Duration time.Duration
}

// Service drives consensus searches: one at a time, from request to result.
type Service struct {
	engine  Engine
	archive Archive
	limits  domain.SearchLimits
	running atomic.Bool
}

// New creates a search service. archive can be nil.
func New(engine Engine, archive Archive, limits domain.SearchLimits) *Service {
	return &Service{engine: engine, archive: archive, limits: limits}
}

// Running reports whether a search is in flight.
func (s *Service) Running() bool { return s.running.Load() }

// Run starts a search and feeds its events to sink until the result arrives
// or the stream ends. A stream that ends without a result yields an
// *domain.IncompleteError; sink keeps whatever was applied before that.
func (s *Service) Run(ctx context.Context, req Request, sink Sink) (Summary, error) {
	if err := validateRequest(req); err != nil {
		return Summary{}, err
	}
	if !s.running.CompareAndSwap(false, true) {
		return Summary{}, domain.ErrSearchInProgress
	}
	defer s.running.Store(false)

	req.LimitObjects = s.limits.Clamp(req.LimitObjects)
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	sum := Summary{ID: req.ID}
	log := logger.FromContext(ctx).With(
		zap.String("search_id", sum.ID),
		zap.Int("limit_objects", req.LimitObjects),
	)

	sink.Reset()
	start := time.Now()

	body, err := s.engine.OpenStream(ctx, req)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(metrics.StatusError).Inc()
		log.Error("Open engine stream failed", zap.Error(err))
		return sum, fmt.Errorf("open stream: %w", err)
	}
	defer body.Close()

	dec := stream.NewDecoder(body, stream.WithDropHook(func(fe *stream.FrameError) {
		metrics.StreamFramesDroppedTotal.Inc()
		log.Debug("Dropped stream frame", zap.String("frame", fe.Frame), zap.Error(fe.Err))
	}))
	for ev := range dec.All() {
		metrics.StreamEventsTotal.WithLabelValues(string(ev.Type())).Inc()
		sink.Apply(ev)
		if r, ok := ev.(stream.Result); ok {
			sum.Outcome = r.Outcome
		}
	}
	sum.Dropped = dec.Dropped()
	sum.Duration = time.Since(start)

	if sum.Outcome == nil {
		cause := dec.Err()
		if cause == nil && ctx.Err() != nil {
			cause = ctx.Err()
		}
		metrics.SearchesTotal.WithLabelValues(metrics.StatusIncomplete).Inc()
		log.Warn("Search ended without result",
			zap.Int("frames_dropped", sum.Dropped),
			zap.Duration("duration", sum.Duration),
			zap.Error(cause),
		)
		return sum, domain.NewIncomplete(sum.ID, cause)
	}

	metrics.SearchesTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	metrics.SearchDuration.Observe(sum.Duration.Seconds())

	if s.archive != nil {
		// Archive failures are logged, the search still succeeds.
		if err := s.archive.Save(ctx, sum.ID, sum.Outcome); err != nil {
			log.Error("Archive outcome failed", zap.Error(err))
		}
	}

	log.Info("Search completed",
		zap.Strings("criteria", kindNames(sum.Outcome)),
		zap.Int("frames_dropped", sum.Dropped),
		zap.Duration("duration", sum.Duration),
		zap.Duration("engine_time", sum.Outcome.ExecutionTime),
	)
	return sum, nil
}

func validateRequest(req Request) error {
	var errs []error
	for name, w := range req.Weights {
		if name == "" {
			errs = append(errs, errors.New("weight for empty expert name"))
			continue
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			errs = append(errs, fmt.Errorf("weight %v for %q", w, name))
		}
	}
	if req.LimitObjects < 0 {
		errs = append(errs, fmt.Errorf("limit_objects %d", req.LimitObjects))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}
	return nil
}

func kindNames(o *outcome.Outcome) []string {
	kinds := o.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
