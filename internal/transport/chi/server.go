package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/competence"
	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/matrix"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
	"github.com/kailas-cloud/concord/internal/export"
	logpkg "github.com/kailas-cloud/concord/internal/logger"
	"github.com/kailas-cloud/concord/internal/metrics"
	"github.com/kailas-cloud/concord/internal/repository/archive"
	healthuc "github.com/kailas-cloud/concord/internal/usecase/health"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
)

const maxBodyBytes = 1 << 20

// SearchRunner runs one consensus search into a sink.
type SearchRunner interface {
	Run(ctx context.Context, req searchuc.Request, sink searchuc.Sink) (searchuc.Summary, error)
}

// ArchiveReader loads archived outcomes.
type ArchiveReader interface {
	Get(ctx context.Context, searchID string) (archive.Entry, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API over the search service and the domain codecs.
type Server struct {
	search        SearchRunner
	archive       ArchiveReader
	health        HealthChecker
	session       *Session
	logger        *zap.Logger
	validate      *validator.Validate
	errorHandlers []errorHandler
	searchTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates an HTTP API server. archive can be nil when archiving is disabled.
// A zero searchTimeout leaves background searches bounded only by Close.
func NewServer(
	search SearchRunner,
	archiveReader ArchiveReader,
	health HealthChecker,
	searchTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		search:        search,
		archive:       archiveReader,
		health:        health,
		session:       NewSession(),
		logger:        logger,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		errorHandlers: defaultErrorHandlers(),
		searchTimeout: searchTimeout,
		baseCtx:       ctx,
		cancel:        cancel,
	}
}

// Routes builds the router with the full middleware chain.
func (s *Server) Routes(apiKeys []string) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r gochi.Router) {
		r.Post("/matrix/encode", s.EncodeMatrix)
		r.Post("/matrix/decode", s.DecodeMatrix)
		r.Post("/competence", s.EvaluateCompetence)

		r.Post("/searches", s.StartSearch)
		r.Get("/searches/current", s.CurrentSearch)
		r.Put("/searches/current/selection/{criterion}", s.SelectSolution)
		r.Get("/searches/current/export", s.ExportSearch)
		r.Get("/searches/{id}", s.GetArchived)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// Close cancels running searches and waits for them to finish.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

// Session exposes the active search state.
func (s *Server) Session() *Session { return s.session }

type encodeMatrixRequest struct {
	Order ranking.Ordering `json:"order" validate:"required,min=1"`
}

// EncodeMatrix handles POST /v1/matrix/encode.
func (s *Server) EncodeMatrix(w http.ResponseWriter, r *http.Request) {
	var req encodeMatrixRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	doc, err := matrix.NewDocument(req.Order)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type decodeMatrixRequest struct {
	matrix.Document
	// IDs overrides the row/column order; defaults to the document ids sorted.
	IDs []ranking.ObjectID `json:"ids,omitempty"`
}

type decodeMatrixResponse struct {
	IDs           []ranking.ObjectID `json:"ids"`
	Matrix        [][]int8           `json:"matrix"`
	DerivedOrder  ranking.Ordering   `json:"derived_order"`
	SkewSymmetric bool               `json:"skew_symmetric"`
}

// DecodeMatrix handles POST /v1/matrix/decode. ?format=csv returns the matrix as CSV.
func (s *Server) DecodeMatrix(w http.ResponseWriter, r *http.Request) {
	var req decodeMatrixRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.handleDomainError(w, err)
		return
	}

	dense := req.Dense()
	if len(req.IDs) > 0 {
		dense = matrix.Decode(req.Pairs, req.IDs)
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := export.Matrix(w, dense); err != nil {
			s.logger.Warn("write matrix csv", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, decodeMatrixResponse{
		IDs:           dense.IDs(),
		Matrix:        dense.Rows(),
		DerivedOrder:  dense.DerivedOrder(),
		SkewSymmetric: dense.IsSkewSymmetric(),
	})
}

type competenceRequest struct {
	Criterion string           `json:"criterion" validate:"required"`
	Solution  ranking.Ordering `json:"solution" validate:"required,min=1"`
	Experts   []outcome.Expert `json:"experts" validate:"dive"`
}

type competenceResponse struct {
	Criterion criterion.Kind       `json:"criterion"`
	Stats     []outcome.ExpertStat `json:"stats"`
}

// EvaluateCompetence handles POST /v1/competence.
func (s *Server) EvaluateCompetence(w http.ResponseWriter, r *http.Request) {
	var req competenceRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	kind, err := criterion.Parse(req.Criterion)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := req.Solution.Validate(); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, competenceResponse{
		Criterion: kind,
		Stats:     competence.Evaluate(kind, req.Solution, req.Experts),
	})
}

type startSearchRequest struct {
	Weights      map[string]float64 `json:"weights" validate:"dive,keys,required,endkeys,gte=0"`
	LimitObjects int                `json:"limit_objects" validate:"gte=0"`
}

type startSearchResponse struct {
	ID string `json:"id"`
}

// StartSearch handles POST /v1/searches. The search runs in the background;
// progress is polled through GET /v1/searches/current.
func (s *Server) StartSearch(w http.ResponseWriter, r *http.Request) {
	var req startSearchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	id := uuid.NewString()
	if err := s.session.begin(id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	log := logpkg.FromContext(r.Context())
	ctx := logpkg.ContextWithLogger(s.baseCtx, log)
	cancel := context.CancelFunc(func() {})
	if s.searchTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		_, err := s.search.Run(ctx, searchuc.Request{
			ID:           id,
			Weights:      req.Weights,
			LimitObjects: req.LimitObjects,
		}, s.session)
		if err != nil {
			log.Warn("Background search failed", zap.String("search_id", id), zap.Error(err))
		}
		s.session.finish(err)
	}()

	w.Header().Set("Location", "/v1/searches/current")
	writeJSON(w, http.StatusAccepted, startSearchResponse{ID: id})
}

// CurrentSearch handles GET /v1/searches/current.
func (s *Server) CurrentSearch(w http.ResponseWriter, _ *http.Request) {
	v, err := s.session.view()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type selectRequest struct {
	Index *int `json:"index" validate:"required"`
}

// SelectSolution handles PUT /v1/searches/current/selection/{criterion}.
func (s *Server) SelectSolution(w http.ResponseWriter, r *http.Request) {
	kind, err := criterion.Parse(gochi.URLParam(r, "criterion"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	var req selectRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	cv, err := s.session.selectSolution(kind, *req.Index)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cv)
}

// ExportSearch handles GET /v1/searches/current/export?criterion=k1_rank.
func (s *Server) ExportSearch(w http.ResponseWriter, r *http.Request) {
	kind := criterion.SumRank
	if q := r.URL.Query().Get("criterion"); q != "" {
		k, err := criterion.Parse(q)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		kind = k
	}

	rep, err := s.session.report(kind)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	if err := export.Consensus(w, rep); err != nil {
		s.logger.Warn("write consensus csv", zap.Error(err))
	}
}

// GetArchived handles GET /v1/searches/{id}.
func (s *Server) GetArchived(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.handleDomainError(w, fmt.Errorf("archive disabled: %w", domain.ErrNotFound))
		return
	}
	entry, err := s.archive.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type healthResponse struct {
	Status    healthuc.Status                 `json:"status"`
	Checks    map[string]healthuc.CheckResult `json:"checks"`
	Searching bool                            `json:"search_running"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status:    report.Status,
		Checks:    report.Checks,
		Searching: report.Searching,
	})
}

// decodeBody reads a JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler should go on.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
			return false
		}
		if errors.Is(err, domain.ErrInvalidMatrix) || errors.Is(err, domain.ErrInvalidOrdering) {
			s.handleDomainError(w, err)
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.handleDomainError(w, fmt.Errorf("%w: %w", domain.ErrValidation, err))
		return false
	}
	return true
}
