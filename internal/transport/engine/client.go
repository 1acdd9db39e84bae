// Package engine is the HTTP transport to the consensus search engine.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/metrics"
	"github.com/kailas-cloud/concord/internal/usecase/search"
)

// DefaultPath is the engine's streaming endpoint.
const DefaultPath = "/api/calculate-consensus/"

// maxErrorBody caps how much of a failed response is quoted in errors.
const maxErrorBody = 4 << 10

// Config holds the engine transport settings.
type Config struct {
	BaseURL string
	Path    string
	// HeaderTimeout bounds the wait for response headers. The body is a
	// long-lived stream and is bounded only by the caller's context.
	HeaderTimeout time.Duration
	Logger        *zap.Logger
}

// Client opens consensus searches on the engine.
type Client struct {
	http   *http.Client
	url    string
	logger *zap.Logger
}

type requestBody struct {
	Weights      map[string]float64 `json:"weights"`
	LimitObjects int                `json:"limit_objects"`
}

// NewClient creates an engine client.
func NewClient(cfg *Config) *Client {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = cfg.HeaderTimeout

	return &Client{
		http:   &http.Client{Transport: tr},
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		logger: log,
	}
}

// OpenStream implements search.Engine. The caller must close the returned body.
func (c *Client) OpenStream(ctx context.Context, req search.Request) (io.ReadCloser, error) {
	weights := req.Weights
	if weights == nil {
		weights = map[string]float64{}
	}
	payload, err := json.Marshal(requestBody{Weights: weights, LimitObjects: req.LimitObjects})
	if err != nil {
		return nil, fmt.Errorf("encode engine request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build engine request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.EngineRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("engine request: %w: %w", domain.ErrEngineError, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.EngineRequestsTotal.WithLabelValues(statusClass(resp.StatusCode)).Inc()
		return nil, fmt.Errorf("engine status %d: %s: %w",
			resp.StatusCode, extractDetail(body), domain.ErrEngineError)
	}

	metrics.EngineRequestsTotal.WithLabelValues("success").Inc()
	c.logger.Debug("Engine stream opened",
		zap.String("url", c.url),
		zap.Duration("ttfb", time.Since(start)),
	)
	return resp.Body, nil
}

// HealthCheck verifies the engine is reachable. Any HTTP answer counts.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("engine unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("engine status %d: %w", resp.StatusCode, domain.ErrEngineError)
	}
	return nil
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

// extractDetail prefers a JSON "detail" or "error" field (Django REST
// framework error shape) and falls back to the raw body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(body))
}
