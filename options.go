package concord

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	engineURL     string
	enginePath    string
	headerTimeout time.Duration

	defaultObjects int
	minObjects     int
	maxObjects     int

	driver    string // "valkey" or "redis"; empty disables the archive
	addrs     []string
	password  string
	keyPrefix string
	ttl       time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEngine sets the ranking engine base URL. Default: http://127.0.0.1:8000.
func WithEngine(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engineURL = baseURL
	})
}

// WithEnginePath overrides the streaming endpoint path.
func WithEnginePath(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.enginePath = path
	})
}

// WithHeaderTimeout bounds the wait for the engine to start streaming.
// Default: 30s.
func WithHeaderTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.headerTimeout = d
	})
}

// WithObjectLimits sets the default and allowed number of ranked objects.
// Defaults: 8 objects, 3..12 allowed.
func WithObjectLimits(def, minObjects, maxObjects int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultObjects = def
		c.minObjects = minObjects
		c.maxObjects = maxObjects
	})
}

// WithValkey archives finished outcomes in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis archives finished outcomes in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithArchive sets the archive key prefix and entry lifetime (0 keeps entries forever).
func WithArchive(keyPrefix string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = keyPrefix
		c.ttl = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
