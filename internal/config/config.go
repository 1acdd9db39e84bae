package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Archive drivers.
const (
	DriverNone   = "none"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// Config holds the concord configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Archive ArchiveConfig `yaml:"archive"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds consensus engine settings.
type EngineConfig struct {
	BaseURL string `yaml:"base_url"`
	Path    string `yaml:"path"`
	// TimeoutSec bounds the wait for the engine to start streaming.
	TimeoutSec int `yaml:"timeout_sec"`
	// SearchTimeoutSec bounds a whole search; 0 means no limit.
	SearchTimeoutSec int `yaml:"search_timeout_sec"`
	LimitObjects     int `yaml:"limit_objects"`
	MinObjects       int `yaml:"min_objects"`
	MaxObjects       int `yaml:"max_objects"`
}

// ArchiveConfig holds outcome archive settings.
type ArchiveConfig struct {
	Driver           string   `yaml:"driver"` // none, redis, valkey (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLHours         int      `yaml:"ttl_hours"` // 0 = keep forever
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether outcomes are archived.
func (a ArchiveConfig) Enabled() bool { return a.Driver != DriverNone }

// TTL returns the archive entry lifetime.
func (a ArchiveConfig) TTL() time.Duration { return time.Duration(a.TTLHours) * time.Hour }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.BaseURL == "" {
		c.Engine.BaseURL = "http://127.0.0.1:8000"
	}
	if c.Engine.Path == "" {
		c.Engine.Path = "/api/calculate-consensus/"
	}
	if c.Engine.TimeoutSec <= 0 {
		c.Engine.TimeoutSec = 30
	}
	if c.Engine.LimitObjects <= 0 {
		c.Engine.LimitObjects = 8
	}
	if c.Engine.MinObjects <= 0 {
		c.Engine.MinObjects = 3
	}
	if c.Engine.MaxObjects <= 0 {
		c.Engine.MaxObjects = 12
	}
	if c.Archive.Driver == "" {
		c.Archive.Driver = DriverNone
	}
	if c.Archive.KeyPrefix == "" {
		c.Archive.KeyPrefix = "concord:search:"
	}
	if c.Archive.ReadinessTimeout <= 0 {
		c.Archive.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if !strings.HasPrefix(c.Engine.BaseURL, "http://") && !strings.HasPrefix(c.Engine.BaseURL, "https://") {
		return fmt.Errorf("engine.base_url must be an http(s) URL, got %q", c.Engine.BaseURL)
	}
	if c.Engine.MinObjects > c.Engine.MaxObjects {
		return fmt.Errorf("engine.min_objects (%d) exceeds engine.max_objects (%d)",
			c.Engine.MinObjects, c.Engine.MaxObjects)
	}
	if c.Engine.LimitObjects < c.Engine.MinObjects || c.Engine.LimitObjects > c.Engine.MaxObjects {
		return fmt.Errorf("engine.limit_objects must be between %d and %d, got %d",
			c.Engine.MinObjects, c.Engine.MaxObjects, c.Engine.LimitObjects)
	}
	if c.Engine.SearchTimeoutSec < 0 {
		return fmt.Errorf("engine.search_timeout_sec must not be negative, got %d", c.Engine.SearchTimeoutSec)
	}
	switch c.Archive.Driver {
	case DriverNone:
	case DriverRedis, DriverValkey:
		if len(c.Archive.Addrs) == 0 {
			return fmt.Errorf("archive.addrs is required for driver %q", c.Archive.Driver)
		}
	default:
		return fmt.Errorf("archive.driver must be \"none\", \"redis\" or \"valkey\", got %q", c.Archive.Driver)
	}
	if c.Archive.TTLHours < 0 {
		return fmt.Errorf("archive.ttl_hours must not be negative, got %d", c.Archive.TTLHours)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
