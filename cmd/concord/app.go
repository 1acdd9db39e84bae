package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/concord/internal/config"
	"github.com/kailas-cloud/concord/internal/db"
	dbRedis "github.com/kailas-cloud/concord/internal/db/redis"
	"github.com/kailas-cloud/concord/internal/domain"
	logpkg "github.com/kailas-cloud/concord/internal/logger"
	"github.com/kailas-cloud/concord/internal/repository/archive"
	"github.com/kailas-cloud/concord/internal/transport/engine"
)

// app holds what every command builds from the configuration.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func loadApp(flags *rootFlags) (*app, error) {
	env := flags.env
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &app{env: env, cfg: cfg, logger: logger}, nil
}

func (a *app) close() { _ = a.logger.Sync() }

func (a *app) limits() domain.SearchLimits {
	return domain.SearchLimits{
		DefaultObjects: a.cfg.Engine.LimitObjects,
		MinObjects:     a.cfg.Engine.MinObjects,
		MaxObjects:     a.cfg.Engine.MaxObjects,
	}
}

func (a *app) engine() *engine.Client {
	return engine.NewClient(&engine.Config{
		BaseURL:       a.cfg.Engine.BaseURL,
		Path:          a.cfg.Engine.Path,
		HeaderTimeout: time.Duration(a.cfg.Engine.TimeoutSec) * time.Second,
		Logger:        a.logger,
	})
}

func (a *app) searchTimeout() time.Duration {
	return time.Duration(a.cfg.Engine.SearchTimeoutSec) * time.Second
}

// openArchive connects the outcome archive. Both results are nil when
// archiving is disabled.
func (a *app) openArchive(ctx context.Context) (*archive.Repo, db.Store, error) {
	if !a.cfg.Archive.Enabled() {
		return nil, nil, nil
	}

	// Valkey speaks the same RESP commands, so one rueidis store serves both drivers.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Archive.Addrs,
		Password: a.cfg.Archive.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create archive store: %w", err)
	}

	timeout := time.Duration(a.cfg.Archive.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("archive not ready: %w", err)
	}
	a.logger.Info("Connected to archive",
		zap.String("driver", a.cfg.Archive.Driver),
		zap.Strings("addrs", a.cfg.Archive.Addrs),
	)
	return archive.New(store, a.cfg.Archive.KeyPrefix, a.cfg.Archive.TTL()), store, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
