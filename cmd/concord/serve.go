package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/concord/internal/transport/chi"
	healthuc "github.com/kailas-cloud/concord/internal/usecase/health"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
	"github.com/kailas-cloud/concord/internal/version"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("Starting concord API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine_url", cfg.Engine.BaseURL),
		zap.String("archive_driver", cfg.Archive.Driver),
	)

	repo, store, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	// Pass nil interfaces (not typed nil pointers) when archiving is disabled.
	var (
		searchArchive searchuc.Archive
		archiveReader chiTransport.ArchiveReader
		archivePinger healthuc.Pinger
	)
	if repo != nil {
		searchArchive, archiveReader, archivePinger = repo, repo, store
	}

	engineClient := a.engine()
	searchSvc := searchuc.New(engineClient, searchArchive, a.limits())
	healthSvc := healthuc.New(engineClient, archivePinger, searchSvc)

	server := chiTransport.NewServer(searchSvc, archiveReader, healthSvc, a.searchTimeout(), logger)
	defer server.Close()

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
