package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/agenthands/playbill/internal/config"
	"github.com/agenthands/playbill/internal/core"
	"github.com/agenthands/playbill/internal/driver"
	"github.com/agenthands/playbill/internal/logging"
	"github.com/agenthands/playbill/internal/metrics"
	"github.com/agenthands/playbill/internal/server"
	"github.com/agenthands/playbill/internal/store"
	"github.com/agenthands/playbill/internal/store/memstore"
	"github.com/agenthands/playbill/internal/store/sqlitestore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "Create the Neo4j indexes and constraints",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		if cfg.Store.Backend != config.BackendNeo4j {
			return fmt.Errorf("indices: backend %q has no indexes to build", cfg.Store.Backend)
		}
		d, err := connectNeo4j(cmd.Context(), cfg.Neo4j, logger)
		if err != nil {
			return err
		}
		defer d.Close(context.Background())
		if err := d.BuildIndices(cmd.Context()); err != nil {
			return err
		}
		logger.Info("indices built")
		return nil
	},
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func connectNeo4j(ctx context.Context, cfg config.Neo4jConfig, logger *slog.Logger) (*driver.Neo4jDriver, error) {
	d, err := driver.NewNeo4jDriver(ctx, cfg.URI, cfg.User, cfg.Password, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to neo4j at %s: %w", cfg.URI, err)
	}
	return d, nil
}

// openStore builds the configured backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	var s store.Store
	switch cfg.Store.Backend {
	case config.BackendNeo4j:
		d, err := connectNeo4j(ctx, cfg.Neo4j, logger)
		if err != nil {
			return nil, err
		}
		s = driver.NewStore(d)
	case config.BackendSQLite:
		sq, err := sqlitestore.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite at %s: %w", cfg.SQLite.Path, err)
		}
		s = sq
	case config.BackendMemory:
		logger.Warn("using in-memory store; records are lost on exit")
		s = memstore.New()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Metrics.Enabled {
		s = metrics.InstrumentStore(s)
	}
	return s, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(core.NewPlaybill(s, logger), logger, cfg.Metrics)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.SetupRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", httpServer.Addr, "backend", cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
