// Package server wires the remote store: PostgreSQL (and optionally S3)
// storage, the gRPC endpoint, and the admin HTTP router with metrics and
// health, plus graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/metrics"
	"github.com/dmitrijs2005/offsync/internal/server/admin"
	"github.com/dmitrijs2005/offsync/internal/server/config"
	"github.com/dmitrijs2005/offsync/internal/server/repositories/records"
	"github.com/dmitrijs2005/offsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/offsync/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/offsync/internal/server/grpc"
)

var (
	openDB          = repomanager.OpenDB
	newS3Repository = func(ctx context.Context, o records.S3Options) (records.Repository, error) {
		return records.NewS3Repository(ctx, o)
	}
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	store    *services.StoreService
	registry *prometheus.Registry
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var recordStore records.Repository
	switch c.RecordBackend {
	case config.BackendPostgres, "":
	case config.BackendS3:
		s3repo, err := newS3Repository(ctx, records.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		recordStore = s3repo
	default:
		return nil, fmt.Errorf("unknown record backend %q", c.RecordBackend)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		store:    services.NewStoreService(db, rm, recordStore),
		registry: registry,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.store,
		gs.WithMetrics(metrics.NewRPCCollector(app.registry)),
		gs.WithRateLimit(app.config.RateLimit, app.config.RateBurst),
	)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startAdminServer(ctx context.Context) {
	router := admin.NewRouter(metrics.NewRouter(app.registry, app.db.PingContext), app.store, app.logger)
	app.logger.Info(ctx, "Starting admin server", "address", app.config.AdminAddr)
	if err := metrics.Serve(ctx, app.config.AdminAddr, router); err != nil {
		app.logger.Error(ctx, "admin server failed", "error", err)
	}
}

// Run serves until ctx is done or a termination signal arrives, then closes
// the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "record_backend", app.config.RecordBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.AdminAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startAdminServer(ctx)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "failed to close database", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
}
