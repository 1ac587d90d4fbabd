// Package server wires storage, services and the HTTP API together and runs
// them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server/blobstore"
	"github.com/dmitrijs2005/datingapp/internal/server/config"
	"github.com/dmitrijs2005/datingapp/internal/server/httpapi"
	"github.com/dmitrijs2005/datingapp/internal/server/metrics"
	"github.com/dmitrijs2005/datingapp/internal/server/presence"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/datingapp/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newBlobStore = func(ctx context.Context, c *config.Config) (blobstore.Deleter, error) {
		return blobstore.NewS3Store(ctx, c)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

// Core is the storage-backed part of the application shared by the HTTP
// server and the admin CLI.
type Core struct {
	DB    *sql.DB
	Admin *services.AdminService
}

// OpenCore connects to the database and the photo store, applies migrations
// and builds the admin service on top of them.
func OpenCore(ctx context.Context, c *config.Config, logger logging.Logger, rec metrics.Recorder) (*Core, error) {
	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	rm, err := newRepositoryManager(blobs)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &Core{DB: db, Admin: services.NewAdminService(db, rm, logger, rec)}, nil
}

// Close releases the database pool.
func (c *Core) Close() error {
	return c.DB.Close()
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	core     *Core
	registry *presence.Registry
	handler  http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	core, err := OpenCore(ctx, c, logger, collector)
	if err != nil {
		return nil, err
	}

	registry := presence.NewRegistry(collector)
	hub := httpapi.NewHub(registry, logger, c.AllowedOrigins)

	handler := httpapi.NewRouter(&httpapi.RouterDeps{
		Logger:    logger,
		SecretKey: []byte(c.SecretKey),
		Admin:     core.Admin,
		Presence:  registry,
		Hub:       hub,
		DB:        core.DB,
		Gatherer:  reg,
	})

	return &App{config: c, logger: logger, core: core, registry: registry, handler: handler}, nil
}

// Handler exposes the assembled router.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.handler, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database pool.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.core.Close(); err != nil {
		app.logger.Error(ctx, "failed to close database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
