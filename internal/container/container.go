// Package container wires the catalog, loader, services and metrics from a
// loaded configuration.
package container

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"datalens/adapters/filestore"
	"datalens/adapters/loader"
	"datalens/adapters/sqlstore"
	"datalens/app"
	"datalens/internal"
	"datalens/internal/api"
	"datalens/internal/config"
	"datalens/internal/errors"
	"datalens/internal/metrics"
	"datalens/internal/migration"
	"datalens/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB       *sqlx.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Storage
	Catalog *filestore.Catalog
	Repo    ports.DatasetRepository
	Reader  *loader.Reader

	// Services
	Analysis *app.AnalysisService
	Datasets *app.DatasetService
}

// New builds a container. Dataset files always live in the data directory;
// metadata moves to SQL when a database URL is configured.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	}
	c := &Container{Config: cfg, Logger: logger}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	if c.Catalog, err = filestore.NewCatalog(dataDir); err != nil {
		return nil, errors.Wrap(err, "failed to open data directory")
	}
	c.Repo = c.Catalog

	if cfg.UsesDatabase() {
		if c.DB, err = OpenDatabase(ctx, cfg); err != nil {
			return nil, err
		}
		c.Repo = sqlstore.NewDatasetRepository(c.DB)
		logger.Info("dataset metadata stored in %s", cfg.Database.Driver)
	} else {
		logger.Info("dataset metadata stored in %s", c.Catalog.Dir())
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)

	c.Reader = loader.NewReader(loader.DefaultCoercionConfig())
	c.Analysis = app.NewAnalysisService(
		loader.NewLoader(c.Repo, c.Reader, c.Catalog.Dir()),
		app.Options{
			Bins:               cfg.Analysis.Bins,
			MaxPoints:          cfg.Analysis.MaxPoints,
			OutlierMaxValues:   cfg.Analysis.OutlierMaxValues,
			CacheTTL:           cfg.Analysis.CacheTTL,
			CacheMaxEntries:    cfg.Analysis.CacheMaxEntries,
			MaxConcurrentLoads: cfg.Analysis.MaxConcurrentLoads,
		},
		c.Metrics,
		logger,
	)
	c.Datasets = app.NewDatasetService(c.Repo, c.Catalog, c.Reader, c.Analysis, logger)
	return c, nil
}

// OpenDatabase connects to the configured database and applies the schema.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// Handler returns the public API.
func (c *Container) Handler() http.Handler {
	return api.NewServer(api.Deps{
		Analysis:       c.Analysis,
		Datasets:       c.Datasets,
		Metrics:        c.Metrics,
		Logger:         c.Logger,
		MaxUploadBytes: c.Config.MaxUploadBytes(),
	}).Handler()
}

// AdminHandler returns the health, metrics and profiling routes.
func (c *Container) AdminHandler() http.Handler {
	return api.NewAdminRouter(c.Registry)
}

// Shutdown releases the database connection.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	c.Logger.Debug("closing database")
	return c.DB.Close()
}
