// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	gcpstorage "cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/talentlens/jobcrawler/internal/api"
	"github.com/talentlens/jobcrawler/internal/clock/system"
	"github.com/talentlens/jobcrawler/internal/config"
	"github.com/talentlens/jobcrawler/internal/id/uuid"
	"github.com/talentlens/jobcrawler/internal/ingest"
	"github.com/talentlens/jobcrawler/internal/logging"
	"github.com/talentlens/jobcrawler/internal/recorder"
	"github.com/talentlens/jobcrawler/internal/recorder/sinks"
	staticreg "github.com/talentlens/jobcrawler/internal/registry/static"
	"github.com/talentlens/jobcrawler/internal/search/serpapi"
	"github.com/talentlens/jobcrawler/internal/storage"
	"github.com/talentlens/jobcrawler/internal/storage/gcs"
	"github.com/talentlens/jobcrawler/internal/storage/local"
	"github.com/talentlens/jobcrawler/internal/storage/postgres"
	"github.com/talentlens/jobcrawler/internal/telemetry"
)

// App holds the shared, long-lived services. It is initialized once at
// startup and handed to the commands that need it; construction fails fast
// when a critical service (database, storage) cannot be reached, before any
// crawl side effect occurs.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	pool      *pgxpool.Pool
	artifacts *storage.ArtifactStore
	recorder  *recorder.Recorder
	pubsubCli *pubsub.Client
	clock     ingest.Clock
	ids       ingest.IDGenerator
}

// New builds the App from configuration.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	telemetry.Init()

	a := &App{
		cfg:    cfg,
		logger: logger,
		clock:  system.New(),
		ids:    uuid.NewGenerator(),
	}

	// Database pool. Mandatory for the postgres registry and for drift; the
	// constructor pings, so dead databases are caught before any crawl work.
	if cfg.DB.DSN != "" {
		logger.Info("connecting to postgres")
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:             cfg.DB.DSN,
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnLifetime: cfg.DB.MaxConnLifetime(),
		})
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		a.pool = pool
	}

	// Raw artifact sink.
	var blobs storage.BlobStore
	switch cfg.Storage.Provider {
	case "local":
		logger.Info("using local artifact storage", zap.String("base_dir", cfg.Storage.Local.BaseDir))
		blobs, err = local.New(local.Config{BaseDir: cfg.Storage.Local.BaseDir})
	case "gcs":
		logger.Info("using GCS artifact storage", zap.String("bucket", cfg.Storage.GCS.Bucket))
		var client *gcpstorage.Client
		client, err = gcpstorage.NewClient(ctx)
		if err == nil {
			blobs, err = gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCS.Bucket})
		}
	case "noop":
		logger.Info("using no-op artifact storage, fetched pages will be discarded")
		blobs = storage.NoOpStore{}
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	a.artifacts, err = storage.NewArtifactStore(blobs, cfg.Storage.Prefix)
	if err != nil {
		return nil, fmt.Errorf("init artifact store: %w", err)
	}

	// Run telemetry sinks.
	runSinks := []ingest.RunSink{
		sinks.NewLogSink(logger),
		sinks.NewPrometheusSink(),
	}
	if cfg.Telemetry.PubSub.Enabled {
		logger.Info("publishing run summaries to pubsub",
			zap.String("topic", cfg.Telemetry.PubSub.TopicID))
		cli, err := pubsub.NewClient(ctx, cfg.Telemetry.PubSub.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("init pubsub client: %w", err)
		}
		a.pubsubCli = cli
		sink, err := sinks.NewPubSubSink(cli.Topic(cfg.Telemetry.PubSub.TopicID))
		if err != nil {
			return nil, fmt.Errorf("init pubsub sink: %w", err)
		}
		runSinks = append(runSinks, sink)
	}
	a.recorder = recorder.New(runSinks...)

	if cfg.Server.Enabled {
		var pinger api.Pinger
		if a.pool != nil {
			pinger = a.pool
		}
		srv := api.NewServer(a.recorder, pinger, logger)
		go func() {
			if err := srv.ListenAndServe(cfg.Server.Port); err != nil {
				logger.Error("ops server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("application services initialized")
	return a, nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Clock returns the shared clock.
func (a *App) Clock() ingest.Clock { return a.clock }

// IDs returns the run ID generator.
func (a *App) IDs() ingest.IDGenerator { return a.ids }

// Artifacts returns the raw artifact sink.
func (a *App) Artifacts() ingest.ArtifactSink { return a.artifacts }

// Recorder returns the run recorder.
func (a *App) Recorder() *recorder.Recorder { return a.recorder }

// BatchID derives the batch identifier for new runs.
func (a *App) BatchID() string {
	if a.cfg.Batch.MonthOverride != "" {
		return a.cfg.Batch.MonthOverride
	}
	return ingest.RunMonth(a.clock.Now())
}

// PolicyStore returns the SCD2 policy repository.
func (a *App) PolicyStore() (ingest.PolicyRepository, error) {
	if a.pool == nil {
		return nil, fmt.Errorf("policy store requires db.dsn to be configured")
	}
	return postgres.NewPolicyStore(a.pool)
}

// Distribution returns the category distribution source.
func (a *App) Distribution() (ingest.DistributionSource, error) {
	if a.pool == nil {
		return nil, fmt.Errorf("distribution source requires db.dsn to be configured")
	}
	return postgres.NewDistribution(a.pool)
}

// Registry returns the configured job/location registry.
func (a *App) Registry() (ingest.JobRegistry, error) {
	switch a.cfg.Registry.Provider {
	case "postgres":
		if a.pool == nil {
			return nil, fmt.Errorf("postgres registry requires db.dsn to be configured")
		}
		return postgres.NewRegistry(a.pool)
	case "static":
		jobs := make([]ingest.JobTitleEntry, 0, len(a.cfg.Registry.Jobs))
		for _, j := range a.cfg.Registry.Jobs {
			jobs = append(jobs, ingest.JobTitleEntry{
				JobTitle: j.JobTitle,
				Priority: ingest.Priority(j.Priority),
			})
		}
		return staticreg.New(jobs, a.cfg.Registry.Locations)
	default:
		return nil, fmt.Errorf("unknown registry provider: %s", a.cfg.Registry.Provider)
	}
}

// SearchClient builds the external search API client.
func (a *App) SearchClient() (ingest.SearchClient, error) {
	client, err := serpapi.New(serpapi.Config{
		BaseURL:           a.cfg.Search.BaseURL,
		APIKey:            a.cfg.Search.APIKey,
		Engine:            a.cfg.Search.Engine,
		LanguageCode:      a.cfg.Search.LanguageCode,
		CountryCode:       a.cfg.Search.CountryCode,
		Timeout:           a.cfg.Search.Timeout(),
		RequestsPerSecond: a.cfg.Search.RequestsPerSecond,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init search client: %w", err)
	}
	return client, nil
}

// PingDB verifies database connectivity; used by the pipeline pre-flight.
func (a *App) PingDB(ctx context.Context) error {
	if a.pool == nil {
		return fmt.Errorf("no database configured")
	}
	if err := a.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close gracefully shuts down all services.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.pubsubCli != nil {
		if err := a.pubsubCli.Close(); err != nil {
			a.logger.Warn("error closing pubsub client", zap.Error(err))
		}
	}
	if err := a.logger.Sync(); err != nil {
		// Best effort; stderr sync failures are expected on some platforms.
		_ = err
	}
}
