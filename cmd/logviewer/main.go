package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akave-ai/logviewer/internal/archive"
	"github.com/akave-ai/logviewer/internal/auth"
	"github.com/akave-ai/logviewer/internal/config"
	"github.com/akave-ai/logviewer/internal/database"
	"github.com/akave-ai/logviewer/internal/logging"
	"github.com/akave-ai/logviewer/internal/logviewer"
	"github.com/akave-ai/logviewer/internal/repository"
	"github.com/akave-ai/logviewer/internal/server"
	"github.com/akave-ai/logviewer/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	levels := logging.NewLevelSwitch(cfg.Logging.MinimumLevel())

	files, err := logging.NewDailyFileWriter(cfg.Logging.Dir, cfg.Logging.Prefix, cfg.Logging.Machine)
	if err != nil {
		log.Fatal().Err(err).Msg("open log directory")
	}
	defer files.Close()

	source, err := logviewer.GlobalRegistry.Create(cfg.LogViewer.Source, logviewer.SourceConfig{
		Dir:            cfg.Logging.Dir,
		FilePrefix:     cfg.Logging.Prefix,
		MaxWindowBytes: cfg.LogViewer.MaxWindowBytes,
		SQLitePath:     cfg.LogViewer.SQLitePath,
	})
	if err != nil {
		log.Fatal().Err(err).Strs("available", logviewer.GlobalRegistry.ListRegistered()).Msg("create log source")
	}
	if c, ok := source.(io.Closer); ok {
		defer c.Close()
	}

	sinks := []io.Writer{files}
	if w, ok := source.(io.Writer); ok {
		sinks = append(sinks, w)
	}
	logger := logging.New(levels, logging.Options{Console: cfg.Primary.IsDevelopment(), Sinks: sinks})
	log.Logger = logger

	logger.Info().
		Str("env", cfg.Primary.Env).
		Str("source", cfg.LogViewer.Source).
		Stringer("level", levels.MinimumLevel()).
		Msg("starting logviewer")

	nrApp := startNewRelic(cfg, logger)
	if nrApp != nil {
		defer nrApp.Shutdown(5 * time.Second)
	}

	var searches repository.SavedSearchStore
	if cfg.Database != nil {
		dbLogger := logging.Component(logger, "database")
		if err := database.RunMigrations(ctx, cfg.Database, dbLogger); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
		pool, err := database.NewPool(ctx, cfg.Database, dbLogger)
		if err != nil {
			logger.Fatal().Err(err).Msg("database pool")
		}
		defer pool.Close()
		searches = repository.NewSavedSearchRepository(pool)
	} else {
		searches = repository.NewFileSavedSearchStore(cfg.LogViewer.SavedSearchesPath)
	}

	viewer, err := logviewer.New(source, searches, levels)
	if err != nil {
		logger.Fatal().Err(err).Msg("create log viewer")
	}

	var authn auth.Authenticator = auth.NewTokenAuthenticator(cfg.Auth.SettingsTokenHashes)
	if cfg.Auth.Disabled {
		logger.Warn().Msg("authentication disabled: every caller may use the settings section")
		authn = auth.AllowAll{}
	}

	if cfg.Archive != nil {
		go startArchiver(ctx, cfg, logging.Component(logger, "archive"))
	}

	srv := server.New(cfg, server.Deps{
		Viewer:        viewer,
		Levels:        levels,
		Authenticator: authn,
		Logger:        logger,
		NewRelic:      nrApp,
	})
	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	logger.Info().Msg("stopped")
}

func startNewRelic(cfg *config.Config, logger zerolog.Logger) *newrelic.Application {
	nr := cfg.Observability.NewRelic
	if !nr.Enabled() {
		return nil
	}
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.Observability.ServiceName),
		newrelic.ConfigLicense(nr.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(nr.DistributedTracingEnabled),
		func(c *newrelic.Config) {
			c.Labels = map[string]string{"environment": cfg.Observability.Environment}
		},
	)
	if err != nil {
		logger.Warn().Err(err).Msg("new relic disabled")
		return nil
	}
	return app
}

func startArchiver(ctx context.Context, cfg *config.Config, logger zerolog.Logger) {
	opts := archive.Options{
		Dir:               cfg.Logging.Dir,
		Prefix:            cfg.Logging.Prefix,
		CompressAfterDays: cfg.Archive.CompressAfterDays,
		RetentionDays:     cfg.Archive.RetentionDays,
		Interval:          time.Duration(cfg.Archive.IntervalMinutes) * time.Minute,
	}
	o3, err := storage.NewO3Client(cfg.Archive.O3)
	if err != nil {
		logger.Warn().Err(err).Msg("o3 client, archives stay local")
	}
	if o3 != nil {
		if err := o3.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("o3 ensure bucket, upload may fail")
		}
		opts.Uploader = o3
	}
	archive.New(opts, logger).Run(ctx)
}
