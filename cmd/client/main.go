package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-vrc-link/internal/adapter"
	"github.com/MKhiriev/go-vrc-link/internal/client"
	"github.com/MKhiriev/go-vrc-link/internal/config"
	"github.com/MKhiriev/go-vrc-link/internal/crypto"
	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
	"github.com/MKhiriev/go-vrc-link/internal/realtime"
	"github.com/MKhiriev/go-vrc-link/internal/service"
	"github.com/MKhiriev/go-vrc-link/internal/session"
	"github.com/MKhiriev/go-vrc-link/internal/store"
	"github.com/MKhiriev/go-vrc-link/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(buildInfo)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("go-vrc-link").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("go-vrc-link", cfg.App.LogDir)
	log.Debug().
		Str("api_address", cfg.Adapter.APIAddress).
		Str("pipeline_address", cfg.Adapter.PipelineAddress).
		Str("dsn", cfg.Storage.DB.DSN).
		Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening local storage")
	}
	defer db.Close()

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error migrating local storage")
	}
	kv := store.NewSQLiteKeyValueStore(db, log)

	collector := metrics.NewCollector(prometheus.NewRegistry())

	state := session.NewState()
	credentials := session.NewCredentialStore(kv, crypto.NewKeyChainService(), cfg.App.MasterKey,
		session.WithLogger(log))

	platform, err := adapter.NewHTTPPlatformAdapter(cfg.Adapter, cfg.App, credentials, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating platform adapter")
	}

	q := queue.New(
		queue.Config{TotalPerMinute: cfg.Queue.TotalPerMinute, TypePerMinute: cfg.Queue.TypePerMinute},
		queue.WithPollInterval(cfg.Queue.PollInterval),
		queue.WithConcurrentTypes(cfg.Queue.ConcurrentTypes),
		queue.WithLogger(log),
		queue.WithMetrics(collector),
	)

	services := service.NewServices(platform, q, state, credentials, kv, *cfg, log, collector)
	rt := realtime.New(state, credentials, cfg.Adapter, cfg.App, cfg.Workers, log,
		realtime.WithMetrics(collector))

	app, err := client.NewApp(cfg, buildInfo, state, q, services, rt, collector, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init link daemon error")
	}

	if err = app.Run(); err != nil {
		log.Error().Err(err).Msg("link daemon run error")
	}
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
