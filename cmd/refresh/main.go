// Command refresh rebuilds the globe dashboard data artifact from Natural
// Earth boundaries, World Bank indicators, NASA EONET and USGS feeds.
//
// With REFRESH_INTERVAL unset it runs once and exits non-zero if no artifact
// was written. With REFRESH_INTERVAL set it refreshes on that interval and
// serves /healthz, /readyz, /metrics and /status on HTTP_ADDR.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/orbis-globe/data-engine/internal/adapter/artifact"
	"github.com/orbis-globe/data-engine/internal/adapter/eonet"
	"github.com/orbis-globe/data-engine/internal/adapter/httpadapter"
	kafkaadapter "github.com/orbis-globe/data-engine/internal/adapter/kafka"
	"github.com/orbis-globe/data-engine/internal/adapter/naturalearth"
	"github.com/orbis-globe/data-engine/internal/adapter/usgs"
	"github.com/orbis-globe/data-engine/internal/adapter/worldbank"
	"github.com/orbis-globe/data-engine/internal/config"
	"github.com/orbis-globe/data-engine/internal/observability"
	"github.com/orbis-globe/data-engine/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var geo pipeline.GeoSource = naturalearth.NewClient(cfg.GeoJSONURL, cfg.FetchTimeout, logger)
	if cfg.Scheduled() && cfg.BoundaryCacheTTL > 0 {
		geo = naturalearth.NewCachedClient(geo, cfg.BoundaryCacheTTL, clockwork.NewRealClock())
	}

	src := pipeline.Sources{
		Geo:        geo,
		Indicators: worldbank.NewClient(cfg.WorldBankBaseURL, cfg.IndicatorTimeout, cfg.IndicatorPageSize, logger),
		Hazards:    eonet.NewClient(cfg.EONETURL, cfg.FetchTimeout, logger),
		Seismic:    usgs.NewClient(cfg.USGSFeedURL, cfg.FetchTimeout, logger),
	}
	store := artifact.NewStore(cfg.ArtifactPath, cfg.ArtifactFormat)
	queue := pipeline.NewQueue(clockwork.NewRealClock(), cfg.IndicatorDelay)

	// Kafka publication is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(src, store, publisher, queue, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("refresh configured",
		"artifact", cfg.ArtifactPath,
		"format", cfg.ArtifactFormat,
		"indicator_delay", cfg.IndicatorDelay,
		"refresh_interval", cfg.RefreshInterval,
	)

	code := 0
	if cfg.Scheduled() {
		runScheduled(ctx, cfg, p, logger)
	} else if _, err := p.Run(ctx); err != nil {
		code = 1
	}

	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics textfile write failed", "path", cfg.MetricsTextfile, "error", err)
		}
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	stop()
	os.Exit(code)
}

// runScheduled serves the health surface and refreshes until ctx is cancelled.
func runScheduled(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) {
	sched := pipeline.NewScheduler(p, cfg.RefreshInterval, clockwork.NewRealClock(), logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, sched, sched, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
