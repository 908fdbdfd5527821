// Command serverd runs the county air quality API: it loads and cleans the
// three CSV sources, then serves the filter, ranking, and aggregation
// endpoints the dashboard frontend consumes.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/county-aqi-service/internal/adapter/csvfile"
	"github.com/couchcryptid/county-aqi-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/county-aqi-service/internal/adapter/kafka"
	"github.com/couchcryptid/county-aqi-service/internal/adapter/statesref"
	"github.com/couchcryptid/county-aqi-service/internal/config"
	"github.com/couchcryptid/county-aqi-service/internal/domain"
	"github.com/couchcryptid/county-aqi-service/internal/observability"
	"github.com/couchcryptid/county-aqi-service/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	loader := pipeline.NewLoader(
		csvfile.NewSource(cfg.AQIPath),
		csvfile.NewSource(cfg.HeatPath),
		csvfile.NewSource(cfg.CombinedPath),
		logger,
		metrics,
	)

	// State reference list (feature-flagged via STATES_REF_ENABLED).
	var states domain.StateLister
	if cfg.StatesRefEnabled {
		client := statesref.NewClient(cfg.StatesRefURL, cfg.StatesRefTimeout, logger, metrics)
		states = statesref.NewCachedLister(client, cfg.StatesRefCacheTTL, metrics)
		logger.Info("state reference enabled", "url", cfg.StatesRefURL, "cache_ttl", cfg.StatesRefCacheTTL)
	} else {
		logger.Info("state reference disabled")
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, loader, states, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the dataset up front so the first request does not pay the parse,
	// and publish the cleaned table if a Kafka sink is configured.
	go func() {
		res, err := loader.Load(ctx)
		if err != nil {
			logger.Error("initial dataset load failed", "error", err)
			return
		}
		logger.Info("dataset ready", "summary", res.Describe())

		if cfg.KafkaEnabled {
			publisher := kafkaadapter.NewPublisher(cfg, logger, metrics)
			defer publisher.Close()
			if err := publisher.PublishCounties(ctx, res.Counties, res.LoadedAt); err != nil {
				logger.Error("sink publish failed", "error", err)
			}
		}
	}()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
