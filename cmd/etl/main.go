package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/hydrometrics/ehsn-measurements-etl/internal/adapter/http"
	kafkaadapter "github.com/hydrometrics/ehsn-measurements-etl/internal/adapter/kafka"
	"github.com/hydrometrics/ehsn-measurements-etl/internal/adapter/stationapi"
	"github.com/hydrometrics/ehsn-measurements-etl/internal/config"
	"github.com/hydrometrics/ehsn-measurements-etl/internal/domain"
	"github.com/hydrometrics/ehsn-measurements-etl/internal/observability"
	"github.com/hydrometrics/ehsn-measurements-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Station directory (feature-flagged via STATION_API_ENABLED / STATION_API_URL).
	var stations domain.StationDirectory
	if cfg.StationAPIEnabled {
		client := stationapi.NewClient(cfg.StationAPIURL, cfg.StationAPIToken, cfg.StationAPITimeout, metrics, logger)
		stations = stationapi.NewCachedDirectory(client, cfg.StationCacheSize, metrics)
		metrics.StationAPIEnabled.Set(1)
		logger.Info("station directory enabled",
			"url", cfg.StationAPIURL,
			"cache_size", cfg.StationCacheSize,
			"timeout", cfg.StationAPITimeout,
		)
	} else {
		logger.Info("station directory disabled, using default UTC offset",
			"utc_offset", domain.FormatUTCOffset(cfg.UTCOffset),
		)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(stations, cfg.UTCOffset, metrics, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
