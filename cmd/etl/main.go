package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/agroclim/dssat-weather-etl/internal/adapter/http"
	kafkaadapter "github.com/agroclim/dssat-weather-etl/internal/adapter/kafka"
	"github.com/agroclim/dssat-weather-etl/internal/config"
	"github.com/agroclim/dssat-weather-etl/internal/observability"
	"github.com/agroclim/dssat-weather-etl/internal/pipeline"
	"github.com/agroclim/dssat-weather-etl/internal/wthfile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := kafkaadapter.NewReader(cfg, logger)
	dlq := kafkaadapter.NewDLQWriter(cfg, logger)
	writer := wthfile.NewWriter(cfg.OutputDir, logger)

	p := pipeline.New(reader, writer, dlq, logger, metrics, nil, pipeline.Options{
		BatchSize:          cfg.BatchSize,
		FlushInterval:      cfg.FlushInterval,
		MaxAccumulatedRows: cfg.MaxAccumulatedRows,
		ColumnMapping:      cfg.ColumnMapping,
		SimulationStart:    cfg.SimulationStart,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
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
	if err := dlq.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
