// Command report builds the monthly crime and weather report from the two
// source extracts and writes it to OUTPUT_DIR. With SERVE_REPORT=true it then
// serves the report until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crime-weather-report/internal/adapter/chart"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/file"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/httpadapter"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/interactive"
	kafkaadapter "github.com/couchcryptid/crime-weather-report/internal/adapter/kafka"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/site"
	"github.com/couchcryptid/crime-weather-report/internal/adapter/workbook"
	"github.com/couchcryptid/crime-weather-report/internal/cleaning"
	"github.com/couchcryptid/crime-weather-report/internal/config"
	"github.com/couchcryptid/crime-weather-report/internal/observability"
	"github.com/couchcryptid/crime-weather-report/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	policy, err := cleaning.LoadPolicy(cfg.CleaningPolicyPath)
	if err != nil {
		return err
	}

	// Initialize publisher (feature-flagged via KAFKA_BROKERS).
	var publisher pipeline.Publisher
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		publisher = kp
		logger.Info("monthly publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("monthly publishing disabled")
	}

	renderers := []pipeline.Renderer{
		chart.NewRenderer(cfg.OutputDir, logger),
		interactive.NewRenderer(cfg.OutputDir, logger),
		workbook.NewWriter(cfg.OutputDir, logger),
		site.NewWriter(cfg.OutputDir, logger),
	}
	p := pipeline.New(file.NewLoader(cfg, logger), renderers, publisher, pipeline.Options{
		Policy:          policy,
		Title:           cfg.ReportTitle,
		SmoothingWindow: cfg.SmoothingWindow,
		ClusterCell:     cfg.MapClusterCell,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, runErr := p.Run(ctx)
	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.PushgatewayURL, "crime_report"); err != nil {
			logger.Error("metrics push failed", "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("report written", "dir", cfg.OutputDir)

	if !cfg.ServeReport {
		return nil
	}
	return serve(ctx, cfg, p, logger)
}

func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) error {
	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.OutputDir, p, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}
