package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agriscope/et-insight-service/internal/adapter/httpapi"
	kafkaadapter "github.com/agriscope/et-insight-service/internal/adapter/kafka"
	"github.com/agriscope/et-insight-service/internal/adapter/openet"
	"github.com/agriscope/et-insight-service/internal/adapter/summary"
	"github.com/agriscope/et-insight-service/internal/config"
	"github.com/agriscope/et-insight-service/internal/domain"
	"github.com/agriscope/et-insight-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var provider domain.Provider = openet.NewClient(cfg.OpenETBaseURL, cfg.OpenETAPIKey, cfg.OpenETTimeout, logger, metrics)
	if cfg.CacheEnabled {
		provider = openet.NewCachedProvider(provider, cfg.OpenETCacheSize, metrics)
		logger.Info("openet response cache enabled", "cache_size", cfg.OpenETCacheSize)
	}

	// Narrative summarizer (feature-flagged via SUMMARY_ENABLED / OPENAI_API_KEY).
	var summarizer domain.Summarizer
	if cfg.SummaryEnabled {
		summarizer = summary.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, logger, metrics)
		logger.Info("narrative summarizer enabled", "model", cfg.OpenAIModel, "timeout", cfg.SummaryTimeout)
	} else {
		logger.Info("narrative summarizer disabled")
	}

	// Report publishing (feature-flagged via KAFKA_ENABLED).
	var publisher httpapi.ReportPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		publisher = kafkaPublisher
		logger.Info("report publishing enabled", "topic", cfg.KafkaReportTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("report publishing disabled")
	}

	handler := httpapi.NewHandler(provider, summarizer, publisher, cfg.SummaryTimeout, logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
