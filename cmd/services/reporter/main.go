package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartbackpack/loadreport/internal/config"
	"github.com/smartbackpack/loadreport/internal/ingest"
	"github.com/smartbackpack/loadreport/internal/logging"
	"github.com/smartbackpack/loadreport/internal/queue"
	"github.com/smartbackpack/loadreport/internal/report"
	"github.com/smartbackpack/loadreport/internal/router"
	"github.com/smartbackpack/loadreport/internal/storage"
	"github.com/smartbackpack/loadreport/internal/subscriber"
	"github.com/smartbackpack/loadreport/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Reporter service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	store := storage.NewMemoryStore(cfg.Storage.MaxAge, cfg.Storage.MaxSize, logger)
	defer func() { _ = store.Close() }()

	locale := report.Locale{
		Location:  cfg.Report.Location(),
		WeekStart: cfg.Report.FirstWeekday(),
	}
	aggregator := report.NewAggregator(report.SystemClock(), locale)
	logger.Info("Report locale configured",
		"timezone", locale.Loc().String(),
		"week_start", locale.WeekStart.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// With the queue enabled, writes go through the broker and this process
	// consumes them into the store
	var publisher queue.Publisher
	var consumer *ingest.Handler
	if cfg.Queue.Enabled {
		logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)

		sub, err := subscriber.NewSubscriber(cfg.Queue, subscriber.Options{Logger: logger})
		if err != nil {
			logger.Fatal("Failed to create subscriber", "error", err)
		}
		defer func() { _ = sub.Close() }()

		consumer = ingest.NewHandler(store, locale.Loc(), logger)
		if err := sub.Subscribe(ctx, cfg.Queue.Subject, consumer.Handle); err != nil {
			logger.Fatal("Failed to subscribe", "subject", cfg.Queue.Subject, "error", err)
		}

		publisher, err = queue.NewPublisher(cfg.Queue)
		if err != nil {
			logger.Fatal("Failed to create publisher", "error", err)
		}
		defer func() { _ = publisher.Close() }()
		logger.Info("Queue connection established", "subject", cfg.Queue.Subject)
	} else {
		logger.Info("Queue disabled, readings are written directly to the store")
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app, h := router.New(logger, store, publisher, aggregator, *cfg)
	if consumer != nil {
		h.SetIngestHandler(consumer)
	}

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
