package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/producemart/wholesale-api/internal/config"
	"github.com/producemart/wholesale-api/internal/domain"
	"github.com/producemart/wholesale-api/internal/messaging"
	"github.com/producemart/wholesale-api/internal/notifier"
	"github.com/producemart/wholesale-api/internal/telemetry"
)

const (
	serviceVersion = "0.1.0"
	consumerGroup  = "notification-worker"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName+"-worker", serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	handler := notifier.NewHandler(notifier.NewLogSender(logger), logger)

	createdConsumer := messaging.NewConsumer(cfg.KafkaBrokers, domain.TopicOrderCreated, consumerGroup)
	defer func() { _ = createdConsumer.Close() }()

	statusConsumer := messaging.NewConsumer(cfg.KafkaBrokers, domain.TopicOrderStatusChanged, consumerGroup)
	defer func() { _ = statusConsumer.Close() }()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting notification worker", "brokers", cfg.KafkaBrokers)

	errCh := make(chan error, 2)
	go func() { errCh <- createdConsumer.Consume(ctx, handler.HandleOrderCreated) }()
	go func() { errCh <- statusConsumer.Consume(ctx, handler.HandleStatusChanged) }()

	if err := <-errCh; err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
