package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hongminglow/fintrack-be/internal/alerts"
	"github.com/hongminglow/fintrack-be/internal/config"
	"github.com/hongminglow/fintrack-be/internal/logging"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadWorker()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Component(logging.New(cfg.LogLevel, cfg.LogFormat), "alerts-worker")
	if envErr != nil {
		logger.Debug().Msg("no .env file found; relying on existing environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	client, err := alerts.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("init AMQP client: %w", err)
	}
	defer client.Close()

	sink := alerts.NewLogPublisher(logger)
	err = client.Consume(ctx, sink.Publish)
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("shutdown complete")
		return nil
	}
	return err
}
