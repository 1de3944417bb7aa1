package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/fintrack-be/internal/alerts"
	"github.com/hongminglow/fintrack-be/internal/config"
	"github.com/hongminglow/fintrack-be/internal/logging"
	"github.com/hongminglow/fintrack-be/internal/server"
	"github.com/hongminglow/fintrack-be/internal/storage"
	"github.com/hongminglow/fintrack-be/internal/storage/postgres"
	"github.com/hongminglow/fintrack-be/internal/storage/sqlite"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Debug().Msg("no .env file found; relying on existing environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()

	opts := server.Options{Logger: logger}
	if cfg.AMQPURL != "" {
		client, err := alerts.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("init AMQP client: %w", err)
		}
		defer client.Close()
		opts.Publisher = client
		logger.Info().Str("exchange", cfg.AMQPExchange).Str("queue", cfg.AMQPQueue).Msg("budget alerts publish to AMQP")
	} else {
		logger.Info().Msg("AMQP_URL not set; budget alerts are logged only")
	}

	srv := server.New(cfg, store, opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("backend", cfg.DataBackend).Msg("fintrack backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.DataBackend == config.BackendSQLite {
		s, err := sqlite.NewStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return s, nil
}
