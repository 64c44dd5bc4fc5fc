package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/cli"
	"spendlog/internal/config"
	"spendlog/internal/log"
	"spendlog/internal/storage"
	"spendlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open mirror database",
			log.FieldError, err,
			"db_path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client := dialBroker(ctx, logger, cfg)
	if client == nil {
		logger.Info("Shutdown requested before the broker came up")
		return
	}
	defer client.Close()

	mirror := worker.NewMirrorWorker(repo)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeEventsWithRetry(gctx, func(event *amqp.TransactionEvent) error {
			return mirror.HandleEvent(gctx, event)
		})
	})

	logger.Info("Mirror worker started",
		log.FieldQueue, cfg.AMQPQueue,
		"db_path", cfg.SQLiteDBPath)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// dialBroker retries the initial connection until it succeeds or shutdown is
// requested. Reconnects after this point belong to the consume loop.
func dialBroker(ctx context.Context, logger *log.Logger, cfg *config.Config) *amqp.Client {
	for {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err == nil {
			return client
		}
		logger.Warn("AMQP broker not reachable, retrying",
			log.FieldError, err,
			"retry_in", cfg.AMQPReconnectInterval)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.AMQPReconnectInterval):
		}
	}
}
