// Command spendlog-seed writes a few sample transactions through the
// configured backend, giving a fresh install something to show.
package main

import (
	"context"
	"os"
	"time"

	"spendlog/internal/backend"
	"spendlog/internal/cli"
	"spendlog/internal/core"
	"spendlog/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			log.FieldError, err,
			log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	}()

	day := func(offset int) string {
		return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
	}

	coffee, err := core.NewFood("Starbucks Coffee", "5.45", day(-1), "breakfast", "Downtown")
	if err != nil {
		logger.Error("Failed to build sample transaction", log.FieldError, err)
		os.Exit(1)
	}
	netflix, err := core.New("Netflix Subscription", "15.99", day(-3), "Entertainment")
	if err != nil {
		logger.Error("Failed to build sample transaction", log.FieldError, err)
		os.Exit(1)
	}
	lunch, err := core.NewFood("Lunch at Chipotle", "12.50", day(0), "lunch", "Mall Food Court")
	if err != nil {
		logger.Error("Failed to build sample transaction", log.FieldError, err)
		os.Exit(1)
	}

	samples := []core.Transaction{coffee, netflix, lunch}
	for _, t := range samples {
		if err := result.Store.Append(ctx, t.Flatten()); err != nil {
			logger.Error("Failed to seed transaction",
				log.FieldError, err,
				log.FieldTransactionName, t.Name)
			os.Exit(1)
		}
		logger.Info("Seeded transaction",
			log.FieldTransactionID, t.ID,
			log.FieldTransactionName, t.Name,
			log.FieldAmount, core.FormatAmount(t.Amount),
			log.FieldCategory, t.Category)
	}

	logger.Info("Seed complete",
		"count", len(samples),
		log.FieldBackend, cfg.DataBackend)
}
