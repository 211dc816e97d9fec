package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tradecraft/config"
	"tradecraft/internal/adapters/logger"
	"tradecraft/internal/adapters/sqlite"
	"tradecraft/internal/app"
	"tradecraft/internal/ports"
)

var rootCmd = &cobra.Command{
	Use:   "tradecraft",
	Short: "Personal trading journal with performance analytics",
	Long: `Tradecraft is a personal trading journal: it records trades as ordered
buy/sell execution legs and computes performance analytics over them.

Subcommands:
  seed   - Populate the database with deterministic sample trades
  stats  - Print portfolio statistics for a date range
  curve  - Print the cumulative-P&L equity curve for a date range`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var dbPathFlag string

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPathFlag, "db", "d", "", "path to SQLite journal DB (overrides config)")
}

// bootstrap wires config, logger, repository and service in the order the
// application expects. The returned cleanup closes the repository.
func bootstrap() (*app.JournalService, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}

	var appLogger ports.Logger
	if cfg.LogFormat == config.LogFormatZap {
		zl, err := logger.NewZapLogger(cfg.LogLevel)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("initialize logger: %w", err)
		}
		appLogger = zl
	} else {
		appLogger = logger.NewStdLogger(cfg.LogLevel)
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize repository: %w", err)
	}

	service, err := app.NewJournalService(appLogger, repo)
	if err != nil {
		repo.Close()
		return nil, nil, nil, fmt.Errorf("initialize service: %w", err)
	}
	cleanup := func() { _ = repo.Close() }
	return service, cfg, cleanup, nil
}
