package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tradecraft/internal/sample"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with deterministic sample trades",
	Long: `Seed generates reproducible sample trades (stock buys with same-day sells,
a share left open) over the configured number of past weekdays and stores
them in the journal database. The same seed always produces the same data.

Example:
  tradecraft seed --seed 42 --days 30`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var (
	seedValue        int64
	seedDays         int
	seedTradesPerDay int
)

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 uses the configured default)")
	seedCmd.Flags().IntVar(&seedDays, "days", 0, "calendar days to cover (0 uses the configured default)")
	seedCmd.Flags().IntVar(&seedTradesPerDay, "per-day", 0, "trades per weekday (0 uses the configured default)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	service, cfg, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	genCfg := sample.Config{
		Seed:         cfg.SampleSeed,
		Days:         cfg.SampleDays,
		TradesPerDay: cfg.SampleTradesPerDay,
	}
	if seedValue != 0 {
		genCfg.Seed = seedValue
	}
	if seedDays != 0 {
		genCfg.Days = seedDays
	}
	if seedTradesPerDay != 0 {
		genCfg.TradesPerDay = seedTradesPerDay
	}

	trades, err := sample.Generate(genCfg)
	if err != nil {
		return fmt.Errorf("generate sample data: %w", err)
	}
	if err := service.Import(context.Background(), trades); err != nil {
		return fmt.Errorf("import sample data: %w", err)
	}
	fmt.Printf("Seeded %d sample trades.\n", len(trades))
	return nil
}
