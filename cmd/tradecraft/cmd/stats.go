package cmd

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"tradecraft/internal/analytics"
	"tradecraft/internal/filter"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print portfolio statistics for a date range",
	Long: `Stats summarizes the filtered journal: win rate, total P&L, expectancy,
profit factor, streaks, hold times and per-tag/per-symbol breakdowns.

Examples:
  tradecraft stats --range this_week
  tradecraft stats --range all --tags momentum,swing --symbols AAPL`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var (
	rangeFlag   string
	tagsFlag    []string
	symbolsFlag []string
)

func init() {
	rootCmd.AddCommand(statsCmd)
	for _, c := range []*cobra.Command{statsCmd, curveCmd} {
		c.Flags().StringVarP(&rangeFlag, "range", "r", string(filter.RangeAll),
			"quick range: all|today|yesterday|this_week|last_week|this_month|last_month")
		c.Flags().StringSliceVar(&tagsFlag, "tags", nil, "keep trades carrying at least one of these tags")
		c.Flags().StringSliceVar(&symbolsFlag, "symbols", nil, "keep trades in any of these symbols")
	}
}

func filterSpec() filter.Spec {
	return filter.Spec{
		QuickRange: filter.QuickRange(rangeFlag),
		Tags:       tagsFlag,
		Symbols:    symbolsFlag,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	service, _, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := service.Summary(context.Background(), filterSpec())
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	fmt.Printf("Trades:        %d (%d wins, %d losses)\n", stats.TotalTrades, stats.Wins, stats.Losses)
	fmt.Printf("Total P&L:     $%.2f\n", stats.TotalPnL)
	fmt.Printf("Win rate:      %s\n", stats.WinRate)
	fmt.Printf("Avg win/loss:  $%.2f / $%.2f\n", stats.AvgWin, stats.AvgLoss)
	fmt.Printf("Expectancy:    $%.2f\n", stats.Expectancy)
	fmt.Printf("Profit factor: %s\n", formatProfitFactor(stats.ProfitFactor))
	fmt.Printf("Streaks:       %d wins / %d losses\n", stats.WinStreak, stats.LossStreak)
	fmt.Printf("Top win/loss:  $%.2f / $%.2f\n", stats.TopWin, stats.TopLoss)
	fmt.Printf("Avg hold:      %s (wins) / %s (losses)\n",
		analytics.FormatHold(stats.AvgWinHold), analytics.FormatHold(stats.AvgLossHold))
	fmt.Printf("Avg daily vol: %.2f trades/day, avg size %.1f\n", stats.AvgDailyVol, stats.AvgSize)

	printBreakdown("By tag", stats.ByTag)
	printBreakdown("By symbol", stats.BySymbol)
	return nil
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", pf)
}

func printBreakdown(title string, rows []analytics.Breakdown) {
	if len(rows) == 0 {
		return
	}
	fmt.Printf("\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	for _, row := range rows {
		fmt.Printf("  %-16s %4d trades  $%10.2f  %6.2f%%  (wtd %6.2f%%)\n",
			row.Label, row.Trades, row.PnL, row.AvgPct, row.WeightedPct)
	}
}
