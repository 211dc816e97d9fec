package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the cumulative-P&L equity curve for a date range",
	Long: `Curve prints the zero-filled cumulative P&L series for the filtered
journal: hourly buckets for single-day ranges (today, yesterday), daily
buckets otherwise.

Example:
  tradecraft curve --range this_month`,
	Args: cobra.NoArgs,
	RunE: runCurve,
}

func init() {
	rootCmd.AddCommand(curveCmd)
}

func runCurve(cmd *cobra.Command, args []string) error {
	service, _, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	labels, cumulative, err := service.Curve(context.Background(), filterSpec())
	if err != nil {
		return fmt.Errorf("build curve: %w", err)
	}
	if len(labels) == 0 {
		fmt.Println("No closed trades in range.")
		return nil
	}
	for i, label := range labels {
		fmt.Printf("%s  $%10.2f\n", label, cumulative[i])
	}
	return nil
}
