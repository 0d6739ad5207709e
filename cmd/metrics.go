package cmd

import (
	"context"
	"os"
	"time"

	"github.com/luanzeba/gh-csm/internal/metrics"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show codespace usage and estimated costs",
	Long: `Show every codespace with its machine type, an estimated hourly price,
and for running codespaces the time since last use and the accrued estimate.

Prices are estimates; GitHub's billing is authoritative.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showMetrics(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func showMetrics(ctx context.Context) error {
	codespaces, err := cli.gh.ListCodespaces(ctx)
	if err != nil {
		return err
	}
	if len(codespaces) == 0 {
		cli.out.Info("No codespaces found.")
		return nil
	}
	return metrics.Build(codespaces, time.Now()).Render(os.Stdout)
}
