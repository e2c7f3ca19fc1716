package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var funnelCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Show stage counts and conversion of a pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		pipelineID, _ := cmd.Flags().GetString("pipeline")
		pipelineID, err := resolvePipeline(ctx, pipelineID)
		if err != nil {
			return err
		}
		stages, err := api.Funnel(ctx, pipelineID)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(stages)
			return nil
		}
		summary, err := api.PipelineAnalytics(ctx, pipelineID)
		if err != nil {
			return err
		}
		fmt.Print(renderFunnel(stages))
		fmt.Println(mutedStyle.Render(fmt.Sprintf("total %d, active %d, completed %d, avg duration %s",
			summary.TotalDeals, summary.ActiveDeals, summary.CompletedDeals, summary.AverageDealDuration)))
		return nil
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show deals created and completed per day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		period, _ := cmd.Flags().GetString("period")
		from, err := dateFlag(cmd, "from")
		if err != nil {
			return err
		}
		to, err := dateFlag(cmd, "to")
		if err != nil {
			return err
		}
		if from != nil || to != nil {
			if from == nil || to == nil {
				return fmt.Errorf("--from and --to go together")
			}
			period = "custom"
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		points, err := api.Trend(ctx, period, from, to)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(points)
			return nil
		}
		fmt.Print(renderTrend(points))
		return nil
	},
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("--%s: expected YYYY-MM-DD", name)
	}
	return &t, nil
}

func init() {
	funnelCmd.Flags().String("pipeline", "", "pipeline id (default from config or the first active one)")
	trendCmd.Flags().String("period", "30days", "7days, 30days or 90days")
	trendCmd.Flags().String("from", "", "custom range start, YYYY-MM-DD")
	trendCmd.Flags().String("to", "", "custom range end, YYYY-MM-DD")
}
