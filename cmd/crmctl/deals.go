package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"propertystore/internal/client"
	"propertystore/internal/models"
	"propertystore/internal/pipeline"
)

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "List deals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		q := client.DealQuery{}
		q.PipelineID, _ = cmd.Flags().GetString("pipeline")
		q.ActiveOnly, _ = cmd.Flags().GetBool("active")
		q.Size, _ = cmd.Flags().GetInt("limit")

		deals, err := api.ListDeals(ctx, q)
		if err != nil {
			return err
		}
		deals = filterFromFlags(cmd).Apply(deals)

		if jsonOutput {
			printJSON(deals)
			return nil
		}
		if len(deals) == 0 {
			fmt.Println("No deals")
			return nil
		}

		names, err := stageNames(ctx, deals)
		if err != nil {
			return err
		}
		fmt.Print(renderDeals(deals, names))

		active, completed := pipeline.PartitionActive(deals)
		overdue, _ := pipeline.PartitionOverdue(active)
		fmt.Println(mutedStyle.Render(fmt.Sprintf("%d active, %d overdue, %d closed", len(active), len(overdue), len(completed))))
		return nil
	},
}

var dealCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Open a new deal for a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		clientID, _ := cmd.Flags().GetString("client")
		pipelineID, _ := cmd.Flags().GetString("pipeline")
		pipelineID, err := resolvePipeline(ctx, pipelineID)
		if err != nil {
			return err
		}
		stageID, _ := cmd.Flags().GetString("stage")
		if stageID == "" {
			stages, err := stagesOf(ctx, pipelineID)
			if err != nil {
				return err
			}
			if len(stages) == 0 {
				return fmt.Errorf("pipeline %s has no stages", pipelineID)
			}
			stageID = stages[0].ID
		}

		req := models.DealRequest{
			Title:          args[0],
			ClientID:       clientID,
			PipelineID:     pipelineID,
			CurrentStageID: stageID,
		}
		if cmd.Flags().Changed("amount") {
			amount, _ := cmd.Flags().GetFloat64("amount")
			req.DealAmount = &amount
		}
		if notes, _ := cmd.Flags().GetString("notes"); notes != "" {
			req.Notes = &notes
		}

		deal, err := api.CreateDeal(ctx, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(deal)
			return nil
		}
		fmt.Printf("Created deal %s %q\n", deal.ID, deal.Title)
		return nil
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <deal-id>",
	Short: "Close a deal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		deal, err := api.CloseDeal(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(deal)
			return nil
		}
		if deal.ClosedAt != nil {
			fmt.Printf("Closed %s at %s\n", deal.ID, deal.ClosedAt.Local().Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("Closed %s\n", deal.ID)
		}
		return nil
	},
}

func init() {
	dealsCmd.Flags().String("pipeline", "", "only deals of this pipeline")
	dealsCmd.Flags().Bool("active", false, "only active deals")
	dealsCmd.Flags().Int("limit", 100, "page size")
	addFilterFlags(dealsCmd)

	dealCreateCmd.Flags().String("client", "", "client id")
	dealCreateCmd.Flags().String("pipeline", "", "pipeline id (default from config or the first active one)")
	dealCreateCmd.Flags().String("stage", "", "initial stage id (default first stage)")
	dealCreateCmd.Flags().Float64("amount", 0, "deal amount")
	dealCreateCmd.Flags().String("notes", "", "free-form notes")
	_ = dealCreateCmd.MarkFlagRequired("client")
	dealsCmd.AddCommand(dealCreateCmd)
}
