package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"propertystore/internal/client"
	"propertystore/internal/pipeline"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the deal board of a pipeline",
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
		bc := client.NewBoardController(api, pipelineID)
		if err := bc.Load(ctx); err != nil {
			return err
		}
		bc.SetFilter(filterFromFlags(cmd))

		if jsonOutput {
			printJSON(bc.Lanes())
			return nil
		}
		fmt.Println(renderBoard(bc.Lanes()))
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <deal-id> <stage-id>",
	Short: "Move a deal to another stage of its pipeline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		dealID, stageID := args[0], args[1]
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		deal, err := api.Deal(ctx, dealID)
		if err != nil {
			return err
		}
		bc := client.NewBoardController(api, deal.PipelineID)
		if err := bc.Load(ctx); err != nil {
			return err
		}

		var note *string
		if n, _ := cmd.Flags().GetString("note"); n != "" {
			note = &n
		}
		moved, err := bc.OnReorder(ctx, deal.CurrentStageID, stageID, dealID, note)
		if errors.Is(err, pipeline.ErrDealClosed) {
			return fmt.Errorf("deal %s is closed and cannot be moved", dealID)
		}
		if err != nil {
			return err
		}
		if !moved {
			fmt.Println("Deal is already in this stage")
			return nil
		}
		if jsonOutput {
			printJSON(bc.Lanes())
			return nil
		}
		fmt.Printf("Moved %s\n", dealID)
		fmt.Println(renderBoard(bc.Lanes()))
		return nil
	},
}

func filterFromFlags(cmd *cobra.Command) pipeline.Filter {
	f := pipeline.DefaultFilter()
	f.Search, _ = cmd.Flags().GetString("search")
	f.ClientID, _ = cmd.Flags().GetString("client")
	f.OnlyOverdue, _ = cmd.Flags().GetBool("overdue")
	if hide, _ := cmd.Flags().GetBool("hide-completed"); hide {
		f.ShowCompleted = false
	}
	return f
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "title contains (case-insensitive)")
	cmd.Flags().String("client", "", "only deals of this client id")
	cmd.Flags().Bool("overdue", false, "only overdue deals")
	cmd.Flags().Bool("hide-completed", false, "hide closed deals")
}

func init() {
	boardCmd.Flags().String("pipeline", "", "pipeline id (default from config or the first active one)")
	addFilterFlags(boardCmd)
	moveCmd.Flags().String("note", "", "note stored with the transition")
}
