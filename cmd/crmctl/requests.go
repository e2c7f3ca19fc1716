package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"propertystore/internal/models"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List incoming requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		status, _ := cmd.Flags().GetString("status")
		list, err := api.Requests(ctx, status)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(list)
			return nil
		}
		if len(list) == 0 {
			fmt.Println("No requests")
			return nil
		}
		for _, r := range list {
			who := shortID(r.ClientID)
			if r.Client != nil {
				who = r.Client.Name + " " + r.Client.Phone
			}
			fmt.Printf("%s  %-12s  %-11s  %s  %s\n",
				r.ID, r.Type, r.Status, r.CreatedAt.Local().Format("2006-01-02"), who)
		}
		return nil
	},
}

var requestStatusCmd = &cobra.Command{
	Use:   "status <request-id> <new|in_progress|completed>",
	Short: "Change the status of a request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		r, err := api.UpdateRequestStatus(ctx, args[0], models.RequestStatus(strings.ToLower(args[1])))
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(r)
			return nil
		}
		fmt.Printf("Request %s is %s\n", r.ID, r.Status)
		return nil
	},
}

var requestPromoteCmd = &cobra.Command{
	Use:   "promote <request-id>",
	Short: "Turn a request into a deal",
	Args:  cobra.ExactArgs(1),
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
		title, _ := cmd.Flags().GetString("title")

		deal, err := api.PromoteRequest(ctx, args[0], models.PromoteRequest{
			Title:          title,
			PipelineID:     pipelineID,
			CurrentStageID: stageID,
		})
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

func init() {
	requestsCmd.Flags().String("status", "", "new, in_progress or completed")
	requestPromoteCmd.Flags().String("pipeline", "", "target pipeline id")
	requestPromoteCmd.Flags().String("stage", "", "initial stage id (default first stage)")
	requestPromoteCmd.Flags().String("title", "", "deal title (default derived from the request)")
	requestsCmd.AddCommand(requestStatusCmd)
	requestsCmd.AddCommand(requestPromoteCmd)
}
