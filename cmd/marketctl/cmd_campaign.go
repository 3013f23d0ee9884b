package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"marketpush/internal/app"
	"marketpush/internal/domain"
	"marketpush/internal/workers/campaign"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Generate push or email content for many users",
	Long: `Generates content for every user concurrently. A failing user is reported in
its result and does not stop the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		channel := domain.Channel(strings.ToUpper(campCh))
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			runner := a.Campaign
			if campConc > 0 {
				runner = campaign.NewRunner(a.Log, a.Generation, campConc)
			}
			results, err := runner.Run(ctx, campUsers, channel)
			if err != nil && results == nil {
				return err
			}
			if perr := printJSON(cmd.OutOrStdout(), map[string]any{
				"stats":   campaign.Summarize(results),
				"results": results,
			}); perr != nil {
				return perr
			}
			return err
		})
	},
}
