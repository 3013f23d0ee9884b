package main

import (
	"context"

	"github.com/spf13/cobra"

	"marketpush/internal/app"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print recommendations and signals for a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			items, err := a.Recommend.GetRecommendations(ctx, recUser, recLimit)
			if err != nil {
				return err
			}
			signals, err := a.Recommend.Signals(ctx, recUser)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"userId":          recUser,
				"signals":         signals,
				"recommendations": items,
			})
		})
	},
}
