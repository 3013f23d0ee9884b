// Command marketctl runs verification, recommendation and campaign generation
// from the command line against the configured catalog.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"marketpush/internal/app"
	"marketpush/internal/config"
)

var (
	timeout   time.Duration
	logLevel  string
	verifyIn  string
	recUser   string
	recLimit  int
	campUsers []string
	campCh    string
	campConc  int
)

var rootCmd = &cobra.Command{
	Use:           "marketctl",
	Short:         "Operate the marketing content verifier",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")

	verifyCmd.Flags().StringVarP(&verifyIn, "file", "f", "", "Verify request JSON file, - for stdin (required)")
	_ = verifyCmd.MarkFlagRequired("file")

	recommendCmd.Flags().StringVarP(&recUser, "user", "u", "", "User id (required)")
	recommendCmd.Flags().IntVarP(&recLimit, "limit", "n", 10, "Number of items")
	_ = recommendCmd.MarkFlagRequired("user")

	campaignCmd.Flags().StringSliceVar(&campUsers, "users", nil, "Comma-separated user ids (required)")
	campaignCmd.Flags().StringVar(&campCh, "channel", "push", "push or email")
	campaignCmd.Flags().IntVar(&campConc, "concurrency", 0, "Workers, 0 uses CAMPAIGN_WORKERS")
	_ = campaignCmd.MarkFlagRequired("users")

	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbSeedCmd)

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(campaignCmd)
	rootCmd.AddCommand(dbCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "marketctl:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// withApp builds the application for one command and tears it down afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := app.Build(ctx, cfg, app.NewLogger(cfg.Log), nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
