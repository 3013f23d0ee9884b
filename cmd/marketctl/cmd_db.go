package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marketpush/internal/adapters/memory"
	"marketpush/internal/adapters/postgres"
	"marketpush/internal/app"
	"marketpush/internal/ports"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the Postgres catalog",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply catalog schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return postgres.Migrate(ctx, app.NewLogger(cfg.Log), cfg.Database.URL)
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog into Postgres",
	Long: `Writes the embedded demo items, events and holidays into Postgres. Event
times are placed relative to now.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		demo, err := memory.NewSeeded(time.Now())
		if err != nil {
			return err
		}
		items, err := demo.ListItems(ctx, ports.ItemFilter{})
		if err != nil {
			return err
		}
		holidays, err := demo.ListHolidays(ctx, "")
		if err != nil {
			return err
		}
		events := demo.Events()

		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Seed(ctx, items, events, holidays); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items, %d events, %d holidays\n", len(items), len(events), len(holidays))
		return nil
	},
}
