package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rana718/munchies/internal/catalog"
	"github.com/Rana718/munchies/internal/database"
	"github.com/Rana718/munchies/internal/seeder"
	"github.com/Rana718/munchies/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	seedCatalog     string
	seedConcurrency int
	seedMigrate     bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with baseline and example data",
	Long: `Write the seed catalog into the database: system settings, a test user
with preferences, inventory items, a recipe, a meal plan and a shopping list.

Every record is upserted by a stable key, so the command can run any number
of times. Existing records are left as they are; settings are overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("catalog") {
			cfg.Seed.Catalog = seedCatalog
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Seed.Concurrency = seedConcurrency
		}
		if cmd.Flags().Changed("migrate") {
			cfg.Seed.Migrate = seedMigrate
		}

		cat, err := catalog.Load(cfg.Seed.Catalog)
		if err != nil {
			return fmt.Errorf("failed to load seed catalog: %w", err)
		}

		ctx := cmd.Context()
		open := func(ctx context.Context) (store.Store, error) {
			st, err := openStore(ctx, cfg)
			if err != nil {
				return nil, err
			}
			if cfg.Seed.Migrate {
				if err := database.Migrate(ctx, st.DB()); err != nil {
					st.Close()
					return nil, err
				}
			}
			return st, nil
		}

		color.Cyan("🌱 Starting database seeding...")

		report, err := seeder.Seed(ctx, open, cat,
			seeder.WithLogger(newLogger(nil)),
			seeder.WithConcurrency(cfg.Seed.Concurrency),
		)
		if err != nil {
			color.Red("❌ Error during database seeding: %v", err)
			printSeedHint(err)
			return err
		}

		printReport(report)
		color.Green("✅ Database seeding completed successfully!")
		return nil
	},
}

func printReport(report *seeder.Report) {
	for _, res := range report.Steps {
		switch {
		case res.Updated > 0:
			color.White("  %-14s %d written", res.Step, res.Updated)
		case res.Created > 0:
			color.Green("  %-14s %d created, %d already present", res.Step, res.Created, res.Existing)
		default:
			color.White("  %-14s %d already present", res.Step, res.Existing)
		}
	}
}

func printSeedHint(err error) {
	switch {
	case errors.Is(err, database.ErrConnectivity):
		color.Yellow("💡 Check that the database is running and the URL is correct")
	case errors.Is(err, database.ErrConstraint):
		color.Yellow("💡 The schema may be out of date, try: munchies migrate")
	case errors.Is(err, catalog.ErrInvalidCatalog):
		color.Yellow("💡 Validate the catalog with: munchies catalog")
	}
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedCatalog, "catalog", "", "Seed catalog file (default: built-in catalog)")
	seedCmd.Flags().IntVar(&seedConcurrency, "concurrency", 1, "Inventory items written in parallel")
	seedCmd.Flags().BoolVar(&seedMigrate, "migrate", false, "Create missing tables before seeding")
}
