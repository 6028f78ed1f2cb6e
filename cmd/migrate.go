package cmd

import (
	"fmt"

	"github.com/Rana718/munchies/internal/database"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migratePrint bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long: `Create every missing table of the Munchies schema. Existing tables are
left untouched, so running it again is harmless.

Use --print to write the DDL for the configured provider to stdout instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if migratePrint {
			dialect, err := database.DialectFor(cfg.Database.Provider)
			if err != nil {
				return err
			}
			fmt.Print(database.RenderSchema(dialect))
			return nil
		}

		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		color.Cyan("📦 Applying %s schema...", st.DB().Dialect.Name)
		if err := database.Migrate(cmd.Context(), st.DB()); err != nil {
			return err
		}
		color.Green("✅ Schema is up to date (%d tables)", len(database.Tables))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the DDL instead of applying it")
}
