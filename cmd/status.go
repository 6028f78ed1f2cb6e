package cmd

import (
	"fmt"

	"github.com/Rana718/munchies/internal/database"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts per table",
	Long: `Connect to the configured database and print the number of rows in
every table of the schema. Useful to check what a seed run left behind.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		counts, err := st.CountRows(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read table status: %w", err)
		}

		color.Cyan("📊 %s database", st.DB().Dialect.Name)
		for _, table := range database.Tables {
			n := counts[table]
			if n == 0 {
				color.Yellow("  %-22s %d", table, n)
				continue
			}
			fmt.Printf("  %-22s %d\n", table, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
