package cmd

import (
	"github.com/Rana718/munchies/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var catalogFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate a seed catalog",
	Long: `Load and validate a seed catalog without touching the database and print
a short summary of what a seed run would write.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := catalogFile
		if !cmd.Flags().Changed("catalog") {
			path = viper.GetString("seed.catalog")
		}

		cat, err := catalog.Load(path)
		if err != nil {
			return err
		}

		source := path
		if source == "" {
			source = "built-in catalog"
		}
		color.Green("✅ %s is valid", source)
		color.White("   %s", cat.Summary())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().StringVar(&catalogFile, "catalog", "", "Seed catalog file (default: built-in catalog)")
}
