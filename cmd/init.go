package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rana718/munchies/internal/catalog"
	"github.com/Rana718/munchies/internal/config"
	"github.com/Rana718/munchies/internal/database"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a munchies project",
	Long: `Write munchies.config.json, a .env.example with a sample connection URL
and db/seed.yaml, an editable copy of the built-in seed catalog.

Files that already exist are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := database.PostgreSQL
		flagCount := 0

		if sqliteFlag {
			provider = database.SQLite
			flagCount++
		}
		if postgresqlFlag {
			provider = database.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			provider = database.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
		}

		return initializeProject(".", provider)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Initialize project for SQLite database")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Initialize project for PostgreSQL database")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL database")
}

func initializeProject(dir, provider string) error {
	dialect, err := database.DialectFor(provider)
	if err != nil {
		return err
	}

	envLine := fmt.Sprintf("%s=%s\n", config.DefaultURLEnv, dialect.EnvExample())
	files := []struct {
		path    string
		content []byte
	}{
		{config.FileName, []byte(config.Template(dialect.Name))},
		{".env.example", []byte(envLine)},
		{config.DefaultCatalog, catalog.DefaultBytes()},
	}

	var created, skipped []string
	for _, f := range files {
		path := filepath.Join(dir, f.path)
		if _, err := os.Stat(path); err == nil {
			skipped = append(skipped, f.path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.content, 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", f.path, err)
		}
		created = append(created, f.path)
	}

	if err := handleEnvFile(filepath.Join(dir, ".env"), envLine); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	color.Green("✅ Successfully initialized munchies project with %s database support", dialect.Name)
	fmt.Println()
	if len(created) > 0 {
		fmt.Println("📝 Files created:")
		for _, path := range created {
			fmt.Printf("   %s\n", path)
		}
	}
	for _, path := range skipped {
		fmt.Printf("ℹ️  Skipped %s (already exists)\n", path)
	}

	if os.Getenv(config.DefaultURLEnv) != "" {
		fmt.Println()
		fmt.Printf("ℹ️  Using existing %s from environment\n", config.DefaultURLEnv)
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   munchies migrate   # Create the tables\n")
	fmt.Printf("   munchies seed      # Load the seed catalog\n")

	return nil
}

// handleEnvFile creates .env or appends the database URL to an existing one
// that does not define it yet.
func handleEnvFile(envPath, envLine string) error {
	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(envLine), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, config.DefaultURLEnv) {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}
	existingStr += "\n# Added by munchies\n" + envLine

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
