package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Rana718/munchies/internal/database"
	"github.com/spf13/viper"
)

const (
	FileName       = "munchies.config.json"
	DefaultURLEnv  = "DATABASE_URL"
	DefaultCatalog = "db/seed.yaml"
)

type Config struct {
	Version  string   `json:"version" mapstructure:"version"`
	Database Database `json:"database" mapstructure:"database"`
	Seed     Seed     `json:"seed" mapstructure:"seed"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
	Driver   string `json:"driver,omitempty" mapstructure:"driver"` // postgres only: pgx or pq
}

type Seed struct {
	// Catalog is the seed catalog file. Empty means the built-in catalog.
	Catalog     string `json:"catalog,omitempty" mapstructure:"catalog"`
	Concurrency int    `json:"concurrency,omitempty" mapstructure:"concurrency"`
	Migrate     bool   `json:"migrate,omitempty" mapstructure:"migrate"`
}

// EnvPrefix prefixes environment overrides, e.g. MUNCHIES_DATABASE_PROVIDER.
const EnvPrefix = "MUNCHIES"

var keys = []string{
	"database.provider",
	"database.url_env",
	"database.driver",
	"seed.catalog",
	"seed.concurrency",
	"seed.migrate",
}

// BindEnv lets MUNCHIES_* environment variables override every config key,
// also when no config file exists.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		v.BindEnv(key)
	}
}

// Load reads the configuration bound to the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals v and fills in defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = database.PostgreSQL
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = DefaultURLEnv
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = database.DriverPgx
	}
	if cfg.Seed.Concurrency <= 0 {
		cfg.Seed.Concurrency = 1
	}

	return &cfg, nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	provider, err := database.NormalizeProvider(c.Database.Provider)
	if err != nil {
		return fmt.Errorf("%w. Supported providers: [postgresql mysql sqlite]", err)
	}

	if provider == database.PostgreSQL {
		switch c.Database.Driver {
		case database.DriverPgx, database.DriverPq:
		default:
			return fmt.Errorf("unsupported postgresql driver: %s. Supported drivers: [pgx pq]", c.Database.Driver)
		}
	}

	if strings.TrimSpace(c.Database.URLEnv) == "" {
		return fmt.Errorf("database.url_env cannot be empty")
	}

	if c.Seed.Concurrency < 1 {
		return fmt.Errorf("seed.concurrency must be at least 1")
	}

	return nil
}

// Template returns the config file written by `munchies init`.
func Template(provider string) string {
	return fmt.Sprintf(`{
  "version": "1",
  "database": {
    "provider": "%s",
    "url_env": "%s"
  },
  "seed": {
    "catalog": "%s",
    "concurrency": 1
  }
}
`, provider, DefaultURLEnv, DefaultCatalog)
}

func IsInitialized() bool {
	_, err := os.Stat(FileName)
	return err == nil
}
