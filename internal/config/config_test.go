package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func loadJSON(t *testing.T, raw string) *Config {
	t.Helper()

	v := viper.New()
	v.SetConfigType("json")
	if raw != "" {
		if err := v.ReadConfig(bytes.NewBufferString(raw)); err != nil {
			t.Fatalf("Failed to read config: %v", err)
		}
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := loadJSON(t, "")

	if cfg.Version != "1" {
		t.Errorf("Expected version to be '1', got '%s'", cfg.Version)
	}
	if cfg.Database.Provider != "postgresql" {
		t.Errorf("Expected database provider to be 'postgresql', got '%s'", cfg.Database.Provider)
	}
	if cfg.Database.URLEnv != "DATABASE_URL" {
		t.Errorf("Expected database url_env to be 'DATABASE_URL', got '%s'", cfg.Database.URLEnv)
	}
	if cfg.Database.Driver != "pgx" {
		t.Errorf("Expected database driver to be 'pgx', got '%s'", cfg.Database.Driver)
	}
	if cfg.Seed.Catalog != "" {
		t.Errorf("Expected no catalog file by default, got '%s'", cfg.Seed.Catalog)
	}
	if cfg.Seed.Concurrency != 1 {
		t.Errorf("Expected seed concurrency to be 1, got %d", cfg.Seed.Concurrency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	cfg := loadJSON(t, `{
		"database": {"provider": "sqlite", "url_env": "MUNCHIES_DB"},
		"seed": {"catalog": "db/custom.yaml", "concurrency": 4, "migrate": true}
	}`)

	if cfg.Database.Provider != "sqlite" {
		t.Errorf("Expected provider 'sqlite', got '%s'", cfg.Database.Provider)
	}
	if cfg.Database.URLEnv != "MUNCHIES_DB" {
		t.Errorf("Expected url_env 'MUNCHIES_DB', got '%s'", cfg.Database.URLEnv)
	}
	if cfg.Seed.Catalog != "db/custom.yaml" {
		t.Errorf("Expected catalog 'db/custom.yaml', got '%s'", cfg.Seed.Catalog)
	}
	if cfg.Seed.Concurrency != 4 {
		t.Errorf("Expected concurrency 4, got %d", cfg.Seed.Concurrency)
	}
	if !cfg.Seed.Migrate {
		t.Error("Expected seed.migrate to be true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "postgres alias", mutate: func(c *Config) { c.Database.Provider = "postgres" }},
		{name: "mysql", mutate: func(c *Config) { c.Database.Provider = "mysql" }},
		{name: "sqlite3 alias", mutate: func(c *Config) { c.Database.Provider = "sqlite3" }},
		{name: "lib/pq driver", mutate: func(c *Config) { c.Database.Driver = "pq" }},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Database.Provider = "oracle" },
			wantErr: "unsupported database provider",
		},
		{
			name:    "unknown postgres driver",
			mutate:  func(c *Config) { c.Database.Driver = "odbc" },
			wantErr: "unsupported postgresql driver",
		},
		{
			name: "driver ignored for sqlite",
			mutate: func(c *Config) {
				c.Database.Provider = "sqlite"
				c.Database.Driver = "odbc"
			},
		},
		{
			name:    "empty url env",
			mutate:  func(c *Config) { c.Database.URLEnv = " " },
			wantErr: "url_env cannot be empty",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Seed.Concurrency = 0 },
			wantErr: "concurrency must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadJSON(t, "")
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := loadJSON(t, `{"database": {"url_env": "MUNCHIES_TEST_DB_URL"}}`)

	t.Setenv("MUNCHIES_TEST_DB_URL", "")
	if _, err := cfg.GetDatabaseURL(); err == nil {
		t.Error("Expected an error when the environment variable is empty")
	}

	t.Setenv("MUNCHIES_TEST_DB_URL", "sqlite://./test.db")
	url, err := cfg.GetDatabaseURL()
	if err != nil {
		t.Fatalf("Expected database URL, got error %v", err)
	}
	if url != "sqlite://./test.db" {
		t.Errorf("Expected 'sqlite://./test.db', got '%s'", url)
	}
}

func TestTemplateIsLoadable(t *testing.T) {
	cfg := loadJSON(t, Template("mysql"))

	if cfg.Database.Provider != "mysql" {
		t.Errorf("Expected provider 'mysql', got '%s'", cfg.Database.Provider)
	}
	if cfg.Seed.Catalog != DefaultCatalog {
		t.Errorf("Expected catalog '%s', got '%s'", DefaultCatalog, cfg.Seed.Catalog)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected template config to be valid, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MUNCHIES_DATABASE_PROVIDER", "sqlite")
	t.Setenv("MUNCHIES_SEED_CONCURRENCY", "4")

	v := viper.New()
	BindEnv(v)

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.Provider != "sqlite" {
		t.Errorf("Expected provider 'sqlite' from the environment, got '%s'", cfg.Database.Provider)
	}
	if cfg.Seed.Concurrency != 4 {
		t.Errorf("Expected concurrency 4 from the environment, got %d", cfg.Seed.Concurrency)
	}
}
