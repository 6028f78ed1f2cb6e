package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Rana718/munchies/internal/config"
	"github.com/Rana718/munchies/internal/database"
	"github.com/Rana718/munchies/internal/store"
	"github.com/charmbracelet/log"
)

// newLogger writes structured logs to w, stderr when nil. --verbose lowers
// the level to debug.
func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true, Prefix: "munchies"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// openStore connects to the configured database.
func openStore(ctx context.Context, cfg *config.Config) (*store.SQLStore, error) {
	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Database.Provider, dbURL,
		[]database.Option{database.WithDriver(cfg.Database.Driver)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return st, nil
}
