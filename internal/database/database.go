package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPgx = "pgx"
	DriverPq  = "pq"
)

// DB is an open connection pool together with the dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect

	pool *pgxpool.Pool
}

type options struct {
	driver string
}

type Option func(*options)

// WithDriver picks the PostgreSQL driver: "pgx" (default) or "pq".
// Other providers ignore it.
func WithDriver(driver string) Option {
	return func(o *options) {
		o.driver = driver
	}
}

// Open connects to the given provider and verifies the connection with a ping.
func Open(ctx context.Context, provider, url string, opts ...Option) (*DB, error) {
	o := options{driver: DriverPgx}
	for _, opt := range opts {
		opt(&o)
	}

	dialect, err := DialectFor(provider)
	if err != nil {
		return nil, err
	}

	db := &DB{Dialect: dialect}
	switch dialect.Name {
	case PostgreSQL:
		err = db.openPostgres(ctx, url, o.driver)
	case MySQL:
		err = db.openMySQL(url)
	case SQLite:
		err = db.openSQLite(url)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect.Name, Classify(err))
	}
	return db, nil
}

func (db *DB) openPostgres(ctx context.Context, url, driver string) error {
	switch driver {
	case DriverPq:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return fmt.Errorf("failed to open PostgreSQL connection: %w", err)
		}
		conn.SetMaxOpenConns(4)
		conn.SetConnMaxLifetime(15 * time.Minute)
		conn.SetConnMaxIdleTime(3 * time.Minute)
		db.DB = conn
		return nil
	case DriverPgx, "":
	default:
		return fmt.Errorf("unsupported PostgreSQL driver: %q", driver)
	}

	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	config.MaxConns = 4
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	db.pool = pool
	db.DB = stdlib.OpenDBFromPool(pool)
	return nil
}

func (db *DB) openMySQL(url string) error {
	cfg, err := mysql.ParseDSN(MySQLDSN(url))
	if err != nil {
		return fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	// time.Time columns are scanned directly.
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	conn := sql.OpenDB(connector)
	conn.SetMaxOpenConns(4)
	conn.SetConnMaxLifetime(15 * time.Minute)
	conn.SetConnMaxIdleTime(3 * time.Minute)
	db.DB = conn
	return nil
}

func (db *DB) openSQLite(url string) error {
	conn, err := sql.Open("sqlite3", SQLiteDSN(url))
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// A single connection serializes writers, including the ones started by
	// the parallel inventory step, and keeps in-memory databases intact.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	db.DB = conn
	return nil
}

// Close releases the connection pool. It is safe to call more than once.
func (db *DB) Close() error {
	var err error
	if db.DB != nil {
		err = db.DB.Close()
	}
	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
	return err
}

// MySQLDSN converts a mysql:// URL into the driver's user:pass@tcp(host)/db form.
// Anything not starting with mysql:// is returned unchanged.
func MySQLDSN(url string) string {
	if !strings.HasPrefix(url, "mysql://") {
		return url
	}
	dsn := strings.TrimPrefix(url, "mysql://")

	atIndex := strings.LastIndex(dsn, "@")
	if atIndex <= 0 {
		return dsn
	}
	credentials := dsn[:atIndex]
	remainder := dsn[atIndex+1:]

	slashIndex := strings.Index(remainder, "/")
	if slashIndex <= 0 {
		return dsn
	}
	hostPort := remainder[:slashIndex]
	dbAndParams := remainder[slashIndex+1:]

	replacer := strings.NewReplacer(
		"ssl-mode=REQUIRED", "tls=skip-verify",
		"ssl-mode=DISABLED", "tls=false",
		"ssl-mode=VERIFY_CA", "tls=true",
		"ssl-mode=VERIFY_IDENTITY", "tls=true",
		"sslmode=require", "tls=skip-verify",
		"sslmode=disable", "tls=false",
		"sslmode=verify-ca", "tls=true",
		"sslmode=verify-full", "tls=true",
	)
	return fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, replacer.Replace(dbAndParams))
}

// SQLiteDSN strips the sqlite:// scheme and turns on foreign keys, a busy
// timeout and WAL unless the URL already sets its own parameters.
func SQLiteDSN(url string) string {
	path := strings.TrimPrefix(url, "sqlite://")
	path = strings.TrimPrefix(path, "sqlite3://")
	if strings.Contains(path, "?") {
		return path
	}
	if path == ":memory:" {
		return path + "?_foreign_keys=on"
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}
