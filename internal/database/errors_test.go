package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "pgx unique violation", err: &pgconn.PgError{Code: "23505"}, want: ErrConstraint},
		{name: "pgx foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: ErrConstraint},
		{name: "pgx invalid text", err: &pgconn.PgError{Code: "22P02"}, want: ErrInvalidData},
		{name: "pgx admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: ErrConnectivity},
		{name: "pq connection failure", err: &pq.Error{Code: "08006"}, want: ErrConnectivity},
		{name: "pq not null violation", err: &pq.Error{Code: "23502"}, want: ErrConstraint},
		{name: "mysql duplicate entry", err: &mysql.MySQLError{Number: 1062}, want: ErrConstraint},
		{name: "mysql missing parent", err: &mysql.MySQLError{Number: 1452}, want: ErrConstraint},
		{name: "mysql data too long", err: &mysql.MySQLError{Number: 1406}, want: ErrInvalidData},
		{name: "mysql access denied", err: &mysql.MySQLError{Number: 1045}, want: ErrConnectivity},
		{name: "bad connection", err: driver.ErrBadConn, want: ErrConnectivity},
		{name: "deadline", err: fmt.Errorf("ping: %w", context.DeadlineExceeded), want: ErrConnectivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("Expected the driver error to stay reachable, got %v", got)
			}
		})
	}
}

func TestClassifyLeavesUnknownErrorsAlone(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Expected nil for nil")
	}

	plain := errors.New("boom")
	if got := Classify(plain); got != plain {
		t.Errorf("Expected the error unchanged, got %v", got)
	}

	if got := Classify(&pgconn.PgError{Code: "42P01"}); errors.Is(got, ErrConstraint) || errors.Is(got, ErrConnectivity) {
		t.Errorf("Expected an undefined table to stay unclassified, got %v", got)
	}

	once := Classify(&mysql.MySQLError{Number: 1062})
	if twice := Classify(once); twice != once {
		t.Error("Expected an already classified error to be returned as is")
	}
}

func TestClassifySQLiteConstraint(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, SQLite, "sqlite://"+filepath.Join(t.TempDir(), "classify.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO inventory_items (id, user_id, name, category, quantity, unit, location, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)",
		"x", "nobody", "X", "misc", 1, "piece", "pantry")
	if err == nil {
		t.Fatal("Expected a foreign key violation")
	}

	if got := Classify(err); !errors.Is(got, ErrConstraint) {
		t.Errorf("Expected ErrConstraint, got %v", got)
	}
}

func TestOpenRejectsUnknownProvider(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "oracle://localhost"); err == nil {
		t.Error("Expected an error for an unsupported provider")
	}
}
