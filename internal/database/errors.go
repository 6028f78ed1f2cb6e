package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrConnectivity = errors.New("database unavailable")
	ErrConstraint   = errors.New("constraint violation")
	ErrInvalidData  = errors.New("invalid data")
)

// Error tags a driver error with one of the kinds above. Both the kind and
// the driver error stay reachable through errors.Is and errors.As.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Classify wraps err in an *Error when its kind can be recognised and returns
// it unchanged otherwise.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	kind := kindOf(err)
	if kind == nil {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

func kindOf(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return sqlStateKind(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return sqlStateKind(string(pqErr.Code))
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1048, 1062, 1169, 1216, 1217, 1451, 1452, 1557, 1586, 3819:
			return ErrConstraint
		case 1264, 1265, 1292, 1366, 1406, 1411:
			return ErrInvalidData
		case 1040, 1045, 1049, 1053, 1205, 2002, 2003, 2006, 2013:
			return ErrConnectivity
		}
		return nil
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrConstraint:
			return ErrConstraint
		case sqlite3.ErrMismatch, sqlite3.ErrRange, sqlite3.ErrTooBig:
			return ErrInvalidData
		case sqlite3.ErrCantOpen, sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr, sqlite3.ErrNotADB:
			return ErrConnectivity
		}
		return nil
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ErrConnectivity
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ErrConnectivity
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrConnectivity
	}

	return nil
}

func sqlStateKind(code string) error {
	if len(code) < 2 {
		return nil
	}
	switch code[:2] {
	case "08", "57":
		return ErrConnectivity
	case "22":
		return ErrInvalidData
	case "23":
		return ErrConstraint
	}
	return nil
}
