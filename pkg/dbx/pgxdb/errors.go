package pgxdb

import (
	"context"
	"errors"
	"io"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
)

// SQLSTATE codes the layer reacts to.
const (
	StateReadOnlySQLTransaction = "25006"
	StateLockNotAvailable       = "55P03"
	StateAdminShutdown          = "57P01"
	StateCrashShutdown          = "57P02"
	StateCannotConnectNow       = "57P03"
)

var stateNames = map[string]string{
	StateReadOnlySQLTransaction: "read_only_sql_transaction",
	StateLockNotAvailable:       "lock_not_available",
	StateAdminShutdown:          "admin_shutdown",
	StateCrashShutdown:          "crash_shutdown",
	StateCannotConnectNow:       "cannot_connect_now",
	"08000":                     "connection_exception",
	"08003":                     "connection_does_not_exist",
	"08006":                     "connection_failure",
	"23505":                     "unique_violation",
	"23503":                     "foreign_key_violation",
	"40001":                     "serialization_failure",
	"40P01":                     "deadlock_detected",
	"42601":                     "syntax_error",
	"42P01":                     "undefined_table",
	"42703":                     "undefined_column",
}

func kindForState(state string) dbx.ErrorKind {
	switch {
	case state == StateReadOnlySQLTransaction:
		return dbx.KindReadOnly
	case state == StateLockNotAvailable:
		return dbx.KindLockFailed
	case strings.HasPrefix(state, "08"), state == StateAdminShutdown, state == StateCrashShutdown, state == StateCannotConnectNow:
		return dbx.KindConnectionLost
	default:
		return dbx.KindStatement
	}
}

// translate converts a pgx error into a *dbx.DriverError carrying the statement text.
// nil stays nil.
func translate(err error, query string) error {
	if err == nil {
		return nil
	}

	var de *dbx.DriverError
	if errors.As(err, &de) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code, ok := stateNames[pgErr.Code]
		if !ok {
			code = strings.ToLower(pgErr.Severity) + "_" + pgErr.Code
		}

		return &dbx.DriverError{
			Kind:    kindForState(pgErr.Code),
			Code:    code,
			State:   pgErr.Code,
			SQL:     query,
			Message: pgErr.Message,
			Err:     err,
		}
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET):
		return &dbx.DriverError{Kind: dbx.KindConnectionReset, Code: "ECONNRESET", SQL: query, Message: err.Error(), Err: err}
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF), pgconn.SafeToRetry(err):
		return &dbx.DriverError{Kind: dbx.KindConnectionLost, Code: "connection_lost", SQL: query, Message: err.Error(), Err: err}
	case errors.Is(err, pgx.ErrNoRows):
		return &dbx.DriverError{Kind: dbx.KindStatement, Code: "no_rows", SQL: query, Message: err.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &dbx.DriverError{Kind: dbx.KindStatement, Code: "context_done", SQL: query, Message: err.Error(), Err: err}
	default:
		return &dbx.DriverError{Kind: dbx.KindStatement, Code: "unknown", SQL: query, Message: err.Error(), Err: err}
	}
}
