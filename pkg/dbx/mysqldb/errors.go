package mysqldb

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
)

// Server error numbers the layer reacts to.
const (
	ErOptionPreventsStatement = 1290
	ErReadOnlyMode            = 1836
	ErCantLock                = 1015
	ErServerShutdown          = 1053
)

var errorCodes = map[uint16]string{
	ErOptionPreventsStatement: "ER_OPTION_PREVENTS_STATEMENT",
	ErReadOnlyMode:            "ER_READ_ONLY_MODE",
	ErCantLock:                "ER_CANT_LOCK",
	ErServerShutdown:          "ER_SERVER_SHUTDOWN",
	1045:                      "ER_ACCESS_DENIED_ERROR",
	1049:                      "ER_BAD_DB_ERROR",
	1054:                      "ER_BAD_FIELD_ERROR",
	1062:                      "ER_DUP_ENTRY",
	1064:                      "ER_PARSE_ERROR",
	1146:                      "ER_NO_SUCH_TABLE",
	1205:                      "ER_LOCK_WAIT_TIMEOUT",
	1213:                      "ER_LOCK_DEADLOCK",
	1451:                      "ER_ROW_IS_REFERENCED_2",
	1452:                      "ER_NO_REFERENCED_ROW_2",
}

func kindForNumber(number uint16) dbx.ErrorKind {
	switch number {
	case ErOptionPreventsStatement, ErReadOnlyMode:
		return dbx.KindReadOnly
	case ErCantLock:
		return dbx.KindLockFailed
	case ErServerShutdown:
		return dbx.KindConnectionLost
	default:
		return dbx.KindStatement
	}
}

// translate converts a go-sql-driver/mysql error into a *dbx.DriverError carrying the
// statement text. nil stays nil.
func translate(err error, query string) error {
	if err == nil {
		return nil
	}

	var de *dbx.DriverError
	if errors.As(err, &de) {
		return err
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		code, ok := errorCodes[me.Number]
		if !ok {
			code = "ER_UNKNOWN"
		}

		state := ""
		if me.SQLState != [5]byte{} {
			state = string(me.SQLState[:])
		}

		return &dbx.DriverError{
			Kind:    kindForNumber(me.Number),
			Code:    code,
			Number:  int(me.Number),
			State:   state,
			SQL:     query,
			Message: me.Message,
			Err:     err,
		}
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET):
		return &dbx.DriverError{Kind: dbx.KindConnectionReset, Code: "ECONNRESET", SQL: query, Message: err.Error(), Err: err}
	case errors.Is(err, mysql.ErrInvalidConn), errors.Is(err, driver.ErrBadConn), errors.Is(err, io.ErrUnexpectedEOF):
		return &dbx.DriverError{Kind: dbx.KindConnectionLost, Code: "PROTOCOL_CONNECTION_LOST", SQL: query, Message: err.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &dbx.DriverError{Kind: dbx.KindStatement, Code: "CONTEXT_DONE", SQL: query, Message: err.Error(), Err: err}
	default:
		return &dbx.DriverError{Kind: dbx.KindStatement, Code: "UNKNOWN", SQL: query, Message: err.Error(), Err: err}
	}
}
