package dbx

import (
	"fmt"
)

// ErrorKind is the closed set of driver failure variants.
type ErrorKind int

const (
	// KindStatement - any statement failure not listed below.
	KindStatement ErrorKind = iota
	// KindReadOnly - the statement was blocked because the server runs read-only.
	KindReadOnly
	// KindLockFailed - explicit lock acquisition failure.
	KindLockFailed
	// KindConnectionLost - the server went away mid operation.
	KindConnectionLost
	// KindConnectionReset - the peer reset the TCP connection.
	KindConnectionReset
)

func (k ErrorKind) String() string {
	switch k {
	case KindReadOnly:
		return "read-only"
	case KindLockFailed:
		return "lock-failed"
	case KindConnectionLost:
		return "connection-lost"
	case KindConnectionReset:
		return "connection-reset"
	default:
		return "statement"
	}
}

// IsFailover reports whether the kind indicates a primary failover.
func (k ErrorKind) IsFailover() bool {
	return k != KindStatement
}

// DriverError is produced by the backends at the driver boundary. Every error a backend
// Conn returns from a database round trip is either a *DriverError or wraps one.
type DriverError struct {
	Kind    ErrorKind
	Code    string // symbolic code, e.g. ER_OPTION_PREVENTS_STATEMENT
	Number  int    // numeric error number, 0 when the driver has none
	State   string // SQLSTATE
	SQL     string
	Message string
	Err     error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("code:%s no:%d state:%s msg:%s", e.Code, e.Number, e.State, e.Message)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// WithSQL returns a copy carrying the statement text.
func (e *DriverError) WithSQL(sql string) *DriverError {
	cp := *e
	cp.SQL = sql

	return &cp
}
