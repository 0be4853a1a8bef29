package errorx

import (
	"errors"
	"fmt"
)

// Stable error codes returned to callers.
const (
	CodeDBFailed              = "DB_FAILED"
	CodeNoAvailableConnection = "DB_NO_AVAILABLE_CONNECTION"
	CodeInitFailed            = "DB_INIT_FAILED"
)

var (
	// ErrPoolExhausted - no connection could be leased before the acquisition deadline.
	ErrPoolExhausted = errors.New("connection pool exhausted")
	// ErrConnectFailed - the pool could not open a connection to the server.
	ErrConnectFailed = errors.New("connection failed")
	// ErrNoAvailableConnection - the failover protocol found no writable primary connection.
	ErrNoAvailableConnection = errors.New("no available connection")
)

// GENERAL ERROR:

// GeneralError - General App Error.
type GeneralError struct {
	message string
	err     error
}

// NewGeneralError - GeneralError constructor.
func NewGeneralError(msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewGeneralErrorWrapper - GeneralError constructor for wrapper of another error.
func NewGeneralErrorWrapper(err error, msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *GeneralError) Error() string {
	if ge.err != nil {
		return fmt.Errorf("%s # Error wrap: %w", ge.message, ge.err).Error()
	}

	return ge.message
}

// Unwrap - return the wrapped error.
func (ge *GeneralError) Unwrap() error {
	return ge.err
}

// DATABASE ERROR

// DatabaseError - database setup error.
type DatabaseError struct {
	message string
	err     error
}

// NewDatabaseError - DatabaseError constructor.
func NewDatabaseError(msg string, args ...any) *DatabaseError {
	return &DatabaseError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewDatabaseErrorWrapper - DatabaseError constructor for wrapper of another error.
func NewDatabaseErrorWrapper(err error, msg string, args ...any) *DatabaseError {
	return &DatabaseError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *DatabaseError) Error() string {
	if ge.err != nil {
		return fmt.Errorf("%s: %w", ge.message, ge.err).Error()
	}

	return ge.message
}

// Unwrap - return the wrapped error.
func (ge *DatabaseError) Unwrap() error {
	return ge.err
}

// CLASSIFIED ERROR

// ClassifiedError is the unified terminal error returned by query and transaction calls.
//
// The message embeds the driver diagnostics (code, number, state, statement) so that the
// error alone is enough to correlate with the log line emitted when it was built. The
// underlying error stays reachable through errors.Unwrap.
type ClassifiedError struct {
	code          string
	message       string
	correlationID string
	err           error
}

// NewClassifiedError - ClassifiedError constructor.
func NewClassifiedError(code, correlationID string, err error, msg string, args ...any) *ClassifiedError {
	return &ClassifiedError{
		code:          code,
		message:       fmt.Sprintf(msg, args...),
		correlationID: correlationID,
		err:           err,
	}
}

// Code - machine readable error code.
func (ce *ClassifiedError) Code() string {
	return ce.code
}

// Message - human readable message.
func (ce *ClassifiedError) Message() string {
	return ce.message
}

// CorrelationID - identifier supplied by the caller of the failed operation.
func (ce *ClassifiedError) CorrelationID() string {
	return ce.correlationID
}

// Error - return the error string.
func (ce *ClassifiedError) Error() string {
	return ce.message
}

// Unwrap - return the underlying driver or operation error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.err
}

// NO AVAILABLE CONNECTION ERROR

// NoAvailableConnectionError is returned when every candidate of the primary pool was
// read-only or invalid during failover resolution.
type NoAvailableConnectionError struct {
	database      string
	correlationID string
	attempts      int
	err           error
}

// NewNoAvailableConnectionError - NoAvailableConnectionError constructor. err is the last
// failure observed while draining the pool, it may be nil.
func NewNoAvailableConnectionError(database, correlationID string, attempts int, err error) *NoAvailableConnectionError {
	return &NoAvailableConnectionError{
		database:      database,
		correlationID: correlationID,
		attempts:      attempts,
		err:           err,
	}
}

// Code - machine readable error code.
func (ne *NoAvailableConnectionError) Code() string {
	return CodeNoAvailableConnection
}

// Database - logical database name.
func (ne *NoAvailableConnectionError) Database() string {
	return ne.database
}

// CorrelationID - identifier supplied by the caller of the failed operation.
func (ne *NoAvailableConnectionError) CorrelationID() string {
	return ne.correlationID
}

// Attempts - number of primary candidates tried.
func (ne *NoAvailableConnectionError) Attempts() int {
	return ne.attempts
}

// Error - return the error string.
func (ne *NoAvailableConnectionError) Error() string {
	msg := fmt.Sprintf("[%s] No more connections... %d candidates tried", ne.database, ne.attempts)
	if ne.err != nil {
		return fmt.Sprintf("%s: %v", msg, ne.err)
	}

	return msg
}

// Is - matches ErrNoAvailableConnection.
func (ne *NoAvailableConnectionError) Is(target error) bool {
	return target == ErrNoAvailableConnection
}

// Unwrap - return the last failure observed.
func (ne *NoAvailableConnectionError) Unwrap() error {
	return ne.err
}

// INITIALIZATION ERROR

// InitializationError - fatal startup error, the service must not serve traffic.
type InitializationError struct {
	database string
	message  string
	err      error
}

// NewInitializationError - InitializationError constructor.
func NewInitializationError(database string, err error, msg string, args ...any) *InitializationError {
	return &InitializationError{database: database, message: fmt.Sprintf(msg, args...), err: err}
}

// Code - machine readable error code.
func (ie *InitializationError) Code() string {
	return CodeInitFailed
}

// Database - logical database name.
func (ie *InitializationError) Database() string {
	return ie.database
}

// Error - return the error string.
func (ie *InitializationError) Error() string {
	if ie.err != nil {
		return fmt.Sprintf("[%s] %s: %v", ie.database, ie.message, ie.err)
	}

	return fmt.Sprintf("[%s] %s", ie.database, ie.message)
}

// Unwrap - return the wrapped error.
func (ie *InitializationError) Unwrap() error {
	return ie.err
}

// POOL ERROR

// PoolError - raised by a pool collaborator when a connection cannot be leased.
// It matches ErrPoolExhausted or ErrConnectFailed through errors.Is.
type PoolError struct {
	kind    error
	message string
	err     error
}

// NewPoolExhaustedError - PoolError constructor for acquisition timeouts.
func NewPoolExhaustedError(err error, msg string, args ...any) *PoolError {
	return &PoolError{kind: ErrPoolExhausted, message: fmt.Sprintf(msg, args...), err: err}
}

// NewConnectFailedError - PoolError constructor for connection failures.
func NewConnectFailedError(err error, msg string, args ...any) *PoolError {
	return &PoolError{kind: ErrConnectFailed, message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (pe *PoolError) Error() string {
	if pe.err != nil {
		return fmt.Sprintf("%s: %v: %v", pe.message, pe.kind, pe.err)
	}

	return fmt.Sprintf("%s: %v", pe.message, pe.kind)
}

// Is - matches the pool error kind.
func (pe *PoolError) Is(target error) bool {
	return target == pe.kind
}

// Unwrap - return the wrapped error.
func (pe *PoolError) Unwrap() error {
	return pe.err
}
