package dbx

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
)

// Classification is the outcome of Classify.
type Classification int

const (
	// ClassTerminal - wrap as DB_FAILED and give up.
	ClassTerminal Classification = iota
	// ClassFailover - the primary may have been demoted, run the failover protocol.
	ClassFailover
	// ClassPassThrough - already part of the layer's error taxonomy, return it unchanged.
	ClassPassThrough
)

func (c Classification) String() string {
	switch c {
	case ClassFailover:
		return "failover"
	case ClassPassThrough:
		return "pass-through"
	default:
		return "terminal"
	}
}

// Classify walks the error tree and stops at the first error it recognises. Joined errors
// are visited depth first, in the order errors.As uses, so the driver error found here is
// the one failWith reports.
//
// A ClassifiedError or NoAvailableConnectionError met first is passed through even when it
// wraps a failover-indicative driver error, so feeding a classified error back in never
// triggers a second failover or a second wrap.
func Classify(err error) Classification {
	class, _ := classify(err)

	return class
}

func classify(err error) (Classification, bool) {
	switch typed := err.(type) {
	case nil:
		return ClassTerminal, false
	case *errorx.ClassifiedError, *errorx.NoAvailableConnectionError:
		return ClassPassThrough, true
	case *DriverError:
		if typed.Kind.IsFailover() {
			return ClassFailover, true
		}

		return ClassTerminal, true
	}

	switch wrapper := err.(type) {
	case interface{ Unwrap() error }:
		return classify(wrapper.Unwrap())
	case interface{ Unwrap() []error }:
		for _, e := range wrapper.Unwrap() {
			if class, ok := classify(e); ok {
				return class, true
			}
		}
	}

	return ClassTerminal, false
}

// passThrough returns the taxonomy error Classify stopped at, nil when a driver error comes
// first or there is none.
func passThrough(err error) error {
	switch typed := err.(type) {
	case *errorx.ClassifiedError, *errorx.NoAvailableConnectionError:
		return typed
	case *DriverError:
		return nil
	}

	switch wrapper := err.(type) {
	case interface{ Unwrap() error }:
		if found := passThrough(wrapper.Unwrap()); found != nil {
			return found
		}
	case interface{ Unwrap() []error }:
		for _, e := range wrapper.Unwrap() {
			if found := passThrough(e); found != nil {
				return found
			}
		}
	}

	return nil
}

// driverFields are the log fields describing a driver error.
func driverFields(de *DriverError) logx.Fields {
	return logx.Fields{
		"type":     "driver error",
		"kind":     de.Kind.String(),
		"code":     de.Code,
		"errno":    de.Number,
		"sqlState": de.State,
		"sql":      de.SQL,
	}
}

// failWith builds the terminal result for err: taxonomy errors are passed through, anything
// else becomes a DB_FAILED ClassifiedError. Both branches log at error severity.
func (db *Database[C]) failWith(ctx context.Context, log logx.Logger, correlationID string, err error) error {
	if Classify(err) == ClassPassThrough {
		pass := passThrough(err)
		if pass == nil {
			pass = err
		}
		log.With(logx.Fields{"type": "classified error"}).LogError(ctx, fmt.Sprintf("[%s] %s", db.name, pass.Error()), err)

		return pass
	}

	var de *DriverError
	if errors.As(err, &de) {
		msg := fmt.Sprintf("[%s] query failed. code:%s no:%d state:%s sql:%s msg:%s",
			db.name, de.Code, de.Number, de.State, de.SQL, de.Message)
		log.With(driverFields(de)).LogError(ctx, msg, err)

		return errorx.NewClassifiedError(errorx.CodeDBFailed, correlationID, err, "%s", msg)
	}

	log.With(logx.Fields{"type": "operation error"}).LogError(ctx, err.Error(), err)

	return errorx.NewClassifiedError(errorx.CodeDBFailed, correlationID, err, "%s", err.Error())
}
