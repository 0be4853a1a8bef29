package dbx

import (
	"context"
	"fmt"
	"time"

	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
)

const (
	funcQuery       = "query"
	funcTransaction = "transaction"
)

// Operation is the caller's unit of work, run on a leased connection.
//
// After a failover the same Operation may run a second time on a new primary connection.
// Inside Transaction the first run was rolled back; inside Query any statement that
// completed before the failure stays applied, so Query operations must be safe to repeat.
type Operation[C Conn, R any] func(ctx context.Context, conn C) (R, error)

// Query runs op on a connection chosen by the routing policy and releases it afterwards.
//
// Errors returned:
//   - *errorx.PoolError when no connection could be leased (unchanged from the pool).
//   - *errorx.NoAvailableConnectionError when a failover was detected and no writable primary
//     connection was found within the primary pool ceiling.
//   - *errorx.ClassifiedError (code DB_FAILED) for every other failure, or the classified
//     error returned by op itself.
//
// Example Usage:
//
//	count, err := dbx.Query(ctx, db, true, reqID, func(ctx context.Context, conn *mysqldb.Conn) (int, error) {
//	    var n int
//	    return n, conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM orders")
//	})
func Query[C Conn, R any](ctx context.Context, db *Database[C], readOnly bool, correlationID string, op Operation[C, R]) (R, error) {
	return execute(ctx, db, funcQuery, readOnly, correlationID, op)
}

// Transaction runs op inside a transaction: begin, op, commit on success or rollback on
// failure, always before the connection is released. Errors are the same as Query.
func Transaction[C Conn, R any](ctx context.Context, db *Database[C], readOnly bool, correlationID string, op Operation[C, R]) (R, error) {
	return execute(ctx, db, funcTransaction, readOnly, correlationID, op)
}

func execute[C Conn, R any](ctx context.Context, db *Database[C], fn string, readOnly bool, correlationID string, op Operation[C, R]) (R, error) {
	var zero R

	transactional := fn == funcTransaction
	log := db.logger.With(logx.Fields{"func": fn, "correlationId": correlationID})

	role := db.routing.Route(readOnly, transactional, db.replica != nil)
	pool := db.Pool(role)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		log.LogError(ctx, fmt.Sprintf("[%s] acquire from %s pool failed", db.name, role), err)
		return zero, err
	}

	result, err := runOnConn(ctx, log, pool, conn, transactional, op)
	if err == nil {
		return result, nil
	}

	if Classify(err) != ClassFailover {
		return zero, db.failWith(ctx, log, correlationID, err)
	}

	log.LogError(ctx, fmt.Sprintf("[%s] got error but try to resolve failover..", db.name), err)

	return resolveFailover(ctx, db, log, fn, correlationID, op, err)
}

// runOnConn owns conn until it returns: the connection is released on every return path and
// destroyed if op panics.
func runOnConn[C Conn, R any](ctx context.Context, log logx.Logger, pool Pool[C], conn C, transactional bool, op Operation[C, R]) (result R, err error) {
	settled := false
	defer func() {
		if r := recover(); r != nil {
			if !settled {
				pool.Destroy(conn)
				log.LogError(ctx, fmt.Sprintf("operation panicked, %s connection destroyed: %v", pool.Role(), r))
			}
			panic(r)
		}
	}()

	if transactional {
		if err = conn.Begin(ctx); err != nil {
			settled = true
			pool.Release(conn)

			var zero R
			return zero, err
		}
	}

	result, err = op(ctx, conn)
	if err != nil {
		if transactional {
			if rbErr := conn.Rollback(ctx); rbErr != nil {
				log.LogError(ctx, "rollback failed", rbErr)
			}
		}
	} else if transactional {
		err = conn.Commit(ctx)
	}

	settled = true
	pool.Release(conn)

	if err != nil {
		var zero R
		return zero, err
	}

	return result, nil
}

// resolveFailover drains the primary pool looking for a writable connection.
//
// At most Config().MaxConn() candidates are tried. Read-only or indeterminate candidates are
// destroyed. The first writable candidate runs op and its outcome is final.
func resolveFailover[C Conn, R any](ctx context.Context, db *Database[C], log logx.Logger, fn, correlationID string, op Operation[C, R], cause error) (R, error) {
	var zero R

	begin := time.Now()
	limit := db.primary.Config().MaxConn()
	log.LogInfo(ctx, fmt.Sprintf("[%s] Begin resolve failover...", db.name))

	event := FailoverEvent{
		Database:      db.name,
		CorrelationID: correlationID,
		Operation:     fn,
		Cause:         cause.Error(),
	}
	publish := func(resolved bool, attempts int) {
		event.Resolved = resolved
		event.Attempts = attempts
		event.Duration = time.Since(begin)
		event.Timestamp = time.Now().UTC()
		db.sink.PublishFailover(ctx, event)
	}

	lastErr := cause
	for attempt := 1; attempt <= limit; attempt++ {
		conn, err := db.primary.Acquire(ctx)
		if err != nil {
			lastErr = err
			log.LogError(ctx, fmt.Sprintf("[%s][%d] acquire failover candidate failed", db.name, attempt), err)
			continue
		}

		status, err := ProbeWritable(ctx, conn)
		if status != StatusWritable {
			db.primary.Destroy(conn)
			if err != nil {
				lastErr = err
			}
			log.LogError(ctx, fmt.Sprintf("[%s][%d] Destroy %s connection..", db.name, attempt, status), err)
			continue
		}

		result, err := runOnConn(ctx, log, db.primary, conn, fn == funcTransaction, op)
		publish(true, attempt)
		if err != nil {
			return zero, db.failWith(ctx, log, correlationID, err)
		}

		log.LogInfo(ctx, fmt.Sprintf("[%s] Resolved --> %dms", db.name, time.Since(begin).Milliseconds()))

		return result, nil
	}

	publish(false, limit)

	noConn := errorx.NewNoAvailableConnectionError(db.name, correlationID, limit, lastErr)
	log.LogError(ctx, noConn.Error(), lastErr)

	return zero, noConn
}
