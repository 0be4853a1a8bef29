package dbx

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
)

// DefaultMinServerMajor is the lowest MySQL major version accepted at startup.
const DefaultMinServerMajor = 5

// Database is the handle of one logical database: a primary pool, an optional replica pool
// and the policies used by Query and Transaction.
//
// A Database is created once by Initialize and torn down once by Terminate. It holds no lock
// of its own, every call leases its own connection.
type Database[C Conn] struct {
	name           string
	primary        Pool[C]
	replica        Pool[C]
	logger         logx.Logger
	routing        RoutingPolicy
	sink           EventSink
	minServerMajor int
	terminateOnce  sync.Once
}

type options struct {
	routing        RoutingPolicy
	sink           EventSink
	minServerMajor int
}

// Option configures a Database.
type Option func(*options)

// WithRoutingPolicy overrides the default ReplicaReads policy.
func WithRoutingPolicy(policy RoutingPolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.routing = policy
		}
	}
}

// WithEventSink sets the sink receiving failover events.
func WithEventSink(sink EventSink) Option {
	return func(o *options) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// WithMinServerMajor sets the minimum server major version checked at startup.
func WithMinServerMajor(major int) Option {
	return func(o *options) {
		o.minServerMajor = major
	}
}

// Initialize builds a Database over the given pools and checks that both are reachable and
// run a supported server version.
//
// replica may be nil. On failure both pools are shut down and an *errorx.InitializationError
// is returned: the caller must not serve traffic.
//
// Example Usage:
//
//	db, err := dbx.Initialize(ctx, "orders", primaryPool, nil, logger)
//	if err != nil {
//	    logger.LogFatal(ctx, "database initialization failed", err)
//	}
//	defer db.Terminate()
func Initialize[C Conn](ctx context.Context, name string, primary, replica Pool[C], logger logx.Logger, opts ...Option) (*Database[C], error) {
	if logger == nil {
		logger = logx.NopLogger{}
	}

	o := options{routing: ReplicaReads, sink: NopSink{}, minServerMajor: DefaultMinServerMajor}
	for _, opt := range opts {
		opt(&o)
	}

	db := &Database[C]{
		name:           name,
		primary:        primary,
		replica:        replica,
		logger:         logger.With(logx.Fields{"component": "dbx", "class": "Database", "dbname": name}),
		routing:        o.routing,
		sink:           o.sink,
		minServerMajor: o.minServerMajor,
	}

	if primary == nil {
		db.Terminate()
		return nil, errorx.NewInitializationError(name, nil, "primary pool is not configured")
	}

	log := db.logger.With(logx.Fields{"func": "initialize"})
	log.LogInfo(ctx, fmt.Sprintf("[%s] Begin Initialize....", name))

	version, err := checkReachable(ctx, primary, db.minServerMajor)
	if err != nil {
		db.Terminate()
		log.LogError(ctx, fmt.Sprintf("[%s] primary check failed", name), err)
		return nil, errorx.NewInitializationError(name, err, "primary %s is not usable", primary.Config().Address())
	}
	log.LogInfo(ctx, fmt.Sprintf("--> %s Master Checked.... version:%s", name, version))

	if replica != nil {
		version, err = checkReachable(ctx, replica, db.minServerMajor)
		if err != nil {
			db.Terminate()
			log.LogError(ctx, fmt.Sprintf("[%s] replica check failed", name), err)
			return nil, errorx.NewInitializationError(name, err, "replica %s is not usable", replica.Config().Address())
		}
		log.LogInfo(ctx, fmt.Sprintf("--> %s Slave Checked.... version:%s", name, version))
	}

	log.LogInfo(ctx, fmt.Sprintf("[%s] Done..", name))

	return db, nil
}

// Name returns the logical database name.
func (db *Database[C]) Name() string {
	return db.name
}

// HasReplica reports whether a replica pool is configured.
func (db *Database[C]) HasReplica() bool {
	return db.replica != nil
}

// Pool returns the pool serving role, nil for RoleReplica when no replica is configured.
func (db *Database[C]) Pool(role Role) Pool[C] {
	if role == RoleReplica {
		return db.replica
	}

	return db.primary
}

// Terminate drains and closes both pools. Safe to call more than once.
func (db *Database[C]) Terminate() {
	db.terminateOnce.Do(func() {
		if db.primary != nil {
			db.primary.Shutdown()
		}
		if db.replica != nil {
			db.replica.Shutdown()
		}
		db.logger.LogInfo(context.Background(), fmt.Sprintf("[%s] pools closed", db.name))
	})
}

// Health is a point in time view of a Database.
type Health struct {
	Database string `json:"database"`
	Primary  string `json:"primary"`
	Replica  string `json:"replica,omitempty"`
	Healthy  bool   `json:"healthy"`
	Error    string `json:"error,omitempty"`
}

// Status probes the primary for writability and the replica for reachability without
// running caller logic.
func (db *Database[C]) Status(ctx context.Context) Health {
	h := Health{Database: db.name, Healthy: true}

	conn, err := db.primary.Acquire(ctx)
	if err != nil {
		h.Primary, h.Healthy, h.Error = "unreachable", false, err.Error()
	} else {
		status, probeErr := ProbeWritable(ctx, conn)
		if status == StatusWritable {
			db.primary.Release(conn)
		} else {
			db.primary.Destroy(conn)
			h.Healthy = false
			if probeErr != nil {
				h.Error = probeErr.Error()
			}
		}
		h.Primary = status.String()
	}

	if db.replica == nil {
		return h
	}

	rconn, err := db.replica.Acquire(ctx)
	if err != nil {
		h.Replica, h.Healthy = "unreachable", false
		if h.Error == "" {
			h.Error = err.Error()
		}

		return h
	}

	if _, err := rconn.ServerVersion(ctx); err != nil {
		db.replica.Destroy(rconn)
		h.Replica, h.Healthy = "invalid", false
		if h.Error == "" {
			h.Error = err.Error()
		}

		return h
	}
	db.replica.Release(rconn)
	h.Replica = "reachable"

	return h
}
