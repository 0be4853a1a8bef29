package mysqldb

import (
	"context"

	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
)

// Database is a MySQL backed dbx.Database.
type Database = dbx.Database[*Conn]

// Initialize opens the primary and, when configured, the replica pool of a MySQL replica set
// and checks both at startup.
//
// Example Usage:
//
//	orders, err := mysqldb.Initialize(ctx, "orders", cfg.Databases["orders"], logger)
//	if err != nil {
//	    logger.LogFatal(ctx, "database initialization failed", err)
//	}
//	defer orders.Terminate()
func Initialize(ctx context.Context, name string, cfg dbx.ReplicaSetConfig, logger logx.Logger, opts ...dbx.Option) (*Database, error) {
	if err := cfg.Validate(name); err != nil {
		return nil, errorx.NewInitializationError(name, err, "invalid configuration")
	}

	routing, err := dbx.ParseRoutingPolicy(cfg.Routing)
	if err != nil {
		return nil, errorx.NewInitializationError(name, err, "invalid configuration")
	}

	primary, err := NewPool(dbx.RolePrimary, cfg.Master)
	if err != nil {
		return nil, errorx.NewInitializationError(name, err, "primary pool")
	}

	var replica dbx.Pool[*Conn]
	if cfg.Slave != nil {
		rp, err := NewPool(dbx.RoleReplica, *cfg.Slave)
		if err != nil {
			primary.Shutdown()
			return nil, errorx.NewInitializationError(name, err, "replica pool")
		}
		replica = rp
	}

	opts = append([]dbx.Option{dbx.WithRoutingPolicy(routing), dbx.WithMinServerMajor(MinServerMajor)}, opts...)

	return dbx.Initialize[*Conn](ctx, name, primary, replica, logger, opts...)
}
