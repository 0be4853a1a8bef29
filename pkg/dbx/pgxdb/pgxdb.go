package pgxdb

import (
	"context"

	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
)

// Database is a PostgreSQL backed dbx.Database.
type Database = dbx.Database[*Conn]

// Initialize creates the primary and, when configured, the replica pool of a PostgreSQL
// replica set, registers the prepared statements on both and checks them at startup.
func Initialize(ctx context.Context, name string, cfg dbx.ReplicaSetConfig, logger logx.Logger, statements []dbx.PreparedStatement, opts ...dbx.Option) (*Database, error) {
	if err := cfg.Validate(name); err != nil {
		return nil, errorx.NewInitializationError(name, err, "invalid configuration")
	}

	routing, err := dbx.ParseRoutingPolicy(cfg.Routing)
	if err != nil {
		return nil, errorx.NewInitializationError(name, err, "invalid configuration")
	}

	primary, err := NewPool(ctx, dbx.RolePrimary, cfg.Master, statements...)
	if err != nil {
		return nil, errorx.NewInitializationError(name, err, "primary pool")
	}

	var replica dbx.Pool[*Conn]
	if cfg.Slave != nil {
		rp, err := NewPool(ctx, dbx.RoleReplica, *cfg.Slave, statements...)
		if err != nil {
			primary.Shutdown()
			return nil, errorx.NewInitializationError(name, err, "replica pool")
		}
		replica = rp
	}

	opts = append([]dbx.Option{dbx.WithRoutingPolicy(routing), dbx.WithMinServerMajor(MinServerMajor)}, opts...)

	return dbx.Initialize[*Conn](ctx, name, primary, replica, logger, opts...)
}
