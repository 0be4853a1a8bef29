package dbx

import (
	"context"
)

// Role identifies which pool of a Database a connection belongs to.
type Role string

const (
	RolePrimary Role = "primary"
	RoleReplica Role = "replica"
)

// Conn is a connection leased from a Pool.
//
// Backends add their own query methods on top; the engine only needs the transaction
// primitives and the two introspection queries used by the failover prober.
type Conn interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// ReadOnlyFlags runs the server read-only introspection query and returns one value per row.
	ReadOnlyFlags(ctx context.Context) ([]string, error)
	// ServerVersion returns the version string reported by the server.
	ServerVersion(ctx context.Context) (string, error)
}

// Pool owns one connection pool (primary or replica).
//
// Acquire fails with an *errorx.PoolError matching errorx.ErrPoolExhausted when no connection
// can be leased within the connect timeout, or errorx.ErrConnectFailed when the server cannot
// be reached. Release returns a connection to the pool, Destroy discards it. Implementations
// must be safe for concurrent use.
type Pool[C Conn] interface {
	Acquire(ctx context.Context) (C, error)
	Release(conn C)
	Destroy(conn C)
	Shutdown()
	Config() ConnConfig
	Role() Role
}
