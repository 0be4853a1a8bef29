package pgxdb

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
)

// MinServerMajor is the lowest PostgreSQL major version accepted at startup.
const MinServerMajor = 9

// Pool is a dbx.Pool over pgxpool.
type Pool struct {
	pool *pgxpool.Pool
	cfg  dbx.ConnConfig
	role dbx.Role
}

// NewPool creates the pool. The prepared statements are registered on every new connection.
func NewPool(ctx context.Context, role dbx.Role, cfg dbx.ConnConfig, preparedStatements ...dbx.PreparedStatement) (*Pool, error) {
	poolConfig, err := createConnectionConfiguration(cfg)
	if err != nil {
		return nil, err
	}

	// Setup prepared statements
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return setupPreparedStatements(ctx, conn, preparedStatements...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating New Connection Pool")
	}

	return &Pool{pool: pool, cfg: cfg, role: role}, nil
}

func createConnectionConfiguration(cfg dbx.ConnConfig) (*pgxpool.Config, error) {
	poolConfig, _ := pgxpool.ParseConfig("")

	if cfg.DBName == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Name is EMPTY")
	}

	if cfg.User == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_User is EMPTY")
	}

	poolConfig.ConnConfig.Host = cfg.Host
	poolConfig.ConnConfig.Port = uint16(cfg.Port)
	poolConfig.ConnConfig.Database = cfg.DBName
	poolConfig.ConnConfig.User = cfg.User
	poolConfig.ConnConfig.Password = cfg.Password
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout()
	poolConfig.MaxConns = int32(cfg.MaxConn())
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = cfg.IdleTimeout()

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout(), KeepAlive: cfg.KeepAlive()}
	poolConfig.ConnConfig.DialFunc = dialer.DialContext

	if cfg.Timezone != "" {
		poolConfig.ConnConfig.RuntimeParams["timezone"] = cfg.Timezone
	}

	return poolConfig, nil
}

func setupPreparedStatements(ctx context.Context, conn *pgx.Conn, preparesStatements ...dbx.PreparedStatement) error {
	for _, stmt := range preparesStatements {
		_, err := conn.Prepare(ctx, stmt.GetName(), stmt.GetQuery())
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "Failed to prepare statement '%s'", stmt.GetName())
		}
	}

	return nil
}

// Acquire leases a connection, waiting at most the configured connect timeout.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	actx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout())
	defer cancel()

	conn, err := p.pool.Acquire(actx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errorx.NewPoolExhaustedError(err, "acquire from %s pool %s", p.role, p.cfg)
		}

		return nil, errorx.NewConnectFailedError(err, "acquire from %s pool %s", p.role, p.cfg)
	}

	return &Conn{conn: conn}, nil
}

// Release returns the connection to the pool.
func (p *Pool) Release(c *Conn) {
	if c == nil || c.conn == nil {
		return
	}

	c.conn.Release()
}

// Destroy takes the connection out of the pool and closes it.
func (p *Pool) Destroy(c *Conn) {
	if c == nil || c.conn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.ConnectTimeout())
	defer cancel()

	_ = c.conn.Hijack().Close(ctx)
}

// Shutdown closes every connection of the pool.
func (p *Pool) Shutdown() {
	p.pool.Close()
}

func (p *Pool) Config() dbx.ConnConfig {
	return p.cfg
}

func (p *Pool) Role() dbx.Role {
	return p.role
}

// Stat exposes the pgxpool statistics.
func (p *Pool) Stat() *pgxpool.Stat {
	return p.pool.Stat()
}
