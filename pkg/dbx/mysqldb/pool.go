package mysqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/errorx"
)

// MinServerMajor is the lowest MySQL major version accepted at startup.
const MinServerMajor = 5

// Pool is a dbx.Pool over a database/sql pool opened with go-sql-driver/mysql.
type Pool struct {
	db   *sqlx.DB
	cfg  dbx.ConnConfig
	role dbx.Role
}

// NewPool opens the pool. No connection is made until the first Acquire.
func NewPool(role dbx.Role, cfg dbx.ConnConfig) (*Pool, error) {
	mcfg, err := newDriverConfig(cfg)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating %s connector for %s", role, cfg)
	}

	db := sqlx.NewDb(sql.OpenDB(connector), "mysql")
	db.SetMaxOpenConns(cfg.MaxConn())
	db.SetMaxIdleConns(cfg.MaxConn())
	db.SetConnMaxIdleTime(cfg.IdleTimeout())

	return &Pool{db: db, cfg: cfg, role: role}, nil
}

// newDriverConfig maps ConnConfig onto the driver configuration. Keep-alive is applied
// through a dialer registered per interval.
func newDriverConfig(cfg dbx.ConnConfig) (*mysql.Config, error) {
	if cfg.DBName == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_Name is EMPTY")
	}

	if cfg.User == "" {
		return nil, errorx.NewDatabaseError("Error creating Connection Pool ConnConfig: DB_User is EMPTY")
	}

	loc, err := parseTimezone(cfg.Timezone)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating Connection Pool ConnConfig: invalid timezone %q", cfg.Timezone)
	}

	mcfg := mysql.NewConfig()
	mcfg.User = cfg.User
	mcfg.Passwd = cfg.Password
	mcfg.Net = registerKeepAliveDialer(cfg.ConnectTimeout(), cfg.KeepAlive())
	mcfg.Addr = cfg.Address()
	mcfg.DBName = cfg.DBName
	mcfg.Timeout = cfg.ConnectTimeout()
	mcfg.ParseTime = true
	mcfg.Loc = loc

	return mcfg, nil
}

func registerKeepAliveDialer(timeout, keepAlive time.Duration) string {
	netName := fmt.Sprintf("tcp-ka-%d-%d", timeout.Milliseconds(), keepAlive.Milliseconds())
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: keepAlive}

	mysql.RegisterDialContext(netName, func(ctx context.Context, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, "tcp", addr)
	})

	return netName
}

// parseTimezone accepts "", "Z", "local", "+09:00" style offsets and IANA names.
func parseTimezone(tz string) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(tz)) {
	case "", "z", "utc":
		return time.UTC, nil
	case "local":
		return time.Local, nil
	}

	if tz[0] == '+' || tz[0] == '-' {
		t, err := time.Parse("-07:00", tz)
		if err != nil {
			return nil, err
		}
		_, offset := t.Zone()

		return time.FixedZone(tz, offset), nil
	}

	return time.LoadLocation(tz)
}

// Acquire leases a connection, waiting at most the configured connect timeout.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	actx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout())
	defer cancel()

	conn, err := p.db.Connx(actx)
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

	_ = c.conn.Close()
}

// Destroy discards the physical connection instead of returning it to the pool.
func (p *Pool) Destroy(c *Conn) {
	if c == nil || c.conn == nil {
		return
	}

	_ = c.conn.Raw(func(any) error {
		return driver.ErrBadConn
	})
	_ = c.conn.Close()
}

// Shutdown closes every connection of the pool.
func (p *Pool) Shutdown() {
	_ = p.db.Close()
}

func (p *Pool) Config() dbx.ConnConfig {
	return p.cfg
}

func (p *Pool) Role() dbx.Role {
	return p.role
}

// DB exposes the underlying *sql.DB, e.g. for pool statistics.
func (p *Pool) DB() *sql.DB {
	return p.db.DB
}
