package mysqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const (
	readOnlyProbeQuery = "SHOW GLOBAL VARIABLES LIKE 'innodb_read_only'"
	versionQuery       = "SELECT VERSION()"
)

// ErrTxAlreadyOpen - Begin called twice on the same connection.
var ErrTxAlreadyOpen = errors.New("transaction already open on connection")

type runner interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Conn is a MySQL connection leased from a Pool.
//
// Statements run inside the open transaction when there is one, on the raw connection
// otherwise. Every error is translated to a *dbx.DriverError.
type Conn struct {
	conn *sqlx.Conn
	tx   *sqlx.Tx
}

func (c *Conn) run() runner {
	if c.tx != nil {
		return c.tx
	}

	return c.conn
}

// InTx reports whether a transaction is open.
func (c *Conn) InTx() bool {
	return c.tx != nil
}

func (c *Conn) Begin(ctx context.Context) error {
	if c.tx != nil {
		return ErrTxAlreadyOpen
	}

	tx, err := c.conn.BeginTxx(ctx, nil)
	if err != nil {
		return translate(err, "BEGIN")
	}
	c.tx = tx

	return nil
}

func (c *Conn) Commit(context.Context) error {
	if c.tx == nil {
		return sql.ErrTxDone
	}

	tx := c.tx
	c.tx = nil

	return translate(tx.Commit(), "COMMIT")
}

func (c *Conn) Rollback(context.Context) error {
	if c.tx == nil {
		return nil
	}

	tx := c.tx
	c.tx = nil

	return translate(tx.Rollback(), "ROLLBACK")
}

// ReadOnlyFlags returns the Value column of every innodb_read_only row.
func (c *Conn) ReadOnlyFlags(ctx context.Context) ([]string, error) {
	rows, err := c.run().QueryxContext(ctx, readOnlyProbeQuery)
	if err != nil {
		return nil, translate(err, readOnlyProbeQuery)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, translate(err, readOnlyProbeQuery)
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, translate(err, readOnlyProbeQuery)
	}

	return values, nil
}

func (c *Conn) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := sqlx.GetContext(ctx, c.run(), &version, versionQuery); err != nil {
		return "", translate(err, versionQuery)
	}

	return version, nil
}

// ExecContext executes a statement that returns no rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.run().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, query)
	}

	return res, nil
}

// QueryxContext runs a query, the caller closes the rows.
func (c *Conn) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	rows, err := c.run().QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err, query)
	}

	return rows, nil
}

// GetContext scans a single row into dest.
func (c *Conn) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return translate(sqlx.GetContext(ctx, c.run(), dest, query, args...), query)
}

// SelectContext scans every row into the slice pointed to by dest.
func (c *Conn) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return translate(sqlx.SelectContext(ctx, c.run(), dest, query, args...), query)
}

// Raw exposes the underlying sqlx connection.
func (c *Conn) Raw() *sqlx.Conn {
	return c.conn
}
