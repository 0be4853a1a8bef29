package pgxdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	readOnlyProbeQuery = "SELECT CASE WHEN pg_is_in_recovery() OR current_setting('default_transaction_read_only') = 'on' THEN 'ON' ELSE 'OFF' END"
	versionQuery       = "SHOW server_version"
)

// ErrTxAlreadyOpen - Begin called twice on the same connection.
var ErrTxAlreadyOpen = errors.New("transaction already open on connection")

// querier is implemented by both *pgxpool.Conn and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Conn is a PostgreSQL connection leased from a Pool.
//
// Statements run inside the open transaction when there is one. Every error is translated
// to a *dbx.DriverError.
type Conn struct {
	conn *pgxpool.Conn
	tx   pgx.Tx
}

func (c *Conn) q() querier {
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

	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return translate(err, "BEGIN")
	}
	c.tx = tx

	return nil
}

func (c *Conn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return pgx.ErrTxClosed
	}

	tx := c.tx
	c.tx = nil

	return translate(tx.Commit(ctx), "COMMIT")
}

func (c *Conn) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}

	tx := c.tx
	c.tx = nil

	return translate(tx.Rollback(ctx), "ROLLBACK")
}

// ReadOnlyFlags folds recovery mode and default_transaction_read_only into ON or OFF.
func (c *Conn) ReadOnlyFlags(ctx context.Context) ([]string, error) {
	rows, err := c.q().Query(ctx, readOnlyProbeQuery)
	if err != nil {
		return nil, translate(err, readOnlyProbeQuery)
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, translate(err, readOnlyProbeQuery)
	}

	return values, nil
}

func (c *Conn) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.q().QueryRow(ctx, versionQuery).Scan(&version); err != nil {
		return "", translate(err, versionQuery)
	}

	return version, nil
}

// Exec executes a command and returns the number of rows affected.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.q().Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err, query)
	}

	return tag.RowsAffected(), nil
}

// Query runs a query, the caller closes the rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	rows, err := c.q().Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, query)
	}

	return rows, nil
}

// QueryRow runs a query returning at most one row. Scan errors are translated.
func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return translatingRow{row: c.q().QueryRow(ctx, query, args...), query: query}
}

type translatingRow struct {
	row   pgx.Row
	query string
}

func (r translatingRow) Scan(dest ...any) error {
	return translate(r.row.Scan(dest...), r.query)
}

// Raw exposes the underlying pool connection.
func (c *Conn) Raw() *pgxpool.Conn {
	return c.conn
}
