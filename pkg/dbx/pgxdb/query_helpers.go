package pgxdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// QueryAndScan executes a query and maps the result to structs using the provided scanFunc.
//
// This function simplifies the process of executing a SQL query and converting each row in the result set
// to a specific struct type using a custom scan function. It handles the query execution, iteration over
// the rows, and error management. It is meant to be called from a dbx.Operation:
//
//	users, err := dbx.Query(ctx, db, true, reqID, func(ctx context.Context, conn *pgxdb.Conn) ([]User, error) {
//	    return pgxdb.QueryAndScan(ctx, conn, scanUser, "SELECT id, name FROM users")
//	})
//
// Arguments:
//   - ctx: The context for the query execution, which can be used to control cancellation and deadlines.
//   - conn: The leased connection, inside or outside a transaction.
//   - scanFunc: A function that maps each row (pgx.Rows) to the desired struct type (T).
//   - query: The SQL query to be executed.
//   - args: The variadic arguments for the SQL query, if any.
//
// Returns:
//   - []T: A slice of the struct type T, representing the mapped results from the query.
//   - error: Any error encountered during query execution or row scanning.
func QueryAndScan[T any](ctx context.Context, conn *Conn, scanFunc func(rows pgx.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		result, err := scanFunc(rows)
		if err != nil {
			return nil, errors.WithStack(translate(err, query))
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(translate(err, query))
	}

	return results, nil
}

// QueryScanAndProcess executes a query and processes each row with a callback that receives a struct.
//
// Each row is mapped with scanFunc and handed to processCallbackFunc. The first error stops the iteration.
func QueryScanAndProcess[T any](ctx context.Context, conn *Conn, query string, scanFunc func(rows pgx.Rows) (T, error), processCallbackFunc func(item T) error, args ...any) error {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanFunc(rows)
		if err != nil {
			return errors.WithStack(translate(err, query))
		}
		if err := processCallbackFunc(item); err != nil {
			return errors.WithStack(err)
		}
	}

	return translate(rows.Err(), query)
}

// QueryAndMap uses pgx's struct scanning to map rows directly to a slice of structs.
//
// Columns are matched to fields by name (or `db` tag), no scan function is needed.
func QueryAndMap[T any](ctx context.Context, conn *Conn, query string, args ...any) ([]T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, errors.WithStack(translate(err, query))
	}

	return results, nil
}

// QueryMapAndProcess uses pgx's struct scanning to map rows directly to a struct and then process each struct.
func QueryMapAndProcess[T any](ctx context.Context, conn *Conn, query string, processCallbackFunc func(item T) error, args ...any) error {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := pgx.RowToStructByName[T](rows)
		if err != nil {
			return errors.WithStack(translate(err, query))
		}
		if err := processCallbackFunc(item); err != nil {
			return errors.WithStack(err)
		}
	}

	return translate(rows.Err(), query)
}
