package pgxdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/pkg/errors"
)

// BulkInsertEntitiesWithTags inserts a large number of structs into a PostgreSQL table using pgx.CopyFrom.
//
// The column names are derived from the `db` tags of the first entity, each entity provides its values
// through ToRow() in the same order. Fields with `db:"-"` or without a `db` tag are skipped.
//
// Arguments:
//   - ctx: The context for the copy, which can be used to control cancellation and deadlines.
//   - conn: The leased connection. Inside dbx.Transaction the copy is part of the transaction.
//   - tableName: The name of the table into which data will be inserted, optionally schema qualified (CASE SENSITIVE).
//   - entities: A slice of structs implementing the `RowConvertibleEntity` interface.
//
// Returns:
//   - int64: The number of rows successfully inserted.
//   - error: Any error encountered during the bulk insert.
func BulkInsertEntitiesWithTags[T dbx.RowConvertibleEntity](ctx context.Context, conn *Conn, tableName string, entities []T) (int64, error) {
	if len(entities) == 0 {
		return 0, errors.New("no entities to insert")
	}

	rows := make([][]interface{}, len(entities))
	for i, entity := range entities {
		rows[i] = entity.ToRow()
	}

	return copyRows(ctx, conn, tableName, entities[0], rows)
}

// BulkInsertStructs is BulkInsertEntitiesWithTags for plain structs, the row values are read
// from the `db` tagged fields through reflection.
func BulkInsertStructs[T any](ctx context.Context, conn *Conn, tableName string, entities []T) (int64, error) {
	if len(entities) == 0 {
		return 0, errors.New("no entities to insert")
	}

	rows, err := dbx.StructsToRows(entities, "db")
	if err != nil {
		return 0, errors.Wrap(err, "error converting structs to rows")
	}

	return copyRows(ctx, conn, tableName, entities[0], rows)
}

// copyRows copies rows into tableName, the columns are the `db` tags of sample.
func copyRows(ctx context.Context, conn *Conn, tableName string, sample any, rows [][]interface{}) (int64, error) {
	columnNames, err := dbx.DeriveColumnNamesFromTags(sample, "db")
	if err != nil {
		return 0, errors.Wrap(err, "error deriving column names")
	}

	identifier, err := splitTableName(tableName)
	if err != nil {
		return 0, err
	}

	rowCount, err := conn.q().CopyFrom(ctx, identifier, columnNames, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, errors.Wrap(translate(err, "COPY "+tableName), "bulk insert error")
	}

	return rowCount, nil
}

func splitTableName(tableName string) (pgx.Identifier, error) {
	parts := strings.Split(tableName, ".")
	switch len(parts) {
	case 1:
		// Only the table name is provided, assume the default schema
		return pgx.Identifier{parts[0]}, nil
	case 2:
		return pgx.Identifier{parts[0], parts[1]}, nil
	default:
		return nil, fmt.Errorf("invalid table name format: %s", tableName)
	}
}
