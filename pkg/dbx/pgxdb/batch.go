package pgxdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Batch queues statements sent to the server in a single round trip.
type Batch struct {
	batch *pgx.Batch
}

// NewEmptyBatch creates a new, empty batch for queuing SQL statements.
func NewEmptyBatch() *Batch {
	return &Batch{batch: &pgx.Batch{}}
}

// Len returns the number of SQL statements queued in the batch.
func (b *Batch) Len() int {
	if b.batch == nil {
		return 0
	}

	return b.batch.Len()
}

// Queue adds a SQL statement to the batch.
//
//	batch.Queue("INSERT INTO users (name, email) VALUES ($1, $2)", "John Doe", "john@example.com")
func (b *Batch) Queue(query string, arguments ...any) {
	if b.batch == nil {
		b.batch = &pgx.Batch{}
	}

	b.batch.Queue(query, arguments...)
}

// ExecBatch sends every queued statement and returns the total number of rows affected.
// Run it inside dbx.Transaction to make the batch atomic.
func (c *Conn) ExecBatch(ctx context.Context, b *Batch) (int64, error) {
	if b.Len() == 0 {
		return 0, nil
	}

	results := c.q().SendBatch(ctx, b.batch)

	var total int64
	for i := 0; i < b.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return total, translate(err, fmt.Sprintf("batch statement %d", i))
		}
		total += tag.RowsAffected()
	}

	return total, translate(results.Close(), "batch")
}
