package mysql

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Cursor is the statement-execution handle passed to WithCursor blocks.
// It is bound to one transaction and must not outlive the block.
type Cursor struct {
	tx *sqlx.Tx
}

// Tx exposes the underlying transaction for callers that need the full
// sqlx surface (named queries, struct scanning).
func (c *Cursor) Tx() *sqlx.Tx {
	return c.tx
}

// Exec runs a statement that returns no rows.
func (c *Cursor) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.tx.ExecContext(ctx, query, args...)
}

// QueryMaps runs a row-returning query and materializes every row as a
// column-name keyed map.
func (c *Cursor) QueryMaps(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := c.tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// QueryValues runs a row-returning query and materializes every row as a
// positional value slice, in column order.
func (c *Cursor) QueryValues(ctx context.Context, query string, args ...any) ([][]any, error) {
	rows, err := c.tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}
