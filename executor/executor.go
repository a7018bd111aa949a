// Package executor runs rendered statements against database/sql and hands
// result rows back as label-addressed datatype.Row values.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/text/cases"

	"github.com/bawdo/typeq/datatype"
)

// Executor runs rendered SQL. Query calls fn once per result row; the row is
// only valid for the duration of the call.
type Executor interface {
	Query(ctx context.Context, query string, args []any, fn func(datatype.Row) error) error
	Exec(ctx context.Context, query string, args []any) (int64, error)
}

// Querier is the subset of *sql.DB, *sql.Tx and *sql.Conn the executor needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DB executes statements through a database/sql handle.
type DB struct {
	q      Querier
	logger *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) { db.logger = l }
}

// New returns an executor over q.
func New(q Querier, opts ...Option) *DB {
	db := &DB{q: q}
	for _, o := range opts {
		o(db)
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}
	return db
}

// Query runs query and calls fn for each row. Iteration stops at the first
// error returned by fn, which is passed through unwrapped.
func (db *DB) Query(ctx context.Context, query string, args []any, fn func(datatype.Row) error) error {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		db.logger.Warn("query failed", "query", query, "args", len(args), "error", err)
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	// A Caser keeps state and may not be shared between goroutines.
	fold := cases.Fold()
	r := &resultRow{index: make(map[string]int, len(names)), values: make([]any, len(names))}
	for i, n := range names {
		r.index[fold.String(n)] = i
	}
	r.fold = fold
	dest := make([]any, len(names))
	for i := range dest {
		dest[i] = &r.values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("query: scan: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		db.logger.Warn("query failed", "query", query, "args", len(args), "error", err)
		return fmt.Errorf("query: %w", err)
	}
	return nil
}

// Exec runs a statement and returns the number of rows it affected.
func (db *DB) Exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := db.q.ExecContext(ctx, query, args...)
	if err != nil {
		db.logger.Warn("exec failed", "query", query, "args", len(args), "error", err)
		return 0, fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec: rows affected: %w", err)
	}
	return n, nil
}

// resultRow addresses the current row's values by case-folded label.
type resultRow struct {
	fold   cases.Caser
	index  map[string]int
	values []any
}

func (r *resultRow) Value(label string) (any, bool) {
	i, ok := r.index[r.fold.String(label)]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}
