// Package repository holds the transaction and query helpers shared by the
// domain stores.
package repository

import (
	"context"
	"database/sql"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DBTX is accepted by helpers that join the caller's transaction.
type DBTX interface {
	Querier
	Executor
}

// Beginner starts transactions. *sql.DB satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one entity from a row.
type ScanFunc[T any] func(Scanner) (T, error)

// maxTxAttempts bounds WithTx retries of serialization failures and deadlocks.
const maxTxAttempts = 3

// WithTx runs fn in a transaction and commits if fn succeeds. A transaction
// that PostgreSQL aborts as a deadlock or serialization failure is retried
// from the start, so fn must not keep state across calls.
func WithTx[T any](ctx context.Context, db Beginner, fn func(tx *sql.Tx) (T, error)) (T, error) {
	return WithTxOptions(ctx, db, nil, fn)
}

// WithTxOptions is WithTx with explicit isolation and access mode.
func WithTxOptions[T any](ctx context.Context, db Beginner, opts *sql.TxOptions, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for range maxTxAttempts {
		result, err = runTx(ctx, db, opts, fn)
		if !IsRetryable(err) || ctx.Err() != nil {
			break
		}
	}
	return result, err
}

func runTx[T any](ctx context.Context, db Beginner, opts *sql.TxOptions, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return result, nil
}

// QueryOne scans the single row returned by query. A missing row surfaces
// as sql.ErrNoRows.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany scans every row returned by query. No rows yields an empty,
// non-nil slice.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Count runs a query yielding one integer, such as COUNT(*).
func Count(ctx context.Context, q Querier, query string, args ...any) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// ExecExpectOne runs a statement that must touch at least one row and
// reports sql.ErrNoRows when it touches none.
func ExecExpectOne(ctx context.Context, e Executor, query string, args ...any) error {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	switch {
	case err != nil:
		return err
	case n == 0:
		return sql.ErrNoRows
	}
	return nil
}
