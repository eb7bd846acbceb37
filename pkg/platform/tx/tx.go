// Package tx carries an explicit SQL transaction through context so that
// multi-store operations (resolve request + assign supervisor) commit as
// one unit. Stores check From(ctx) and fall back to their own *sql.DB,
// keeping the transaction an explicit parameter rather than ambient
// global state.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner executes a function inside a database transaction. The
// transaction is injected into the context so every store touched by fn
// participates in the same unit of work.
type Runner struct {
	db *sql.DB
}

// NewRunner constructs a transaction runner over db. A nil db yields a
// pass-through runner for memory-store setups.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// RunInTx begins a transaction, runs fn with the transaction in context,
// and commits. Any error from fn rolls the transaction back. When the
// runner has no database (memory stores), fn runs directly.
func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.db == nil {
		return fn(ctx)
	}
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
