package database

import (
	"context"
	"database/sql"
	"fmt"
)

type txCtxKey struct{}

// TxFromContext returns the transaction stored in ctx, if any.
func TxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txCtxKey{}).(*sql.Tx)

	return tx
}

// NewTxContext returns a copy of parent carrying tx.
func NewTxContext(parent context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(parent, txCtxKey{}, tx)
}

// RunInTx runs f inside a transaction. When ctx already carries one, f joins
// it and the outermost caller decides whether to commit.
func (db *DB) RunInTx(ctx context.Context, f func(context.Context) error) error {
	return runInTx(ctx, db.conn, nil, f)
}

// RunInReadTx runs f inside a read-only transaction that sees one snapshot
// of the database. On SQLite it uses the read pool, whose transactions do
// not take the write lock. When ctx already carries a transaction, f joins it.
func (db *DB) RunInReadTx(ctx context.Context, f func(context.Context) error) error {
	return runInTx(ctx, db.read, &sql.TxOptions{ReadOnly: true}, f)
}

func runInTx(ctx context.Context, pool *sql.DB, opts *sql.TxOptions, f func(context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return f(ctx)
	}

	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	ctx = NewTxContext(ctx, tx)

	defer func() {
		if v := recover(); v != nil {
			if err := tx.Rollback(); err != nil {
				v = fmt.Sprintf("%v: rolling back transaction: %v", v, err)
			}
			panic(v)
		}
	}()

	if err := f(ctx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
