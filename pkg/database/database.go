// Package database wraps database/sql with dialect-aware placeholders and
// transactions carried through context.Context.
package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Querier is the subset of *sql.DB and *sql.Tx used by the storage layer.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB routes queries to the transaction stored in the context, or to the pool.
// Queries are written with '?' placeholders and rebound for the driver.
//
// Read-only transactions may use a separate pool (see RunInReadTx).
type DB struct {
	conn   *sql.DB
	read   *sql.DB
	driver string
}

// New wraps an already opened pool, used for reads and writes alike.
func New(conn *sql.DB, driver string) *DB {
	return &DB{conn: conn, read: conn, driver: driver}
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Exec runs a statement that returns no rows.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.load(ctx).ExecContext(ctx, db.Rebind(query), args...)
}

// Query runs a statement that returns rows.
func (db *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.load(ctx).QueryContext(ctx, db.Rebind(query), args...)
}

// QueryRow runs a statement that returns at most one row.
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.load(ctx).QueryRowContext(ctx, db.Rebind(query), args...)
}

// Ping verifies the pool can reach the database.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying pools.
func (db *DB) Close() error {
	err := db.conn.Close()
	if db.read != db.conn {
		if rerr := db.read.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

// Rebind converts '?' placeholders to '$n' for PostgreSQL. Other drivers
// get the query unchanged. Quoted literals are not scanned, so queries must
// not contain a literal '?'.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

func (db *DB) load(ctx context.Context) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db.conn
}
