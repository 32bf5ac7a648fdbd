package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// sqliteParams enables WAL, waits on locks instead of failing fast, enforces
// foreign keys and takes the write lock when a transaction begins, so a
// read-then-write transaction never fails to upgrade its lock.
const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"

// sqliteReadParams open query-only connections with deferred transactions.
// Under WAL they read a snapshot without waiting for writers.
const sqliteReadParams = "_busy_timeout=5000&_query_only=true"

// Options configures Open.
type Options struct {
	Driver string
	DSN    string

	// PingAttempts is the number of start-up pings before giving up.
	PingAttempts uint
	PingDelay    time.Duration

	MaxOpenConns int

	Logger *slog.Logger
}

// Open opens a pool for opts.Driver and waits until the database answers.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.Driver != DriverSQLite && opts.Driver != DriverPostgres {
		return nil, fmt.Errorf("database: unsupported driver %q", opts.Driver)
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("database: dsn is required")
	}
	if opts.PingAttempts == 0 {
		opts.PingAttempts = 1
	}
	if opts.PingDelay <= 0 {
		opts.PingDelay = 300 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	dsn := opts.DSN
	if opts.Driver == DriverSQLite {
		dsn = sqliteDSN(dsn, sqliteParams)
	}

	conn, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", opts.Driver, err)
	}
	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := retry.Do(
		func() error { return conn.PingContext(ctx) },
		retry.Context(ctx),
		retry.Delay(opts.PingDelay),
		retry.Attempts(opts.PingAttempts),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			opts.Logger.Warn("failed ping to database",
				slog.String("driver", opts.Driver),
				slog.Uint64("attempt", uint64(attempt)),
				slog.String("error", err.Error()))
		}),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	db := New(conn, opts.Driver)
	if opts.Driver == DriverSQLite {
		// Opened after the ping so the file already exists in WAL mode.
		read, err := sql.Open(opts.Driver, sqliteDSN(opts.DSN, sqliteReadParams))
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("database: open read pool: %w", err)
		}
		if opts.MaxOpenConns > 0 {
			read.SetMaxOpenConns(opts.MaxOpenConns)
		}
		db.read = read
	}

	return db, nil
}

func sqliteDSN(path, params string) string {
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}
