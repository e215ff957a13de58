// Package database implements the repository interfaces on top of database/sql.
//
// Two dialects are supported:
//   - postgres: the production store, reached over the network with lib/pq
//   - sqlite:   an embedded store (modernc.org/sqlite) for local runs and tests
//
// DATABASE/SQL OVERVIEW:
// sql.DB is a connection pool, NOT a single connection. sql.Open only validates
// its arguments; the first real connection happens on the first query (or Ping).
// That is what lets the service start even when the database is unreachable:
// Open succeeds, Ping fails and is logged, and each request then fails on its own.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	// Both drivers register themselves with database/sql in their init().
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver selects the SQL dialect.
type Driver string

const (
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// IsValid reports whether d is a supported driver.
func (d Driver) IsValid() bool {
	_, ok := dialects[d]
	return ok
}

// Config holds everything needed to open the pool.
type Config struct {
	Driver Driver

	// Postgres connection settings.
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	SSLMode        string // lib/pq sslmode; "require" encrypts without verifying the certificate
	ConnectTimeout time.Duration

	// SQLite file path, or ":memory:".
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB wraps a sql.DB connection pool and the dialect it speaks.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

// Open creates the pool. It does not touch the network; call Ping to verify
// connectivity and Sync to bring the schema up to date.
func Open(cfg Config) (*DB, error) {
	if !cfg.Driver.IsValid() {
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
	d := dialects[cfg.Driver]

	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: opening %s pool: %w", cfg.Driver, err)
	}

	setConnectionPool(conn, cfg)

	return &DB{conn: conn, dialect: d}, nil
}

// DSN builds the driver-specific data source name for cfg.
func DSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case Postgres:
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "require"
		}
		q := url.Values{}
		q.Set("sslmode", sslMode)
		if cfg.ConnectTimeout > 0 {
			q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Path:     "/" + cfg.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil

	case SQLite:
		if cfg.Path == "" {
			return "", fmt.Errorf("database: sqlite path is required")
		}
		if isMemory(cfg.Path) {
			return cfg.Path, nil
		}
		// WAL lets readers run while a write is in progress; busy_timeout makes
		// concurrent writers wait instead of failing with SQLITE_BUSY.
		return cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	}

	return "", fmt.Errorf("database: unsupported driver %q", cfg.Driver)
}

func setConnectionPool(conn *sql.DB, cfg Config) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}

	// Every connection to ":memory:" is a separate, empty database.
	// Pin the pool to one connection so all callers see the same tables.
	if cfg.Driver == SQLite && isMemory(cfg.Path) {
		maxOpen, maxIdle = 1, 1
	}

	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

func isMemory(path string) bool {
	return path == ":memory:"
}

// Ping verifies that the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database: pinging %s: %w", db.dialect.name, err)
	}
	return nil
}

// Driver returns the dialect the pool speaks.
func (db *DB) Driver() Driver {
	return db.dialect.name
}

// SQL exposes the underlying pool, for collectors that read sql.DBStats.
func (db *DB) SQL() *sql.DB {
	return db.conn
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}
