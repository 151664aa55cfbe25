package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Dialect captures the SQL differences between the supported drivers.
type Dialect struct {
	Driver string
	Label  string
	ddl    string
	get    string
	upsert string
	del    string
}

var (
	DialectSQLite = Dialect{
		Driver: "sqlite3",
		Label:  "sqlite",
		ddl:    `CREATE TABLE IF NOT EXISTS kv_store (k TEXT PRIMARY KEY, v TEXT NOT NULL, updated_at INTEGER NOT NULL)`,
		get:    `SELECT v FROM kv_store WHERE k = ?`,
		upsert: `INSERT INTO kv_store (k, v, updated_at) VALUES (?, ?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`,
		del:    `DELETE FROM kv_store WHERE k = ?`,
	}
	DialectTurso = Dialect{
		Driver: "libsql",
		Label:  "turso",
		ddl:    DialectSQLite.ddl,
		get:    DialectSQLite.get,
		upsert: DialectSQLite.upsert,
		del:    DialectSQLite.del,
	}
	DialectPostgres = Dialect{
		Driver: "pgx",
		Label:  "postgres",
		ddl:    `CREATE TABLE IF NOT EXISTS kv_store (k TEXT PRIMARY KEY, v TEXT NOT NULL, updated_at BIGINT NOT NULL)`,
		get:    `SELECT v FROM kv_store WHERE k = $1`,
		upsert: `INSERT INTO kv_store (k, v, updated_at) VALUES ($1, $2, $3) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = EXCLUDED.updated_at`,
		del:    `DELETE FROM kv_store WHERE k = $1`,
	}
)

// PoolConfig mirrors the database/sql pool knobs
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// SQLStore persists values in a single kv_store table
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open connection and makes sure the table exists
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, dialect.ddl); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table (%s): %w", dialect.Label, err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// OpenSQLite opens (creating if needed) a local SQLite database file
func OpenSQLite(ctx context.Context, path string, pool PoolConfig) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return openSQL(ctx, DialectSQLite, path, pool)
}

// OpenTurso opens a remote libsql database
func OpenTurso(ctx context.Context, url, token string, pool PoolConfig) (*SQLStore, error) {
	if url == "" || token == "" {
		return nil, errors.New("turso storage requires TURSO_DATABASE_URL and TURSO_AUTH_TOKEN")
	}
	return openSQL(ctx, DialectTurso, url+"?authToken="+token, pool)
}

// OpenPostgres opens a Postgres database through the pgx stdlib driver
func OpenPostgres(ctx context.Context, dsn string, pool PoolConfig) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres storage requires POSTGRES_DSN")
	}
	return openSQL(ctx, DialectPostgres, dsn, pool)
}

func openSQL(ctx context.Context, dialect Dialect, dsn string, pool PoolConfig) (*SQLStore, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s connection failed: %w", dialect.Label, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s ping failed: %w", dialect.Label, err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	store, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) Name() string { return s.dialect.Label }

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get %q: %w", key, err)
	}
	return val, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.del, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }
