package kv

import (
	"context"
	"fmt"
)

// Options selects and configures a backend
type Options struct {
	Driver        string // memory, sqlite, turso, postgres, redis
	SQLitePath    string
	TursoDatabase string
	TursoToken    string
	PostgresDSN   string
	RedisAddr     string
	Pool          PoolConfig
}

// Open connects the backend named by opts.Driver
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "", "sqlite":
		return OpenSQLite(ctx, opts.SQLitePath, opts.Pool)
	case "turso":
		return OpenTurso(ctx, opts.TursoDatabase, opts.TursoToken, opts.Pool)
	case "postgres":
		return OpenPostgres(ctx, opts.PostgresDSN, opts.Pool)
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
