package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Load when no record exists under the key.
var ErrNotFound = errors.New("storage: record not found")

// Storage is a durable key/value store for serialized records.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Supported drivers.
const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string

	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	PostgresURL string
	MySQLDSN    string
	SQLitePath  string
}

// Open connects the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileStorage(opts.Dir)
	case DriverRedis:
		return NewRedisStorage(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisTTL)
	case DriverPostgres:
		return NewPostgresStorage(opts.PostgresURL)
	case DriverMySQL:
		return NewMySQLStorage(opts.MySQLDSN)
	case DriverSQLite:
		return NewSQLiteStorage(opts.SQLitePath)
	case DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
