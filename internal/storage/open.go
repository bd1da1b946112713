package storage

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/todod/internal/kv"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type OpenOptions struct {
	Backend    string
	SQLitePath string
	DataDir    string
	Redis      kv.RedisOptions
}

// Open returns the repository for the configured backend.
func Open(ctx context.Context, opts OpenOptions) (Repository, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		return OpenSQLite(ctx, opts.SQLitePath)
	case BackendFile:
		store, err := kv.NewFileStore(opts.DataDir)
		if err != nil {
			return nil, err
		}
		return NewKVRepository(store)
	case BackendRedis:
		store, err := kv.NewRedisStore(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return NewKVRepository(store)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}
