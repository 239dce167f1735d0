package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Backend is the key/value contract every storage here satisfies
type Backend interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a backend
type Options struct {
	// Driver is one of memory, file, redis or sqlite
	Driver string
	// DSN is the file path, redis URL or sqlite DSN. The file driver
	// falls back to DefaultFilePath.
	DSN      string
	RedisTTL time.Duration
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backend named by opts.Driver. The returned closer
// releases connections and is never nil.
func Open(ctx context.Context, opts Options) (Backend, io.Closer, error) {
	switch opts.Driver {
	case "memory":
		return NewMemoryStorage(), nopCloser{}, nil

	case "", "file":
		path := opts.DSN
		if path == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, nil, fmt.Errorf("storage: resolve file path: %w", err)
			}
			path = p
		}
		return NewFileStorage(path), nopCloser{}, nil

	case "redis":
		client, err := OpenRedis(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStorage(client, WithRedisTTL(opts.RedisTTL)), client, nil

	case "sqlite":
		db, err := OpenSQLite(opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		s := NewSQLStorage(db)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, db, nil
	}

	return nil, nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
}
