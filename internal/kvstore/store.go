// Package kvstore provides the ephemeral key-value store used for OAuth tokens
// and encrypted broker credentials.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adaptivebeta/internal/database"
)

// ErrNotFound is returned by Get when a key is absent or has expired.
var ErrNotFound = errors.New("key not found")

// Store is a key-value store with per-entry expiry.
// A ttl of zero or less stores the entry without expiry.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open selects a backend from a DSN.
//
//	""                    -> Unavailable
//	memory://             -> in-process map
//	sqlite://path, file:path -> SQLite database at path
//	redis://..., rediss://... -> Redis
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "":
		return Unavailable{}, nil
	case strings.HasPrefix(dsn, "memory://"):
		return NewMemory(), nil
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"):
		path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "file:")
		if path == "" {
			return nil, fmt.Errorf("sqlite DSN %q has no path", dsn)
		}
		db, err := database.New(path)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLite(db), nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return NewRedis(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported store DSN %q (expected memory://, sqlite://, file:, redis:// or rediss://)", dsn)
	}
}

// expiresAt converts a ttl into an absolute deadline; the zero time means no expiry.
func expiresAt(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
