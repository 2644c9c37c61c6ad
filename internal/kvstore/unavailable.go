package kvstore

import (
	"context"
	"time"

	apperrors "adaptivebeta/internal/errors"
)

// Unavailable stands in for a store that was never provisioned or failed to start.
// Every operation fails with a service unavailable error instead of panicking.
type Unavailable struct{}

func (Unavailable) err() error {
	return apperrors.ServiceUnavailable("Key-value store not available")
}

func (u Unavailable) Set(context.Context, string, []byte, time.Duration) error { return u.err() }

func (u Unavailable) Get(context.Context, string) ([]byte, error) { return nil, u.err() }

func (u Unavailable) Delete(context.Context, string) error { return u.err() }

func (u Unavailable) Keys(context.Context, string) ([]string, error) { return nil, u.err() }

func (u Unavailable) Ping(context.Context) error { return u.err() }

func (Unavailable) Close() error { return nil }
