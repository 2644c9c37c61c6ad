package kvstore

import (
	"context"
	"log"
	"time"
)

// Purger is implemented by backends that keep expired entries until they are swept.
// Redis expires keys itself and does not implement it.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RunJanitor sweeps expired entries every interval until ctx is cancelled.
// It returns immediately for stores that are not Purgers.
func RunJanitor(ctx context.Context, s Store, interval time.Duration) {
	p, ok := s.(Purger)
	if !ok {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				log.Printf("[KV] Failed to purge expired entries: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[KV] Purged %d expired entries", n)
			}
		}
	}
}
