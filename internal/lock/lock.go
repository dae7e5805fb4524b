package lock

import (
	"context"
	"time"
)

// Locker guards a named critical section across goroutines or processes.
// Acquire reports false when another holder owns an unexpired lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
