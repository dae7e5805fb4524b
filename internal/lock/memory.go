package lock

import (
	"context"
	"sync"
	"time"
)

type MemoryLocker struct {
	mu     sync.Mutex
	expiry map[string]time.Time
	now    func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{expiry: map[string]time.Time{}, now: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, exp := range l.expiry {
		if !exp.IsZero() && !exp.After(now) {
			delete(l.expiry, k)
		}
	}
	if _, held := l.expiry[key]; held {
		return false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	l.expiry[key] = exp
	return true, nil
}

func (l *MemoryLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expiry, key)
	return nil
}
