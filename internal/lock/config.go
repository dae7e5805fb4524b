package lock

import (
	"fmt"

	"github.com/example/followback/internal/config"
	"github.com/redis/go-redis/v9"
)

// FromConfig builds the locker selected by cfg.Mode. A disabled lock
// returns a nil Locker and a "disabled" label.
func FromConfig(cfg config.Lock) (Locker, string, error) {
	switch cfg.Mode {
	case config.LockDisabled:
		return nil, config.LockDisabled, nil
	case config.LockRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		return NewRedisLocker(client, cfg.Redis.Prefix), config.LockRedis, nil
	case config.LockMemory, "":
		return NewMemoryLocker(), config.LockMemory, nil
	default:
		return nil, "", fmt.Errorf("invalid lock mode: %s", cfg.Mode)
	}
}
