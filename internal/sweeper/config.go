package sweeper

import (
	"log/slog"

	"github.com/example/followback/internal/config"
	"github.com/example/followback/internal/lock"
)

// FromConfig builds a sweeper for cfg.UploadDir with the configured lock.
// The lock TTL defaults to the sweep interval.
func FromConfig(cfg config.Config, logger *slog.Logger) (*Sweeper, string, error) {
	locker, label, err := lock.FromConfig(cfg.Lock)
	if err != nil {
		return nil, "", err
	}
	opts := []Option{WithLogger(logger)}
	if locker != nil {
		ttl := cfg.Lock.TTL
		if ttl <= 0 {
			ttl = cfg.Sweeper.Interval
		}
		opts = append(opts, WithLocker(locker, ttl))
	}
	return New(cfg.UploadDir, cfg.Sweeper.Lifetime, opts...), label, nil
}
