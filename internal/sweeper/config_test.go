package sweeper

import (
	"testing"
	"time"

	"github.com/example/followback/internal/config"
	"github.com/example/followback/internal/lock"
)

func TestFromConfigDefaultsLockTTLToInterval(t *testing.T) {
	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	cfg.Sweeper.Interval = 10 * time.Minute
	cfg.Sweeper.Lifetime = time.Hour

	s, label, err := FromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != config.LockMemory {
		t.Fatalf("expected memory lock, got %s", label)
	}
	if _, ok := s.locker.(*lock.MemoryLocker); !ok {
		t.Fatalf("expected memory locker, got %T", s.locker)
	}
	if s.lockTTL != 10*time.Minute || s.lifetime != time.Hour || s.dir != cfg.UploadDir {
		t.Fatalf("unexpected sweeper: ttl=%v lifetime=%v dir=%s", s.lockTTL, s.lifetime, s.dir)
	}
}

func TestFromConfigDisabledLock(t *testing.T) {
	cfg := config.Default()
	cfg.Lock.Mode = config.LockDisabled
	s, _, err := FromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.locker != nil {
		t.Fatalf("expected no locker, got %T", s.locker)
	}
}

func TestFromConfigInvalidLock(t *testing.T) {
	cfg := config.Default()
	cfg.Lock.Mode = "bad"
	if _, _, err := FromConfig(cfg, nil); err == nil {
		t.Fatal("expected error")
	}
}
