package lock

import (
	"testing"

	"github.com/example/followback/internal/config"
)

func TestFromConfigDisabled(t *testing.T) {
	l, label, err := FromConfig(config.Lock{Mode: config.LockDisabled})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l != nil || label != config.LockDisabled {
		t.Fatalf("expected nil locker, got %T label=%s", l, label)
	}
}

func TestFromConfigMemoryDefault(t *testing.T) {
	l, label, err := FromConfig(config.Lock{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := l.(*MemoryLocker); !ok || label != config.LockMemory {
		t.Fatalf("expected memory locker, got %T label=%s", l, label)
	}
}

func TestFromConfigInvalidMode(t *testing.T) {
	if _, _, err := FromConfig(config.Lock{Mode: "zookeeper"}); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}
