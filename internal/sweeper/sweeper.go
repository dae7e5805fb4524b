// Package sweeper deletes uploads that outlived their retention lifetime.
//
// A Sweeper is Idle until a tick (or a manual Sweep) moves it to Sweeping.
// Only one sweep runs at a time per process; a configured lock.Locker
// extends that to every process sharing the upload dir.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/example/followback/internal/lock"
	"github.com/example/followback/internal/logging"
	"github.com/m-mizutani/goerr/v2"
)

var ErrSweepInProgress = errors.New("sweep already in progress")

// Report summarizes one sweep.
type Report struct {
	Scanned int
	Deleted int
	Failed  int
	Removed []string
}

type Sweeper struct {
	dir      string
	lifetime time.Duration
	locker   lock.Locker
	lockTTL  time.Duration
	logger   *slog.Logger
	now      func() time.Time
	remove   func(path string, isDir bool) error
	running  atomic.Bool
}

type Option func(*Sweeper)

func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// WithLocker guards each sweep with l. ttl bounds how long a crashed
// holder can block other sweepers.
func WithLocker(l lock.Locker, ttl time.Duration) Option {
	return func(s *Sweeper) {
		s.locker = l
		s.lockTTL = ttl
	}
}

func New(dir string, lifetime time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		dir:      dir,
		lifetime: lifetime,
		now:      time.Now,
		remove:   removePath,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)
	return s
}

func removePath(path string, isDir bool) error {
	if isDir {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

func (s *Sweeper) lockKey() string {
	return "sweep:" + filepath.Clean(s.dir)
}

// Sweep deletes every regular file, and every request directory, whose
// last write is older than the lifetime. Failures on single entries are
// logged and counted; they never stop the sweep.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Report{}, ErrSweepInProgress
	}
	defer s.running.Store(false)

	if s.locker != nil {
		key := s.lockKey()
		ok, err := s.locker.Acquire(ctx, key, s.lockTTL)
		if err != nil {
			return Report{}, goerr.Wrap(err, "failed to acquire sweep lock", goerr.V("key", key))
		}
		if !ok {
			return Report{}, ErrSweepInProgress
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), key); err != nil {
				s.logger.Warn("failed to release sweep lock", "key", key, "error", err)
			}
		}()
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("failed to list upload dir", "dir", s.dir, "error", err)
		return Report{}, goerr.Wrap(err, "failed to list upload dir", goerr.V("dir", s.dir))
	}

	var report Report
	now := s.now()
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		path := filepath.Join(s.dir, entry.Name())
		lastWrite, isDir, ok, err := lastWriteTime(path, entry)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				report.Failed++
				s.logger.Warn("failed to stat upload", "file", entry.Name(), "error", err)
			}
			continue
		}
		if !ok {
			continue
		}
		report.Scanned++
		age := now.Sub(lastWrite)
		if age <= s.lifetime {
			continue
		}
		if err := s.remove(path, isDir); err != nil {
			report.Failed++
			s.logger.Warn("failed to delete expired upload", "file", entry.Name(), "error", err)
			continue
		}
		report.Deleted++
		report.Removed = append(report.Removed, entry.Name())
		s.logger.Info("deleted expired upload", "file", entry.Name(), "age", age.Round(time.Second).String())
	}

	s.logger.Debug("sweep finished", "dir", s.dir, "scanned", report.Scanned, "deleted", report.Deleted, "failed", report.Failed)
	return report, nil
}

// lastWriteTime returns the modification time of a regular file, or the
// newest modification time among a directory and its direct children.
// ok is false for entries the sweeper does not manage (symlinks, devices).
func lastWriteTime(path string, entry os.DirEntry) (time.Time, bool, bool, error) {
	info, err := entry.Info()
	if err != nil {
		return time.Time{}, false, false, err
	}
	switch {
	case info.Mode().IsRegular():
		return info.ModTime(), false, true, nil
	case info.IsDir():
		latest := info.ModTime()
		children, err := os.ReadDir(path)
		if err != nil {
			return time.Time{}, true, false, err
		}
		for _, child := range children {
			ci, err := child.Info()
			if err != nil {
				continue
			}
			if ci.ModTime().After(latest) {
				latest = ci.ModTime()
			}
		}
		return latest, true, true, nil
	default:
		return time.Time{}, false, false, nil
	}
}
