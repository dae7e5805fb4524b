package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
)

// Run sweeps every interval until ctx is done, then waits for a running
// sweep to finish. Ticks that fire while a sweep is still running are
// skipped.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return goerr.New("sweep interval must be positive", goerr.V("interval", interval))
	}
	logger := cronLogger{l: s.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(cron.Every(interval), cron.FuncJob(func() { s.tick(ctx) }))

	s.logger.Info("sweeper started", "dir", s.dir, "interval", interval.String(), "lifetime", s.lifetime.String())
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("sweeper stopped", "dir", s.dir)
	return nil
}

func (s *Sweeper) tick(ctx context.Context) {
	_, err := s.Sweep(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSweepInProgress):
		s.logger.Debug("sweep skipped, another sweep holds the guard", "dir", s.dir)
	case errors.Is(err, context.Canceled):
	default:
		s.logger.Warn("sweep failed", "dir", s.dir, "error", err)
	}
}

type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
