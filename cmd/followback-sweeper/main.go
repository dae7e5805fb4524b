package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/followback/internal/command"
	"github.com/example/followback/internal/sweeper"
	"github.com/urfave/cli/v3"
)

// runSweeperFunc is swapped in tests.
var runSweeperFunc = func(ctx context.Context, sw *sweeper.Sweeper, interval time.Duration) error {
	return sw.Run(ctx, interval)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args); err != nil {
		log.Fatalf("followback-sweeper failed: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	if err := command.LoadDotEnv(); err != nil {
		return err
	}
	return newCommand().Run(ctx, args)
}

func newCommand() *cli.Command {
	flags := append(command.CommonFlags(),
		&cli.BoolFlag{
			Name:  "once",
			Usage: "run a single sweep and exit",
		},
	)
	return &cli.Command{
		Name:   "followback-sweeper",
		Usage:  "delete uploaded exports older than the retention lifetime",
		Flags:  flags,
		Action: sweep,
	}
}

func sweep(ctx context.Context, cmd *cli.Command) error {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}
	logger := command.SetupLogger(cmd, cfg)

	sw, lockLabel, err := sweeper.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	if !cmd.Bool("once") {
		logger.Info("followback-sweeper started", "dir", cfg.UploadDir, "lock", lockLabel)
		return runSweeperFunc(ctx, sw, cfg.Sweeper.Interval)
	}

	report, err := sw.Sweep(ctx)
	if errors.Is(err, sweeper.ErrSweepInProgress) {
		logger.Info("another sweep is running, nothing to do", "dir", cfg.UploadDir)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("sweep complete", "dir", cfg.UploadDir, "scanned", report.Scanned, "deleted", report.Deleted, "failed", report.Failed)
	return nil
}
