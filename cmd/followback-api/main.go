package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/example/followback/internal/command"
	"github.com/example/followback/internal/storage"
	"github.com/example/followback/internal/sweeper"
	"github.com/example/followback/internal/upload"
	"github.com/urfave/cli/v3"
)

var listenAndServe = http.ListenAndServe

func main() {
	if err := run(context.Background(), os.Args); err != nil {
		log.Fatalf("followback-api failed: %v", err)
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
		&cli.StringFlag{
			Name:  "addr",
			Usage: "listen address",
		},
	)
	return &cli.Command{
		Name:   "followback-api",
		Usage:  "compare followers and following exports over HTTP",
		Flags:  flags,
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := command.LoadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		cfg.Addr = cmd.String("addr")
	}
	logger := command.SetupLogger(cmd, cfg)

	store, err := storage.NewDiskStore(cfg.UploadDir, cfg.StorageMode)
	if err != nil {
		return fmt.Errorf("storage init failed: %w", err)
	}
	handler := upload.NewHandler(store, upload.WithMaxUploadBytes(cfg.MaxUploadBytes), upload.WithLogger(logger))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	if cfg.Sweeper.Enabled {
		sw, lockLabel, err := sweeper.FromConfig(cfg, logger)
		if err != nil {
			return fmt.Errorf("sweeper init failed: %w", err)
		}
		logger.Info("retention sweeper enabled", "lock", lockLabel)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sw.Run(ctx, cfg.Sweeper.Interval); err != nil {
				logger.Error("sweeper stopped", "error", err)
			}
		}()
	}

	logger.Info("followback-api listening", slog.String("addr", cfg.Addr), slog.String("upload_dir", cfg.UploadDir), slog.String("storage", cfg.StorageMode))
	err = listenAndServe(cfg.Addr, newMux(handler))
	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("api stopped: %w", err)
	}
	return nil
}

func newMux(handler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/upload", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
