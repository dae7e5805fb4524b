// Package command holds the flag set and bootstrap steps shared by the
// followback binaries.
package command

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/example/followback/internal/config"
	"github.com/example/followback/internal/logging"
	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// LogWriter is where the binaries write logs; tests swap it.
var LogWriter io.Writer = os.Stderr

// CommonFlags are accepted by every binary. Flag values win over the
// config file and FOLLOWBACK_* environment variables.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			Sources: cli.EnvVars("FOLLOWBACK_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "upload-dir",
			Usage: "directory holding uploaded exports",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "log-color",
			Usage: "colorize log output",
		},
	}
}

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return goerr.Wrap(err, "failed to load .env")
	}
	return nil
}

// LoadConfig resolves the configuration for cmd.
func LoadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, goerr.Wrap(err, "failed to load configuration", goerr.V("path", cmd.String("config")))
	}
	if cmd.IsSet("upload-dir") {
		cfg.UploadDir = cmd.String("upload-dir")
		if err := config.Validate(cfg); err != nil {
			return config.Config{}, goerr.Wrap(err, "invalid configuration")
		}
	}
	return cfg, nil
}

// SetupLogger installs the default logger for cmd and cfg.
func SetupLogger(cmd *cli.Command, cfg config.Config) *slog.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	return logging.Setup(LogWriter, level, cmd.Bool("log-color"))
}
