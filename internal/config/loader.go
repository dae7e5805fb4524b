package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageShared   = "shared"
	StorageIsolated = "isolated"

	LockMemory   = "memory"
	LockRedis    = "redis"
	LockDisabled = "disabled"
)

// Config holds everything the api and sweeper binaries need.
type Config struct {
	Addr           string  `yaml:"addr"`
	UploadDir      string  `yaml:"uploadDir"`
	StorageMode    string  `yaml:"storageMode"`
	MaxUploadBytes int64   `yaml:"maxUploadBytes"`
	LogLevel       string  `yaml:"logLevel"`
	Sweeper        Sweeper `yaml:"sweeper"`
	Lock           Lock    `yaml:"lock"`
}

type Sweeper struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Lifetime time.Duration `yaml:"lifetime"`
}

type Lock struct {
	Mode  string        `yaml:"mode"`
	TTL   time.Duration `yaml:"ttl"`
	Redis Redis         `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		UploadDir:      "uploads",
		StorageMode:    StorageShared,
		MaxUploadBytes: 32 << 20,
		LogLevel:       "info",
		Sweeper: Sweeper{
			Enabled:  true,
			Interval: 3 * time.Hour,
			Lifetime: 24 * time.Hour,
		},
		Lock: Lock{
			Mode: LockMemory,
			Redis: Redis{
				Addr:   "127.0.0.1:6379",
				Prefix: "followback:lock:",
			},
		},
	}
}

// Load applies defaults, the optional YAML file at path, then environment
// overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(content, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML content onto cfg; keys absent from content keep
// their current values.
func Decode(content []byte, cfg *Config) error {
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func ApplyEnv(cfg *Config) error {
	cfg.Addr = getEnv("FOLLOWBACK_ADDR", cfg.Addr)
	cfg.UploadDir = getEnv("FOLLOWBACK_UPLOAD_DIR", cfg.UploadDir)
	cfg.StorageMode = strings.ToLower(getEnv("FOLLOWBACK_STORAGE_MODE", cfg.StorageMode))
	cfg.LogLevel = strings.ToLower(getEnv("FOLLOWBACK_LOG_LEVEL", cfg.LogLevel))
	cfg.Lock.Mode = strings.ToLower(getEnv("FOLLOWBACK_LOCK", cfg.Lock.Mode))
	cfg.Lock.Redis.Addr = getEnv("FOLLOWBACK_REDIS_ADDR", cfg.Lock.Redis.Addr)
	cfg.Lock.Redis.Password = getEnv("FOLLOWBACK_REDIS_PASSWORD", cfg.Lock.Redis.Password)
	cfg.Lock.Redis.Prefix = getEnv("FOLLOWBACK_REDIS_PREFIX", cfg.Lock.Redis.Prefix)

	var err error
	if cfg.MaxUploadBytes, err = getEnvInt64("FOLLOWBACK_MAX_UPLOAD_BYTES", cfg.MaxUploadBytes); err != nil {
		return err
	}
	if cfg.Lock.Redis.DB, err = getEnvInt("FOLLOWBACK_REDIS_DB", cfg.Lock.Redis.DB); err != nil {
		return err
	}
	if cfg.Sweeper.Interval, err = getEnvDuration("FOLLOWBACK_SWEEP_INTERVAL", cfg.Sweeper.Interval); err != nil {
		return err
	}
	if cfg.Sweeper.Lifetime, err = getEnvDuration("FOLLOWBACK_FILE_LIFETIME", cfg.Sweeper.Lifetime); err != nil {
		return err
	}
	if cfg.Lock.TTL, err = getEnvDuration("FOLLOWBACK_LOCK_TTL", cfg.Lock.TTL); err != nil {
		return err
	}
	if cfg.Sweeper.Enabled, err = getEnvBool("FOLLOWBACK_SWEEPER", cfg.Sweeper.Enabled); err != nil {
		return err
	}
	return nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.UploadDir) == "" {
		return fmt.Errorf("uploadDir is required")
	}
	switch cfg.StorageMode {
	case StorageShared, StorageIsolated:
	default:
		return fmt.Errorf("unsupported storageMode %q", cfg.StorageMode)
	}
	switch cfg.Lock.Mode {
	case LockMemory, LockRedis, LockDisabled:
	default:
		return fmt.Errorf("unsupported lock.mode %q", cfg.Lock.Mode)
	}
	if cfg.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper.interval must be positive")
	}
	if cfg.Sweeper.Lifetime <= 0 {
		return fmt.Errorf("sweeper.lifetime must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("maxUploadBytes must be positive")
	}
	if cfg.Lock.TTL < 0 {
		return fmt.Errorf("lock.ttl must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	switch strings.ToLower(os.Getenv(key)) {
	case "":
		return fallback, nil
	case "1", "true", "on", "yes", "enabled":
		return true, nil
	case "0", "false", "off", "no", "disabled":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s: %q", key, os.Getenv(key))
	}
}
