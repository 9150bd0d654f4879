package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Bot API credentials. An empty token switches the
// bot to console mode.
type TelegramConfig struct {
	Token         string `yaml:"token"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// RedisConfig selects the Redis session backend. An empty address keeps
// sessions in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// HTTPConfig controls the health/metrics/webhook listener. An empty
// address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "30m" or "1h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the bot process configuration, read from a YAML file with
// environment overrides for secrets.
type Config struct {
	LogLevel   string         `yaml:"log_level"`
	SessionTTL Duration       `yaml:"session_ttl"`
	Telegram   TelegramConfig `yaml:"telegram"`
	Redis      RedisConfig    `yaml:"redis"`
	HTTP       HTTPConfig     `yaml:"http"`
}

// LoadConfig reads the YAML file at path. A missing file is not an
// error; defaults plus environment variables still yield a runnable
// console-mode config. TGFLOW_TELEGRAM_TOKEN and TGFLOW_REDIS_PASSWORD
// override their file counterparts so secrets can stay out of the file.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		LogLevel:   "info",
		SessionTTL: Duration(time.Hour),
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if v := os.Getenv("TGFLOW_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TGFLOW_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = Duration(time.Hour)
	}
	return cfg, nil
}

// Level maps the configured log level onto slog's scale. Unknown values
// mean info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
