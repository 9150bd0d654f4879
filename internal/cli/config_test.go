package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tgflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.SessionTTL.Std())
	assert.Empty(t, cfg.Telegram.Token)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadConfig_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
session_ttl: 30m
telegram:
  token: file-token
  webhook_secret: hook
redis:
  addr: localhost:6379
  db: 2
http:
  addr: :8080
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL.Std())
	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, "hook", cfg.Telegram.WebhookSecret)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: file-token
redis:
  password: file-pass
`)
	t.Setenv("TGFLOW_TELEGRAM_TOKEN", "env-token")
	t.Setenv("TGFLOW_REDIS_PASSWORD", "env-pass")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "env-pass", cfg.Redis.Password)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "log_level: [broken")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_ZeroTTLFallsBack(t *testing.T) {
	path := writeConfig(t, "session_ttl: 0s")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.SessionTTL.Std())
}

func TestConfig_Level(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).Level())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warn"}).Level())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).Level())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "verbose"}).Level())
	assert.Equal(t, slog.LevelInfo, (&Config{}).Level())
}
