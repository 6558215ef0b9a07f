package config

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

	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadEmptyPathDefaults(t *testing.T) {
	cfg, err := LoadAndValidate("")

	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Listen.Addr)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Listen.ShutdownTimeout)
	assert.Equal(t, "Authorization", cfg.Auth.Header)
	assert.Equal(t, "Bearer random-secret", cfg.Auth.Token)
	assert.Equal(t, LibraryGorilla, cfg.Websocket.Library)
	assert.Equal(t, 12*time.Second, cfg.Websocket.Keepalive)
	assert.Equal(t, 3*time.Second, cfg.Websocket.ConnectTimeout)
	assert.False(t, cfg.Websocket.CheckOrigin)
	assert.Equal(t, LogLevelInfo, cfg.Log.Level)
	assert.Equal(t, LogFormatText, cfg.Log.Format)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("WSGRAPHQL_TEST_TOKEN", "Bearer from-env")

	path := writeConfig(t, `
listen:
  addr: "127.0.0.1:8080"
  shutdown_timeout: 30s
auth:
  header: X-Token
  token: ${WSGRAPHQL_TEST_TOKEN}
websocket:
  library: nhooyr
  keepalive: 5s
  check_origin: true
log:
  level: debug
  format: json
`)

	cfg, err := LoadAndValidate(path)

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen.Addr)
	assert.Equal(t, 30*time.Second, cfg.Listen.ShutdownTimeout)
	assert.Equal(t, "X-Token", cfg.Auth.Header)
	assert.Equal(t, "Bearer from-env", cfg.Auth.Token)
	assert.Equal(t, LibraryNhooyr, cfg.Websocket.Library)
	assert.Equal(t, 5*time.Second, cfg.Websocket.Keepalive)
	assert.Equal(t, DefaultConnectTimeout, cfg.Websocket.ConnectTimeout)
	assert.True(t, cfg.Websocket.CheckOrigin)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "listen: [")

	_, err := Load(path)

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{
			name: "library",
			mutate: func(cfg *Config) {
				cfg.Websocket.Library = "fasthttp"
			},
		},
		{
			name: "shutdown timeout",
			mutate: func(cfg *Config) {
				cfg.Listen.ShutdownTimeout = -time.Second
			},
		},
		{
			name: "keepalive",
			mutate: func(cfg *Config) {
				cfg.Websocket.Keepalive = -time.Second
			},
		},
		{
			name: "connect timeout",
			mutate: func(cfg *Config) {
				cfg.Websocket.ConnectTimeout = -time.Second
			},
		},
		{
			name: "log level",
			mutate: func(cfg *Config) {
				cfg.Log.Level = "trace"
			},
		},
		{
			name: "log format",
			mutate: func(cfg *Config) {
				cfg.Log.Format = "xml"
			},
		},
		{
			name: "token",
			mutate: func(cfg *Config) {
				cfg.Auth.Token = ""
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithDefaults("")
			require.NoError(t, err)

			tt.mutate(cfg)

			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{}.SlogLevel())
}
