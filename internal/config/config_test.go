package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamedb-go/internal/content"
	"github.com/mcoot/gamedb-go/internal/storeconn"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gamedb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, storeconn.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Sweep.Interval)
	assert.Equal(t, content.Default(), cfg.Content)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "hunter2")
	path := writeConfig(t, `
log_level: debug
log_format: json
store:
  backend: redis
  host: cache.internal
  port: 6380
  password: ${REDIS_PASSWORD}
  connect_timeout: 2s
sweep:
  enabled: true
  interval: 15m
content:
  default_spawn: "10,10"
  denylist: []
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, storeconn.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache.internal", cfg.Store.Host)
	assert.Equal(t, 6380, cfg.Store.Port)
	assert.Equal(t, "hunter2", cfg.Store.Password)
	assert.Equal(t, 2*time.Second, cfg.Store.ConnectTimeout)
	assert.Equal(t, 5*time.Second, cfg.Store.SelectionTimeout, "unset fields keep defaults")
	assert.True(t, cfg.Sweep.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, "10,10", cfg.Content.DefaultSpawn)
	assert.Equal(t, content.Default().TutorialSpawn, cfg.Content.TutorialSpawn)
	assert.Empty(t, cfg.Content.Denylist, "explicit empty denylist is kept")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: redis
  host: from-file
`)
	t.Setenv("GAMEDB_STORE_HOST", "from-env")
	t.Setenv("GAMEDB_STORE_TLS", "true")
	t.Setenv("GAMEDB_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Store.Host)
	assert.True(t, cfg.Store.TLS)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "store:\n  backend: mongo\n"},
		{"bad spawn", "content:\n  tutorial_spawn: nowhere\n"},
		{"negative interval", "sweep:\n  enabled: true\n  interval: -1s\n"},
		{"malformed yaml", "store: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"key":"value"`)
}
