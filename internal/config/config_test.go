package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "hub.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Empty(t, cfg.Auth.APIKey)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.Origins)
	require.Equal(t, 2000, cfg.Sync.ChunkSize)
	require.Equal(t, 5*time.Minute, cfg.Sync.RunTimeout.Std())
	require.Empty(t, cfg.Feeds)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HUB_SERVER_HOST", "127.0.0.1")
	t.Setenv("HUB_SERVER_PORT", "9000")
	t.Setenv("HUB_DB_PATH", "/data/hub.db")
	t.Setenv("HUB_LOG_LEVEL", "debug")
	t.Setenv("HUB_API_KEY", "secret")
	t.Setenv("HUB_CORS_ORIGINS", "https://hub.example.com, https://admin.example.com")
	t.Setenv("HUB_CHUNK_SIZE", "500")
	t.Setenv("HUB_RUN_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "/data/hub.db", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "secret", cfg.Auth.APIKey)
	require.Equal(t, []string{"https://hub.example.com", "https://admin.example.com"}, cfg.CORS.Origins)
	require.Equal(t, 500, cfg.Sync.ChunkSize)
	require.Equal(t, 90*time.Second, cfg.Sync.RunTimeout.Std())
}

func TestLoadYAMLFile(t *testing.T) {
	raw := `
server:
  host: 10.0.0.5
  port: 8080
auth:
  api_key: from-yaml
feeds:
  - source: whoop
    category: health
    url: https://api.example.com/feed
    token: tok-123
    interval: 15m
`
	path := filepath.Join(t.TempDir(), "hub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	t.Setenv("HUB_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "10.0.0.5", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "from-yaml", cfg.Auth.APIKey)
	require.Len(t, cfg.Feeds, 1)
	require.Equal(t, "whoop", cfg.Feeds[0].Source)
	require.Equal(t, "https://api.example.com/feed", cfg.Feeds[0].URL)
	require.Equal(t, 15*time.Minute, cfg.Feeds[0].Interval.Std())
}

func TestEnvBeatsYAML(t *testing.T) {
	raw := `
auth:
  api_key: from-yaml
`
	path := filepath.Join(t.TempDir(), "hub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	t.Setenv("HUB_CONFIG_PATH", path)
	t.Setenv("HUB_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Auth.APIKey)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("HUB_SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", ParseLogLevel("debug").String())
	require.Equal(t, "WARN", ParseLogLevel("warn").String())
	require.Equal(t, "ERROR", ParseLogLevel("error").String())
	require.Equal(t, "INFO", ParseLogLevel("unknown").String())
}
