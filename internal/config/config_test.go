package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("YOURGENCY_URL", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "http://localhost:8080", cfg.Gateway.BaseURL)
	assert.Equal(t, 0, cfg.Gateway.MaxRetries)
	assert.Equal(t, "gemini-3-flash-preview", cfg.AI.FastModel)
	assert.Equal(t, int32(32768), cfg.AI.ThinkingBudget)
	assert.False(t, cfg.SMTPEnabled())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  shutdown_timeout: 3s
database:
  driver: sqlite
  url: "file:crm.db"
ai:
  api_key: from-file
  score_cache_ttl: 5m
gateway:
  base_url: "http://crm.internal:9000/"
  max_retries: 2
telegram:
  bot_token: abc
`), 0o600))

	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.Equal(t, 5*time.Minute, cfg.AI.ScoreCacheTTL)
	assert.Equal(t, "http://crm.internal:9000", cfg.Gateway.BaseURL)
	assert.Equal(t, 2, cfg.Gateway.MaxRetries)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_EnvPathAndBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0o600))
	t.Setenv("YOURGENCY_CONFIG", path)
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)

	t.Setenv("PORT", "eighty")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}
