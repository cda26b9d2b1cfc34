package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "ADDR", "SERVER_MODE", "ALLOWED_ORIGINS", "KEEPALIVE_SECONDS",
		"DATABASE_DSN", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OLLAMA_BASE_URL",
		"MODEL_CATALOG_PATH", "MAX_AGENTS", "MAX_ROUND_LIMIT", "RUN_CAPACITY",
		"IDLE_GRACE_SECONDS", "LOG_LEVEL", "LOG_FORMAT", "RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	s := Load()
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, 15*time.Second, s.Server.KeepaliveInterval)
	assert.Equal(t, 4, s.Runs.MaxAgents)
	assert.Equal(t, 40, s.Runs.MaxRoundLimit)
	assert.Equal(t, 1, s.Runs.Capacity)
	assert.Equal(t, 5*time.Second, s.Runs.IdleGrace)
	assert.Empty(t, s.Database.DSN)
}

func TestLoadYAMLFileThenEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  allowed_origins: ["https://app.example.com"]
runs:
  max_agents: 3
  capacity: 2
providers:
  openai_api_key: from-file
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	s := Load()
	assert.Equal(t, ":9090", s.Server.Addr)
	assert.Equal(t, []string{"https://app.example.com"}, s.Server.AllowedOrigins)
	assert.Equal(t, 3, s.Runs.MaxAgents)
	assert.Equal(t, 2, s.Runs.Capacity)
	assert.Equal(t, "from-file", s.Providers.OpenAIAPIKey)

	// Environment wins over the file.
	t.Setenv("ADDR", ":7070")
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("MAX_AGENTS", "2")
	t.Setenv("IDLE_GRACE_SECONDS", "9")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	s = Load()
	assert.Equal(t, ":7070", s.Server.Addr)
	assert.Equal(t, "from-env", s.Providers.OpenAIAPIKey)
	assert.Equal(t, 2, s.Runs.MaxAgents)
	assert.Equal(t, 9*time.Second, s.Runs.IdleGrace)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.Server.AllowedOrigins)
}

func TestLimitsConversion(t *testing.T) {
	clearEnv(t)
	s := Default()
	s.Runs.MaxAgents = 6
	s.Runs.MaxRoundLimit = 10

	limits := s.Limits()
	assert.Equal(t, 6, limits.MaxAgents)
	assert.Equal(t, 10, limits.MaxRoundLimit)
	// Untouched bounds keep their defaults.
	assert.Equal(t, 4000, limits.MaxTopicChars)
}
