package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
env: production

server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"

catalog:
  backend: postgres

database:
  url: "postgres://u:p@localhost:5432/market"
  max_conns: 4

redis:
  addr: "localhost:6379"
  cache_ttl: "1m"

llm:
  provider: gemini
  api_key: "test-key"
  model: "gemini-2.5-pro"

generation:
  locale: zh-CN
  push_candidates: 4

quota:
  max_calls: 25

log:
  level: debug
  format: text
`

func TestLoad_ValidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout, "default kept")
	assert.Equal(t, "postgres", cfg.Catalog.Backend)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, "zh-CN", cfg.Generation.Locale)
	assert.Equal(t, 4, cfg.Generation.PushCandidates)
	assert.Equal(t, 2, cfg.Generation.EmailCandidates)
	assert.Equal(t, int64(25), cfg.Quota.MaxCalls)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("QUOTA_MAX_CALLS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, int64(3), cfg.Quota.MaxCalls)
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Catalog.Backend)
	assert.Equal(t, "template", cfg.LLM.Provider)
	assert.Equal(t, "en-US", cfg.Generation.Locale)
	assert.Equal(t, 3, cfg.Generation.PushCandidates)
	assert.Equal(t, int64(10), cfg.Quota.MaxCalls)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:     ServerConfig{Port: 8080},
			Catalog:    CatalogConfig{Backend: "memory"},
			LLM:        LLMConfig{Provider: "template"},
			Generation: GenerationConfig{Locale: "en-US", PushCandidates: 3, EmailCandidates: 2},
			Quota:      QuotaConfig{MaxCalls: 10},
			Campaign:   CampaignConfig{Workers: 2},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown backend", func(c *Config) { c.Catalog.Backend = "mongo" }, "catalog.backend"},
		{"postgres without url", func(c *Config) { c.Catalog.Backend = "postgres" }, "database.url"},
		{"gemini without key", func(c *Config) { c.LLM.Provider = "gemini" }, "llm.api_key"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "gpt" }, "llm.provider"},
		{"too many candidates", func(c *Config) { c.Generation.PushCandidates = 9 }, "push_candidates"},
		{"zero quota", func(c *Config) { c.Quota.MaxCalls = 0 }, "quota.max_calls"},
		{"zero workers", func(c *Config) { c.Campaign.Workers = 0 }, "campaign.workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
