package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Env        string           `yaml:"env" env:"APP_ENV" env-default:"development"`
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Quota      QuotaConfig      `yaml:"quota"`
	Policy     PolicyConfig     `yaml:"policy"`
	Campaign   CampaignConfig   `yaml:"campaign"`
	Log        LogConfig        `yaml:"log"`
}

// IsProduction reports whether production-only behavior such as the daily quota is on.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// CatalogConfig selects where items, events and holidays come from.
type CatalogConfig struct {
	Backend string `yaml:"backend" env:"CATALOG_BACKEND" env-default:"memory"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL            string `yaml:"url"              env:"DATABASE_URL"`
	MaxConns       int32  `yaml:"max_conns"        env:"DATABASE_MAX_CONNS"        env-default:"10"`
	MinConns       int32  `yaml:"min_conns"        env:"DATABASE_MIN_CONNS"        env-default:"1"`
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"DATABASE_MIGRATE_ON_START" env-default:"true"`
}

// RedisConfig enables the item cache and the shared quota counter. Empty Addr disables both.
type RedisConfig struct {
	Addr     string        `yaml:"addr"      env:"REDIS_ADDR"`
	Password string        `yaml:"password"  env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"        env:"REDIS_DB"        env-default:"0"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"REDIS_CACHE_TTL" env-default:"5m"`
}

// LLMConfig selects the copy generator.
type LLMConfig struct {
	Provider    string        `yaml:"provider"    env:"LLM_PROVIDER"    env-default:"template"`
	APIKey      string        `yaml:"api_key"     env:"GEMINI_API_KEY"`
	Model       string        `yaml:"model"       env:"LLM_MODEL"       env-default:"gemini-2.5-flash"`
	Temperature float32       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.7"`
	Timeout     time.Duration `yaml:"timeout"     env:"LLM_TIMEOUT"     env-default:"30s"`
}

// GenerationConfig holds defaults for the generation flows.
type GenerationConfig struct {
	Locale          string `yaml:"locale"           env:"GEN_LOCALE"           env-default:"en-US"`
	Market          string `yaml:"market"           env:"GEN_MARKET"           env-default:"US"`
	PushCandidates  int    `yaml:"push_candidates"  env:"GEN_PUSH_CANDIDATES"  env-default:"3"`
	EmailCandidates int    `yaml:"email_candidates" env:"GEN_EMAIL_CANDIDATES" env-default:"2"`
}

// QuotaConfig bounds model calls per UTC day. It only applies in production.
type QuotaConfig struct {
	MaxCalls int64 `yaml:"max_calls" env:"QUOTA_MAX_CALLS" env-default:"10"`
}

// PolicyConfig points at an optional lexicon override; empty uses the embedded default.
type PolicyConfig struct {
	Path string `yaml:"path" env:"POLICY_PATH"`
}

// CampaignConfig holds batch generation settings.
type CampaignConfig struct {
	Workers int `yaml:"workers" env:"CAMPAIGN_WORKERS" env-default:"4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
