package config

import (
	"fmt"
	"strings"
)

const maxCandidates = 5

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	switch strings.ToLower(c.Catalog.Backend) {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres catalog")
		}
	default:
		return fmt.Errorf("catalog.backend must be memory or postgres (got %q)", c.Catalog.Backend)
	}

	switch strings.ToLower(c.LLM.Provider) {
	case "template":
	case "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("llm.provider must be template or gemini (got %q)", c.LLM.Provider)
	}

	if err := c.Generation.validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}

	if c.Quota.MaxCalls <= 0 {
		return fmt.Errorf("quota.max_calls must be > 0 (got %d)", c.Quota.MaxCalls)
	}
	if c.Campaign.Workers <= 0 {
		return fmt.Errorf("campaign.workers must be > 0 (got %d)", c.Campaign.Workers)
	}

	return nil
}

func (g GenerationConfig) validate() error {
	if g.PushCandidates < 1 || g.PushCandidates > maxCandidates {
		return fmt.Errorf("push_candidates must be in 1..%d (got %d)", maxCandidates, g.PushCandidates)
	}
	if g.EmailCandidates < 1 || g.EmailCandidates > maxCandidates {
		return fmt.Errorf("email_candidates must be in 1..%d (got %d)", maxCandidates, g.EmailCandidates)
	}
	if g.Locale == "" {
		return fmt.Errorf("locale is required")
	}
	return nil
}
