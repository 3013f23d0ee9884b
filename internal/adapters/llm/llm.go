// Package llm holds the copy generators behind ports.Generator.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marketpush/internal/config"
	"marketpush/internal/ports"
)

// New returns the generator selected by cfg.Provider.
func New(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (ports.Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "template":
		return NewTemplate(), nil
	case "gemini":
		return NewGemini(ctx, logger, cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
