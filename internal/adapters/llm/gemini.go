package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"marketpush/internal/config"
	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

// contentGenerator is the part of genai.Models the adapter calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini drafts candidates with one GenerateContent call asking for N candidates
// in JSON mode.
type Gemini struct {
	log         *slog.Logger
	models      contentGenerator
	model       string
	temperature float32
	timeout     time.Duration
}

func NewGemini(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}
	return newGemini(logger, client.Models, cfg), nil
}

func newGemini(logger *slog.Logger, models contentGenerator, cfg config.LLMConfig) *Gemini {
	return &Gemini{
		log:         logger.With("generator", "gemini"),
		models:      models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Generate(ctx context.Context, req ports.GenerateRequest) ([]domain.Candidate, error) {
	if req.N <= 0 {
		return nil, nil
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(req)), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		CandidateCount:   int32(req.N),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("llm.Generate: %w", err)
	}

	model := resp.ModelVersion
	if model == "" {
		model = g.model
	}
	var tokens *int
	if resp.UsageMetadata != nil {
		n := int(resp.UsageMetadata.TotalTokenCount)
		tokens = &n
	}

	out := make([]domain.Candidate, 0, len(resp.Candidates))
	for i, c := range resp.Candidates {
		cand, err := parseCandidate(candidateText(c), model, tokens)
		if err != nil {
			g.log.WarnContext(ctx, "skipping candidate",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, cand)
	}
	g.log.DebugContext(ctx, "generated",
		slog.String("channel", string(req.Channel)),
		slog.Int("candidates", len(out)),
		slog.Duration("took", time.Since(start)),
	)
	if len(out) == 0 {
		return nil, fmt.Errorf("llm.Generate: model returned no usable candidates")
	}
	return out, nil
}

func candidateText(c *genai.Candidate) string {
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
