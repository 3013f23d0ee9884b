package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"marketpush/internal/domain"
)

// wireCandidate is the JSON the model is asked to return. Push fills Text,
// email fills the email parts.
type wireCandidate struct {
	Text    string        `json:"text"`
	Subject string        `json:"subject"`
	Preview string        `json:"preview"`
	Body    string        `json:"body"`
	Bullets []string      `json:"bullets"`
	CTA     string        `json:"cta"`
	Claims  domain.Claims `json:"claims"`
}

var errEmptyOutput = errors.New("empty model output")

// stripFences removes a markdown code fence some models add despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseCandidate turns one model output into a candidate. Output that is not JSON
// is kept as plain text with empty claims so the verifier can still judge it.
func parseCandidate(raw, model string, tokens *int) (domain.Candidate, error) {
	raw = stripFences(raw)
	if raw == "" {
		return domain.Candidate{}, errEmptyOutput
	}

	var w wireCandidate
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return domain.Candidate{
			Text:       raw,
			Claims:     domain.Claims{}.Normalize(),
			ModelID:    model,
			TokenCount: tokens,
		}, nil
	}

	text := w.Text
	if text == "" {
		text = w.Body
	}
	return domain.Candidate{
		Text:       text,
		Claims:     w.Claims.Normalize(),
		ModelID:    model,
		TokenCount: tokens,
		Subject:    w.Subject,
		Preview:    w.Preview,
		Body:       w.Body,
		Bullets:    w.Bullets,
		CTA:        w.CTA,
	}, nil
}
