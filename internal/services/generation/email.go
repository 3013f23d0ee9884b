package generation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"marketpush/internal/domain"
)

const (
	EmailMaxLen          = 500
	emailRecommendations = 6
	emailPreviewRunes    = 60

	emailDefaultSubject = "Recommended for you"
	emailDefaultCTA     = "View Details"

	emailFallbackSubject = "Your personalized picks are here"
	emailFallbackPreview = "Hand-selected recommendations just for you"
	emailFallbackBody    = "Check out our latest recommendations based on what shoppers like you are viewing today."
	emailFallbackCTA     = "Explore Now"
)

var plainText = bluemonday.StrictPolicy()

// sanitize strips markup from model output and leaves readable plain text.
func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

// GenerateEmail drafts email candidates and uses the first one. Markup in every part
// is stripped and item references outside the recommendation set are dropped before
// verification.
func (s *Service) GenerateEmail(ctx context.Context, userID string) (*domain.EmailContent, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId", "required")
	}
	vctx := s.verifyContext(userID, domain.ChannelEmail, "", domain.Constraints{MaxLen: EmailMaxLen})

	items, err := s.recs.GetRecommendations(ctx, userID, emailRecommendations)
	if err != nil {
		return nil, fmt.Errorf("generation.GenerateEmail: %w", err)
	}

	candidates, signals, err := s.draft(ctx, userID, items, vctx, s.cfg.EmailCandidates)
	if err != nil {
		if !errors.Is(err, domain.ErrUnavailable) {
			return nil, fmt.Errorf("generation.GenerateEmail: %w", err)
		}
		s.log.WarnContext(ctx, "email generation failed, using fallback", slog.String("error", err.Error()))
	}
	if len(candidates) == 0 {
		return s.fallbackEmail(ctx, userID, vctx, items), nil
	}

	cand := emailCandidate(candidates[0], items)
	res := s.verifier.Verify(ctx, []domain.Candidate{cand}, vctx)[0]
	if res.Verdict == domain.VerdictReject {
		s.log.InfoContext(ctx, "email candidate rejected, using fallback",
			slog.String("user_id", userID),
			slog.Int("violations", len(res.Violations)),
		)
		return s.fallbackEmail(ctx, userID, vctx, items), nil
	}

	return &domain.EmailContent{
		ID:          s.newID(),
		UserID:      userID,
		Subject:     cand.Subject,
		Preview:     cand.Preview,
		Body:        finalText(res),
		Bullets:     cand.Bullets,
		CTA:         cand.CTA,
		Items:       items,
		GeneratedAt: vctx.Now,
		Attribution: buildAttribution(cand, vctx, signals, s.referencedItems(ctx, cand.Claims)),
		Verify:      &res,
	}, nil
}

// emailCandidate fills the missing parts of a raw candidate and sanitizes all of them.
// Text is set to the body so the verifier judges what the reader sees.
func emailCandidate(c domain.Candidate, items []domain.Item) domain.Candidate {
	allowed := make(map[string]struct{}, len(items))
	for _, it := range items {
		allowed[it.ItemID] = struct{}{}
	}

	body := sanitize(c.Body)
	if body == "" {
		body = sanitize(c.Text)
	}
	subject := sanitize(c.Subject)
	if subject == "" {
		subject = emailDefaultSubject
	}
	preview := sanitize(c.Preview)
	if preview == "" {
		preview = sanitize(c.Text)
		if utf8.RuneCountInString(preview) > emailPreviewRunes {
			preview = string([]rune(preview)[:emailPreviewRunes])
		}
	}
	cta := sanitize(c.CTA)
	if cta == "" {
		cta = emailDefaultCTA
	}
	bullets := make([]string, 0, len(c.Bullets))
	for _, b := range c.Bullets {
		if b = sanitize(b); b != "" {
			bullets = append(bullets, b)
		}
	}

	return domain.Candidate{
		Text:       body,
		Claims:     c.Claims.RestrictItems(allowed),
		ModelID:    c.ModelID,
		TokenCount: c.TokenCount,
		Subject:    subject,
		Preview:    preview,
		Body:       body,
		Bullets:    bullets,
		CTA:        cta,
	}
}

func (s *Service) fallbackEmail(ctx context.Context, userID string, vctx domain.VerifyContext, items []domain.Item) *domain.EmailContent {
	if items == nil {
		items = []domain.Item{}
	}
	cand := domain.Candidate{
		Text:    emailFallbackBody,
		Claims:  domain.Claims{}.Normalize(),
		ModelID: fallbackModel,
		Subject: emailFallbackSubject,
		Preview: emailFallbackPreview,
		Body:    emailFallbackBody,
		CTA:     emailFallbackCTA,
	}
	return &domain.EmailContent{
		ID:          s.newID(),
		UserID:      userID,
		Subject:     emailFallbackSubject,
		Preview:     emailFallbackPreview,
		Body:        emailFallbackBody,
		Bullets:     []string{},
		CTA:         emailFallbackCTA,
		Items:       items,
		Fallback:    true,
		GeneratedAt: vctx.Now,
		Attribution: fallbackAttribution(vctx),
		Verify:      s.verifyFallback(ctx, cand, vctx),
	}
}
