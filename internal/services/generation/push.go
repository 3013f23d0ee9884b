package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"marketpush/internal/domain"
	"marketpush/internal/services/selector"
)

const (
	PushMaxLen          = 90
	pushRecommendations = 6

	pushNoItemsText   = "🔥 Check out our latest picks just for you!"
	pushNoSurviveText = "🔥 Hot deals are waiting for you!"
	pushSubText       = "Your favorites are waiting 🎁"
	pushCTA           = "Shop Now"

	fallbackModel = "fallback"
)

// GeneratePush drafts push candidates for the user's top recommendations, keeps the
// best sendable one and attaches its verification. It falls back to fixed copy when
// there is nothing to recommend or nothing usable came back.
func (s *Service) GeneratePush(ctx context.Context, userID string) (*domain.PushContent, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId", "required")
	}
	vctx := s.verifyContext(userID, domain.ChannelPush, "", domain.Constraints{MaxLen: PushMaxLen, NoURL: true})

	items, err := s.recs.GetRecommendations(ctx, userID, pushRecommendations)
	if err != nil {
		return nil, fmt.Errorf("generation.GeneratePush: %w", err)
	}
	if len(items) == 0 {
		return s.fallbackPush(ctx, userID, vctx, pushNoItemsText), nil
	}

	candidates, signals, err := s.draft(ctx, userID, items, vctx, s.cfg.PushCandidates)
	if err != nil {
		if !errors.Is(err, domain.ErrUnavailable) {
			return nil, fmt.Errorf("generation.GeneratePush: %w", err)
		}
		s.log.WarnContext(ctx, "push generation failed, using fallback", slog.String("error", err.Error()))
	}

	best, ok := selector.PickBest(candidates, itemIDs(items), selector.Options{MaxLen: PushMaxLen, NoURL: true})
	if !ok {
		return s.fallbackPush(ctx, userID, vctx, pushNoSurviveText), nil
	}
	res := s.verifier.Verify(ctx, []domain.Candidate{best}, vctx)[0]
	if res.Verdict == domain.VerdictReject {
		s.log.InfoContext(ctx, "push candidate rejected, using fallback",
			slog.String("user_id", userID),
			slog.Int("violations", len(res.Violations)),
		)
		return s.fallbackPush(ctx, userID, vctx, pushNoSurviveText), nil
	}

	referenced := s.referencedItems(ctx, best.Claims)
	var image string
	if ids := best.Claims.ReferencedItemIDs; len(ids) > 0 {
		image = referenced[ids[0]].ImageURL
	}
	return &domain.PushContent{
		ID:          s.newID(),
		UserID:      userID,
		Body:        finalText(res),
		SubText:     pushSubText,
		CTA:         pushCTA,
		ImageURL:    image,
		ItemIDs:     best.Claims.ReferencedItemIDs,
		GeneratedAt: vctx.Now,
		Attribution: buildAttribution(best, vctx, signals, referenced),
		Verify:      &res,
	}, nil
}

func (s *Service) fallbackPush(ctx context.Context, userID string, vctx domain.VerifyContext, text string) *domain.PushContent {
	cand := domain.Candidate{Text: text, Claims: domain.Claims{}.Normalize(), ModelID: fallbackModel}
	return &domain.PushContent{
		ID:          s.newID(),
		UserID:      userID,
		Body:        text,
		SubText:     pushSubText,
		CTA:         pushCTA,
		ItemIDs:     []string{},
		Fallback:    true,
		GeneratedAt: vctx.Now,
		Attribution: fallbackAttribution(vctx),
		Verify:      s.verifyFallback(ctx, cand, vctx),
	}
}

// finalText prefers the advisor's suggestion for copy that needs revising.
func finalText(res domain.VerifyResult) string {
	if res.AutoFix != nil && res.AutoFix.Suggested != nil {
		return *res.AutoFix.Suggested
	}
	return res.Candidate.Text
}
