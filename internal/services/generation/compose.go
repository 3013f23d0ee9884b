package generation

import (
	"context"
	"fmt"
	"log/slog"

	"marketpush/internal/domain"
)

const (
	ComposePushMaxLen  = 90
	ComposeEmailMaxLen = 200
	composeItems       = 3

	msgQuotaExceeded = "Daily API limit exceeded. Please try again tomorrow."
	msgNoCandidates  = "LLM failed to generate candidates"
	msgAllRejected   = "All candidates failed verification"
)

// Compose generates candidates for the requested channel, verifies all of them and
// returns the best one. A successful compose counts against the daily quota.
//
// Errors: domain.ErrQuotaExceeded when the quota is spent, a *domain.ValidationError
// for a malformed request and domain.ErrUnavailable when the generator failed or
// produced nothing. A rejected best candidate is not an error; the result carries
// Success=false and the verification.
func (s *Service) Compose(ctx context.Context, req domain.ComposeRequest) (domain.ComposeResult, error) {
	if s.quota != nil {
		st, err := s.quota.Status(ctx)
		if err != nil {
			return domain.ComposeResult{}, fmt.Errorf("generation.Compose: %w", err)
		}
		if !st.Allowed() {
			return domain.ComposeResult{Channel: req.Channel, Error: msgQuotaExceeded}, domain.ErrQuotaExceeded
		}
	}
	if err := req.Validate(); err != nil {
		return domain.ComposeResult{}, err
	}

	constraints := domain.Constraints{MaxLen: ComposeEmailMaxLen}
	if req.Channel == domain.ChannelPush {
		constraints = domain.Constraints{MaxLen: ComposePushMaxLen, NoURL: true}
	}
	vctx := s.verifyContext(req.UserID, req.Channel, req.Locale, constraints)

	items, err := s.composeItems(ctx, req)
	if err != nil {
		return domain.ComposeResult{}, fmt.Errorf("generation.Compose: %w", err)
	}

	n := s.cfg.EmailCandidates
	if req.Channel == domain.ChannelPush {
		n = s.cfg.PushCandidates
	}
	candidates, _, err := s.draft(ctx, req.UserID, items, vctx, n)
	if err != nil {
		return domain.ComposeResult{Channel: req.Channel, Error: msgNoCandidates}, fmt.Errorf("generation.Compose: %w", err)
	}
	if len(candidates) == 0 {
		return domain.ComposeResult{Channel: req.Channel, Error: msgNoCandidates},
			fmt.Errorf("generation.Compose: %w: no candidates", domain.ErrUnavailable)
	}

	results := s.verifier.Verify(ctx, candidates, vctx)
	best, ok := selectBest(results)
	if !ok || best.Verdict == domain.VerdictReject {
		s.log.InfoContext(ctx, "all candidates rejected",
			slog.String("user_id", req.UserID),
			slog.Int("candidates", len(candidates)),
		)
		res := domain.ComposeResult{Channel: req.Channel, Error: msgAllRejected}
		if ok {
			res.Verification = &best
		}
		return res, nil
	}

	if s.quota != nil {
		if _, err := s.quota.Record(ctx); err != nil {
			s.log.WarnContext(ctx, "quota record failed", slog.String("error", err.Error()))
		}
	}
	return domain.ComposeResult{
		Success:      true,
		Channel:      req.Channel,
		Message:      finalText(best),
		Verification: &best,
	}, nil
}

// composeItems resolves the requested ids in request order, or falls back to the
// user's top recommendations.
func (s *Service) composeItems(ctx context.Context, req domain.ComposeRequest) ([]domain.Item, error) {
	if len(req.ItemIDs) == 0 {
		return s.recs.GetRecommendations(ctx, req.UserID, composeItems)
	}
	found, err := s.catalog.GetItems(ctx, req.ItemIDs)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if it, ok := found[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

// selectBest prefers the highest-scoring ALLOW, then the highest-scoring REVISE that
// carries a fix, then whatever scored highest. Scores are the mean of the three
// layers; earlier results win ties.
func selectBest(results []domain.VerifyResult) (domain.VerifyResult, bool) {
	pick := func(keep func(domain.VerifyResult) bool) (domain.VerifyResult, bool) {
		var (
			best  domain.VerifyResult
			found bool
		)
		for _, r := range results {
			if !keep(r) {
				continue
			}
			if !found || r.Scores.Mean() > best.Scores.Mean() {
				best, found = r, true
			}
		}
		return best, found
	}
	if r, ok := pick(func(r domain.VerifyResult) bool { return r.Verdict == domain.VerdictAllow }); ok {
		return r, true
	}
	if r, ok := pick(func(r domain.VerifyResult) bool { return r.Verdict == domain.VerdictRevise && r.AutoFix != nil }); ok {
		return r, true
	}
	return pick(func(domain.VerifyResult) bool { return true })
}
