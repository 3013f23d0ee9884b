// Package verification scores generated marketing copy on three independent layers
// (facts, compliance, quality), decides a verdict and proposes advisory fixes.
package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/jonboulle/clockwork"

	"marketpush/internal/domain"
	"marketpush/internal/policy"
)

type catalog interface {
	IsItemValid(ctx context.Context, itemID string) (bool, error)
	GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error)
	GetUserEvents(ctx context.Context, userID string, asOf time.Time, windowDays int) ([]domain.UserEvent, error)
	IsHolidayValid(ctx context.Context, name string, asOf time.Time, locale string) (bool, error)
}

type Service struct {
	log        *slog.Logger
	catalog    catalog
	lexicon    *policy.Lexicon
	clock      clockwork.Clock
	compliance []Rule
}

func NewService(logger *slog.Logger, catalog catalog, lexicon *policy.Lexicon, clock clockwork.Clock) *Service {
	if lexicon == nil {
		lexicon = policy.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		log:        logger.With("service", "verification"),
		catalog:    catalog,
		lexicon:    lexicon,
		clock:      clock,
		compliance: complianceRules(lexicon),
	}
}

// Verify scores each candidate in order and returns one result per candidate.
// Bad candidates and catalog failures are reported in the results, never as errors.
func (s *Service) Verify(ctx context.Context, candidates []domain.Candidate, vctx domain.VerifyContext) []domain.VerifyResult {
	if vctx.Now.IsZero() {
		vctx.Now = s.clock.Now()
	}
	results := make([]domain.VerifyResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, s.verifyOne(ctx, c, vctx))
	}
	return results
}

func (s *Service) verifyOne(ctx context.Context, cand domain.Candidate, vctx domain.VerifyContext) domain.VerifyResult {
	in := s.prepare(ctx, cand, vctx)

	fact := evaluate(factRules, in)
	compliance := evaluate(s.compliance, in)
	quality := evaluate(qualityRules, in)
	quality.Metrics = metricsOf(in.text)

	violations := make([]domain.Violation, 0, len(fact.Violations)+len(compliance.Violations)+len(quality.Violations))
	violations = append(violations, fact.Violations...)
	violations = append(violations, compliance.Violations...)
	violations = append(violations, quality.Violations...)

	var fix *domain.AutoFix
	if len(violations) > 0 {
		fix = SuggestFix(cand, vctx, fact, compliance, quality)
	}

	verdict := Decide(fact.Score, compliance.Score, quality.Score)
	now := s.clock.Now().UTC()
	if in.facts.degraded {
		s.log.WarnContext(ctx, "verified with degraded catalog", slog.String("user_id", vctx.UserID))
	}
	s.log.DebugContext(ctx, "candidate verified",
		slog.String("verdict", string(verdict)),
		slog.Int("violations", len(violations)),
	)

	return domain.VerifyResult{
		Verdict:    verdict,
		Scores:     domain.Scores{Fact: fact.Score, Compliance: compliance.Score, Quality: quality.Score},
		Violations: violations,
		AutoFix:    fix,
		Audit: domain.Audit{
			PolicyVersion:       s.lexicon.Version(),
			CatalogSnapshotDate: now.Format("2006-01-02"),
			Timestamp:           now,
			CandidateHash:       candidateHash(cand),
			Degraded:            in.facts.degraded,
		},
		Candidate: cand,
	}
}

func (s *Service) prepare(ctx context.Context, cand domain.Candidate, vctx domain.VerifyContext) *input {
	scored := cand
	scored.Claims = cand.Claims.Normalize()
	in := newInput(scored, vctx)
	in.facts = s.loadFacts(ctx, scored.Claims, vctx)
	return in
}

// CheckFacts scores the candidate's claims against the catalog. The second return
// value reports whether any catalog lookup failed.
func (s *Service) CheckFacts(ctx context.Context, cand domain.Candidate, vctx domain.VerifyContext) (domain.ScoreResult, bool) {
	in := s.prepare(ctx, cand, vctx)
	return evaluate(factRules, in), in.facts.degraded
}

// CheckCompliance scores the text against channel and policy rules. It does no I/O.
func (s *Service) CheckCompliance(cand domain.Candidate, vctx domain.VerifyContext) domain.ScoreResult {
	in := newInput(cand, vctx)
	return evaluate(s.compliance, in)
}

// CheckQuality scores length, punctuation, emoji, language and readability. It does no I/O.
func (s *Service) CheckQuality(cand domain.Candidate, vctx domain.VerifyContext) domain.ScoreResult {
	in := newInput(cand, vctx)
	res := evaluate(qualityRules, in)
	res.Metrics = metricsOf(in.text)
	return res
}

func candidateHash(c domain.Candidate) string {
	h := xxhash.NewS64(0)
	claims := c.Claims.Normalize()
	events := make([]string, len(claims.ReferencedEvents))
	for i, e := range claims.ReferencedEvents {
		events[i] = string(e)
	}
	for _, part := range []string{
		c.Text,
		strings.Join(claims.ReferencedItemIDs, ","),
		strings.Join(claims.ReferencedBrands, ","),
		strings.Join(events, ","),
		claims.ReferencedHoliday,
	} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
