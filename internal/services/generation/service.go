// Package generation drafts channel copy with a language model, filters it through
// the verifier and packages the result with its attribution.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"marketpush/internal/config"
	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type recommender interface {
	GetRecommendations(ctx context.Context, userID string, limit int) ([]domain.Item, error)
	Signals(ctx context.Context, userID string) (domain.UserSignals, error)
}

type catalog interface {
	GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error)
	ListHolidays(ctx context.Context, locale string) ([]domain.Holiday, error)
}

type verifier interface {
	Verify(ctx context.Context, candidates []domain.Candidate, vctx domain.VerifyContext) []domain.VerifyResult
}

type quota interface {
	Status(ctx context.Context) (domain.QuotaStatus, error)
	Record(ctx context.Context) (domain.QuotaStatus, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

type Service struct {
	log       *slog.Logger
	recs      recommender
	catalog   catalog
	generator ports.Generator
	verifier  verifier
	quota     quota
	clock     clockwork.Clock
	cfg       config.GenerationConfig
	newID     func() string
}

// NewService wires the generation flows. quota may be nil, in which case Compose is
// never throttled.
func NewService(
	logger *slog.Logger,
	recs recommender,
	catalog catalog,
	generator ports.Generator,
	verifier verifier,
	quota quota,
	clock clockwork.Clock,
	cfg config.GenerationConfig,
) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		log:       logger.With("service", "generation"),
		recs:      recs,
		catalog:   catalog,
		generator: generator,
		verifier:  verifier,
		quota:     quota,
		clock:     clock,
		cfg:       cfg,
		newID:     uuid.NewString,
	}
}

// draft gathers the generator inputs for a user and asks for n candidates. Generator
// failures wrap domain.ErrUnavailable.
func (s *Service) draft(ctx context.Context, userID string, items []domain.Item, vctx domain.VerifyContext, n int) ([]domain.Candidate, domain.UserSignals, error) {
	signals, err := s.recs.Signals(ctx, userID)
	if err != nil {
		return nil, domain.UserSignals{}, err
	}
	holidays, err := s.currentHolidays(ctx, vctx.Locale, vctx.Now)
	if err != nil {
		s.log.WarnContext(ctx, "holiday lookup failed", slog.String("error", err.Error()))
	}
	candidates, err := s.generator.Generate(ctx, ports.GenerateRequest{
		UserID:      userID,
		Channel:     vctx.Channel,
		Locale:      vctx.Locale,
		Constraints: vctx.Constraints,
		Items:       items,
		Signals:     signals,
		Holidays:    holidays,
		N:           n,
	})
	if err != nil {
		return nil, signals, fmt.Errorf("%w: %s generator: %v", domain.ErrUnavailable, s.generator.Name(), err)
	}
	s.log.DebugContext(ctx, "candidates drafted",
		slog.String("user_id", userID),
		slog.String("channel", string(vctx.Channel)),
		slog.String("generator", s.generator.Name()),
		slog.Int("requested", n),
		slog.Int("received", len(candidates)),
	)
	return candidates, signals, nil
}

func (s *Service) currentHolidays(ctx context.Context, locale string, now time.Time) ([]domain.Holiday, error) {
	all, err := s.catalog.ListHolidays(ctx, locale)
	if err != nil {
		return nil, err
	}
	var out []domain.Holiday
	for _, h := range all {
		if h.Covers(now) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *Service) verifyContext(userID string, channel domain.Channel, locale string, c domain.Constraints) domain.VerifyContext {
	if locale == "" {
		locale = s.cfg.Locale
	}
	return domain.VerifyContext{
		UserID:      userID,
		Market:      s.cfg.Market,
		Now:         s.clock.Now(),
		Channel:     channel,
		Locale:      locale,
		Constraints: c,
	}
}

// referencedItems resolves the candidate's item references for attribution and imagery.
func (s *Service) referencedItems(ctx context.Context, claims domain.Claims) map[string]domain.Item {
	if len(claims.ReferencedItemIDs) == 0 {
		return map[string]domain.Item{}
	}
	items, err := s.catalog.GetItems(ctx, claims.ReferencedItemIDs)
	if err != nil {
		s.log.WarnContext(ctx, "referenced item lookup failed", slog.String("error", err.Error()))
		return map[string]domain.Item{}
	}
	return items
}

func itemIDs(items []domain.Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ItemID)
	}
	return ids
}

// verifyFallback runs fixed fallback copy through the verifier like any candidate.
func (s *Service) verifyFallback(ctx context.Context, cand domain.Candidate, vctx domain.VerifyContext) *domain.VerifyResult {
	res := s.verifier.Verify(ctx, []domain.Candidate{cand}, vctx)
	if len(res) == 0 {
		return nil
	}
	if res[0].Verdict != domain.VerdictAllow {
		s.log.WarnContext(ctx, "fallback copy did not pass verification",
			slog.String("channel", string(vctx.Channel)),
			slog.String("verdict", string(res[0].Verdict)),
		)
	}
	return &res[0]
}
