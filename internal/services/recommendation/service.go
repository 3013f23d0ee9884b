// Package recommendation ranks catalog items for a user from recent behavior.
package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

const (
	DefaultLimit       = 10
	MaxLimit           = 10
	MinRecommendations = 5

	signalWindowDays   = 7
	interestWindowDays = 14
)

type catalog interface {
	GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error)
	ListItems(ctx context.Context, filter ports.ItemFilter) ([]domain.Item, error)
	GetUserEvents(ctx context.Context, userID string, asOf time.Time, windowDays int) ([]domain.UserEvent, error)
}

type Service struct {
	log     *slog.Logger
	catalog catalog
	clock   clockwork.Clock
}

func NewService(logger *slog.Logger, catalog catalog, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		log:     logger.With("service", "recommendation"),
		catalog: catalog,
		clock:   clock,
	}
}

// GetRecommendations returns up to limit ranked active items for the user. limit is
// clamped to [1, MaxLimit]; zero or negative means DefaultLimit.
func (s *Service) GetRecommendations(ctx context.Context, userID string, limit int) ([]domain.Item, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	now := s.clock.Now()

	pool, err := s.catalog.ListItems(ctx, ports.ItemFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("recommendation.GetRecommendations: %w", err)
	}

	p, err := s.BehaviorPattern(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if p == nil {
		s.log.DebugContext(ctx, "no behavior pattern, using default devices", slog.String("user_id", userID))
		return firstDevices(pool, limit), nil
	}

	recs := dedupeViewed(strategy(p.Trigger, p.TriggerItem, pool, limit), p, limit)
	if len(recs) > limit {
		recs = recs[:limit]
	}

	if want := min(limit, MinRecommendations); len(recs) < want {
		signals, err := s.Signals(ctx, userID)
		if err != nil {
			return nil, err
		}
		recs = topUp(recs, pool, signals, p.TriggerItem.ItemID, want)
	}

	s.log.DebugContext(ctx, "recommendations built",
		slog.String("user_id", userID),
		slog.String("trigger", string(p.Trigger.EventType)),
		slog.String("trigger_item", p.TriggerItem.ItemID),
		slog.Int("count", len(recs)),
	)
	return recs, nil
}

// Signals summarizes the user's behavior: event counts over 7 days and interest tags
// and brands over 14 days.
func (s *Service) Signals(ctx context.Context, userID string) (domain.UserSignals, error) {
	now := s.clock.Now()
	events, err := s.catalog.GetUserEvents(ctx, userID, now, interestWindowDays)
	if err != nil {
		return domain.UserSignals{}, fmt.Errorf("recommendation.Signals: %w", err)
	}

	sig := domain.UserSignals{Tags: []string{}, FavoriteBrands: []string{}}
	cutoff := now.AddDate(0, 0, -signalWindowDays)
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ItemID)
		if e.Timestamp.Before(cutoff) {
			continue
		}
		switch e.EventType {
		case domain.EventView:
			sig.RecentView++
		case domain.EventAddToCart:
			sig.RecentAddToCart++
		case domain.EventPurchase:
			sig.RecentPurchase++
		}
	}
	if len(ids) == 0 {
		return sig, nil
	}

	items, err := s.catalog.GetItems(ctx, ids)
	if err != nil {
		return domain.UserSignals{}, fmt.Errorf("recommendation.Signals: %w", err)
	}
	tags := make(map[string]struct{})
	brands := make(map[string]struct{})
	for _, id := range ids {
		it, ok := items[id]
		if !ok {
			continue
		}
		if _, dup := tags[it.Category]; !dup && it.Category != "" {
			tags[it.Category] = struct{}{}
			sig.Tags = append(sig.Tags, it.Category)
		}
		if _, dup := brands[it.Brand]; !dup && it.Brand != "" {
			brands[it.Brand] = struct{}{}
			sig.FavoriteBrands = append(sig.FavoriteBrands, it.Brand)
		}
	}
	return sig, nil
}

func firstDevices(pool []domain.Item, limit int) []domain.Item {
	out := make([]domain.Item, 0, limit)
	for _, it := range pool {
		if len(out) == limit {
			break
		}
		if it.ItemType == domain.ItemTypeDevice {
			out = append(out, it)
		}
	}
	return out
}

// topUp appends interest-matched items (favorite brand +10, tagged category +5) until
// recs holds want items.
func topUp(recs, pool []domain.Item, sig domain.UserSignals, exclude string, want int) []domain.Item {
	have := make(map[string]struct{}, len(recs)+1)
	for _, it := range recs {
		have[it.ItemID] = struct{}{}
	}
	have[exclude] = struct{}{}

	tags := make(map[string]struct{}, len(sig.Tags))
	for _, t := range sig.Tags {
		tags[t] = struct{}{}
	}

	var extra []scored
	for _, it := range pool {
		if _, ok := have[it.ItemID]; ok {
			continue
		}
		score := 0
		if sig.HasFavoriteBrand(it.Brand) {
			score += 10
		}
		if _, ok := tags[it.Category]; ok {
			score += 5
		}
		extra = append(extra, scored{item: it, score: score})
	}
	sort.SliceStable(extra, func(i, j int) bool { return extra[i].score > extra[j].score })
	for _, e := range extra {
		if len(recs) >= want {
			break
		}
		recs = append(recs, e.item)
	}
	return recs
}
