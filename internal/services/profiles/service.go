// Package profiles assembles the user-facing behavior summary.
package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"marketpush/internal/domain"
)

const (
	RecentEventDays    = 7
	ProfileRecommended = 5
)

type events interface {
	GetUserEvents(ctx context.Context, userID string, asOf time.Time, windowDays int) ([]domain.UserEvent, error)
}

type recommender interface {
	Signals(ctx context.Context, userID string) (domain.UserSignals, error)
	GetRecommendations(ctx context.Context, userID string, limit int) ([]domain.Item, error)
}

type Service struct {
	log    *slog.Logger
	events events
	recs   recommender
	clock  clockwork.Clock
}

func New(logger *slog.Logger, events events, recs recommender, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		log:    logger.With("service", "profiles"),
		events: events,
		recs:   recs,
		clock:  clock,
	}
}

// GetProfile returns signals, the last week of events and a short recommendation list.
func (s *Service) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.NewValidationError("userId", "required")
	}

	signals, err := s.recs.Signals(ctx, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profiles.GetProfile: %w", err)
	}
	recent, err := s.events.GetUserEvents(ctx, userID, s.clock.Now(), RecentEventDays)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profiles.GetProfile: %w", err)
	}
	items, err := s.recs.GetRecommendations(ctx, userID, ProfileRecommended)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profiles.GetProfile: %w", err)
	}
	if recent == nil {
		recent = []domain.UserEvent{}
	}
	if items == nil {
		items = []domain.Item{}
	}

	s.log.DebugContext(ctx, "profile built",
		slog.String("user_id", userID),
		slog.Int("events", len(recent)),
		slog.Int("recommended", len(items)),
	)
	return domain.Profile{
		UserID:          userID,
		Signals:         signals,
		RecentEvents:    recent,
		Recommendations: items,
	}, nil
}
