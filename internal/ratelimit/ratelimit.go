// Package ratelimit enforces the daily budget of language model calls.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

const dayLayout = "2006-01-02"

// Service tracks calls per UTC day. When not enforced every call is allowed and the
// full budget is reported as remaining.
type Service struct {
	log      *slog.Logger
	counter  ports.CallCounter
	clock    clockwork.Clock
	limit    int64
	enforced bool
}

func NewService(logger *slog.Logger, counter ports.CallCounter, clock clockwork.Clock, limit int64, enforced bool) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		log:      logger.With("service", "ratelimit"),
		counter:  counter,
		clock:    clock,
		limit:    limit,
		enforced: enforced,
	}
}

// Status reports today's usage without consuming a call.
func (s *Service) Status(ctx context.Context) (domain.QuotaStatus, error) {
	day, reset := s.window()
	if !s.enforced {
		return s.status(day, reset, 0), nil
	}
	used, err := s.counter.Count(ctx, day)
	if err != nil {
		return domain.QuotaStatus{}, fmt.Errorf("ratelimit.Status: %w", err)
	}
	return s.status(day, reset, used), nil
}

// Record counts one successful call against today's budget.
func (s *Service) Record(ctx context.Context) (domain.QuotaStatus, error) {
	day, reset := s.window()
	if !s.enforced {
		return s.status(day, reset, 0), nil
	}
	used, err := s.counter.Incr(ctx, day, reset)
	if err != nil {
		return domain.QuotaStatus{}, fmt.Errorf("ratelimit.Record: %w", err)
	}
	if used >= s.limit {
		s.log.WarnContext(ctx, "daily quota exhausted", slog.String("day", day), slog.Int64("used", used))
	}
	return s.status(day, reset, used), nil
}

// window returns the current UTC day key and the next UTC midnight.
func (s *Service) window() (string, time.Time) {
	now := s.clock.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Format(dayLayout), midnight.AddDate(0, 0, 1)
}

func (s *Service) status(day string, reset time.Time, used int64) domain.QuotaStatus {
	return domain.QuotaStatus{
		Enforced:  s.enforced,
		Used:      used,
		Limit:     s.limit,
		Remaining: max(0, s.limit-used),
		Day:       day,
		ResetAt:   reset,
	}
}

// MemoryCounter keeps the count for the current day only; a new day resets it.
type MemoryCounter struct {
	mu    sync.Mutex
	day   string
	count int64
}

func NewMemoryCounter() *MemoryCounter { return &MemoryCounter{} }

func (m *MemoryCounter) Count(_ context.Context, day string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.day != day {
		return 0, nil
	}
	return m.count, nil
}

func (m *MemoryCounter) Incr(_ context.Context, day string, _ time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.day != day {
		m.day, m.count = day, 0
	}
	m.count++
	return m.count, nil
}
