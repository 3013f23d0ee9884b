package ports

import (
	"context"
	"time"

	"marketpush/internal/domain"
)

// GenerateRequest is what a copy generator needs to draft candidates.
type GenerateRequest struct {
	UserID      string
	Channel     domain.Channel
	Locale      string
	Constraints domain.Constraints
	Items       []domain.Item
	Signals     domain.UserSignals
	Holidays    []domain.Holiday
	N           int
}

// Generator drafts N candidate messages. Claims on the returned candidates are
// untrusted and are checked by the verifier.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]domain.Candidate, error)
	Name() string
}

// CallCounter stores per-day call counts for the quota.
type CallCounter interface {
	Count(ctx context.Context, day string) (int64, error)
	Incr(ctx context.Context, day string, expireAt time.Time) (int64, error)
}
