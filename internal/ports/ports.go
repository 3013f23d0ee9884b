package ports

import (
	"context"

	"marketpush/internal/domain"
)

// Verifier scores candidates against the catalog snapshot.
type Verifier interface {
	Verify(ctx context.Context, candidates []domain.Candidate, vctx domain.VerifyContext) []domain.VerifyResult
}

// Messages runs the generation flows.
type Messages interface {
	Compose(ctx context.Context, req domain.ComposeRequest) (domain.ComposeResult, error)
	GeneratePush(ctx context.Context, userID string) (*domain.PushContent, error)
	GenerateEmail(ctx context.Context, userID string) (*domain.EmailContent, error)
}

// Profiles provides behavior summaries for users.
type Profiles interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
}

// Quota guards calls to the language model.
type Quota interface {
	Status(ctx context.Context) (domain.QuotaStatus, error)
	Record(ctx context.Context) (domain.QuotaStatus, error)
}
