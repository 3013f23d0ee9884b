// Package campaign generates content for many users concurrently.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpush/internal/domain"
)

type generator interface {
	GeneratePush(ctx context.Context, userID string) (*domain.PushContent, error)
	GenerateEmail(ctx context.Context, userID string) (*domain.EmailContent, error)
}

// Result is one user's outcome. Exactly one of Content and Err is set.
type Result struct {
	UserID  string         `json:"userId"`
	Content domain.Content `json:"content,omitempty"`
	Err     error          `json:"-"`
	Error   string         `json:"error,omitempty"`
}

// Stats counts outcomes of a run.
type Stats struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Fallback int `json:"fallback"`
	Failed   int `json:"failed"`
}

// Runner fans generation out over a bounded number of workers. Users are
// independent: one user's failure is recorded in its Result and never stops the run.
type Runner struct {
	log     *slog.Logger
	gen     generator
	workers int
}

func NewRunner(logger *slog.Logger, gen generator, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		log:     logger.With("worker", "campaign"),
		gen:     gen,
		workers: workers,
	}
}

// Run generates channel content for every user and returns results in input
// order. The returned error is non-nil only for an invalid channel or a cancelled
// context; users not started before cancellation carry the context error.
func (r *Runner) Run(ctx context.Context, userIDs []string, channel domain.Channel) ([]Result, error) {
	if !channel.IsValid() {
		return nil, domain.NewValidationError("channel", "must be PUSH or EMAIL")
	}

	start := time.Now()
	results := make([]Result, len(userIDs))
	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, userID := range userIDs {
		results[i].UserID = userID
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			results[i].Error = err.Error()
			continue
		}
		g.Go(func() error {
			content, err := r.one(ctx, userID, channel)
			if err != nil {
				r.log.WarnContext(ctx, "user failed",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			results[i].Content = content
			return nil
		})
	}
	_ = g.Wait()

	st := Summarize(results)
	r.log.InfoContext(ctx, "campaign finished",
		slog.String("channel", string(channel)),
		slog.Int("total", st.Total),
		slog.Int("ok", st.OK),
		slog.Int("fallback", st.Fallback),
		slog.Int("failed", st.Failed),
		slog.Duration("took", time.Since(start)),
	)
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("campaign.Run: %w", err)
	}
	return results, nil
}

func (r *Runner) one(ctx context.Context, userID string, channel domain.Channel) (domain.Content, error) {
	if channel == domain.ChannelEmail {
		c, err := r.gen.GenerateEmail(ctx, userID)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := r.gen.GeneratePush(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Summarize counts successes, fallbacks and failures.
func Summarize(results []Result) Stats {
	st := Stats{Total: len(results)}
	for _, res := range results {
		switch {
		case res.Err != nil:
			st.Failed++
		case isFallback(res.Content):
			st.Fallback++
		default:
			st.OK++
		}
	}
	return st
}

func isFallback(c domain.Content) bool {
	switch v := c.(type) {
	case *domain.PushContent:
		return v.Fallback
	case *domain.EmailContent:
		return v.Fallback
	}
	return false
}
