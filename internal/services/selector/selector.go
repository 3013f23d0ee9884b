// Package selector picks the most promising generated candidate before verification.
package selector

import (
	"strings"
	"unicode/utf8"

	"marketpush/internal/domain"
	"marketpush/internal/services/verification"
)

type Options struct {
	MaxLen int
	NoURL  bool
}

// PickBest normalizes the candidates, drops the ones that cannot be sent and returns
// the highest scoring survivor. Ties go to the earlier candidate. The bool is false
// when nothing survived and the caller has to use its fallback copy.
func PickBest(candidates []domain.Candidate, allowedItemIDs []string, opts Options) (domain.Candidate, bool) {
	allowed := make(map[string]struct{}, len(allowedItemIDs))
	for _, id := range allowedItemIDs {
		allowed[id] = struct{}{}
	}

	var (
		best      domain.Candidate
		bestScore float64
		found     bool
	)
	for _, c := range candidates {
		c = normalize(c, allowed)
		n := utf8.RuneCountInString(c.Text)
		if n == 0 || n > opts.MaxLen {
			continue
		}
		if opts.NoURL && verification.ContainsURL(c.Text) {
			continue
		}
		s := score(c, n, opts)
		if !found || s > bestScore {
			best, bestScore, found = c, s, true
		}
	}
	return best, found
}

func normalize(c domain.Candidate, allowed map[string]struct{}) domain.Candidate {
	c.Text = strings.Join(strings.Fields(c.Text), " ")
	c.Claims = c.Claims.RestrictItems(allowed)
	return c
}

// score assumes c already passed the length and URL filters.
func score(c domain.Candidate, n int, opts Options) float64 {
	s := 3.0 + 3.0
	if len(c.Claims.ReferencedItemIDs) > 0 {
		s += 2
	}
	if opts.MaxLen > 0 {
		s += 1 - float64(opts.MaxLen-n)/float64(opts.MaxLen)
	}
	return s
}
