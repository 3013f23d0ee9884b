package verification

import (
	"strings"

	"marketpush/internal/domain"
)

// SuggestFix derives an advisory repair from the layer results. It returns nil when
// there is nothing to suggest. The candidate is never modified.
func SuggestFix(cand domain.Candidate, vctx domain.VerifyContext, fact, compliance, quality domain.ScoreResult) *domain.AutoFix {
	var fix domain.AutoFix
	touched := false

	if quality.Has(domain.QualityLenOver) {
		n := vctx.Constraints.MaxLen - 3
		if n < 0 {
			n = 0
		}
		fix.TruncateTo = &n
		touched = true
	}

	if compliance.Has(domain.ComplianceURLForbidden) {
		fix.RemoveURLs = true
		touched = true
	}

	missed := make(map[domain.BehaviorTag]struct{})
	for _, v := range fact.Violations {
		if v.Code == domain.FactUserEventMiss {
			missed[domain.BehaviorTag(v.Subject)] = struct{}{}
		}
	}
	for _, tag := range domain.BehaviorTags {
		if _, ok := missed[tag]; ok {
			fix.RemoveClaims = append(fix.RemoveClaims, tag)
			touched = true
		}
	}

	text := cand.Text
	if fix.RemoveURLs {
		text = stripURLs(text)
	}
	if fix.TruncateTo != nil {
		text = truncate(text, *fix.TruncateTo, vctx.Constraints.MaxLen, vctx.Locale)
		if vctx.Constraints.NoURL {
			text = stripURLs(text)
		}
	}
	if text != cand.Text {
		s := strings.TrimSpace(text)
		fix.Suggested = &s
		touched = true
	}

	if !touched {
		return nil
	}
	return &fix
}
