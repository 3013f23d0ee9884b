package verification

import (
	"strings"

	"marketpush/internal/domain"
)

// Hit is one rule firing. A hard hit forces the layer score to zero.
type Hit struct {
	Violation domain.Violation
	Penalty   float64
	Hard      bool
}

// Rule is a named check over a prepared input.
type Rule struct {
	Name  string
	Check func(in *input) []Hit
}

// input is the shared, read-only view every rule sees.
type input struct {
	cand  domain.Candidate
	vctx  domain.VerifyContext
	text  textStats
	facts facts

	// visible is every part the reader sees: Text plus the email subject, preview,
	// bullets and CTA. Compliance rules scan it; length and quality use Text.
	visible      string
	visibleURL   bool
	visiblePrice bool
}

func newInput(cand domain.Candidate, vctx domain.VerifyContext) *input {
	in := &input{cand: cand, vctx: vctx, text: analyze(cand.Text, vctx.Locale)}
	in.visible = visibleText(cand)
	if in.visible == cand.Text {
		in.visibleURL, in.visiblePrice = in.text.hasURL, in.text.hasPrice
	} else {
		in.visibleURL = ContainsURL(in.visible)
		in.visiblePrice = pricePattern.MatchString(in.visible)
	}
	return in
}

func visibleText(c domain.Candidate) string {
	parts := make([]string, 0, len(c.Bullets)+4)
	parts = append(parts, c.Text, c.Subject, c.Preview)
	parts = append(parts, c.Bullets...)
	parts = append(parts, c.CTA)

	out := parts[:1]
	for _, p := range parts[1:] {
		if p != "" && p != c.Text {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

// evaluate runs every rule, subtracts every penalty and clamps once at the end.
func evaluate(rules []Rule, in *input) domain.ScoreResult {
	score := 1.0
	hard := false
	violations := make([]domain.Violation, 0)
	for _, r := range rules {
		for _, h := range r.Check(in) {
			violations = append(violations, h.Violation)
			score -= h.Penalty
			hard = hard || h.Hard
		}
	}
	if hard || score < 0 {
		score = 0
	}
	return domain.ScoreResult{Score: score, Violations: violations}
}

func hit(code domain.ViolationCode, sev domain.Severity, penalty float64, subject, msg string) Hit {
	return Hit{
		Violation: domain.Violation{Code: code, Message: msg, Severity: sev, Subject: subject},
		Penalty:   penalty,
	}
}

func hardHit(code domain.ViolationCode, subject, msg string) Hit {
	h := hit(code, domain.SeverityError, 1, subject, msg)
	h.Hard = true
	return h
}
