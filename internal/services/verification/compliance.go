package verification

import (
	"fmt"

	"marketpush/internal/domain"
	"marketpush/internal/policy"
)

const maxRepeatedMarks = 2

func complianceRules(lex *policy.Lexicon) []Rule {
	return []Rule{
		{Name: "no_url", Check: checkURL},
		{Name: "absolute_words", Check: func(in *input) []Hit {
			var hits []Hit
			for _, w := range lex.AbsoluteMatches(in.visible) {
				hits = append(hits, hit(domain.ComplianceAbsoluteWords, domain.SeverityError, 0.3, w,
					fmt.Sprintf("absolute claim %q is not allowed", w)))
			}
			return hits
		}},
		{Name: "forbidden_words", Check: func(in *input) []Hit {
			var hits []Hit
			for _, w := range lex.ForbiddenMatches(in.visible) {
				hits = append(hits, hardHit(domain.ComplianceForbiddenWords, w,
					fmt.Sprintf("forbidden word %q", w)))
			}
			return hits
		}},
		{Name: "punctuation", Check: checkPunctuation},
		{Name: "price", Check: checkPrice},
	}
}

func checkURL(in *input) []Hit {
	if !in.vctx.Constraints.NoURL || !in.visibleURL {
		return nil
	}
	return []Hit{hardHit(domain.ComplianceURLForbidden, "",
		fmt.Sprintf("%s channel does not allow URLs", in.vctx.Channel))}
}

func checkPunctuation(in *input) []Hit {
	var hits []Hit
	if in.text.exclaim > maxRepeatedMarks {
		hits = append(hits, hit(domain.ComplianceExcessivePunctuation, domain.SeverityWarning, 0.1, "!",
			fmt.Sprintf("too many exclamation marks: %d", in.text.exclaim)))
	}
	if in.text.question > maxRepeatedMarks {
		hits = append(hits, hit(domain.ComplianceExcessivePunctuation, domain.SeverityWarning, 0.1, "?",
			fmt.Sprintf("too many question marks: %d", in.text.question)))
	}
	return hits
}

func checkPrice(in *input) []Hit {
	if !in.vctx.Constraints.NoPrice || !in.visiblePrice {
		return nil
	}
	return []Hit{hit(domain.CompliancePriceForbidden, domain.SeverityWarning, 0.2, "", "price display is not allowed")}
}
