package verification

import (
	"fmt"

	"marketpush/internal/domain"
)

const (
	minEffectiveLength = 10
	maxPunctRatio      = 0.2
	maxEmoji           = 3
	minReadability     = 0.5
)

var qualityRules = []Rule{
	{Name: "length", Check: checkLength},
	{Name: "punctuation_ratio", Check: func(in *input) []Hit {
		ratio := in.text.punctuationRatio()
		if ratio <= maxPunctRatio {
			return nil
		}
		return []Hit{hit(domain.QualityPunctExcess, domain.SeverityWarning, 0.15, "",
			fmt.Sprintf("punctuation ratio too high: %.1f%%", ratio*100))}
	}},
	{Name: "emoji", Check: func(in *input) []Hit {
		if in.text.emoji <= maxEmoji {
			return nil
		}
		return []Hit{hit(domain.QualityEmojiExcess, domain.SeverityWarning, 0.1, "",
			fmt.Sprintf("too many emojis: %d", in.text.emoji))}
	}},
	{Name: "language", Check: func(in *input) []Hit {
		if in.vctx.Locale != domain.LocaleZhCN || !in.text.latinNoCJK {
			return nil
		}
		return []Hit{hit(domain.QualityLangMismatch, domain.SeverityWarning, 0.2, in.vctx.Locale,
			"language does not match locale")}
	}},
	{Name: "readability", Check: func(in *input) []Hit {
		if in.text.readability >= minReadability {
			return nil
		}
		return []Hit{hit(domain.QualityLowReadability, domain.SeverityWarning, 0.15, "",
			fmt.Sprintf("poor readability: %.2f", in.text.readability))}
	}},
}

func checkLength(in *input) []Hit {
	n, limit := in.text.effective, in.vctx.Constraints.MaxLen
	switch {
	case n > limit:
		return []Hit{hit(domain.QualityLenOver, domain.SeverityError, 0.3, "",
			fmt.Sprintf("text length %d exceeds limit %d", n, limit))}
	case n < minEffectiveLength:
		return []Hit{hit(domain.QualityLenTooShort, domain.SeverityWarning, 0.2, "",
			fmt.Sprintf("text length %d is below %d", n, minEffectiveLength))}
	}
	return nil
}

func metricsOf(st textStats) *domain.Metrics {
	return &domain.Metrics{
		EffectiveLength:  st.effective,
		EmojiCount:       st.emoji,
		PunctuationRatio: st.punctuationRatio(),
		Readability:      st.readability,
	}
}
