package verification

import "marketpush/internal/domain"

// Decide maps layer scores to a verdict. Compliance is checked first, then facts, then quality.
func Decide(fact, compliance, quality float64) domain.Verdict {
	switch {
	case compliance == 0:
		return domain.VerdictReject
	case compliance < 0.8:
		return domain.VerdictRevise
	case fact < 0.6:
		return domain.VerdictReject
	case fact < 0.8:
		return domain.VerdictRevise
	case quality < 0.5:
		return domain.VerdictReject
	case quality < 0.7:
		return domain.VerdictRevise
	default:
		return domain.VerdictAllow
	}
}
