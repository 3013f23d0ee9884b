package domain

import "time"

type Channel string

const (
	ChannelPush  Channel = "PUSH"
	ChannelEmail Channel = "EMAIL"
)

func (c Channel) IsValid() bool {
	return c == ChannelPush || c == ChannelEmail
}

// Locales the verifier knows about. Only LocaleZhCN changes length and script rules;
// everything else is treated as space-delimited.
const (
	LocaleEnUS = "en-US"
	LocaleZhCN = "zh-CN"
	LocaleJaJP = "ja-JP"
)

type Constraints struct {
	MaxLen  int  `json:"maxLen"`
	NoURL   bool `json:"noUrl"`
	NoPrice bool `json:"noPrice,omitempty"`
}

// VerifyContext holds the request-scoped facts needed to judge a candidate.
type VerifyContext struct {
	UserID      string      `json:"userId"`
	Market      string      `json:"market"`
	Now         time.Time   `json:"now"`
	Channel     Channel     `json:"channel"`
	Locale      string      `json:"locale"`
	Constraints Constraints `json:"constraints"`
}

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// ViolationCode is the closed taxonomy of verifier findings.
type ViolationCode string

const (
	FactUserEventMiss  ViolationCode = "FACT_USER_EVENT_MISS"
	FactItemInvalid    ViolationCode = "FACT_ITEM_INVALID"
	FactBrandMismatch  ViolationCode = "FACT_BRAND_MISMATCH"
	FactHolidayInvalid ViolationCode = "FACT_HOLIDAY_INVALID"

	ComplianceURLForbidden         ViolationCode = "COMPLIANCE_URL_FORBIDDEN"
	ComplianceAbsoluteWords        ViolationCode = "COMPLIANCE_ABSOLUTE_WORDS"
	ComplianceForbiddenWords       ViolationCode = "COMPLIANCE_FORBIDDEN_WORDS"
	ComplianceExcessivePunctuation ViolationCode = "COMPLIANCE_EXCESSIVE_PUNCTUATION"
	CompliancePriceForbidden       ViolationCode = "COMPLIANCE_PRICE_FORBIDDEN"

	QualityLenOver        ViolationCode = "QUALITY_LEN_OVER"
	QualityLenTooShort    ViolationCode = "QUALITY_LEN_TOO_SHORT"
	QualityPunctExcess    ViolationCode = "QUALITY_PUNCT_EXCESS"
	QualityEmojiExcess    ViolationCode = "QUALITY_EMOJI_EXCESS"
	QualityLangMismatch   ViolationCode = "QUALITY_LANG_MISMATCH"
	QualityLowReadability ViolationCode = "QUALITY_LOW_READABILITY"
)

// Violation is a single finding. Subject names what the finding is about (a behavior
// tag, an item id, a brand, a word) when there is one.
type Violation struct {
	Code     ViolationCode `json:"code"`
	Message  string        `json:"msg"`
	Severity Severity      `json:"severity"`
	Subject  string        `json:"subject,omitempty"`
}

// Metrics are the measurements the quality layer records alongside its score.
type Metrics struct {
	EffectiveLength  int     `json:"effectiveLength"`
	EmojiCount       int     `json:"emojiCount"`
	PunctuationRatio float64 `json:"punctuationRatio"`
	Readability      float64 `json:"readability"`
}

type ScoreResult struct {
	Score      float64     `json:"score"`
	Violations []Violation `json:"violations"`
	Metrics    *Metrics    `json:"metrics,omitempty"`
}

// Has reports whether the result contains a violation with the given code.
func (r ScoreResult) Has(code ViolationCode) bool {
	for _, v := range r.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

type Verdict string

const (
	VerdictAllow  Verdict = "ALLOW"
	VerdictRevise Verdict = "REVISE"
	VerdictReject Verdict = "REJECT"
)

type Scores struct {
	Fact       float64 `json:"fact"`
	Compliance float64 `json:"compliance"`
	Quality    float64 `json:"quality"`
}

// Mean is the unweighted average of the three layer scores.
func (s Scores) Mean() float64 {
	return (s.Fact + s.Compliance + s.Quality) / 3
}

// AutoFix is an advisory repair. It is never applied to the candidate automatically.
type AutoFix struct {
	TruncateTo   *int          `json:"truncateTo,omitempty"`
	RemoveURLs   bool          `json:"removeUrls,omitempty"`
	RemoveClaims []BehaviorTag `json:"removeClaims,omitempty"`
	Suggested    *string       `json:"suggested,omitempty"`
}

type Audit struct {
	PolicyVersion       string    `json:"policyVer"`
	CatalogSnapshotDate string    `json:"catalogSnapshot"`
	Timestamp           time.Time `json:"timestamp"`
	CandidateHash       string    `json:"candidateHash"`
	Degraded            bool      `json:"degraded,omitempty"`
}

type VerifyResult struct {
	Verdict    Verdict     `json:"verdict"`
	Scores     Scores      `json:"scores"`
	Violations []Violation `json:"violations"`
	AutoFix    *AutoFix    `json:"autoFix,omitempty"`
	Audit      Audit       `json:"audit"`
	Candidate  Candidate   `json:"candidate"`
}
