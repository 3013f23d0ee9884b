package verification

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"

	"marketpush/internal/domain"
)

var (
	schemeURL = regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://\S+`)
	wwwURL    = regexp.MustCompile(`(?i)(?:^|[^a-z0-9._-])(www\.\S+)`)
	// Group 1 is the host, group 2 an optional path.
	bareDomain = regexp.MustCompile(`(?i)(?:^|[^a-z0-9@/._-])((?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63})(/\S*)?`)

	latinRun = regexp.MustCompile(`[A-Za-z]{3,}`)
	cjkRun   = regexp.MustCompile(`[\x{4E00}-\x{9FA5}]{3,}`)

	pricePattern = regexp.MustCompile(`(?i)[$¥€£]\s?\d[\d,.]*|\d[\d,.]*\s?元|\d[\d,.]*\s?(?:usd|eur|rmb|cny)\b`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

const ellipsis = "..."

type span struct{ start, end int }

// urlSpans returns the byte ranges of URL-like tokens, sorted and merged.
func urlSpans(text string) []span {
	var out []span
	for _, m := range schemeURL.FindAllStringIndex(text, -1) {
		out = append(out, span{m[0], m[1]})
	}
	for _, m := range wwwURL.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, span{m[2], m[3]})
	}
	for _, m := range bareDomain.FindAllStringSubmatchIndex(text, -1) {
		host := text[m[2]:m[3]]
		if !hostCased(host) || !registrable(strings.ToLower(host)) {
			continue
		}
		end := m[3]
		if m[5] > 0 {
			end = m[5]
		}
		out = append(out, span{m[2], end})
	}
	if len(out) < 2 {
		return out
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	merged := out[:1]
	for _, s := range out[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// registrable reports whether host ends in an ICANN public suffix with at least
// one label in front of it.
func registrable(host string) bool {
	suffix, icann := publicsuffix.PublicSuffix(host)
	return icann && suffix != host
}

// hostCased rejects two sentences run together ("time.Shop today"): a bare host needs
// a lower-case TLD unless the whole token is upper case.
func hostCased(host string) bool {
	tld := host[strings.LastIndexByte(host, '.')+1:]
	return tld == strings.ToLower(tld) || host == strings.ToUpper(host)
}

// ContainsURL reports whether text carries a scheme URL, a www. host or a bare
// registrable domain.
func ContainsURL(text string) bool {
	return len(urlSpans(text)) > 0
}

// stripURLs removes URL-like tokens and collapses the whitespace left behind.
func stripURLs(text string) string {
	spans := urlSpans(text)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(text[prev:s.start])
		prev = s.end
	}
	b.WriteString(text[prev:])
	return strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
}

// effectiveLength is rune count for zh-CN and five characters per word elsewhere.
func effectiveLength(text, locale string) int {
	if locale == domain.LocaleZhCN {
		return utf8.RuneCountInString(text)
	}
	return len(strings.Fields(text)) * 5
}

func isPunct(r rune) bool {
	switch r {
	case '!', '?', '.', ',', ';', ':', '\'', '"',
		'！', '？', '。', '，', '；', '：', '‘', '’', '“', '”', '、':
		return true
	}
	return false
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F,
		r >= 0x1F300 && r <= 0x1F5FF,
		r >= 0x1F680 && r <= 0x1F6FF,
		r >= 0x2600 && r <= 0x26FF,
		r >= 0x2700 && r <= 0x27BF:
		return true
	}
	return false
}

// textStats is everything the pure scorers need, computed in one pass.
type textStats struct {
	runes       int
	effective   int
	punct       int
	emoji       int
	upper       int
	exclaim     int
	question    int
	sentences   int
	hasURL      bool
	hasPrice    bool
	latinNoCJK  bool
	readability float64
}

func analyze(text, locale string) textStats {
	st := textStats{effective: effectiveLength(text, locale)}
	for _, r := range text {
		st.runes++
		switch {
		case isPunct(r):
			st.punct++
		case isEmoji(r):
			st.emoji++
		case r <= unicode.MaxASCII && unicode.IsUpper(r):
			st.upper++
		}
		switch r {
		case '!', '！':
			st.exclaim++
		case '?', '？':
			st.question++
		}
	}
	for _, s := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '。'
	}) {
		if strings.TrimSpace(s) != "" {
			st.sentences++
		}
	}
	st.hasURL = ContainsURL(text)
	st.hasPrice = pricePattern.MatchString(text)
	st.latinNoCJK = latinRun.MatchString(text) && !cjkRun.MatchString(text)
	st.readability = readability(st)
	return st
}

func (st textStats) punctuationRatio() float64 {
	if st.runes == 0 {
		return 0
	}
	return float64(st.punct) / float64(st.runes)
}

func readability(st textStats) float64 {
	score := 1.0
	if st.runes == 0 {
		return score
	}
	sentences := st.sentences
	if sentences < 1 {
		sentences = 1
	}
	if float64(st.runes)/float64(sentences) > 100 {
		score -= 0.2
	}
	if float64(st.upper)/float64(st.runes) > 0.3 {
		score -= 0.3
	}
	if score < 0 {
		return 0
	}
	return score
}

// truncate shortens text to fit limit characters and, for space-delimited
// locales, the maxLen/5 word budget. A trailing "..." marks the cut when it fits
// inside maxLen.
func truncate(text string, limit, maxLen int, locale string) string {
	if limit < 0 {
		limit = 0
	}
	if locale == domain.LocaleZhCN {
		runes := []rune(text)
		if len(runes) <= limit {
			return text
		}
		if limit+len(ellipsis) > maxLen {
			return string(runes[:min(max(maxLen, 0), len(runes))])
		}
		return string(runes[:limit]) + ellipsis
	}

	words := strings.Fields(text)
	maxWords := maxLen / 5
	if utf8.RuneCountInString(text) <= limit && len(words) <= maxWords {
		return text
	}
	if maxWords == 0 {
		return ""
	}
	var b strings.Builder
	n, kept := 0, 0
	for _, w := range words {
		if kept == maxWords {
			break
		}
		add := utf8.RuneCountInString(w)
		if kept > 0 {
			add++
		}
		if n+add > limit-len(ellipsis) {
			break
		}
		if kept > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		n += add
		kept++
	}
	if kept == 0 {
		// The first word alone is too long: cut inside it.
		first := []rune(words[0])
		if cut := limit - len(ellipsis); cut > 0 {
			return string(first[:cut]) + ellipsis
		}
		return string(first[:min(limit, len(first))])
	}
	return b.String() + ellipsis
}
