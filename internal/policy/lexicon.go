// Package policy holds the compliance word lists and their version.
package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type file struct {
	Version        string   `yaml:"version"`
	AbsoluteWords  []string `yaml:"absolute_words"`
	ForbiddenWords []string `yaml:"forbidden_words"`
}

// Lexicon is an immutable, compiled set of word lists.
type Lexicon struct {
	version   string
	absolute  []term
	forbidden []term
}

type term struct {
	word string
	re   *regexp.Regexp // nil for CJK terms
}

func (t term) matches(text, lower string) bool {
	if t.re == nil {
		return strings.Contains(text, t.word)
	}
	return t.re.MatchString(lower)
}

// Default returns the embedded lexicon.
func Default() *Lexicon {
	lex, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("policy: embedded lexicon: %v", err))
	}
	return lex
}

// Load reads a lexicon from path. An empty path yields the embedded default.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy: %s: %w", path, err)
	}
	return lex, nil
}

// Parse compiles a YAML lexicon document.
func Parse(data []byte) (*Lexicon, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if strings.TrimSpace(f.Version) == "" {
		return nil, errors.New("version is required")
	}
	absolute, err := compile(f.AbsoluteWords)
	if err != nil {
		return nil, fmt.Errorf("absolute_words: %w", err)
	}
	forbidden, err := compile(f.ForbiddenWords)
	if err != nil {
		return nil, fmt.Errorf("forbidden_words: %w", err)
	}
	return &Lexicon{version: strings.TrimSpace(f.Version), absolute: absolute, forbidden: forbidden}, nil
}

func compile(words []string) ([]term, error) {
	out := make([]term, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if hasHan(w) {
			out = append(out, term{word: w})
			continue
		}
		re, err := regexp.Compile(`(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(w) + `($|[^\p{L}\p{N}])`)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", w, err)
		}
		out = append(out, term{word: w, re: re})
	}
	return out, nil
}

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func (l *Lexicon) Version() string { return l.version }

// AbsoluteMatches returns the distinct absolutist terms found in text, in lexicon order.
func (l *Lexicon) AbsoluteMatches(text string) []string {
	return match(l.absolute, text)
}

// ForbiddenMatches returns the distinct denylisted terms found in text, in lexicon order.
func (l *Lexicon) ForbiddenMatches(text string) []string {
	return match(l.forbidden, text)
}

func match(terms []term, text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, t := range terms {
		if t.matches(text, lower) {
			out = append(out, t.word)
		}
	}
	return out
}
