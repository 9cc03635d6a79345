// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords compiles topic keyword lists into a case-insensitive
// matcher and ships the default cardiology lists.
package keywords

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrNoKeywords is returned when every supplied keyword is blank.
var ErrNoKeywords = errors.New("no keywords provided")

var wordish = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Matcher finds keyword hits in free text.
type Matcher struct {
	re       *regexp.Regexp
	keywords []string
}

// Compile builds a Matcher from keywords. Keywords are NFKC-normalized,
// trimmed, and deduplicated case-insensitively; blanks are dropped.
//
// Each keyword becomes one alternative:
//   - contains Han characters: literal substring
//   - alphanumeric and short (<= 3 runes) or all caps: whole word
//   - several words: whole words joined by any whitespace
//   - anything else: literal substring
//
// The whole pattern is case-insensitive, and earlier keywords win when two
// alternatives match at the same position.
func Compile(keywords []string) (*Matcher, error) {
	cleaned := Union(keywords)
	if len(cleaned) == 0 {
		return nil, ErrNoKeywords
	}

	parts := make([]string, 0, len(cleaned))
	for _, kw := range cleaned {
		parts = append(parts, keywordPattern(kw))
	}

	re, err := regexp.Compile(`(?i)(?:` + strings.Join(parts, "|") + `)`)
	if err != nil {
		return nil, err
	}
	return &Matcher{re: re, keywords: cleaned}, nil
}

func keywordPattern(kw string) string {
	if hasHan(kw) {
		return regexp.QuoteMeta(kw)
	}

	if wordish.MatchString(kw) && (utf8.RuneCountInString(kw) <= 3 || isAllCaps(kw)) {
		return `\b` + regexp.QuoteMeta(kw) + `\b`
	}

	tokens := strings.Fields(kw)
	if len(tokens) > 1 {
		for i, tok := range tokens {
			tokens[i] = regexp.QuoteMeta(tok)
		}
		return `\b` + strings.Join(tokens, `\s+`) + `\b`
	}
	return regexp.QuoteMeta(kw)
}

func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// Keywords returns the normalized keyword list in match priority order.
func (m *Matcher) Keywords() []string {
	return append([]string(nil), m.keywords...)
}

// Find returns up to max hits in text order, as they appear in text.
// A max of zero or less returns every hit.
func (m *Matcher) Find(text string, max int) []string {
	if max <= 0 {
		max = -1
	}
	return m.re.FindAllString(Normalize(text), max)
}

// Match reports whether text contains any keyword.
func (m *Matcher) Match(text string) bool {
	return m.re.MatchString(Normalize(text))
}

// Normalize applies NFKC so full-width letters and compatibility forms
// compare equal to their plain counterparts.
func Normalize(s string) string {
	return norm.NFKC.String(s)
}

// Union merges keyword lists in order, normalizing each entry and dropping
// blanks and case-insensitive duplicates.
func Union(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, kw := range list {
			kw = strings.TrimSpace(Normalize(kw))
			if kw == "" {
				continue
			}
			key := strings.ToLower(kw)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, kw)
		}
	}
	return out
}
