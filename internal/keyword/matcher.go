// Package keyword decides whether chat text contains a banned keyword or
// phrase. Keywords and text pass through the same normalization pipeline, so
// matching ignores case, accents, invisible characters and script
// confusables. Matches are anchored at whole-word/phrase boundaries to keep
// "scam" from firing inside "scammer".
package keyword

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sweeper/mod-bot/internal/textnorm"
)

// Result is the outcome of a single match run.
type Result struct {
	Matched bool
	Keyword string // raw keyword as supplied in the list, empty if no match
	Plural  bool   // matched via the trailing-s plural allowance
}

// entry is a keyword prepared for matching at construction time.
type entry struct {
	raw    string
	norm   string
	plural string // norm + "s" for single words, empty for phrases
}

// Matcher holds the ordered banned-keyword list in normalized form.
// List order defines priority: the first matching keyword wins.
type Matcher struct {
	entries []entry
}

// NewMatcher builds a Matcher from raw keyword phrases. Each keyword is
// normalized once here; keywords that normalize to the empty string (purely
// symbolic entries) are dropped, since an empty pattern would match every
// message. Single-word keywords get a plural variant, multi-word phrases do
// not.
func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{}
	for _, raw := range keywords {
		n := textnorm.Normalize(raw)
		if n == "" {
			continue
		}
		e := entry{raw: raw, norm: n}
		if !strings.Contains(n, " ") {
			e.plural = n + "s"
		}
		m.entries = append(m.entries, e)
	}
	return m
}

// Len reports how many usable keywords the matcher holds.
func (m *Matcher) Len() int {
	return len(m.entries)
}

// Match normalizes text once and walks the keyword list in order. A keyword
// matches when its normalized form occurs in the normalized text with a
// non-word rune (or string edge) on both sides. Empty text never matches.
func (m *Matcher) Match(text string) Result {
	t := textnorm.Normalize(text)
	if t == "" {
		return Result{}
	}

	for _, e := range m.entries {
		if containsPhrase(t, e.norm) {
			return Result{Matched: true, Keyword: e.raw}
		}
		if e.plural != "" && containsPhrase(t, e.plural) {
			return Result{Matched: true, Keyword: e.raw, Plural: true}
		}
	}
	return Result{}
}

// containsPhrase reports whether phrase occurs in text delimited by
// whole-word boundaries on both sides.
func containsPhrase(text, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		if boundaryBefore(text, i) && boundaryAfter(text, i+len(phrase)) {
			return true
		}
		start = i + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i == len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

// isWordRune uses Unicode letter/digit classes rather than ASCII \b so that
// boundaries behave correctly next to non-Latin words too.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
