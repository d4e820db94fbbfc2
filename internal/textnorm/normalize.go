package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// currencyTokens expands select currency symbols into word tokens so the
// signal survives punctuation stripping ("€100" keeps an "eur" token).
var currencyTokens = map[rune]string{
	'€': "eur",
	'$': "usd",
	'£': "gbp",
	'¥': "jpy",
}

// Normalize converts s into its canonical comparison form. The same pipeline
// runs on message text and on keywords, so comparison stays symmetric:
//
//  1. fold script confusables to Latin (Fold)
//  2. NFKD decomposition (splits precomposed accents, unfolds full-width
//     forms and ligatures)
//  3. drop every format character (bidi controls, zero-width joiners,
//     variation selectors, anything in category Cf)
//  4. drop every combining mark (category M), so é becomes e
//  5. expand €/$/£/¥ into bounded word tokens
//  6. collapse every run of non-letter/non-digit runes into a single space
//  7. lowercase and trim
//
// The output is only ever compared, never displayed or stored.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	decomposed := norm.NFKD.String(Fold(s))

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingGap := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Cf, r) || unicode.Is(unicode.M, r) {
			continue
		}
		if tok, ok := currencyTokens[r]; ok {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(tok)
			pendingGap = true
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingGap && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingGap = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		// Separators, punctuation, symbols: remember the gap, emit at most
		// one space and never at the edges.
		pendingGap = true
	}
	return b.String()
}
