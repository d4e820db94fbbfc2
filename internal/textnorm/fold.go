// Package textnorm produces the canonical comparison form of chat text.
// It folds script confusables to Latin, strips invisible formatting and
// diacritics, and collapses punctuation, so that keyword comparison is
// stable under the obfuscation tricks spammers actually use.
package textnorm

import (
	"strings"
	"unicode"
)

// confusables maps single code points from non-Latin scripts to the Latin
// letter they impersonate. Keep this small and targeted; expand it when a
// new bypass shows up in the wild.
var confusables = map[rune]rune{
	// Cyrillic (lower)
	'а': 'a', // U+0430
	'е': 'e', // U+0435
	'о': 'o', // U+043E
	'р': 'p', // U+0440
	'с': 'c', // U+0441
	'ѕ': 's', // U+0455
	'х': 'x', // U+0445
	'у': 'y', // U+0443
	'к': 'k', // U+043A
	'м': 'm', // U+043C
	'т': 't', // U+0442
	'н': 'h', // U+043D, reads as h
	'і': 'i', // U+0456
	'ї': 'i', // U+0457
	'ј': 'j', // U+0458

	// Cyrillic (upper)
	'А': 'a',
	'Е': 'e',
	'О': 'o',
	'Р': 'p',
	'С': 'c',
	'Ѕ': 's',
	'Х': 'x',
	'У': 'y',
	'К': 'k',
	'М': 'm',
	'Т': 't',
	'Н': 'h',
	'І': 'i',
	'Ї': 'i',
	'Ј': 'j',

	// Greek
	'Α': 'a',
	'Β': 'b',
	'Ε': 'e',
	'Ζ': 'z',
	'Η': 'h',
	'Ι': 'i',
	'Κ': 'k',
	'Μ': 'm',
	'Ν': 'n',
	'Ο': 'o',
	'Ρ': 'p',
	'Τ': 't',
	'Υ': 'y',
	'Χ': 'x',
	'α': 'a',
	'β': 'b',
	'ε': 'e',
	'ι': 'i',
	'κ': 'k',
	'μ': 'm',
	'ν': 'n',
	'ο': 'o',
	'ρ': 'p',
	'τ': 't',
	'υ': 'y',
	'χ': 'x',

	// Armenian
	'ն': 'u', // U+0576
	'ո': 'n', // U+0578
	'օ': 'o', // U+0585
	'ս': 'u', // U+057D
	'հ': 'h', // U+0570

	// Latin dotless/dotted I
	'ı': 'i', // U+0131
	'İ': 'i', // U+0130
}

// foldable is the set of Unicode blocks whose code points are eligible for
// confusable folding. Everything outside these ranges passes through Fold
// untouched. Ranges must stay sorted for unicode.Is.
var foldable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0130, Hi: 0x0131, Stride: 1}, // dotted/dotless I
		{Lo: 0x0370, Hi: 0x03FF, Stride: 1}, // Greek
		{Lo: 0x0400, Hi: 0x052F, Stride: 1}, // Cyrillic + supplement
		{Lo: 0x0530, Hi: 0x058F, Stride: 1}, // Armenian
		{Lo: 0x1C80, Hi: 0x1C8F, Stride: 1}, // Cyrillic Extended-C
		{Lo: 0x2DE0, Hi: 0x2DFF, Stride: 1}, // Cyrillic Extended-A
		{Lo: 0xA640, Hi: 0xA69F, Stride: 1}, // Cyrillic Extended-B
	},
}

// Fold replaces lookalike code points from the foldable blocks with their
// Latin equivalents. Unmapped runes, including unmapped runes inside the
// foldable blocks, are kept as-is. Fold is pure and O(len(s)).
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(foldable, r) {
			if latin, ok := confusables[r]; ok {
				b.WriteRune(latin)
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
