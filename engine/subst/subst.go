package subst

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// A Substituter rewrites text according to a fixed codepoint mapping,
// usually one recovered from an obfuscated typeface. It is stateless after
// construction and safe for concurrent use.
type Substituter struct {
	table map[rune]rune
	tr    transform.Transformer
}

// NewSubstituter creates a Substituter for the given mapping. The mapping is
// copied, so later changes by the caller do not affect the substituter.
func NewSubstituter(mapping map[rune]rune) *Substituter {
	table := make(map[rune]rune, len(mapping))
	for code, char := range mapping {
		table[code] = char
	}
	return &Substituter{
		table: table,
		tr: runes.Map(func(r rune) rune {
			if char, ok := table[r]; ok {
				return char
			}
			return r
		}),
	}
}

// Len returns the number of codepoints the substituter will replace.
func (s *Substituter) Len() int {
	return len(s.table)
}

// Apply rewrites text scalar by scalar. Mapped codepoints are replaced,
// unmapped ones pass through, so the result has the same scalar count as the
// input. Malformed input bytes are carried over as the replacement
// character, never reported as an error.
func (s *Substituter) Apply(text string) string {
	out, _, err := transform.String(s.tr, text)
	if err != nil {
		tracer().Errorf("substitution of %d bytes failed: %v", len(text), err)
		return text
	}
	return out
}
