package glyph

import (
	"github.com/npillmayer/deglyph/core/font"
	"golang.org/x/image/font/sfnt"
)

// Enumerate scans the inclusive codepoint range [lo, hi] of a font and
// returns, in ascending order, every codepoint the font maps to a non-zero
// glyph index. It performs index lookups only, no rasterization; a
// codepoint appearing here may still rasterize to the absent value.
func Enumerate(sf *font.ScalableFont, lo, hi rune) []rune {
	var present []rune
	var buf sfnt.Buffer
	for r := lo; r <= hi; r++ {
		gid, err := sf.SFNT.GlyphIndex(&buf, r)
		if err != nil || gid == 0 {
			continue
		}
		present = append(present, r)
	}
	tracer().Debugf("%d of %d codepoints in [%#x..%#x] have glyphs", len(present), hi-lo+1, lo, hi)
	return present
}
