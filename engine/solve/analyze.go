package solve

import (
	"unicode"

	"github.com/npillmayer/deglyph/core/font"
	"golang.org/x/image/font/sfnt"
)

// CmapEntry is one character map assignment of a font.
type CmapEntry struct {
	Code  rune   // codepoint
	Glyph uint32 // glyph index the codepoint renders as
}

// AnalyzeCmap lists which glyph each codepoint of a font renders as, in
// ascending codepoint order. Ranges restrict the scan; with none given the
// whole Unicode space is scanned. Obfuscated fonts show up here as dense
// blocks of private-use assignments.
func AnalyzeCmap(sf *font.ScalableFont, ranges ...CodeRange) []CmapEntry {
	if len(ranges) == 0 {
		ranges = []CodeRange{{Lo: 0, Hi: unicode.MaxRune}}
	}
	var entries []CmapEntry
	var buf sfnt.Buffer
	for _, cr := range ranges {
		for r := cr.Lo; r <= cr.Hi; r++ {
			gid, err := sf.SFNT.GlyphIndex(&buf, r)
			if err != nil || gid == 0 {
				continue
			}
			entries = append(entries, CmapEntry{Code: r, Glyph: uint32(gid)})
		}
	}
	tracer().Infof("font %s maps %d codepoints in the scanned ranges", sf.Fontname, len(entries))
	return entries
}
