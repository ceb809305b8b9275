package solve

import (
	"bytes"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	"github.com/npillmayer/deglyph/core/font"
	"golang.org/x/image/font/sfnt"
)

// glyphID identifies a glyph within one font. Values are only comparable
// between probes of the same font binary.
type glyphID uint32

// rangeRunes expands codepoint ranges into one ascending rune sequence.
// Ranges are expected to be disjoint and in ascending order.
func rangeRunes(ranges ...CodeRange) []rune {
	var runes []rune
	for _, cr := range ranges {
		for r := cr.Lo; r <= cr.Hi; r++ {
			runes = append(runes, r)
		}
	}
	return runes
}

// probeGlyphsShaped sends codes through the HarfBuzz shaper and records the
// glyph each one comes out as. Shaping resolves OpenType substitutions, so
// two codepoints land on the same glyph here even when the font hides their
// kinship behind a GSUB rule instead of the character map.
//
// Codes the font does not cover are left out. So are codes that shape into
// more than one glyph, since those have no single glyph identity.
func probeGlyphsShaped(sf *font.ScalableFont, codes []rune) (map[rune]glyphID, error) {
	f := bytes.NewReader(sf.Binary)
	face, err := hbtt.Parse(f, true)
	if err != nil {
		return nil, err
	}
	hbFont := hb.NewFont(face)
	buf := hb.NewBuffer()
	buf.Props = hb.SegmentProperties{Direction: hb.LeftToRight}
	buf.AddRunes(codes, 0, len(codes))
	buf.Shape(hbFont, nil)

	glyphs := make(map[rune]glyphID, len(buf.Info))
	seen := make(map[int]int)
	for _, info := range buf.Info {
		cluster := info.Cluster
		if cluster < 0 || cluster >= len(codes) {
			continue
		}
		seen[cluster]++
		if seen[cluster] > 1 {
			// a second glyph for the same input code
			delete(glyphs, codes[cluster])
			continue
		}
		if info.Glyph == 0 { // .notdef
			continue
		}
		glyphs[codes[cluster]] = glyphID(info.Glyph)
	}
	return glyphs, nil
}

// probeGlyphsScan resolves codes to glyphs through the font's character map,
// one index lookup per code. Codes without a glyph are left out.
func probeGlyphsScan(sf *font.ScalableFont, codes []rune) map[rune]glyphID {
	glyphs := make(map[rune]glyphID)
	var buf sfnt.Buffer
	for _, r := range codes {
		gid, err := sf.SFNT.GlyphIndex(&buf, r)
		if err != nil || gid == 0 {
			continue
		}
		glyphs[r] = glyphID(gid)
	}
	return glyphs
}

// pairSharedGlyphs derives direct mappings from a glyph probe: a private-use
// code maps to a native character whenever both render as the same glyph.
// If several native characters share the glyph, the smallest one wins, which
// keeps the result independent of probe order.
func pairSharedGlyphs(glyphs map[rune]glyphID, pua, ref CodeRange) map[rune]rune {
	native := make(map[glyphID]rune)
	for r, g := range glyphs {
		if !ref.Contains(r) {
			continue
		}
		if cur, ok := native[g]; !ok || r < cur {
			native[g] = r
		}
	}
	mapping := make(map[rune]rune)
	for r, g := range glyphs {
		if !pua.Contains(r) {
			continue
		}
		if char, ok := native[g]; ok && char != r {
			mapping[r] = char
		}
	}
	return mapping
}

// sharedGlyphMappings finds all private-use codepoints that provably render
// as a native character because the font serves both from one glyph. These
// mappings are exact and need no rasterization.
//
// The shaping probe is the primary source; if the shaper cannot digest the
// font, the character map scan takes over.
func sharedGlyphMappings(sf *font.ScalableFont, pua, ref CodeRange) map[rune]rune {
	codes := rangeRunes(pua, ref)
	glyphs, err := probeGlyphsShaped(sf, codes)
	if err != nil {
		tracer().Debugf("shaping probe failed, falling back to character map scan: %v", err)
		glyphs = probeGlyphsScan(sf, codes)
	}
	mapping := pairSharedGlyphs(glyphs, pua, ref)
	tracer().Infof("%d private-use codepoints share a glyph with a native character", len(mapping))
	return mapping
}
