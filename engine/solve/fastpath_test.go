package solve

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestPairSharedGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.solve")
	defer teardown()
	pua := CodeRange{Lo: 0xE000, Hi: 0xF8FF}
	ref := CodeRange{Lo: 'A', Hi: 'Z'}
	glyphs := map[rune]glyphID{
		0xE000: 5, 'C': 5, 'A': 5,
		0xE001: 7, 'B': 7,
		0xE002: 9,
		'D':    11,
	}
	mapping := pairSharedGlyphs(glyphs, pua, ref)
	if len(mapping) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(mapping))
	}
	if mapping[0xE000] != 'A' {
		t.Errorf("0xE000 should map to the smallest sharer 'A', got %#U", mapping[0xE000])
	}
	if mapping[0xE001] != 'B' {
		t.Errorf("0xE001 should map to 'B', got %#U", mapping[0xE001])
	}
	if _, ok := mapping[0xE002]; ok {
		t.Errorf("0xE002 shares its glyph with nobody and must stay unmapped")
	}
}

func TestSharedGlyphMappings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.solve")
	defer teardown()
	mapped := identityMap('A', 'Z')
	mapped[0xE000] = 'A'
	mapped[0xE001] = 'B'
	f := parseTestFont(t, testFont(t, mapped, nil))
	mapping := sharedGlyphMappings(f, CodeRange{Lo: 0xE000, Hi: 0xE0FF}, CodeRange{Lo: 'A', Hi: 'Z'})
	if len(mapping) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(mapping))
	}
	if mapping[0xE000] != 'A' || mapping[0xE001] != 'B' {
		t.Errorf("unexpected mappings: %#v", mapping)
	}
}

func TestGlyphScanProbe(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.solve")
	defer teardown()
	mapped := identityMap('A', 'Z')
	mapped[0xE000] = 'A'
	f := parseTestFont(t, testFont(t, mapped, nil))
	glyphs := probeGlyphsScan(f, []rune{0xE000, 'A', 'B', 'a'})
	if glyphs[0xE000] != glyphs['A'] {
		t.Errorf("0xE000 and 'A' should resolve to one glyph, got %d and %d", glyphs[0xE000], glyphs['A'])
	}
	if glyphs['A'] == glyphs['B'] {
		t.Errorf("'A' and 'B' must resolve to different glyphs")
	}
	if _, ok := glyphs['a']; ok {
		t.Errorf("'a' is not in the rebuilt character map and should be skipped")
	}
}
