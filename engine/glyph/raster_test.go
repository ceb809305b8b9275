package glyph

import (
	"testing"

	"github.com/npillmayer/deglyph/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func testTypeCase(t *testing.T, size float64) *font.TypeCase {
	t.Helper()
	tc, err := font.FallbackFont().PrepareCase(size)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { tc.Close() })
	return tc
}

func TestRenderGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.glyphs")
	defer teardown()
	//
	rz := NewRasterizer(testTypeCase(t, 32.0))
	bm := rz.RenderGlyph('A')
	if bm.IsAbsent() {
		t.Fatal("expected a bitmap for 'A', have absent")
	}
	if bm.Width <= 0 || bm.Height <= 0 {
		t.Fatalf("unexpected bitmap geometry %dx%d", bm.Width, bm.Height)
	}
	t.Logf("bitmap for 'A' is %dx%d\n%s", bm.Width, bm.Height, bm)
	ink := 0
	gradient := false
	for _, p := range bm.Pix {
		if p > 0 {
			ink++
		}
		if p > 0 && p < 255 {
			gradient = true
		}
	}
	if ink == 0 {
		t.Errorf("bitmap for 'A' carries no ink")
	}
	if !gradient {
		t.Errorf("expected anti-aliased coverage, bitmap is bilevel")
	}
}

func TestRenderGlyphAbsent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.glyphs")
	defer teardown()
	//
	rz := NewRasterizer(testTypeCase(t, 32.0))
	if bm := rz.RenderGlyph(0xE000); !bm.IsAbsent() {
		t.Errorf("expected absent bitmap for unmapped U+E000")
	}
	if bm := rz.RenderGlyph('中'); !bm.IsAbsent() {
		t.Errorf("expected absent bitmap for CJK glyph missing from goregular")
	}
}

func TestRenderGlyphBlank(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.glyphs")
	defer teardown()
	//
	rz := NewRasterizer(testTypeCase(t, 32.0))
	// space is mapped but has no ink: zero-size raster collapses to absent
	if bm := rz.RenderGlyph(' '); !bm.IsAbsent() {
		t.Errorf("expected blank glyph to collapse to the absent value, have %dx%d",
			bm.Width, bm.Height)
	}
}

func TestRenderDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.glyphs")
	defer teardown()
	//
	rz := NewRasterizer(testTypeCase(t, 32.0))
	a := rz.RenderGlyph('G')
	b := rz.RenderGlyph('G')
	if a.Width != b.Width || a.Height != b.Height {
		t.Fatalf("repeated rendering changed geometry: %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height)
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("repeated rendering changed coverage at pixel %d", i)
		}
	}
}

func TestBitmapAt(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.glyphs")
	defer teardown()
	//
	bm := &Bitmap{Width: 2, Height: 1, Pix: []byte{7, 9}}
	if bm.At(1, 0) != 9 {
		t.Errorf("expected pixel (1,0) = 9, have %d", bm.At(1, 0))
	}
	if bm.At(-1, 0) != 0 || bm.At(0, 5) != 0 {
		t.Errorf("expected out-of-range reads to be blank")
	}
	var absent *Bitmap
	if !absent.IsAbsent() {
		t.Errorf("nil bitmap must be absent")
	}
	if (&Bitmap{Width: 3, Height: 0}).IsAbsent() != true {
		t.Errorf("zero-height bitmap must be absent")
	}
	if (&Bitmap{Width: 1, Height: 1, Pix: []byte{0}}).IsAbsent() {
		t.Errorf("all-zero bitmap is present, not absent")
	}
}
