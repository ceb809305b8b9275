package payload

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestFontFacesFromStylesheet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.payload")
	defer teardown()
	//
	faces := parsePage(t, readerPage).FontFaces()
	if len(faces) != 1 || faces[0] != "https://static.example.com/obf/5278.woff2" {
		t.Errorf("expected the single declared font face, have %v", faces)
	}
}

func TestFontFacesFilterAndOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.payload")
	defer teardown()
	//
	page := `<html><head><style>
@font-face { font-family: a; src: url("https://cdn.example.com/f/one.woff2?v=3") format("woff2"), url('https://cdn.example.com/f/one.woff') format("woff"); }
@font-face { font-family: b; src: url(https://cdn.example.com/f/two.ttf); }
@font-face { font-family: c; src: url(https://cdn.example.com/style/not-a-font.css); }
body { background: url(https://cdn.example.com/i/bg.png); }
</style></head><body></body></html>`
	faces := parsePage(t, page).FontFaces()
	want := []string{
		"https://cdn.example.com/f/one.woff2?v=3",
		"https://cdn.example.com/f/one.woff",
		"https://cdn.example.com/f/two.ttf",
	}
	if len(faces) != len(want) {
		t.Fatalf("expected %d font faces, have %v", len(want), faces)
	}
	for i, u := range want {
		if faces[i] != u {
			t.Errorf("face %d: expected %q, have %q", i, u, faces[i])
		}
	}
}

func TestFontFacesDeduplicated(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.payload")
	defer teardown()
	//
	page := `<html><head><style>
@font-face { font-family: a; src: url(https://cdn.example.com/f/same.woff2); }
@font-face { font-family: b; src: url(https://cdn.example.com/f/same.woff2); }
</style></head><body></body></html>`
	faces := parsePage(t, page).FontFaces()
	if len(faces) != 1 {
		t.Errorf("expected the duplicate URL to be reported once, have %v", faces)
	}
}

func TestFontFacesRawScanFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.payload")
	defer teardown()
	//
	page := `<html><body><script>
inject("@font-face{font-family:x;src:url(https://cdn.example.com/f/three.woff2)}");
</script></body></html>`
	faces := parsePage(t, page).FontFaces()
	if len(faces) != 1 || faces[0] != "https://cdn.example.com/f/three.woff2" {
		t.Errorf("expected the raw scan to find the injected face, have %v", faces)
	}
}

func TestFontFacesAbsent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.payload")
	defer teardown()
	//
	faces := parsePage(t, `<html><body>plain</body></html>`).FontFaces()
	if len(faces) != 0 {
		t.Errorf("expected no font faces, have %v", faces)
	}
}
