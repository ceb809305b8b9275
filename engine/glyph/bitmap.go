package glyph

import "strings"

// Bitmap is an immutable 8-bit coverage raster of a single glyph. Pixel
// intensity reflects anti-aliased ink coverage, not a binary mask.
//
// A nil Bitmap, or one with zero width or height, is the absent value: it
// signals "no renderable glyph". Absence is distinct from a bitmap of
// all-zero pixels (a blank but present glyph).
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte // row-major, len = Width*Height
}

// IsAbsent reports whether bm represents a non-renderable glyph.
func (bm *Bitmap) IsAbsent() bool {
	return bm == nil || bm.Width == 0 || bm.Height == 0
}

// At returns the coverage value at (x, y). Out-of-range coordinates read as
// zero coverage, which lets clients treat bitmaps as embedded in an infinite
// blank canvas.
func (bm *Bitmap) At(x, y int) byte {
	if bm == nil || x < 0 || y < 0 || x >= bm.Width || y >= bm.Height {
		return 0
	}
	return bm.Pix[y*bm.Width+x]
}

// String renders bm as rough ASCII art, used in trace output.
func (bm *Bitmap) String() string {
	if bm.IsAbsent() {
		return "<absent>"
	}
	const shades = " .:+*#"
	var sb strings.Builder
	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			sb.WriteByte(shades[int(bm.At(x, y))*(len(shades)-1)/255])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
