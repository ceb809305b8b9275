package glyph

import (
	"image"
	"image/color"

	"github.com/npillmayer/deglyph/core/font"
	"golang.org/x/image/math/fixed"
)

// Rasterizer renders glyphs of one typecase into Bitmaps. All bitmaps
// produced by one rasterizer stem from the same face at the same size and
// are therefore comparable.
//
// A rasterizer must not be shared between goroutines: the underlying face
// buffers rendering state. Concurrent callers each prepare their own
// typecase and rasterizer.
type Rasterizer struct {
	typecase *font.TypeCase
	dot      fixed.Point26_6
}

// NewRasterizer creates a rasterizer for a typecase. The typecase stays
// owned by the caller, who closes it when the session is done.
func NewRasterizer(tc *font.TypeCase) *Rasterizer {
	ascent := tc.Face().Metrics().Ascent
	return &Rasterizer{
		typecase: tc,
		dot:      fixed.Point26_6{X: 0, Y: ascent},
	}
}

// TypeCase returns the typecase this rasterizer renders from.
func (rz *Rasterizer) TypeCase() *font.TypeCase {
	return rz.typecase
}

// RenderGlyph renders the glyph for r into a tight coverage bitmap.
//
// It returns the absent value (a nil bitmap) if the font reports no glyph
// index for r, if the resulting raster has zero width or height, or if the
// font driver fails to produce a mask. Failures are absorbed here and never
// propagate as errors.
func (rz *Rasterizer) RenderGlyph(r rune) *Bitmap {
	if !rz.typecase.ScalableFontParent().HasGlyph(r) {
		// without this check the face would render .notdef boxes for
		// unmapped codepoints
		return nil
	}
	dr, mask, maskp, _, ok := rz.typecase.Face().Glyph(rz.dot, r)
	if !ok || mask == nil {
		tracer().Debugf("face produced no mask for %#U", r)
		return nil
	}
	w, h := dr.Dx(), dr.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	bm := &Bitmap{Width: w, Height: h, Pix: make([]byte, w*h)}
	if alpha, isAlpha := mask.(*image.Alpha); isAlpha {
		for y := 0; y < h; y++ {
			row := alpha.Pix[(maskp.Y+y)*alpha.Stride+maskp.X : (maskp.Y+y)*alpha.Stride+maskp.X+w]
			copy(bm.Pix[y*w:(y+1)*w], row)
		}
		return bm
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := color.AlphaModel.Convert(mask.At(maskp.X+x, maskp.Y+y)).(color.Alpha)
			bm.Pix[y*w+x] = a.A
		}
	}
	return bm
}
