package match

import (
	"math"

	"github.com/npillmayer/deglyph/engine/glyph"
)

// Distance computes the mean squared pixel error between two coverage
// bitmaps after centered alignment. It is symmetric, zero for identical
// bitmaps, and grows quadratically with the rendering size. Absent bitmaps
// compare at infinite distance.
func Distance(a, b *glyph.Bitmap) float64 {
	if a.IsAbsent() || b.IsAbsent() {
		return math.Inf(1)
	}
	w := a.Width
	if b.Width > w {
		w = b.Width
	}
	h := a.Height
	if b.Height > h {
		h = b.Height
	}
	// integer-floor centering offsets per axis
	ax, ay := (w-a.Width)/2, (h-a.Height)/2
	bx, by := (w-b.Width)/2, (h-b.Height)/2
	var sum int64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := int64(a.At(x-ax, y-ay)) - int64(b.At(x-bx, y-by))
			sum += d * d
		}
	}
	return float64(sum) / float64(w*h)
}

// Matcher scans a reference corpus for the best match of a target bitmap.
// The corpus is read-only, so a matcher is safe for concurrent use.
type Matcher struct {
	corpus    *glyph.Corpus
	threshold float64
}

// NewMatcher creates a matcher over a corpus with an acceptance cutoff.
// A match is accepted only if its distance is strictly below threshold;
// distances at or above it mean "no confident match".
func NewMatcher(corpus *glyph.Corpus, threshold float64) *Matcher {
	return &Matcher{corpus: corpus, threshold: threshold}
}

// Threshold returns the matcher's acceptance cutoff.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the corpus character with minimum distance to target,
// together with that distance. ok is false if the target is absent, the
// corpus is empty, or the minimum distance does not pass the acceptance
// cutoff; in the latter case char and dist still describe the best
// candidate, for diagnostic purposes.
//
// Candidates are scanned in corpus insertion order and only a strictly
// lower distance displaces the current best, so results are deterministic.
func (m *Matcher) Match(target *glyph.Bitmap) (char rune, dist float64, ok bool) {
	dist = math.Inf(1)
	if target.IsAbsent() || m.corpus.Size() == 0 {
		return 0, dist, false
	}
	m.corpus.Each(func(candidate rune, bm *glyph.Bitmap) {
		if d := Distance(target, bm); d < dist {
			char, dist = candidate, d
		}
	})
	if dist >= m.threshold {
		tracer().Debugf("best candidate %#U at %.1f rejected by cutoff %.1f", char, dist, m.threshold)
		return char, dist, false
	}
	return char, dist, true
}
