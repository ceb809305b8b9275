package glyph

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Corpus is a reference set of glyph bitmaps, keyed by canonical character.
// It preserves insertion order, which keeps scans over the corpus and the
// matcher's tie-breaking deterministic. Entries are unique per character;
// absent bitmaps are never inserted.
//
// A corpus is built once per run from a single typecase and is read-only
// afterwards. Read access is safe for concurrent use.
type Corpus struct {
	entries *linkedhashmap.Map
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{entries: linkedhashmap.New()}
}

// Put inserts the bitmap for a character. Absent bitmaps are dropped
// silently; re-insertion overwrites without changing the original position.
func (c *Corpus) Put(char rune, bm *Bitmap) {
	if bm.IsAbsent() {
		return
	}
	c.entries.Put(char, bm)
}

// Get returns the bitmap stored for char.
func (c *Corpus) Get(char rune) (*Bitmap, bool) {
	v, ok := c.entries.Get(char)
	if !ok {
		return nil, false
	}
	return v.(*Bitmap), true
}

// Size returns the number of characters in the corpus.
func (c *Corpus) Size() int {
	return c.entries.Size()
}

// Each calls visit for every entry, in insertion order.
func (c *Corpus) Each(visit func(char rune, bm *Bitmap)) {
	c.entries.Each(func(key interface{}, value interface{}) {
		visit(key.(rune), value.(*Bitmap))
	})
}

// BuildCorpus rasterizes a candidate sequence and collects the successful
// renderings, in sequence order. Candidates that rasterize to the absent
// value are skipped.
func BuildCorpus(rz *Rasterizer, candidates []rune) *Corpus {
	corpus := NewCorpus()
	for _, char := range candidates {
		if bm := rz.RenderGlyph(char); !bm.IsAbsent() {
			corpus.Put(char, bm)
		}
	}
	tracer().Infof("reference corpus holds %d of %d candidates", corpus.Size(), len(candidates))
	return corpus
}
