/*
Package font is for typeface and font handling.

We stick to the following definitions:

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc. An example is "Noto Sans CJK regular".

* A "typecase" is a scaled font, i.e. a font rendered at a fixed size
(pixels per em). All glyph bitmaps produced from one typecase are
comparable to each other; this is the invariant the identification
pipeline relies on.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Obfuscated fonts in the wild come as TrueType or CFF-flavoured OpenType
files, occasionally wrapped in a collection (*.ttc). Collections never
announce which face carries the permuted glyphs, so face selection is done
by probing for a canonical character.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package font

import (
	"fmt"
	"io/ioutil"
	"strings"
	"sync"

	"github.com/npillmayer/deglyph/core"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'deglyph.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("deglyph.fonts")
}

// ScalableFont is an in-memory typeface resource.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path, or "internal" for packaged fonts
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// TypeCase is a scalable font fixed at a rendering size. It owns the
// font.Face and must be closed when no longer needed.
type TypeCase struct {
	scalableFontParent *ScalableFont
	font               font.Face // Go uses 'face' and 'font' in an inverse manner
	size               float64
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := ioutil.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "font resource not readable: %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont parses an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "unable to parse font data")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return f, nil
}

// ParseOpenTypeCollection parses a font collection (*.ttc) and selects the
// first face that has a glyph for probe. A zero probe selects the first
// readable face. A plain single-face font parses as a collection of one, so
// this is safe to call on any OpenType input.
func ParseOpenTypeCollection(fbytes []byte, probe rune) (*ScalableFont, error) {
	coll, err := sfnt.ParseCollection(fbytes)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "unable to parse font collection")
	}
	var buf sfnt.Buffer
	for i := 0; i < coll.NumFonts(); i++ {
		face, err := coll.Font(i)
		if err != nil {
			tracer().Debugf("collection face #%d unreadable: %v", i, err)
			continue
		}
		if probe != 0 {
			gid, err := face.GlyphIndex(&buf, probe)
			if err != nil || gid == 0 {
				continue
			}
		}
		f := &ScalableFont{Binary: fbytes, SFNT: face}
		f.Fontname, _ = face.Name(&buf, sfnt.NameIDFull)
		tracer().Infof("selected collection face #%d (%s) for probe %#U", i, f.Fontname, probe)
		return f, nil
	}
	return nil, core.Error(core.EMISSING, "no face in collection supports probe character %#U", probe)
}

// HasGlyph reports whether the font maps r to a non-zero glyph index.
// Absence of a glyph is an expected condition, never an error.
func (sf *ScalableFont) HasGlyph(r rune) bool {
	var buf sfnt.Buffer
	gid, err := sf.SFNT.GlyphIndex(&buf, r)
	return err == nil && gid != 0
}

// PrepareCase fixes the font at a rendering size, given in pixels per em.
// Rendering is anti-aliased with light (vertical-only) hinting, so glyph
// rasters carry 8-bit coverage rather than bilevel masks.
func (sf *ScalableFont) PrepareCase(fontsize float64) (*TypeCase, error) {
	typecase := &TypeCase{}
	typecase.scalableFontParent = sf
	if fontsize < 5.0 || fontsize > 500.0 {
		tracer().Infof("font size must be 5 < size < 500, is %g (set to 32)", fontsize)
		fontsize = 32.0
	}
	options := &opentype.FaceOptions{
		Size:    fontsize,
		DPI:     72, // at 72 dpi, size equals pixels per em
		Hinting: font.HintingVertical,
	}
	f, err := opentype.NewFace(sf.SFNT, options)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "font %s unusable at size %g", sf.Fontname, fontsize)
	}
	typecase.font = f
	typecase.size = fontsize
	return typecase, nil
}

// ScalableFontParent returns the font this typecase was created from.
func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

// Face returns the scaled font face.
func (tc *TypeCase) Face() font.Face {
	return tc.font
}

// PtSize returns the typecase's size in pixels per em.
func (tc *TypeCase) PtSize() float64 {
	return tc.size
}

// Close releases the typecase's rendering resources. Callers must not use
// the typecase afterwards.
func (tc *TypeCase) Close() error {
	if tc.font == nil {
		return nil
	}
	err := tc.font.Close()
	tc.font = nil
	return err
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
// Currently we use Go Sans.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	var err error
	gofont := &ScalableFont{
		Fontname: "Go Sans",
		Filepath: "internal",
		Binary:   goregular.TTF,
	}
	gofont.SFNT, err = sfnt.Parse(gofont.Binary)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	return gofont
}

// --- Font Registry ---------------------------------------------------------

// Registry caches fonts and typecases over the lifetime of a session, so
// that interactive callers do not re-parse and re-scale fonts for every
// command.
type Registry struct {
	sync.Mutex
	fonts     map[string]*ScalableFont
	typecases map[string]*TypeCase
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is a singleton registry for applications that keep fonts
// across operations.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates an empty font registry.
func NewRegistry() *Registry {
	fr := &Registry{
		fonts:     make(map[string]*ScalableFont),
		typecases: make(map[string]*TypeCase),
	}
	return fr
}

// StoreFont puts a font into the registry, keyed by its normalized name.
func (fr *Registry) StoreFont(f *ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	fname := NormalizeFontname(f.Fontname)
	tracer().Debugf("registry stores font %s as %s", f.Fontname, fname)
	fr.fonts[fname] = f
}

// TypeCase returns a typecase for a registered font at the given size,
// creating and caching it on first use. If the font is unknown, the
// fallback font is scaled instead and an error is returned alongside the
// usable fallback typecase.
func (fr *Registry) TypeCase(name string, size float64) (*TypeCase, error) {
	tracer().Debugf("registry searches for font %s at %.2f", name, size)
	fname := NormalizeFontname(name)
	tname := NormalizeTypeCaseName(name, size)
	fr.Lock()
	defer fr.Unlock()
	if t, ok := fr.typecases[tname]; ok {
		tracer().Debugf("registry found typecase %s", tname)
		return t, nil
	}
	if f, ok := fr.fonts[fname]; ok {
		t, err := f.PrepareCase(size)
		if err != nil {
			return nil, err
		}
		tracer().Infof("font registry has font %s, caches at %.2f", fname, size)
		fr.typecases[tname] = t
		return t, nil
	}
	tracer().Infof("registry does not contain font %s", name)
	err := core.Error(core.EMISSING, "font %s not found in registry", name)
	tname = NormalizeTypeCaseName("fallback", size)
	if t, ok := fr.typecases[tname]; ok {
		return t, err
	}
	f := FallbackFont()
	t, _ := f.PrepareCase(size)
	tracer().Infof("font registry caches fallback font at %.2f", size)
	fr.fonts[NormalizeFontname("fallback")] = f
	fr.typecases[tname] = t
	return t, err
}

// CloseAll closes every cached typecase and empties the registry.
func (fr *Registry) CloseAll() {
	fr.Lock()
	defer fr.Unlock()
	for k, t := range fr.typecases {
		if err := t.Close(); err != nil {
			tracer().Errorf("closing typecase %s: %v", k, err)
		}
	}
	fr.fonts = make(map[string]*ScalableFont)
	fr.typecases = make(map[string]*TypeCase)
}

// NormalizeFontname maps font names to registry keys: trimmed, lowercase,
// spaces replaced, file extension cut off.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	return fname
}

// NormalizeTypeCaseName derives a registry key for a font at a size.
func NormalizeTypeCaseName(fname string, size float64) string {
	fname = NormalizeFontname(fname)
	fname = fmt.Sprintf("%s-%.2f", fname, size)
	return fname
}
