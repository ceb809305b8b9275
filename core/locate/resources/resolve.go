package resources

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/deglyph/core"
	"github.com/npillmayer/deglyph/core/font"
)

type resourceType int

// resource types
const (
	unknownResourceType resourceType = iota
	fontResourceType
	tableResourceType
)

// NotFound returns an application error for a missing resource.
func NotFound(res string, rtype resourceType) error {
	e := fmt.Errorf("resource missing: %v", res)
	var s string
	switch rtype {
	case fontResourceType:
		s = fmt.Sprintf("font not found: %s", res)
	case tableResourceType:
		s = fmt.Sprintf("mapping table not found: %s", res)
	default:
		s = fmt.Sprintf("resource not found: %s", res)
	}
	err := core.WrapError(e, core.EMISSING, s)
	return err
}

// --- Fonts -----------------------------------------------------------------

type fontPlusErr struct {
	font *font.ScalableFont
	err  error
}

// FontPromise is the promise type returned by ResolveFont.
type FontPromise interface {
	Font() (*font.ScalableFont, error)
}

type scalableFontLoader struct {
	await func(ctx context.Context) (*font.ScalableFont, error)
}

func (loader scalableFontLoader) Font() (*font.ScalableFont, error) {
	return loader.await(context.Background())
}

// ResolveFont resolves a font resource specification to a loaded font.
// The specification may be
//
//   - a URL: the font is downloaded into the user's cache directory once
//     and read from there afterwards;
//   - a file path;
//   - the name of an installed font, located through the platform's font
//     folders and, where configured, through fontconfig.
//
// If probe is non-zero and the resource is a font collection, the first
// face carrying a glyph for probe is selected; with a zero probe the first
// face wins. Failure to locate the resource is an application error with
// code EMISSING; the promise never substitutes a different font.
func ResolveFont(name string, probe rune) FontPromise {
	ch := make(chan fontPlusErr)
	go func(ch chan<- fontPlusErr) {
		result := fontPlusErr{}
		fpath, err := locateFontFile(name)
		if err != nil {
			result.err = err
		} else {
			result.font, result.err = loadFontFile(fpath, probe)
		}
		ch <- result
		close(ch)
	}(ch)
	return scalableFontLoader{
		await: func(ctx context.Context) (*font.ScalableFont, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.font, r.err
			}
		},
	}
}

func locateFontFile(name string) (string, error) {
	if isURL(name) {
		return cachedRemoteFont(name)
	}
	if _, err := os.Stat(name); err == nil {
		tracer().Debugf("%s is a font file", name)
		return name, nil
	}
	if fpath, err := findfont.Find(name); err == nil && fpath != "" {
		tracer().Debugf("%s is a system font: %s", name, fpath)
		return fpath, nil
	}
	if fpath, ok := findFontConfigFont(name); ok {
		tracer().Debugf("fontconfig lists %s as %s", name, fpath)
		return fpath, nil
	}
	return "", NotFound(name, fontResourceType)
}

func loadFontFile(fpath string, probe rune) (*font.ScalableFont, error) {
	if probe == 0 {
		f, err := font.LoadOpenTypeFont(fpath)
		if err == nil {
			return f, nil
		}
		// fall through: the file may be a collection
	}
	bytez, err := os.ReadFile(fpath)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "font resource not readable: %s", fpath)
	}
	f, err := font.ParseOpenTypeCollection(bytez, probe)
	if err != nil {
		return nil, err
	}
	f.Filepath = fpath
	return f, nil
}

// cachedRemoteFont downloads a font URL into the cache directory, unless a
// previous run already did.
func cachedRemoteFont(fonturl string) (string, error) {
	u, err := url.Parse(fonturl)
	if err != nil {
		return "", core.WrapError(err, core.EINVALID, "malformed font URL: %s", fonturl)
	}
	base := path.Base(u.Path)
	if base == "" || base == "/" || base == "." {
		return "", core.Error(core.EINVALID, "font URL carries no file name: %s", fonturl)
	}
	cachedir, err := CacheDirPath("fonts")
	if err != nil {
		return "", err
	}
	local := path.Join(cachedir, base)
	if _, err := os.Stat(local); err == nil {
		tracer().Debugf("font already cached: %s", local)
		return local, nil
	}
	tracer().Infof("downloading font %s", fonturl)
	if err := DownloadCachedFile(local, fonturl); err != nil {
		return "", err
	}
	return local, nil
}

func isURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// --- Typecases ---------------------------------------------------------------

type typecasePlusErr struct {
	tc  *font.TypeCase
	err error
}

// TypeCasePromise is the promise type returned by ResolveTypeCase.
type TypeCasePromise interface {
	TypeCase() (*font.TypeCase, error)
}

type typecaseLoader struct {
	await func(ctx context.Context) (*font.TypeCase, error)
}

func (loader typecaseLoader) TypeCase() (*font.TypeCase, error) {
	return loader.await(context.Background())
}

// ResolveTypeCase resolves a font specification (see ResolveFont) to a
// typecase at a given size, registering the font with the global registry
// so that repeated calls within a session reuse the scaled face.
func ResolveTypeCase(name string, probe rune, size float64) TypeCasePromise {
	ch := make(chan typecasePlusErr)
	go func(ch chan<- typecasePlusErr) {
		result := typecasePlusErr{}
		if t, err := font.GlobalRegistry().TypeCase(name, size); err == nil {
			result.tc = t
			ch <- result
			close(ch)
			return
		}
		f, err := ResolveFont(name, probe).Font()
		if err != nil {
			result.err = err
		} else {
			f.Fontname = name
			font.GlobalRegistry().StoreFont(f)
			result.tc, result.err = font.GlobalRegistry().TypeCase(name, size)
		}
		ch <- result
		close(ch)
	}(ch)
	return typecaseLoader{
		await: func(ctx context.Context) (*font.TypeCase, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.tc, r.err
			}
		},
	}
}
