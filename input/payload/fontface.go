package payload

import (
	"path"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

var styleSel = cascadia.MustCompile("style")

var cssURL = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// rawFontURL catches font URLs injected outside of stylesheet elements.
var rawFontURL = regexp.MustCompile(`url\((https?://[^)]+\.(?:woff2?|ttf|otf))\)`)

// FontFaces collects the typeface URLs declared by @font-face rules in the
// document's embedded stylesheets, in document order and without duplicates.
// Only URLs with a font file extension are reported; the first one is
// conventionally the obfuscated text face. Pages that inject the rule
// through script instead are covered by a raw scan.
func (d *Document) FontFaces() []string {
	var urls []string
	seen := make(map[string]bool)
	for _, style := range styleSel.MatchAll(d.root) {
		sheet, err := parser.Parse(nodeText(style))
		if err != nil {
			tracer().Debugf("skipping unparsable style element: %v", err)
			continue
		}
		for _, rule := range sheet.Rules {
			if rule.Kind != css.AtRule || rule.Name != "@font-face" {
				continue
			}
			for _, decl := range rule.Declarations {
				if !strings.EqualFold(decl.Property, "src") {
					continue
				}
				for _, m := range cssURL.FindAllStringSubmatch(decl.Value, -1) {
					u := strings.TrimSpace(m[1])
					if !isFontURL(u) || seen[u] {
						continue
					}
					seen[u] = true
					urls = append(urls, u)
				}
			}
		}
	}
	if len(urls) == 0 {
		for _, m := range rawFontURL.FindAllSubmatch(d.raw, -1) {
			u := string(m[1])
			if seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	tracer().Infof("document declares %d font face(s)", len(urls))
	return urls
}

func isFontURL(u string) bool {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	switch strings.ToLower(path.Ext(u)) {
	case ".woff", ".woff2", ".ttf", ".otf":
		return true
	}
	return false
}
