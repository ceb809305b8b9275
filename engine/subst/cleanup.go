package subst

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup reduces a paragraph-structured text fragment, as found in
// extracted page payloads, to plain text. <p> and <br> boundaries become
// newlines, every other tag is dropped, entities are decoded, and leftover
// backslash-escaped quotes from a JSON transport are unescaped. Scripts and
// style rules embedded in the fragment contribute no text.
func StripMarkup(fragment string) string {
	fragment = strings.ReplaceAll(fragment, `\"`, `"`)
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		tracer().Errorf("cannot parse text fragment: %v", err)
		return strings.TrimSpace(fragment)
	}
	var b strings.Builder
	collectText(doc, &b)
	text := strings.ReplaceAll(b.String(), "\u00a0", " ")
	return strings.TrimSpace(text)
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "p", "br":
			b.WriteByte('\n')
		}
	case html.TextNode:
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
