package payload

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/bytedance/sonic"
	"github.com/npillmayer/deglyph/core"
	"golang.org/x/net/html"
)

// A Document is a parsed reader page, ready to be queried for its text
// payload and for the resources it references.
type Document struct {
	root *html.Node
	raw  []byte
}

// Parse reads a complete HTML document. The HTML parser is error-tolerant,
// so effectively only I/O failures are reported.
func Parse(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot read document")
	}
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse document")
	}
	return &Document{root: root, raw: raw}, nil
}

// Payload is the text unit embedded in a reader page: the obfuscated chapter
// body plus the navigational metadata the page state carries alongside it.
type Payload struct {
	Title     string
	BookID    string
	Content   string
	WordCount int
	Prev      string
	Next      string
}

var scriptSel = cascadia.MustCompile("script")

// The state blob is minified JSON, assigned in a single statement.
var stateAssignment = regexp.MustCompile(`(?s)window\.__INITIAL_STATE__\s*=\s*(\{.*?\});`)

// pageState mirrors the slice of the state blob the extractor cares about.
// Everything else in the blob is ignored.
type pageState struct {
	Reader struct {
		ChapterData struct {
			Title      string `json:"title"`
			BookID     string `json:"bookId"`
			Content    string `json:"content"`
			PrevItem   string `json:"preItemId"`
			NextItem   string `json:"nextItemId"`
			WordNumber string `json:"chapterWordNumber"`
		} `json:"chapterData"`
	} `json:"reader"`
}

// Payload extracts the obfuscated text payload from the document's embedded
// state blob. A page without a recognizable payload yields a Payload with
// empty Content, not an error; targeted pages routinely withhold the text
// and callers are expected to check.
func (d *Document) Payload() *Payload {
	for _, script := range scriptSel.MatchAll(d.root) {
		m := stateAssignment.FindStringSubmatch(nodeText(script))
		if m == nil {
			continue
		}
		// The blob is not strict JSON: absent values appear as the
		// JavaScript literal undefined.
		blob := strings.ReplaceAll(m[1], "undefined", "null")
		var state pageState
		if err := sonic.Unmarshal([]byte(blob), &state); err != nil {
			tracer().Infof("state blob does not decode: %v", err)
			continue
		}
		ch := state.Reader.ChapterData
		if ch.Content == "" {
			continue
		}
		words, _ := strconv.Atoi(ch.WordNumber)
		tracer().Debugf("state blob carries %d bytes of obfuscated text", len(ch.Content))
		return &Payload{
			Title:     ch.Title,
			BookID:    ch.BookID,
			Content:   ch.Content,
			WordCount: words,
			Prev:      ch.PrevItem,
			Next:      ch.NextItem,
		}
	}
	return &Payload{Content: d.rawContent()}
}

// The raw scan must honor escaped quotes inside the JSON string value.
var contentField = regexp.MustCompile(`"content"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// rawContent scans the raw document for a "content" field when the state
// blob is missing or does not decode. The first non-empty value wins.
func (d *Document) rawContent() string {
	for _, m := range contentField.FindAllSubmatch(d.raw, -1) {
		if len(m[1]) == 0 {
			continue
		}
		quoted := make([]byte, 0, len(m[1])+2)
		quoted = append(quoted, '"')
		quoted = append(quoted, m[1]...)
		quoted = append(quoted, '"')
		var content string
		if err := sonic.Unmarshal(quoted, &content); err != nil {
			// Escapes stay in, but the text is still readable.
			return string(m[1])
		}
		if content != "" {
			return content
		}
	}
	tracer().Infof("document carries no text payload")
	return ""
}

// nodeText concatenates the direct text children of a node. Script and
// style elements keep their content in a single text child.
func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
