/*
Package payload extracts obfuscated text and font resources from reader pages.

Pages of the targeted content provider do not carry the chapter text in the
visible document. Instead a script element assigns a large JSON state blob to
window.__INITIAL_STATE__, and the text sits inside that blob, written in
private-use codepoints that only render correctly with the page's own
obfuscated typeface. The typeface itself is declared by an @font-face rule in
an embedded stylesheet.

Parse reads such a page once; the resulting Document answers both queries:
Payload locates and decodes the state blob (with a raw scan as fallback for
pages where the blob is damaged or missing), FontFaces collects the typeface
URLs. Neither query touches the network.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package payload

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'deglyph.payload'.
func tracer() tracing.Trace {
	return tracing.Select("deglyph.payload")
}
