/*
Package solve recovers character mappings from glyph-permuted fonts.

Content providers sometimes serve fonts whose private-use codepoints render
as ordinary characters: the text looks right on screen but is garbage as
data. This package drives the identification pipeline against such a font:
it enumerates the private-use candidates, reads off mappings the font's own
character map gives away (one glyph serving a private-use code and a native
code), rasterizes the rest and matches them against a reference corpus, and
collects the accepted results in a mapping table with a line-oriented file
form.

Builds are deterministic: identical fonts and configuration yield a
byte-identical serialized table.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package solve

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'deglyph.solve'.
func tracer() tracing.Trace {
	return tracing.Select("deglyph.solve")
}
