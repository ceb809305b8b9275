/*
Package glyph renders single glyphs into coverage bitmaps.

This is the lowest layer of the identification pipeline: it turns codepoints
of a typecase into small grayscale rasters which the matcher then compares.
Rasterization failures are a normal, expected outcome here, since many
private-use codepoints carry placeholder outlines. The rasterizer therefore
never returns an error. It returns an absent bitmap instead, and downstream
code only ever checks for absence.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyph

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'deglyph.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("deglyph.glyphs")
}
