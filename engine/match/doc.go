/*
Package match finds the visually closest reference glyph for a target glyph.

The distance metric is the mean squared pixel error of two coverage bitmaps
after centered alignment: both bitmaps are placed on a common canvas sized
to the maximum of their widths and heights, centered per axis, with blank
padding elsewhere. Dividing by the full canvas area (not the smaller
bitmap's area) penalizes size mismatches.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package match

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'deglyph.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("deglyph.glyphs")
}
