/*
Package resources locates font resources for the identification pipeline.

Obfuscated fonts arrive as file paths or as URLs scraped from a page's
@font-face rules; reference fonts are either installed system fonts or a
packaged fallback. Remote fonts are downloaded into the user's cache
directory on first use and reused afterwards.

As resource loading may be a time-consuming task, some functions in this
package will work in an async/await fashion by returning a promise.
Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'deglyph.resources'.
func tracer() tracing.Trace {
	return tracing.Select("deglyph.resources")
}
