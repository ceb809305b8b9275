/*
Package subst rewrites obfuscated text with a recovered codepoint mapping.

Substitution is a pure scalar-wise transform: every codepoint listed in the
mapping is replaced by its plain character, every other codepoint passes
through unchanged, and the output always carries the same number of Unicode
scalars as the input. Applying a substituter whose mapping shares no
codepoint with the text is therefore a no-op, which makes repeated runs over
already-rewritten text harmless.

The package additionally offers structural cleanup for text payloads that
carry lightweight paragraph markup (see StripMarkup).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package subst

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'deglyph.subst'.
func tracer() tracing.Trace {
	return tracing.Select("deglyph.subst")
}
