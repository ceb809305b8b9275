package solve

import "fmt"

// CodeRange is an inclusive range of Unicode codepoints.
type CodeRange struct {
	Lo, Hi rune
}

// Contains checks whether r falls into the range.
func (cr CodeRange) Contains(r rune) bool {
	return r >= cr.Lo && r <= cr.Hi
}

func (cr CodeRange) String() string {
	return fmt.Sprintf("U+%04X..U+%04X", cr.Lo, cr.Hi)
}

// ReferenceMode selects where the reference corpus for bitmap matching
// comes from.
type ReferenceMode int

const (
	// ModeAuto lets the solver decide: if the obfuscated font carries at
	// least as many native glyphs in the reference range as there are
	// private-use candidates, it is matched against itself, otherwise
	// against the external reference font.
	ModeAuto ReferenceMode = iota
	// ModeSelfReferential matches against the obfuscated font's own native
	// glyphs.
	ModeSelfReferential
	// ModeExternal matches against a separately provided reference font.
	ModeExternal
)

func (m ReferenceMode) String() string {
	switch m {
	case ModeSelfReferential:
		return "self-referential"
	case ModeExternal:
		return "external"
	}
	return "auto"
}

// Defaults used by Config.withDefaults for unset fields.
const (
	DefaultFontSize  = 32.0  // pixels per em
	DefaultThreshold = 10000 // mean squared distance cap
)

// DefaultPUARange is the Unicode Basic Multilingual Plane private use area,
// the range obfuscated codepoints are drawn from.
var DefaultPUARange = CodeRange{0xE000, 0xF8FF}

// DefaultRefRange is the CJK Unified Ideographs block, covering the
// character inventory obfuscated fonts are built from.
var DefaultRefRange = CodeRange{0x4E00, 0x9FFF}

// Config bundles the parameters of a solver run. The zero value is usable:
// unset fields fall back to the defaults above.
type Config struct {
	FontSize  float64       // raster size in pixels per em
	PUARange  CodeRange     // where to look for obfuscated codepoints
	RefRange  CodeRange     // where to look for reference characters
	Threshold float64       // highest acceptable match distance (exclusive)
	RefMode   ReferenceMode // reference corpus selection
	Jobs      int           // concurrent matching workers, ≤1 = serial
}

func (cfg Config) withDefaults() Config {
	if cfg.FontSize <= 0 {
		cfg.FontSize = DefaultFontSize
	}
	if cfg.PUARange == (CodeRange{}) {
		cfg.PUARange = DefaultPUARange
	}
	if cfg.RefRange == (CodeRange{}) {
		cfg.RefRange = DefaultRefRange
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg
}
