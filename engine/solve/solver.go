package solve

import (
	"sync"

	"github.com/npillmayer/deglyph/core"
	"github.com/npillmayer/deglyph/core/font"
	"github.com/npillmayer/deglyph/engine/glyph"
	"github.com/npillmayer/deglyph/engine/match"
)

// Solver derives the mapping table of one obfuscated font.
//
// Solving runs in two stages. Codepoints whose glyph doubles as a native
// character are mapped directly from the glyph probe. Everything else is
// rasterized and matched against a reference corpus: the obfuscated font's
// own native glyphs, or a separate reference typeface.
type Solver struct {
	cfg Config
	obf *font.ScalableFont
	ref *font.ScalableFont // may be nil
	rep *Report
}

// NewSolver creates a solver for an obfuscated font. The reference typeface
// supplies the corpus for bitmap matching in external mode and may be nil
// when the font is matched against itself.
func NewSolver(obfuscated *font.ScalableFont, reference *font.ScalableFont, cfg Config) *Solver {
	return &Solver{
		cfg: cfg.withDefaults(),
		obf: obfuscated,
		ref: reference,
	}
}

// Report returns the report of the most recent BuildTable run, or nil if
// none ran yet.
func (s *Solver) Report() *Report {
	return s.rep
}

// BuildTable identifies the characters behind the font's private-use
// codepoints and collects the confident mappings in a table.
//
// Identical inputs and configuration produce identical tables, regardless
// of the number of workers. Codepoints without ink, and codepoints whose
// best match fails the distance cutoff, are left out of the table; the
// report lists them.
func (s *Solver) BuildTable() (*Table, error) {
	cfg := s.cfg
	rep := &Report{
		Font:      s.obf.Fontname,
		Mode:      cfg.RefMode.String(),
		FontSize:  cfg.FontSize,
		Threshold: cfg.Threshold,
	}
	if s.ref != nil {
		rep.Reference = s.ref.Fontname
	}
	s.rep = rep

	table := NewTable()
	candidates := glyph.Enumerate(s.obf, cfg.PUARange.Lo, cfg.PUARange.Hi)
	rep.Candidates = len(candidates)
	if len(candidates) == 0 {
		tracer().Infof("font %s carries no private-use glyphs", s.obf.Fontname)
		return table, nil
	}
	tracer().Infof("font %s carries %d private-use glyphs", s.obf.Fontname, len(candidates))

	// mappings the font's own structure gives away
	shared := sharedGlyphMappings(s.obf, cfg.PUARange, cfg.RefRange)
	remaining := make([]rune, 0, len(candidates))
	for _, code := range candidates {
		if char, ok := shared[code]; ok {
			table.Set(code, char)
			rep.add(code, char, -1, StatusShared)
			continue
		}
		remaining = append(remaining, code)
	}
	if len(remaining) == 0 {
		rep.sortEntries()
		return table, nil
	}

	corpusFont, mode, err := s.pickReference(len(candidates))
	if err != nil {
		return nil, err
	}
	rep.Mode = mode.String()
	corpus, err := s.buildCorpus(corpusFont)
	if err != nil {
		return nil, err
	}
	rep.CorpusSize = corpus.Size()

	matcher := match.NewMatcher(corpus, cfg.Threshold)
	outcomes, err := s.matchCandidates(matcher, remaining)
	if err != nil {
		return nil, err
	}
	for _, oc := range outcomes {
		rep.add(oc.code, oc.char, oc.dist, oc.status)
		if oc.status == StatusAccepted {
			table.Set(oc.code, oc.char)
		}
	}
	rep.sortEntries()
	tracer().Infof("mapping table holds %d of %d candidates", table.Len(), len(candidates))
	return table, nil
}

// pickReference decides which font the matching corpus comes from.
func (s *Solver) pickReference(candidateCount int) (*font.ScalableFont, ReferenceMode, error) {
	switch s.cfg.RefMode {
	case ModeSelfReferential:
		return s.obf, ModeSelfReferential, nil
	case ModeExternal:
		if s.ref == nil {
			return nil, ModeExternal, core.Error(core.EMISSING,
				"external matching requested, but no reference typeface given")
		}
		return s.ref, ModeExternal, nil
	}
	// auto: a font covering the reference range at least as well as the
	// private-use range can serve as its own reference
	native := glyph.Enumerate(s.obf, s.cfg.RefRange.Lo, s.cfg.RefRange.Hi)
	if len(native) >= candidateCount {
		tracer().Infof("%d native glyphs cover %d candidates, matching %s against itself",
			len(native), candidateCount, s.obf.Fontname)
		return s.obf, ModeSelfReferential, nil
	}
	if s.ref == nil {
		return nil, ModeExternal, core.Error(core.EMISSING,
			"font carries only %d native glyphs and needs a reference typeface", len(native))
	}
	return s.ref, ModeExternal, nil
}

// buildCorpus rasterizes the reference characters of src in one session.
func (s *Solver) buildCorpus(src *font.ScalableFont) (*glyph.Corpus, error) {
	chars := glyph.Enumerate(src, s.cfg.RefRange.Lo, s.cfg.RefRange.Hi)
	tc, err := src.PrepareCase(s.cfg.FontSize)
	if err != nil {
		return nil, err
	}
	defer tc.Close()
	corpus := glyph.BuildCorpus(glyph.NewRasterizer(tc), chars)
	if corpus.Size() == 0 {
		return nil, core.Error(core.EINVALID, "reference corpus of %s is empty", src.Fontname)
	}
	return corpus, nil
}

// outcome is the matching result for one private-use codepoint.
type outcome struct {
	code   rune
	char   rune
	dist   float64
	status string
}

func matchOne(rz *glyph.Rasterizer, matcher *match.Matcher, code rune) outcome {
	bm := rz.RenderGlyph(code)
	if bm.IsAbsent() {
		return outcome{code: code, dist: -1, status: StatusAbsent}
	}
	char, dist, ok := matcher.Match(bm)
	if !ok {
		return outcome{code: code, char: char, dist: dist, status: StatusRejected}
	}
	return outcome{code: code, char: char, dist: dist, status: StatusAccepted}
}

// matchCandidates renders and matches the given codepoints. With Jobs > 1
// the codes are partitioned over workers; each worker owns a rasterizing
// session of its own, since faces buffer rendering state, and writes into
// a disjoint region of the result slice. The corpus behind the matcher is
// read-only and shared.
func (s *Solver) matchCandidates(matcher *match.Matcher, codes []rune) ([]outcome, error) {
	results := make([]outcome, len(codes))
	jobs := s.cfg.Jobs
	if jobs > len(codes) {
		jobs = len(codes)
	}
	if jobs <= 1 {
		tc, err := s.obf.PrepareCase(s.cfg.FontSize)
		if err != nil {
			return nil, err
		}
		defer tc.Close()
		rz := glyph.NewRasterizer(tc)
		for i, code := range codes {
			results[i] = matchOne(rz, matcher, code)
		}
		return results, nil
	}
	var wg sync.WaitGroup
	errs := make([]error, jobs)
	chunk := (len(codes) + jobs - 1) / jobs
	for w := 0; w < jobs; w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > len(codes) {
			hi = len(codes)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			tc, err := s.obf.PrepareCase(s.cfg.FontSize)
			if err != nil {
				errs[w] = err
				return
			}
			defer tc.Close()
			rz := glyph.NewRasterizer(tc)
			for i := lo; i < hi; i++ {
				results[i] = matchOne(rz, matcher, codes[i])
			}
		}(w, lo, hi)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
