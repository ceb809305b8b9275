package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/npillmayer/deglyph/core"
	"github.com/npillmayer/deglyph/core/font"
	"github.com/npillmayer/deglyph/core/locate/resources"
	"github.com/npillmayer/deglyph/engine/solve"
	"github.com/npillmayer/deglyph/engine/subst"
	"github.com/npillmayer/deglyph/input/payload"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'deglyph.solve'
func tracer() tracing.Trace {
	return tracing.Select("deglyph.solve")
}

// probe character for selecting a face from a reference font collection
const cjkProbe = '中'

func main() {
	initDisplay()

	// command line flags
	fontname := flag.String("font", "", "Obfuscated font to solve (path, URL or installed name)")
	refname := flag.String("ref", "", "Reference typeface (path, URL or installed name)")
	tablepath := flag.String("table", "mapping.txt", "Mapping table file")
	threshold := flag.Float64("threshold", solve.DefaultThreshold, "Acceptance cutoff for match distances")
	size := flag.Float64("size", solve.DefaultFontSize, "Rendering size in pixels per em")
	jobs := flag.Int("jobs", 1, "Parallel matching workers")
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":         "go",
		"trace.deglyph.fonts":     *tlevel,
		"trace.deglyph.resources": *tlevel,
		"trace.deglyph.glyphs":    *tlevel,
		"trace.deglyph.solve":     *tlevel,
		"trace.deglyph.subst":     *tlevel,
		"trace.deglyph.payload":   *tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	pterm.Info.Println("Welcome to the deglyph CLI")
	session := &Session{
		tablePath: *tablepath,
		cfg: solve.Config{
			FontSize:  *size,
			Threshold: *threshold,
			Jobs:      *jobs,
		},
	}
	if *fontname != "" {
		if err := session.loadFont(*fontname); err != nil {
			tracer().Errorf(err.Error())
			os.Exit(4)
		}
	}
	if *refname != "" {
		if err := session.loadReference(*refname); err != nil {
			tracer().Errorf(err.Error())
			os.Exit(4)
		}
	}
	//
	// one-shot command, if given
	if cmd := flag.Arg(0); cmd != "" {
		if err := session.oneShot(cmd, flag.Args()[1:]); err != nil {
			tracer().Errorf(err.Error())
			core.UserError(err)
			os.Exit(5)
		}
		return
	}
	//
	// set up REPL
	repl, err := readline.New("solve > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	session.repl = repl
	pterm.Info.Println("Quit with <ctrl>D")
	session.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Session is our interpreter object. It keeps the loaded fonts, the current
// mapping table and the report of the last solver run.
type Session struct {
	repl      *readline.Instance
	obf       *font.ScalableFont
	ref       *font.ScalableFont
	cfg       solve.Config
	table     *solve.Table
	report    *solve.Report
	tablePath string
}

// REPL starts interactive mode.
func (s *Session) REPL() {
	for {
		line, err := s.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := s.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			pterm.Error.Println(core.UserMessage(err))
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Command struct {
	code int
	args []string
}

const (
	QUIT int = iota
	HELP
	SOLVE
	DECRYPT
	ANALYZE
	TABLE
	REPORT
	FONT
	REF
)

func parseCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	command := &Command{args: fields[1:]}
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		command.code = QUIT
	case "solve":
		command.code = SOLVE
	case "decrypt":
		command.code = DECRYPT
	case "analyze":
		command.code = ANALYZE
	case "table":
		command.code = TABLE
	case "report":
		command.code = REPORT
	case "font":
		command.code = FONT
	case "ref", "reference":
		command.code = REF
	default:
		command.code = HELP
	}
	return command, nil
}

func (s *Session) execute(cmd *Command) (error, bool) {
	switch cmd.code {
	case QUIT:
		return nil, true
	case HELP:
		help()
	case FONT:
		if len(cmd.args) == 0 {
			return core.Error(core.EINVALID, "font needs a path, URL or installed name"), false
		}
		return s.loadFont(cmd.args[0]), false
	case REF:
		if len(cmd.args) == 0 {
			return core.Error(core.EINVALID, "ref needs a path, URL or installed name"), false
		}
		return s.loadReference(cmd.args[0]), false
	case SOLVE:
		return s.solve(), false
	case DECRYPT:
		if len(cmd.args) == 0 {
			return core.Error(core.EINVALID, "decrypt needs a file argument"), false
		}
		return s.decrypt(cmd.args[0]), false
	case ANALYZE:
		return s.analyze(), false
	case TABLE:
		if len(cmd.args) == 0 {
			pterm.Printfln("table file: %s", s.tablePath)
			return nil, false
		}
		table, err := solve.LoadTableFile(cmd.args[0])
		if err != nil {
			return err, false
		}
		s.table = table
		s.tablePath = cmd.args[0]
		pterm.Printfln("mapping table with %d entries", table.Len())
	case REPORT:
		if len(cmd.args) == 0 {
			return core.Error(core.EINVALID, "report needs a file argument"), false
		}
		return s.writeReport(cmd.args[0]), false
	}
	return nil, false
}

func (s *Session) oneShot(cmd string, args []string) error {
	switch strings.ToLower(cmd) {
	case "solve":
		if err := s.solve(); err != nil {
			return err
		}
		if len(args) > 0 {
			return s.writeReport(args[0])
		}
		return nil
	case "decrypt":
		if len(args) == 0 {
			return core.Error(core.EINVALID, "decrypt needs a file argument")
		}
		return s.decrypt(args[0])
	case "analyze":
		return s.analyze()
	}
	return core.Error(core.EINVALID, "unknown command %q", cmd)
}

func (s *Session) loadFont(spec string) error {
	f, err := resources.ResolveFont(spec, 0).Font()
	if err != nil {
		return err
	}
	if f.Fontname == "" {
		f.Fontname = spec
	}
	s.obf = f
	pterm.Printfln("font: %s", f.Fontname)
	return nil
}

func (s *Session) loadReference(spec string) error {
	f, err := resources.ResolveFont(spec, cjkProbe).Font()
	if err != nil {
		return err
	}
	if f.Fontname == "" {
		f.Fontname = spec
	}
	s.ref = f
	pterm.Printfln("reference: %s", f.Fontname)
	return nil
}

func (s *Session) solve() error {
	if s.obf == nil {
		return core.Error(core.EMISSING, "no font loaded, use -font or the font command")
	}
	solver := solve.NewSolver(s.obf, s.ref, s.cfg)
	table, err := solver.BuildTable()
	if err != nil {
		return err
	}
	s.table = table
	s.report = solver.Report()
	rep := s.report
	pterm.Printfln("%d candidates: %d shared, %d matched, %d rejected, %d absent",
		rep.Candidates, rep.Shared, rep.Accepted, rep.Rejected, rep.Absent)
	if err := table.SaveFile(s.tablePath); err != nil {
		return err
	}
	pterm.Info.Println("mapping table written to " + s.tablePath)
	return nil
}

// decrypt rewrites the obfuscated text of a file with the current mapping
// table. HTML input is treated as a reader page and run through payload
// extraction first; anything else is taken as raw obfuscated text.
func (s *Session) decrypt(file string) error {
	if s.table == nil {
		table, err := solve.LoadTableFile(s.tablePath)
		if err != nil {
			return err
		}
		s.table = table
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot read %s", file)
	}
	text := string(raw)
	switch strings.ToLower(filepath.Ext(file)) {
	case ".html", ".htm":
		doc, err := payload.Parse(bytes.NewReader(raw))
		if err != nil {
			return err
		}
		p := doc.Payload()
		if p.Content == "" {
			return core.Error(core.EINVALID, "document %s carries no text payload", file)
		}
		text = p.Content
		if faces := doc.FontFaces(); len(faces) > 0 {
			tracer().Infof("document declares obfuscated font %s", faces[0])
		}
	}
	plain := subst.StripMarkup(subst.NewSubstituter(s.table.Mapping()).Apply(text))
	out := strings.TrimSuffix(file, filepath.Ext(file)) + ".txt"
	if out == file {
		out += ".out"
	}
	if err := os.WriteFile(out, []byte(plain+"\n"), 0644); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot write %s", out)
	}
	pterm.Printfln("decoded %d scalars to %s", utf8.RuneCountInString(plain), out)
	return nil
}

func (s *Session) analyze() error {
	if s.obf == nil {
		return core.Error(core.EMISSING, "no font loaded, use -font or the font command")
	}
	entries := solve.AnalyzeCmap(s.obf)
	pua := 0
	for _, e := range entries {
		if solve.DefaultPUARange.Contains(e.Code) {
			pua++
		}
	}
	pterm.Printfln("cmap of %s carries %d codepoints, %d in the private-use area",
		s.obf.Fontname, len(entries), pua)
	shown := 0
	for _, e := range entries {
		if !solve.DefaultPUARange.Contains(e.Code) {
			continue
		}
		pterm.Printfln("  0x%04x -> glyph #%d", e.Code, e.Glyph)
		if shown++; shown >= 8 {
			pterm.Printfln("  ... and %d more", pua-shown)
			break
		}
	}
	return nil
}

func (s *Session) writeReport(path string) error {
	if s.report == nil {
		return core.Error(core.EMISSING, "nothing to report, run solve first")
	}
	f, err := os.Create(path)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create %s", path)
	}
	defer f.Close()
	if err := s.report.WriteJSON(f); err != nil {
		return err
	}
	pterm.Info.Println("build report written to " + path)
	return nil
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	font <spec>      load the obfuscated font (path, URL or installed name)
	ref <spec>       load a reference typeface for external matching
	solve            build the codepoint mapping table and save it
	decrypt <file>   rewrite a text or reader-page file with the table
	analyze          dump private-use cmap entries of the loaded font
	table [<path>]   show or load the mapping table file
	report <path>    write the last solver run as a JSON report
	quit             leave the CLI
	`)
}
