package solve

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/deglyph/core"
)

// Table maps obfuscated codepoints to the characters they render as.
type Table struct {
	entries map[rune]rune
}

// NewTable creates an empty mapping table.
func NewTable() *Table {
	return &Table{entries: make(map[rune]rune)}
}

// Set adds or overwrites the mapping for an obfuscated codepoint.
func (t *Table) Set(code, char rune) {
	t.entries[code] = char
}

// Get returns the character an obfuscated codepoint maps to.
func (t *Table) Get(code rune) (rune, bool) {
	char, ok := t.entries[code]
	return char, ok
}

// Len returns the number of mappings in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Codes returns the mapped codepoints in ascending order.
func (t *Table) Codes() []rune {
	codes := make([]rune, 0, len(t.entries))
	for code := range t.entries {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Mapping returns the table as a plain map, for handing to a text
// substituter. The map is a copy, modifying it does not affect the table.
func (t *Table) Mapping() map[rune]rune {
	m := make(map[rune]rune, len(t.entries))
	for code, char := range t.entries {
		m[code] = char
	}
	return m
}

// Write serializes the table in its line-oriented file form:
//
//    0xe4c2:的
//
// one mapping per line, lowercase hex, codepoints in ascending order.
// Tables with equal contents serialize to identical bytes.
func (t *Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, code := range t.Codes() {
		if _, err := fmt.Fprintf(bw, "0x%04x:%c\n", code, t.entries[code]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTable parses the file form produced by Write. Lines not starting with
// "0x" are skipped, as are lines without a valid character after the first
// colon. If more than one character follows the colon, the first one wins.
func ReadTable(r io.Reader) (*Table, error) {
	table := NewTable()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if !strings.HasPrefix(line, "0x") {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		code, err := strconv.ParseInt(line[2:colon], 16, 32)
		if err != nil {
			tracer().Debugf("mapping table: skipping malformed line %q", line)
			continue
		}
		char, size := utf8.DecodeRuneInString(line[colon+1:])
		if size == 0 || (char == utf8.RuneError && size == 1) {
			continue // nothing to map to
		}
		table.Set(rune(code), char)
	}
	if err := scanner.Err(); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot read mapping table")
	}
	return table, nil
}

// SaveFile writes the table to a file in its line-oriented file form.
func (t *Table) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create mapping table file")
	}
	defer f.Close()
	return t.Write(f)
}

// LoadTableFile reads a mapping table from a file.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot load mapping table: %s", path)
	}
	defer f.Close()
	return ReadTable(f)
}
