package solve

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/deglyph/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestTableFileForm(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.solve")
	defer teardown()
	table := NewTable()
	table.Set(0xE4C2, '的')
	table.Set(0xE3E8, '一')
	var buf bytes.Buffer
	if err := table.Write(&buf); err != nil {
		t.Fatal(err)
	}
	want := "0xe3e8:一\n0xe4c2:的\n"
	if buf.String() != want {
		t.Errorf("serialized table = %q, want %q", buf.String(), want)
	}
	back, err := ReadTable(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Len() != 2 {
		t.Fatalf("re-read table has %d entries, want 2", back.Len())
	}
	char, ok := back.Get(0xE4C2)
	if !ok || char != '的' {
		t.Errorf("re-read table maps 0xE4C2 to %#U", char)
	}
}

func TestTableReadTolerance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.solve")
	defer teardown()
	input := "# produced by a table build\n" +
		"0xe000:好\n" +
		"\n" +
		"noise without prefix\n" +
		"0xe001:\n" +
		"0x:x\n" +
		"0xe002:好吧\n"
	table, err := ReadTable(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Fatalf("table has %d entries, want 2", table.Len())
	}
	if char, _ := table.Get(0xE000); char != '好' {
		t.Errorf("0xE000 maps to %#U", char)
	}
	if char, _ := table.Get(0xE002); char != '好' {
		t.Errorf("0xE002 should keep only the first character, maps to %#U", char)
	}
	if _, ok := table.Get(0xE001); ok {
		t.Errorf("a line without a character must be skipped")
	}
}

func TestTableSaveLoad(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.solve")
	defer teardown()
	table := NewTable()
	table.Set(0xE000, '中')
	path := filepath.Join(t.TempDir(), "mapping.txt")
	if err := table.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	back, err := LoadTableFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if char, ok := back.Get(0xE000); !ok || char != '中' {
		t.Errorf("loaded table maps 0xE000 to %#U", char)
	}
	_, err = LoadTableFile(filepath.Join(t.TempDir(), "no-such-table.txt"))
	if core.Code(err) != core.EMISSING {
		t.Errorf("missing table file should yield EMISSING, got %v", err)
	}
}

func TestTableMappingCopies(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "deglyph.solve")
	defer teardown()
	table := NewTable()
	table.Set(0xE000, '的')
	m := table.Mapping()
	m[0xE000] = 'x'
	if char, _ := table.Get(0xE000); char != '的' {
		t.Errorf("modifying the exported map must not affect the table")
	}
}
