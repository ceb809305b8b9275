package solve

import (
	"encoding/binary"
	"sort"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// testFont clones the packaged Go Regular font with a rebuilt character map,
// giving tests full control over glyph assignments.
//
// mapped assigns a codepoint to the glyph of a donor character, so both
// render as the same glyph index. cloned assigns a codepoint to a fresh copy
// of the donor character's outline: the clone renders identically to the
// donor character but under a glyph index of its own, like the duplicated
// outlines in permuted fonts found in the wild.
func testFont(t *testing.T, mapped, cloned map[rune]rune) []byte {
	t.Helper()
	donor, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("cannot parse donor font: %v", err)
	}
	var buf sfnt.Buffer
	gidOf := func(char rune) uint32 {
		gid, err := donor.GlyphIndex(&buf, char)
		if err != nil || gid == 0 {
			t.Fatalf("donor font has no glyph for %#U", char)
		}
		return uint32(gid)
	}

	data := append([]byte(nil), goregular.TTF...)
	entries := make(map[rune]uint32, len(mapped)+len(cloned))
	for code, char := range mapped {
		entries[code] = gidOf(char)
	}
	if len(cloned) > 0 {
		data = cloneGlyphs(t, data, cloned, gidOf, entries)
	}
	data = appendTable(t, data, "cmap", buildCmapFormat12(entries))

	if _, err := sfnt.Parse(data); err != nil {
		t.Fatalf("rebuilt font does not parse: %v", err)
	}
	return data
}

// cloneGlyphs appends a copy of the donor outline for every entry of cloned
// to the glyph data, extends the offset and metrics tables accordingly, and
// records the new glyph indices in entries.
func cloneGlyphs(t *testing.T, data []byte, cloned map[rune]rune, gidOf func(rune) uint32, entries map[rune]uint32) []byte {
	t.Helper()
	headOff, _ := tableSpan(t, data, "head")
	locFormat := binary.BigEndian.Uint16(data[headOff+50:])
	maxpOff, _ := tableSpan(t, data, "maxp")
	numGlyphs := int(binary.BigEndian.Uint16(data[maxpOff+4:]))
	hheaOff, _ := tableSpan(t, data, "hhea")
	numHMetrics := int(binary.BigEndian.Uint16(data[hheaOff+34:]))
	locaOff, locaLen := tableSpan(t, data, "loca")
	glyfOff, glyfLen := tableSpan(t, data, "glyf")
	hmtxOff, _ := tableSpan(t, data, "hmtx")

	loca := make([]uint32, numGlyphs+1)
	if locFormat == 0 {
		if int(locaLen) < 2*(numGlyphs+1) {
			t.Fatal("donor loca table too short")
		}
		for i := range loca {
			loca[i] = 2 * uint32(binary.BigEndian.Uint16(data[int(locaOff)+2*i:]))
		}
	} else {
		if int(locaLen) < 4*(numGlyphs+1) {
			t.Fatal("donor loca table too short")
		}
		for i := range loca {
			loca[i] = binary.BigEndian.Uint32(data[int(locaOff)+4*i:])
		}
	}
	type hmetric struct{ adv, lsb uint16 }
	metrics := make([]hmetric, numGlyphs)
	for i := range metrics {
		if i < numHMetrics {
			metrics[i].adv = binary.BigEndian.Uint16(data[int(hmtxOff)+4*i:])
			metrics[i].lsb = binary.BigEndian.Uint16(data[int(hmtxOff)+4*i+2:])
		} else {
			metrics[i].adv = metrics[numHMetrics-1].adv
			metrics[i].lsb = binary.BigEndian.Uint16(data[int(hmtxOff)+4*numHMetrics+2*(i-numHMetrics):])
		}
	}

	glyf := append([]byte(nil), data[glyfOff:glyfOff+glyfLen]...)
	for _, code := range sortedRunes(cloned) {
		src := gidOf(cloned[code])
		start, end := loca[src], loca[src+1]
		entries[code] = uint32(len(loca) - 1)
		glyf = append(glyf, glyf[start:end]...)
		if len(glyf)%2 != 0 {
			glyf = append(glyf, 0)
		}
		loca = append(loca, uint32(len(glyf)))
		metrics = append(metrics, metrics[src])
	}
	newNumGlyphs := len(loca) - 1
	if locFormat == 0 && len(glyf) > 2*0xffff {
		t.Fatal("glyph data exceeds the short offset format")
	}

	locaBytes := make([]byte, 0, 4*len(loca))
	for _, off := range loca {
		if locFormat == 0 {
			locaBytes = binary.BigEndian.AppendUint16(locaBytes, uint16(off/2))
		} else {
			locaBytes = binary.BigEndian.AppendUint32(locaBytes, off)
		}
	}
	hmtxBytes := make([]byte, 0, 4*len(metrics))
	for _, m := range metrics {
		hmtxBytes = binary.BigEndian.AppendUint16(hmtxBytes, m.adv)
		hmtxBytes = binary.BigEndian.AppendUint16(hmtxBytes, m.lsb)
	}
	binary.BigEndian.PutUint16(data[maxpOff+4:], uint16(newNumGlyphs))
	binary.BigEndian.PutUint16(data[hheaOff+34:], uint16(newNumGlyphs))
	data = appendTable(t, data, "glyf", glyf)
	data = appendTable(t, data, "loca", locaBytes)
	data = appendTable(t, data, "hmtx", hmtxBytes)
	return data
}

// buildCmapFormat12 serializes a character map with a single format-12
// subtable holding one group per codepoint.
func buildCmapFormat12(entries map[rune]uint32) []byte {
	codes := make([]rune, 0, len(entries))
	for code := range entries {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	cmap := make([]byte, 0, 28+12*len(codes))
	cmap = binary.BigEndian.AppendUint16(cmap, 0)  // table version
	cmap = binary.BigEndian.AppendUint16(cmap, 1)  // one encoding record
	cmap = binary.BigEndian.AppendUint16(cmap, 3)  // platform: Windows
	cmap = binary.BigEndian.AppendUint16(cmap, 10) // encoding: UCS-4
	cmap = binary.BigEndian.AppendUint32(cmap, 12) // subtable offset

	cmap = binary.BigEndian.AppendUint16(cmap, 12) // format
	cmap = binary.BigEndian.AppendUint16(cmap, 0)  // reserved
	cmap = binary.BigEndian.AppendUint32(cmap, uint32(16+12*len(codes)))
	cmap = binary.BigEndian.AppendUint32(cmap, 0) // language
	cmap = binary.BigEndian.AppendUint32(cmap, uint32(len(codes)))
	for _, code := range codes {
		cmap = binary.BigEndian.AppendUint32(cmap, uint32(code))
		cmap = binary.BigEndian.AppendUint32(cmap, uint32(code))
		cmap = binary.BigEndian.AppendUint32(cmap, entries[code])
	}
	return cmap
}

// tableSpan returns the offset and length of a table in the font file.
func tableSpan(t *testing.T, data []byte, tag string) (uint32, uint32) {
	t.Helper()
	numTables := int(binary.BigEndian.Uint16(data[4:6]))
	for i := 0; i < numTables; i++ {
		rec := 12 + 16*i
		if string(data[rec:rec+4]) == tag {
			return binary.BigEndian.Uint32(data[rec+8:]), binary.BigEndian.Uint32(data[rec+12:])
		}
	}
	t.Fatalf("donor font has no %s table", tag)
	return 0, 0
}

// appendTable appends table data at the end of the font file and redirects
// the directory record of tag to it. The previous table bytes stay behind
// as dead weight; table checksums go stale, which the parsers tolerate.
func appendTable(t *testing.T, data []byte, tag string, table []byte) []byte {
	t.Helper()
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	off := uint32(len(data))
	data = append(data, table...)
	numTables := int(binary.BigEndian.Uint16(data[4:6]))
	for i := 0; i < numTables; i++ {
		rec := 12 + 16*i
		if string(data[rec:rec+4]) == tag {
			binary.BigEndian.PutUint32(data[rec+8:], off)
			binary.BigEndian.PutUint32(data[rec+12:], uint32(len(table)))
			return data
		}
	}
	t.Fatalf("donor font has no %s table", tag)
	return nil
}

func sortedRunes(m map[rune]rune) []rune {
	runes := make([]rune, 0, len(m))
	for r := range m {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes
}
