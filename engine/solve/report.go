package solve

import (
	"fmt"
	"io"
	"sort"

	"github.com/bytedance/sonic/encoder"
	"github.com/npillmayer/deglyph/core"
)

// Outcome classes for report entries.
const (
	StatusShared   = "shared"   // mapped through a shared glyph, no rasterization
	StatusAccepted = "accepted" // best match passed the distance cutoff
	StatusRejected = "rejected" // best match failed the distance cutoff
	StatusAbsent   = "absent"   // codepoint did not rasterize to any ink
)

// ReportEntry documents the outcome for one private-use codepoint.
// Distance is the best match distance, or -1 where none was computed.
type ReportEntry struct {
	Code     string  `json:"code"`
	Char     string  `json:"char,omitempty"`
	Distance float64 `json:"distance"`
	Status   string  `json:"status"`

	code rune // sort key
}

// Report documents one table-building run: the effective configuration and
// the per-codepoint outcomes. Entries are in ascending codepoint order.
type Report struct {
	Font       string        `json:"font"`
	Reference  string        `json:"reference,omitempty"`
	Mode       string        `json:"mode"`
	FontSize   float64       `json:"fontSize"`
	Threshold  float64       `json:"threshold"`
	Candidates int           `json:"candidates"`
	CorpusSize int           `json:"corpusSize"`
	Shared     int           `json:"shared"`
	Accepted   int           `json:"accepted"`
	Rejected   int           `json:"rejected"`
	Absent     int           `json:"absent"`
	Entries    []ReportEntry `json:"entries"`
}

func (rep *Report) add(code rune, char rune, dist float64, status string) {
	entry := ReportEntry{
		Code:     fmt.Sprintf("0x%04x", code),
		Distance: dist,
		Status:   status,
		code:     code,
	}
	if char != 0 {
		entry.Char = string(char)
	}
	rep.Entries = append(rep.Entries, entry)
	switch status {
	case StatusShared:
		rep.Shared++
	case StatusAccepted:
		rep.Accepted++
	case StatusRejected:
		rep.Rejected++
	case StatusAbsent:
		rep.Absent++
	}
}

func (rep *Report) sortEntries() {
	sort.Slice(rep.Entries, func(i, j int) bool {
		return rep.Entries[i].code < rep.Entries[j].code
	})
}

// WriteJSON streams the report as JSON.
func (rep *Report) WriteJSON(w io.Writer) error {
	if err := encoder.NewStreamEncoder(w).Encode(rep); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot serialize build report")
	}
	return nil
}
