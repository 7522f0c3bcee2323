package gridsquish

import (
	"encoding/json"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

// Stats summarizes how well a sheet compacted. RawBytes is the JSON size of
// the cell map, EncodedBytes the JSON size of the compact form.
type Stats struct {
	Cells          int `json:"cells"`
	Entries        int `json:"entries"`
	LiteralEntries int `json:"literal_entries"`
	DeltaEntries   int `json:"delta_entries"`
	RawBytes       int `json:"raw_bytes"`
	EncodedBytes   int `json:"encoded_bytes"`
}

// ComputeStats measures sheet against its compact form c.
func ComputeStats(sheet models.Sheet, c models.Compact) (Stats, error) {
	raw, err := json.Marshal(sheet)
	if err != nil {
		return Stats{}, err
	}
	encoded, err := json.Marshal(c)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		Cells:        len(sheet.Positions()),
		Entries:      len(c),
		RawBytes:     len(raw),
		EncodedBytes: len(encoded),
	}
	for _, e := range c {
		switch e.Payload.(type) {
		case models.LiteralPayload:
			s.LiteralEntries++
		case models.DeltaPayload:
			s.DeltaEntries++
		}
	}
	return s, nil
}

// Ratio returns EncodedBytes / RawBytes, or 1 for an empty sheet.
func (s Stats) Ratio() float64 {
	if s.RawBytes == 0 {
		return 1
	}
	return float64(s.EncodedBytes) / float64(s.RawBytes)
}

// Add accumulates o into s.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Cells:          s.Cells + o.Cells,
		Entries:        s.Entries + o.Entries,
		LiteralEntries: s.LiteralEntries + o.LiteralEntries,
		DeltaEntries:   s.DeltaEntries + o.DeltaEntries,
		RawBytes:       s.RawBytes + o.RawBytes,
		EncodedBytes:   s.EncodedBytes + o.EncodedBytes,
	}
}
