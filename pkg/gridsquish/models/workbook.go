package models

import "encoding/json"

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is the persisted compact form of a whole workbook.
type Snapshot struct {
	// Version is the snapshot format version.
	Version int `json:"version"`
	// Sheets maps sheet name to its compact form.
	Sheets map[string]Compact `json:"sheets"`
}

// RawSnapshot is a snapshot whose sheets are not decoded yet, so that a
// corrupt sheet can be reported by name.
type RawSnapshot struct {
	Version int                        `json:"version"`
	Sheets  map[string]json.RawMessage `json:"sheets"`
}
