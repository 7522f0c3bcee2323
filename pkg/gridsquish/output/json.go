// Package output serializes codec results.
package output

import (
	"encoding/json"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

// ToJSON serializes v, indenting with two spaces when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// SnapshotToJSON serializes a workbook snapshot.
func SnapshotToJSON(snap *models.Snapshot, pretty bool) ([]byte, error) {
	return ToJSON(snap, pretty)
}

// CompactToJSON serializes the compact form of one sheet.
func CompactToJSON(c models.Compact, pretty bool) ([]byte, error) {
	return ToJSON(c, pretty)
}
