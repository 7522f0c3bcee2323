package gridsquish

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

// SquishWorkbook compacts every sheet of wb independently.
func SquishWorkbook(wb models.Workbook, opts Options) models.Snapshot {
	snap := models.Snapshot{
		Version: models.SnapshotVersion,
		Sheets:  make(map[string]models.Compact, len(wb)),
	}
	for _, name := range wb.SheetNames() {
		opts.logger().Debug("squishing sheet", slog.String("sheet", name))
		snap.Sheets[name] = SquishSheet(wb[name], opts)
	}
	return snap
}

// UnsquishWorkbook restores every sheet of snap. A corrupt sheet is left out
// of the result and reported as a *CorruptDataError naming it; the errors of
// all corrupt sheets are joined. The other sheets are still restored.
func UnsquishWorkbook(snap models.Snapshot, opts Options) (models.Workbook, error) {
	if err := checkVersion(snap.Version); err != nil {
		return nil, err
	}

	wb := make(models.Workbook, len(snap.Sheets))
	var errs []error
	for _, name := range sortedKeys(snap.Sheets) {
		sheet, err := UnsquishSheet(snap.Sheets[name], opts)
		if err != nil {
			errs = append(errs, withSheet(name, err))
			continue
		}
		wb[name] = sheet
	}
	return wb, errors.Join(errs...)
}

// EncodeSnapshot serializes snap as JSON.
func EncodeSnapshot(snap models.Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// DecodeSnapshot parses a snapshot. A sheet whose entries cannot be parsed
// is reported as a *CorruptDataError naming it.
func DecodeSnapshot(data []byte) (models.Snapshot, error) {
	var raw models.RawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := checkVersion(raw.Version); err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{
		Version: raw.Version,
		Sheets:  make(map[string]models.Compact, len(raw.Sheets)),
	}
	for _, name := range sortedKeys(raw.Sheets) {
		var c models.Compact
		if err := json.Unmarshal(raw.Sheets[name], &c); err != nil {
			return models.Snapshot{}, NewCorruptDataError(name, "", err)
		}
		snap.Sheets[name] = c
	}
	return snap, nil
}

func checkVersion(v int) error {
	if v != models.SnapshotVersion {
		return fmt.Errorf("version %d: %w", v, ErrUnsupportedVersion)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
