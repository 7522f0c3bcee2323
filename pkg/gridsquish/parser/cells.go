// Package parser reads and writes sheet content with excelize.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/formula"
	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

// ReadSheet extracts the raw text of every populated cell of a sheet.
// Formula cells yield "=" followed by the formula, other cells their raw
// stored value.
func ReadSheet(f *excelize.File, sheetName string) (models.Sheet, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	sheet := make(models.Sheet)
	maxCol, maxRow := 0, len(rows)
	for rowIdx, row := range rows {
		maxCol = max(maxCol, len(row))
		for colIdx, cellValue := range row {
			if cellValue == "" {
				continue
			}
			sheet[models.Position{Col: colIdx, Row: rowIdx}] = cellValue
		}
	}

	// Formula cells without a cached value are not reported by GetRows.
	if dimCol, dimRow, ok := dimension(f, sheetName); ok {
		maxCol = max(maxCol, dimCol)
		maxRow = max(maxRow, dimRow)
	}
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			cellName, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return nil, err
			}
			text, err := f.GetCellFormula(sheetName, cellName)
			if err != nil {
				return nil, err
			}
			if text != "" {
				sheet[models.Position{Col: col - 1, Row: row - 1}] = formula.Prefix + strings.TrimPrefix(text, formula.Prefix)
			}
		}
	}

	return sheet, nil
}

// dimension returns the bottom-right corner of the sheet's used range.
func dimension(f *excelize.File, sheetName string) (int, int, bool) {
	ref, err := f.GetSheetDimension(sheetName)
	if err != nil || ref == "" {
		return 0, 0, false
	}
	parts := strings.Split(strings.ReplaceAll(ref, "$", ""), ":")
	col, row, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return 0, 0, false
	}
	return col, row, true
}

// WriteSheet stores sheet into an existing worksheet. Texts starting with
// "=" become formulas; numbers that print back to the same text are
// stored as numbers, everything else as strings.
func WriteSheet(f *excelize.File, sheetName string, sheet models.Sheet) error {
	maxCol, maxRow := 1, 1
	for _, pos := range sheet.Positions() {
		cellName := pos.String()
		text := sheet[pos]

		var err error
		if strings.HasPrefix(text, formula.Prefix) {
			err = f.SetCellFormula(sheetName, cellName, strings.TrimPrefix(text, formula.Prefix))
		} else {
			err = f.SetCellValue(sheetName, cellName, parseValue(text))
		}
		if err != nil {
			return fmt.Errorf("cell %s: %w", cellName, err)
		}
		maxCol = max(maxCol, pos.Col+1)
		maxRow = max(maxRow, pos.Row+1)
	}

	end, err := excelize.CoordinatesToCellName(maxCol, maxRow)
	if err != nil {
		return err
	}
	return f.SetSheetDimension(sheetName, "A1:"+end)
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
// A number is only returned when it formats back to exactly s.
func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	// Return as string
	return s
}
