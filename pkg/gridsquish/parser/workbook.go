package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/models"
)

// defaultSheet is the sheet excelize.NewFile creates.
const defaultSheet = "Sheet1"

// ReadWorkbook extracts every sheet of f.
func ReadWorkbook(f *excelize.File) (models.Workbook, error) {
	wb := make(models.Workbook)
	for _, sheetName := range f.GetSheetList() {
		sheet, err := ReadSheet(f, sheetName)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
		}
		wb[sheetName] = sheet
	}
	return wb, nil
}

// OpenWorkbook reads the workbook stored at path.
func OpenWorkbook(path string) (models.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadWorkbook(f)
}

// WriteWorkbook writes wb into f, creating missing sheets.
func WriteWorkbook(f *excelize.File, wb models.Workbook) error {
	for _, sheetName := range wb.SheetNames() {
		index, err := f.GetSheetIndex(sheetName)
		if err != nil {
			return fmt.Errorf("sheet %q: %w", sheetName, err)
		}
		if index == -1 {
			if _, err := f.NewSheet(sheetName); err != nil {
				return fmt.Errorf("sheet %q: %w", sheetName, err)
			}
		}
		if err := WriteSheet(f, sheetName, wb[sheetName]); err != nil {
			return fmt.Errorf("sheet %q: %w", sheetName, err)
		}
	}
	return nil
}

// SaveWorkbook writes wb to a new xlsx file at path. The default sheet of
// a new file is dropped unless wb defines it.
func SaveWorkbook(path string, wb models.Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := WriteWorkbook(f, wb); err != nil {
		return err
	}
	if _, ok := wb[defaultSheet]; !ok && len(wb) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
