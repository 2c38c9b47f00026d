package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

// SheetName is the only sheet in an exported workbook.
const SheetName = "Data"

// XLSXContentType is the MIME type for workbook downloads.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookFromResult writes headers to row 1 and every tokenized row below
// it. Ragged rows are written as they are.
func WorkbookFromResult(r models.TabularResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	row := 1
	if len(r.Headers) > 0 {
		if err := writeRow(f, row, r.Headers); err != nil {
			return nil, err
		}
		row++
		_ = f.SetRowStyle(SheetName, 1, 1, headerStyle(f))
	}
	for _, cells := range r.Rows {
		if err := writeRow(f, row, cells); err != nil {
			return nil, err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSXFileName swaps the .csv extension of a download name for .xlsx.
func XLSXFileName(csvName string) string {
	return strings.TrimSuffix(csvName, ".csv") + ".xlsx"
}

func writeRow(f *excelize.File, row int, cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	return nil
}

func headerStyle(f *excelize.File) int {
	id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0
	}
	return id
}
