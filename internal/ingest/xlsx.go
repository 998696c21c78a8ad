package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses a workbook. An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet string) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Result{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Result{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return FromRows(rows), nil
}

// FromRows parses an in-memory table whose first row is the header. It is
// shared by the spreadsheet sources.
func FromRows(rows [][]string) Result {
	var res Result
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		res.add(i+1, row)
	}
	return res
}
