package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadCSV parses a comma separated dataset. Blank lines are skipped by the
// reader; malformed rows are quarantined and reading continues. The error
// return is reserved for I/O failures.
func ReadCSV(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return readCSV(cr)
}

// readCSV drains cr. The first row read, even a malformed one, is the header.
func readCSV(cr *csv.Reader) (Result, error) {
	cr.ReuseRecord = true

	var res Result
	header := true
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Rejected = append(res.Rejected, RowError{Line: pe.StartLine, Err: pe.Err})
				header = false
				continue
			}
			return res, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if isBlank(fields) {
			continue
		}
		line, _ := cr.FieldPos(0)
		res.add(line, fields)
	}
	return res, nil
}

// ReadFile reads a .csv or .xlsx dataset from disk.
func ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f, "")
	default:
		return Result{}, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
