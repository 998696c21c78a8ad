// Package ingest reads spend datasets from tabular sources.
//
// Every source shares the same positional layout: bank, year and month in the
// first three columns, the platform in column 5 and the spend in column 7.
// The first row is a header. Rows that fail validation are not dropped
// silently and not allowed to poison totals: they are returned as RowError
// values next to the accepted records.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"socialspend/internal/core"
)

// Column positions of the dataset layout.
const (
	ColBank     = 0
	ColYear     = 1
	ColMonth    = 2
	ColPlatform = 5
	ColSpend    = 7

	minColumns = ColSpend + 1
)

var (
	ErrTooFewColumns = errors.New("too few columns")
	ErrInvalidNumber = errors.New("not a number")
	ErrRejectedRows  = errors.New("rows rejected")
	ErrSpendOverflow = errors.New("spend out of range")
)

var maxSpend = decimal.NewFromInt(math.MaxInt64)

// RowError describes one quarantined row.
type RowError struct {
	Line   int    // 1-based, header included
	Column string // "bank", "year", ... or "" for row-level problems
	Value  string
	Err    error
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result holds the accepted records in source order and the rejected rows.
type Result struct {
	Records  []core.SpendRecord
	Rejected []RowError
}

// Check returns an error wrapping ErrRejectedRows and every row error when
// any row was rejected.
func (r Result) Check() error {
	if len(r.Rejected) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Rejected)+1)
	errs = append(errs, fmt.Errorf("%w: %d", ErrRejectedRows, len(r.Rejected)))
	for _, re := range r.Rejected {
		errs = append(errs, re)
	}
	return errors.Join(errs...)
}

func (r *Result) add(line int, fields []string) {
	rec, rowErr := ParseRow(line, fields)
	if rowErr != nil {
		r.Rejected = append(r.Rejected, *rowErr)
		return
	}
	r.Records = append(r.Records, rec)
}

// ParseRow turns one data row into a validated record.
func ParseRow(line int, fields []string) (core.SpendRecord, *RowError) {
	if len(fields) < minColumns {
		return core.SpendRecord{}, &RowError{
			Line: line,
			Err:  fmt.Errorf("%w: got %d, want at least %d", ErrTooFewColumns, len(fields), minColumns),
		}
	}
	get := func(i int) string { return strings.TrimSpace(fields[i]) }

	year, err := strconv.Atoi(get(ColYear))
	if err != nil {
		return core.SpendRecord{}, &RowError{Line: line, Column: "year", Value: get(ColYear), Err: ErrInvalidNumber}
	}
	spend, err := ParseSpend(get(ColSpend))
	if err != nil {
		return core.SpendRecord{}, &RowError{Line: line, Column: "spend", Value: get(ColSpend), Err: err}
	}

	rec := core.SpendRecord{
		Bank:     get(ColBank),
		Year:     year,
		Month:    get(ColMonth),
		Platform: get(ColPlatform),
		Spend:    spend,
	}
	if err := rec.Validate(); err != nil {
		col := columnFor(err)
		return core.SpendRecord{}, &RowError{Line: line, Column: col, Value: valueFor(col, fields), Err: err}
	}
	return rec, nil
}

// ParseSpend accepts whole or fractional amounts ("1200", "1200.50") and
// rounds to whole currency units.
func ParseSpend(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	if d.IsNegative() {
		return 0, core.ErrNegativeSpend
	}
	d = d.Round(0)
	if d.GreaterThan(maxSpend) {
		return 0, ErrSpendOverflow
	}
	return d.IntPart(), nil
}

func columnFor(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyBank):
		return "bank"
	case errors.Is(err, core.ErrInvalidYear):
		return "year"
	case errors.Is(err, core.ErrUnknownMonth), errors.Is(err, core.ErrInvalidMonthYear):
		return "month"
	case errors.Is(err, core.ErrEmptyPlatform):
		return "platform"
	case errors.Is(err, core.ErrNegativeSpend):
		return "spend"
	default:
		return ""
	}
}

func valueFor(column string, fields []string) string {
	idx := map[string]int{
		"bank":     ColBank,
		"year":     ColYear,
		"month":    ColMonth,
		"platform": ColPlatform,
		"spend":    ColSpend,
	}
	i, ok := idx[column]
	if !ok {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
