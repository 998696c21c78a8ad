package core

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// SpendRecord is one row of the paid-social dataset: what a bank spent
	// on a platform in a given month.
	SpendRecord struct {
		Bank     string
		Year     int
		Month    string // "January" or "January 2024"
		Platform string // e.g. "FACEBOOK.COM"
		Spend    int64  // whole currency units
	}

	// RecordSet is an immutable-by-convention slice of spend records.
	RecordSet []SpendRecord
)

var (
	ErrEmptyBank        = errors.New("empty bank")
	ErrEmptyPlatform    = errors.New("empty platform")
	ErrNegativeSpend    = errors.New("negative spend")
	ErrInvalidYear      = errors.New("invalid year")
	ErrUnknownMonth     = errors.New("unknown month")
	ErrInvalidMonthYear = errors.New("invalid month year")
)

func (r SpendRecord) Validate() error {
	if strings.TrimSpace(r.Bank) == "" {
		return ErrEmptyBank
	}
	if r.Year < 1000 || r.Year > 9999 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, r.Year)
	}
	ref, err := ParseMonth(r.Month)
	if err != nil {
		return err
	}
	if ref.Year != 0 && ref.Year != r.Year {
		return fmt.Errorf("%w: month %q does not match year %d", ErrInvalidMonthYear, r.Month, r.Year)
	}
	if strings.TrimSpace(r.Platform) == "" {
		return ErrEmptyPlatform
	}
	if r.Spend < 0 {
		return ErrNegativeSpend
	}
	return nil
}

// MonthName returns the canonical month name of the record, or the first
// token of Month when it is not a known month.
func (r SpendRecord) MonthName() string {
	return monthToken(r.Month)
}

// Total sums spend over the set.
func (rs RecordSet) Total() int64 {
	var total int64
	for _, r := range rs {
		total += r.Spend
	}
	return total
}

// Filter returns the records for which keep returns true, in input order.
func (rs RecordSet) Filter(keep func(SpendRecord) bool) RecordSet {
	out := make(RecordSet, 0, len(rs))
	for _, r := range rs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
