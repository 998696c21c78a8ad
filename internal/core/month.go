package core

import (
	"fmt"
	"strconv"
	"strings"
)

// MonthNames lists the canonical month names in calendar order.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// UnknownMonthOrdinal sorts months that failed to parse after December.
const UnknownMonthOrdinal = 12

// MonthRef is the parsed form of a record's month field.
type MonthRef struct {
	Index int // 0 = January
	Year  int // 0 when the field carried no year
}

// Name returns the canonical month name.
func (m MonthRef) Name() string {
	return MonthNames[m.Index]
}

// ParseMonth accepts "April" or "April 2023". Only the first space-delimited
// token selects the month and it must match a canonical name exactly.
func ParseMonth(s string) (MonthRef, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return MonthRef{}, fmt.Errorf("%w: %q", ErrUnknownMonth, s)
	}
	idx, ok := MonthIndex(fields[0])
	if !ok {
		return MonthRef{}, fmt.Errorf("%w: %q", ErrUnknownMonth, s)
	}
	ref := MonthRef{Index: idx}
	switch len(fields) {
	case 1:
	case 2:
		y, err := strconv.Atoi(fields[1])
		if err != nil || len(fields[1]) != 4 {
			return MonthRef{}, fmt.Errorf("%w: %q", ErrInvalidMonthYear, s)
		}
		ref.Year = y
	default:
		return MonthRef{}, fmt.Errorf("%w: %q", ErrInvalidMonthYear, s)
	}
	return ref, nil
}

// MonthIndex resolves the first token of s to a 0-based month index.
func MonthIndex(s string) (int, bool) {
	tok := monthToken(s)
	for i, name := range MonthNames {
		if tok == name {
			return i, true
		}
	}
	return -1, false
}

// MonthOrdinal is MonthIndex for sorting: unknown months go last.
func MonthOrdinal(s string) int {
	if i, ok := MonthIndex(s); ok {
		return i
	}
	return UnknownMonthOrdinal
}

func monthToken(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
