// Package core provides the spend dataset domain types and the value
// formatting shared by aggregates and insights.
//
// This file contains currency and percentage formatting.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var wholePrinter = message.NewPrinter(language.English)

// FormatCompact renders a currency amount with a B/M/K suffix.
//
// The scale is chosen on the absolute value; the mantissa keeps up to two
// decimals with trailing zeros and a dangling decimal point removed. The sign
// comes from the division, so negatives render as "$-500K".
//
// Examples:
//
//	FormatCompact(1500000) -> "$1.5M"
//	FormatCompact(1000000) -> "$1M"
//	FormatCompact(999)     -> "$999"
func FormatCompact(value float64) string {
	abs := math.Abs(value)
	switch {
	case abs >= 1e9:
		return "$" + trimDecimal(value/1e9) + "B"
	case abs >= 1e6:
		return "$" + trimDecimal(value/1e6) + "M"
	case abs >= 1e3:
		return "$" + trimDecimal(value/1e3) + "K"
	default:
		return "$" + trimDecimal(value)
	}
}

// FormatWhole renders an amount with thousands separators and no decimals,
// e.g. "$1,234,567".
func FormatWhole(value int64) string {
	return wholePrinter.Sprintf("$%d", value)
}

// FormatPercent renders v rounded half away from zero to an integer, without
// the percent sign.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return decimal.NewFromFloat(v).StringFixed(0)
}

// PercentChange returns (b-a)/a*100, or 0 when a is not positive.
func PercentChange(a, b int64) float64 {
	if a <= 0 {
		return 0
	}
	return float64(b-a) / float64(a) * 100
}

// RoundPercent rounds a percentage to one decimal place.
func RoundPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// SignedPercent renders a one-decimal change as "+12.5%", "-3%" or "0%".
func SignedPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 0 {
		return "+" + s + "%"
	}
	return s + "%"
}

func trimDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
