// Package analytics turns a list of spend records into the aggregates the
// presentation layer consumes: totals, year-over-year rows, wave tables and
// insight sentences.
//
// Every function is pure. Inputs are never mutated and nothing is cached, so
// callers recompute whenever the dataset or the requested scope changes.
package analytics

import (
	"fmt"
	"math"
	"sort"

	"socialspend/internal/core"
)

// TotalByBankPlatform sums spend per platform for an exact bank and year.
// An unmatched bank or year yields an empty map.
func TotalByBankPlatform(records []core.SpendRecord, bank string, year int) map[string]int64 {
	out := make(map[string]int64)
	for _, r := range records {
		if r.Bank != bank || r.Year != year {
			continue
		}
		out[r.Platform] += r.Spend
	}
	return out
}

// TotalByBankYear sums spend per (bank, year), ordered by first appearance of
// the bank and then by ascending year.
func TotalByBankYear(records []core.SpendRecord) []core.BankYearTotal {
	type key struct {
		bank string
		year int
	}
	sums := make(map[key]int64)
	banks := UniqueBanksInOrder(records)
	for _, r := range records {
		sums[key{r.Bank, r.Year}] += r.Spend
	}
	years := UniqueYears(records)
	out := make([]core.BankYearTotal, 0, len(sums))
	for _, b := range banks {
		for _, y := range years {
			if v, ok := sums[key{b, y}]; ok {
				out = append(out, core.BankYearTotal{Bank: b, Year: y, Amount: v})
			}
		}
	}
	return out
}

// AnnualTotals returns each bank's spend per dataset year, sorted by the
// combined spend of the two most recent years (descending, stable).
func AnnualTotals(records []core.SpendRecord) []core.BankAnnualTotals {
	years := UniqueYears(records)
	idx := make(map[string]int)
	var out []core.BankAnnualTotals
	for _, r := range records {
		i, ok := idx[r.Bank]
		if !ok {
			byYear := make(map[int]int64, len(years))
			for _, y := range years {
				byYear[y] = 0
			}
			out = append(out, core.BankAnnualTotals{Bank: r.Bank, ByYear: byYear})
			i = len(out) - 1
			idx[r.Bank] = i
		}
		out[i].ByYear[r.Year] += r.Spend
		out[i].Total += r.Spend
	}

	recent := years
	if len(recent) > 2 {
		recent = recent[len(recent)-2:]
	}
	recentSum := func(t core.BankAnnualTotals) int64 {
		var s int64
		for _, y := range recent {
			s += t.ByYear[y]
		}
		return s
	}
	sort.SliceStable(out, func(i, j int) bool { return recentSum(out[i]) > recentSum(out[j]) })
	return out
}

// UniqueBanks returns the distinct bank names sorted alphabetically.
func UniqueBanks(records []core.SpendRecord) []string {
	out := UniqueBanksInOrder(records)
	sort.Strings(out)
	return out
}

// UniqueBanksInOrder returns the distinct bank names in first-seen order.
func UniqueBanksInOrder(records []core.SpendRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Bank]; ok {
			continue
		}
		seen[r.Bank] = struct{}{}
		out = append(out, r.Bank)
	}
	return out
}

// UniqueYears returns the distinct years in ascending order.
func UniqueYears(records []core.SpendRecord) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, r := range records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		out = append(out, r.Year)
	}
	sort.Ints(out)
	return out
}

// YearPair is a consecutive pair of dataset years.
type YearPair struct {
	YearA int
	YearB int
}

// YearPairs returns consecutive year pairs, most recent first.
func YearPairs(records []core.SpendRecord) []YearPair {
	years := UniqueYears(records)
	var pairs []YearPair
	for i := len(years) - 1; i > 0; i-- {
		pairs = append(pairs, YearPair{YearA: years[i-1], YearB: years[i]})
	}
	return pairs
}

// FilterYears keeps records whose year is listed.
func FilterYears(records []core.SpendRecord, years ...int) []core.SpendRecord {
	want := make(map[int]bool, len(years))
	for _, y := range years {
		want[y] = true
	}
	return core.RecordSet(records).Filter(func(r core.SpendRecord) bool { return want[r.Year] })
}

// FilterBanks keeps records whose bank is listed. No banks means no filter.
func FilterBanks(records []core.SpendRecord, banks ...string) []core.SpendRecord {
	if len(banks) == 0 {
		return append([]core.SpendRecord(nil), records...)
	}
	want := make(map[string]bool, len(banks))
	for _, b := range banks {
		want[b] = true
	}
	return core.RecordSet(records).Filter(func(r core.SpendRecord) bool { return want[r.Bank] })
}

// MonthsInYear returns the distinct month names present in year, in calendar
// order.
func MonthsInYear(records []core.SpendRecord, year int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if r.Year != year {
			continue
		}
		m := r.MonthName()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sortMonths(out)
	return out
}

// Partial describes the months a partial comparison against yearB covers.
func Partial(records []core.SpendRecord, yearB int) core.PartialInfo {
	months := MonthsInYear(records, yearB)
	info := core.PartialInfo{Year: yearB, Months: months}
	switch len(months) {
	case 0:
	case 1:
		info.TimeRange = months[0]
	default:
		info.TimeRange = months[0] + " - " + months[len(months)-1]
	}
	return info
}

// DateRange renders the span of the dataset as "January 2023 – April 2024".
func DateRange(records []core.SpendRecord) string {
	if len(records) == 0 {
		return "No data available"
	}
	first, last := records[0], records[0]
	for _, r := range records[1:] {
		if periodLess(r, first) {
			first = r
		}
		if periodLess(last, r) {
			last = r
		}
	}
	return fmt.Sprintf("%s %d – %s %d", displayMonth(first.Month), first.Year, displayMonth(last.Month), last.Year)
}

// LatestDate returns the most recent (year, month) in the dataset.
func LatestDate(records []core.SpendRecord) (int, string, bool) {
	if len(records) == 0 {
		return 0, "", false
	}
	latest := records[0]
	for _, r := range records[1:] {
		if periodLess(latest, r) {
			latest = r
		}
	}
	return latest.Year, displayMonth(latest.Month), true
}

// MonthlyMatrix is the month-over-month table of one year: every bank with
// data that year against every month present that year.
func MonthlyMatrix(records []core.SpendRecord, year int) core.MonthlyMatrix {
	m := core.MonthlyMatrix{
		Year:   year,
		Months: MonthsInYear(records, year),
		Data:   make(map[string]map[string]int64),
	}
	for _, r := range records {
		if r.Year != year {
			continue
		}
		row, ok := m.Data[r.Bank]
		if !ok {
			row = make(map[string]int64, len(m.Months))
			for _, month := range m.Months {
				row[month] = 0
			}
			m.Data[r.Bank] = row
			m.Banks = append(m.Banks, r.Bank)
		}
		row[r.MonthName()] += r.Spend
	}
	return m
}

// PlatformShares returns a bank's platform spend for one year with each
// platform's rounded share of the total, largest first.
func PlatformShares(records []core.SpendRecord, bank string, year int) []core.PlatformAmount {
	var scoped []core.SpendRecord
	for _, r := range records {
		if r.Bank == bank && r.Year == year {
			scoped = append(scoped, r)
		}
	}
	return platformAmounts(scoped)
}

// PlatformTrend is month -> platform -> spend for one bank.
type PlatformTrend struct {
	Bank      string
	Year      int
	Months    []string
	Platforms []string
	Data      map[string]map[string]int64
	Range     string
}

// BankPlatformTrend builds a bank's monthly platform breakdown. For the most
// recent dataset year the series starts at the previous December and runs to
// the latest month present; earlier years run January to December.
func BankPlatformTrend(records []core.SpendRecord, bank string, year int) PlatformTrend {
	years := UniqueYears(records)
	current := len(years) > 0 && year == years[len(years)-1]

	t := PlatformTrend{Bank: bank, Year: year, Data: make(map[string]map[string]int64)}
	var scoped []core.SpendRecord
	if current {
		latest := -1
		for _, r := range records {
			if r.Bank != bank {
				continue
			}
			if r.Year == year {
				scoped = append(scoped, r)
				if i, ok := core.MonthIndex(r.Month); ok && i > latest {
					latest = i
				}
			} else if r.Year == year-1 && r.MonthName() == "December" {
				scoped = append(scoped, r)
			}
		}
		if latest < 0 {
			latest = 0
		}
		t.Months = append([]string{"December"}, core.MonthNames[:latest+1]...)
		t.Range = fmt.Sprintf("Dec %d to %s %d", year-1, core.MonthNames[latest], year)
	} else {
		for _, r := range records {
			if r.Bank == bank && r.Year == year {
				scoped = append(scoped, r)
			}
		}
		t.Months = append([]string(nil), core.MonthNames[:]...)
		t.Range = fmt.Sprintf("Jan %d to Dec %d", year, year)
	}

	seen := make(map[string]bool)
	for _, r := range scoped {
		m := r.MonthName()
		if t.Data[m] == nil {
			t.Data[m] = make(map[string]int64)
		}
		t.Data[m][r.Platform] += r.Spend
		if !seen[r.Platform] {
			seen[r.Platform] = true
			t.Platforms = append(t.Platforms, r.Platform)
		}
	}
	return t
}

func platformAmounts(records []core.SpendRecord) []core.PlatformAmount {
	idx := make(map[string]int)
	var out []core.PlatformAmount
	var total int64
	for _, r := range records {
		total += r.Spend
		i, ok := idx[r.Platform]
		if !ok {
			out = append(out, core.PlatformAmount{Platform: r.Platform})
			i = len(out) - 1
			idx[r.Platform] = i
		}
		out[i].Amount += r.Spend
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	if total > 0 {
		for i := range out {
			out[i].Share = int(math.Round(float64(out[i].Amount) / float64(total) * 100))
		}
	}
	return out
}

func periodLess(a, b core.SpendRecord) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return core.MonthOrdinal(a.Month) < core.MonthOrdinal(b.Month)
}

func displayMonth(month string) string {
	if i, ok := core.MonthIndex(month); ok {
		return core.MonthNames[i]
	}
	return month
}

func sortMonths(months []string) {
	sort.SliceStable(months, func(i, j int) bool {
		return core.MonthOrdinal(months[i]) < core.MonthOrdinal(months[j])
	})
}
