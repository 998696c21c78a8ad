package analytics

import (
	"sort"

	"socialspend/internal/core"
)

const bridgeMonth = "December"

// WaveTable builds the two-wave comparison anchored on the latest year.
//
// With yearB the latest dataset year and yearA = yearB-1, columns are
// December followed by every month present in yearB in calendar order.
// December is the bridge: DataA takes it from yearA-1 and DataB from yearA.
// All other columns come from yearA (DataA) and yearB (DataB). Every bank in
// the input gets every cell, defaulting to 0. Banks are ordered by their DataB
// total, descending, ties in input order.
//
// The second return value is false when records is empty.
func WaveTable(records []core.SpendRecord) (core.WaveTable, bool) {
	if len(records) == 0 {
		return core.WaveTable{}, false
	}
	years := UniqueYears(records)
	yearB := years[len(years)-1]
	yearA := yearB - 1
	yearAPrev := yearA - 1

	months := []string{bridgeMonth}
	for _, m := range MonthsInYear(records, yearB) {
		if m != bridgeMonth {
			months = append(months, m)
		}
	}
	column := make(map[string]bool, len(months))
	for _, m := range months {
		column[m] = true
	}

	banks := UniqueBanksInOrder(records)
	w := core.WaveTable{
		Months: months,
		YearA:  yearA,
		YearB:  yearB,
		DataA:  make(map[string]map[string]int64, len(banks)),
		DataB:  make(map[string]map[string]int64, len(banks)),
	}
	for _, b := range banks {
		w.DataA[b] = make(map[string]int64, len(months))
		w.DataB[b] = make(map[string]int64, len(months))
		for _, m := range months {
			w.DataA[b][m] = 0
			w.DataB[b][m] = 0
		}
	}

	for _, r := range records {
		m := r.MonthName()
		if !column[m] {
			continue
		}
		if m == bridgeMonth {
			switch r.Year {
			case yearAPrev:
				w.DataA[r.Bank][m] += r.Spend
			case yearA:
				w.DataB[r.Bank][m] += r.Spend
			}
			continue
		}
		switch r.Year {
		case yearA:
			w.DataA[r.Bank][m] += r.Spend
		case yearB:
			w.DataB[r.Bank][m] += r.Spend
		}
	}

	sort.SliceStable(banks, func(i, j int) bool { return w.TotalB(banks[i]) > w.TotalB(banks[j]) })
	w.Banks = banks
	return w, true
}
