package analytics

import (
	"sort"

	"socialspend/internal/core"
)

// YearOverYearRows compares every bank's spend in yearA and yearB, sorted by
// descending percentage change. Banks with equal change keep the order in
// which they first appear in records.
//
// When partial is true both years are restricted to the months present in
// yearB, so a January–April yearB is compared with January–April of yearA.
func YearOverYearRows(records []core.SpendRecord, yearA, yearB int, partial bool) []core.YoYRow {
	rows := yoyRows(records, yearA, yearB, partial)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Change > rows[j].Change })
	return rows
}

// yoyRows returns the unsorted rows in bank encounter order.
func yoyRows(records []core.SpendRecord, yearA, yearB int, partial bool) []core.YoYRow {
	var months map[string]bool
	if partial {
		months = make(map[string]bool)
		for _, r := range records {
			if r.Year == yearB {
				months[r.MonthName()] = true
			}
		}
	}

	idx := make(map[string]int)
	var rows []core.YoYRow
	for _, r := range records {
		if r.Year != yearA && r.Year != yearB {
			continue
		}
		if partial && !months[r.MonthName()] {
			continue
		}
		i, ok := idx[r.Bank]
		if !ok {
			rows = append(rows, core.YoYRow{Bank: r.Bank, YearA: yearA, YearB: yearB})
			i = len(rows) - 1
			idx[r.Bank] = i
		}
		if r.Year == yearA {
			rows[i].SpendA += r.Spend
		} else {
			rows[i].SpendB += r.Spend
		}
	}

	for i := range rows {
		rows[i].Change = core.PercentChange(rows[i].SpendA, rows[i].SpendB)
		rows[i].ChangeRounded = core.RoundPercent(rows[i].Change)
		rows[i].AbsoluteChange = rows[i].SpendB - rows[i].SpendA
	}
	return rows
}
