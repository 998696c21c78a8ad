// Package report renders aggregates and insights as plain-text reports for
// the terminal.
package report

import (
	"fmt"
	"strconv"

	"socialspend/internal/analytics"
	"socialspend/internal/core"
)

// Report is a titled list of sections.
type Report struct {
	Title     string
	DateRange string
	Total     string
	Sections  []Section
}

// Section is a table followed by free-text lines. Either may be empty.
type Section struct {
	Title   string
	Columns []string
	Rows    [][]string
	Lines   []string
}

// Full builds the complete report: annual totals, the latest year-over-year
// comparison, the wave table and every insight family.
func Full(records []core.SpendRecord, focusBank string) *Report {
	r := &Report{
		Title:     "Banking Social Spend",
		DateRange: analytics.DateRange(records),
		Total:     core.FormatCompact(float64(core.RecordSet(records).Total())),
	}
	if len(records) == 0 {
		return r
	}

	r.Sections = append(r.Sections, AnnualTotals(records))
	if pairs := analytics.YearPairs(records); len(pairs) > 0 {
		r.Sections = append(r.Sections, YoY(records, pairs[0].YearA, pairs[0].YearB, false))
	}
	if wave, ok := Wave(records); ok {
		r.Sections = append(r.Sections, wave...)
	}
	r.Sections = append(r.Sections, Insights(records, focusBank)...)
	return r
}

// Single wraps one or more sections in a report with the dataset header.
func Single(records []core.SpendRecord, title string, sections ...Section) *Report {
	return &Report{
		Title:     title,
		DateRange: analytics.DateRange(records),
		Total:     core.FormatCompact(float64(core.RecordSet(records).Total())),
		Sections:  sections,
	}
}

// AnnualTotals lists each bank's spend per year.
func AnnualTotals(records []core.SpendRecord) Section {
	years := analytics.UniqueYears(records)
	s := Section{Title: "Annual totals", Columns: []string{"Bank"}}
	for _, y := range years {
		s.Columns = append(s.Columns, strconv.Itoa(y))
	}
	s.Columns = append(s.Columns, "Total")

	for _, t := range analytics.AnnualTotals(records) {
		row := []string{t.Bank}
		for _, y := range years {
			row = append(row, core.FormatCompact(float64(t.ByYear[y])))
		}
		row = append(row, core.FormatCompact(float64(t.Total)))
		s.Rows = append(s.Rows, row)
	}
	return s
}

// YoY is the year-over-year table for yearA against yearB.
func YoY(records []core.SpendRecord, yearA, yearB int, partial bool) Section {
	title := fmt.Sprintf("Year over year %d vs %d", yearA, yearB)
	if partial {
		if tr := analytics.Partial(records, yearB).TimeRange; tr != "" {
			title += " (" + tr + ")"
		}
	}
	s := Section{
		Title:   title,
		Columns: []string{"Bank", strconv.Itoa(yearA), strconv.Itoa(yearB), "Change", "Difference"},
	}
	for _, row := range analytics.YearOverYearRows(records, yearA, yearB, partial) {
		s.Rows = append(s.Rows, []string{
			row.Bank,
			core.FormatCompact(float64(row.SpendA)),
			core.FormatCompact(float64(row.SpendB)),
			row.ChangeDisplay(),
			core.FormatCompact(float64(row.AbsoluteChange)),
		})
	}
	s.Lines = analytics.YoYInsights(records, yearA, yearB, partial)
	return s
}

// Wave returns the two wave tables, or false for an empty dataset.
func Wave(records []core.SpendRecord) ([]Section, bool) {
	w, ok := analytics.WaveTable(records)
	if !ok {
		return nil, false
	}
	build := func(title string, data map[string]map[string]int64, total func(string) int64) Section {
		s := Section{Title: title, Columns: append(append([]string{"Bank"}, w.Months...), "Total")}
		for _, b := range w.Banks {
			row := []string{b}
			for _, m := range w.Months {
				row = append(row, core.FormatCompact(float64(data[b][m])))
			}
			row = append(row, core.FormatCompact(float64(total(b))))
			s.Rows = append(s.Rows, row)
		}
		return s
	}
	return []Section{
		build(fmt.Sprintf("Wave %d (Dec %d onward)", w.YearA, w.YearA-1), w.DataA, w.TotalA),
		build(fmt.Sprintf("Wave %d (Dec %d onward)", w.YearB, w.YearB-1), w.DataB, w.TotalB),
	}, true
}

// Platforms lists a bank's platform split for one year.
func Platforms(records []core.SpendRecord, bank string, year int) Section {
	s := Section{
		Title:   fmt.Sprintf("%s platforms %d", bank, year),
		Columns: []string{"Platform", "Spend", "Share"},
	}
	for _, p := range analytics.PlatformShares(records, bank, year) {
		s.Rows = append(s.Rows, []string{
			analytics.PlatformLabel(p.Platform),
			core.FormatCompact(float64(p.Amount)),
			strconv.Itoa(p.Share) + "%",
		})
	}
	s.Lines = analytics.PlatformInsights(records, bank)
	return s
}

// Insights returns the timeline insights and, when focusBank is set, that
// bank's narrative for the reference year.
func Insights(records []core.SpendRecord, focusBank string) []Section {
	sections := []Section{{Title: "Timeline insights", Lines: analytics.TimelineInsights(records, focusBank)}}
	if focusBank == "" {
		return sections
	}
	if year, ok := analytics.ReferenceYear(records); ok {
		if lines := analytics.BankInsights(records, focusBank, year); len(lines) > 0 {
			sections = append(sections, Section{
				Title: fmt.Sprintf("%s insights %d", focusBank, year),
				Lines: lines,
			})
		}
	}
	return sections
}
