package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"socialspend/internal/core"
)

// YoYInsights produces up to four sentences comparing yearA and yearB, in a
// fixed order:
//
//  1. the bank with the highest positive percentage growth
//  2. the bank with the highest yearB spend
//  3. the bank with the largest positive absolute increase
//  4. the bank with the steepest decline, or if none declined, overall
//     sector growth when it is positive
func YoYInsights(records []core.SpendRecord, yearA, yearB int, partial bool) []string {
	rows := yoyRows(records, yearA, yearB, partial)
	insights := make([]string, 0, 4)
	if len(rows) == 0 {
		return insights
	}

	byGrowth := sortedRows(rows, func(a, b core.YoYRow) bool { return a.Change > b.Change })
	if top := byGrowth[0]; top.Change > 0 {
		insights = append(insights, fmt.Sprintf(
			"%s registered the highest YoY growth of %s%%, increasing from %s in %d to %s in %d.",
			top.Bank, core.FormatPercent(top.Change),
			core.FormatCompact(float64(top.SpendA)), yearA,
			core.FormatCompact(float64(top.SpendB)), yearB))
	}

	bySpend := sortedRows(rows, func(a, b core.YoYRow) bool { return a.SpendB > b.SpendB })
	leader := bySpend[0]
	sign := ""
	if leader.Change > 0 {
		sign = "+"
	}
	insights = append(insights, fmt.Sprintf(
		"%s led total investment in %d with %s, a %s%s%% change from %d.",
		leader.Bank, yearB, core.FormatCompact(float64(leader.SpendB)),
		sign, core.FormatPercent(leader.Change), yearA))

	byAbsolute := sortedRows(rows, func(a, b core.YoYRow) bool { return a.AbsoluteChange > b.AbsoluteChange })
	if top := byAbsolute[0]; top.AbsoluteChange > 0 {
		insights = append(insights, fmt.Sprintf(
			"%s had the largest absolute increase, investing an additional %s in %d compared to %d.",
			top.Bank, core.FormatCompact(float64(top.AbsoluteChange)), yearB, yearA))
	}

	var declining []core.YoYRow
	for _, r := range rows {
		if r.Change < 0 {
			declining = append(declining, r)
		}
	}
	if len(declining) > 0 {
		sort.SliceStable(declining, func(i, j int) bool { return declining[i].Change < declining[j].Change })
		worst := declining[0]
		insights = append(insights, fmt.Sprintf(
			"%s reduced its investment by %s%%, from %s in %d to %s in %d.",
			worst.Bank, core.FormatPercent(math.Abs(worst.Change)),
			core.FormatCompact(float64(worst.SpendA)), yearA,
			core.FormatCompact(float64(worst.SpendB)), yearB))
		return insights
	}

	var totalA, totalB int64
	for _, r := range rows {
		totalA += r.SpendA
		totalB += r.SpendB
	}
	if overall := core.PercentChange(totalA, totalB); overall > 0 {
		insights = append(insights, fmt.Sprintf(
			"All analyzed institutions increased their social media investment, with an overall sector growth of %s%% from %d to %d.",
			core.FormatPercent(overall), yearA, yearB))
	}
	return insights
}

// TimelineInsights summarises the whole dataset: total investment over the
// date range, the top spender, the single largest entry and, when focusBank
// has at least two years of data, platforms it added in its latest year.
func TimelineInsights(records []core.SpendRecord, focusBank string) []string {
	if len(records) == 0 {
		return []string{"No data available to generate insights."}
	}

	total := core.RecordSet(records).Total()

	idx := make(map[string]int)
	type bankSum struct {
		bank  string
		spend int64
	}
	var sums []bankSum
	for _, r := range records {
		i, ok := idx[r.Bank]
		if !ok {
			sums = append(sums, bankSum{bank: r.Bank})
			i = len(sums) - 1
			idx[r.Bank] = i
		}
		sums[i].spend += r.Spend
	}
	sort.SliceStable(sums, func(i, j int) bool { return sums[i].spend > sums[j].spend })

	peak := records[0]
	for _, r := range records[1:] {
		if r.Spend > peak.Spend {
			peak = r
		}
	}

	insights := []string{
		fmt.Sprintf("Investment in social media advertising across all banks totaled %s during the %s period.",
			core.FormatCompact(float64(total)), DateRange(records)),
		fmt.Sprintf("%s had the highest total social investment with %s.",
			sums[0].bank, core.FormatCompact(float64(sums[0].spend))),
		fmt.Sprintf("The highest single-month spend was recorded by %s in %s, with an investment of %s.",
			peak.Bank, peak.Month, core.FormatCompact(float64(peak.Spend))),
	}
	if s := platformExpansion(records, focusBank); s != "" {
		insights = append(insights, s)
	}
	return insights
}

func platformExpansion(records []core.SpendRecord, bank string) string {
	if bank == "" {
		return ""
	}
	bankRecords := FilterBanks(records, bank)
	years := UniqueYears(bankRecords)
	if len(years) < 2 {
		return ""
	}
	last, prev := years[len(years)-1], years[len(years)-2]
	before := make(map[string]bool)
	for _, r := range bankRecords {
		if r.Year == prev {
			before[r.Platform] = true
		}
	}
	seen := make(map[string]bool)
	var added []string
	for _, r := range bankRecords {
		if r.Year != last || before[r.Platform] || seen[r.Platform] {
			continue
		}
		seen[r.Platform] = true
		added = append(added, r.Platform)
	}
	if len(added) == 0 {
		return ""
	}
	return fmt.Sprintf("%s expanded its platform strategy in %d, adding %s.", bank, last, strings.Join(added, ", "))
}

// PlatformInsights describes the four largest platforms of a bank by share of
// its lifetime spend.
func PlatformInsights(records []core.SpendRecord, bank string) []string {
	bankRecords := FilterBanks(records, bank)
	if len(bankRecords) == 0 {
		return []string{fmt.Sprintf("No data available for %s.", bank)}
	}
	amounts := platformAmounts(bankRecords)
	total := core.RecordSet(bankRecords).Total()

	var insights []string
	for _, p := range amounts {
		if len(insights) == 4 {
			break
		}
		var pct float64
		if total > 0 {
			pct = float64(p.Amount) / float64(total) * 100
		}
		insights = append(insights, fmt.Sprintf(
			"%s captured %s%% of %s's total social investment, with %s allocated.",
			p.Platform, core.FormatPercent(pct), bank, core.FormatCompact(float64(p.Amount))))
	}
	return insights
}

// ReferenceYear picks the last complete year of the dataset: the year before
// the latest one when there are at least two years, otherwise the only year.
func ReferenceYear(records []core.SpendRecord) (int, bool) {
	years := UniqueYears(records)
	switch len(years) {
	case 0:
		return 0, false
	case 1:
		return years[0], true
	default:
		return years[len(years)-2], true
	}
}

// BankInsights builds the per-bank narrative for a reference year: growth
// over the previous year, platform concentration, the peak month of the year
// and either the pace of the following year or platform diversification.
func BankInsights(records []core.SpendRecord, bank string, year int) []string {
	bankRecords := FilterBanks(records, bank)
	if len(bankRecords) == 0 {
		return nil
	}

	yearly := make(map[int]int64)
	present := make(map[int]bool)
	for _, r := range bankRecords {
		yearly[r.Year] += r.Spend
		present[r.Year] = true
	}

	var insights []string

	if present[year] && present[year-1] {
		growth := core.PercentChange(yearly[year-1], yearly[year])
		switch {
		case growth > 100:
			insights = append(insights, fmt.Sprintf(
				"Achieved exceptional %s%% year-over-year growth in social media investment, increasing from %s in %d to %s in %d",
				core.FormatPercent(growth), core.FormatWhole(yearly[year-1]), year-1, core.FormatWhole(yearly[year]), year))
		case growth > 50:
			insights = append(insights, fmt.Sprintf(
				"Demonstrated strong %s%% year-over-year growth in social media spending, reaching %s in %d",
				core.FormatPercent(growth), core.FormatWhole(yearly[year]), year))
		case growth > 0:
			insights = append(insights, fmt.Sprintf(
				"Maintained positive %s%% growth in social media investment, with %s total spend in %d",
				core.FormatPercent(growth), core.FormatWhole(yearly[year]), year))
		default:
			insights = append(insights, fmt.Sprintf(
				"Social media spending decreased by %s%% from %d to %d, totaling %s in %d",
				core.FormatPercent(math.Abs(growth)), year-1, year, core.FormatWhole(yearly[year]), year))
		}
	}

	if s := concentrationInsight(bankRecords); s != "" {
		insights = append(insights, s)
	}

	if present[year] {
		if s := peakMonthInsight(bankRecords, year, yearly[year]); s != "" {
			insights = append(insights, s)
		}
	}

	next := year + 1
	if present[next] {
		insights = append(insights, paceInsight(bankRecords, year, next, yearly, present[year]))
	} else if present[year] {
		if s := diversificationInsight(bankRecords, year); s != "" {
			insights = append(insights, s)
		}
	}
	return insights
}

func concentrationInsight(records []core.SpendRecord) string {
	amounts := platformAmounts(records)
	if len(amounts) < 2 {
		return ""
	}
	total := core.RecordSet(records).Total()
	if total <= 0 {
		return ""
	}
	top, second := amounts[0], amounts[1]
	topPct := float64(top.Amount) / float64(total) * 100
	secondPct := float64(second.Amount) / float64(total) * 100
	topName, secondName := platformLongLabel(top.Platform), platformLongLabel(second.Platform)

	switch {
	case topPct > 70:
		return fmt.Sprintf("Heavily concentrated on %s with %s%% of total investment (%s), indicating a focused platform strategy",
			topName, core.FormatPercent(topPct), core.FormatWhole(top.Amount))
	case topPct > 50:
		return fmt.Sprintf("%s leads platform investment with %s%% share (%s), followed by %s at %s%% (%s)",
			topName, core.FormatPercent(topPct), core.FormatWhole(top.Amount),
			secondName, core.FormatPercent(secondPct), core.FormatWhole(second.Amount))
	default:
		return fmt.Sprintf("Balanced platform approach with %s at %s%% (%s) and %s at %s%% (%s) of total spend",
			topName, core.FormatPercent(topPct), core.FormatWhole(top.Amount),
			secondName, core.FormatPercent(secondPct), core.FormatWhole(second.Amount))
	}
}

func peakMonthInsight(records []core.SpendRecord, year int, yearTotal int64) string {
	m := MonthlyMatrix(records, year)
	if len(m.Banks) == 0 {
		return ""
	}
	bank := m.Banks[0]
	peakMonth, peakAmount := "", int64(-1)
	for _, r := range records {
		if r.Year != year {
			continue
		}
		month := r.MonthName()
		if v := m.Data[bank][month]; v > peakAmount {
			peakMonth, peakAmount = month, v
		}
	}
	var pct float64
	if yearTotal > 0 {
		pct = float64(peakAmount) / float64(yearTotal) * 100
	}
	return fmt.Sprintf("Peak %d performance in %s with %s spend, representing %s%% of annual social media investment",
		year, peakMonth, core.FormatWhole(peakAmount), core.FormatPercent(pct))
}

func paceInsight(records []core.SpendRecord, year, next int, yearly map[int]int64, hasYear bool) string {
	nextMonths := len(MonthsInYear(records, next))
	avgNext := float64(yearly[next]) / float64(nextMonths)
	if !hasYear {
		return fmt.Sprintf("%d performance shows %s invested across %d months, averaging %s monthly",
			next, core.FormatWhole(yearly[next]), nextMonths, core.FormatWhole(int64(math.Round(avgNext))))
	}
	avgYear := float64(yearly[year]) / float64(len(MonthsInYear(records, year)))
	var change float64
	if avgYear > 0 {
		change = (avgNext - avgYear) / avgYear * 100
	}
	if change > 0 {
		return fmt.Sprintf("%d shows accelerated momentum with %s average monthly spend, %s%% higher than %d's %s monthly average",
			next, core.FormatWhole(int64(math.Round(avgNext))), core.FormatPercent(change),
			year, core.FormatWhole(int64(math.Round(avgYear))))
	}
	return fmt.Sprintf("%d investment pace at %s average monthly spend, %s%% below %d's %s monthly average",
		next, core.FormatWhole(int64(math.Round(avgNext))), core.FormatPercent(math.Abs(change)),
		year, core.FormatWhole(int64(math.Round(avgYear))))
}

func diversificationInsight(records []core.SpendRecord, year int) string {
	var scoped []core.SpendRecord
	for _, r := range records {
		if r.Year == year {
			scoped = append(scoped, r)
		}
	}
	amounts := platformAmounts(scoped)
	switch n := len(amounts); {
	case n >= 5:
		return fmt.Sprintf("Diversified multi-platform strategy across %d channels in %d, demonstrating comprehensive social media market coverage", n, year)
	case n >= 3:
		names := make([]string, 0, 3)
		for _, p := range amounts[:3] {
			names = append(names, PlatformLabel(p.Platform))
		}
		return fmt.Sprintf("Strategic focus on %d primary platforms in %d: %s", n, year, strings.Join(names, ", "))
	default:
		return ""
	}
}

// PlatformLabel turns a platform identifier such as "FACEBOOK.COM" into a
// display name ("Facebook").
func PlatformLabel(platform string) string {
	name := strings.TrimSuffix(strings.TrimSpace(platform), ".COM")
	return cases.Title(language.English).String(strings.ToLower(name))
}

func platformLongLabel(platform string) string {
	label := PlatformLabel(platform)
	if label == "X" {
		return "X (Twitter)"
	}
	return label
}

func sortedRows(rows []core.YoYRow, less func(a, b core.YoYRow) bool) []core.YoYRow {
	out := append([]core.YoYRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
