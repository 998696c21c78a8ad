package core

// PlatformAmount is spend aggregated by platform.
type PlatformAmount struct {
	Platform string
	Amount   int64
	Share    int // percent of the scope total, rounded
}

// BankYearTotal is the summed spend of a bank in one year.
type BankYearTotal struct {
	Bank   string
	Year   int
	Amount int64
}

// BankAnnualTotals holds one bank's spend for each year of the dataset.
type BankAnnualTotals struct {
	Bank   string
	ByYear map[int]int64
	Total  int64
}

// YoYRow compares one bank's spend across two years.
type YoYRow struct {
	Bank           string
	YearA          int
	YearB          int
	SpendA         int64
	SpendB         int64
	Change         float64 // exact percentage, 0 when SpendA is 0
	ChangeRounded  float64 // one decimal
	AbsoluteChange int64
}

// ChangeDisplay renders the rounded change as "+12.5%".
func (r YoYRow) ChangeDisplay() string {
	return SignedPercent(r.ChangeRounded)
}

// WaveTable compares two fourteen-month (or shorter) waves. The December
// column of each wave comes from the year before it.
type WaveTable struct {
	Banks  []string
	Months []string
	YearA  int
	YearB  int
	DataA  map[string]map[string]int64 // bank -> month -> spend
	DataB  map[string]map[string]int64
}

// TotalA sums a bank's DataA row.
func (w WaveTable) TotalA(bank string) int64 {
	return sumRow(w.DataA[bank], w.Months)
}

// TotalB sums a bank's DataB row.
func (w WaveTable) TotalB(bank string) int64 {
	return sumRow(w.DataB[bank], w.Months)
}

// MonthlyMatrix is bank -> month -> spend for a single year.
type MonthlyMatrix struct {
	Year   int
	Banks  []string
	Months []string
	Data   map[string]map[string]int64
}

// BankTotal sums a bank's row.
func (m MonthlyMatrix) BankTotal(bank string) int64 {
	return sumRow(m.Data[bank], m.Months)
}

// MonthTotal sums one month's column.
func (m MonthlyMatrix) MonthTotal(month string) int64 {
	var total int64
	for _, b := range m.Banks {
		total += m.Data[b][month]
	}
	return total
}

// PartialInfo describes the months available in the most recent year of a
// partial comparison.
type PartialInfo struct {
	Year      int
	Months    []string
	TimeRange string // "January - April" or "January"
}

func sumRow(row map[string]int64, months []string) int64 {
	var total int64
	for _, m := range months {
		total += row[m]
	}
	return total
}
