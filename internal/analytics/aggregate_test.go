package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialspend/internal/core"
)

func rec(bank string, year int, month, platform string, spend int64) core.SpendRecord {
	return core.SpendRecord{Bank: bank, Year: year, Month: month, Platform: platform, Spend: spend}
}

func TestTotalByBankPlatform(t *testing.T) {
	records := []core.SpendRecord{
		rec("Alpha", 2023, "January", "FACEBOOK.COM", 600),
		rec("Alpha", 2023, "February", "FACEBOOK.COM", 200),
		rec("Alpha", 2023, "January", "INSTAGRAM.COM", 400),
		rec("Alpha", 2024, "January", "FACEBOOK.COM", 9000),
		rec("Beta", 2023, "January", "FACEBOOK.COM", 50),
	}

	got := TotalByBankPlatform(records, "Alpha", 2023)
	assert.Equal(t, map[string]int64{"FACEBOOK.COM": 800, "INSTAGRAM.COM": 400}, got)

	var sum int64
	for _, v := range got {
		sum += v
	}
	assert.Equal(t, int64(1200), sum)

	missing := TotalByBankPlatform(records, "Zeta", 2023)
	require.NotNil(t, missing)
	assert.Empty(t, missing)
	assert.Empty(t, TotalByBankPlatform(records, "Alpha", 2019))
}

func TestEmptyInputYieldsEmptyResults(t *testing.T) {
	assert.Empty(t, TotalByBankPlatform(nil, "Alpha", 2023))
	assert.Empty(t, TotalByBankYear(nil))
	assert.Empty(t, AnnualTotals(nil))
	assert.Empty(t, UniqueBanks(nil))
	assert.Empty(t, UniqueYears(nil))
	assert.Empty(t, YearPairs(nil))
	assert.Empty(t, YearOverYearRows(nil, 2023, 2024, true))
	assert.Empty(t, MonthlyMatrix(nil, 2023).Banks)
	assert.Empty(t, PlatformShares(nil, "Alpha", 2023))
	assert.Equal(t, "No data available", DateRange(nil))

	_, _, ok := LatestDate(nil)
	assert.False(t, ok)
}

func TestTotalByBankYear(t *testing.T) {
	records := []core.SpendRecord{
		rec("Beta", 2024, "January", "X", 10),
		rec("Alpha", 2023, "January", "X", 5),
		rec("Beta", 2023, "January", "X", 7),
		rec("Beta", 2024, "March", "X", 1),
	}
	want := []core.BankYearTotal{
		{Bank: "Beta", Year: 2023, Amount: 7},
		{Bank: "Beta", Year: 2024, Amount: 11},
		{Bank: "Alpha", Year: 2023, Amount: 5},
	}
	assert.Equal(t, want, TotalByBankYear(records))
}

func TestAnnualTotalsSortedByRecentYears(t *testing.T) {
	records := []core.SpendRecord{
		rec("Old", 2022, "January", "X", 10000),
		rec("Old", 2024, "January", "X", 1),
		rec("New", 2023, "January", "X", 50),
		rec("New", 2024, "January", "X", 50),
	}
	got := AnnualTotals(records)
	require.Len(t, got, 2)
	assert.Equal(t, "New", got[0].Bank)
	assert.Equal(t, int64(100), got[0].Total)
	assert.Equal(t, int64(0), got[0].ByYear[2022])
	assert.Equal(t, "Old", got[1].Bank)
	assert.Equal(t, int64(10001), got[1].Total)
}

func TestUniqueBanksAndYears(t *testing.T) {
	records := []core.SpendRecord{
		rec("Gamma", 2024, "January", "X", 1),
		rec("Alpha", 2022, "January", "X", 1),
		rec("Gamma", 2023, "January", "X", 1),
	}
	assert.Equal(t, []string{"Alpha", "Gamma"}, UniqueBanks(records))
	assert.Equal(t, []string{"Gamma", "Alpha"}, UniqueBanksInOrder(records))
	assert.Equal(t, []int{2022, 2023, 2024}, UniqueYears(records))
	assert.Equal(t, []YearPair{{2023, 2024}, {2022, 2023}}, YearPairs(records))
}

func TestFilters(t *testing.T) {
	records := []core.SpendRecord{
		rec("Alpha", 2023, "January", "X", 1),
		rec("Beta", 2024, "January", "X", 2),
		rec("Gamma", 2022, "January", "X", 3),
	}
	assert.Len(t, FilterYears(records, 2023, 2024), 2)
	assert.Empty(t, FilterYears(records))
	assert.Len(t, FilterBanks(records), 3)

	beta := FilterBanks(records, "Beta")
	require.Len(t, beta, 1)
	assert.Equal(t, int64(2), beta[0].Spend)
}

func TestMonthsInYearAndPartial(t *testing.T) {
	records := []core.SpendRecord{
		rec("Alpha", 2024, "March 2024", "X", 1),
		rec("Alpha", 2024, "January", "X", 1),
		rec("Beta", 2024, "February", "X", 1),
		rec("Beta", 2023, "December", "X", 1),
	}
	assert.Equal(t, []string{"January", "February", "March"}, MonthsInYear(records, 2024))

	p := Partial(records, 2024)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, "January - March", p.TimeRange)

	single := Partial(records, 2023)
	assert.Equal(t, "December", single.TimeRange)
	assert.Empty(t, Partial(records, 2020).TimeRange)
}

func TestDateRangeAndLatestDate(t *testing.T) {
	records := []core.SpendRecord{
		rec("Alpha", 2024, "April 2024", "X", 1),
		rec("Alpha", 2023, "January", "X", 1),
		rec("Beta", 2024, "February", "X", 1),
	}
	assert.Equal(t, "January 2023 – April 2024", DateRange(records))

	year, month, ok := LatestDate(records)
	require.True(t, ok)
	assert.Equal(t, 2024, year)
	assert.Equal(t, "April", month)
}

func TestMonthlyMatrix(t *testing.T) {
	records := []core.SpendRecord{
		rec("Alpha", 2024, "January", "FACEBOOK.COM", 10),
		rec("Alpha", 2024, "January", "X", 5),
		rec("Beta", 2024, "February", "X", 7),
		rec("Beta", 2023, "February", "X", 100),
	}
	m := MonthlyMatrix(records, 2024)
	assert.Equal(t, []string{"Alpha", "Beta"}, m.Banks)
	assert.Equal(t, []string{"January", "February"}, m.Months)
	assert.Equal(t, int64(15), m.Data["Alpha"]["January"])
	assert.Equal(t, int64(0), m.Data["Alpha"]["February"])
	assert.Equal(t, int64(7), m.BankTotal("Beta"))
	assert.Equal(t, int64(15), m.MonthTotal("January"))
}

func TestPlatformShares(t *testing.T) {
	records := []core.SpendRecord{
		rec("Alpha", 2024, "January", "INSTAGRAM.COM", 250),
		rec("Alpha", 2024, "January", "FACEBOOK.COM", 750),
		rec("Alpha", 2023, "January", "TIKTOK", 999),
	}
	got := PlatformShares(records, "Alpha", 2024)
	want := []core.PlatformAmount{
		{Platform: "FACEBOOK.COM", Amount: 750, Share: 75},
		{Platform: "INSTAGRAM.COM", Amount: 250, Share: 25},
	}
	assert.Equal(t, want, got)
}

func TestBankPlatformTrend(t *testing.T) {
	records := []core.SpendRecord{
		rec("Alpha", 2023, "March", "FACEBOOK.COM", 3),
		rec("Alpha", 2023, "December", "FACEBOOK.COM", 12),
		rec("Alpha", 2024, "January", "FACEBOOK.COM", 1),
		rec("Alpha", 2024, "February", "TIKTOK", 2),
		rec("Beta", 2024, "April", "X", 4),
	}

	current := BankPlatformTrend(records, "Alpha", 2024)
	assert.Equal(t, []string{"December", "January", "February"}, current.Months)
	assert.Equal(t, "Dec 2023 to February 2024", current.Range)
	assert.Equal(t, int64(12), current.Data["December"]["FACEBOOK.COM"])
	assert.Equal(t, []string{"FACEBOOK.COM", "TIKTOK"}, current.Platforms)

	past := BankPlatformTrend(records, "Alpha", 2023)
	assert.Len(t, past.Months, 12)
	assert.Equal(t, "Jan 2023 to Dec 2023", past.Range)
	assert.Equal(t, int64(3), past.Data["March"]["FACEBOOK.COM"])
	assert.Equal(t, "January", core.MonthNames[0])
}
