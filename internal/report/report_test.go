package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialspend/internal/core"
)

func records() []core.SpendRecord {
	return []core.SpendRecord{
		{Bank: "Chase", Year: 2023, Month: "January 2023", Platform: "FACEBOOK.COM", Spend: 100000},
		{Bank: "Chime", Year: 2023, Month: "January 2023", Platform: "TIKTOK", Spend: 200000},
		{Bank: "Chase", Year: 2024, Month: "January 2024", Platform: "FACEBOOK.COM", Spend: 300000},
		{Bank: "Chime", Year: 2024, Month: "January 2024", Platform: "TIKTOK", Spend: 100000},
	}
}

func render(t *testing.T, r *Report) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).Handle(r))
	return buf.String()
}

func TestFullReport(t *testing.T) {
	r := Full(records(), "Chase")
	assert.Equal(t, "$700K", r.Total)

	titles := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		titles[i] = s.Title
	}
	assert.Equal(t, []string{
		"Annual totals",
		"Year over year 2023 vs 2024",
		"Wave 2023 (Dec 2022 onward)",
		"Wave 2024 (Dec 2023 onward)",
		"Timeline insights",
		"Chase insights 2023",
	}, titles)

	out := render(t, r)
	assert.True(t, strings.HasPrefix(out, "Banking Social Spend\nPeriod: January 2023 – January 2024\n"), out)
	assert.Contains(t, out, "=== Annual totals ===")
	assert.Contains(t, out, "- Chase registered the highest YoY growth of 200%")
}

func TestYoYSectionRows(t *testing.T) {
	s := YoY(records(), 2023, 2024, true)
	assert.Equal(t, "Year over year 2023 vs 2024 (January)", s.Title)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, []string{"Chase", "$100K", "$300K", "+200%", "$200K"}, s.Rows[0])
	assert.Equal(t, []string{"Chime", "$200K", "$100K", "-50%", "$-100K"}, s.Rows[1])
}

func TestTableAlignment(t *testing.T) {
	r := Single(records(), "Chase report", Platforms(records(), "Chase", 2024))
	out := render(t, r)

	lines := strings.Split(out, "\n")
	var header, row string
	for i, l := range lines {
		if strings.HasPrefix(l, "Platform") {
			header, row = l, lines[i+1]
			break
		}
	}
	require.NotEmpty(t, header, out)
	assert.Equal(t, strings.Index(header, "Spend"), strings.Index(row, "$300K"))
	assert.Contains(t, out, "- FACEBOOK.COM captured 100% of Chase's total social investment")
}

func TestEmptyDataset(t *testing.T) {
	r := Full(nil, "")
	assert.Empty(t, r.Sections)
	out := render(t, r)
	assert.Contains(t, out, "Period: No data available")
	assert.Contains(t, out, "Total investment: $0")

	_, ok := Wave(nil)
	assert.False(t, ok)
}
