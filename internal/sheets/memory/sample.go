package memory

import "socialspend/internal/core"

// SampleRecords returns the built-in demo dataset. The slice is freshly
// allocated on every call.
func SampleRecords() []core.SpendRecord {
	r := func(bank string, year int, month, platform string, spend int64) core.SpendRecord {
		return core.SpendRecord{Bank: bank, Year: year, Month: month, Platform: platform, Spend: spend}
	}
	return []core.SpendRecord{
		r("Wells Fargo", 2023, "January 2023", "FACEBOOK.COM", 850000),
		r("Wells Fargo", 2023, "January 2023", "INSTAGRAM.COM", 425000),
		r("Wells Fargo", 2023, "January 2023", "TIKTOK", 180000),
		r("Wells Fargo", 2023, "February 2023", "FACEBOOK.COM", 920000),
		r("Wells Fargo", 2023, "February 2023", "INSTAGRAM.COM", 380000),
		r("Wells Fargo", 2023, "March 2023", "FACEBOOK.COM", 1100000),
		r("Wells Fargo", 2023, "March 2023", "INSTAGRAM.COM", 450000),
		r("Wells Fargo", 2023, "April 2023", "FACEBOOK.COM", 950000),
		r("Wells Fargo", 2023, "May 2023", "FACEBOOK.COM", 800000),
		r("Wells Fargo", 2023, "June 2023", "FACEBOOK.COM", 750000),

		r("Wells Fargo", 2024, "January 2024", "FACEBOOK.COM", 1200000),
		r("Wells Fargo", 2024, "January 2024", "INSTAGRAM.COM", 650000),
		r("Wells Fargo", 2024, "January 2024", "TIKTOK", 320000),
		r("Wells Fargo", 2024, "February 2024", "FACEBOOK.COM", 1150000),
		r("Wells Fargo", 2024, "March 2024", "FACEBOOK.COM", 1300000),
		r("Wells Fargo", 2024, "April 2024", "FACEBOOK.COM", 1100000),

		r("Chase", 2023, "January 2023", "FACEBOOK.COM", 1200000),
		r("Chase", 2023, "January 2023", "INSTAGRAM.COM", 800000),
		r("Chase", 2024, "January 2024", "FACEBOOK.COM", 1500000),
		r("Chase", 2024, "January 2024", "INSTAGRAM.COM", 950000),

		r("Bank of America", 2023, "April 2023", "X.COM", 46042),
		r("Bank of America", 2023, "December 2023", "FACEBOOK.COM", 61218),
		r("Bank of America", 2023, "December 2023", "INSTAGRAM.COM", 67652),
		r("Bank of America", 2024, "January 2024", "FACEBOOK.COM", 117689),
		r("Bank of America", 2024, "January 2024", "INSTAGRAM.COM", 38823),
		r("Bank of America", 2024, "May 2024", "FACEBOOK.COM", 159223),

		r("Capital One", 2023, "April 2023", "FACEBOOK.COM", 621062),
		r("Capital One", 2023, "April 2023", "INSTAGRAM.COM", 149957),
		r("Capital One", 2023, "December 2023", "FACEBOOK.COM", 2168227),
		r("Capital One", 2023, "December 2023", "INSTAGRAM.COM", 725676),
		r("Capital One", 2024, "April 2024", "FACEBOOK.COM", 1081376),
		r("Capital One", 2024, "April 2024", "INSTAGRAM.COM", 718188),

		r("US Bank", 2023, "January 2023", "FACEBOOK.COM", 450000),
		r("US Bank", 2024, "January 2024", "FACEBOOK.COM", 520000),

		r("Chime", 2023, "January 2023", "FACEBOOK.COM", 380000),
		r("Chime", 2024, "January 2024", "FACEBOOK.COM", 580000),

		r("Cash App", 2023, "January 2023", "TIKTOK", 420000),
		r("Cash App", 2024, "January 2024", "TIKTOK", 650000),

		r("SoFi", 2023, "January 2023", "FACEBOOK.COM", 280000),
		r("SoFi", 2024, "January 2024", "FACEBOOK.COM", 420000),
	}
}
