package reports

import "time"

// Timeframe selects the bucketing of a report.
const (
	TimeframeYearly  = "yearly"
	TimeframeMonthly = "monthly"
	TimeframeWeekly  = "weekly"
)

// PeriodAllTime is the single period emitted when no timeframe is given.
const PeriodAllTime = "all_time"

// Params narrows a report to a timeframe. The combinations mirror the
// bucketing rules: no timeframe -> one all-time row; yearly with a year
// -> months of that year; yearly without -> calendar years; monthly
// with year+month -> ISO weeks of that month; weekly with
// year+month+day -> that exact date. Any other combination yields an
// empty report.
type Params struct {
	Timeframe string
	Year      *int
	Month     *int
	Day       *int
}

// EarningsRow is one period of summed completed-booking prices.
type EarningsRow struct {
	Period string  `json:"period"`
	Total  float64 `json:"total"`
}

// CountRow is one period of booking counts.
type CountRow struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}

// Summary combines the all-time earnings and count of a company.
type Summary struct {
	Earnings EarningsRow `json:"earnings"`
	Count    CountRow    `json:"count"`
}

// BookingFact is the slice of a booking the reporting engine needs.
type BookingFact struct {
	Price      float64
	PickupTime time.Time
}
