package model

// DefaultBenchmark is the index ticker synced alongside the holdings for alpha/beta.
const DefaultBenchmark = "SPY"

// DailyPrice is one end-of-day bar for a ticker. Close is always present;
// the other fields are nil when the provider did not report them.
type DailyPrice struct {
	Ticker   string
	Date     Date
	Open     *float64
	High     *float64
	Low      *float64
	Close    float64
	AdjClose *float64
	Volume   *int64
}

// PricePoint is the (date, close) pair used for valuation.
type PricePoint struct {
	Date  Date
	Close float64
}

// Float returns a pointer to v, for filling nullable fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }
