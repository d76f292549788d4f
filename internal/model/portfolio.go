package model

import "time"

// DefaultInitialCapital is used when an agent is created without a capital amount.
const DefaultInitialCapital = 100000.0

// Agent is a simulated portfolio with fixed holdings from its inception date.
type Agent struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	InceptionDate  Date      `json:"inceptionDate"`
	InitialCapital float64   `json:"initialCapital"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Holding is one ticker of an agent at a fixed allocation.
// Shares is nil until the inception price is known.
type Holding struct {
	ID            int64    `json:"id"`
	AgentID       string   `json:"agentId"`
	Ticker        string   `json:"ticker"`
	AllocationPct float64  `json:"allocationPct"`
	Shares        *float64 `json:"shares"`
}

// PortfolioSnapshot is an agent's valuation on one date.
// DailyReturn is a fraction (0.01 == 1%) and nil on the first date.
type PortfolioSnapshot struct {
	AgentID     string   `json:"agentId"`
	Date        Date     `json:"date"`
	TotalValue  float64  `json:"totalValue"`
	DailyReturn *float64 `json:"dailyReturn"`
}

// SeriesPoint is the shape consumed by the KPI calculator. Agent snapshots
// and the benchmark virtual portfolio are both expressed this way.
type SeriesPoint struct {
	Date        Date     `json:"date"`
	TotalValue  float64  `json:"value"`
	DailyReturn *float64 `json:"-"`
}

// Points converts snapshots to a calculator series.
func Points(snaps []PortfolioSnapshot) []SeriesPoint {
	out := make([]SeriesPoint, len(snaps))
	for i, s := range snaps {
		out[i] = SeriesPoint{Date: s.Date, TotalValue: s.TotalValue, DailyReturn: s.DailyReturn}
	}
	return out
}

// KPIs is the fixed set of performance and risk metrics.
// Percentages are expressed in percent (5.0 == 5%).
type KPIs struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	SortinoRatio     float64 `json:"sortinoRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	Volatility       float64 `json:"volatility"`
	Alpha            float64 `json:"alpha"`
	Beta             float64 `json:"beta"`
	WinRate          float64 `json:"winRate"`
	BestDay          float64 `json:"bestDay"`
	WorstDay         float64 `json:"worstDay"`
	CurrentValue     float64 `json:"currentValue"`
}
