package collector

import (
	"context"

	"PortfolioArena/internal/model"
)

// Fetcher defines the interface for fetching end-of-day history.
// FetchHistorical returns the bars in [start, endExclusive). An empty result
// is valid (holidays, delisted tickers).
type Fetcher interface {
	FetchHistorical(ctx context.Context, ticker string, start, endExclusive model.Date) ([]model.DailyPrice, error)
	Name() string
}
