package calculator

import "PortfolioArena/internal/model"

// MaxDrawdown returns the largest peak-to-trough loss of the series in percent.
// The result is never negative.
func MaxDrawdown(series []model.SeriesPoint) float64 {
	if len(series) == 0 {
		return 0
	}
	peak := series[0].TotalValue
	maxDD := 0.0
	for _, p := range series {
		if p.TotalValue > peak {
			peak = p.TotalValue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - p.TotalValue) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}
