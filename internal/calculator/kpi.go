package calculator

import (
	"math"

	"PortfolioArena/internal/model"
)

const (
	// RiskFreeRate is the annual risk-free rate used by Sharpe, Sortino and alpha.
	RiskFreeRate = 0.05
	// TradingDaysPerYear is the annualization base.
	TradingDaysPerYear = 252
	// MinAnnualizeDays is roughly one trading month. Shorter histories are
	// reported unannualized and get neutral alpha/beta.
	MinAnnualizeDays = 21
)

const dailyRiskFree = RiskFreeRate / TradingDaysPerYear

var sqrtYear = math.Sqrt(TradingDaysPerYear)

// DailyReturns extracts the non-nil daily returns of a series in order.
func DailyReturns(series []model.SeriesPoint) []float64 {
	out := make([]float64, 0, len(series))
	for _, p := range series {
		if p.DailyReturn != nil {
			out = append(out, *p.DailyReturn)
		}
	}
	return out
}

// ComputeKPIs derives the KPI set from an ascending series of valuations.
// benchmark may be nil; when given it must share the portfolio's date grid,
// since the two are aligned by position from the most recent end.
func ComputeKPIs(series []model.SeriesPoint, initialCapital float64, benchmark []model.SeriesPoint) model.KPIs {
	if len(series) == 0 {
		return emptyKPIs(initialCapital)
	}
	returns := DailyReturns(series)
	if len(returns) == 0 {
		return emptyKPIs(initialCapital)
	}

	n := len(returns)
	current := series[len(series)-1].TotalValue
	k := model.KPIs{CurrentValue: current, Beta: 1}

	k.TotalReturn = finite((current - initialCapital) / initialCapital * 100)
	if n >= MinAnnualizeDays {
		k.AnnualizedReturn = finite(Annualize(initialCapital, current, n))
	} else {
		k.AnnualizedReturn = k.TotalReturn
	}

	mean := Mean(returns)
	stdDev := PopulationStdDev(returns)
	if n >= 2 {
		k.Volatility = finite(stdDev * sqrtYear * 100)
	}
	if stdDev > 0 {
		k.SharpeRatio = finite((mean - dailyRiskFree) / stdDev * sqrtYear)
	}
	if dd := DownsideDeviation(returns); dd > 0 {
		k.SortinoRatio = finite((mean - dailyRiskFree) / dd * sqrtYear)
	}

	k.MaxDrawdown = finite(MaxDrawdown(series))

	if len(benchmark) > 0 && n >= MinAnnualizeDays {
		k.Alpha, k.Beta = alphaBeta(returns, k.AnnualizedReturn, benchmark)
	}

	wins := 0
	best, worst := returns[0], returns[0]
	for _, r := range returns {
		if r > 0 {
			wins++
		}
		best = math.Max(best, r)
		worst = math.Min(worst, r)
	}
	k.WinRate = float64(wins) / float64(n) * 100
	k.BestDay = best * 100
	k.WorstDay = worst * 100

	return k
}

// alphaBeta returns the CAPM alpha and beta of the portfolio returns against
// the benchmark. It falls back to (0, 1) when there is too little overlap.
func alphaBeta(returns []float64, annualized float64, benchmark []model.SeriesPoint) (alpha, beta float64) {
	benchReturns := DailyReturns(benchmark)
	minLen := min(len(returns), len(benchReturns))
	if minLen < 2 {
		return 0, 1
	}
	p := returns[len(returns)-minLen:]
	b := benchReturns[len(benchReturns)-minLen:]

	cov, varB := Covariance(p, b)
	beta = 1
	if varB > 0 {
		beta = finite(cov / varB)
	}

	first := benchmark[0].TotalValue
	last := benchmark[len(benchmark)-1].TotalValue
	benchAnnualized := Annualize(first, last, minLen)

	rf := RiskFreeRate * 100
	alpha = finite(annualized - (rf + beta*(benchAnnualized-rf)))
	return alpha, beta
}

func emptyKPIs(initialCapital float64) model.KPIs {
	return model.KPIs{CurrentValue: initialCapital}
}
