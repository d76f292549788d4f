package snapshot

import (
	"sort"

	"PortfolioArena/internal/model"
)

// Valuation is the output of Compute.
type Valuation struct {
	// Inception is the first valid date; zero when there is none.
	Inception model.Date
	// Shares is aligned with the holdings passed to Compute. An entry is nil
	// when the inception price was missing or zero.
	Shares    []*float64
	Snapshots []model.PortfolioSnapshot
}

// Compute values the holdings of agent on every date where all of their
// tickers have a close, starting at the agent's inception date. Shares are
// bought at the first such date with the agent's capital.
func Compute(agent model.Agent, holdings []model.Holding, prices map[string][]model.PricePoint) Valuation {
	v := Valuation{Shares: make([]*float64, len(holdings))}
	if len(holdings) == 0 {
		return v
	}

	closes := make(map[string]map[model.Date]float64, len(holdings))
	for _, h := range holdings {
		if _, ok := closes[h.Ticker]; ok {
			continue
		}
		byDate := make(map[model.Date]float64, len(prices[h.Ticker]))
		for _, p := range prices[h.Ticker] {
			byDate[p.Date] = p.Close
		}
		closes[h.Ticker] = byDate
	}

	dates := validDates(closes, agent.InceptionDate)
	if len(dates) == 0 {
		return v
	}
	v.Inception = dates[0]

	for i, h := range holdings {
		price := closes[h.Ticker][v.Inception]
		if price == 0 {
			continue
		}
		v.Shares[i] = model.Float(h.AllocationPct / 100 * agent.InitialCapital / price)
	}

	v.Snapshots = make([]model.PortfolioSnapshot, 0, len(dates))
	prev := 0.0
	for i, d := range dates {
		value := 0.0
		for j, h := range holdings {
			if v.Shares[j] == nil {
				continue
			}
			value += *v.Shares[j] * closes[h.Ticker][d]
		}

		snap := model.PortfolioSnapshot{AgentID: agent.ID, Date: d, TotalValue: value}
		if i > 0 && prev > 0 {
			snap.DailyReturn = model.Float((value - prev) / prev)
		}
		v.Snapshots = append(v.Snapshots, snap)
		prev = value
	}
	return v
}

// validDates returns the ascending dates on or after from present in every map.
func validDates(closes map[string]map[model.Date]float64, from model.Date) []model.Date {
	var smallest map[model.Date]float64
	for _, byDate := range closes {
		if smallest == nil || len(byDate) < len(smallest) {
			smallest = byDate
		}
	}

	var dates []model.Date
	for d := range smallest {
		if d.Before(from) {
			continue
		}
		inAll := true
		for _, byDate := range closes {
			if _, ok := byDate[d]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
