package snapshot

import (
	"context"
	"fmt"
	"log"

	"PortfolioArena/internal/model"
	"PortfolioArena/internal/store"
)

// Result summarizes one Build.
type Result struct {
	AgentID       string     `json:"agentId"`
	ValidDates    int        `json:"validDates"`
	Inserted      int        `json:"inserted"`
	SharesUpdated int        `json:"sharesUpdated"`
	Inception     model.Date `json:"inception"`
}

// Builder turns stored prices into persisted snapshots.
type Builder struct {
	Store store.Store
}

// NewBuilder creates a Builder backed by s.
func NewBuilder(s store.Store) *Builder {
	return &Builder{Store: s}
}

// Build recomputes share counts and appends any missing snapshots for agent.
// Existing snapshots are left untouched.
func (b *Builder) Build(ctx context.Context, agent model.Agent) (Result, error) {
	res := Result{AgentID: agent.ID}

	holdings, err := b.Store.GetHoldings(ctx, agent.ID)
	if err != nil {
		return res, fmt.Errorf("build %s: %w", agent.ID, err)
	}
	if len(holdings) == 0 {
		return res, nil
	}

	prices := make(map[string][]model.PricePoint, len(holdings))
	for _, h := range holdings {
		if _, ok := prices[h.Ticker]; ok {
			continue
		}
		points, err := b.Store.GetPrices(ctx, h.Ticker)
		if err != nil {
			return res, fmt.Errorf("build %s: %w", agent.ID, err)
		}
		prices[h.Ticker] = points
	}

	v := Compute(agent, holdings, prices)
	res.ValidDates = len(v.Snapshots)
	res.Inception = v.Inception
	if res.ValidDates == 0 {
		log.Printf("[INFO] %s: no dates with prices for every holding", agent.ID)
		return res, nil
	}

	for i, h := range holdings {
		if v.Shares[i] == nil {
			log.Printf("[WARN] %s: no inception price for %s on %s", agent.ID, h.Ticker, v.Inception)
			continue
		}
		if err := b.Store.UpdateHoldingShares(ctx, h.ID, *v.Shares[i]); err != nil {
			return res, fmt.Errorf("build %s: %w", agent.ID, err)
		}
		res.SharesUpdated++
	}

	for _, snap := range v.Snapshots {
		ok, err := b.Store.InsertSnapshotIfAbsent(ctx, snap)
		if err != nil {
			return res, fmt.Errorf("build %s: %w", agent.ID, err)
		}
		if ok {
			res.Inserted++
		}
	}

	log.Printf("[INFO] %s: %d snapshots over %d dates since %s", agent.ID, res.Inserted, res.ValidDates, res.Inception)
	return res, nil
}
