package pricesync

import (
	"context"
	"fmt"
	"log"
	"time"

	"PortfolioArena/internal/collector"
	"PortfolioArena/internal/model"
	"PortfolioArena/internal/store"
)

// DefaultFloorDate is the first date fetched for a ticker with no stored prices.
var DefaultFloorDate = model.NewDate(2026, time.February, 10)

// Synchronizer fills the gap between the last stored price of a ticker and today.
type Synchronizer struct {
	Store     store.Store
	Fetcher   collector.Fetcher
	FloorDate model.Date
	Clock     func() time.Time
}

// New creates a Synchronizer. A zero floor falls back to DefaultFloorDate.
func New(s store.Store, f collector.Fetcher, floor model.Date) *Synchronizer {
	if floor.IsZero() {
		floor = DefaultFloorDate
	}
	return &Synchronizer{Store: s, Fetcher: f, FloorDate: floor, Clock: time.Now}
}

func (s *Synchronizer) today() model.Date {
	if s.Clock == nil {
		return model.Today()
	}
	return model.DateOf(s.Clock())
}

// SyncTicker fetches the missing daily rows of ticker and returns how many were
// newly stored. Provider failures are logged and count as zero rows; store
// failures are returned.
func (s *Synchronizer) SyncTicker(ctx context.Context, ticker string) (int, error) {
	today := s.today()

	last, found, err := s.Store.GetMaxDate(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("sync %s: %w", ticker, err)
	}

	start := s.FloorDate
	if found {
		if !last.Before(today) {
			return 0, nil
		}
		start = last.Add(1)
	}
	if start.After(today) {
		return 0, nil
	}

	bars, err := s.Fetcher.FetchHistorical(ctx, ticker, start, today.Add(1))
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		log.Printf("[WARN] %s: fetch %s from %s failed: %v", s.Fetcher.Name(), ticker, start, err)
		return 0, nil
	}
	if len(bars) == 0 {
		log.Printf("[INFO] %s: no new bars for %s since %s", s.Fetcher.Name(), ticker, start)
		return 0, nil
	}

	inserted := 0
	for _, bar := range bars {
		bar.Ticker = ticker
		ok, err := s.Store.InsertPriceIfAbsent(ctx, bar)
		if err != nil {
			return inserted, fmt.Errorf("sync %s: %w", ticker, err)
		}
		if ok {
			inserted++
		}
	}
	log.Printf("[INFO] synced %s: %d new rows (%d fetched)", ticker, inserted, len(bars))
	return inserted, nil
}
