package collector

import (
	"context"
	"sync"
	"time"

	"PortfolioArena/internal/model"
)

// MinRequestSpacing is the floor between two provider requests.
const MinRequestSpacing = 500 * time.Millisecond

// RateLimitedFetcher spaces out calls to the wrapped Fetcher. One instance is
// shared by every ticker synced in the process, so the last-request clock is
// a single choke point guarded by mu.
type RateLimitedFetcher struct {
	Fetcher  Fetcher
	Interval time.Duration

	mu         sync.Mutex
	last       time.Time
	now        func() time.Time
	sleep      func(context.Context, time.Duration) error
	perAttempt bool
}

// pacedFetcher is implemented by fetchers that may issue several requests
// in one FetchHistorical call. The limiter then spaces each request.
type pacedFetcher interface {
	setPacer(func(context.Context) error)
}

// NewRateLimitedFetcher wraps f. Intervals below MinRequestSpacing are raised to it.
func NewRateLimitedFetcher(f Fetcher, interval time.Duration) *RateLimitedFetcher {
	if interval < MinRequestSpacing {
		interval = MinRequestSpacing
	}
	r := &RateLimitedFetcher{
		Fetcher:  f,
		Interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
	if p, ok := f.(pacedFetcher); ok {
		p.setPacer(r.wait)
		r.perAttempt = true
	}
	return r
}

func (r *RateLimitedFetcher) Name() string { return r.Fetcher.Name() }

// FetchHistorical waits for its slot, then delegates. Paced fetchers wait
// before each of their own requests instead.
func (r *RateLimitedFetcher) FetchHistorical(ctx context.Context, ticker string, start, endExclusive model.Date) ([]model.DailyPrice, error) {
	if !r.perAttempt {
		if err := r.wait(ctx); err != nil {
			return nil, err
		}
	}
	return r.Fetcher.FetchHistorical(ctx, ticker, start, endExclusive)
}

func (r *RateLimitedFetcher) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.last.IsZero() {
		if elapsed := r.now().Sub(r.last); elapsed < r.Interval {
			if err := r.sleep(ctx, r.Interval-elapsed); err != nil {
				return err
			}
		}
	}
	r.last = r.now()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
