package collector

import (
	"context"
	"sort"
	"strings"
	"sync"

	"PortfolioArena/internal/model"
)

// MockFetcher serves fixed bars for development and testing.
type MockFetcher struct {
	mu    sync.Mutex
	Bars  map[string][]model.DailyPrice
	Err   map[string]error
	Calls []MockCall
}

// MockCall records one FetchHistorical invocation.
type MockCall struct {
	Ticker       string
	Start        model.Date
	EndExclusive model.Date
}

// NewMockFetcher creates an empty MockFetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{Bars: map[string][]model.DailyPrice{}, Err: map[string]error{}}
}

func (m *MockFetcher) Name() string { return "mock" }

// Add appends close-only bars for ticker, one per date.
func (m *MockFetcher) Add(ticker string, closes map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for day, c := range closes {
		m.Bars[ticker] = append(m.Bars[ticker], model.DailyPrice{
			Ticker: ticker,
			Date:   model.MustParseDate(day),
			Close:  c,
		})
	}
	sortBars(m.Bars[ticker])
}

func (m *MockFetcher) FetchHistorical(_ context.Context, ticker string, start, endExclusive model.Date) ([]model.DailyPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Ticker: ticker, Start: start, EndExclusive: endExclusive})
	if err := m.Err[ticker]; err != nil {
		return nil, err
	}
	return inWindow(m.Bars[ticker], start, endExclusive), nil
}

// CallCount returns how many times FetchHistorical was called.
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// inWindow keeps bars with start <= date < endExclusive.
func inWindow(bars []model.DailyPrice, start, endExclusive model.Date) []model.DailyPrice {
	out := make([]model.DailyPrice, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(start) || !b.Date.Before(endExclusive) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func sortBars(bars []model.DailyPrice) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
}

func normalizeTicker(t string) string { return strings.ToUpper(strings.TrimSpace(t)) }
