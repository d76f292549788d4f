package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"PortfolioArena/internal/calculator"
	"PortfolioArena/internal/model"
	"PortfolioArena/internal/snapshot"
	"PortfolioArena/internal/store"
)

// Standing is one row of the leaderboard.
type Standing struct {
	model.Agent
	CurrentValue float64 `json:"currentValue"`
	TotalReturn  float64 `json:"totalReturn"`
	Rank         int     `json:"rank"`
}

// AgentDetail is an agent with its holdings and latest valuation.
type AgentDetail struct {
	model.Agent
	Holdings      []model.Holding `json:"holdings"`
	CurrentValue  float64         `json:"currentValue"`
	TotalReturn   float64         `json:"totalReturn"`
	SnapshotCount int             `json:"snapshotCount"`
}

// Performance is the value history and KPIs of an agent over a timeframe,
// with the benchmark expressed as a portfolio of the same capital.
type Performance struct {
	AgentID            string              `json:"agentId"`
	Timeframe          model.Timeframe     `json:"timeframe"`
	Start              model.Date          `json:"start"`
	Benchmark          string              `json:"benchmark"`
	KPIs               model.KPIs          `json:"kpis"`
	Snapshots          []model.SeriesPoint `json:"snapshots"`
	BenchmarkSnapshots []model.SeriesPoint `json:"benchmarkSnapshots"`
}

// HoldingValue is a holding valued at its latest stored close.
type HoldingValue struct {
	model.Holding
	InceptionPrice *float64 `json:"inceptionPrice"`
	CurrentPrice   *float64 `json:"currentPrice"`
	CurrentValue   float64  `json:"currentValue"`
	ReturnPct      float64  `json:"returnPct"`
}

// Service answers read-only queries over agents, snapshots and prices.
type Service struct {
	Store     store.Store
	Benchmark string
	Clock     func() time.Time
}

// NewService creates a Service. An empty benchmark falls back to model.DefaultBenchmark.
func NewService(s store.Store, benchmark string) *Service {
	benchmark = strings.ToUpper(strings.TrimSpace(benchmark))
	if benchmark == "" {
		benchmark = model.DefaultBenchmark
	}
	return &Service{Store: s, Benchmark: benchmark, Clock: time.Now}
}

func (s *Service) today() model.Date {
	if s.Clock == nil {
		return model.Today()
	}
	return model.DateOf(s.Clock())
}

// Leaderboard ranks every agent by total return, best first.
func (s *Service) Leaderboard(ctx context.Context) ([]Standing, error) {
	agents, err := s.Store.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	board := make([]Standing, 0, len(agents))
	for _, a := range agents {
		snaps, err := s.Store.GetSnapshots(ctx, a.ID, model.Date{})
		if err != nil {
			return nil, fmt.Errorf("leaderboard: %w", err)
		}
		value, ret := latest(a, snaps)
		board = append(board, Standing{Agent: a, CurrentValue: value, TotalReturn: ret})
	}

	sort.SliceStable(board, func(i, j int) bool { return board[i].TotalReturn > board[j].TotalReturn })
	for i := range board {
		board[i].Rank = i + 1
	}
	return board, nil
}

// AgentDetail returns store.ErrNotFound for an unknown id.
func (s *Service) AgentDetail(ctx context.Context, id string) (*AgentDetail, error) {
	a, err := s.Store.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	holdings, err := s.Store.GetHoldings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("agent detail %s: %w", id, err)
	}
	snaps, err := s.Store.GetSnapshots(ctx, id, model.Date{})
	if err != nil {
		return nil, fmt.Errorf("agent detail %s: %w", id, err)
	}

	value, ret := latest(*a, snaps)
	return &AgentDetail{
		Agent:         *a,
		Holdings:      holdings,
		CurrentValue:  value,
		TotalReturn:   ret,
		SnapshotCount: len(snaps),
	}, nil
}

// Performance computes the KPIs of agent id over tf against the benchmark.
func (s *Service) Performance(ctx context.Context, id string, tf model.Timeframe) (*Performance, error) {
	a, err := s.Store.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	start := model.TimeframeStart(tf, a.InceptionDate, s.today())

	snaps, err := s.Store.GetSnapshots(ctx, id, start)
	if err != nil {
		return nil, fmt.Errorf("performance %s: %w", id, err)
	}
	bench, err := s.benchmarkSeries(ctx, *a, start)
	if err != nil {
		return nil, fmt.Errorf("performance %s: %w", id, err)
	}

	series := model.Points(snaps)
	return &Performance{
		AgentID:            id,
		Timeframe:          tf,
		Start:              start,
		Benchmark:          s.Benchmark,
		KPIs:               calculator.ComputeKPIs(series, a.InitialCapital, bench),
		Snapshots:          series,
		BenchmarkSnapshots: bench,
	}, nil
}

// benchmarkSeries values a position of the agent's capital in the benchmark,
// bought at its first close on or after start.
func (s *Service) benchmarkSeries(ctx context.Context, a model.Agent, start model.Date) ([]model.SeriesPoint, error) {
	prices, err := s.Store.GetPricesSince(ctx, s.Benchmark, start)
	if err != nil {
		return nil, err
	}
	virtual := model.Agent{ID: s.Benchmark, InceptionDate: start, InitialCapital: a.InitialCapital}
	holdings := []model.Holding{{Ticker: s.Benchmark, AllocationPct: 100}}
	v := snapshot.Compute(virtual, holdings, map[string][]model.PricePoint{s.Benchmark: prices})
	return model.Points(v.Snapshots), nil
}

// Holdings values each holding of agent id from the first stored close on or
// after inception to the latest one.
func (s *Service) Holdings(ctx context.Context, id string) ([]HoldingValue, error) {
	a, err := s.Store.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	holdings, err := s.Store.GetHoldings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("holdings %s: %w", id, err)
	}

	out := make([]HoldingValue, 0, len(holdings))
	for _, h := range holdings {
		prices, err := s.Store.GetPricesSince(ctx, h.Ticker, a.InceptionDate)
		if err != nil {
			return nil, fmt.Errorf("holdings %s: %w", id, err)
		}
		out = append(out, valueHolding(*a, h, prices))
	}
	return out, nil
}

func valueHolding(a model.Agent, h model.Holding, prices []model.PricePoint) HoldingValue {
	hv := HoldingValue{Holding: h}
	dollars := h.AllocationPct / 100 * a.InitialCapital
	hv.CurrentValue = dollars
	if len(prices) == 0 {
		return hv
	}

	first, last := prices[0].Close, prices[len(prices)-1].Close
	hv.InceptionPrice = model.Float(first)
	hv.CurrentPrice = model.Float(last)
	if hv.Shares == nil && first > 0 {
		hv.Shares = model.Float(dollars / first)
	}
	if hv.Shares != nil {
		hv.CurrentValue = *hv.Shares * last
	}
	if first > 0 {
		hv.ReturnPct = (last - first) / first * 100
	}
	return hv
}

// latest returns the last snapshot value, or the capital when there is none,
// and the total return in percent.
func latest(a model.Agent, snaps []model.PortfolioSnapshot) (value, totalReturn float64) {
	value = a.InitialCapital
	if len(snaps) > 0 {
		value = snaps[len(snaps)-1].TotalValue
	}
	if a.InitialCapital > 0 {
		totalReturn = (value - a.InitialCapital) / a.InitialCapital * 100
	}
	return value, totalReturn
}
