package report

import (
	"context"
	"testing"
	"time"

	"PortfolioArena/internal/model"
	"PortfolioArena/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inception = model.MustParseDate("2026-02-11")

func addAgent(t *testing.T, st store.Store, id string, holdings ...model.Holding) {
	t.Helper()
	require.NoError(t, st.CreateAgent(context.Background(), model.Agent{
		ID: id, Name: id, Color: "#111111", InceptionDate: inception, InitialCapital: 100000,
	}, holdings))
}

func addSnapshots(t *testing.T, st store.Store, id string, values ...float64) {
	t.Helper()
	for i, v := range values {
		snap := model.PortfolioSnapshot{AgentID: id, Date: inception.Add(i), TotalValue: v}
		if i > 0 {
			snap.DailyReturn = model.Float((v - values[i-1]) / values[i-1])
		}
		_, err := st.InsertSnapshotIfAbsent(context.Background(), snap)
		require.NoError(t, err)
	}
}

func addPrices(t *testing.T, st store.Store, ticker string, from model.Date, closes ...float64) {
	t.Helper()
	for i, c := range closes {
		_, err := st.InsertPriceIfAbsent(context.Background(), model.DailyPrice{Ticker: ticker, Date: from.Add(i), Close: c})
		require.NoError(t, err)
	}
}

func newService(st store.Store, today string) *Service {
	svc := NewService(st, "spy")
	now := model.MustParseDate(today).Time().Add(12 * time.Hour)
	svc.Clock = func() time.Time { return now }
	return svc
}

func TestLeaderboard_RanksByTotalReturn(t *testing.T) {
	st := store.NewMemoryStore()
	addAgent(t, st, "gemini")
	addAgent(t, st, "grok")
	addAgent(t, st, "claude")
	addSnapshots(t, st, "gemini", 100000, 99000)
	addSnapshots(t, st, "grok", 100000, 104000)

	board, err := newService(st, "2026-02-12").Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 3)

	assert.Equal(t, "grok", board[0].ID)
	assert.Equal(t, 1, board[0].Rank)
	assert.InDelta(t, 4.0, board[0].TotalReturn, 1e-9)

	assert.Equal(t, "claude", board[1].ID, "no snapshots means capital and zero return")
	assert.Equal(t, 100000.0, board[1].CurrentValue)

	assert.Equal(t, "gemini", board[2].ID)
	assert.Equal(t, 3, board[2].Rank)
	assert.InDelta(t, -1.0, board[2].TotalReturn, 1e-9)
}

func TestAgentDetail(t *testing.T) {
	st := store.NewMemoryStore()
	addAgent(t, st, "gpt", model.Holding{Ticker: "NVDA", AllocationPct: 100})
	addSnapshots(t, st, "gpt", 100000, 101000, 102000)
	svc := newService(st, "2026-02-13")

	d, err := svc.AgentDetail(context.Background(), "gpt")
	require.NoError(t, err)
	assert.Equal(t, 3, d.SnapshotCount)
	assert.Equal(t, 102000.0, d.CurrentValue)
	assert.InDelta(t, 2.0, d.TotalReturn, 1e-9)
	require.Len(t, d.Holdings, 1)

	_, err = svc.AgentDetail(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPerformance_BenchmarkScaledToCapital(t *testing.T) {
	st := store.NewMemoryStore()
	addAgent(t, st, "gpt", model.Holding{Ticker: "NVDA", AllocationPct: 100})
	addSnapshots(t, st, "gpt", 100000, 101000, 102010)
	addPrices(t, st, "SPY", inception.Add(-1), 590, 600, 606, 612.06)

	perf, err := newService(st, "2026-02-13").Performance(context.Background(), "gpt", model.TimeframeAll)
	require.NoError(t, err)

	assert.Equal(t, inception, perf.Start)
	assert.Equal(t, "SPY", perf.Benchmark)
	require.Len(t, perf.Snapshots, 3)
	require.Len(t, perf.BenchmarkSnapshots, 3, "close before inception is excluded")
	assert.InDelta(t, 100000.0, perf.BenchmarkSnapshots[0].TotalValue, 1e-6)
	assert.InDelta(t, 101000.0, perf.BenchmarkSnapshots[1].TotalValue, 1e-6)
	assert.InDelta(t, 102010.0, perf.BenchmarkSnapshots[2].TotalValue, 1e-6)
	assert.Nil(t, perf.BenchmarkSnapshots[0].DailyReturn)

	assert.InDelta(t, 2.01, perf.KPIs.TotalReturn, 1e-9)
	assert.InDelta(t, 102010.0, perf.KPIs.CurrentValue, 1e-9)
	assert.Equal(t, 1.0, perf.KPIs.Beta, "short history keeps the neutral beta")
}

func TestPerformance_TimeframeWindow(t *testing.T) {
	st := store.NewMemoryStore()
	addAgent(t, st, "gpt")
	values := make([]float64, 30)
	for i := range values {
		values[i] = 100000 + float64(i)*100
	}
	addSnapshots(t, st, "gpt", values...)

	svc := newService(st, "2026-03-12")
	perf, err := svc.Performance(context.Background(), "gpt", model.Timeframe1W)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-05", perf.Start.String())
	// snapshots run 02-11 .. 03-12
	assert.Len(t, perf.Snapshots, 8)
	assert.Empty(t, perf.BenchmarkSnapshots)

	_, err = svc.Performance(context.Background(), "nobody", model.TimeframeAll)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHoldings(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	addAgent(t, st, "claude",
		model.Holding{Ticker: "GOOGL", AllocationPct: 60},
		model.Holding{Ticker: "NEM", AllocationPct: 40},
	)
	addPrices(t, st, "GOOGL", inception.Add(-1), 150, 200, 210, 220)

	hs, err := newService(st, "2026-02-13").Holdings(ctx, "claude")
	require.NoError(t, err)
	require.Len(t, hs, 2)

	googl := hs[0]
	require.NotNil(t, googl.InceptionPrice)
	assert.Equal(t, 200.0, *googl.InceptionPrice)
	assert.Equal(t, 220.0, *googl.CurrentPrice)
	assert.InDelta(t, 300.0, *googl.Shares, 1e-9)
	assert.InDelta(t, 66000.0, googl.CurrentValue, 1e-9)
	assert.InDelta(t, 10.0, googl.ReturnPct, 1e-9)

	nem := hs[1]
	assert.Nil(t, nem.InceptionPrice)
	assert.Nil(t, nem.CurrentPrice)
	assert.Equal(t, 40000.0, nem.CurrentValue)
	assert.Zero(t, nem.ReturnPct)
}

func TestNewService_DefaultBenchmark(t *testing.T) {
	assert.Equal(t, model.DefaultBenchmark, NewService(store.NewMemoryStore(), " ").Benchmark)
	assert.Equal(t, "QQQ", NewService(store.NewMemoryStore(), "qqq").Benchmark)
}
