package snapshot

import (
	"context"
	"testing"

	"PortfolioArena/internal/model"
	"PortfolioArena/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(closes ...any) []model.PricePoint {
	var out []model.PricePoint
	for i := 0; i < len(closes); i += 2 {
		out = append(out, model.PricePoint{
			Date:  model.MustParseDate(closes[i].(string)),
			Close: closes[i+1].(float64),
		})
	}
	return out
}

var testAgent = model.Agent{
	ID:             "claude",
	InceptionDate:  model.MustParseDate("2026-02-11"),
	InitialCapital: 100000,
}

func TestCompute_IntersectsDatesFromInception(t *testing.T) {
	holdings := []model.Holding{
		{ID: 1, Ticker: "AAA", AllocationPct: 50},
		{ID: 2, Ticker: "BBB", AllocationPct: 50},
	}
	prices := map[string][]model.PricePoint{
		"AAA": points("2026-02-10", 90.0, "2026-02-11", 100.0, "2026-02-12", 110.0, "2026-02-13", 120.0),
		"BBB": points("2026-02-10", 45.0, "2026-02-11", 50.0, "2026-02-13", 40.0),
	}

	v := Compute(testAgent, holdings, prices)
	assert.Equal(t, "2026-02-11", v.Inception.String())
	require.Len(t, v.Snapshots, 2, "02-10 precedes inception and 02-12 lacks BBB")

	require.NotNil(t, v.Shares[0])
	require.NotNil(t, v.Shares[1])
	assert.InDelta(t, 500.0, *v.Shares[0], 1e-9)
	assert.InDelta(t, 1000.0, *v.Shares[1], 1e-9)

	assert.InDelta(t, 100000.0, v.Snapshots[0].TotalValue, 1e-6)
	assert.Nil(t, v.Snapshots[0].DailyReturn)

	// 500*120 + 1000*40
	assert.InDelta(t, 100000.0, v.Snapshots[1].TotalValue, 1e-6)
	require.NotNil(t, v.Snapshots[1].DailyReturn)
	assert.InDelta(t, 0.0, *v.Snapshots[1].DailyReturn, 1e-12)
}

func TestCompute_ZeroInceptionPriceSkipsHolding(t *testing.T) {
	holdings := []model.Holding{
		{ID: 1, Ticker: "AAA", AllocationPct: 50},
		{ID: 2, Ticker: "ZERO", AllocationPct: 50},
	}
	prices := map[string][]model.PricePoint{
		"AAA":  points("2026-02-11", 100.0, "2026-02-12", 110.0),
		"ZERO": points("2026-02-11", 0.0, "2026-02-12", 5.0),
	}

	v := Compute(testAgent, holdings, prices)
	assert.Nil(t, v.Shares[1])
	require.Len(t, v.Snapshots, 2)
	assert.InDelta(t, 50000.0, v.Snapshots[0].TotalValue, 1e-6)
	assert.InDelta(t, 0.1, *v.Snapshots[1].DailyReturn, 1e-12)
}

func TestCompute_ZeroPriorValueLeavesReturnNil(t *testing.T) {
	holdings := []model.Holding{{ID: 1, Ticker: "AAA", AllocationPct: 100}}
	prices := map[string][]model.PricePoint{
		"AAA": points("2026-02-11", 100.0, "2026-02-12", 0.0, "2026-02-13", 50.0),
	}

	v := Compute(testAgent, holdings, prices)
	require.Len(t, v.Snapshots, 3)
	assert.InDelta(t, -1.0, *v.Snapshots[1].DailyReturn, 1e-12)
	assert.Zero(t, v.Snapshots[1].TotalValue)
	assert.Nil(t, v.Snapshots[2].DailyReturn, "no return from a zero valuation")
}

func TestCompute_NothingToValue(t *testing.T) {
	v := Compute(testAgent, nil, nil)
	assert.True(t, v.Inception.IsZero())
	assert.Empty(t, v.Snapshots)

	holdings := []model.Holding{{ID: 1, Ticker: "AAA", AllocationPct: 100}}
	v = Compute(testAgent, holdings, map[string][]model.PricePoint{"AAA": points("2026-02-01", 10.0)})
	assert.Empty(t, v.Snapshots)
}

func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	a := testAgent
	a.Name, a.Color = "Claude", "#8B5CF6"
	require.NoError(t, st.CreateAgent(ctx, a, []model.Holding{
		{Ticker: "AAA", AllocationPct: 60},
		{Ticker: "BBB", AllocationPct: 40},
	}))
	for _, p := range []model.DailyPrice{
		{Ticker: "AAA", Date: model.MustParseDate("2026-02-11"), Close: 100},
		{Ticker: "AAA", Date: model.MustParseDate("2026-02-12"), Close: 105},
		{Ticker: "BBB", Date: model.MustParseDate("2026-02-11"), Close: 20},
		{Ticker: "BBB", Date: model.MustParseDate("2026-02-12"), Close: 19},
	} {
		_, err := st.InsertPriceIfAbsent(ctx, p)
		require.NoError(t, err)
	}
	return st
}

func TestBuild_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := seedStore(t)
	b := NewBuilder(st)

	res, err := b.Build(ctx, testAgent)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ValidDates)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.SharesUpdated)

	res, err = b.Build(ctx, testAgent)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, 2, res.SharesUpdated)

	snaps, err := st.GetSnapshots(ctx, testAgent.ID, model.Date{})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	// 600*105 + 2000*19
	assert.InDelta(t, 101000.0, snaps[1].TotalValue, 1e-6)
	assert.InDelta(t, 0.01, *snaps[1].DailyReturn, 1e-12)
}

func TestBuild_OverwritesShares(t *testing.T) {
	ctx := context.Background()
	st := seedStore(t)
	holdings, err := st.GetHoldings(ctx, testAgent.ID)
	require.NoError(t, err)
	require.NoError(t, st.UpdateHoldingShares(ctx, holdings[0].ID, 9999))

	_, err = NewBuilder(st).Build(ctx, testAgent)
	require.NoError(t, err)

	holdings, err = st.GetHoldings(ctx, testAgent.ID)
	require.NoError(t, err)
	assert.InDelta(t, 600.0, *holdings[0].Shares, 1e-9)
	assert.InDelta(t, 2000.0, *holdings[1].Shares, 1e-9)
}

func TestBuild_KeepsExistingSnapshots(t *testing.T) {
	ctx := context.Background()
	st := seedStore(t)
	stale := model.PortfolioSnapshot{AgentID: testAgent.ID, Date: model.MustParseDate("2026-02-12"), TotalValue: 1}
	_, err := st.InsertSnapshotIfAbsent(ctx, stale)
	require.NoError(t, err)

	res, err := NewBuilder(st).Build(ctx, testAgent)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	snaps, err := st.GetSnapshots(ctx, testAgent.ID, stale.Date)
	require.NoError(t, err)
	assert.Equal(t, 1.0, snaps[0].TotalValue)
}

func TestBuild_NoHoldings(t *testing.T) {
	res, err := NewBuilder(store.NewMemoryStore()).Build(context.Background(), testAgent)
	require.NoError(t, err)
	assert.Zero(t, res.ValidDates)
}
