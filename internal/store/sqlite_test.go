package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"PortfolioArena/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "arena.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestSQLite(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
}

func price(ticker, date string, close float64) model.DailyPrice {
	return model.DailyPrice{
		Ticker:   ticker,
		Date:     model.MustParseDate(date),
		Close:    close,
		AdjClose: model.Float(close),
		Volume:   model.Int(1000),
	}
}

func TestStore_InsertPriceIsIdempotent(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		ok, err := s.InsertPriceIfAbsent(ctx, price("NVDA", "2026-02-11", 180))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.InsertPriceIfAbsent(ctx, price("NVDA", "2026-02-11", 999))
		require.NoError(t, err)
		assert.False(t, ok, "duplicate (ticker, date) must be a no-op")

		points, err := s.GetPrices(ctx, "NVDA")
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, 180.0, points[0].Close)
	})
}

func TestStore_MaxDateAndOrdering(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, found, err := s.GetMaxDate(ctx, "SPY")
		require.NoError(t, err)
		assert.False(t, found)

		for _, p := range []model.DailyPrice{
			price("SPY", "2026-02-13", 603),
			price("SPY", "2026-02-11", 600),
			price("SPY", "2026-02-12", 601.5),
			price("QQQ", "2026-02-20", 500),
		} {
			_, err := s.InsertPriceIfAbsent(ctx, p)
			require.NoError(t, err)
		}

		latest, found, err := s.GetMaxDate(ctx, "SPY")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "2026-02-13", latest.String())

		points, err := s.GetPrices(ctx, "SPY")
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.Equal(t, "2026-02-11", points[0].Date.String())
		assert.Equal(t, "2026-02-13", points[2].Date.String())

		since, err := s.GetPricesSince(ctx, "SPY", model.MustParseDate("2026-02-12"))
		require.NoError(t, err)
		require.Len(t, since, 2)
		assert.Equal(t, 601.5, since[0].Close)
	})
}

func TestStore_AgentsAndHoldings(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		a := model.Agent{
			ID:             "claude",
			Name:           "Claude",
			Color:          "#8B5CF6",
			InceptionDate:  model.MustParseDate("2026-02-11"),
			InitialCapital: 100000,
		}
		holdings := []model.Holding{
			{Ticker: "GOOGL", AllocationPct: 60},
			{Ticker: "LLY", AllocationPct: 40},
		}
		require.NoError(t, s.CreateAgent(ctx, a, holdings))

		err := s.CreateAgent(ctx, a, holdings)
		assert.True(t, errors.Is(err, ErrDuplicate))

		n, err := s.CountAgents(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := s.GetAgent(ctx, "claude")
		require.NoError(t, err)
		assert.Equal(t, "Claude", got.Name)
		assert.Equal(t, a.InceptionDate, got.InceptionDate)
		assert.False(t, got.CreatedAt.IsZero())

		_, err = s.GetAgent(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)

		hs, err := s.GetHoldings(ctx, "claude")
		require.NoError(t, err)
		require.Len(t, hs, 2)
		assert.Nil(t, hs[0].Shares)

		require.NoError(t, s.UpdateHoldingShares(ctx, hs[0].ID, 12.5))
		require.NoError(t, s.UpdateHoldingShares(ctx, hs[0].ID, 10))
		hs, err = s.GetHoldings(ctx, "claude")
		require.NoError(t, err)
		require.NotNil(t, hs[0].Shares)
		assert.Equal(t, 10.0, *hs[0].Shares)

		tickers, err := s.ListHoldingTickers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"GOOGL", "LLY"}, tickers)
	})
}

func TestStore_SnapshotsAreAppendOnly(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a := model.Agent{ID: "gpt", Name: "GPT", Color: "#10A37F",
			InceptionDate: model.MustParseDate("2026-02-11"), InitialCapital: 100000}
		require.NoError(t, s.CreateAgent(ctx, a, []model.Holding{{Ticker: "NVDA", AllocationPct: 100}}))

		first := model.PortfolioSnapshot{AgentID: "gpt", Date: model.MustParseDate("2026-02-11"), TotalValue: 100000}
		second := model.PortfolioSnapshot{AgentID: "gpt", Date: model.MustParseDate("2026-02-12"),
			TotalValue: 101000, DailyReturn: model.Float(0.01)}

		for _, snap := range []model.PortfolioSnapshot{second, first} {
			ok, err := s.InsertSnapshotIfAbsent(ctx, snap)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := s.InsertSnapshotIfAbsent(ctx, model.PortfolioSnapshot{AgentID: "gpt", Date: first.Date, TotalValue: 1})
		require.NoError(t, err)
		assert.False(t, ok)

		snaps, err := s.GetSnapshots(ctx, "gpt", model.Date{})
		require.NoError(t, err)
		require.Len(t, snaps, 2)
		assert.Equal(t, 100000.0, snaps[0].TotalValue)
		assert.Nil(t, snaps[0].DailyReturn)
		require.NotNil(t, snaps[1].DailyReturn)
		assert.InDelta(t, 0.01, *snaps[1].DailyReturn, 1e-12)

		snaps, err = s.GetSnapshots(ctx, "gpt", second.Date)
		require.NoError(t, err)
		assert.Len(t, snaps, 1)
	})
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.InsertPriceIfAbsent(context.Background(), price("SPY", "2026-02-10", 600))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	latest, found, err := s.GetMaxDate(context.Background(), "SPY")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2026-02-10", latest.String())
}
