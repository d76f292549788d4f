package agent

import (
	"context"
	"errors"
	"testing"

	"PortfolioArena/internal/model"
	"PortfolioArena/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(pcts ...float64) NewAgent {
	req := NewAgent{
		ID:            "test",
		Name:          "Test",
		Color:         "#000000",
		InceptionDate: model.MustParseDate("2026-03-02"),
	}
	for i, p := range pcts {
		req.Holdings = append(req.Holdings, NewHolding{Ticker: string(rune('a' + i)), AllocationPct: p})
	}
	return req
}

func TestValidateAllocations(t *testing.T) {
	tests := []struct {
		name    string
		pcts    []float64
		wantErr bool
	}{
		{"exact", []float64{60, 40}, false},
		{"upper tolerance", []float64{50, 50.01}, false},
		{"lower tolerance", []float64{50, 49.99}, false},
		{"float drift", []float64{33.33, 33.33, 33.34}, false},
		{"tenths", []float64{10.1, 20.2, 30.3, 39.4}, false},
		{"short by half", []float64{50, 49.5}, true},
		{"over by half", []float64{50, 50.5}, true},
		{"just outside", []float64{50, 49.98}, true},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		req := request(tt.pcts...)
		err := ValidateAllocations(req.Holdings)
		if tt.wantErr {
			if !errors.Is(err, ErrAllocationSum) {
				t.Errorf("%s: expected ErrAllocationSum, got %v", tt.name, err)
			}
		} else if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestCreate_Normalizes(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewService(st)

	req := request(70, 30)
	req.Holdings[0].Ticker = " nvda "
	a, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultInitialCapital, a.InitialCapital)
	assert.False(t, a.CreatedAt.IsZero())

	holdings, err := st.GetHoldings(ctx, "test")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "NVDA", holdings[0].Ticker)
	assert.Equal(t, "B", holdings[1].Ticker)
	assert.Nil(t, holdings[0].Shares)
}

func TestCreate_Rejects(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	missingName := request(100)
	missingName.Name = ""
	noDate := request(100)
	noDate.InceptionDate = model.Date{}
	negative := request(100)
	negative.InitialCapital = -1

	tests := []struct {
		name string
		req  NewAgent
		want error
	}{
		{"missing name", missingName, ErrInvalidAgent},
		{"missing date", noDate, ErrInvalidAgent},
		{"no holdings", request(), ErrInvalidAgent},
		{"negative capital", negative, ErrInvalidAgent},
		{"negative allocation", request(120, -20), ErrInvalidAgent},
		{"bad sum", request(99.5), ErrAllocationSum},
		{"bad sum over", request(100.5), ErrAllocationSum},
	}
	for _, tt := range tests {
		_, err := svc.Create(ctx, tt.req)
		assert.ErrorIs(t, err, tt.want, tt.name)
	}

	n, err := svc.Store.CountAgents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_Duplicate(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, request(100))
	require.NoError(t, err)
	_, err = svc.Create(ctx, request(100))
	assert.ErrorIs(t, err, ErrDuplicateAgent)
}

func TestDefaultAgents_AreValid(t *testing.T) {
	for _, req := range DefaultAgents() {
		assert.NoError(t, ValidateAllocations(req.Holdings), req.ID)
		assert.Len(t, req.Holdings, 10, req.ID)
	}
}

func TestSeedDefaults_OnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewService(st)

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	agents, err := st.ListAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, 4)

	tickers, err := st.ListHoldingTickers(ctx)
	require.NoError(t, err)
	assert.Contains(t, tickers, "GEV")
	assert.NotContains(t, tickers, "SPY")
}
