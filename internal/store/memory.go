package store

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"PortfolioArena/internal/model"
)

// MemoryStore is a process-local Store, selected with sqlite_path "memory".
type MemoryStore struct {
	mu        sync.RWMutex
	agents    map[string]model.Agent
	holdings  []model.Holding
	nextID    int64
	prices    map[string]map[model.Date]model.DailyPrice
	snapshots map[string]map[model.Date]model.PortfolioSnapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	log.Println("[INFO] using in-memory store, data will not survive a restart")
	return &MemoryStore{
		agents:    make(map[string]model.Agent),
		prices:    make(map[string]map[model.Date]model.DailyPrice),
		snapshots: make(map[string]map[model.Date]model.PortfolioSnapshot),
	}
}

func (m *MemoryStore) GetMaxDate(_ context.Context, ticker string) (model.Date, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest model.Date
	found := false
	for d := range m.prices[ticker] {
		if !found || d.After(latest) {
			latest, found = d, true
		}
	}
	return latest, found, nil
}

func (m *MemoryStore) InsertPriceIfAbsent(_ context.Context, p model.DailyPrice) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDate, ok := m.prices[p.Ticker]
	if !ok {
		byDate = make(map[model.Date]model.DailyPrice)
		m.prices[p.Ticker] = byDate
	}
	if _, exists := byDate[p.Date]; exists {
		return false, nil
	}
	byDate[p.Date] = p
	return true, nil
}

func (m *MemoryStore) GetPrices(ctx context.Context, ticker string) ([]model.PricePoint, error) {
	return m.GetPricesSince(ctx, ticker, model.Date{})
}

func (m *MemoryStore) GetPricesSince(_ context.Context, ticker string, from model.Date) ([]model.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.PricePoint
	for d, p := range m.prices[ticker] {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		out = append(out, model.PricePoint{Date: d, Close: p.Close})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) ListAgents(_ context.Context) ([]model.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) GetAgent(_ context.Context, id string) (*model.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, ErrNotFound)
	}
	return &a, nil
}

func (m *MemoryStore) CountAgents(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents), nil
}

func (m *MemoryStore) CreateAgent(_ context.Context, a model.Agent, holdings []model.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.agents[a.ID]; exists {
		return fmt.Errorf("agent %s: %w", a.ID, ErrDuplicate)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.agents[a.ID] = a
	for _, h := range holdings {
		m.nextID++
		h.ID = m.nextID
		h.AgentID = a.ID
		if h.Shares != nil {
			h.Shares = model.Float(*h.Shares)
		}
		m.holdings = append(m.holdings, h)
	}
	return nil
}

func (m *MemoryStore) GetHoldings(_ context.Context, agentID string) ([]model.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Holding
	for _, h := range m.holdings {
		if h.AgentID != agentID {
			continue
		}
		if h.Shares != nil {
			h.Shares = model.Float(*h.Shares)
		}
		out = append(out, h)
	}
	return out, nil
}

func (m *MemoryStore) ListHoldingTickers(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, h := range m.holdings {
		if !seen[h.Ticker] {
			seen[h.Ticker] = true
			out = append(out, h.Ticker)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryStore) UpdateHoldingShares(_ context.Context, holdingID int64, shares float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.holdings {
		if m.holdings[i].ID == holdingID {
			m.holdings[i].Shares = model.Float(shares)
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) InsertSnapshotIfAbsent(_ context.Context, s model.PortfolioSnapshot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDate, ok := m.snapshots[s.AgentID]
	if !ok {
		byDate = make(map[model.Date]model.PortfolioSnapshot)
		m.snapshots[s.AgentID] = byDate
	}
	if _, exists := byDate[s.Date]; exists {
		return false, nil
	}
	byDate[s.Date] = s
	return true, nil
}

func (m *MemoryStore) GetSnapshots(_ context.Context, agentID string, from model.Date) ([]model.PortfolioSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.PortfolioSnapshot
	for d, s := range m.snapshots[agentID] {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
