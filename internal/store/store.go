package store

import (
	"context"
	"errors"

	"PortfolioArena/internal/model"
)

var (
	// ErrNotFound is returned when a requested agent does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when creating an agent whose ID is taken.
	ErrDuplicate = errors.New("already exists")
)

// Store persists agents, holdings, daily prices and portfolio snapshots.
// Prices and snapshots are append-only: inserting an existing key is a
// no-op reported as inserted=false, never an error.
type Store interface {
	GetMaxDate(ctx context.Context, ticker string) (model.Date, bool, error)
	InsertPriceIfAbsent(ctx context.Context, p model.DailyPrice) (bool, error)
	// GetPrices returns the (date, close) history of ticker in ascending order.
	GetPrices(ctx context.Context, ticker string) ([]model.PricePoint, error)
	GetPricesSince(ctx context.Context, ticker string, from model.Date) ([]model.PricePoint, error)

	ListAgents(ctx context.Context) ([]model.Agent, error)
	GetAgent(ctx context.Context, id string) (*model.Agent, error)
	CountAgents(ctx context.Context) (int, error)
	// CreateAgent inserts the agent and its holdings atomically.
	CreateAgent(ctx context.Context, a model.Agent, holdings []model.Holding) error

	GetHoldings(ctx context.Context, agentID string) ([]model.Holding, error)
	ListHoldingTickers(ctx context.Context) ([]string, error)
	UpdateHoldingShares(ctx context.Context, holdingID int64, shares float64) error

	InsertSnapshotIfAbsent(ctx context.Context, s model.PortfolioSnapshot) (bool, error)
	// GetSnapshots returns snapshots dated on or after from, ascending.
	// A zero from returns the whole history.
	GetSnapshots(ctx context.Context, agentID string, from model.Date) ([]model.PortfolioSnapshot, error)

	Close() error
}
