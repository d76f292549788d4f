package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"PortfolioArena/internal/model"
	"PortfolioArena/internal/store"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAgent   = errors.New("invalid agent")
	ErrAllocationSum  = errors.New("allocations must sum to 100%")
	ErrDuplicateAgent = errors.New("agent already exists")
)

var (
	fullAllocation      = decimal.NewFromInt(100)
	allocationTolerance = decimal.RequireFromString("0.01")
)

// NewHolding is one requested position of a new agent.
type NewHolding struct {
	Ticker        string  `json:"ticker" yaml:"ticker"`
	AllocationPct float64 `json:"allocationPct" yaml:"allocation_pct"`
}

// NewAgent is the input of Service.Create.
type NewAgent struct {
	ID             string       `json:"id" yaml:"id"`
	Name           string       `json:"name" yaml:"name"`
	Color          string       `json:"color" yaml:"color"`
	InceptionDate  model.Date   `json:"inceptionDate" yaml:"inception_date"`
	InitialCapital float64      `json:"initialCapital" yaml:"initial_capital"`
	Holdings       []NewHolding `json:"holdings" yaml:"holdings"`
}

// Service registers agents.
type Service struct {
	Store store.Store
	Now   func() time.Time
}

// NewService creates a Service backed by s.
func NewService(s store.Store) *Service {
	return &Service{Store: s, Now: time.Now}
}

// Create validates req and stores the agent with its holdings.
func (s *Service) Create(ctx context.Context, req NewAgent) (*model.Agent, error) {
	a, holdings, err := req.normalize()
	if err != nil {
		return nil, err
	}
	a.CreatedAt = s.Now()

	if err := s.Store.CreateAgent(ctx, a, holdings); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, a.ID)
		}
		return nil, fmt.Errorf("create agent %s: %w", a.ID, err)
	}
	log.Printf("[INFO] created agent %s with %d holdings", a.ID, len(holdings))
	return &a, nil
}

// SeedDefaults stores the default agents when none exist yet.
// It returns the number of agents created.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.Store.CountAgents(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, req := range DefaultAgents() {
		if _, err := s.Create(ctx, req); err != nil {
			return created, fmt.Errorf("seed %s: %w", req.ID, err)
		}
		created++
	}
	log.Printf("[INFO] seeded %d default agents", created)
	return created, nil
}

func (req NewAgent) normalize() (model.Agent, []model.Holding, error) {
	a := model.Agent{
		ID:             strings.TrimSpace(req.ID),
		Name:           strings.TrimSpace(req.Name),
		Color:          strings.TrimSpace(req.Color),
		InceptionDate:  req.InceptionDate,
		InitialCapital: req.InitialCapital,
	}
	switch {
	case a.ID == "", a.Name == "", a.Color == "", a.InceptionDate.IsZero():
		return a, nil, fmt.Errorf("%w: missing required fields", ErrInvalidAgent)
	case len(req.Holdings) == 0:
		return a, nil, fmt.Errorf("%w: no holdings", ErrInvalidAgent)
	case a.InitialCapital < 0:
		return a, nil, fmt.Errorf("%w: negative initial capital", ErrInvalidAgent)
	}
	if a.InitialCapital == 0 {
		a.InitialCapital = model.DefaultInitialCapital
	}

	holdings := make([]model.Holding, 0, len(req.Holdings))
	for _, h := range req.Holdings {
		ticker := strings.ToUpper(strings.TrimSpace(h.Ticker))
		if ticker == "" {
			return a, nil, fmt.Errorf("%w: holding without ticker", ErrInvalidAgent)
		}
		if h.AllocationPct < 0 || h.AllocationPct > 100 {
			return a, nil, fmt.Errorf("%w: allocation of %s out of range: %v", ErrInvalidAgent, ticker, h.AllocationPct)
		}
		holdings = append(holdings, model.Holding{AgentID: a.ID, Ticker: ticker, AllocationPct: h.AllocationPct})
	}

	if err := ValidateAllocations(req.Holdings); err != nil {
		return a, nil, err
	}
	return a, holdings, nil
}

// ValidateAllocations checks that the percentages sum to 100 within 0.01.
func ValidateAllocations(holdings []NewHolding) error {
	sum := decimal.Zero
	for _, h := range holdings {
		sum = sum.Add(decimal.NewFromFloat(h.AllocationPct))
	}
	if sum.Sub(fullAllocation).Abs().GreaterThan(allocationTolerance) {
		return fmt.Errorf("%w: got %s", ErrAllocationSum, sum.String())
	}
	return nil
}
