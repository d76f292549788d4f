package refresh

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"PortfolioArena/internal/model"
	"PortfolioArena/internal/snapshot"
	"PortfolioArena/internal/store"

	"github.com/google/uuid"
)

// TickerSyncer fetches and stores missing prices for one ticker.
type TickerSyncer interface {
	SyncTicker(ctx context.Context, ticker string) (int, error)
}

// AgentBuilder recomputes the snapshots of one agent.
type AgentBuilder interface {
	Build(ctx context.Context, agent model.Agent) (snapshot.Result, error)
}

// Report describes one refresh run.
type Report struct {
	RunID         string            `json:"runId"`
	StartedAt     time.Time         `json:"startedAt"`
	FinishedAt    time.Time         `json:"finishedAt"`
	Tickers       map[string]int    `json:"tickers"`
	Agents        []snapshot.Result `json:"agents,omitempty"`
	TotalInserted int               `json:"totalInserted"`
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Orchestrator runs price sync followed by snapshot recomputation.
// Concurrent triggers are serialized.
type Orchestrator struct {
	Store     store.Store
	Syncer    TickerSyncer
	Builder   AgentBuilder
	Benchmark string

	mu sync.Mutex
}

// New creates an Orchestrator. An empty benchmark falls back to model.DefaultBenchmark.
func New(s store.Store, syncer TickerSyncer, builder AgentBuilder, benchmark string) *Orchestrator {
	benchmark = strings.ToUpper(strings.TrimSpace(benchmark))
	if benchmark == "" {
		benchmark = model.DefaultBenchmark
	}
	return &Orchestrator{Store: s, Syncer: syncer, Builder: builder, Benchmark: benchmark}
}

// Tickers returns the sorted union of every held ticker and the benchmark.
func (o *Orchestrator) Tickers(ctx context.Context) ([]string, error) {
	held, err := o.Store.ListHoldingTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	seen := map[string]bool{o.Benchmark: true}
	tickers := []string{o.Benchmark}
	for _, t := range held {
		if !seen[t] {
			seen[t] = true
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

// SyncAllPrices syncs every tracked ticker without recomputing snapshots.
func (o *Orchestrator) SyncAllPrices(ctx context.Context) (*Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	report := newReport()
	err := o.syncPrices(ctx, report)
	report.FinishedAt = time.Now()
	return report, err
}

// SyncAndRecompute syncs every tracked ticker, then rebuilds the snapshots of
// every agent. A store failure aborts the run; provider failures do not.
func (o *Orchestrator) SyncAndRecompute(ctx context.Context) (*Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	report := newReport()
	log.Printf("[INFO] refresh %s started", report.RunID)

	if err := o.syncPrices(ctx, report); err != nil {
		report.FinishedAt = time.Now()
		return report, err
	}

	agents, err := o.Store.ListAgents(ctx)
	if err != nil {
		report.FinishedAt = time.Now()
		return report, fmt.Errorf("list agents: %w", err)
	}
	for _, a := range agents {
		res, err := o.Builder.Build(ctx, a)
		if err != nil {
			report.FinishedAt = time.Now()
			return report, err
		}
		report.Agents = append(report.Agents, res)
	}

	report.FinishedAt = time.Now()
	log.Printf("[INFO] refresh %s done in %s: %d price rows, %d agents",
		report.RunID, report.Duration().Round(time.Millisecond), report.TotalInserted, len(report.Agents))
	return report, nil
}

func (o *Orchestrator) syncPrices(ctx context.Context, report *Report) error {
	tickers, err := o.Tickers(ctx)
	if err != nil {
		return err
	}
	for _, t := range tickers {
		n, err := o.Syncer.SyncTicker(ctx, t)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", report.RunID, err)
		}
		report.Tickers[t] = n
		report.TotalInserted += n
	}
	return nil
}

func newReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Tickers:   make(map[string]int),
	}
}
