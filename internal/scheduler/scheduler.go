package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"PortfolioArena/internal/model"
	"PortfolioArena/internal/notifier"
	"PortfolioArena/internal/refresh"
	"PortfolioArena/internal/report"
	"PortfolioArena/internal/store"

	"github.com/robfig/cron/v3"
)

// Refresher runs a full price sync and snapshot rebuild.
type Refresher interface {
	SyncAndRecompute(ctx context.Context) (*refresh.Report, error)
}

// Sender delivers a message to the operator chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron tasks and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Refresh  Refresher
	Reports  *report.Service
	Notifier Sender // nil when no chat is configured
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r Refresher, reports *report.Service, n Sender) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Refresh:  r,
		Reports:  reports,
		Notifier: n,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// RegisterAll registers the price sync task.
func (s *Scheduler) RegisterAll(syncCron string) error {
	if _, err := s.Cron.AddFunc(syncCron, s.syncTask); err != nil {
		return fmt.Errorf("register sync task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunSyncNow executes the sync task immediately (for RUN_ON_START).
func (s *Scheduler) RunSyncNow() {
	s.syncTask()
}

func (s *Scheduler) syncTask() {
	log.Println("[INFO] running sync task")
	rep, err := s.Refresh.SyncAndRecompute(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] sync task: %v", err)
		s.trySend(fmt.Sprintf("❌ Price sync failed: %v", err))
		return
	}

	msg := notifier.FormatSyncReport(rep)
	board, err := s.Reports.Leaderboard(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] leaderboard after sync: %v", err)
	} else {
		msg += "\n" + notifier.FormatLeaderboard(board, s.Now())
	}
	s.trySend(msg)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	command := strings.ToLower(fields[0])
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	switch command {
	case "/sync":
		rep, err := s.Refresh.SyncAndRecompute(ctx)
		if err != nil {
			log.Printf("[ERROR] /sync: %v", err)
			return "❌ Price sync failed"
		}
		return notifier.FormatSyncReport(rep)
	case "/leaderboard", "/top":
		board, err := s.Reports.Leaderboard(ctx)
		if err != nil {
			log.Printf("[ERROR] /leaderboard: %v", err)
			return "❌ Failed to load leaderboard"
		}
		return notifier.FormatLeaderboard(board, s.Now())
	case "/agent":
		if len(fields) < 2 {
			return "Usage: /agent &lt;id&gt; [timeframe]"
		}
		tf := model.TimeframeAll
		if len(fields) > 2 {
			tf = model.ParseTimeframe(fields[2])
		}
		return s.agentCard(ctx, fields[1], tf)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) agentCard(ctx context.Context, id string, tf model.Timeframe) string {
	a, err := s.Reports.Store.GetAgent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("Unknown agent: %s", id)
	}
	if err != nil {
		log.Printf("[ERROR] /agent %s: %v", id, err)
		return "❌ Failed to load agent"
	}
	perf, err := s.Reports.Performance(ctx, id, tf)
	if err != nil {
		log.Printf("[ERROR] /agent %s: %v", id, err)
		return "❌ Failed to load agent"
	}
	return notifier.FormatPerformance(a.Name, perf)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
