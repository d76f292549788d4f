package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"PortfolioArena/internal/agent"
	"PortfolioArena/internal/collector"
	"PortfolioArena/internal/config"
	"PortfolioArena/internal/notifier"
	"PortfolioArena/internal/pricesync"
	"PortfolioArena/internal/refresh"
	"PortfolioArena/internal/report"
	"PortfolioArena/internal/scheduler"
	"PortfolioArena/internal/server"
	"PortfolioArena/internal/snapshot"
	"PortfolioArena/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PortfolioArena starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "memory" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			log.Fatalf("[FATAL] create data dir: %v", err)
		}
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("[FATAL] init sqlite store: %v", err)
		}
		st = ss
	} else {
		st = store.NewMemoryStore()
	}
	defer st.Close()

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	limited := collector.NewRateLimitedFetcher(fetcher, cfg.RateLimit())
	log.Printf("[INFO] data source: %s (min spacing %s)", fetcher.Name(), limited.Interval)

	// Services
	agents := agent.NewService(st)
	reports := report.NewService(st, cfg.Market.Benchmark)
	syncer := pricesync.New(st, limited, cfg.FloorDate())
	orchestrator := refresh.New(st, syncer, snapshot.NewBuilder(st), cfg.Market.Benchmark)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *cfg.SeedDefaults {
		if _, err := agents.SeedDefaults(ctx); err != nil {
			log.Fatalf("[FATAL] seed default agents: %v", err)
		}
	}

	// Telegram is optional
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, orchestrator, reports, sender)
	if err := sched.RegisterAll(cfg.Schedule.SyncCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// HTTP API
	srv := server.New(cfg.HTTP.Addr, server.NewHandler(agents, reports, orchestrator))
	srv.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing sync now")
		go sched.RunSyncNow()
	}

	log.Println("[INFO] PortfolioArena is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] PortfolioArena stopped")
}
