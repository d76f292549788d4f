package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"PortfolioArena/internal/model"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		RateLimitMS int    `yaml:"rate_limit_ms"`
	} `yaml:"data_source"`
	Market struct {
		Benchmark string `yaml:"benchmark"`
		FloorDate string `yaml:"floor_date"`
	} `yaml:"market"`
	Schedule struct {
		SyncCron string `yaml:"sync_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	SeedDefaults *bool  `yaml:"seed_defaults"`
	Proxy        string `yaml:"proxy"`
}

const minRateLimitMS = 500

// cronParser accepts the six-field expressions used by the scheduler.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("RATE_LIMIT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_MS: %w", err)
		}
		cfg.DataSource.RateLimitMS = ms
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("BENCHMARK_TICKER"); v != "" {
		cfg.Market.Benchmark = v
	}
	if v := os.Getenv("PRICE_FLOOR_DATE"); v != "" {
		cfg.Market.FloorDate = v
	}
	if v := os.Getenv("CRON_SYNC"); v != "" {
		cfg.Schedule.SyncCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}

	// Defaults
	if cfg.DataSource.RateLimitMS == 0 {
		cfg.DataSource.RateLimitMS = minRateLimitMS
	}
	cfg.Market.Benchmark = strings.ToUpper(strings.TrimSpace(cfg.Market.Benchmark))
	if cfg.Market.Benchmark == "" {
		cfg.Market.Benchmark = model.DefaultBenchmark
	}
	if cfg.Market.FloorDate == "" {
		cfg.Market.FloorDate = "2026-02-10"
	}
	if cfg.Schedule.SyncCron == "" {
		cfg.Schedule.SyncCron = "0 30 22 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/portfolio.db"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.SeedDefaults == nil {
		seed := true
		cfg.SeedDefaults = &seed
	}

	return cfg, nil
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, err := model.ParseDate(c.Market.FloorDate); err != nil {
		return fmt.Errorf("market.floor_date: %w", err)
	}
	if c.DataSource.RateLimitMS < minRateLimitMS {
		return fmt.Errorf("data_source.rate_limit_ms must be at least %d", minRateLimitMS)
	}
	if strings.TrimSpace(c.Schedule.SyncCron) == "" {
		return fmt.Errorf("schedule.sync_cron is required")
	}
	if _, err := cronParser.Parse(c.Schedule.SyncCron); err != nil {
		return fmt.Errorf("schedule.sync_cron: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether a bot is configured.
func (c *Config) TelegramEnabled() bool { return c.Telegram.BotToken != "" }

// FloorDate returns the parsed price floor date. Call Validate first.
func (c *Config) FloorDate() model.Date {
	d, _ := model.ParseDate(c.Market.FloorDate)
	return d
}

func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.DataSource.RateLimitMS) * time.Millisecond
}
