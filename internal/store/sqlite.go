package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"PortfolioArena/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists everything to a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writers
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps PRAGMAs and in-memory databases consistent
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS agents (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			color           TEXT NOT NULL,
			inception_date  TEXT NOT NULL,
			initial_capital REAL NOT NULL DEFAULT 100000,
			created_at      TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS holdings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			agent_id       TEXT NOT NULL REFERENCES agents(id),
			ticker         TEXT NOT NULL,
			allocation_pct REAL NOT NULL,
			shares         REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_holdings_agent ON holdings(agent_id)`,

		`CREATE TABLE IF NOT EXISTS daily_prices (
			ticker    TEXT NOT NULL,
			date      TEXT NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL NOT NULL,
			adj_close REAL,
			volume    INTEGER,
			PRIMARY KEY (ticker, date)
		)`,

		`CREATE TABLE IF NOT EXISTS portfolio_snapshots (
			agent_id     TEXT NOT NULL REFERENCES agents(id),
			date         TEXT NOT NULL,
			total_value  REAL NOT NULL,
			daily_return REAL,
			PRIMARY KEY (agent_id, date)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetMaxDate(ctx context.Context, ticker string) (model.Date, bool, error) {
	var maxDate sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM daily_prices WHERE ticker = ?`, ticker).Scan(&maxDate)
	if err != nil {
		return model.Date{}, false, fmt.Errorf("max date for %s: %w", ticker, err)
	}
	if !maxDate.Valid {
		return model.Date{}, false, nil
	}
	d, err := model.ParseDate(maxDate.String)
	if err != nil {
		return model.Date{}, false, err
	}
	return d, true, nil
}

func (s *SQLiteStore) InsertPriceIfAbsent(ctx context.Context, p model.DailyPrice) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO daily_prices
		(ticker, date, open, high, low, close, adj_close, volume)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(ticker, date) DO NOTHING`,
		p.Ticker, p.Date, p.Open, p.High, p.Low, p.Close, p.AdjClose, p.Volume,
	)
	if err != nil {
		return false, fmt.Errorf("insert price %s %s: %w", p.Ticker, p.Date, err)
	}
	return inserted(res)
}

func (s *SQLiteStore) GetPrices(ctx context.Context, ticker string) ([]model.PricePoint, error) {
	return s.GetPricesSince(ctx, ticker, model.Date{})
}

func (s *SQLiteStore) GetPricesSince(ctx context.Context, ticker string, from model.Date) ([]model.PricePoint, error) {
	query := `SELECT date, close FROM daily_prices WHERE ticker = ?`
	args := []any{ticker}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	query += ` ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prices %s: %w", ticker, err)
	}
	defer rows.Close()

	var out []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("scan price %s: %w", ticker, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const agentColumns = `id, name, color, inception_date, initial_capital, created_at`

func scanAgent(row interface{ Scan(...any) error }) (model.Agent, error) {
	var a model.Agent
	var createdAt string
	if err := row.Scan(&a.ID, &a.Name, &a.Color, &a.InceptionDate, &a.InitialCapital, &createdAt); err != nil {
		return a, err
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		a.CreatedAt = t
	}
	return a, nil
}

func (s *SQLiteStore) ListAgents(ctx context.Context) ([]model.Agent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var out []model.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetAgent(ctx context.Context, id string) (*model.Agent, error) {
	a, err := scanAgent(s.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("agent %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get agent %s: %w", id, err)
	}
	return &a, nil
}

func (s *SQLiteStore) CountAgents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) CreateAgent(ctx context.Context, a model.Agent, holdings []model.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents WHERE id = ?`, a.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check agent %s: %w", a.ID, err)
	}
	if exists > 0 {
		return fmt.Errorf("agent %s: %w", a.ID, ErrDuplicate)
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO agents (`+agentColumns+`) VALUES (?,?,?,?,?,?)`,
		a.ID, a.Name, a.Color, a.InceptionDate, a.InitialCapital, a.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert agent %s: %w", a.ID, err)
	}
	for _, h := range holdings {
		_, err := tx.ExecContext(ctx, `INSERT INTO holdings (agent_id, ticker, allocation_pct, shares) VALUES (?,?,?,?)`,
			a.ID, h.Ticker, h.AllocationPct, h.Shares)
		if err != nil {
			return fmt.Errorf("insert holding %s/%s: %w", a.ID, h.Ticker, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetHoldings(ctx context.Context, agentID string) ([]model.Holding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, ticker, allocation_pct, shares FROM holdings WHERE agent_id = ? ORDER BY id`, agentID)
	if err != nil {
		return nil, fmt.Errorf("query holdings %s: %w", agentID, err)
	}
	defer rows.Close()

	var out []model.Holding
	for rows.Next() {
		var h model.Holding
		var shares sql.NullFloat64
		if err := rows.Scan(&h.ID, &h.AgentID, &h.Ticker, &h.AllocationPct, &shares); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		if shares.Valid {
			h.Shares = model.Float(shares.Float64)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListHoldingTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM holdings ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateHoldingShares(ctx context.Context, holdingID int64, shares float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `UPDATE holdings SET shares = ? WHERE id = ?`, shares, holdingID)
	if err != nil {
		return fmt.Errorf("update shares of holding %d: %w", holdingID, err)
	}
	return nil
}

func (s *SQLiteStore) InsertSnapshotIfAbsent(ctx context.Context, snap model.PortfolioSnapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO portfolio_snapshots
		(agent_id, date, total_value, daily_return)
		VALUES (?,?,?,?)
		ON CONFLICT(agent_id, date) DO NOTHING`,
		snap.AgentID, snap.Date, snap.TotalValue, snap.DailyReturn,
	)
	if err != nil {
		return false, fmt.Errorf("insert snapshot %s %s: %w", snap.AgentID, snap.Date, err)
	}
	return inserted(res)
}

func (s *SQLiteStore) GetSnapshots(ctx context.Context, agentID string, from model.Date) ([]model.PortfolioSnapshot, error) {
	query := `SELECT agent_id, date, total_value, daily_return FROM portfolio_snapshots WHERE agent_id = ?`
	args := []any{agentID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	query += ` ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots %s: %w", agentID, err)
	}
	defer rows.Close()

	var out []model.PortfolioSnapshot
	for rows.Next() {
		var snap model.PortfolioSnapshot
		var ret sql.NullFloat64
		if err := rows.Scan(&snap.AgentID, &snap.Date, &snap.TotalValue, &ret); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if ret.Valid {
			snap.DailyReturn = model.Float(ret.Float64)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

var _ Store = (*SQLiteStore)(nil)
