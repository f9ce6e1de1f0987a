// Package sqlite persists the simulator's documents. Portfolios, scenarios
// and results are stored document-style: scalar columns for queryable
// fields, JSON columns for the embedded collections.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements every ports repository interface on a single
// SQLite database.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the database and bootstraps the schema.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/tradetutor.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency between the game clock and API reads.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// The Go driver benefits from a single connection; SQLite serializes
	// writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		display_name TEXT NOT NULL,
		photo_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS portfolios (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		cash TEXT NOT NULL,
		positions TEXT NOT NULL,
		performance TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		portfolio_id TEXT NOT NULL,
		asset_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price TEXT NOT NULL,
		total TEXT NOT NULL,
		executed_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		category TEXT NOT NULL,
		initial_cash TEXT NOT NULL,
		duration INTEGER NOT NULL,
		objectives TEXT NOT NULL,
		conditions TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scenario_results (
		id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		final_value TEXT NOT NULL,
		return_percent REAL NOT NULL,
		objectives_completed INTEGER NOT NULL,
		total_objectives INTEGER NOT NULL,
		trades TEXT NOT NULL,
		score INTEGER NOT NULL,
		feedback TEXT NOT NULL,
		strengths TEXT NOT NULL,
		improvements TEXT NOT NULL,
		completed_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS materials (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_type TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		content TEXT NOT NULL,
		uploaded_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_portfolios_user_created ON portfolios (user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_trades_portfolio_executed ON trades (portfolio_id, executed_at);
	CREATE INDEX IF NOT EXISTS idx_results_user_completed ON scenario_results (user_id, completed_at);
	CREATE INDEX IF NOT EXISTS idx_materials_user_uploaded ON materials (user_id, uploaded_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- PortfolioRepository ---

// SavePortfolio inserts or fully replaces a portfolio document.
func (r *Repository) SavePortfolio(ctx context.Context, pf *domain.Portfolio) error {
	positions, err := json.Marshal(pf.Positions)
	if err != nil {
		return fmt.Errorf("failed to encode positions for portfolio %s: %w", pf.ID, err)
	}
	performance, err := json.Marshal(pf.Performance)
	if err != nil {
		return fmt.Errorf("failed to encode performance for portfolio %s: %w", pf.ID, err)
	}

	const query = `
	INSERT INTO portfolios (id, user_id, cash, positions, performance, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		cash = excluded.cash,
		positions = excluded.positions,
		performance = excluded.performance,
		updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		pf.ID, pf.UserID, pf.Cash.String(), string(positions), string(performance), pf.CreatedAt, pf.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save portfolio %s: %w", pf.ID, err)
	}
	r.logger.Debug(ctx, "Portfolio saved", map[string]interface{}{"portfolioID": pf.ID})
	return nil
}

// FindPortfolio retrieves a portfolio by id. Returns nil, nil if not found.
func (r *Repository) FindPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	const query = `
	SELECT id, user_id, cash, positions, performance, created_at, updated_at
	FROM portfolios WHERE id = ?`

	pf, err := scanPortfolio(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query portfolio %s: %w", id, err)
	}
	return pf, nil
}

// FindLatestByUser retrieves the user's most recently created portfolio.
func (r *Repository) FindLatestByUser(ctx context.Context, userID string) (*domain.Portfolio, error) {
	const query = `
	SELECT id, user_id, cash, positions, performance, created_at, updated_at
	FROM portfolios WHERE user_id = ?
	ORDER BY created_at DESC LIMIT 1`

	pf, err := scanPortfolio(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest portfolio for user %s: %w", userID, err)
	}
	return pf, nil
}

// --- TradeRepository ---

// SaveTrade appends a trade record.
func (r *Repository) SaveTrade(ctx context.Context, trade *domain.Trade) error {
	const query = `
	INSERT INTO trades (id, portfolio_id, asset_id, symbol, side, quantity, price, total, executed_at, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.PortfolioID, trade.AssetID, trade.Symbol, string(trade.Side),
		trade.Quantity, trade.Price.String(), trade.Total.String(), trade.Timestamp, string(trade.Status))
	if err != nil {
		return fmt.Errorf("failed to insert trade %s for symbol %s: %w", trade.ID, trade.Symbol, err)
	}
	r.logger.Debug(ctx, "Trade saved", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol})
	return nil
}

// FindByPortfolio retrieves all trades for a portfolio, newest first.
func (r *Repository) FindByPortfolio(ctx context.Context, portfolioID string) ([]*domain.Trade, error) {
	const query = `
	SELECT id, portfolio_id, asset_id, symbol, side, quantity, price, total, executed_at, status
	FROM trades WHERE portfolio_id = ?
	ORDER BY executed_at DESC`

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for portfolio %s: %w", portfolioID, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindByPortfolio: %w", err)
		}
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// --- ScenarioRepository ---

// SaveScenario inserts a scenario document.
func (r *Repository) SaveScenario(ctx context.Context, sc *domain.Scenario) error {
	objectives, err := json.Marshal(sc.Objectives)
	if err != nil {
		return fmt.Errorf("failed to encode objectives for scenario %s: %w", sc.ID, err)
	}
	conditions, err := json.Marshal(sc.Conditions)
	if err != nil {
		return fmt.Errorf("failed to encode conditions for scenario %s: %w", sc.ID, err)
	}

	const query = `
	INSERT INTO scenarios (id, title, description, difficulty, category, initial_cash, duration,
	                       objectives, conditions, is_active, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		sc.ID, sc.Title, sc.Description, string(sc.Difficulty), string(sc.Category),
		sc.InitialCash.String(), sc.Duration, string(objectives), string(conditions),
		boolToInt(sc.IsActive), sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert scenario %s: %w", sc.ID, err)
	}
	r.logger.Debug(ctx, "Scenario saved", map[string]interface{}{"scenarioID": sc.ID, "title": sc.Title})
	return nil
}

// FindScenario retrieves a scenario by id. Returns nil, nil if not found.
func (r *Repository) FindScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	const query = `
	SELECT id, title, description, difficulty, category, initial_cash, duration,
	       objectives, conditions, is_active, created_at
	FROM scenarios WHERE id = ?`

	sc, err := scanScenario(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query scenario %s: %w", id, err)
	}
	return sc, nil
}

// FindAllScenarios retrieves all stored scenarios, newest first.
func (r *Repository) FindAllScenarios(ctx context.Context) ([]*domain.Scenario, error) {
	const query = `
	SELECT id, title, description, difficulty, category, initial_cash, duration,
	       objectives, conditions, is_active, created_at
	FROM scenarios ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make([]*domain.Scenario, 0)
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario during FindAllScenarios: %w", err)
		}
		scenarios = append(scenarios, sc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scenario rows: %w", err)
	}
	return scenarios, nil
}

// --- ResultRepository ---

// SaveResult appends a scenario result.
func (r *Repository) SaveResult(ctx context.Context, res *domain.ScenarioResult) error {
	trades, err := json.Marshal(res.Trades)
	if err != nil {
		return fmt.Errorf("failed to encode trades for result %s: %w", res.ID, err)
	}
	strengths, err := json.Marshal(res.Strengths)
	if err != nil {
		return fmt.Errorf("failed to encode strengths for result %s: %w", res.ID, err)
	}
	improvements, err := json.Marshal(res.Improvements)
	if err != nil {
		return fmt.Errorf("failed to encode improvements for result %s: %w", res.ID, err)
	}

	const query = `
	INSERT INTO scenario_results (id, scenario_id, user_id, final_value, return_percent,
	                              objectives_completed, total_objectives, trades, score,
	                              feedback, strengths, improvements, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		res.ID, res.ScenarioID, res.UserID, res.FinalValue.String(), res.ReturnPercent,
		res.ObjectivesCompleted, res.TotalObjectives, string(trades), res.Score,
		res.Feedback, string(strengths), string(improvements), res.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert scenario result %s: %w", res.ID, err)
	}
	r.logger.Debug(ctx, "Scenario result saved", map[string]interface{}{"resultID": res.ID, "score": res.Score})
	return nil
}

// FindResultsByUser retrieves a user's most recent results, up to limit.
func (r *Repository) FindResultsByUser(ctx context.Context, userID string, limit int) ([]*domain.ScenarioResult, error) {
	const query = `
	SELECT id, scenario_id, user_id, final_value, return_percent, objectives_completed,
	       total_objectives, trades, score, feedback, strengths, improvements, completed_at
	FROM scenario_results WHERE user_id = ?
	ORDER BY completed_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for user %s: %w", userID, err)
	}
	defer rows.Close()

	results := make([]*domain.ScenarioResult, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result during FindResultsByUser: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

// --- MaterialRepository ---

// SaveMaterial inserts an uploaded material document.
func (r *Repository) SaveMaterial(ctx context.Context, m *domain.UploadedMaterial) error {
	const query = `
	INSERT INTO materials (id, user_id, file_name, file_type, file_size, content, uploaded_at, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.FileName, m.FileType, m.FileSize, m.Content, m.UploadedAt, string(m.Status))
	if err != nil {
		return fmt.Errorf("failed to insert material %s: %w", m.FileName, err)
	}
	r.logger.Debug(ctx, "Material saved", map[string]interface{}{"materialID": m.ID, "fileName": m.FileName})
	return nil
}

// FindMaterialsByUser retrieves a user's materials, newest first.
func (r *Repository) FindMaterialsByUser(ctx context.Context, userID string) ([]*domain.UploadedMaterial, error) {
	const query = `
	SELECT id, user_id, file_name, file_type, file_size, content, uploaded_at, status
	FROM materials WHERE user_id = ?
	ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials for user %s: %w", userID, err)
	}
	defer rows.Close()

	materials := make([]*domain.UploadedMaterial, 0)
	for rows.Next() {
		m := &domain.UploadedMaterial{}
		var status string
		if err := rows.Scan(&m.ID, &m.UserID, &m.FileName, &m.FileType, &m.FileSize, &m.Content, &m.UploadedAt, &status); err != nil {
			return nil, fmt.Errorf("failed to scan material during FindMaterialsByUser: %w", err)
		}
		m.Status = domain.MaterialStatus(status)
		materials = append(materials, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating material rows: %w", err)
	}
	return materials, nil
}

// UpdateMaterialStatus sets the processing status of a material.
func (r *Repository) UpdateMaterialStatus(ctx context.Context, id string, status domain.MaterialStatus) error {
	const query = `UPDATE materials SET status = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update material %s status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for material %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("material %s not found for status update: %w", id, ports.ErrNotFound)
	}
	return nil
}

// DeleteMaterial removes a material document.
func (r *Repository) DeleteMaterial(ctx context.Context, id string) error {
	const query = `DELETE FROM materials WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete material %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete material %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("material %s not found for delete: %w", id, ports.ErrNotFound)
	}
	return nil
}

// --- UserRepository ---

// SaveUser inserts or replaces a user document.
func (r *Repository) SaveUser(ctx context.Context, u *domain.User) error {
	const query = `
	INSERT INTO users (id, email, display_name, photo_url, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		email = excluded.email,
		display_name = excluded.display_name,
		photo_url = excluded.photo_url`

	_, err := r.db.ExecContext(ctx, query, u.ID, u.Email, u.DisplayName, u.PhotoURL, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", u.ID, err)
	}
	return nil
}

// FindUser retrieves a user by id. Returns nil, nil if not found.
func (r *Repository) FindUser(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, email, display_name, photo_url, created_at FROM users WHERE id = ?`
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user %s: %w", id, err)
	}
	return u, nil
}

// --- Helper Scan Functions ---

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPortfolio(s scanner) (*domain.Portfolio, error) {
	pf := &domain.Portfolio{}
	var cash, positions, performance string
	err := s.Scan(&pf.ID, &pf.UserID, &cash, &positions, &performance, &pf.CreatedAt, &pf.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if pf.Cash, err = decimal.NewFromString(cash); err != nil {
		return nil, fmt.Errorf("invalid cash value %q: %w", cash, err)
	}
	if err := json.Unmarshal([]byte(positions), &pf.Positions); err != nil {
		return nil, fmt.Errorf("invalid positions document: %w", err)
	}
	if err := json.Unmarshal([]byte(performance), &pf.Performance); err != nil {
		return nil, fmt.Errorf("invalid performance document: %w", err)
	}
	if pf.Positions == nil {
		pf.Positions = make(map[string]*domain.Position)
	}
	return pf, nil
}

func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var side, status, price, total string
	err := s.Scan(&t.ID, &t.PortfolioID, &t.AssetID, &t.Symbol, &side, &t.Quantity, &price, &total, &t.Timestamp, &status)
	if err != nil {
		return nil, err
	}
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid price value %q: %w", price, err)
	}
	if t.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("invalid total value %q: %w", total, err)
	}
	t.Side = domain.TradeSide(side)
	t.Status = domain.TradeStatus(status)
	return t, nil
}

func scanScenario(s scanner) (*domain.Scenario, error) {
	sc := &domain.Scenario{}
	var difficulty, category, initialCash, objectives, conditions string
	var isActive int
	err := s.Scan(&sc.ID, &sc.Title, &sc.Description, &difficulty, &category, &initialCash,
		&sc.Duration, &objectives, &conditions, &isActive, &sc.CreatedAt)
	if err != nil {
		return nil, err
	}
	if sc.InitialCash, err = decimal.NewFromString(initialCash); err != nil {
		return nil, fmt.Errorf("invalid initial cash value %q: %w", initialCash, err)
	}
	if err := json.Unmarshal([]byte(objectives), &sc.Objectives); err != nil {
		return nil, fmt.Errorf("invalid objectives document: %w", err)
	}
	if err := json.Unmarshal([]byte(conditions), &sc.Conditions); err != nil {
		return nil, fmt.Errorf("invalid conditions document: %w", err)
	}
	sc.Difficulty = domain.Difficulty(difficulty)
	sc.Category = domain.Category(category)
	sc.IsActive = isActive != 0
	return sc, nil
}

func scanResult(s scanner) (*domain.ScenarioResult, error) {
	res := &domain.ScenarioResult{}
	var finalValue, trades, strengths, improvements string
	err := s.Scan(&res.ID, &res.ScenarioID, &res.UserID, &finalValue, &res.ReturnPercent,
		&res.ObjectivesCompleted, &res.TotalObjectives, &trades, &res.Score,
		&res.Feedback, &strengths, &improvements, &res.CompletedAt)
	if err != nil {
		return nil, err
	}
	if res.FinalValue, err = decimal.NewFromString(finalValue); err != nil {
		return nil, fmt.Errorf("invalid final value %q: %w", finalValue, err)
	}
	if err := json.Unmarshal([]byte(trades), &res.Trades); err != nil {
		return nil, fmt.Errorf("invalid trades document: %w", err)
	}
	if err := json.Unmarshal([]byte(strengths), &res.Strengths); err != nil {
		return nil, fmt.Errorf("invalid strengths document: %w", err)
	}
	if err := json.Unmarshal([]byte(improvements), &res.Improvements); err != nil {
		return nil, fmt.Errorf("invalid improvements document: %w", err)
	}
	return res, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
