package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradecraft/internal/analytics"
	"tradecraft/internal/domain"
	"tradecraft/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.TradeRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency; foreign keys so legs cascade on
	// trade deletion.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
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

	// SQLite handles concurrency internally, but the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		asset_type TEXT NOT NULL
			CHECK(asset_type IN ('stock', 'option', 'future', 'crypto', 'forex', 'other')),
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP DEFAULT NULL,
		notes TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS trade_legs (
		id TEXT PRIMARY KEY,
		trade_id TEXT NOT NULL,
		action TEXT NOT NULL,
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		fee REAL NOT NULL DEFAULT 0,
		executed_at TIMESTAMP NOT NULL,
		FOREIGN KEY(trade_id) REFERENCES trades(id) ON DELETE CASCADE
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_trades_opened_at ON trades (opened_at);
	CREATE INDEX IF NOT EXISTS idx_trade_legs_trade_time ON trade_legs (trade_id, executed_at);
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

// CreateTrade saves a new trade together with its legs.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for trade %s: %w", trade.ID, err)
	}
	defer tx.Rollback()

	const insertTrade = `
	INSERT INTO trades (id, symbol, asset_type, opened_at, closed_at, notes, tags)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	var closedAt sql.NullTime
	if !trade.ClosedAt.IsZero() {
		closedAt = sql.NullTime{Time: trade.ClosedAt, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, insertTrade,
		trade.ID, trade.Symbol, trade.AssetType, trade.OpenedAt, closedAt,
		trade.Notes, trade.Tags.String()); err != nil {
		return fmt.Errorf("failed to insert trade for symbol %s: %w", trade.Symbol, err)
	}

	for _, leg := range trade.Legs {
		if err := insertLeg(ctx, tx, trade.ID, leg); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trade %s: %w", trade.ID, err)
	}
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol})
	return nil
}

// AppendLeg adds an execution to an existing trade and recomputes the
// trade's closing timestamp from the full leg list: set when the open
// quantity nets to zero, cleared when a later leg reopens the position.
func (r *Repository) AppendLeg(ctx context.Context, tradeID string, leg domain.Leg) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for trade %s: %w", tradeID, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE id = ?`, tradeID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check trade %s: %w", tradeID, err)
	}
	if exists == 0 {
		return fmt.Errorf("trade %s not found for leg append: %w", tradeID, ports.ErrNotFound)
	}

	leg.TradeID = tradeID
	if err := insertLeg(ctx, tx, tradeID, leg); err != nil {
		return err
	}

	legs, err := queryLegs(ctx, tx, tradeID)
	if err != nil {
		return err
	}
	closedAt, closed, err := analytics.CloseTime(legs)
	if err != nil {
		return fmt.Errorf("failed to derive close time for trade %s: %w", tradeID, err)
	}
	var closedVal sql.NullTime
	if closed {
		closedVal = sql.NullTime{Time: closedAt, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE trades SET opened_at = ?, closed_at = ? WHERE id = ?`,
		legs[0].ExecutedAt, closedVal, tradeID); err != nil {
		return fmt.Errorf("failed to update close time for trade %s: %w: %v", tradeID, ports.ErrUpdateFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit leg for trade %s: %w", tradeID, err)
	}
	r.logger.Debug(ctx, "Leg appended", map[string]interface{}{
		"tradeID": tradeID, "legID": leg.ID, "action": leg.Action, "closed": closed,
	})
	return nil
}

// FindByID retrieves a trade with its legs eagerly loaded.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Trade, error) {
	const query = `
	SELECT id, symbol, asset_type, opened_at, closed_at, notes, tags
	FROM trades WHERE id = ?`

	trade, err := scanTrade(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found by ID", map[string]interface{}{"tradeID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade by ID %s: %w", id, err)
	}
	trade.Legs, err = queryLegs(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// FindAll retrieves all trades with legs loaded, ordered by opening time
// ascending.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Trade, error) {
	const query = `
	SELECT id, symbol, asset_type, opened_at, closed_at, notes, tags
	FROM trades ORDER BY opened_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindAll: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}

	// One pass over all legs instead of a query per trade.
	legRows, err := r.db.QueryContext(ctx, `
	SELECT id, trade_id, action, quantity, price, fee, executed_at
	FROM trade_legs ORDER BY trade_id, executed_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query legs: %w", err)
	}
	defer legRows.Close()

	legsByTrade := make(map[string][]domain.Leg, len(trades))
	for legRows.Next() {
		leg, err := scanLeg(legRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leg during FindAll: %w", err)
		}
		legsByTrade[leg.TradeID] = append(legsByTrade[leg.TradeID], leg)
	}
	if err = legRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leg rows: %w", err)
	}
	for _, trade := range trades {
		trade.Legs = legsByTrade[trade.ID]
	}
	return trades, nil
}

// FindLegs retrieves the legs of a trade ordered by execution time.
func (r *Repository) FindLegs(ctx context.Context, tradeID string) ([]domain.Leg, error) {
	return queryLegs(ctx, r.db, tradeID)
}

// UpdateNotes replaces the free-text journal entry of a trade.
func (r *Repository) UpdateNotes(ctx context.Context, id string, notes string) error {
	return r.updateColumn(ctx, id, `UPDATE trades SET notes = ? WHERE id = ?`, notes)
}

// SetTags replaces the tag set of a trade. Tags are comma-joined only here,
// at the storage edge.
func (r *Repository) SetTags(ctx context.Context, id string, tags domain.TagSet) error {
	return r.updateColumn(ctx, id, `UPDATE trades SET tags = ? WHERE id = ?`, tags.String())
}

func (r *Repository) updateColumn(ctx context.Context, id, query string, value interface{}) error {
	result, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("failed to update trade %s: %w: %v", id, ports.ErrUpdateFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for trade %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for update: %w", id, ports.ErrNotFound)
	}
	return nil
}

// DeleteTrade removes a trade; legs cascade.
func (r *Repository) DeleteTrade(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade %s: %w: %v", id, ports.ErrDeleteFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete of trade %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// querier covers *sql.DB and *sql.Tx for leg lookups.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func insertLeg(ctx context.Context, tx *sql.Tx, tradeID string, leg domain.Leg) error {
	const query = `
	INSERT INTO trade_legs (id, trade_id, action, quantity, price, fee, executed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		leg.ID, tradeID, leg.Action, leg.Quantity, leg.Price, leg.Fee, leg.ExecutedAt); err != nil {
		return fmt.Errorf("failed to insert leg for trade %s: %w", tradeID, err)
	}
	return nil
}

func queryLegs(ctx context.Context, q querier, tradeID string) ([]domain.Leg, error) {
	const query = `
	SELECT id, trade_id, action, quantity, price, fee, executed_at
	FROM trade_legs WHERE trade_id = ? ORDER BY executed_at ASC`

	rows, err := q.QueryContext(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query legs for trade %s: %w", tradeID, err)
	}
	defer rows.Close()

	legs := make([]domain.Leg, 0)
	for rows.Next() {
		leg, err := scanLeg(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leg for trade %s: %w", tradeID, err)
		}
		legs = append(legs, leg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leg rows for trade %s: %w", tradeID, err)
	}
	return legs, nil
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var closedAt sql.NullTime
	var assetType, tags string
	err := s.Scan(&t.ID, &t.Symbol, &assetType, &t.OpenedAt, &closedAt, &t.Notes, &tags)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	if closedAt.Valid {
		t.ClosedAt = closedAt.Time
	}
	t.AssetType = domain.AssetType(assetType)
	t.Tags, err = domain.ParseTags(tags)
	if err != nil {
		return nil, fmt.Errorf("stored tags for trade %s are invalid: %w", t.ID, err)
	}
	return t, nil
}

// scanLeg scans a row into a domain.Leg struct.
func scanLeg(s scanner) (domain.Leg, error) {
	var leg domain.Leg
	var action string
	err := s.Scan(&leg.ID, &leg.TradeID, &action, &leg.Quantity, &leg.Price, &leg.Fee, &leg.ExecutedAt)
	if err != nil {
		return domain.Leg{}, err
	}
	leg.Action = domain.LegAction(action)
	return leg, nil
}
