package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// Schema creates the tables the repository reads and writes
const Schema = `
CREATE SCHEMA IF NOT EXISTS blocks;

CREATE TABLE IF NOT EXISTS blocks.blocks (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	kind             TEXT NOT NULL CHECK (kind IN ('equity', 'trades')),
	description      TEXT NOT NULL DEFAULT '',
	starting_capital DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS blocks.equity_entries (
	block_id         TEXT NOT NULL REFERENCES blocks.blocks(id) ON DELETE CASCADE,
	entry_date       TIMESTAMPTZ NOT NULL,
	daily_return_pct DOUBLE PRECISION NOT NULL,
	account_value    DOUBLE PRECISION NOT NULL,
	margin_req       DOUBLE PRECISION NOT NULL DEFAULT 0,
	strategy_name    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS equity_entries_block_idx ON blocks.equity_entries (block_id, entry_date);

CREATE TABLE IF NOT EXISTS blocks.trades (
	block_id      TEXT NOT NULL REFERENCES blocks.blocks(id) ON DELETE CASCADE,
	date_opened   TIMESTAMPTZ NOT NULL,
	date_closed   TIMESTAMPTZ NOT NULL,
	strategy_name TEXT NOT NULL DEFAULT '',
	pl            DOUBLE PRECISION NOT NULL,
	commissions   DOUBLE PRECISION NOT NULL DEFAULT 0,
	margin_req    DOUBLE PRECISION NOT NULL DEFAULT 0,
	contracts     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS trades_block_idx ON blocks.trades (block_id, date_closed);

CREATE TABLE IF NOT EXISTS blocks.daily_logs (
	block_id      TEXT NOT NULL REFERENCES blocks.blocks(id) ON DELETE CASCADE,
	log_date      TIMESTAMPTZ NOT NULL,
	net_liquidity DOUBLE PRECISION NOT NULL,
	daily_pl      DOUBLE PRECISION NOT NULL DEFAULT 0,
	strategy_name TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS daily_logs_block_idx ON blocks.daily_logs (block_id, log_date);

CREATE TABLE IF NOT EXISTS blocks.snapshots (
	id             UUID PRIMARY KEY,
	block_id       TEXT NOT NULL REFERENCES blocks.blocks(id) ON DELETE CASCADE,
	risk_free_rate DOUBLE PRECISION NOT NULL,
	entries        JSONB NOT NULL,
	stats          JSONB NOT NULL,
	chart_data     JSONB NOT NULL,
	computed_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_block_idx ON blocks.snapshots (block_id, computed_at DESC);
`

// Repository implements contracts.BlockDataSource and contracts.SnapshotStore
// ⭐ SSOT: 블록 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new block repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema applies Schema
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// ListBlocks returns all blocks ordered by name
func (r *Repository) ListBlocks(ctx context.Context) ([]contracts.Block, error) {
	query := `
		SELECT id, name, kind, description, starting_capital, created_at, updated_at
		FROM blocks.blocks
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]contracts.Block, 0)
	for rows.Next() {
		var b contracts.Block
		if err := rows.Scan(&b.ID, &b.Name, &b.Kind, &b.Description, &b.StartingCapital, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// GetBlock returns nil, nil when the block does not exist
func (r *Repository) GetBlock(ctx context.Context, blockID string) (*contracts.Block, error) {
	query := `
		SELECT id, name, kind, description, starting_capital, created_at, updated_at
		FROM blocks.blocks
		WHERE id = $1
	`

	var b contracts.Block
	err := r.pool.QueryRow(ctx, query, blockID).Scan(
		&b.ID, &b.Name, &b.Kind, &b.Description, &b.StartingCapital, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", blockID, err)
	}
	return &b, nil
}

// GetEntries returns stored equity entries in date order
func (r *Repository) GetEntries(ctx context.Context, blockID string) ([]contracts.EquityCurveEntry, error) {
	query := `
		SELECT entry_date, daily_return_pct, account_value, margin_req, strategy_name
		FROM blocks.equity_entries
		WHERE block_id = $1
		ORDER BY entry_date ASC
	`

	rows, err := r.pool.Query(ctx, query, blockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []contracts.EquityCurveEntry
	for rows.Next() {
		var e contracts.EquityCurveEntry
		if err := rows.Scan(&e.Date, &e.DailyReturnPct, &e.AccountValue, &e.MarginReq, &e.StrategyName); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetTrades returns closed trades in close order
func (r *Repository) GetTrades(ctx context.Context, blockID string) ([]contracts.Trade, error) {
	query := `
		SELECT date_opened, date_closed, strategy_name, pl, commissions, margin_req, contracts
		FROM blocks.trades
		WHERE block_id = $1
		ORDER BY date_closed ASC
	`

	rows, err := r.pool.Query(ctx, query, blockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []contracts.Trade
	for rows.Next() {
		var t contracts.Trade
		if err := rows.Scan(&t.DateOpened, &t.DateClosed, &t.StrategyName, &t.PL, &t.Commissions, &t.MarginReq, &t.Contracts); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// GetDailyLogs returns daily account logs in date order
func (r *Repository) GetDailyLogs(ctx context.Context, blockID string) ([]contracts.DailyLog, error) {
	query := `
		SELECT log_date, net_liquidity, daily_pl, strategy_name
		FROM blocks.daily_logs
		WHERE block_id = $1
		ORDER BY log_date ASC
	`

	rows, err := r.pool.Query(ctx, query, blockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily logs: %w", err)
	}
	defer rows.Close()

	var logs []contracts.DailyLog
	for rows.Next() {
		var l contracts.DailyLog
		if err := rows.Scan(&l.Date, &l.NetLiquidity, &l.DailyPL, &l.StrategyName); err != nil {
			return nil, fmt.Errorf("failed to scan daily log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ImportEntries upserts the block row and replaces its equity entries
func (r *Repository) ImportEntries(ctx context.Context, block contracts.Block, entries []contracts.EquityCurveEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	block.Kind = contracts.KindEquity
	if err := upsertBlock(ctx, tx, block); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM blocks.equity_entries WHERE block_id = $1`, block.ID); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	// 대량 입력은 COPY 사용
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"blocks", "equity_entries"},
		[]string{"block_id", "entry_date", "daily_return_pct", "account_value", "margin_req", "strategy_name"},
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			return []any{block.ID, e.Date, e.DailyReturnPct, e.AccountValue, e.MarginReq, e.StrategyName}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy entries: %w", err)
	}

	return tx.Commit(ctx)
}

// ImportTrades upserts the block row and replaces its trades and daily logs
func (r *Repository) ImportTrades(ctx context.Context, block contracts.Block, source contracts.TradeSource) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	block.Kind = contracts.KindTrades
	block.StartingCapital = source.StartingCapital
	if err := upsertBlock(ctx, tx, block); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM blocks.trades WHERE block_id = $1`, block.ID)
	batch.Queue(`DELETE FROM blocks.daily_logs WHERE block_id = $1`, block.ID)
	for _, t := range source.Trades {
		batch.Queue(`
			INSERT INTO blocks.trades (block_id, date_opened, date_closed, strategy_name, pl, commissions, margin_req, contracts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			block.ID, t.DateOpened, t.DateClosed, t.StrategyName, t.PL, t.Commissions, t.MarginReq, t.Contracts,
		)
	}
	for _, l := range source.DailyLogs {
		batch.Queue(`
			INSERT INTO blocks.daily_logs (block_id, log_date, net_liquidity, daily_pl, strategy_name)
			VALUES ($1, $2, $3, $4, $5)`,
			block.ID, l.Date, l.NetLiquidity, l.DailyPL, l.StrategyName,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to import trades: %w", err)
	}

	return tx.Commit(ctx)
}

func upsertBlock(ctx context.Context, tx pgx.Tx, b contracts.Block) error {
	query := `
		INSERT INTO blocks.blocks (id, name, kind, description, starting_capital)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			description = EXCLUDED.description,
			starting_capital = EXCLUDED.starting_capital,
			updated_at = now()
	`

	if _, err := tx.Exec(ctx, query, b.ID, b.Name, b.Kind, b.Description, b.StartingCapital); err != nil {
		return fmt.Errorf("failed to upsert block %s: %w", b.ID, err)
	}
	return nil
}

// SaveSnapshot stores a computed snapshot
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *contracts.Snapshot) error {
	entriesJSON, err := json.Marshal(snapshot.Entries)
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}
	statsJSON, err := json.Marshal(snapshot.PortfolioStats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	chartJSON, err := json.Marshal(snapshot.ChartData)
	if err != nil {
		return fmt.Errorf("failed to marshal chart data: %w", err)
	}

	query := `
		INSERT INTO blocks.snapshots (id, block_id, risk_free_rate, entries, stats, chart_data, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		snapshot.ID, snapshot.BlockID, snapshot.RiskFreeRate,
		entriesJSON, statsJSON, chartJSON, snapshot.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns nil, nil when the block has no snapshot
func (r *Repository) LatestSnapshot(ctx context.Context, blockID string) (*contracts.Snapshot, error) {
	query := `
		SELECT id, block_id, risk_free_rate, entries, stats, chart_data, computed_at
		FROM blocks.snapshots
		WHERE block_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`

	var s contracts.Snapshot
	var entriesJSON, statsJSON, chartJSON []byte
	err := r.pool.QueryRow(ctx, query, blockID).Scan(
		&s.ID, &s.BlockID, &s.RiskFreeRate, &entriesJSON, &statsJSON, &chartJSON, &s.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err := json.Unmarshal(entriesJSON, &s.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entries: %w", err)
	}
	if err := json.Unmarshal(statsJSON, &s.PortfolioStats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	if err := json.Unmarshal(chartJSON, &s.ChartData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chart data: %w", err)
	}
	return &s, nil
}
