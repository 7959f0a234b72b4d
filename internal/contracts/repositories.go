package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// BlockDataSource loads fully-materialized block data
type BlockDataSource interface {
	ListBlocks(ctx context.Context) ([]Block, error)
	GetBlock(ctx context.Context, blockID string) (*Block, error)
	GetEntries(ctx context.Context, blockID string) ([]EquityCurveEntry, error)
	GetTrades(ctx context.Context, blockID string) ([]Trade, error)
	GetDailyLogs(ctx context.Context, blockID string) ([]DailyLog, error)
}

// SnapshotStore persists computed snapshots
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
	LatestSnapshot(ctx context.Context, blockID string) (*Snapshot, error)
}

// BenchmarkSource provides a market index as equity-curve entries
type BenchmarkSource interface {
	FetchIndex(ctx context.Context, symbol string, from, to time.Time) ([]EquityCurveEntry, error)
}

// Snapshot bundles entries, statistics and chart data of one block
type Snapshot struct {
	ID             string               `json:"id"`
	BlockID        string               `json:"block_id"`
	RiskFreeRate   float64              `json:"risk_free_rate"`
	Entries        []EquityCurveEntry   `json:"entries"`
	PortfolioStats PortfolioStats       `json:"portfolio_stats"`
	ChartData      EquityCurveChartData `json:"chart_data"`
	ComputedAt     time.Time            `json:"computed_at"`
}
