package contracts

import "time"

// BlockSource is the tagged union of inputs a block can be built from.
// Implementations: EquityCurveSource, TradeSource.
type BlockSource interface {
	sourceKind() string
}

// EquityCurveSource is a block that already carries equity-curve entries
type EquityCurveSource struct {
	Entries []EquityCurveEntry `json:"entries"`
}

// TradeSource is a block built from closed trades and optional daily account logs.
// DailyLogs take precedence when present.
type TradeSource struct {
	Trades          []Trade    `json:"trades"`
	DailyLogs       []DailyLog `json:"daily_logs,omitempty"`
	StartingCapital float64    `json:"starting_capital"`
}

func (EquityCurveSource) sourceKind() string { return KindEquity }
func (TradeSource) sourceKind() string       { return KindTrades }

// SourceKind returns "equity" or "trades"
func SourceKind(s BlockSource) string {
	return s.sourceKind()
}

// Block kinds
const (
	KindEquity = "equity"
	KindTrades = "trades"
)

// Trade is one closed position
type Trade struct {
	DateOpened   time.Time `json:"date_opened"`
	DateClosed   time.Time `json:"date_closed"`
	StrategyName string    `json:"strategy_name"`
	PL           float64   `json:"pl"` // net of commissions
	Commissions  float64   `json:"commissions"`
	MarginReq    float64   `json:"margin_req"`
	Contracts    int       `json:"contracts"`
}

// DailyLog is one end-of-day account record exported by the broker
type DailyLog struct {
	Date         time.Time `json:"date"`
	NetLiquidity float64   `json:"net_liquidity"`
	DailyPL      float64   `json:"daily_pl"`
	StrategyName string    `json:"strategy_name"`
}

// Block describes one stored block
type Block struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Kind            string    `json:"kind"` // equity, trades
	Description     string    `json:"description,omitempty"`
	StartingCapital float64   `json:"starting_capital,omitempty"` // trades 블록 전용
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
