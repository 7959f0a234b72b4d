package contracts

import "time"

// EquityCurveChartData is the presentation bundle derived from one series
type EquityCurveChartData struct {
	EquityCurve           []EquityPoint           `json:"equity_curve"`
	DrawdownData          []DrawdownPoint         `json:"drawdown_data"`
	MonthlyReturns        map[int]map[int]float64 `json:"monthly_returns"`         // year → month(1..12) → dollars
	MonthlyReturnsPercent map[int]map[int]float64 `json:"monthly_returns_percent"` // year → month → percentage points
	ReturnDistribution    []float64               `json:"return_distribution"`     // daily %, chronological
	RollingMetrics        []RollingMetric         `json:"rolling_metrics"`
	StreakData            StreakData              `json:"streak_data"`
}

// EquityPoint is one point of the equity curve with its running high-water-mark
type EquityPoint struct {
	Date          time.Time `json:"date"`
	Equity        float64   `json:"equity"`
	HighWaterMark float64   `json:"high_water_mark"`
	TradeNumber   int       `json:"trade_number"` // 1-based
}

// DrawdownPoint is the percentage distance below the high-water-mark (≤ 0)
type DrawdownPoint struct {
	Date        time.Time `json:"date"`
	DrawdownPct float64   `json:"drawdown_pct"`
}

// RollingMetric is computed over the trailing window ending at Date
type RollingMetric struct {
	Date         time.Time `json:"date"`
	WinRate      float64   `json:"win_rate"` // percent
	SharpeRatio  float64   `json:"sharpe_ratio"`
	ProfitFactor float64   `json:"profit_factor"`
	Volatility   float64   `json:"volatility"` // annualized percent
}

// StreakData bundles the streak histograms with their summary
type StreakData struct {
	WinDistribution  map[int]int      `json:"win_distribution"`  // length → count
	LossDistribution map[int]int      `json:"loss_distribution"` // length → count
	Statistics       StreakStatistics `json:"statistics"`
}

// StreakStatistics summarizes a streak scan
type StreakStatistics struct {
	MaxWinStreak  int     `json:"max_win_streak"`
	MaxLossStreak int     `json:"max_loss_streak"`
	AvgWinStreak  float64 `json:"avg_win_streak"`
	AvgLossStreak float64 `json:"avg_loss_streak"`
	CurrentStreak int     `json:"current_streak"`
}
