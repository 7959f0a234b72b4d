package contracts

// PortfolioStats is the canonical performance snapshot of one series.
// Zero value is the empty-input result.
// ⭐ SSOT: 성과 지표 스키마는 여기서만 정의
type PortfolioStats struct {
	// 자본
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`
	TotalPl        float64 `json:"total_pl"`
	NetPl          float64 `json:"net_pl"`
	TotalReturn    float64 `json:"total_return"` // fraction of InitialCapital

	// 일별 승패 (하루 = 1 trade)
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	BreakEvenTrades int     `json:"break_even_trades"`
	WinRate         float64 `json:"win_rate"` // 0..1
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	MaxWin          float64 `json:"max_win"`
	MaxLoss         float64 `json:"max_loss"`
	ProfitFactor    float64 `json:"profit_factor"`
	Expectancy      float64 `json:"expectancy"`
	AvgDailyPl      float64 `json:"avg_daily_pl"`

	// 위험조정 수익률
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	CalmarRatio      float64 `json:"calmar_ratio"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"` // annualized, fraction

	// 낙폭
	MaxDrawdown         float64 `json:"max_drawdown"`          // absolute amount at the deepest point
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`      // 0..1
	MaxDrawdownDuration int     `json:"max_drawdown_duration"` // days, closed episodes only

	// 증거금
	AvgMarginReq float64 `json:"avg_margin_req"`
	MaxMarginReq float64 `json:"max_margin_req"`

	// 연속 승패
	MaxWinStreak  int `json:"max_win_streak"`
	MaxLossStreak int `json:"max_loss_streak"`
	CurrentStreak int `json:"current_streak"` // +win, -loss, 0 none
}

// IsEmpty reports whether the snapshot was computed from no observations
func (s PortfolioStats) IsEmpty() bool {
	return s.TotalTrades == 0
}
