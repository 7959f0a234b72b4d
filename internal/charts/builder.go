// Package charts derives presentation-ready series from one equity curve
// and renders them to PNG.
package charts

import (
	"math"

	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/stats"
)

// RollingWindow is the trailing observation count of the rolling metrics
const RollingWindow = 30

// Build derives every chart series from entries. Empty input yields empty, non-nil collections.
func Build(entries []contracts.EquityCurveEntry) contracts.EquityCurveChartData {
	sorted := contracts.SortedEntries(entries)
	returns := contracts.Returns(sorted)
	streaks := stats.AnalyzeStreaks(returns)

	monthly, monthlyPct := MonthlyReturns(sorted)

	return contracts.EquityCurveChartData{
		EquityCurve:           EquityCurve(sorted),
		DrawdownData:          Drawdowns(sorted),
		MonthlyReturns:        monthly,
		MonthlyReturnsPercent: monthlyPct,
		ReturnDistribution:    ReturnDistribution(sorted),
		RollingMetrics:        Rolling(sorted, RollingWindow),
		StreakData: contracts.StreakData{
			WinDistribution:  streaks.WinDistribution,
			LossDistribution: streaks.LossDistribution,
			Statistics: contracts.StreakStatistics{
				MaxWinStreak:  streaks.MaxWinStreak,
				MaxLossStreak: streaks.MaxLossStreak,
				AvgWinStreak:  streaks.AvgWinStreak,
				AvgLossStreak: streaks.AvgLossStreak,
				CurrentStreak: streaks.CurrentStreak,
			},
		},
	}
}

// EquityCurve pairs every value with its running high-water-mark. Input must be sorted.
func EquityCurve(sorted []contracts.EquityCurveEntry) []contracts.EquityPoint {
	points := make([]contracts.EquityPoint, 0, len(sorted))
	if len(sorted) == 0 {
		return points
	}

	hwm := sorted[0].AccountValue
	for i, e := range sorted {
		if e.AccountValue > hwm {
			hwm = e.AccountValue
		}
		points = append(points, contracts.EquityPoint{
			Date:          e.Date,
			Equity:        e.AccountValue,
			HighWaterMark: hwm,
			TradeNumber:   i + 1,
		})
	}
	return points
}

// Drawdowns returns (value − HWM) / HWM × 100 per date. Input must be sorted.
func Drawdowns(sorted []contracts.EquityCurveEntry) []contracts.DrawdownPoint {
	points := make([]contracts.DrawdownPoint, 0, len(sorted))
	if len(sorted) == 0 {
		return points
	}

	hwm := sorted[0].AccountValue
	for _, e := range sorted {
		if e.AccountValue > hwm {
			hwm = e.AccountValue
		}
		pct := 0.0
		if hwm > 0 && e.AccountValue < hwm {
			pct = math.Max((e.AccountValue-hwm)/hwm*100, -100)
		}
		points = append(points, contracts.DrawdownPoint{Date: e.Date, DrawdownPct: pct})
	}
	return points
}

// MonthlyReturns sums daily results per (year, month) in dollars and percentage points.
// 복리가 아닌 단순 합산 근사치
func MonthlyReturns(entries []contracts.EquityCurveEntry) (dollars, percent map[int]map[int]float64) {
	dollars = make(map[int]map[int]float64)
	percent = make(map[int]map[int]float64)

	for _, e := range entries {
		year, month := e.Date.Year(), int(e.Date.Month())
		if dollars[year] == nil {
			dollars[year] = make(map[int]float64)
			percent[year] = make(map[int]float64)
		}
		dollars[year][month] += e.AccountValue * e.DailyReturnPct
		percent[year][month] += e.DailyReturnPct * 100
	}
	return dollars, percent
}

// ReturnDistribution is the chronological list of daily returns in percent
func ReturnDistribution(sorted []contracts.EquityCurveEntry) []float64 {
	out := make([]float64, len(sorted))
	for i, e := range sorted {
		out[i] = e.DailyReturnPct * 100
	}
	return out
}

// Rolling computes one metric point per window ending at each date from the window-th observation on
func Rolling(sorted []contracts.EquityCurveEntry, window int) []contracts.RollingMetric {
	metrics := make([]contracts.RollingMetric, 0)
	if window <= 0 || len(sorted) < window {
		return metrics
	}

	returns := contracts.Returns(sorted)
	for end := window - 1; end < len(sorted); end++ {
		slice := returns[end-window+1 : end+1]

		mean := stats.Mean(slice)
		std := stats.PopStdDev(slice)

		sharpe := 0.0
		if std > 0 {
			sharpe = mean / std * stats.AnnualizationFactor
		}

		metrics = append(metrics, contracts.RollingMetric{
			Date:         sorted[end].Date,
			WinRate:      stats.WinRate(slice) * 100,
			SharpeRatio:  sharpe,
			ProfitFactor: stats.ProfitFactor(slice),
			Volatility:   std * stats.AnnualizationFactor * 100,
		})
	}
	return metrics
}
