// Package stats computes portfolio statistics from one equity-curve series.
package stats

import (
	"math"
	"time"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// DefaultInitialCapital is used when the starting balance cannot be backed out
const DefaultInitialCapital = 10000

// Calculator computes PortfolioStats. It holds no state between calls.
type Calculator struct {
	DefaultInitialCapital float64
}

// NewCalculator creates a calculator with the given fallback capital
func NewCalculator(defaultCapital float64) Calculator {
	if defaultCapital <= 0 {
		defaultCapital = DefaultInitialCapital
	}
	return Calculator{DefaultInitialCapital: defaultCapital}
}

// Compute derives the full statistics snapshot. Empty input returns the zero value.
func (c Calculator) Compute(entries []contracts.EquityCurveEntry, riskFreeRatePct float64) contracts.PortfolioStats {
	if len(entries) == 0 {
		return contracts.PortfolioStats{}
	}

	sorted := contracts.SortedEntries(entries)
	returns := contracts.Returns(sorted)
	n := len(sorted)

	initial := c.initialCapital(sorted[0])
	final := sorted[n-1].AccountValue
	totalPl := final - initial

	s := contracts.PortfolioStats{
		InitialCapital: initial,
		FinalCapital:   final,
		TotalPl:        totalPl,
		NetPl:          totalPl,
		TotalReturn:    finite(totalPl / initial),
		TotalTrades:    n,
		AvgDailyPl:     totalPl / float64(n),
	}

	dd := scanDrawdown(sorted)
	s.MaxDrawdown = dd.maxDrawdown
	s.MaxDrawdownPct = dd.maxDrawdownPct
	s.MaxDrawdownDuration = dd.maxDurationDays

	mean := Mean(returns)
	dailyVol := 0.0
	if n >= 2 {
		dailyVol = PopStdDev(returns)
	}
	s.Volatility = dailyVol * AnnualizationFactor

	dailyRf := DailyRiskFree(riskFreeRatePct)
	excess := mean - dailyRf
	if dailyVol > 0 {
		s.SharpeRatio = finite(excess / dailyVol * AnnualizationFactor)
	}
	s.SortinoRatio = sortino(returns, excess, dailyRf)

	s.AnnualizedReturn = finite(math.Pow(1+mean, TradingDaysPerYear) - 1)
	if s.MaxDrawdownPct > 0 {
		s.CalmarRatio = finite(s.AnnualizedReturn / s.MaxDrawdownPct)
	}

	wins, losses, breakEven := split(returns)
	s.WinningTrades = len(wins)
	s.LosingTrades = len(losses)
	s.BreakEvenTrades = breakEven
	s.WinRate = float64(len(wins)) / float64(n)
	s.AvgWin = Mean(wins) * initial
	s.AvgLoss = Mean(losses) * initial
	s.MaxWin = maxOf(wins) * initial
	s.MaxLoss = minOf(losses) * initial
	s.ProfitFactor = ProfitFactor(returns)
	s.Expectancy = s.AvgWin*s.WinRate + s.AvgLoss*(1-s.WinRate)

	var marginSum float64
	for _, e := range sorted {
		marginSum += e.MarginReq
		if e.MarginReq > s.MaxMarginReq {
			s.MaxMarginReq = e.MarginReq
		}
	}
	s.AvgMarginReq = marginSum / float64(n)

	streaks := AnalyzeStreaks(returns)
	s.MaxWinStreak = streaks.MaxWinStreak
	s.MaxLossStreak = streaks.MaxLossStreak
	s.CurrentStreak = streaks.CurrentStreak

	return s
}

// initialCapital backs the pre-return balance out of the first observation
func (c Calculator) initialCapital(first contracts.EquityCurveEntry) float64 {
	fallback := c.DefaultInitialCapital
	if fallback <= 0 {
		fallback = DefaultInitialCapital
	}

	denom := 1 + first.DailyReturnPct
	if denom == 0 {
		return fallback
	}
	v := first.AccountValue / denom
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fallback
	}
	return v
}

type drawdownResult struct {
	maxDrawdown     float64
	maxDrawdownPct  float64
	maxDurationDays int
}

// scanDrawdown walks the high-water-mark. An episode opens on the first value ≤ HWM and
// closes on the next new high; an episode still open at the end has no duration.
func scanDrawdown(sorted []contracts.EquityCurveEntry) drawdownResult {
	var (
		res     drawdownResult
		hwm     = sorted[0].AccountValue
		open    bool
		started time.Time
	)

	for _, e := range sorted {
		v := e.AccountValue
		if v > hwm {
			hwm = v
			if open {
				if d := daysBetween(started, e.Date); d > res.maxDurationDays {
					res.maxDurationDays = d
				}
				open = false
			}
			continue
		}

		if !open {
			open = true
			started = e.Date
		}
		if hwm > 0 {
			// 음수 잔고는 전액 손실로 간주: pct ∈ [0, 1]
			pct := math.Min((hwm-v)/hwm, 1)
			if pct > res.maxDrawdownPct {
				res.maxDrawdownPct = pct
				res.maxDrawdown = hwm - v
			}
		}
	}

	return res
}

// sortino uses the biased std of returns strictly below the daily risk-free rate
func sortino(returns []float64, excess, dailyRf float64) float64 {
	var downside []float64
	for _, r := range returns {
		if r < dailyRf {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}

	dev := PopStdDev(downside)
	if dev == 0 {
		return 0
	}
	return finite(excess / dev * AnnualizationFactor)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}
