package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AnnualizationFactor is √252
var AnnualizationFactor = math.Sqrt(TradingDaysPerYear)

// TradingDaysPerYear is the trading-day year used for every annualization
const TradingDaysPerYear = 252

// DailyRiskFree converts an annual percent rate to a compounded daily rate
func DailyRiskFree(annualPct float64) float64 {
	return math.Pow(1+annualPct/100, 1.0/TradingDaysPerYear) - 1
}

// PopStdDev is the population (uncorrected) standard deviation.
// Empty or constant input is exactly 0.
func PopStdDev(x []float64) float64 {
	if len(x) == 0 || floats.Max(x) == floats.Min(x) {
		return 0
	}
	_, std := stat.PopMeanStdDev(x, nil)
	if math.IsNaN(std) {
		return 0
	}
	return std
}

// Mean is the arithmetic mean, 0 for empty input
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// ProfitFactor is the sum of gains over the absolute sum of losses, 0 without losses
func ProfitFactor(returns []float64) float64 {
	var gains, losses float64
	for _, r := range returns {
		if r > 0 {
			gains += r
		} else if r < 0 {
			losses += r
		}
	}
	if losses == 0 {
		return 0
	}
	return gains / math.Abs(losses)
}

// WinRate is the share of strictly positive returns
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

func split(returns []float64) (wins, losses []float64, breakEven int) {
	for _, r := range returns {
		switch {
		case r > 0:
			wins = append(wins, r)
		case r < 0:
			losses = append(losses, r)
		default:
			breakEven++
		}
	}
	return wins, losses, breakEven
}

func maxOf(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Max(x)
}

func minOf(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Min(x)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
