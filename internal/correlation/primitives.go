// Package correlation implements pairwise statistics, correlation matrices,
// diversification analytics and benchmark regression for strategy returns.
//
// Degenerate input (empty, mismatched length, zero variance) yields 0 rather than an error.
package correlation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Pearson returns the product-moment correlation of x and y, clamped to [-1, 1]
func Pearson(x, y []float64) float64 {
	if !comparable(x, y) || len(x) < 2 {
		return 0
	}
	if constant(x) || constant(y) {
		return 0
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return clamp(r)
}

// Spearman returns the Pearson correlation of the tie-averaged ranks of x and y
func Spearman(x, y []float64) float64 {
	if !comparable(x, y) {
		return 0
	}
	return Pearson(Rank(x), Rank(y))
}

// Rank returns 1-based ranks; tied values share the average of their positions.
// [5, 5, 5, 10] → [2, 2, 2, 4]
func Rank(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks := make([]float64, n)
	for start := 0; start < n; {
		end := start
		for end+1 < n && values[idx[end+1]] == values[idx[start]] {
			end++
		}
		// positions start..end (0-based) → ranks start+1..end+1
		avg := float64(start+end)/2 + 1
		for k := start; k <= end; k++ {
			ranks[idx[k]] = avg
		}
		start = end + 1
	}
	return ranks
}

// Beta returns cov(strategy, benchmark) / var(benchmark)
func Beta(strategy, benchmark []float64) float64 {
	if !comparable(strategy, benchmark) || len(benchmark) < 2 || constant(benchmark) {
		return 0
	}

	variance := stat.Variance(benchmark, nil)
	if variance == 0 || math.IsNaN(variance) {
		return 0
	}
	b := stat.Covariance(strategy, benchmark, nil) / variance
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return 0
	}
	return b
}

// CAPMAlpha returns the annualized Jensen alpha from daily averages
func CAPMAlpha(avgStrategy, avgBenchmark, beta, dailyRiskFree float64, periodsPerYear int) float64 {
	daily := avgStrategy - (dailyRiskFree + beta*(avgBenchmark-dailyRiskFree))
	return daily * float64(periodsPerYear)
}

// TrackingError returns the annualized population std of return differences
func TrackingError(strategy, benchmark []float64, periodsPerYear int) float64 {
	if !comparable(strategy, benchmark) {
		return 0
	}

	diffs := make([]float64, len(strategy))
	floats.SubTo(diffs, strategy, benchmark)

	_, std := stat.PopMeanStdDev(diffs, nil)
	if math.IsNaN(std) {
		return 0
	}
	return std * math.Sqrt(float64(periodsPerYear))
}

// RSquared is the coefficient of determination of a single-factor fit
func RSquared(correlation float64) float64 {
	return correlation * correlation
}

func comparable(x, y []float64) bool {
	return len(x) > 0 && len(x) == len(y)
}

func constant(x []float64) bool {
	return floats.Max(x) == floats.Min(x)
}

func clamp(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
