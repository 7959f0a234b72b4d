package correlation

import (
	"math"
	"sort"

	"github.com/wonny/tradeblocks/internal/contracts"
)

const (
	// HighCorrelationThreshold marks pairs with |c| above it as highly correlated
	HighCorrelationThreshold = 0.7
	// LowCorrelationThreshold marks pairs with |c| below it as uncorrelated
	LowCorrelationThreshold = 0.3
	// MaxListedPairs caps both pair lists
	MaxListedPairs = 10
)

// Analyze derives diversification figures from the distinct off-diagonal pairs of m
func Analyze(m contracts.CorrelationMatrix) contracts.CorrelationAnalytics {
	result := contracts.CorrelationAnalytics{
		HighlyCorrelatedPairs: []contracts.CorrelationPair{},
		UncorrelatedPairs:     []contracts.CorrelationPair{},
		StrategyCount:         len(m.Strategies),
		DiversificationScore:  1,
	}

	pairs := distinctPairs(m)
	if len(pairs) == 0 {
		return result
	}

	// 동률이면 i<j 순서상 먼저 나온 쌍을 유지
	strongest, weakest := pairs[0], pairs[0]
	sum := 0.0
	for _, p := range pairs {
		if p.Value > strongest.Value {
			strongest = p
		}
		if p.Value < weakest.Value {
			weakest = p
		}
		sum += p.Value
	}

	avg := sum / float64(len(pairs))

	result.Strongest = strongest
	result.Weakest = weakest
	result.MaxCorrelation = strongest.Value
	result.MinCorrelation = weakest.Value
	result.AverageCorrelation = avg
	result.DiversificationScore = DiversificationScore(avg)

	for _, p := range pairs {
		abs := math.Abs(p.Value)
		if abs > HighCorrelationThreshold {
			result.HighlyCorrelatedPairs = append(result.HighlyCorrelatedPairs, p)
		}
		if abs < LowCorrelationThreshold {
			result.UncorrelatedPairs = append(result.UncorrelatedPairs, p)
		}
	}

	sort.SliceStable(result.HighlyCorrelatedPairs, func(i, j int) bool {
		return math.Abs(result.HighlyCorrelatedPairs[i].Value) > math.Abs(result.HighlyCorrelatedPairs[j].Value)
	})
	sort.SliceStable(result.UncorrelatedPairs, func(i, j int) bool {
		return math.Abs(result.UncorrelatedPairs[i].Value) < math.Abs(result.UncorrelatedPairs[j].Value)
	})

	result.HighlyCorrelatedPairs = capPairs(result.HighlyCorrelatedPairs)
	result.UncorrelatedPairs = capPairs(result.UncorrelatedPairs)

	return result
}

// DiversificationScore is max(0, 1 − average correlation)
func DiversificationScore(avgCorrelation float64) float64 {
	return math.Max(0, 1-avgCorrelation)
}

func distinctPairs(m contracts.CorrelationMatrix) []contracts.CorrelationPair {
	n := len(m.Strategies)
	if n < 2 || len(m.CorrelationData) < n {
		return nil
	}

	pairs := make([]contracts.CorrelationPair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, contracts.CorrelationPair{
				StrategyA: m.Strategies[i],
				StrategyB: m.Strategies[j],
				Value:     m.CorrelationData[i][j],
			})
		}
	}
	return pairs
}

func capPairs(pairs []contracts.CorrelationPair) []contracts.CorrelationPair {
	if len(pairs) > MaxListedPairs {
		return pairs[:MaxListedPairs]
	}
	return pairs
}
