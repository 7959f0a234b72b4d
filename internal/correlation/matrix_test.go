package correlation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradeblocks/internal/contracts"
)

func series(name string, start int, returns ...float64) []contracts.EquityCurveEntry {
	out := make([]contracts.EquityCurveEntry, len(returns))
	for i, r := range returns {
		out[i] = contracts.EquityCurveEntry{
			Date:           time.Date(2024, 1, start+i, 0, 0, 0, 0, time.UTC),
			DailyReturnPct: r,
			StrategyName:   name,
		}
	}
	return out
}

func TestBuildMatrix(t *testing.T) {
	input := map[string][]contracts.EquityCurveEntry{
		"c": series("c", 1, -0.01, -0.02, 0.01, -0.03),
		"a": series("a", 1, 0.01, 0.02, -0.01, 0.03),
		"b": series("b", 1, 0.02, 0.04, -0.02, 0.06),
	}

	m := BuildMatrix(input, DefaultOptions())

	require.Equal(t, []string{"a", "b", "c"}, m.Strategies)
	assert.Len(t, m.Dates, 4)
	assert.Len(t, m.AlignedReturns, 3)
	assert.Equal(t, contracts.MethodPearson, m.Method)

	for i := range m.Strategies {
		assert.Equal(t, 1.0, m.CorrelationData[i][i])
		for j := range m.Strategies {
			assert.Equal(t, m.CorrelationData[i][j], m.CorrelationData[j][i])
		}
	}
	assert.InDelta(t, 1.0, m.CorrelationData[0][1], 1e-12)
	assert.InDelta(t, -1.0, m.CorrelationData[0][2], 1e-12)
}

func TestBuildMatrixAlignment(t *testing.T) {
	input := map[string][]contracts.EquityCurveEntry{
		"a": series("a", 1, 0.01, 0.02, -0.01, 0.03),
		"b": series("b", 3, -0.01, 0.03, 0.02),
	}

	common := BuildMatrix(input, Options{Method: contracts.MethodSpearman, Alignment: contracts.AlignCommon})
	assert.Equal(t, []string{"2024-01-03", "2024-01-04"}, common.Dates)
	assert.Equal(t, contracts.MethodSpearman, common.Method)

	union := BuildMatrix(input, Options{Alignment: contracts.AlignZeroFill})
	assert.Len(t, union.Dates, 5)
	assert.Equal(t, []float64{0, 0, -0.01, 0.03, 0.02}, union.AlignedReturns[1])
	assert.Equal(t, contracts.MethodPearson, union.Method)
}

func TestBuildMatrixEmpty(t *testing.T) {
	m := BuildMatrix(nil, DefaultOptions())
	assert.Empty(t, m.Strategies)
	assert.Empty(t, m.CorrelationData)

	single := BuildMatrix(map[string][]contracts.EquityCurveEntry{"solo": series("solo", 1, 0.01)}, DefaultOptions())
	require.Len(t, single.CorrelationData, 1)
	assert.Equal(t, 1.0, single.CorrelationData[0][0])
}

func matrixOf(names []string, values map[[2]int]float64) contracts.CorrelationMatrix {
	n := len(names)
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
		data[i][i] = 1
	}
	for k, v := range values {
		data[k[0]][k[1]] = v
		data[k[1]][k[0]] = v
	}
	return contracts.CorrelationMatrix{Strategies: names, CorrelationData: data}
}

func TestAnalyze(t *testing.T) {
	m := matrixOf([]string{"a", "b", "c", "d"}, map[[2]int]float64{
		{0, 1}: 0.9,
		{0, 2}: -0.8,
		{0, 3}: 0.1,
		{1, 2}: 0.75,
		{1, 3}: -0.05,
		{2, 3}: 0.2,
	})

	got := Analyze(m)

	assert.Equal(t, 4, got.StrategyCount)
	assert.Equal(t, contracts.CorrelationPair{StrategyA: "a", StrategyB: "b", Value: 0.9}, got.Strongest)
	assert.Equal(t, contracts.CorrelationPair{StrategyA: "a", StrategyB: "c", Value: -0.8}, got.Weakest)
	assert.Equal(t, 0.9, got.MaxCorrelation)
	assert.Equal(t, -0.8, got.MinCorrelation)

	avg := (0.9 - 0.8 + 0.1 + 0.75 - 0.05 + 0.2) / 6
	assert.InDelta(t, avg, got.AverageCorrelation, 1e-12)
	assert.InDelta(t, 1-avg, got.DiversificationScore, 1e-12)

	require.Len(t, got.HighlyCorrelatedPairs, 3)
	assert.Equal(t, []float64{0.9, -0.8, 0.75}, []float64{
		got.HighlyCorrelatedPairs[0].Value,
		got.HighlyCorrelatedPairs[1].Value,
		got.HighlyCorrelatedPairs[2].Value,
	})

	require.Len(t, got.UncorrelatedPairs, 3)
	assert.Equal(t, []float64{-0.05, 0.1, 0.2}, []float64{
		got.UncorrelatedPairs[0].Value,
		got.UncorrelatedPairs[1].Value,
		got.UncorrelatedPairs[2].Value,
	})
}

func TestAnalyzeCapsPairLists(t *testing.T) {
	names := make([]string, 6)
	for i := range names {
		names[i] = fmt.Sprintf("s%d", i)
	}
	values := make(map[[2]int]float64)
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			values[[2]int{i, j}] = 0.95
		}
	}

	got := Analyze(matrixOf(names, values))
	assert.Len(t, got.HighlyCorrelatedPairs, MaxListedPairs)
	assert.Empty(t, got.UncorrelatedPairs)
	// 동률이면 첫 쌍
	assert.Equal(t, "s0", got.Strongest.StrategyA)
	assert.Equal(t, "s1", got.Strongest.StrategyB)
	assert.InDelta(t, 0.05, got.DiversificationScore, 1e-12)
}

func TestAnalyzeDegenerate(t *testing.T) {
	tests := []struct {
		name string
		m    contracts.CorrelationMatrix
	}{
		{"empty", contracts.CorrelationMatrix{}},
		{"single", matrixOf([]string{"solo"}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.m)
			assert.Equal(t, 1.0, got.DiversificationScore)
			assert.Equal(t, 0.0, got.AverageCorrelation)
			assert.NotNil(t, got.HighlyCorrelatedPairs)
			assert.NotNil(t, got.UncorrelatedPairs)
		})
	}
}

func TestDiversificationScoreMonotonic(t *testing.T) {
	low := matrixOf([]string{"a", "b"}, map[[2]int]float64{{0, 1}: 0.1})
	high := matrixOf([]string{"a", "b"}, map[[2]int]float64{{0, 1}: 0.6})

	assert.Greater(t, Analyze(low).DiversificationScore, Analyze(high).DiversificationScore)
	assert.Equal(t, 0.0, DiversificationScore(1.2))
}
