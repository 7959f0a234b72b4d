package correlation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/stats"
)

func TestCorrelateToBenchmark(t *testing.T) {
	bench := series("KOSPI", 1, 0.01, -0.02, 0.015, 0.005, 0.02)
	// 벤치마크의 2배, 날짜 3일부터 시작
	strategy := series("iron-condor", 2, -0.04, 0.03, 0.01, 0.04, 0.05)

	got := CorrelateToBenchmark(strategy, bench, 0)

	assert.Equal(t, "iron-condor", got.Strategy)
	assert.Equal(t, 4, got.OverlapDays)
	assert.InDelta(t, 1.0, got.Correlation, 1e-12)
	assert.InDelta(t, 2.0, got.Beta, 1e-12)
	assert.InDelta(t, 1.0, got.RSquared, 1e-12)

	// alpha = (mean_s - beta*mean_b) * 252 = 0 for s = 2b
	assert.InDelta(t, 0.0, got.Alpha, 1e-12)
	assert.Greater(t, got.TrackingError, 0.0)
}

func TestCorrelateToBenchmarkRiskFreeMatchesStats(t *testing.T) {
	bench := series("KOSPI", 1, 0.01, -0.02, 0.015, 0.005, 0.02)
	strategy := series("iron-condor", 2, -0.04, 0.03, 0.01, 0.04, 0.05)

	// s = 2b → alpha = (1-beta)*(-rf_daily)*252 = rf_daily*252
	got := CorrelateToBenchmark(strategy, bench, 2)
	want := stats.DailyRiskFree(2) * stats.TradingDaysPerYear
	assert.InDelta(t, want, got.Alpha, 1e-12)
	assert.Greater(t, got.Alpha, 0.0)
}

func TestCorrelateToBenchmarkNoOverlap(t *testing.T) {
	bench := series("KOSPI", 1, 0.01, 0.02)
	strategy := series("s", 10, 0.01, 0.02)

	got := CorrelateToBenchmark(strategy, bench, 2)
	assert.Equal(t, contracts.BenchmarkCorrelation{Strategy: "s"}, got)

	assert.Equal(t, contracts.BenchmarkCorrelation{}, CorrelateToBenchmark(nil, bench, 2))
}

func TestCorrelateReturnsAlpha(t *testing.T) {
	s := []float64{0.002, 0.003, 0.001, 0.002}
	b := []float64{0.001, 0.002, 0.0, 0.001}

	got := CorrelateReturns(s, b, 0)
	require.InDelta(t, 1.0, got.Beta, 1e-9)
	assert.InDelta(t, 0.001*stats.TradingDaysPerYear, got.Alpha, 1e-9)
	assert.InDelta(t, 0.0, got.TrackingError, 1e-12)

	withRf := CorrelateReturns(s, b, 2)
	daily := math.Pow(1.02, 1.0/252) - 1
	assert.InDelta(t, (0.002-(daily+1*(0.001-daily)))*252, withRf.Alpha, 1e-9)

	assert.Equal(t, contracts.BenchmarkCorrelation{}, CorrelateReturns(s, b[:2], 0))
}

func TestCorrelateAllToBenchmark(t *testing.T) {
	bench := series("KOSPI", 1, 0.01, -0.02, 0.015)
	input := map[string][]contracts.EquityCurveEntry{
		"zeta":  series("zeta", 1, 0.02, -0.04, 0.03),
		"alpha": series("alpha", 20, 0.01),
	}

	got := CorrelateAllToBenchmark(input, bench, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Strategy)
	assert.Equal(t, 0, got[0].OverlapDays)
	assert.Equal(t, "zeta", got[1].Strategy)
	assert.Equal(t, 3, got[1].OverlapDays)
}
