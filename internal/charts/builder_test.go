package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradeblocks/internal/contracts"
)

func entryAt(t time.Time, ret, value float64) contracts.EquityCurveEntry {
	return contracts.EquityCurveEntry{Date: t, DailyReturnPct: ret, AccountValue: value}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestBuild_Empty(t *testing.T) {
	got := Build(nil)

	assert.NotNil(t, got.EquityCurve)
	assert.Empty(t, got.EquityCurve)
	assert.NotNil(t, got.DrawdownData)
	assert.Empty(t, got.DrawdownData)
	assert.NotNil(t, got.MonthlyReturns)
	assert.Empty(t, got.MonthlyReturns)
	assert.NotNil(t, got.MonthlyReturnsPercent)
	assert.NotNil(t, got.ReturnDistribution)
	assert.Empty(t, got.ReturnDistribution)
	assert.NotNil(t, got.RollingMetrics)
	assert.Empty(t, got.RollingMetrics)
	assert.NotNil(t, got.StreakData.WinDistribution)
	assert.NotNil(t, got.StreakData.LossDistribution)
}

func TestEquityCurveAndDrawdown(t *testing.T) {
	entries := []contracts.EquityCurveEntry{
		entryAt(day(3), -0.1, 99),
		entryAt(day(1), 0, 100),
		entryAt(day(2), 0.1, 110),
		entryAt(day(4), 0.2121, 120),
	}

	got := Build(entries)

	require.Len(t, got.EquityCurve, 4)
	assert.Equal(t, []float64{100, 110, 110, 120}, []float64{
		got.EquityCurve[0].HighWaterMark,
		got.EquityCurve[1].HighWaterMark,
		got.EquityCurve[2].HighWaterMark,
		got.EquityCurve[3].HighWaterMark,
	})
	assert.Equal(t, 1, got.EquityCurve[0].TradeNumber)
	assert.Equal(t, 4, got.EquityCurve[3].TradeNumber)
	assert.Equal(t, day(3), got.EquityCurve[2].Date)

	require.Len(t, got.DrawdownData, 4)
	assert.Equal(t, 0.0, got.DrawdownData[0].DrawdownPct)
	assert.Equal(t, 0.0, got.DrawdownData[1].DrawdownPct)
	assert.InDelta(t, -10.0, got.DrawdownData[2].DrawdownPct, 1e-9)
	assert.Equal(t, 0.0, got.DrawdownData[3].DrawdownPct)
	for _, p := range got.DrawdownData {
		assert.LessOrEqual(t, p.DrawdownPct, 0.0)
	}
}

func TestDrawdownNegativeEquityFloor(t *testing.T) {
	got := Build([]contracts.EquityCurveEntry{
		entryAt(day(1), 0, 10500),
		entryAt(day(2), -1.43, -4500),
		entryAt(day(3), 0.02, -4400),
	})

	require.Len(t, got.DrawdownData, 3)
	assert.Equal(t, -100.0, got.DrawdownData[1].DrawdownPct)
	assert.Equal(t, -100.0, got.DrawdownData[2].DrawdownPct)
	for _, p := range got.DrawdownData {
		assert.GreaterOrEqual(t, p.DrawdownPct, -100.0)
	}
}

func TestMonthlyReturns(t *testing.T) {
	entries := []contracts.EquityCurveEntry{
		entryAt(time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), 0.01, 1000),
		entryAt(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 0.02, 2000),
		entryAt(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), -0.01, 1000),
		entryAt(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 0.03, 1000),
	}

	dollars, percent := MonthlyReturns(entries)

	assert.InDelta(t, 10, dollars[2023][12], 1e-9)
	assert.InDelta(t, 40-10, dollars[2024][1], 1e-9)
	assert.InDelta(t, 30, dollars[2024][2], 1e-9)

	// 단순 합산: 2% + (-1%) = 1%p
	assert.InDelta(t, 1.0, percent[2024][1], 1e-9)
	assert.InDelta(t, 3.0, percent[2024][2], 1e-9)
	assert.Len(t, percent, 2)
}

func TestReturnDistributionKeepsOrder(t *testing.T) {
	entries := []contracts.EquityCurveEntry{
		entryAt(day(2), -0.02, 100),
		entryAt(day(1), 0.01, 100),
	}

	got := Build(entries).ReturnDistribution
	assert.Equal(t, []float64{1, -2}, got)
}

func TestRolling(t *testing.T) {
	entries := make([]contracts.EquityCurveEntry, 0, 35)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 35; i++ {
		r := 0.01
		if i%3 == 2 {
			r = -0.01
		}
		entries = append(entries, entryAt(start.AddDate(0, 0, i), r, 10000))
	}

	got := Rolling(entries, RollingWindow)
	require.Len(t, got, 6)
	assert.Equal(t, entries[29].Date, got[0].Date)
	assert.Equal(t, entries[34].Date, got[5].Date)

	// 첫 창: 30개 중 20승 10패
	first := got[0]
	assert.InDelta(t, 100*20.0/30.0, first.WinRate, 1e-9)
	assert.InDelta(t, 2.0, first.ProfitFactor, 1e-9)
	assert.Greater(t, first.SharpeRatio, 0.0)
	assert.Greater(t, first.Volatility, 0.0)

	assert.Empty(t, Rolling(entries[:29], RollingWindow))
}

func TestRollingConstantWindow(t *testing.T) {
	entries := make([]contracts.EquityCurveEntry, 30)
	for i := range entries {
		entries[i] = entryAt(day(1).AddDate(0, 0, i), 0.005, 100)
	}

	got := Rolling(entries, RollingWindow)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].SharpeRatio)
	assert.Equal(t, 0.0, got[0].Volatility)
	assert.Equal(t, 0.0, got[0].ProfitFactor)
	assert.Equal(t, 100.0, got[0].WinRate)
}

func TestBuild_StreakData(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.015, -0.01, -0.005, 0.01}
	entries := make([]contracts.EquityCurveEntry, len(returns))
	for i, r := range returns {
		entries[i] = entryAt(day(i+1), r, 100)
	}

	got := Build(entries).StreakData

	assert.Equal(t, map[int]int{3: 1, 1: 1}, got.WinDistribution)
	assert.Equal(t, map[int]int{2: 1}, got.LossDistribution)
	assert.Equal(t, 3, got.Statistics.MaxWinStreak)
	assert.Equal(t, 2, got.Statistics.MaxLossStreak)
	assert.Equal(t, 2.0, got.Statistics.AvgWinStreak)
	assert.Equal(t, 1, got.Statistics.CurrentStreak)
}
