package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSortedEntries(t *testing.T) {
	input := []EquityCurveEntry{
		{Date: day(3), AccountValue: 3},
		{Date: day(1), AccountValue: 1},
		{Date: day(2), AccountValue: 2},
	}

	sorted := SortedEntries(input)

	assert.Equal(t, []float64{1, 2, 3}, []float64{sorted[0].AccountValue, sorted[1].AccountValue, sorted[2].AccountValue})
	// 원본은 변경되지 않음
	assert.Equal(t, 3.0, input[0].AccountValue)
}

func TestDateKey(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	ts := time.Date(2024, 3, 5, 23, 30, 0, 0, kst)

	assert.Equal(t, "2024-03-05", DateKey(ts))

	parsed, err := ParseDateKey("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", DateKey(parsed))
}

func TestSourceKind(t *testing.T) {
	assert.Equal(t, "equity", SourceKind(EquityCurveSource{}))
	assert.Equal(t, "trades", SourceKind(TradeSource{}))
}

func TestSuperBlockAlignment_Valid(t *testing.T) {
	tests := []struct {
		input SuperBlockAlignment
		want  bool
	}{
		{AlignIntersection, true},
		{AlignUnion, true},
		{AlignEarliestCommon, true},
		{AlignLatestCommon, true},
		{"outer", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.input.Valid(), string(tt.input))
	}
}

func TestPortfolioStats_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(PortfolioStats{MaxDrawdownPct: 0.1, CurrentStreak: -2})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.1, decoded["max_drawdown_pct"])
	assert.Equal(t, float64(-2), decoded["current_streak"])
	assert.True(t, PortfolioStats{}.IsEmpty())
}
