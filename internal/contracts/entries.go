package contracts

import (
	"sort"
	"time"
)

// DateLayout is the day-granularity key used for every alignment in the engine
const DateLayout = "2006-01-02"

// EquityCurveEntry is one (strategy, date) account observation
// ⭐ SSOT: 분석 엔진이 다루는 유일한 입력 단위
type EquityCurveEntry struct {
	Date           time.Time `json:"date"`
	DailyReturnPct float64   `json:"daily_return_pct"` // 0.01 = 1%
	AccountValue   float64   `json:"account_value"`
	MarginReq      float64   `json:"margin_req"`
	StrategyName   string    `json:"strategy_name"`
}

// DateKey returns the day key of the entry in its own location
func (e EquityCurveEntry) DateKey() string {
	return DateKey(e.Date)
}

// DateKey formats t at day granularity. No timezone conversion is applied.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a day key produced by DateKey (UTC)
func ParseDateKey(key string) (time.Time, error) {
	return time.Parse(DateLayout, key)
}

// SortedEntries returns a date-ascending copy of entries (stable)
func SortedEntries(entries []EquityCurveEntry) []EquityCurveEntry {
	sorted := make([]EquityCurveEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Returns extracts the daily return vector in the given order
func Returns(entries []EquityCurveEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.DailyReturnPct
	}
	return out
}
