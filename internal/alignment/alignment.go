// Package alignment puts per-strategy return series on one shared date axis.
package alignment

import (
	"sort"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// Aligned is a shared date axis with one return vector per strategy.
// Returns[i][k] belongs to Strategies[i] on Dates[k].
type Aligned struct {
	Strategies []string
	Dates      []string
	Returns    [][]float64
}

// Len returns the length of the date axis
func (a Aligned) Len() int {
	return len(a.Dates)
}

// Align dispatches to the requested policy. Unknown policies fall back to common dates.
func Align(series map[string][]contracts.EquityCurveEntry, policy contracts.AlignmentPolicy) Aligned {
	if policy == contracts.AlignZeroFill {
		return ZeroFilledUnion(series)
	}
	return CommonDates(series)
}

// CommonDates keeps only the dates present in every strategy
func CommonDates(series map[string][]contracts.EquityCurveEntry) Aligned {
	strategies, byDate := index(series)
	if len(strategies) == 0 {
		return empty()
	}

	counts := make(map[string]int)
	for _, name := range strategies {
		for key := range byDate[name] {
			counts[key]++
		}
	}

	dates := make([]string, 0, len(counts))
	for key, n := range counts {
		if n == len(strategies) {
			dates = append(dates, key)
		}
	}
	sort.Strings(dates)

	return build(strategies, dates, byDate)
}

// ZeroFilledUnion keeps every date seen in any strategy; missing days count as 0 return
func ZeroFilledUnion(series map[string][]contracts.EquityCurveEntry) Aligned {
	strategies, byDate := index(series)
	if len(strategies) == 0 {
		return empty()
	}

	seen := make(map[string]struct{})
	for _, name := range strategies {
		for key := range byDate[name] {
			seen[key] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for key := range seen {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	return build(strategies, dates, byDate)
}

// GroupByStrategy splits a flat entry list by StrategyName
func GroupByStrategy(entries []contracts.EquityCurveEntry) map[string][]contracts.EquityCurveEntry {
	grouped := make(map[string][]contracts.EquityCurveEntry)
	for _, e := range entries {
		grouped[e.StrategyName] = append(grouped[e.StrategyName], e)
	}
	return grouped
}

// DateSet returns the sorted, de-duplicated day keys of entries
func DateSet(entries []contracts.EquityCurveEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		key := e.DateKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, key)
	}
	sort.Strings(dates)
	return dates
}

// index maps strategy → day key → return. 같은 날짜가 중복되면 마지막 값을 사용
func index(series map[string][]contracts.EquityCurveEntry) ([]string, map[string]map[string]float64) {
	strategies := make([]string, 0, len(series))
	byDate := make(map[string]map[string]float64, len(series))

	for name, entries := range series {
		strategies = append(strategies, name)
		m := make(map[string]float64, len(entries))
		for _, e := range entries {
			m[e.DateKey()] = e.DailyReturnPct
		}
		byDate[name] = m
	}
	sort.Strings(strategies)

	return strategies, byDate
}

func build(strategies, dates []string, byDate map[string]map[string]float64) Aligned {
	returns := make([][]float64, len(strategies))
	for i, name := range strategies {
		vec := make([]float64, len(dates))
		for k, key := range dates {
			vec[k] = byDate[name][key] // missing → 0
		}
		returns[i] = vec
	}

	return Aligned{
		Strategies: strategies,
		Dates:      dates,
		Returns:    returns,
	}
}

func empty() Aligned {
	return Aligned{
		Strategies: []string{},
		Dates:      []string{},
		Returns:    [][]float64{},
	}
}
