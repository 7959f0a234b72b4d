// Package blocks converts stored block sources into equity-curve entries.
// This is the only place that switches on the BlockSource variant.
package blocks

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// DefaultStartingCapital seeds the trade path when the source carries none
const DefaultStartingCapital = 10000

// ErrUnknownSource is returned for a BlockSource variant without a conversion
var ErrUnknownSource = errors.New("blocks: unknown block source")

// Normalize converts any block source to date-ascending entries owned by strategy.
// An empty strategy keeps the name carried by each record.
func Normalize(source contracts.BlockSource, strategy string) ([]contracts.EquityCurveEntry, error) {
	switch s := source.(type) {
	case contracts.EquityCurveSource:
		return fromEntries(s.Entries, strategy), nil
	case *contracts.EquityCurveSource:
		return fromEntries(s.Entries, strategy), nil
	case contracts.TradeSource:
		return fromTradeSource(s, strategy), nil
	case *contracts.TradeSource:
		return fromTradeSource(*s, strategy), nil
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnknownSource)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownSource, source)
	}
}

func fromTradeSource(s contracts.TradeSource, strategy string) []contracts.EquityCurveEntry {
	if len(s.DailyLogs) > 0 {
		return FromDailyLogs(s.DailyLogs, strategy)
	}
	return FromTrades(s.Trades, s.StartingCapital, strategy)
}

func fromEntries(entries []contracts.EquityCurveEntry, strategy string) []contracts.EquityCurveEntry {
	sorted := contracts.SortedEntries(entries)
	if strategy != "" {
		for i := range sorted {
			sorted[i].StrategyName = strategy
		}
	}
	return sorted
}

// FromDailyLogs uses net liquidity as account value. Margin is 0 on this path.
// 같은 날짜가 여러 번 나오면 마지막 기록을 사용
func FromDailyLogs(logs []contracts.DailyLog, strategy string) []contracts.EquityCurveEntry {
	sorted := make([]contracts.DailyLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	entries := make([]contracts.EquityCurveEntry, 0, len(sorted))
	for _, log := range sorted {
		name := strategy
		if name == "" {
			name = log.StrategyName
		}
		e := contracts.EquityCurveEntry{
			Date:         truncateDay(log.Date),
			AccountValue: log.NetLiquidity,
			StrategyName: name,
		}
		if n := len(entries); n > 0 && entries[n-1].DateKey() == e.DateKey() {
			entries[n-1] = e
			continue
		}
		entries = append(entries, e)
	}

	fillReturns(entries)
	return entries
}

// FromTrades builds one entry per closing day from running cumulative P/L.
// Margin is the sum of margin requirements of the trades closed that day.
func FromTrades(trades []contracts.Trade, startingCapital float64, strategy string) []contracts.EquityCurveEntry {
	if startingCapital <= 0 {
		startingCapital = DefaultStartingCapital
	}

	type dayBucket struct {
		date   time.Time
		pl     decimal.Decimal
		margin decimal.Decimal
		name   string
	}

	buckets := make(map[string]*dayBucket)
	for _, t := range trades {
		d := truncateDay(t.DateClosed)
		key := contracts.DateKey(d)
		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{date: d, name: t.StrategyName}
			buckets[key] = b
		}
		b.pl = b.pl.Add(decimal.NewFromFloat(t.PL))
		b.margin = b.margin.Add(decimal.NewFromFloat(t.MarginReq))
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	equity := decimal.NewFromFloat(startingCapital)
	entries := make([]contracts.EquityCurveEntry, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		equity = equity.Add(b.pl)

		name := strategy
		if name == "" {
			name = b.name
		}
		entries = append(entries, contracts.EquityCurveEntry{
			Date:         b.date,
			AccountValue: equity.InexactFloat64(),
			MarginReq:    b.margin.InexactFloat64(),
			StrategyName: name,
		})
	}

	fillReturns(entries)
	return entries
}

// fillReturns sets day-over-day change, 0 on the first day or after a zero value
func fillReturns(entries []contracts.EquityCurveEntry) {
	for i := range entries {
		if i == 0 || entries[i-1].AccountValue == 0 {
			entries[i].DailyReturnPct = 0
			continue
		}
		prev := entries[i-1].AccountValue
		entries[i].DailyReturnPct = (entries[i].AccountValue - prev) / prev
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
