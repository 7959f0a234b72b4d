// Package superblock merges several equity curves into one combined curve
// under a date-alignment strategy and computes statistics for the result.
package superblock

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/tradeblocks/internal/alignment"
	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/stats"
)

// Series is one normalized component
type Series struct {
	Name    string
	Entries []contracts.EquityCurveEntry
}

// Options configures statistics for the combined and component series
type Options struct {
	Calculator   stats.Calculator
	RiskFreeRate float64 // annual percent
	Workers      int     // parallel component stats, ≤ 0 means one per component
}

// component is a Series indexed by day key
type component struct {
	name   string
	sorted []contracts.EquityCurveEntry
	byDate map[string]contracts.EquityCurveEntry
	dates  []string
}

// Combine merges components into one curve. Only a zero-point result is an error.
func Combine(name string, components []Series, strategy contracts.SuperBlockAlignment, opts Options) (*contracts.SuperBlockData, error) {
	if len(components) == 0 {
		return nil, ErrNoComponents
	}

	indexed := make([]component, len(components))
	dateLists := make([][]string, len(components))
	for i, s := range components {
		indexed[i] = indexComponent(s)
		dateLists[i] = indexed[i].dates
	}

	axis := alignDates(dateLists, strategy)
	if axis.fatal != nil {
		return nil, fmt.Errorf("combine %q (%s): %w", name, strategy, axis.fatal)
	}

	curve, skipped := walk(indexed, axis.dates)
	if len(curve) == 0 {
		return nil, fmt.Errorf("combine %q (%s): %w", name, strategy, ErrNoCompleteDate)
	}

	warnings := axis.warnings
	if skipped > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d leading dates skipped before the first date covered by every component", skipped))
	}

	entries := toEntries(name, curve)

	componentStats, err := computeComponentStats(indexed, opts)
	if err != nil {
		return nil, err
	}

	return &contracts.SuperBlockData{
		Name:            name,
		Alignment:       strategy,
		CombinedCurve:   curve,
		CombinedEntries: entries,
		CombinedStats:   opts.Calculator.Compute(entries, opts.RiskFreeRate),
		ComponentStats:  componentStats,
		Warnings:        nonNil(warnings),
		StartDate:       curve[0].Date,
		EndDate:         curve[len(curve)-1].Date,
	}, nil
}

func indexComponent(s Series) component {
	sorted := contracts.SortedEntries(s.Entries)
	byDate := make(map[string]contracts.EquityCurveEntry, len(sorted))
	for _, e := range sorted {
		byDate[e.DateKey()] = e
	}
	return component{
		name:   s.Name,
		sorted: sorted,
		byDate: byDate,
		dates:  alignment.DateSet(sorted),
	}
}

// walk emits one point per axis date, starting at the first date every component
// actually reports. After that, gaps are forward-filled from the last known value.
// There is no backfill, so earliest-common and latest-common output also begins at
// the first complete date even though their axis reaches further back.
// Returns the curve and the number of axis dates skipped before the start.
func walk(components []component, axis []string) ([]contracts.CombinedEquityPoint, int) {
	lastKnown := make([]*contracts.EquityCurveEntry, len(components))
	curve := make([]contracts.CombinedEquityPoint, 0, len(axis))

	started := false
	skipped := 0
	prevCombined := 0.0

	for _, key := range axis {
		complete := true
		var date time.Time
		for i, c := range components {
			if e, ok := c.byDate[key]; ok {
				e := e
				lastKnown[i] = &e
				if date.IsZero() {
					date = e.Date
				}
			} else {
				complete = false
			}
		}

		if !started {
			if !complete {
				skipped++
				continue
			}
			started = true
		}

		point := contracts.CombinedEquityPoint{
			Date:            date,
			ComponentValues: make(map[string]float64, len(components)),
		}

		var marginSum float64
		for i, c := range components {
			// started 이후라 lastKnown 은 모두 채워져 있음
			known := lastKnown[i]
			point.ComponentValues[c.name] += known.AccountValue
			point.CombinedAccountValue += known.AccountValue
			marginSum += known.MarginReq
		}
		point.CombinedMarginReq = marginSum / float64(len(components))

		if len(curve) > 0 && prevCombined != 0 {
			point.CombinedReturn = (point.CombinedAccountValue - prevCombined) / prevCombined
		}
		prevCombined = point.CombinedAccountValue

		curve = append(curve, point)
	}

	return curve, skipped
}

func toEntries(name string, curve []contracts.CombinedEquityPoint) []contracts.EquityCurveEntry {
	entries := make([]contracts.EquityCurveEntry, len(curve))
	for i, p := range curve {
		entries[i] = contracts.EquityCurveEntry{
			Date:           p.Date,
			DailyReturnPct: p.CombinedReturn,
			AccountValue:   p.CombinedAccountValue,
			MarginReq:      p.CombinedMarginReq,
			StrategyName:   name,
		}
	}
	return entries
}

// computeComponentStats runs the calculator per component; each goroutine writes its own slot
func computeComponentStats(components []component, opts Options) ([]contracts.ComponentStats, error) {
	out := make([]contracts.ComponentStats, len(components))

	var g errgroup.Group
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i := range components {
		i := i
		g.Go(func() error {
			c := components[i]
			cs := contracts.ComponentStats{
				Name:       c.name,
				EntryCount: len(c.sorted),
				Stats:      opts.Calculator.Compute(c.sorted, opts.RiskFreeRate),
			}
			if len(c.sorted) > 0 {
				cs.StartDate = c.sorted[0].Date
				cs.EndDate = c.sorted[len(c.sorted)-1].Date
			}
			out[i] = cs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
