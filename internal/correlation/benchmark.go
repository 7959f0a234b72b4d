package correlation

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/stats"
)

// CorrelateToBenchmark regresses one strategy against a benchmark over their common dates.
// No overlap yields a zero result.
func CorrelateToBenchmark(strategy, benchmark []contracts.EquityCurveEntry, annualRiskFreePct float64) contracts.BenchmarkCorrelation {
	result := contracts.BenchmarkCorrelation{}
	if len(strategy) > 0 {
		result.Strategy = strategy[0].StrategyName
	}

	s, b := commonReturns(strategy, benchmark)
	if len(s) == 0 {
		return result
	}

	return regress(result.Strategy, s, b, annualRiskFreePct)
}

// CorrelateReturns regresses two already-aligned return vectors
func CorrelateReturns(strategyReturns, benchmarkReturns []float64, annualRiskFreePct float64) contracts.BenchmarkCorrelation {
	if !comparable(strategyReturns, benchmarkReturns) {
		return contracts.BenchmarkCorrelation{}
	}
	return regress("", strategyReturns, benchmarkReturns, annualRiskFreePct)
}

// CorrelateAllToBenchmark runs CorrelateToBenchmark for every strategy, sorted by name
func CorrelateAllToBenchmark(series map[string][]contracts.EquityCurveEntry, benchmark []contracts.EquityCurveEntry, annualRiskFreePct float64) []contracts.BenchmarkCorrelation {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]contracts.BenchmarkCorrelation, 0, len(names))
	for _, name := range names {
		r := CorrelateToBenchmark(series[name], benchmark, annualRiskFreePct)
		r.Strategy = name
		results = append(results, r)
	}
	return results
}

func regress(name string, s, b []float64, annualRiskFreePct float64) contracts.BenchmarkCorrelation {
	corr := Pearson(s, b)
	beta := Beta(s, b)

	return contracts.BenchmarkCorrelation{
		Strategy:      name,
		Correlation:   corr,
		Beta:          beta,
		Alpha:         CAPMAlpha(stat.Mean(s, nil), stat.Mean(b, nil), beta, stats.DailyRiskFree(annualRiskFreePct), stats.TradingDaysPerYear),
		RSquared:      RSquared(corr),
		TrackingError: TrackingError(s, b, stats.TradingDaysPerYear),
		OverlapDays:   len(s),
	}
}

// commonReturns pairs the strategy and benchmark returns on the dates both carry, ascending
func commonReturns(strategy, benchmark []contracts.EquityCurveEntry) ([]float64, []float64) {
	bench := make(map[string]float64, len(benchmark))
	for _, e := range benchmark {
		bench[e.DateKey()] = e.DailyReturnPct
	}

	sorted := contracts.SortedEntries(strategy)
	seen := make(map[string]struct{}, len(sorted))

	var s, b []float64
	for _, e := range sorted {
		key := e.DateKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if br, ok := bench[key]; ok {
			s = append(s, e.DailyReturnPct)
			b = append(b, br)
		}
	}
	return s, b
}
