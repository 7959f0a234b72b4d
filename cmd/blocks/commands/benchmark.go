package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// benchmarkCmd represents the benchmark command
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "벤치마크 대비 상관/베타/알파",
	Long: `전략 수익률을 시장 지수(KOSPI, KOSDAQ, KPI200)와 공통 날짜로 맞춰
상관계수, 베타, CAPM 알파, R², 추적오차를 계산합니다.

지수는 Naver Finance 에서 조회하며 --benchmark-file 로 대체할 수 있습니다.

Example:
  go run ./cmd/blocks benchmark --block ic-2024
  go run ./cmd/blocks benchmark --input equity.json --symbol KOSDAQ
  go run ./cmd/blocks benchmark --input equity.json --benchmark-file kospi.json`,
	RunE: runBenchmark,
}

var (
	benchInput  string
	benchBlock  string
	benchSymbol string
	benchFile   string
)

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().StringVarP(&benchInput, "input", "i", "", "entries JSON file (- for stdin)")
	benchmarkCmd.Flags().StringVarP(&benchBlock, "block", "b", "", "stored block ID")
	benchmarkCmd.Flags().StringVar(&benchSymbol, "symbol", "", "benchmark index (default from BENCHMARK_SYMBOL)")
	benchmarkCmd.Flags().StringVar(&benchFile, "benchmark-file", "", "benchmark entries JSON file instead of fetching")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, cleanup, err := bootstrap(ctx, benchBlock != "")
	if err != nil {
		return err
	}
	defer cleanup()

	rf := riskFree(env)
	symbol := benchSymbol
	if symbol == "" {
		symbol = env.svc.BenchmarkSymbol()
	}

	var result *contracts.BenchmarkCorrelation
	if benchBlock != "" && benchFile == "" {
		result, err = env.svc.BenchmarkForBlock(ctx, benchBlock, symbol, rf)
		if err != nil {
			return err
		}
	} else {
		name, entries, err := resolveEntries(ctx, env, benchInput, benchBlock)
		if err != nil {
			return err
		}

		var bench []contracts.EquityCurveEntry
		if benchFile != "" {
			symbol, bench, err = loadInputEntries(benchFile, false)
		} else {
			bench, err = env.svc.BenchmarkEntries(ctx, symbol, entries)
		}
		if err != nil {
			return fmt.Errorf("load benchmark: %w", err)
		}

		rows := env.svc.CorrelateToBenchmark(map[string][]contracts.EquityCurveEntry{name: entries}, bench, rf)
		result = &rows[0]
	}

	return emit(result, func() {
		PrintHeader(fmt.Sprintf("Benchmark · %s vs %s", result.Strategy, symbol))
		const w = 16
		PrintKeyValue("Overlap Days", fmt.Sprintf("%d", result.OverlapDays), w)
		PrintKeyValue("Correlation", fmt.Sprintf("%+.3f", result.Correlation), w)
		PrintKeyValue("Beta", ratio(result.Beta), w)
		PrintKeyValue("Alpha (annual)", pct(result.Alpha), w)
		PrintKeyValue("R²", ratio(result.RSquared), w)
		PrintKeyValue("Tracking Error", pct(result.TrackingError), w)
		if result.OverlapDays == 0 {
			PrintWarning("strategy and benchmark share no dates")
		}
		PrintDoubleSeparator()
	})
}
