package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/alignment"
	"github.com/wonny/tradeblocks/internal/analytics"
	"github.com/wonny/tradeblocks/internal/contracts"
)

// correlateCmd represents the correlate command
var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "전략 간 상관관계 / 분산 효과",
	Long: `전략별 일간 수익률의 상관 행렬을 만들고
가장 강한/약한 쌍, 평균 상관, 분산 점수를 계산합니다.

--input 파일의 엔트리는 strategy_name 으로 묶입니다.
여러 --input 또는 여러 --block 을 줄 수 있습니다.

Example:
  go run ./cmd/blocks correlate --input portfolio.json
  go run ./cmd/blocks correlate --input ic.json --input puts.json --alignment zero-fill
  go run ./cmd/blocks correlate --block ic --block puts --method spearman`,
	RunE: runCorrelate,
}

var (
	correlateInputs []string
	correlateBlocks []string
	correlateMethod string
	correlateAlign  string
)

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringSliceVarP(&correlateInputs, "input", "i", nil, "entries JSON file(s)")
	correlateCmd.Flags().StringSliceVarP(&correlateBlocks, "block", "b", nil, "stored block ID(s)")
	correlateCmd.Flags().StringVar(&correlateMethod, "method", "", "pearson|spearman (default from config)")
	correlateCmd.Flags().StringVar(&correlateAlign, "alignment", "", "common|zero-fill (default from config)")
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if (len(correlateInputs) > 0) == (len(correlateBlocks) > 0) {
		return fmt.Errorf("use either --input or --block")
	}

	env, cleanup, err := bootstrap(ctx, len(correlateBlocks) > 0)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := env.svc.DefaultCorrelationOptions()
	if correlateMethod != "" {
		opts.Method = contracts.CorrelationMethod(correlateMethod)
		if opts.Method != contracts.MethodPearson && opts.Method != contracts.MethodSpearman {
			return fmt.Errorf("--method must be pearson or spearman")
		}
	}
	if correlateAlign != "" {
		opts.Alignment = contracts.AlignmentPolicy(correlateAlign)
		if opts.Alignment != contracts.AlignCommon && opts.Alignment != contracts.AlignZeroFill {
			return fmt.Errorf("--alignment must be common or zero-fill")
		}
	}

	var result *analytics.CorrelationResult
	if len(correlateBlocks) > 0 {
		result, err = env.svc.CorrelationForBlocks(ctx, correlateBlocks, opts)
		if err != nil {
			return err
		}
	} else {
		var all []contracts.EquityCurveEntry
		for _, path := range correlateInputs {
			_, entries, err := loadInputEntries(path, true)
			if err != nil {
				return err
			}
			all = append(all, entries...)
		}
		m := env.svc.BuildCorrelationMatrix(alignment.GroupByStrategy(all), opts)
		result = &analytics.CorrelationResult{Matrix: m, Analytics: env.svc.AnalyzeCorrelations(m)}
	}

	return emit(result, func() { printCorrelation(result) })
}

func printCorrelation(r *analytics.CorrelationResult) {
	m, a := r.Matrix, r.Analytics

	PrintHeader(fmt.Sprintf("Correlation · %s / %s · %d days", m.Method, m.Alignment, len(m.Dates)))

	widths := []int{16}
	columns := []string{""}
	for _, s := range m.Strategies {
		columns = append(columns, truncate(s, 10))
		widths = append(widths, 10)
	}
	PrintTableHeader(columns, widths)
	for i, s := range m.Strategies {
		row := []string{truncate(s, 16)}
		for j := range m.Strategies {
			row = append(row, fmt.Sprintf("%+.3f", m.CorrelationData[i][j]))
		}
		PrintTableRow(row, widths)
	}

	PrintSeparator()
	const w = 22
	PrintKeyValue("Strategies", fmt.Sprintf("%d", a.StrategyCount), w)
	if a.StrategyCount >= 2 {
		PrintKeyValue("Strongest", fmt.Sprintf("%s ↔ %s (%+.3f)", a.Strongest.StrategyA, a.Strongest.StrategyB, a.Strongest.Value), w)
		PrintKeyValue("Weakest", fmt.Sprintf("%s ↔ %s (%+.3f)", a.Weakest.StrategyA, a.Weakest.StrategyB, a.Weakest.Value), w)
	}
	PrintKeyValue("Average", fmt.Sprintf("%+.3f", a.AverageCorrelation), w)
	PrintKeyValue("Diversification Score", fmt.Sprintf("%.3f", a.DiversificationScore), w)
	PrintKeyValue("Highly Correlated", fmt.Sprintf("%d pairs", len(a.HighlyCorrelatedPairs)), w)
	PrintKeyValue("Uncorrelated", fmt.Sprintf("%d pairs", len(a.UncorrelatedPairs)), w)
	PrintDoubleSeparator()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
