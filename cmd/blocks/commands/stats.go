package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "포트폴리오 성과 통계",
	Long: `하나의 에쿼티 커브에 대한 성과/위험 통계를 계산합니다.

Sharpe, Sortino, Calmar, 최대 낙폭과 기간, 승률, Profit Factor,
연속 승/패 등을 출력합니다.

Example:
  go run ./cmd/blocks stats --input equity.json
  go run ./cmd/blocks stats --block ic-2024 --rf 4.5 -o json`,
	RunE: runStats,
}

var (
	inputPath string
	blockID   string
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&inputPath, "input", "i", "", "entries JSON file (- for stdin)")
	statsCmd.Flags().StringVarP(&blockID, "block", "b", "", "stored block ID")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, cleanup, err := bootstrap(ctx, blockID != "")
	if err != nil {
		return err
	}
	defer cleanup()

	name, entries, err := resolveEntries(ctx, env, inputPath, blockID)
	if err != nil {
		return err
	}

	rf := riskFree(env)
	stats := env.svc.ComputeStats(entries, rf)

	return emit(stats, func() {
		PrintHeader(fmt.Sprintf("Portfolio Stats · %s (rf %.2f%%)", name, rf))
		printStats(stats)
		PrintDoubleSeparator()
	})
}

// resolveEntries reads --input or --block, exactly one of them
func resolveEntries(ctx context.Context, env *runtimeEnv, input, block string) (string, []contracts.EquityCurveEntry, error) {
	switch {
	case input != "" && block != "":
		return "", nil, fmt.Errorf("use either --input or --block")
	case input != "":
		return loadInputEntries(input, false)
	case block != "":
		b, entries, err := env.svc.LoadBlock(ctx, block)
		if err != nil {
			return "", nil, err
		}
		return b.Name, entries, nil
	default:
		return "", nil, fmt.Errorf("--input or --block is required")
	}
}
