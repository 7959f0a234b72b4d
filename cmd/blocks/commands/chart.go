package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/charts"
)

// chartCmd represents the chart command
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "차트 데이터 생성 / PNG 렌더링",
	Long: `에쿼티 커브, 낙폭, 월별 수익률, 수익률 분포, 30일 롤링 지표,
연속 승/패 분포를 생성합니다. --png 를 주면 PNG 이미지로 저장합니다.

Example:
  go run ./cmd/blocks chart --input equity.json
  go run ./cmd/blocks chart --block ic-2024 --png equity.png
  go run ./cmd/blocks chart --input equity.json --png dd.png --kind drawdown`,
	RunE: runChart,
}

var (
	chartInput  string
	chartBlock  string
	chartPNG    string
	chartKind   string
	chartWidth  int
	chartHeight int
)

func init() {
	rootCmd.AddCommand(chartCmd)

	chartCmd.Flags().StringVarP(&chartInput, "input", "i", "", "entries JSON file (- for stdin)")
	chartCmd.Flags().StringVarP(&chartBlock, "block", "b", "", "stored block ID")
	chartCmd.Flags().StringVar(&chartPNG, "png", "", "write a PNG chart to this path")
	chartCmd.Flags().StringVar(&chartKind, "kind", "equity", "PNG chart kind (equity|drawdown)")
	chartCmd.Flags().IntVar(&chartWidth, "width", 0, "PNG width in pixels")
	chartCmd.Flags().IntVar(&chartHeight, "height", 0, "PNG height in pixels")
}

func runChart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, cleanup, err := bootstrap(ctx, chartBlock != "")
	if err != nil {
		return err
	}
	defer cleanup()

	name, entries, err := resolveEntries(ctx, env, chartInput, chartBlock)
	if err != nil {
		return err
	}

	data := env.svc.BuildChartData(entries)

	if chartPNG != "" {
		opts := charts.RenderOptions{Title: name, Width: chartWidth, Height: chartHeight}

		var png []byte
		switch chartKind {
		case "equity":
			png, err = charts.RenderEquityPNG(data, opts)
		case "drawdown":
			png, err = charts.RenderDrawdownPNG(data, opts)
		default:
			return fmt.Errorf("--kind must be equity or drawdown")
		}
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(chartPNG, png, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", chartPNG, err)
		}
		if outputFormat == "text" {
			PrintSuccess(fmt.Sprintf("%s chart written to %s (%d bytes)", chartKind, chartPNG, len(png)))
		}
		return nil
	}

	return emit(data, func() {
		PrintHeader(fmt.Sprintf("Chart Data · %s", name))
		const w = 20
		PrintKeyValue("Equity points", fmt.Sprintf("%d", len(data.EquityCurve)), w)
		PrintKeyValue("Drawdown points", fmt.Sprintf("%d", len(data.DrawdownData)), w)
		PrintKeyValue("Rolling windows", fmt.Sprintf("%d", len(data.RollingMetrics)), w)
		PrintKeyValue("Max win streak", fmt.Sprintf("%d", data.StreakData.Statistics.MaxWinStreak), w)
		PrintKeyValue("Max loss streak", fmt.Sprintf("%d", data.StreakData.Statistics.MaxLossStreak), w)
		PrintSeparator()
		fmt.Println("  Monthly returns (%)")
		printMonthly(data.MonthlyReturnsPercent)
		PrintDoubleSeparator()
	})
}
