package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputFormat string
	riskFreeFlag float64
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blocks",
	Short: "TradeBlocks - 트레이딩 성과 분석 엔진",
	Long: `TradeBlocks Unified CLI

에쿼티 커브(또는 거래 내역)로부터 성과 통계, 차트 데이터,
전략 간 상관관계, 벤치마크 베타/알파, Super Block 합성을 계산합니다.

입력은 JSON 파일(--input) 또는 DB에 저장된 블록(--block)입니다.

Usage:
  go run ./cmd/blocks [command]

Examples:
  go run ./cmd/blocks stats --input equity.json
  go run ./cmd/blocks correlate --block ic --block puts --method spearman
  go run ./cmd/blocks combine --config books/income.yaml
  go run ./cmd/blocks api`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != "text" && outputFormat != "json" {
			return fmt.Errorf("--output must be text or json, got %q", outputFormat)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text|json)")
	rootCmd.PersistentFlags().Float64Var(&riskFreeFlag, "rf", 0, "annual risk-free rate in percent (default from ANALYTICS_RISK_FREE_RATE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// riskFree returns --rf when set, otherwise the configured default
func riskFree(env *runtimeEnv) float64 {
	if rootCmd.PersistentFlags().Changed("rf") {
		return riskFreeFlag
	}
	return env.svc.RiskFreeRate()
}
