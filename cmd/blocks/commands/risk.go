package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/risk"
)

// riskCmd represents the risk command
var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "VaR / Monte Carlo 리스크 분석",
	Long: `일별 수익률로 Historical/Parametric VaR 와 CVaR 를 계산하고,
Monte Carlo 시뮬레이션으로 보유 기간 수익률과 최대 낙폭 분포를 추정합니다.

VaR/CVaR 는 손실을 양수로 표시합니다 (5.00% = 5% 손실 가능).

Example:
  go run ./cmd/blocks risk --input equity.json
  go run ./cmd/blocks risk --block ic-2024 --horizon 63 --simulations 20000 --seed 42
  go run ./cmd/blocks risk --block ic-2024 --check`,
	RunE: runRisk,
}

var (
	riskInput       string
	riskBlock       string
	riskMethod      string
	riskSimulations int
	riskHorizon     int
	riskSeed        int64
	riskCheck       bool
)

func init() {
	rootCmd.AddCommand(riskCmd)

	defaults := risk.DefaultConfig()
	riskCmd.Flags().StringVarP(&riskInput, "input", "i", "", "entries JSON file (- for stdin)")
	riskCmd.Flags().StringVarP(&riskBlock, "block", "b", "", "stored block ID")
	riskCmd.Flags().StringVar(&riskMethod, "method", string(defaults.Method), "simulation method (bootstrap|normal)")
	riskCmd.Flags().IntVar(&riskSimulations, "simulations", defaults.NumSimulations, "number of simulated paths")
	riskCmd.Flags().IntVar(&riskHorizon, "horizon", defaults.HorizonDays, "holding period in trading days")
	riskCmd.Flags().Int64Var(&riskSeed, "seed", 0, "random seed (0 = random)")
	riskCmd.Flags().BoolVar(&riskCheck, "check", false, "check against the default risk limits")
}

func runRisk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, cleanup, err := bootstrap(ctx, riskBlock != "")
	if err != nil {
		return err
	}
	defer cleanup()

	name, entries, err := resolveEntries(ctx, env, riskInput, riskBlock)
	if err != nil {
		return err
	}

	cfg := risk.DefaultConfig()
	cfg.Method = risk.SimulationMethod(riskMethod)
	cfg.NumSimulations = riskSimulations
	cfg.HorizonDays = riskHorizon
	cfg.Seed = riskSeed

	profile, err := env.svc.RiskProfile(ctx, entries, cfg)
	if err != nil {
		return err
	}
	profile.Strategy = name

	out := struct {
		*risk.Profile
		Check *risk.CheckResult `json:"check,omitempty"`
	}{Profile: profile}
	if riskCheck {
		result := risk.CheckLimits(profile, risk.DefaultLimits())
		out.Check = &result
	}

	if err := emit(out, func() { printRisk(profile, out.Check) }); err != nil {
		return err
	}
	if out.Check != nil && !out.Check.Passed {
		return fmt.Errorf("risk limits violated")
	}
	return nil
}

func printRisk(p *risk.Profile, check *risk.CheckResult) {
	PrintHeader(fmt.Sprintf("Risk Profile · %s (%d days)", p.Strategy, p.SampleCount))

	fmt.Println("  One-day VaR")
	widths := []int{10, 12, 12, 12, 12}
	PrintTableHeader([]string{"Conf", "Hist VaR", "Hist CVaR", "Norm VaR", "Norm CVaR"}, widths)
	for i, h := range p.Historical {
		PrintTableRow([]string{
			pct(h.Confidence), pct(h.VaR), pct(h.CVaR), pct(p.Parametric[i].VaR), pct(p.Parametric[i].CVaR),
		}, widths)
	}

	sim := p.Simulation
	fmt.Println()
	fmt.Printf("  Monte Carlo · %s, %d paths × %d days\n", p.Config.Method, p.Config.NumSimulations, p.Config.HorizonDays)
	PrintSeparator()
	const w = 22
	PrintKeyValue("Mean Return", pct(sim.MeanReturn), w)
	PrintKeyValue("Std Dev", pct(sim.StdDev), w)
	PrintKeyValue("P(loss)", pct(sim.ProbabilityOfLoss), w)
	for _, v := range sim.VaR {
		PrintKeyValue(fmt.Sprintf("VaR / CVaR %s", pct(v.Confidence)), fmt.Sprintf("%s / %s", pct(v.VaR), pct(v.CVaR)), w)
	}
	PrintKeyValue("P5 / P50 / P95", fmt.Sprintf("%s / %s / %s", pct(sim.Percentiles[5]), pct(sim.Percentiles[50]), pct(sim.Percentiles[95])), w)
	PrintKeyValue("Max DD (median/p95)", fmt.Sprintf("%s / %s", pct(sim.MedianDrawdown), pct(sim.WorstDrawdown95)), w)

	if check != nil {
		PrintSeparator()
		if check.Passed {
			PrintSuccess("Within risk limits")
		}
		for _, v := range check.Violations {
			PrintWarning(v)
		}
	}
	PrintDoubleSeparator()
}
