package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/blockconfig"
	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/superblock"
	"github.com/wonny/tradeblocks/pkg/logger"
)

// combineCmd represents the combine command
var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Super Block 합성",
	Long: `여러 블록의 에쿼티 커브를 하나의 Super Block 으로 합성합니다.

--config 로 YAML 정의 파일(저장된 블록 참조)을 읽거나,
--input 을 여러 번 지정해 파일 입력을 직접 합성합니다.

정렬 방식: intersection, union, earliest-common, latest-common

Example:
  go run ./cmd/blocks combine --config books/income.yaml
  go run ./cmd/blocks combine -i ic.json -i puts.json --alignment union --name income`,
	RunE: runCombine,
}

var (
	combineConfig    string
	combineInputs    []string
	combineAlignment string
	combineName      string
	combineCurve     bool
)

func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringVarP(&combineConfig, "config", "c", "", "super-block YAML definition")
	combineCmd.Flags().StringSliceVarP(&combineInputs, "input", "i", nil, "component entries JSON files")
	combineCmd.Flags().StringVar(&combineAlignment, "alignment", "", "date alignment strategy (default from ANALYTICS_SUPERBLOCK_ALIGNMENT)")
	combineCmd.Flags().StringVar(&combineName, "name", "Super Block", "combined block name")
	combineCmd.Flags().BoolVar(&combineCurve, "curve", false, "print the combined curve in text mode")
}

func runCombine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if (combineConfig == "") == (len(combineInputs) == 0) {
		return fmt.Errorf("use either --config or --input")
	}

	env, cleanup, err := bootstrap(ctx, combineConfig != "")
	if err != nil {
		return err
	}
	defer cleanup()

	var data *contracts.SuperBlockData
	if combineConfig != "" {
		def, _, err := blockconfig.Load(combineConfig)
		if err != nil {
			return fmt.Errorf("load %s: %w", combineConfig, err)
		}
		logDefinition(env.log, def)

		if outputFormat == "text" {
			for _, w := range blockconfig.Check(def) {
				PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
			}
		}

		data, err = env.svc.CombineDefinition(ctx, def)
		if err != nil {
			return err
		}
	} else {
		components := make([]superblock.Series, 0, len(combineInputs))
		for _, path := range combineInputs {
			name, entries, err := loadInputEntries(path, false)
			if err != nil {
				return err
			}
			components = append(components, superblock.Series{Name: name, Entries: entries})
		}

		data, err = env.svc.CombineSuperBlock(combineName, components, contracts.SuperBlockAlignment(combineAlignment), riskFree(env))
		if err != nil {
			return err
		}
	}

	return emit(data, func() { printSuperBlock(data) })
}

// logDefinition records the loaded definition; a hash failure is logged, not fatal
func logDefinition(log *logger.Logger, def *blockconfig.Config) {
	fields := map[string]interface{}{"name": def.Meta.Name}
	hash, err := blockconfig.Hash(def)
	if err != nil {
		log.WithError(err).Warn("Failed to hash super-block definition")
	} else {
		fields["hash"] = hash
	}
	log.WithFields(fields).Debug("Loaded super-block definition")
}

func printSuperBlock(data *contracts.SuperBlockData) {
	PrintHeader(fmt.Sprintf("Super Block · %s (%s)", data.Name, data.Alignment))
	PrintKeyValue("Period", fmt.Sprintf("%s ~ %s (%d days)",
		data.StartDate.Format("2006-01-02"), data.EndDate.Format("2006-01-02"), len(data.CombinedCurve)), 22)
	PrintSeparator()
	printStats(data.CombinedStats)

	fmt.Println()
	fmt.Println("  Components")
	columns := []string{"Name", "Days", "Start", "End", "Return", "Sharpe", "MaxDD"}
	widths := []int{20, 6, 10, 10, 9, 7, 9}
	PrintTableHeader(columns, widths)
	for _, c := range data.ComponentStats {
		PrintTableRow([]string{
			truncate(c.Name, 20),
			fmt.Sprintf("%d", c.EntryCount),
			c.StartDate.Format("2006-01-02"),
			c.EndDate.Format("2006-01-02"),
			pct(c.Stats.TotalReturn),
			fmt.Sprintf("%.2f", c.Stats.SharpeRatio),
			pct(c.Stats.MaxDrawdownPct),
		}, widths)
	}

	if combineCurve {
		fmt.Println()
		PrintTableHeader([]string{"Date", "Account Value", "Return"}, []int{10, 16, 9})
		for _, p := range data.CombinedCurve {
			PrintTableRow([]string{
				p.Date.Format("2006-01-02"),
				money(p.CombinedAccountValue),
				pct(p.CombinedReturn),
			}, []int{10, 16, 9})
		}
	}

	for _, w := range data.Warnings {
		PrintWarning(w)
	}
	PrintDoubleSeparator()
}
