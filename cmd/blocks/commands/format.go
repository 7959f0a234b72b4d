package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// emit prints v as JSON in --output json mode, otherwise calls text
func emit(v interface{}, text func()) error {
	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

// PrintHeader prints a titled double-line header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }
func pct(v float64) string   { return fmt.Sprintf("%.2f%%", v*100) }
func ratio(v float64) string { return fmt.Sprintf("%.3f", v) }

// printStats prints the statistics block shared by stats, snapshot and combine
func printStats(s contracts.PortfolioStats) {
	const w = 22
	PrintKeyValue("Initial Capital", money(s.InitialCapital), w)
	PrintKeyValue("Final Capital", money(s.FinalCapital), w)
	PrintKeyValue("Total P/L", money(s.TotalPl), w)
	PrintKeyValue("Total Return", pct(s.TotalReturn), w)
	PrintKeyValue("Annualized Return", pct(s.AnnualizedReturn), w)
	PrintKeyValue("Volatility", pct(s.Volatility), w)
	PrintSeparator()
	PrintKeyValue("Sharpe", ratio(s.SharpeRatio), w)
	PrintKeyValue("Sortino", ratio(s.SortinoRatio), w)
	PrintKeyValue("Calmar", ratio(s.CalmarRatio), w)
	PrintKeyValue("Max Drawdown", fmt.Sprintf("%s (%s)", money(s.MaxDrawdown), pct(s.MaxDrawdownPct)), w)
	PrintKeyValue("Max DD Duration", fmt.Sprintf("%d days", s.MaxDrawdownDuration), w)
	PrintSeparator()
	PrintKeyValue("Days", fmt.Sprintf("%d (W %d / L %d / BE %d)", s.TotalTrades, s.WinningTrades, s.LosingTrades, s.BreakEvenTrades), w)
	PrintKeyValue("Win Rate", pct(s.WinRate), w)
	PrintKeyValue("Avg Win / Avg Loss", fmt.Sprintf("%s / %s", money(s.AvgWin), money(s.AvgLoss)), w)
	PrintKeyValue("Profit Factor", ratio(s.ProfitFactor), w)
	PrintKeyValue("Expectancy", money(s.Expectancy), w)
	PrintKeyValue("Streaks (W/L/Now)", fmt.Sprintf("%d / %d / %+d", s.MaxWinStreak, s.MaxLossStreak, s.CurrentStreak), w)
	PrintKeyValue("Avg / Max Margin", fmt.Sprintf("%s / %s", money(s.AvgMarginReq), money(s.MaxMarginReq)), w)
}

// printMonthly prints the year × month return grid in percentage points
func printMonthly(monthly map[int]map[int]float64) {
	years := make([]int, 0, len(monthly))
	for y := range monthly {
		years = append(years, y)
	}
	sort.Ints(years)

	columns := []string{"Year", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	widths := []int{4, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6}
	PrintTableHeader(columns, widths)

	for _, y := range years {
		row := []string{fmt.Sprintf("%d", y)}
		for m := 1; m <= 12; m++ {
			if v, ok := monthly[y][m]; ok {
				row = append(row, fmt.Sprintf("%.1f", v))
			} else {
				row = append(row, "-")
			}
		}
		PrintTableRow(row, widths)
	}
}
