package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/blocks"
	"github.com/wonny/tradeblocks/internal/contracts"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "블록 데이터 DB 적재",
	Long: `JSON 파일(에쿼티 엔트리 또는 거래/일별 로그)을 블록으로 DB에 저장합니다.
같은 ID 의 기존 데이터는 교체됩니다.

Example:
  go run ./cmd/blocks import --file ic.json --id ic-2024 --name "Iron Condor"
  go run ./cmd/blocks import --file trades.json --id puts --refresh`,
	RunE: runImport,
}

var (
	importFile        string
	importID          string
	importName        string
	importDescription string
	importRefresh     bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "block JSON file (- for stdin)")
	importCmd.Flags().StringVar(&importID, "id", "", "block ID (default: file name)")
	importCmd.Flags().StringVar(&importName, "name", "", "display name (default: name in file)")
	importCmd.Flags().StringVar(&importDescription, "description", "", "block description")
	importCmd.Flags().BoolVar(&importRefresh, "refresh", false, "recompute the snapshot after import")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, cleanup, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := readInput(importFile)
	if err != nil {
		return err
	}

	block := contracts.Block{
		ID:          strings.TrimSpace(importID),
		Name:        importName,
		Description: importDescription,
	}
	if block.ID == "" {
		block.ID = f.Name
	}
	if block.ID == "" {
		return fmt.Errorf("--id is required when reading stdin")
	}
	if block.Name == "" {
		block.Name = f.Name
	}
	if block.Name == "" {
		block.Name = block.ID
	}

	// 저장 전에 정규화 가능한지 먼저 확인
	source := f.source()
	entries, err := blocks.Normalize(source, block.Name)
	if err != nil {
		return fmt.Errorf("invalid block data: %w", err)
	}

	switch s := source.(type) {
	case contracts.TradeSource:
		err = env.repo.ImportTrades(ctx, block, s)
	case contracts.EquityCurveSource:
		err = env.repo.ImportEntries(ctx, block, s.Entries)
	}
	if err != nil {
		return fmt.Errorf("import %s: %w", block.ID, err)
	}

	env.log.WithFields(map[string]interface{}{
		"block_id": block.ID,
		"kind":     contracts.SourceKind(source),
		"days":     len(entries),
	}).Info("Block imported")

	result := map[string]interface{}{
		"block_id": block.ID,
		"kind":     contracts.SourceKind(source),
		"days":     len(entries),
	}

	if importRefresh {
		snap, err := env.svc.RefreshSnapshot(ctx, block.ID, riskFree(env))
		if err != nil {
			return err
		}
		result["snapshot_id"] = snap.ID
	}

	return emit(result, func() {
		PrintSuccess(fmt.Sprintf("Imported %s (%s, %d days)", block.ID, contracts.SourceKind(source), len(entries)))
		if id, ok := result["snapshot_id"]; ok {
			PrintKeyValue("Snapshot", fmt.Sprintf("%v", id), 10)
		}
	})
}
