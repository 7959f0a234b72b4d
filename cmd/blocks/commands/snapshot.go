package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "블록 스냅샷 계산/조회",
	Long: `저장된 블록의 통계와 차트 데이터를 묶은 스냅샷을 계산합니다.

기본은 Redis 캐시를 먼저 조회하고, --refresh 는 항상 재계산 후
DB 저장과 캐시 갱신을 합니다. --latest 는 DB의 마지막 스냅샷을 읽습니다.

Example:
  go run ./cmd/blocks snapshot --block ic-2024
  go run ./cmd/blocks snapshot --block ic-2024 --refresh -o json`,
	RunE: runSnapshot,
}

var (
	snapshotBlock   string
	snapshotRefresh bool
	snapshotLatest  bool
)

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotBlock, "block", "b", "", "stored block ID")
	snapshotCmd.Flags().BoolVar(&snapshotRefresh, "refresh", false, "recompute and overwrite the cache")
	snapshotCmd.Flags().BoolVar(&snapshotLatest, "latest", false, "read the last stored snapshot instead of computing")
	_ = snapshotCmd.MarkFlagRequired("block")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, cleanup, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	rf := riskFree(env)

	var snapshot *contracts.Snapshot
	switch {
	case snapshotLatest:
		snapshot, err = env.repo.LatestSnapshot(ctx, snapshotBlock)
		if err == nil && snapshot == nil {
			err = fmt.Errorf("block %s has no stored snapshot", snapshotBlock)
		}
	case snapshotRefresh:
		snapshot, err = env.svc.RefreshSnapshot(ctx, snapshotBlock, rf)
	default:
		snapshot, err = env.svc.SnapshotForBlock(ctx, snapshotBlock, rf)
	}
	if err != nil {
		return err
	}

	return emit(snapshot, func() {
		PrintHeader(fmt.Sprintf("Snapshot · %s", snapshot.BlockID))
		const w = 22
		PrintKeyValue("Snapshot ID", snapshot.ID, w)
		PrintKeyValue("Computed At", snapshot.ComputedAt.Format("2006-01-02 15:04:05 MST"), w)
		PrintKeyValue("Risk-free Rate", fmt.Sprintf("%.2f%%", snapshot.RiskFreeRate), w)
		PrintKeyValue("Entries", fmt.Sprintf("%d", len(snapshot.Entries)), w)
		PrintSeparator()
		printStats(snapshot.PortfolioStats)
		PrintDoubleSeparator()
	})
}
