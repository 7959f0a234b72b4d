package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/pkg/logger"
)

// SnapshotRefresher is the part of the analytics service the job needs
type SnapshotRefresher interface {
	ListBlocks(ctx context.Context) ([]contracts.Block, error)
	RefreshSnapshot(ctx context.Context, blockID string, riskFreeRate float64) (*contracts.Snapshot, error)
}

// SnapshotRefreshJob recomputes and caches snapshots of configured blocks
type SnapshotRefreshJob struct {
	svc          SnapshotRefresher
	blockIDs     []string // 비어 있으면 전체 블록
	riskFreeRate float64
	schedule     string
	logger       *logger.Logger
}

// NewSnapshotRefreshJob creates a new snapshot refresh job
func NewSnapshotRefreshJob(svc SnapshotRefresher, blockIDs []string, riskFreeRate float64, schedule string, log *logger.Logger) *SnapshotRefreshJob {
	return &SnapshotRefreshJob{
		svc:          svc,
		blockIDs:     blockIDs,
		riskFreeRate: riskFreeRate,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *SnapshotRefreshJob) Name() string {
	return "snapshot_refresh"
}

// Schedule returns the cron schedule
func (j *SnapshotRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes every target block; one failing block does not stop the rest
func (j *SnapshotRefreshJob) Run(ctx context.Context) error {
	ids, err := targetBlocks(ctx, j.svc, j.blockIDs)
	if err != nil {
		return err
	}

	var errs []error
	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := j.svc.RefreshSnapshot(ctx, id, j.riskFreeRate); err != nil {
			j.logger.WithError(err).WithField("block_id", id).Warn("Snapshot refresh failed")
			errs = append(errs, fmt.Errorf("block %s: %w", id, err))
			continue
		}
		refreshed++
	}

	j.logger.WithFields(map[string]interface{}{
		"refreshed": refreshed,
		"failed":    len(errs),
	}).Info("Snapshot refresh completed")

	return errors.Join(errs...)
}

// targetBlocks returns the configured IDs or every stored block
func targetBlocks(ctx context.Context, svc SnapshotRefresher, configured []string) ([]string, error) {
	if len(configured) > 0 {
		return configured, nil
	}

	list, err := svc.ListBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	ids := make([]string, len(list))
	for i, b := range list {
		ids[i] = b.ID
	}
	return ids, nil
}
