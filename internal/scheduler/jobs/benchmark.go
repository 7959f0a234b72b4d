package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/pkg/logger"
)

// BenchmarkCorrelator is the part of the analytics service the job needs
type BenchmarkCorrelator interface {
	SnapshotRefresher
	BenchmarkForBlock(ctx context.Context, blockID, symbol string, riskFreeRate float64) (*contracts.BenchmarkCorrelation, error)
}

// BenchmarkWarmJob pre-fetches benchmark series so API calls hit the cache
type BenchmarkWarmJob struct {
	svc          BenchmarkCorrelator
	blockIDs     []string
	symbol       string
	riskFreeRate float64
	logger       *logger.Logger
}

// NewBenchmarkWarmJob creates a new benchmark warm-up job
func NewBenchmarkWarmJob(svc BenchmarkCorrelator, blockIDs []string, symbol string, riskFreeRate float64, log *logger.Logger) *BenchmarkWarmJob {
	return &BenchmarkWarmJob{
		svc:          svc,
		blockIDs:     blockIDs,
		symbol:       symbol,
		riskFreeRate: riskFreeRate,
		logger:       log,
	}
}

// Name returns the job name
func (j *BenchmarkWarmJob) Name() string {
	return "benchmark_warm"
}

// Schedule returns the cron schedule (weekdays after KRX close)
func (j *BenchmarkWarmJob) Schedule() string {
	return "0 40 15 * * 1-5"
}

// Run correlates every target block with the benchmark
func (j *BenchmarkWarmJob) Run(ctx context.Context) error {
	ids, err := targetBlocks(ctx, j.svc, j.blockIDs)
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range ids {
		result, err := j.svc.BenchmarkForBlock(ctx, id, j.symbol, j.riskFreeRate)
		if err != nil {
			errs = append(errs, fmt.Errorf("block %s: %w", id, err))
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"block_id":    id,
			"symbol":      j.symbol,
			"beta":        result.Beta,
			"correlation": result.Correlation,
		}).Debug("Benchmark warmed")
	}

	return errors.Join(errs...)
}
