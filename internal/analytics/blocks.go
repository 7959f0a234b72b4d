package analytics

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/tradeblocks/internal/blockconfig"
	"github.com/wonny/tradeblocks/internal/blocks"
	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/correlation"
	"github.com/wonny/tradeblocks/internal/risk"
	"github.com/wonny/tradeblocks/internal/superblock"
	"github.com/wonny/tradeblocks/pkg/redis"
)

// CorrelationResult is a matrix with its derived analytics
type CorrelationResult struct {
	Matrix    contracts.CorrelationMatrix    `json:"matrix"`
	Analytics contracts.CorrelationAnalytics `json:"analytics"`
}

// ListBlocks returns the stored blocks
func (s *Service) ListBlocks(ctx context.Context) ([]contracts.Block, error) {
	if s.deps.Blocks == nil {
		return nil, ErrNoDataSource
	}
	return s.deps.Blocks.ListBlocks(ctx)
}

// LoadBlock resolves a block into normalized entries named after the block
func (s *Service) LoadBlock(ctx context.Context, blockID string) (*contracts.Block, []contracts.EquityCurveEntry, error) {
	if s.deps.Blocks == nil {
		return nil, nil, ErrNoDataSource
	}

	block, err := s.deps.Blocks.GetBlock(ctx, blockID)
	if err != nil {
		return nil, nil, blockErr("load block", blockID, err)
	}
	if block == nil {
		return nil, nil, blockErr("load block", blockID, ErrBlockNotFound)
	}

	source, err := s.sourceFor(ctx, block)
	if err != nil {
		return nil, nil, blockErr("load block", blockID, err)
	}

	entries, err := blocks.Normalize(source, block.Name)
	if err != nil {
		return nil, nil, blockErr("load block", blockID, err)
	}
	return block, entries, nil
}

// sourceFor reads the stored variant of a block
func (s *Service) sourceFor(ctx context.Context, block *contracts.Block) (contracts.BlockSource, error) {
	if block.Kind != contracts.KindTrades {
		entries, err := s.deps.Blocks.GetEntries(ctx, block.ID)
		if err != nil {
			return nil, err
		}
		return contracts.EquityCurveSource{Entries: entries}, nil
	}

	trades, err := s.deps.Blocks.GetTrades(ctx, block.ID)
	if err != nil {
		return nil, err
	}
	logs, err := s.deps.Blocks.GetDailyLogs(ctx, block.ID)
	if err != nil {
		return nil, err
	}
	return contracts.TradeSource{
		Trades:          trades,
		DailyLogs:       logs,
		StartingCapital: block.StartingCapital,
	}, nil
}

// SnapshotForBlock returns a cached snapshot or computes and stores a fresh one
func (s *Service) SnapshotForBlock(ctx context.Context, blockID string, riskFreeRate float64) (*contracts.Snapshot, error) {
	var snapshot contracts.Snapshot
	err := s.deps.Cache.GetOrSet(ctx, redis.SnapshotKey(blockID, riskFreeRate), &snapshot, s.cfg.SnapshotTTL, func() (interface{}, error) {
		return s.computeSnapshot(ctx, blockID, riskFreeRate)
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// RefreshSnapshot recomputes a snapshot, persists it and overwrites the cache
func (s *Service) RefreshSnapshot(ctx context.Context, blockID string, riskFreeRate float64) (*contracts.Snapshot, error) {
	snapshot, err := s.computeSnapshot(ctx, blockID, riskFreeRate)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Cache.Set(ctx, redis.SnapshotKey(blockID, riskFreeRate), snapshot, s.cfg.SnapshotTTL); err != nil {
		s.logger.WithError(err).WithField("block_id", blockID).Warn("Failed to cache snapshot")
	}
	return snapshot, nil
}

func (s *Service) computeSnapshot(ctx context.Context, blockID string, riskFreeRate float64) (*contracts.Snapshot, error) {
	_, entries, err := s.LoadBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}

	snapshot := s.BuildSnapshot(blockID, entries, riskFreeRate)

	if s.deps.Snapshots != nil {
		// 저장 실패는 계산 결과를 막지 않음
		if err := s.deps.Snapshots.SaveSnapshot(ctx, snapshot); err != nil {
			s.logger.WithError(err).WithField("block_id", blockID).Warn("Failed to save snapshot")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"block_id":    blockID,
		"snapshot_id": snapshot.ID,
		"entries":     len(entries),
	}).Info("Snapshot computed")

	return snapshot, nil
}

// CorrelationForBlocks correlates blocks with each other, one strategy per block
func (s *Service) CorrelationForBlocks(ctx context.Context, blockIDs []string, opts correlation.Options) (*CorrelationResult, error) {
	loaded, err := s.loadBlocks(ctx, blockIDs)
	if err != nil {
		return nil, err
	}

	series := make(map[string][]contracts.EquityCurveEntry, len(loaded))
	for _, lb := range loaded {
		series[lb.name] = lb.entries
	}

	m := s.BuildCorrelationMatrix(series, opts)
	return &CorrelationResult{Matrix: m, Analytics: s.AnalyzeCorrelations(m)}, nil
}

// BenchmarkForBlock regresses a block on the benchmark index over the block's date range
func (s *Service) BenchmarkForBlock(ctx context.Context, blockID, symbol string, riskFreeRate float64) (*contracts.BenchmarkCorrelation, error) {
	if s.deps.Benchmark == nil {
		return nil, ErrNoBenchmarkSource
	}
	if symbol == "" {
		symbol = s.symbol
	}

	block, entries, err := s.LoadBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		result := contracts.BenchmarkCorrelation{Strategy: block.Name}
		return &result, nil
	}

	bench, err := s.benchmarkEntries(ctx, symbol, entries)
	if err != nil {
		return nil, blockErr("benchmark", blockID, err)
	}

	result := correlation.CorrelateToBenchmark(entries, bench, riskFreeRate)
	result.Strategy = block.Name
	return &result, nil
}

// RiskForBlock computes the risk profile of one stored block
func (s *Service) RiskForBlock(ctx context.Context, blockID string, cfg risk.Config) (*risk.Profile, error) {
	block, entries, err := s.LoadBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}

	profile, err := s.RiskProfile(ctx, entries, cfg)
	if err != nil {
		return nil, blockErr("risk", blockID, err)
	}
	profile.Strategy = block.Name
	return profile, nil
}

// BenchmarkEntries fetches (or reads cached) index entries covering the given entries
func (s *Service) BenchmarkEntries(ctx context.Context, symbol string, entries []contracts.EquityCurveEntry) ([]contracts.EquityCurveEntry, error) {
	if s.deps.Benchmark == nil {
		return nil, ErrNoBenchmarkSource
	}
	if symbol == "" {
		symbol = s.symbol
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return s.benchmarkEntries(ctx, symbol, entries)
}

func (s *Service) benchmarkEntries(ctx context.Context, symbol string, entries []contracts.EquityCurveEntry) ([]contracts.EquityCurveEntry, error) {
	from, to := entryRange(entries)

	var bench []contracts.EquityCurveEntry
	key := redis.BenchmarkKey(symbol, contracts.DateKey(from), contracts.DateKey(to))
	err := s.deps.Cache.GetOrSet(ctx, key, &bench, redis.TTLDaily, func() (interface{}, error) {
		return s.deps.Benchmark.FetchIndex(ctx, symbol, from, to)
	})
	return bench, err
}

// CombineBlocks loads each component block and merges them
func (s *Service) CombineBlocks(ctx context.Context, name string, components []blockconfig.Component, strategy contracts.SuperBlockAlignment, riskFreeRate float64) (*contracts.SuperBlockData, error) {
	if len(components) == 0 {
		return nil, superblock.ErrNoComponents
	}

	ids := make([]string, len(components))
	for i, c := range components {
		ids[i] = c.BlockID
	}

	loaded, err := s.loadBlocks(ctx, ids)
	if err != nil {
		return nil, err
	}

	series := make([]superblock.Series, len(components))
	for i, c := range components {
		label := c.Name
		if label == "" {
			label = loaded[i].name
		}
		series[i] = superblock.Series{Name: label, Entries: loaded[i].entries}
	}

	return s.CombineSuperBlock(name, series, strategy, riskFreeRate)
}

// CombineDefinition runs a super-block definition file
func (s *Service) CombineDefinition(ctx context.Context, def *blockconfig.Config) (*contracts.SuperBlockData, error) {
	rf := s.cfg.RiskFreeRate
	if def.SuperBlock.RiskFreeRate != nil {
		rf = *def.SuperBlock.RiskFreeRate
	}
	return s.CombineBlocks(ctx, def.Meta.Name, def.SuperBlock.Components, def.Alignment(), rf)
}

type loadedBlock struct {
	name    string
	entries []contracts.EquityCurveEntry
}

// loadBlocks loads blocks concurrently, preserving input order
func (s *Service) loadBlocks(ctx context.Context, blockIDs []string) ([]loadedBlock, error) {
	out := make([]loadedBlock, len(blockIDs))

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Workers > 0 {
		g.SetLimit(s.cfg.Workers)
	}

	var mu sync.Mutex
	seen := make(map[string]int, len(blockIDs))

	for i, id := range blockIDs {
		i, id := i, id
		g.Go(func() error {
			block, entries, err := s.LoadBlock(gctx, id)
			if err != nil {
				return err
			}
			out[i] = loadedBlock{name: block.Name, entries: entries}

			// 이름 중복 시 ID를 붙여 구분
			mu.Lock()
			seen[block.Name]++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		if seen[out[i].name] > 1 {
			out[i].name = out[i].name + " (" + blockIDs[i] + ")"
			for j := range out[i].entries {
				out[i].entries[j].StrategyName = out[i].name
			}
		}
	}
	return out, nil
}
