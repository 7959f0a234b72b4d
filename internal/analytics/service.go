// Package analytics is the facade over the analytics core. It owns no math;
// it resolves blocks into entries, applies configured defaults, and caches snapshots.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/tradeblocks/internal/charts"
	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/correlation"
	"github.com/wonny/tradeblocks/internal/risk"
	"github.com/wonny/tradeblocks/internal/stats"
	"github.com/wonny/tradeblocks/internal/superblock"
	"github.com/wonny/tradeblocks/pkg/config"
	"github.com/wonny/tradeblocks/pkg/logger"
	"github.com/wonny/tradeblocks/pkg/redis"
)

var (
	// ErrBlockNotFound is returned when a block ID has no stored block
	ErrBlockNotFound = errors.New("analytics: block not found")
	// ErrNoDataSource is returned by block-ID operations without a repository
	ErrNoDataSource = errors.New("analytics: no block data source configured")
	// ErrNoBenchmarkSource is returned by benchmark operations without a benchmark client
	ErrNoBenchmarkSource = errors.New("analytics: no benchmark source configured")
)

// Deps are the optional collaborators of the service. Nil fields disable
// the operations that need them; pure operations always work.
type Deps struct {
	Blocks    contracts.BlockDataSource
	Snapshots contracts.SnapshotStore
	Benchmark contracts.BenchmarkSource
	Cache     *redis.Cache
}

// Service exposes the analytics operations
// ⭐ SSOT: API, CLI, 스케줄러는 모두 이 서비스를 통해 계산
type Service struct {
	cfg    config.AnalyticsConfig
	symbol string
	calc   stats.Calculator
	deps   Deps
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new analytics service
func NewService(cfg *config.Config, log *logger.Logger, deps Deps) *Service {
	if deps.Cache == nil {
		deps.Cache = redis.NewCache(redis.Disabled(), "tradeblocks")
	}
	return &Service{
		cfg:    cfg.Analytics,
		symbol: cfg.Benchmark.Symbol,
		calc:   stats.NewCalculator(cfg.Analytics.DefaultCapital),
		deps:   deps,
		logger: log.WithComponent("analytics"),
		now:    time.Now,
	}
}

// RiskFreeRate returns the configured annual risk-free rate in percent
func (s *Service) RiskFreeRate() float64 {
	return s.cfg.RiskFreeRate
}

// BenchmarkSymbol returns the configured benchmark index
func (s *Service) BenchmarkSymbol() string {
	return s.symbol
}

// DefaultCorrelationOptions returns the configured method and alignment
func (s *Service) DefaultCorrelationOptions() correlation.Options {
	return correlation.Options{
		Method:    contracts.CorrelationMethod(s.cfg.CorrelationMethod),
		Alignment: contracts.AlignmentPolicy(s.cfg.CorrelationAlignment),
	}
}

// DefaultSuperBlockAlignment returns the configured super-block alignment
func (s *Service) DefaultSuperBlockAlignment() contracts.SuperBlockAlignment {
	return contracts.SuperBlockAlignment(s.cfg.SuperBlockAlignment)
}

// ============================================================================
// Pure operations
// ============================================================================

// ComputeStats computes portfolio statistics for one series
func (s *Service) ComputeStats(entries []contracts.EquityCurveEntry, riskFreeRate float64) contracts.PortfolioStats {
	return s.calc.Compute(entries, riskFreeRate)
}

// BuildChartData builds the chart series for one series
func (s *Service) BuildChartData(entries []contracts.EquityCurveEntry) contracts.EquityCurveChartData {
	return charts.Build(entries)
}

// BuildSnapshot bundles entries, stats and chart data under a new ID
func (s *Service) BuildSnapshot(blockID string, entries []contracts.EquityCurveEntry, riskFreeRate float64) *contracts.Snapshot {
	sorted := contracts.SortedEntries(entries)
	return &contracts.Snapshot{
		ID:             uuid.New().String(),
		BlockID:        blockID,
		RiskFreeRate:   riskFreeRate,
		Entries:        sorted,
		PortfolioStats: s.calc.Compute(sorted, riskFreeRate),
		ChartData:      charts.Build(sorted),
		ComputedAt:     s.now().UTC(),
	}
}

// BuildCorrelationMatrix correlates every strategy against every other
func (s *Service) BuildCorrelationMatrix(series map[string][]contracts.EquityCurveEntry, opts correlation.Options) contracts.CorrelationMatrix {
	return correlation.BuildMatrix(series, opts)
}

// AnalyzeCorrelations derives diversification analytics from a matrix
func (s *Service) AnalyzeCorrelations(m contracts.CorrelationMatrix) contracts.CorrelationAnalytics {
	return correlation.Analyze(m)
}

// CorrelateToBenchmark regresses each strategy on the benchmark series
func (s *Service) CorrelateToBenchmark(series map[string][]contracts.EquityCurveEntry, benchmark []contracts.EquityCurveEntry, riskFreeRate float64) []contracts.BenchmarkCorrelation {
	return correlation.CorrelateAllToBenchmark(series, benchmark, riskFreeRate)
}

// RiskProfile computes historical and parametric VaR and a Monte Carlo
// simulation over the daily returns of entries
func (s *Service) RiskProfile(ctx context.Context, entries []contracts.EquityCurveEntry, cfg risk.Config) (*risk.Profile, error) {
	profile, err := risk.NewSimulator(cfg).Profile(ctx, entries)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(map[string]interface{}{
		"strategy":    profile.Strategy,
		"samples":     profile.SampleCount,
		"simulations": cfg.NumSimulations,
	}).Debug("Risk profile computed")
	return profile, nil
}

// CombineSuperBlock merges components; only an empty result is an error
func (s *Service) CombineSuperBlock(name string, components []superblock.Series, strategy contracts.SuperBlockAlignment, riskFreeRate float64) (*contracts.SuperBlockData, error) {
	if strategy == "" {
		strategy = s.DefaultSuperBlockAlignment()
	}

	data, err := superblock.Combine(name, components, strategy, superblock.Options{
		Calculator:   s.calc,
		RiskFreeRate: riskFreeRate,
		Workers:      s.cfg.Workers,
	})
	if err != nil {
		return nil, err
	}

	for _, w := range data.Warnings {
		s.logger.WithFields(map[string]interface{}{
			"super_block": name,
			"alignment":   string(strategy),
		}).Warn(w)
	}
	return data, nil
}

// ============================================================================
// Helpers
// ============================================================================

func entryRange(entries []contracts.EquityCurveEntry) (time.Time, time.Time) {
	sorted := contracts.SortedEntries(entries)
	return sorted[0].Date, sorted[len(sorted)-1].Date
}

func blockErr(op, blockID string, err error) error {
	return fmt.Errorf("%s %s: %w", op, blockID, err)
}
