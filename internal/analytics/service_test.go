package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradeblocks/internal/blockconfig"
	"github.com/wonny/tradeblocks/internal/contracts"
	"github.com/wonny/tradeblocks/internal/correlation"
	"github.com/wonny/tradeblocks/internal/risk"
	"github.com/wonny/tradeblocks/internal/superblock"
	"github.com/wonny/tradeblocks/pkg/config"
	"github.com/wonny/tradeblocks/pkg/logger"
)

// ============================================================================
// Fakes
// ============================================================================

type fakeBlocks struct {
	blocks  map[string]contracts.Block
	entries map[string][]contracts.EquityCurveEntry
	trades  map[string][]contracts.Trade
	logs    map[string][]contracts.DailyLog
	failOn  string
}

func newFakeBlocks() *fakeBlocks {
	return &fakeBlocks{
		blocks:  make(map[string]contracts.Block),
		entries: make(map[string][]contracts.EquityCurveEntry),
		trades:  make(map[string][]contracts.Trade),
		logs:    make(map[string][]contracts.DailyLog),
	}
}

func (f *fakeBlocks) addEquity(id, name string, entries []contracts.EquityCurveEntry) {
	f.blocks[id] = contracts.Block{ID: id, Name: name, Kind: contracts.KindEquity}
	f.entries[id] = entries
}

func (f *fakeBlocks) ListBlocks(ctx context.Context) ([]contracts.Block, error) {
	out := make([]contracts.Block, 0, len(f.blocks))
	for _, b := range f.blocks {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBlocks) GetBlock(ctx context.Context, id string) (*contracts.Block, error) {
	if id == f.failOn {
		return nil, errors.New("connection reset")
	}
	b, ok := f.blocks[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBlocks) GetEntries(ctx context.Context, id string) ([]contracts.EquityCurveEntry, error) {
	return f.entries[id], nil
}

func (f *fakeBlocks) GetTrades(ctx context.Context, id string) ([]contracts.Trade, error) {
	return f.trades[id], nil
}

func (f *fakeBlocks) GetDailyLogs(ctx context.Context, id string) ([]contracts.DailyLog, error) {
	return f.logs[id], nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []*contracts.Snapshot
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, s *contracts.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeStore) LatestSnapshot(ctx context.Context, blockID string) (*contracts.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].BlockID == blockID {
			return f.saved[i], nil
		}
	}
	return nil, nil
}

type fakeBenchmark struct {
	entries []contracts.EquityCurveEntry
	symbols []string
}

func (f *fakeBenchmark) FetchIndex(ctx context.Context, symbol string, from, to time.Time) ([]contracts.EquityCurveEntry, error) {
	f.symbols = append(f.symbols, symbol)
	return f.entries, nil
}

// ============================================================================
// Helpers
// ============================================================================

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

// curve builds consecutive daily entries from account values
func curve(name string, values ...float64) []contracts.EquityCurveEntry {
	out := make([]contracts.EquityCurveEntry, len(values))
	for i, v := range values {
		r := 0.0
		if i > 0 {
			r = (v - values[i-1]) / values[i-1]
		}
		out[i] = contracts.EquityCurveEntry{
			Date:           day(i + 1),
			DailyReturnPct: r,
			AccountValue:   v,
			StrategyName:   name,
		}
	}
	return out
}

func newTestService(deps Deps) *Service {
	return NewService(config.Default(), logger.Nop(), deps)
}

// ============================================================================
// Tests
// ============================================================================

func TestService_PureOperations(t *testing.T) {
	svc := newTestService(Deps{})
	entries := curve("a", 1000, 1100, 1050, 1200)

	stats := svc.ComputeStats(entries, svc.RiskFreeRate())
	assert.Equal(t, 1200.0, stats.FinalCapital)
	assert.Equal(t, 4, stats.TotalTrades)

	chart := svc.BuildChartData(entries)
	assert.Len(t, chart.EquityCurve, 4)

	snapshot := svc.BuildSnapshot("blk", entries, 2.0)
	_, err := uuid.Parse(snapshot.ID)
	assert.NoError(t, err)
	assert.Equal(t, "blk", snapshot.BlockID)
	assert.Equal(t, stats, snapshot.PortfolioStats)
	assert.False(t, snapshot.ComputedAt.IsZero())
}

func TestService_Defaults(t *testing.T) {
	svc := newTestService(Deps{})

	assert.Equal(t, correlation.DefaultOptions(), svc.DefaultCorrelationOptions())
	assert.Equal(t, contracts.AlignIntersection, svc.DefaultSuperBlockAlignment())
	assert.Equal(t, "KOSPI", svc.BenchmarkSymbol())
	assert.Equal(t, 2.0, svc.RiskFreeRate())
}

func TestService_LoadBlock(t *testing.T) {
	src := newFakeBlocks()
	src.addEquity("eq", "Iron Condor", curve("raw", 1000, 1010))
	src.blocks["tr"] = contracts.Block{ID: "tr", Name: "Puts", Kind: contracts.KindTrades, StartingCapital: 5000}
	src.trades["tr"] = []contracts.Trade{
		{DateClosed: day(1), PL: 100},
		{DateClosed: day(2), PL: -50},
	}
	src.failOn = "broken"

	svc := newTestService(Deps{Blocks: src})
	ctx := context.Background()

	block, entries, err := svc.LoadBlock(ctx, "eq")
	require.NoError(t, err)
	assert.Equal(t, "Iron Condor", block.Name)
	require.Len(t, entries, 2)
	assert.Equal(t, "Iron Condor", entries[0].StrategyName)

	_, entries, err = svc.LoadBlock(ctx, "tr")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 5100.0, entries[0].AccountValue)
	assert.Equal(t, 5050.0, entries[1].AccountValue)

	_, _, err = svc.LoadBlock(ctx, "missing")
	assert.ErrorIs(t, err, ErrBlockNotFound)

	_, _, err = svc.LoadBlock(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlockNotFound)

	_, _, err = newTestService(Deps{}).LoadBlock(ctx, "eq")
	assert.ErrorIs(t, err, ErrNoDataSource)
}

func TestService_SnapshotForBlock(t *testing.T) {
	src := newFakeBlocks()
	src.addEquity("eq", "IC", curve("IC", 1000, 1100, 1200))
	store := &fakeStore{}

	svc := newTestService(Deps{Blocks: src, Snapshots: store})

	snapshot, err := svc.SnapshotForBlock(context.Background(), "eq", 3.0)
	require.NoError(t, err)
	assert.Equal(t, "eq", snapshot.BlockID)
	assert.Equal(t, 3.0, snapshot.RiskFreeRate)
	assert.Equal(t, 1200.0, snapshot.PortfolioStats.FinalCapital)

	latest, err := store.LatestSnapshot(context.Background(), "eq")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, snapshot.ID, latest.ID)

	refreshed, err := svc.RefreshSnapshot(context.Background(), "eq", 3.0)
	require.NoError(t, err)
	assert.NotEqual(t, snapshot.ID, refreshed.ID)
	assert.Len(t, store.saved, 2)

	_, err = svc.SnapshotForBlock(context.Background(), "nope", 3.0)
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestService_CorrelationForBlocks(t *testing.T) {
	src := newFakeBlocks()
	src.addEquity("a", "Alpha", curve("", 1000, 1100, 1050, 1200, 1150))
	src.addEquity("b", "Beta", curve("", 2000, 2200, 2100, 2400, 2300))
	src.addEquity("c", "Alpha", curve("", 1000, 990, 1010, 1000, 1020))

	svc := newTestService(Deps{Blocks: src})

	result, err := svc.CorrelationForBlocks(context.Background(), []string{"a", "b"}, svc.DefaultCorrelationOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, result.Matrix.Strategies)
	assert.InDelta(t, 1.0, result.Matrix.CorrelationData[0][1], 1e-9)
	assert.Equal(t, 2, result.Analytics.StrategyCount)

	// 같은 이름은 ID로 구분
	result, err = svc.CorrelationForBlocks(context.Background(), []string{"a", "c"}, svc.DefaultCorrelationOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha (a)", "Alpha (c)"}, result.Matrix.Strategies)

	_, err = svc.CorrelationForBlocks(context.Background(), []string{"a", "zzz"}, svc.DefaultCorrelationOptions())
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestService_BenchmarkForBlock(t *testing.T) {
	src := newFakeBlocks()
	src.addEquity("a", "Alpha", curve("", 1000, 1100, 1050, 1200, 1150))
	bench := &fakeBenchmark{entries: curve("KOSPI", 2500, 2750, 2625, 3000, 2875)}

	svc := newTestService(Deps{Blocks: src, Benchmark: bench})

	got, err := svc.BenchmarkForBlock(context.Background(), "a", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Strategy)
	assert.InDelta(t, 1.0, got.Correlation, 1e-9)
	assert.InDelta(t, 1.0, got.Beta, 1e-9)
	assert.Equal(t, 5, got.OverlapDays)
	assert.Equal(t, []string{"KOSPI"}, bench.symbols)

	_, err = newTestService(Deps{Blocks: src}).BenchmarkForBlock(context.Background(), "a", "", 0)
	assert.ErrorIs(t, err, ErrNoBenchmarkSource)
}

func TestService_RiskForBlock(t *testing.T) {
	values := make([]float64, 36)
	for i := range values {
		values[i] = 1000 + float64(i%3)*20
	}
	src := newFakeBlocks()
	src.addEquity("a", "Alpha", curve("", values...))
	src.addEquity("short", "Short", curve("", 1000, 1010))
	svc := newTestService(Deps{Blocks: src})

	cfg := risk.DefaultConfig()
	cfg.Seed = 11
	cfg.NumSimulations = 300

	got, err := svc.RiskForBlock(context.Background(), "a", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Strategy)
	assert.Equal(t, 35, got.SampleCount)
	require.NotNil(t, got.Simulation)

	_, err = svc.RiskForBlock(context.Background(), "short", cfg)
	assert.ErrorIs(t, err, risk.ErrInsufficientData)

	_, err = svc.RiskForBlock(context.Background(), "missing", cfg)
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestService_CombineBlocks(t *testing.T) {
	src := newFakeBlocks()
	src.addEquity("a", "Alpha", curve("", 1000, 1100, 1200))
	src.addEquity("b", "Beta", curve("", 2000, 2000, 2100))

	svc := newTestService(Deps{Blocks: src})
	ctx := context.Background()

	data, err := svc.CombineBlocks(ctx, "book", []blockconfig.Component{
		{BlockID: "a", Name: "Condor"},
		{BlockID: "b"},
	}, "", 2.0)
	require.NoError(t, err)

	assert.Equal(t, contracts.AlignIntersection, data.Alignment)
	require.Len(t, data.CombinedCurve, 3)
	last := data.CombinedCurve[2]
	assert.Equal(t, 3300.0, last.CombinedAccountValue)
	assert.Equal(t, map[string]float64{"Condor": 1200, "Beta": 2100}, last.ComponentValues)
	assert.Len(t, data.ComponentStats, 2)

	_, err = svc.CombineBlocks(ctx, "empty", nil, "", 2.0)
	assert.ErrorIs(t, err, superblock.ErrNoComponents)

	_, err = svc.CombineBlocks(ctx, "bad", []blockconfig.Component{{BlockID: "x"}}, "", 2.0)
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestService_CombineDefinition(t *testing.T) {
	src := newFakeBlocks()
	src.addEquity("a", "Alpha", curve("", 1000, 1100, 1200))
	src.addEquity("b", "Beta", curve("", 2000, 2000, 2100))

	def, err := blockconfig.Parse([]byte(`
meta:
  name: book
super_block:
  alignment: union
  risk_free_rate: 0
  components:
    - block_id: a
    - block_id: b
`))
	require.NoError(t, err)

	data, err := newTestService(Deps{Blocks: src}).CombineDefinition(context.Background(), def)
	require.NoError(t, err)
	assert.Equal(t, "book", data.Name)
	assert.Equal(t, contracts.AlignUnion, data.Alignment)
	assert.Equal(t, 3300.0, data.CombinedStats.FinalCapital)
}
