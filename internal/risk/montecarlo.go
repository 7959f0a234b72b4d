package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/tradeblocks/internal/contracts"
)

var (
	ErrInsufficientData = errors.New("insufficient data for simulation")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

var reportedPercentiles = []int{1, 5, 10, 25, 50, 75, 90, 95, 99}

// ValidateConfig checks c before a run
func ValidateConfig(c Config) error {
	switch {
	case !c.Method.Valid():
		return fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, c.Method)
	case c.NumSimulations <= 0:
		return fmt.Errorf("%w: num_simulations must be > 0", ErrInvalidConfig)
	case c.HorizonDays <= 0:
		return fmt.Errorf("%w: horizon_days must be > 0", ErrInvalidConfig)
	case c.MinSamples < 2:
		return fmt.Errorf("%w: min_samples must be >= 2", ErrInvalidConfig)
	}
	for _, cl := range c.ConfidenceLevels {
		if cl <= 0 || cl >= 1 {
			return fmt.Errorf("%w: confidence level %v not in (0, 1)", ErrInvalidConfig, cl)
		}
	}
	return nil
}

// Simulator runs Monte Carlo simulations over daily returns
type Simulator struct {
	config Config
	rng    *rand.Rand
}

// NewSimulator creates a simulator; a zero Seed seeds from the clock
func NewSimulator(config Config) *Simulator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Profile computes the full risk profile of an equity curve.
// The first entry carries no return and is skipped.
func (s *Simulator) Profile(ctx context.Context, entries []contracts.EquityCurveEntry) (*Profile, error) {
	if err := ValidateConfig(s.config); err != nil {
		return nil, err
	}

	returns := DailyReturns(entries)
	// Fail-closed: 최소 샘플 수 체크
	if len(returns) < s.config.MinSamples {
		return nil, fmt.Errorf("%w: got %d returns, need %d", ErrInsufficientData, len(returns), s.config.MinSamples)
	}

	mean, std := stat.PopMeanStdDev(returns, nil)

	p := &Profile{
		RunID:       uuid.New().String(),
		Config:      s.config,
		SampleCount: len(returns),
		CreatedAt:   time.Now(),
	}
	if len(entries) > 0 {
		p.Strategy = entries[0].StrategyName
	}
	for _, cl := range s.config.ConfidenceLevels {
		p.Historical = append(p.Historical, HistoricalVaR(returns, cl))
		p.Parametric = append(p.Parametric, ParametricVaR(mean, std, cl))
	}

	sim, err := s.Simulate(ctx, returns)
	if err != nil {
		return nil, err
	}
	p.Simulation = sim
	return p, nil
}

// Simulate draws NumSimulations paths of HorizonDays daily returns.
// ctx is checked between batches of paths.
func (s *Simulator) Simulate(ctx context.Context, returns []float64) (*Simulation, error) {
	if len(returns) == 0 {
		return nil, ErrInsufficientData
	}

	mean, std := stat.PopMeanStdDev(returns, nil)
	draw := func() float64 { return returns[s.rng.Intn(len(returns))] }
	if s.config.Method == MethodNormal {
		draw = func() float64 { return mean + std*s.rng.NormFloat64() }
	}

	n := s.config.NumSimulations
	finals := make([]float64, n)
	drawdowns := make([]float64, n)
	losses := 0

	for i := 0; i < n; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		value, peak, maxDD := 1.0, 1.0, 0.0
		for d := 0; d < s.config.HorizonDays; d++ {
			value *= 1 + draw()
			if value > peak {
				peak = value
			}
			if dd := math.Min((peak-value)/peak, 1); dd > maxDD {
				maxDD = dd
			}
		}

		finals[i] = value - 1
		drawdowns[i] = maxDD
		if finals[i] < 0 {
			losses++
		}
	}

	sort.Float64s(finals)
	sort.Float64s(drawdowns)

	simMean, simStd := stat.PopMeanStdDev(finals, nil)
	sim := &Simulation{
		MeanReturn:        simMean,
		StdDev:            simStd,
		ProbabilityOfLoss: float64(losses) / float64(n),
		Percentiles:       make(map[int]float64, len(reportedPercentiles)),
		MedianDrawdown:    Percentile(drawdowns, 50),
		WorstDrawdown95:   Percentile(drawdowns, 95),
	}
	for _, cl := range s.config.ConfidenceLevels {
		sim.VaR = append(sim.VaR, varFromSorted(finals, cl))
	}
	for _, p := range reportedPercentiles {
		sim.Percentiles[p] = Percentile(finals, float64(p))
	}
	return sim, nil
}

// DailyReturns extracts the finite daily returns after the first entry
func DailyReturns(entries []contracts.EquityCurveEntry) []float64 {
	if len(entries) < 2 {
		return nil
	}
	out := make([]float64, 0, len(entries)-1)
	for _, e := range entries[1:] {
		if math.IsNaN(e.DailyReturnPct) || math.IsInf(e.DailyReturnPct, 0) {
			continue
		}
		out = append(out, e.DailyReturnPct)
	}
	return out
}

// CheckLimits compares the 95% figures of p against limits; zero limits are skipped
func CheckLimits(p *Profile, limits Limits) CheckResult {
	result := CheckResult{Passed: true}

	var hist *VaRResult
	for i := range p.Historical {
		if p.Historical[i].Confidence == 0.95 {
			hist = &p.Historical[i]
		}
	}

	violate := func(format string, args ...interface{}) {
		result.Passed = false
		result.Violations = append(result.Violations, fmt.Sprintf(format, args...))
	}

	if hist != nil {
		if limits.MaxVaR95 > 0 && hist.VaR > limits.MaxVaR95 {
			violate("VaR95 %.2f%% > limit %.2f%%", hist.VaR*100, limits.MaxVaR95*100)
		}
		if limits.MaxCVaR95 > 0 && hist.CVaR > limits.MaxCVaR95 {
			violate("CVaR95 %.2f%% > limit %.2f%%", hist.CVaR*100, limits.MaxCVaR95*100)
		}
	}
	if p.Simulation != nil && limits.MaxDrawdown95 > 0 && p.Simulation.WorstDrawdown95 > limits.MaxDrawdown95 {
		violate("p95 drawdown %.2f%% > limit %.2f%%", p.Simulation.WorstDrawdown95*100, limits.MaxDrawdown95*100)
	}
	return result
}
