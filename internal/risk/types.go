package risk

import "time"

// ⭐ SSOT: VaR/CVaR 는 손실을 양수로 표현 (VaR=0.05 → 5% 손실 가능)

// VaRResult is one confidence level of a VaR calculation
type VaRResult struct {
	Confidence float64 `json:"confidence"` // 0.95, 0.99
	VaR        float64 `json:"var"`        // loss, positive, fraction
	CVaR       float64 `json:"cvar"`       // tail mean loss, positive, fraction
}

// SimulationMethod selects how simulated daily returns are drawn
type SimulationMethod string

const (
	MethodBootstrap SimulationMethod = "bootstrap" // 과거 일별 수익률 재샘플링
	MethodNormal    SimulationMethod = "normal"    // 정규분포 가정
)

// Valid reports whether m is a known method
func (m SimulationMethod) Valid() bool {
	return m == MethodBootstrap || m == MethodNormal
}

// Config describes one Monte Carlo run.
// ⭐ SSOT: 재현성을 위해 모든 설정을 결과에 기록
type Config struct {
	Method           SimulationMethod `json:"method"`
	NumSimulations   int              `json:"num_simulations"` // 기본 10000
	HorizonDays      int              `json:"horizon_days"`    // 기본 21 (1개월)
	ConfidenceLevels []float64        `json:"confidence_levels"`
	Seed             int64            `json:"seed"`        // 0 = time seeded
	MinSamples       int              `json:"min_samples"` // fail-closed, 기본 30
}

// DefaultConfig returns the default simulation settings
func DefaultConfig() Config {
	return Config{
		Method:           MethodBootstrap,
		NumSimulations:   10000,
		HorizonDays:      21,
		ConfidenceLevels: []float64{0.95, 0.99},
		MinSamples:       30,
	}
}

// Profile is the risk summary of one equity curve
type Profile struct {
	RunID       string      `json:"run_id"`
	Strategy    string      `json:"strategy,omitempty"`
	Config      Config      `json:"config"`
	SampleCount int         `json:"sample_count"` // daily returns used
	Historical  []VaRResult `json:"historical"`   // one-day, from observed returns
	Parametric  []VaRResult `json:"parametric"`   // one-day, normal assumption
	Simulation  *Simulation `json:"simulation"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Simulation is the horizon outcome distribution of a Monte Carlo run
type Simulation struct {
	MeanReturn        float64         `json:"mean_return"` // horizon, fraction
	StdDev            float64         `json:"std_dev"`
	ProbabilityOfLoss float64         `json:"probability_of_loss"` // 0..1
	VaR               []VaRResult     `json:"var"`                 // horizon
	Percentiles       map[int]float64 `json:"percentiles"`         // 1..99 of horizon return
	MedianDrawdown    float64         `json:"median_max_drawdown"` // fraction, positive
	WorstDrawdown95   float64         `json:"p95_max_drawdown"`
}

// Limits are optional thresholds checked against a profile
type Limits struct {
	MaxVaR95      float64 `json:"max_var_95"` // 0.05 = 5%
	MaxCVaR95     float64 `json:"max_cvar_95"`
	MaxDrawdown95 float64 `json:"max_drawdown_95"` // simulated p95 drawdown
}

// DefaultLimits 기본 리스크 한도
func DefaultLimits() Limits {
	return Limits{
		MaxVaR95:      0.05,
		MaxCVaR95:     0.07,
		MaxDrawdown95: 0.15,
	}
}

// CheckResult lists the limits a profile violates
type CheckResult struct {
	Passed     bool     `json:"passed"`
	Violations []string `json:"violations"`
}
