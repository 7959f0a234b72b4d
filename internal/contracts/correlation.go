package contracts

// CorrelationMethod selects the pairwise statistic used for a matrix
type CorrelationMethod string

const (
	MethodPearson  CorrelationMethod = "pearson"
	MethodSpearman CorrelationMethod = "spearman"
)

// AlignmentPolicy selects how per-strategy dates are put on one axis
type AlignmentPolicy string

const (
	AlignCommon   AlignmentPolicy = "common"    // intersection
	AlignZeroFill AlignmentPolicy = "zero-fill" // union, missing → 0
)

// CorrelationMatrix is an N×N matrix across strategies.
// CorrelationData[i][i] == 1 and CorrelationData[i][j] == CorrelationData[j][i].
type CorrelationMatrix struct {
	Strategies      []string          `json:"strategies"`
	CorrelationData [][]float64       `json:"correlation_data"`
	Dates           []string          `json:"dates"`
	AlignedReturns  [][]float64       `json:"aligned_returns"` // per strategy, 1:1 with Dates
	Method          CorrelationMethod `json:"method"`
	Alignment       AlignmentPolicy   `json:"alignment"`
}

// Size returns the number of strategies in the matrix
func (m *CorrelationMatrix) Size() int {
	return len(m.Strategies)
}

// CorrelationPair is one off-diagonal matrix value
type CorrelationPair struct {
	StrategyA string  `json:"strategy_a"`
	StrategyB string  `json:"strategy_b"`
	Value     float64 `json:"value"`
}

// CorrelationAnalytics aggregates a matrix into diversification figures
type CorrelationAnalytics struct {
	Strongest             CorrelationPair   `json:"strongest"`
	Weakest               CorrelationPair   `json:"weakest"`
	AverageCorrelation    float64           `json:"average_correlation"`
	MaxCorrelation        float64           `json:"max_correlation"`
	MinCorrelation        float64           `json:"min_correlation"`
	DiversificationScore  float64           `json:"diversification_score"`
	HighlyCorrelatedPairs []CorrelationPair `json:"highly_correlated_pairs"` // |c| > 0.7, desc, ≤ 10
	UncorrelatedPairs     []CorrelationPair `json:"uncorrelated_pairs"`      // |c| < 0.3, asc, ≤ 10
	StrategyCount         int               `json:"strategy_count"`
}

// BenchmarkCorrelation relates one strategy to a market index over common dates
type BenchmarkCorrelation struct {
	Strategy      string  `json:"strategy"`
	Correlation   float64 `json:"correlation"`
	Beta          float64 `json:"beta"`
	Alpha         float64 `json:"alpha"` // annualized
	RSquared      float64 `json:"r_squared"`
	TrackingError float64 `json:"tracking_error"` // annualized
	OverlapDays   int     `json:"overlap_days"`
}
