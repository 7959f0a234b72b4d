package correlation

import (
	"gonum.org/v1/gonum/mat"

	"github.com/wonny/tradeblocks/internal/alignment"
	"github.com/wonny/tradeblocks/internal/contracts"
)

// Options selects the statistic and the date alignment for a matrix
type Options struct {
	Method    contracts.CorrelationMethod
	Alignment contracts.AlignmentPolicy
}

// DefaultOptions is Pearson over common dates
func DefaultOptions() Options {
	return Options{
		Method:    contracts.MethodPearson,
		Alignment: contracts.AlignCommon,
	}
}

// BuildMatrix aligns every strategy on one axis and fills the symmetric correlation matrix
func BuildMatrix(series map[string][]contracts.EquityCurveEntry, opts Options) contracts.CorrelationMatrix {
	if opts.Method == "" {
		opts.Method = contracts.MethodPearson
	}
	if opts.Alignment == "" {
		opts.Alignment = contracts.AlignCommon
	}

	aligned := alignment.Align(series, opts.Alignment)
	n := len(aligned.Strategies)

	result := contracts.CorrelationMatrix{
		Strategies:      aligned.Strategies,
		CorrelationData: make([][]float64, n),
		Dates:           aligned.Dates,
		AlignedReturns:  aligned.Returns,
		Method:          opts.Method,
		Alignment:       opts.Alignment,
	}
	if n == 0 {
		return result
	}

	fn := pairwise(opts.Method)

	// SymDense 는 대칭 저장소라 [i][j] == [j][i] 가 구조적으로 보장됨
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			sym.SetSym(i, j, fn(aligned.Returns[i], aligned.Returns[j]))
		}
	}

	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = sym.At(i, j)
		}
		result.CorrelationData[i] = row
	}

	return result
}

// Correlate applies the selected method to one pair
func Correlate(method contracts.CorrelationMethod, x, y []float64) float64 {
	return pairwise(method)(x, y)
}

func pairwise(method contracts.CorrelationMethod) func(x, y []float64) float64 {
	if method == contracts.MethodSpearman {
		return Spearman
	}
	return Pearson
}
