package charts

import (
	"fmt"
	"math"

	gocharts "github.com/vicanso/go-charts/v2"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// RenderOptions controls PNG output size and title
type RenderOptions struct {
	Title  string
	Width  int
	Height int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 480
	}
	return o
}

// ErrNothingToRender is returned for an empty series
var ErrNothingToRender = fmt.Errorf("charts: no data points to render")

// RenderEquityPNG draws equity and high-water-mark lines
func RenderEquityPNG(data contracts.EquityCurveChartData, opts RenderOptions) ([]byte, error) {
	if len(data.EquityCurve) == 0 {
		return nil, ErrNothingToRender
	}
	opts = opts.withDefaults()

	labels := make([]string, len(data.EquityCurve))
	equity := make([]float64, len(data.EquityCurve))
	hwm := make([]float64, len(data.EquityCurve))
	for i, p := range data.EquityCurve {
		labels[i] = contracts.DateKey(p.Date)
		equity[i] = p.Equity
		hwm[i] = p.HighWaterMark
	}

	title := opts.Title
	if title == "" {
		title = "Equity Curve"
	}

	return render([][]float64{equity, hwm}, labels, []string{"Equity", "High-Water Mark"}, title, opts)
}

// RenderDrawdownPNG draws the drawdown percentage series
func RenderDrawdownPNG(data contracts.EquityCurveChartData, opts RenderOptions) ([]byte, error) {
	if len(data.DrawdownData) == 0 {
		return nil, ErrNothingToRender
	}
	opts = opts.withDefaults()

	labels := make([]string, len(data.DrawdownData))
	values := make([]float64, len(data.DrawdownData))
	for i, p := range data.DrawdownData {
		labels[i] = contracts.DateKey(p.Date)
		values[i] = p.DrawdownPct
	}

	title := opts.Title
	if title == "" {
		title = "Drawdown (%)"
	}

	return render([][]float64{values}, labels, []string{"Drawdown %"}, title, opts)
}

func render(values [][]float64, labels, legend []string, title string, opts RenderOptions) ([]byte, error) {
	yMin, yMax := bounds(values)

	p, err := gocharts.LineRender(
		values,
		gocharts.TitleTextOptionFunc(title),
		gocharts.XAxisOptionFunc(gocharts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNumber(len(labels)),
			BoundaryGap: gocharts.FalseFlag(),
		}),
		gocharts.YAxisOptionFunc(gocharts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		gocharts.LegendOptionFunc(gocharts.LegendOption{
			Data: legend,
			Top:  gocharts.PositionTop,
		}),
		gocharts.WidthOptionFunc(opts.Width),
		gocharts.HeightOptionFunc(opts.Height),
		gocharts.ThemeOptionFunc(gocharts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// bounds pads the y range by 5% so flat series still render
func bounds(values [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, series := range values {
		for _, v := range series {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return lo - pad, hi + pad
}

func splitNumber(n int) int {
	split := n / 6
	if split < 3 {
		split = 3
	}
	return split
}
