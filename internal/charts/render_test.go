package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradeblocks/internal/contracts"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderEquityPNG(t *testing.T) {
	data := Build([]contracts.EquityCurveEntry{
		entryAt(day(1), 0, 100),
		entryAt(day(2), 0.05, 105),
		entryAt(day(3), -0.02, 102.9),
		entryAt(day(4), 0.03, 106),
	})

	buf, err := RenderEquityPNG(data, RenderOptions{Width: 600, Height: 400})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf, pngMagic))

	dd, err := RenderDrawdownPNG(data, RenderOptions{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(dd, pngMagic))
}

func TestRenderEmpty(t *testing.T) {
	_, err := RenderEquityPNG(Build(nil), RenderOptions{})
	assert.ErrorIs(t, err, ErrNothingToRender)

	_, err = RenderDrawdownPNG(Build(nil), RenderOptions{})
	assert.ErrorIs(t, err, ErrNothingToRender)
}

func TestBounds(t *testing.T) {
	lo, hi := bounds([][]float64{{100, 100}})
	assert.Less(t, lo, 100.0)
	assert.Greater(t, hi, 100.0)

	lo, hi = bounds([][]float64{{0, 10}, {5}})
	assert.InDelta(t, -0.5, lo, 1e-12)
	assert.InDelta(t, 10.5, hi, 1e-12)
}
