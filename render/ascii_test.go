package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PyDBDA/berngrid/grid"
)

func coinResult(t *testing.T) *grid.Result {
	t.Helper()
	res, err := grid.Update(
		[]float64{0.1, 0.3, 0.5, 0.7, 0.9},
		[]float64{0.1, 0.2, 0.4, 0.2, 0.1},
		[]int{1, 1, 1, 0}, 0.95)
	require.NoError(t, err)
	return res
}

func TestASCIIPanels(t *testing.T) {
	res := coinResult(t)

	var buf bytes.Buffer
	require.NoError(t, ASCII(&buf, res, Options{}))
	out := buf.String()

	assert.Contains(t, out, "Prior  mean(θ)=")
	assert.Contains(t, out, "Likelihood  z=3, N=4")
	assert.Contains(t, out, "Posterior  mean(θ|D)=")
	assert.Contains(t, out, "% HDI: [")

	// One row per grid point per panel, plus a title each and the
	// closing HDI summary.
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 3*5+3+1)
}

func TestASCIIMarksHDIRows(t *testing.T) {
	res := coinResult(t)

	var buf bytes.Buffer
	require.NoError(t, ASCII(&buf, res, Options{Width: 20}))

	marked := strings.Count(buf.String(), "◂")
	assert.Equal(t, len(res.HDI.Indices), marked)
}

func TestThinIndices(t *testing.T) {
	// No cap, or enough room: every index survives.
	assert.Equal(t, []int{0, 1, 2}, thinIndices(3, 0))
	assert.Equal(t, []int{0, 1, 2}, thinIndices(3, 10))

	// Capped: strided subset that never exceeds the cap and still ends
	// on the last point, including n just above the cap.
	for _, c := range []struct{ n, max int }{
		{1000, 100},
		{150, 100},
		{101, 100},
		{2001, 200},
		{10, 1},
	} {
		idx := thinIndices(c.n, c.max)
		assert.LessOrEqual(t, len(idx), c.max, "n=%d max=%d", c.n, c.max)
		assert.Equal(t, c.n-1, idx[len(idx)-1], "n=%d max=%d", c.n, c.max)
		for i := 1; i < len(idx); i++ {
			assert.Greater(t, idx[i], idx[i-1], "n=%d max=%d", c.n, c.max)
		}
	}
}

func TestHDIBounds(t *testing.T) {
	res := coinResult(t)
	bounds := HDIBounds(res)
	require.NotEmpty(t, bounds)

	for _, b := range bounds {
		assert.LessOrEqual(t, b[0], b[1])
		assert.GreaterOrEqual(t, b[0], 0.0)
		assert.LessOrEqual(t, b[1], 1.0)
	}
}
