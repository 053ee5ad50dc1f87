// Package render draws the three-panel prior/likelihood/posterior chart
// from a grid update. It only consumes computed results and never feeds
// back into the computation.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/PyDBDA/berngrid/grid"
)

// Options configures a renderer.
type Options struct {
	// MaxPoints caps how many grid points are drawn per panel. Zero
	// draws every point. The last grid point is always kept, and HDI
	// markers are never thinned.
	MaxPoints int

	// Width is the bar width in runes for the ASCII renderer. Zero
	// selects a default.
	Width int
}

// thinIndices returns the grid indices to draw: every point when n fits
// under max, otherwise an evenly strided subset ending at the last
// point. The subset never exceeds max points, counting the forced last
// point.
func thinIndices(n, max int) []int {
	if max <= 0 || n <= max {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if max == 1 {
		return []int{n - 1}
	}
	// Ceiling stride over the first n-1 points leaves room to append
	// the last one without blowing the cap.
	step := (n + max - 3) / (max - 1)
	var idx []int
	for i := 0; i < n-1; i += step {
		idx = append(idx, i)
	}
	return append(idx, n-1)
}

// HDIBounds returns the theta bounds [low, high] of each contiguous run
// of the result's highest-density interval.
func HDIBounds(res *grid.Result) [][2]float64 {
	edges := res.HDI.Edges()
	bounds := make([][2]float64, len(edges))
	for i, e := range edges {
		bounds[i] = [2]float64{res.Theta[e[0]], res.Theta[e[1]]}
	}
	return bounds
}

func formatBounds(bounds [][2]float64) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = fmt.Sprintf("[%.3g, %.3g]", b[0], b[1])
	}
	return strings.Join(parts, " ")
}

// ASCII writes the chart as three stacked panels of horizontal bars,
// one row per drawn grid point. Posterior rows inside the HDI carry a
// trailing marker.
func ASCII(w io.Writer, res *grid.Result, opt Options) error {
	width := opt.Width
	if width <= 0 {
		width = 60
	}
	idx := thinIndices(len(res.Theta), opt.MaxPoints)

	panels := []struct {
		title string
		mass  []float64
		hdi   bool
	}{
		{fmt.Sprintf("Prior  mean(θ)=%.3g", res.PriorMean()), res.Prior, false},
		{fmt.Sprintf("Likelihood  z=%d, N=%d", res.Ones, res.Trials), res.Likelihood, false},
		{fmt.Sprintf("Posterior  mean(θ|D)=%.3g  p(D)=%.3g", res.PosteriorMean(), res.Evidence), res.Posterior, true},
	}

	dots := make([]rune, 1+width)
	for i := range dots {
		dots[i] = '•'
	}

	for _, panel := range panels {
		if _, err := fmt.Fprintf(w, "%s\n", panel.title); err != nil {
			return err
		}
		max := panel.mass[0]
		for _, y := range panel.mass {
			if y > max {
				max = y
			}
		}
		for _, i := range idx {
			n := 0
			if max > 0 {
				n = int(float64(width) * panel.mass[i] / max)
			}
			mark := ""
			if panel.hdi && res.HDI.Contains(i) {
				mark = " ◂"
			}
			if _, err := fmt.Fprintf(w, "%7.4g | %s%s\n", res.Theta[i], string(dots[:1+n]), mark); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "%.3g%% HDI: %s  (height %.3g)\n",
		100*res.HDI.Mass, formatBounds(HDIBounds(res)), res.HDI.Height)
	return err
}
