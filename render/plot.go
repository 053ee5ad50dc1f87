package render

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/PyDBDA/berngrid/grid"
)

var skyBlue = color.RGBA{R: 0x87, G: 0xCE, B: 0xEB, A: 0xFF}

// PNG renders the three-panel chart to a PNG file at path: prior on
// top, likelihood in the middle, posterior with HDI markers at the
// bottom, in a tall narrow layout.
func PNG(path string, res *grid.Result, opt Options) error {
	idx := thinIndices(len(res.Theta), opt.MaxPoints)

	// The prior and posterior panels share the posterior's scale so the
	// update's effect is visible at a glance.
	postMax := maxOf(res.Posterior)
	likMax := maxOf(res.Likelihood)

	prior, err := panel("Prior", "p(θ)", res, res.Prior, idx, postMax)
	if err != nil {
		return err
	}
	if err := annotate(prior, res.PriorMean() > 0.5, postMax,
		fmt.Sprintf("mean(θ)=%.3g", res.PriorMean())); err != nil {
		return err
	}

	lik, err := panel("Likelihood", "p(D|θ)", res, res.Likelihood, idx, likMax)
	if err != nil {
		return err
	}
	if err := annotate(lik, float64(res.Ones) > 0.5*float64(res.Trials), likMax,
		fmt.Sprintf("Data: z=%d, N=%d", res.Ones, res.Trials)); err != nil {
		return err
	}

	post, err := panel("Posterior", "p(θ|D)", res, res.Posterior, idx, postMax)
	if err != nil {
		return err
	}
	postMean := res.PosteriorMean()
	if err := annotate(post, postMean > 0.5, postMax,
		fmt.Sprintf("mean(θ|D)=%.3g", postMean),
		fmt.Sprintf("p(D)=%.3g", res.Evidence)); err != nil {
		return err
	}
	if err := markHDI(post, res); err != nil {
		return err
	}

	img := vgimg.New(5*vg.Inch, 7.5*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 3, Cols: 1, PadY: vg.Millimeter * 2, PadX: vg.Millimeter * 2}
	plots := [][]*plot.Plot{{prior}, {lik}, {post}}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func maxOf(xs []float64) float64 {
	max := xs[0]
	for _, x := range xs {
		if x > max {
			max = x
		}
	}
	return max
}

// panel builds one sub-plot of mass against theta at the drawn indices.
func panel(title, ylabel string, res *grid.Result, mass []float64, idx []int, ymax float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "θ"
	p.Y.Label.Text = ylabel
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1.1*ymax

	pts := make(plotter.XYs, len(idx))
	for i, j := range idx {
		pts[i].X = res.Theta[j]
		pts[i].Y = mass[j]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle = draw.GlyphStyle{Shape: draw.CircleGlyph{}, Radius: vg.Points(1.2), Color: skyBlue}
	p.Add(s)
	return p, nil
}

// annotate places text lines in the emptier top corner: on the left
// when the mass sits to the right of 0.5, otherwise on the right.
func annotate(p *plot.Plot, massOnRight bool, ymax float64, lines ...string) error {
	x := 0.98
	if massOnRight {
		x = 0.02
	}
	xys := make(plotter.XYs, len(lines))
	for i := range lines {
		xys[i].X = x
		xys[i].Y = ymax * (1 - 0.15*float64(i))
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: lines})
	if err != nil {
		return err
	}
	if !massOnRight {
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XRight
		}
	}
	p.Add(labels)
	return nil
}

// markHDI draws the waterline: a row of markers across the included
// grid points, a label with the achieved mass, and dashed edge lines
// with theta values at the ends of each contiguous run. HDI points are
// drawn unthinned.
func markHDI(p *plot.Plot, res *grid.Result) error {
	hdi := res.HDI

	pts := make(plotter.XYs, len(hdi.Indices))
	mid := 0.0
	for i, j := range hdi.Indices {
		pts[i].X = res.Theta[j]
		pts[i].Y = hdi.Height
		mid += res.Theta[j]
	}
	mid /= float64(len(hdi.Indices))

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle = draw.GlyphStyle{Shape: draw.BoxGlyph{}, Radius: vg.Points(1), Color: color.Black}
	p.Add(s)

	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: mid, Y: hdi.Height + 0.05*p.Y.Max}},
		Labels: []string{fmt.Sprintf("%.3g%% HDI", 100*hdi.Mass)},
	})
	if err != nil {
		return err
	}
	label.TextStyle[0].XAlign = draw.XCenter
	p.Add(label)

	for _, edge := range hdi.Edges() {
		for _, j := range []int{edge[0], edge[1]} {
			th := res.Theta[j]
			line, err := plotter.NewLine(plotter.XYs{{X: th, Y: 0}, {X: th, Y: hdi.Height}})
			if err != nil {
				return err
			}
			line.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
			p.Add(line)

			tick, err := plotter.NewLabels(plotter.XYLabels{
				XYs:    plotter.XYs{{X: th, Y: hdi.Height + 0.01*p.Y.Max}},
				Labels: []string{fmt.Sprintf("%.3g", th)},
			})
			if err != nil {
				return err
			}
			tick.TextStyle[0].XAlign = draw.XCenter
			p.Add(tick)
		}
	}
	return nil
}
