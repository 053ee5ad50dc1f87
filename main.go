package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/rcrowley/go-metrics"
	"github.com/urfave/cli"

	"github.com/PyDBDA/berngrid/common"
	"github.com/PyDBDA/berngrid/grid"
	"github.com/PyDBDA/berngrid/render"
)

var log = common.GetLogger("berngrid")

var (
	// coverage metrics
	hdiHitCounter     = metrics.NewRegisteredCounter("coverage/hdi/hits", nil)
	hdiWidthHistogram = metrics.NewRegisteredHistogram("coverage/hdi/width", nil, metrics.NewUniformSample(1028))
)

func main() {
	app := initApp()
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func initApp() *cli.App {
	app := cli.NewApp()
	app.Name = "berngrid"
	app.Version = "0.1"
	app.Usage = "Bayesian updating for a Bernoulli parameter on a grid of candidate values."

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		common.SetVerbose(c.Bool("verbose"))
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:    "update",
			Aliases: []string{"u"},
			Usage:   "compute the posterior for observed coin flips and render the three-panel chart",
			Action:  updateRun,
			Flags: append(gridFlags(),
				cli.StringFlag{
					Name:  "data, d",
					Usage: "comma-separated 0/1 observations, e.g. 1,1,1,0",
				},
				cli.IntFlag{
					Name:  "heads",
					Value: 1,
					Usage: "number of heads (ignored when --data is given)",
				},
				cli.IntFlag{
					Name:  "tails",
					Value: 0,
					Usage: "number of tails (ignored when --data is given)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "PNG output path; empty renders ASCII to stdout",
				},
				cli.IntFlag{
					Name:  "plot-points",
					Value: 0,
					Usage: "max grid points to draw, 0 draws all",
				},
				cli.StringFlag{
					Name:  "config",
					Usage: "config file supplying defaults for grid flags",
				},
			),
		},
		{
			Name:    "coverage",
			Aliases: []string{"c"},
			Usage:   "simulate repeated experiments and report how often the HDI captures the true theta",
			Action:  coverageRun,
			Flags: append(gridFlags(),
				cli.Float64Flag{
					Name:  "theta",
					Value: 0.5,
					Usage: "true success probability to simulate",
				},
				cli.IntFlag{
					Name:  "trials, n",
					Value: 20,
					Usage: "flips per experiment",
				},
				cli.IntFlag{
					Name:  "runs, k",
					Value: 1000,
					Usage: "number of simulated experiments",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed",
				},
			),
		},
	}

	return app
}

// gridFlags are the flags shared by every command that builds a grid.
func gridFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "points, p",
			Value: 1001,
			Usage: "number of grid points",
		},
		cli.StringFlag{
			Name:  "prior",
			Value: "triangle",
			Usage: "prior shape: uniform or triangle",
		},
		cli.Float64Flag{
			Name:  "credible, c",
			Value: 0.95,
			Usage: "credible mass of the HDI, in (0,1)",
		},
	}
}

func updateRun(c *cli.Context) error {
	conf := common.EmptyConfig()
	if path := c.String("config"); path != "" {
		var err error
		conf, err = common.NewConfig(path)
		if err != nil {
			return err
		}
	}

	points := intOpt(c, conf, "points", common.KeyGridPoints)
	shape := stringOpt(c, conf, "prior", common.KeyPriorShape)
	cred := floatOpt(c, conf, "credible", common.KeyCredibleMass)
	plotPoints := intOpt(c, conf, "plot-points", common.KeyPlotPoints)

	theta, prior, err := makePrior(shape, points)
	if err != nil {
		return err
	}

	var res *grid.Result
	if c.IsSet("data") {
		data, err := parseData(c.String("data"))
		if err != nil {
			return err
		}
		res, err = grid.Update(theta, prior, data, cred)
		if err != nil {
			return err
		}
	} else {
		heads, tails := c.Int("heads"), c.Int("tails")
		res, err = grid.UpdateCounts(theta, prior, heads, heads+tails, cred)
		if err != nil {
			return err
		}
	}

	log.Infof("z=%d N=%d: mean(θ|D)=%.4g, p(D)=%.4g", res.Ones, res.Trials, res.PosteriorMean(), res.Evidence)
	log.Infof("%.3g%% HDI %s, height %.3g", 100*res.HDI.Mass, boundsText(res), res.HDI.Height)

	opt := render.Options{MaxPoints: plotPoints}
	if out := c.String("out"); out != "" {
		if err := render.PNG(out, res, opt); err != nil {
			return err
		}
		log.Infof("wrote %s", out)
		return nil
	}
	return render.ASCII(os.Stdout, res, opt)
}

func coverageRun(c *cli.Context) error {
	trueTheta := c.Float64("theta")
	if trueTheta < 0 || trueTheta > 1 {
		return fmt.Errorf("true theta %v outside [0,1]", trueTheta)
	}
	trials := c.Int("trials")
	runs := c.Int("runs")
	if trials <= 0 || runs <= 0 {
		return fmt.Errorf("trials and runs must be positive")
	}
	cred := c.Float64("credible")

	theta, prior, err := makePrior(c.String("prior"), c.Int("points"))
	if err != nil {
		return err
	}

	hdiHitCounter.Clear()
	hdiWidthHistogram.Clear()
	rng := rand.New(rand.NewSource(c.Int64("seed")))
	if err := simulateCoverage(theta, prior, trueTheta, trials, runs, cred, rng, hdiHitCounter, hdiWidthHistogram); err != nil {
		return err
	}

	coverage := float64(hdiHitCounter.Count()) / float64(runs)
	log.Infof("θ=%.3g, %d flips × %d runs: HDI coverage %.3f (nominal %.2f)",
		trueTheta, trials, runs, coverage, cred)
	log.Infof("HDI width mean %.3f, median %.3f",
		hdiWidthHistogram.Mean()/1000, hdiWidthHistogram.Percentile(0.5)/1000)
	return nil
}

// simulateCoverage runs the calibration loop: runs experiments of
// trials flips each at trueTheta, one grid update per experiment,
// recording HDI hits on the counter and HDI widths (in thousandths of
// the unit interval) on the histogram. Deterministic for a given rng
// state.
func simulateCoverage(theta, prior []float64, trueTheta float64, trials, runs int, cred float64, rng *rand.Rand, hits metrics.Counter, widths metrics.Histogram) error {
	for run := 0; run < runs; run++ {
		ones := 0
		for i := 0; i < trials; i++ {
			if rng.Float64() < trueTheta {
				ones++
			}
		}
		res, err := grid.UpdateCounts(theta, prior, ones, trials, cred)
		if err != nil {
			return err
		}
		if hdiCovers(res, trueTheta) {
			hits.Inc(1)
		}
		widths.Update(int64(hdiWidth(res) * 1000))
	}
	return nil
}

// makePrior builds the theta grid and prior mass for a named shape.
func makePrior(shape string, points int) (theta, prior []float64, err error) {
	if points < 1 {
		return nil, nil, fmt.Errorf("grid needs at least 1 point, got %d", points)
	}
	switch shape {
	case "uniform":
		theta, prior = grid.Uniform(points)
	case "triangle":
		theta, prior = grid.Triangle(points)
	default:
		return nil, nil, fmt.Errorf("unknown prior shape %q, want uniform or triangle", shape)
	}
	return theta, prior, nil
}

// parseData parses a comma-separated sequence of 0/1 outcomes.
func parseData(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	data := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil || (v != 0 && v != 1) {
			return nil, fmt.Errorf("bad observation %q, want 0 or 1", f)
		}
		data = append(data, v)
	}
	return data, nil
}

// hdiCovers reports whether the true theta falls inside the HDI,
// widening each run by half a bin so a value between two midpoints
// still counts as covered.
func hdiCovers(res *grid.Result, trueTheta float64) bool {
	half := binWidth(res) / 2
	for _, b := range render.HDIBounds(res) {
		if trueTheta >= b[0]-half && trueTheta <= b[1]+half {
			return true
		}
	}
	return false
}

// hdiWidth is the total theta measure of the HDI, one bin per run plus
// the run extents.
func hdiWidth(res *grid.Result) float64 {
	w := 0.0
	bw := binWidth(res)
	for _, b := range render.HDIBounds(res) {
		w += b[1] - b[0] + bw
	}
	return w
}

func binWidth(res *grid.Result) float64 {
	if len(res.Theta) < 2 {
		return 1
	}
	return res.Theta[1] - res.Theta[0]
}

func boundsText(res *grid.Result) string {
	var parts []string
	for _, b := range render.HDIBounds(res) {
		parts = append(parts, fmt.Sprintf("[%.3g, %.3g]", b[0], b[1]))
	}
	return strings.Join(parts, " ")
}

// intOpt resolves a flag against the config file: an explicit flag wins,
// then the config value, then the flag default.
func intOpt(c *cli.Context, conf *common.Config, flag, key string) int {
	if c.IsSet(flag) {
		return c.Int(flag)
	}
	return conf.GetInt(key, c.Int(flag))
}

func floatOpt(c *cli.Context, conf *common.Config, flag, key string) float64 {
	if c.IsSet(flag) {
		return c.Float64(flag)
	}
	return conf.GetFloat64(key, c.Float64(flag))
}

func stringOpt(c *cli.Context, conf *common.Config, flag, key string) string {
	if c.IsSet(flag) {
		return c.String(flag)
	}
	return conf.GetString(key, c.String(flag))
}
