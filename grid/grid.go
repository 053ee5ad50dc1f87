// Package grid implements Bayesian updating for a Bernoulli parameter
// whose prior is specified as a probability mass function on a finite
// grid of candidate values in [0,1]. All computation is pure; callers
// may invoke it concurrently.
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInvalidInput reports inputs that violate the contract before
	// any computation takes place.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateEvidence reports that every grid point has zero
	// likelihood for the observed data, leaving the posterior undefined.
	ErrDegenerateEvidence = errors.New("evidence is zero, posterior undefined")
)

// priorSumTol is the tolerance on the prior's total mass.
const priorSumTol = 1e-6

// Result holds the outcome of a grid update. All slices have the same
// length as the input grid.
type Result struct {
	Theta      []float64 // candidate parameter values
	Prior      []float64 // prior mass at each theta
	Likelihood []float64 // likelihood of the data at each theta
	Posterior  []float64 // posterior mass at each theta, sums to 1
	Evidence   float64   // marginal probability of the data
	Ones       int       // number of 1s observed
	Trials     int       // total number of observations
	HDI        HDI       // highest-density interval of the posterior
}

// PriorMean returns the prior-weighted mean of theta.
func (r *Result) PriorMean() float64 { return stat.Mean(r.Theta, r.Prior) }

// PosteriorMean returns the posterior-weighted mean of theta.
func (r *Result) PosteriorMean() float64 { return stat.Mean(r.Theta, r.Posterior) }

// Update performs a Bayesian update of the prior mass on theta given a
// sequence of Bernoulli observations (0s and 1s), and locates the
// highest-density interval holding at least credMass posterior mass.
// Only the number of 1s and the number of trials enter the likelihood;
// observation order is irrelevant.
func Update(theta, prior []float64, data []int, credMass float64) (*Result, error) {
	ones := 0
	for i, d := range data {
		if d != 0 && d != 1 {
			return nil, fmt.Errorf("%w: data[%d] = %d, want 0 or 1", ErrInvalidInput, i, d)
		}
		ones += d
	}
	return UpdateCounts(theta, prior, ones, len(data), credMass)
}

// UpdateCounts is Update applied to the sufficient statistics directly:
// ones successes out of trials observations.
func UpdateCounts(theta, prior []float64, ones, trials int, credMass float64) (*Result, error) {
	if err := validate(theta, prior, ones, trials, credMass); err != nil {
		return nil, err
	}

	// Likelihood of the data at each theta. math.Pow(0, 0) is 1, so an
	// empty data set yields likelihood 1 everywhere and the posterior
	// reduces to the prior.
	lik := make([]float64, len(theta))
	for i, t := range theta {
		lik[i] = math.Pow(t, float64(ones)) * math.Pow(1-t, float64(trials-ones))
	}

	evidence := floats.Dot(lik, prior)
	if evidence == 0 {
		return nil, fmt.Errorf("%w: %d ones in %d trials", ErrDegenerateEvidence, ones, trials)
	}

	post := make([]float64, len(theta))
	floats.MulTo(post, lik, prior)
	floats.Scale(1/evidence, post)

	hdi, err := HDIOfGrid(post, credMass)
	if err != nil {
		return nil, err
	}

	return &Result{
		Theta:      theta,
		Prior:      prior,
		Likelihood: lik,
		Posterior:  post,
		Evidence:   evidence,
		Ones:       ones,
		Trials:     trials,
		HDI:        hdi,
	}, nil
}

func validate(theta, prior []float64, ones, trials int, credMass float64) error {
	if len(theta) == 0 {
		return fmt.Errorf("%w: empty grid", ErrInvalidInput)
	}
	if len(theta) != len(prior) {
		return fmt.Errorf("%w: grid has %d points but prior has %d", ErrInvalidInput, len(theta), len(prior))
	}
	if ones < 0 || trials < 0 || ones > trials {
		return fmt.Errorf("%w: %d ones in %d trials", ErrInvalidInput, ones, trials)
	}
	if !(credMass > 0 && credMass < 1) {
		return fmt.Errorf("%w: credible mass %v outside (0,1)", ErrInvalidInput, credMass)
	}
	for i, t := range theta {
		if t < 0 || t > 1 || math.IsNaN(t) {
			return fmt.Errorf("%w: theta[%d] = %v outside [0,1]", ErrInvalidInput, i, t)
		}
	}
	for i, p := range prior {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("%w: prior[%d] = %v, want non-negative", ErrInvalidInput, i, p)
		}
	}
	if sum := floats.Sum(prior); math.Abs(sum-1) > priorSumTol {
		return fmt.Errorf("%w: prior mass sums to %v, want 1", ErrInvalidInput, sum)
	}
	return nil
}

// Uniform returns an n-point grid of bin midpoints on [0,1] together
// with the uniform prior mass function.
func Uniform(n int) (theta, prior []float64) {
	theta = midpoints(n)
	prior = make([]float64, n)
	for i := range prior {
		prior[i] = 1 / float64(n)
	}
	return theta, prior
}

// Triangle returns an n-point grid of bin midpoints on [0,1] with the
// triangular prior proportional to min(theta, 1-theta), normalized to
// total mass 1.
func Triangle(n int) (theta, prior []float64) {
	theta = midpoints(n)
	prior = make([]float64, n)
	for i, t := range theta {
		prior[i] = math.Min(t, 1-t)
	}
	floats.Scale(1/floats.Sum(prior), prior)
	return theta, prior
}

// midpoints returns the centers of n equal-width bins covering [0,1].
func midpoints(n int) []float64 {
	if n == 1 {
		return []float64{0.5}
	}
	w := 1 / float64(n)
	theta := make([]float64, n)
	floats.Span(theta, w/2, 1-w/2)
	return theta
}
