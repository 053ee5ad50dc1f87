package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestUpdateCoinFlips(t *testing.T) {
	theta := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	prior := []float64{0.1, 0.2, 0.4, 0.2, 0.1}
	data := []int{1, 1, 1, 0} // 3 heads, 1 tail

	res, err := Update(theta, prior, data, 0.95)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Ones)
	assert.Equal(t, 4, res.Trials)

	// theta^3 * (1-theta) at each grid point.
	wantLik := []float64{0.0009, 0.0189, 0.0625, 0.1029, 0.0729}
	for i := range wantLik {
		assert.InDelta(t, wantLik[i], res.Likelihood[i], 1e-12)
	}

	assert.InDelta(t, 0.05674, res.Evidence, 1e-12)
	assert.InDelta(t, 1, floats.Sum(res.Posterior), 1e-9)

	wantPost := []float64{0.0015862, 0.0666197, 0.4406063, 0.3627071, 0.1284808}
	for i := range wantPost {
		assert.InDelta(t, wantPost[i], res.Posterior[i], 1e-6)
	}

	// Three heads in four flips should drag the mean upward.
	assert.Greater(t, res.PosteriorMean(), res.PriorMean())
}

func TestUpdateNoData(t *testing.T) {
	theta, prior := Triangle(101)
	res, err := Update(theta, prior, nil, 0.95)
	require.NoError(t, err)

	// Likelihood is 1 everywhere, so the posterior is the prior.
	assert.InDelta(t, 1, res.Evidence, 1e-12)
	for i := range prior {
		assert.InDelta(t, prior[i], res.Posterior[i], 1e-12)
	}
}

func TestUpdateAllHeads(t *testing.T) {
	theta, prior := Uniform(100)
	res, err := Update(theta, prior, []int{1, 1, 1, 1, 1}, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 1, floats.Sum(res.Posterior), 1e-9)
	assert.Greater(t, res.PosteriorMean(), res.PriorMean())
}

func TestUpdatePosteriorSums(t *testing.T) {
	for _, n := range []int{1, 2, 10, 1001} {
		theta, prior := Triangle(n)
		res, err := UpdateCounts(theta, prior, 7, 10, 0.9)
		require.NoError(t, err)
		assert.InDelta(t, 1, floats.Sum(res.Posterior), 1e-9, "n=%d", n)
	}
}

func TestUpdateDeterministic(t *testing.T) {
	theta, prior := Triangle(501)
	a, err := UpdateCounts(theta, prior, 14, 20, 0.95)
	require.NoError(t, err)
	b, err := UpdateCounts(theta, prior, 14, 20, 0.95)
	require.NoError(t, err)

	assert.Equal(t, a.Evidence, b.Evidence)
	assert.Equal(t, a.Posterior, b.Posterior)
	assert.Equal(t, a.HDI, b.HDI)
}

func TestUpdateDistuvCrossCheck(t *testing.T) {
	// Under a uniform prior the posterior is proportional to the
	// likelihood, which is the binomial PMF without the choose(n,z)
	// factor. The factor cancels in ratios, so posterior ratios must
	// match distuv.Binomial PMF ratios.
	theta, prior := Uniform(9)
	const ones, trials = 6, 10

	res, err := UpdateCounts(theta, prior, ones, trials, 0.95)
	require.NoError(t, err)

	ref := make([]float64, len(theta))
	for i, th := range theta {
		ref[i] = distuv.Binomial{N: trials, P: th}.Prob(ones)
	}
	for i := 1; i < len(theta); i++ {
		assert.InEpsilon(t, ref[i]/ref[0], res.Posterior[i]/res.Posterior[0], 1e-9)
	}
}

func TestUpdateDegenerateEvidence(t *testing.T) {
	// A single grid point at theta=0 cannot produce a head.
	_, err := Update([]float64{0}, []float64{1}, []int{1}, 0.95)
	assert.ErrorIs(t, err, ErrDegenerateEvidence)
}

func TestUpdateInvalidInput(t *testing.T) {
	theta := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	prior := []float64{0.1, 0.2, 0.4, 0.2, 0.1}

	cases := []struct {
		name  string
		theta []float64
		prior []float64
		data  []int
		cred  float64
	}{
		{"length mismatch", theta, prior[:4], []int{1}, 0.95},
		{"empty grid", nil, nil, []int{1}, 0.95},
		{"theta out of range", []float64{-0.1, 0.5}, []float64{0.5, 0.5}, []int{1}, 0.95},
		{"negative prior", []float64{0.2, 0.8}, []float64{-0.5, 1.5}, []int{1}, 0.95},
		{"NaN prior", []float64{0.2, 0.8}, []float64{math.NaN(), 1}, []int{1}, 0.95},
		{"NaN theta", []float64{math.NaN(), 0.8}, []float64{0.5, 0.5}, []int{1}, 0.95},
		{"prior not normalized", []float64{0.2, 0.8}, []float64{0.3, 0.3}, []int{1}, 0.95},
		{"non-binary data", theta, prior, []int{1, 2}, 0.95},
		{"credible mass zero", theta, prior, []int{1}, 0},
		{"credible mass one", theta, prior, []int{1}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Update(c.theta, c.prior, c.data, c.cred)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpdateNaNPriorMessage(t *testing.T) {
	_, err := Update([]float64{0.2, 0.8}, []float64{math.NaN(), 1}, []int{1}, 0.95)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "want non-negative")
}

func TestUniform(t *testing.T) {
	theta, prior := Uniform(4)
	want := []float64{0.125, 0.375, 0.625, 0.875}
	for i := range want {
		assert.InDelta(t, want[i], theta[i], 1e-12)
	}
	assert.InDelta(t, 1, floats.Sum(prior), 1e-12)
	for _, p := range prior {
		assert.InDelta(t, 0.25, p, 1e-12)
	}
}

func TestTriangle(t *testing.T) {
	theta, prior := Triangle(1000)
	assert.Len(t, theta, 1000)
	assert.InDelta(t, 1, floats.Sum(prior), 1e-9)

	// Mass peaks in the middle and is symmetric.
	assert.Greater(t, prior[500], prior[10])
	assert.InDelta(t, prior[100], prior[899], 1e-12)

	// Bin midpoints: first at w/2, last at 1-w/2, evenly spaced.
	assert.InDelta(t, 0.0005, theta[0], 1e-12)
	assert.InDelta(t, 0.9995, theta[999], 1e-12)
}

func TestMidpointsSingle(t *testing.T) {
	theta, prior := Uniform(1)
	assert.Equal(t, []float64{0.5}, theta)
	assert.Equal(t, []float64{1}, prior)
}

func TestPosteriorMeanMatchesBeta(t *testing.T) {
	// With a fine uniform grid the posterior mean approaches the
	// conjugate Beta(z+1, n-z+1) mean (z+1)/(n+2).
	theta, prior := Uniform(10000)
	const ones, trials = 3, 4

	res, err := UpdateCounts(theta, prior, ones, trials, 0.95)
	require.NoError(t, err)

	want := distuv.Beta{Alpha: ones + 1, Beta: trials - ones + 1}.Mean()
	assert.InDelta(t, want, res.PosteriorMean(), 1e-4)
	assert.False(t, math.IsNaN(res.Evidence))
}
