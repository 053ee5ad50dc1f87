package grid

import (
	"fmt"
	"math/big"
)

// Bernoulli is the exact-arithmetic likelihood of a Bernoulli sequence:
// ones successes out of n trials, evaluated at rational parameter values.
type Bernoulli struct {
	N    *big.Int
	Ones *big.Int
}

func NewBernoulli(n, ones int64) *Bernoulli {
	return &Bernoulli{
		N:    big.NewInt(n),
		Ones: big.NewInt(ones),
	}
}

// At returns theta^ones * (1-theta)^(n-ones) exactly. With theta = p/q
// the value is p^ones * (q-p)^(n-ones) / q^n. Exp(0, 0) is 1, so an
// empty sequence has likelihood 1 everywhere.
func (b *Bernoulli) At(theta *big.Rat) *big.Rat {
	num := theta.Num()
	denom := theta.Denom()
	zeros := new(big.Int).Sub(b.N, b.Ones) // n-ones

	lnum := new(big.Int).Exp(num, b.Ones, nil)
	rnum := new(big.Int).Exp(new(big.Int).Sub(denom, num), zeros, nil)
	resNum := new(big.Int).Mul(lnum, rnum)
	resDenom := new(big.Int).Exp(denom, b.N, nil)

	return new(big.Rat).SetFrac(resNum, resDenom)
}

// ExactUpdate computes the grid posterior in exact rational arithmetic.
// It mirrors UpdateCounts for callers that supply rational grids and
// priors, and backs the cross-checks of the float path.
func ExactUpdate(theta, prior []*big.Rat, ones, trials int64) (posterior []*big.Rat, evidence *big.Rat, err error) {
	if len(theta) == 0 || len(theta) != len(prior) {
		return nil, nil, fmt.Errorf("%w: grid has %d points but prior has %d",
			ErrInvalidInput, len(theta), len(prior))
	}
	if ones < 0 || trials < 0 || ones > trials {
		return nil, nil, fmt.Errorf("%w: %d ones in %d trials", ErrInvalidInput, ones, trials)
	}

	b := NewBernoulli(trials, ones)
	lik := make([]*big.Rat, len(theta))
	evidence = new(big.Rat)
	for i, t := range theta {
		lik[i] = b.At(t)
		evidence.Add(evidence, new(big.Rat).Mul(lik[i], prior[i]))
	}
	if evidence.Sign() == 0 {
		return nil, nil, fmt.Errorf("%w: %d ones in %d trials", ErrDegenerateEvidence, ones, trials)
	}

	posterior = make([]*big.Rat, len(theta))
	for i := range theta {
		posterior[i] = new(big.Rat).Quo(new(big.Rat).Mul(lik[i], prior[i]), evidence)
	}
	return posterior, evidence, nil
}
