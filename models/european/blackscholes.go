package european

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/lattix/lattice"
)

// BlackScholes returns the continuous-time price of a European option with
// a continuous dividend yield, reading the same inputs as the lattice
// model. The lattice value converges to it as periods grows.
func BlackScholes(kind Kind, p *lattice.Params) (float64, error) {
	s := p.Get(ParamInitialPrice)
	k := p.Get(ParamStrike)
	t := p.Get(ParamNumYears)
	v := p.Get(ParamVolatility)
	r := p.Get(ParamRate)
	q := p.Get(ParamDivRate)
	if s <= 0 || k <= 0 || t <= 0 || v <= 0 {
		return 0, fmt.Errorf("%w: initialPrice, strike, numYears and volatility must be positive", ErrDegenerate)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r-q+0.5*v*v)*t) / (v * sqrtT)
	d2 := d1 - v*sqrtT
	n := distuv.UnitNormal
	spot := s * math.Exp(-q*t)
	strike := k * math.Exp(-r*t)

	if kind == Call {
		return spot*n.CDF(d1) - strike*n.CDF(d2), nil
	}

	return strike*n.CDF(-d2) - spot*n.CDF(-d1), nil
}
