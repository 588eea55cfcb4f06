package european

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/lattix/lattice"
)

// Parameter and attribute names.
const (
	ParamInitialPrice = "initialPrice"
	ParamStrike       = "strike"
	ParamNumYears     = "numYears"
	ParamVolatility   = "volatility"
	ParamPeriods      = "periods"
	ParamRate         = "rate"
	ParamDivRate      = "divRate"

	DerivedPeriodRate = "periodRate"
	DerivedStepVol    = "stepVol"
	DerivedFlipVol    = "flipVol"
	DerivedQUp        = "qUp"
	DerivedQDown      = "qDown"

	AttrPrice = "price"
	AttrValue = "value"
)

// ErrDegenerate indicates inputs for which the lattice step is undefined.
var ErrDegenerate = errors.New("european: degenerate parameters")

// Kind selects the payoff at maturity.
type Kind int

const (
	// Put pays max(strike − S, 0).
	Put Kind = iota
	// Call pays max(S − strike, 0).
	Call
)

// String returns "put" or "call".
func (k Kind) String() string {
	if k == Call {
		return "call"
	}

	return "put"
}

// payoff evaluates the terminal condition for spot s.
func (k Kind) payoff(s, strike float64) float64 {
	if k == Call {
		return math.Max(s-strike, 0)
	}

	return math.Max(strike-s, 0)
}

// Defaults returns a fresh copy of the model's declared inputs.
func Defaults() lattice.Defaults {
	return lattice.Defaults{
		ParamInitialPrice: 100,
		ParamStrike:       100,
		ParamNumYears:     0.25,
		ParamVolatility:   0.234,
		ParamPeriods:      10,
		ParamRate:         0.1194,
		ParamDivRate:      0,
	}
}

// NewParams overlays overrides on Defaults and computes the step quantities.
func NewParams(overrides map[string]float64, opts ...lattice.ParamOption) (*lattice.Params, error) {
	return lattice.NewParams(Defaults(), overrides, Recalc, opts...)
}

// Recalc derives the per-step rate, the up/down factors and the
// risk-neutral probabilities:
//
//	dt         = numYears / periods
//	periodRate = rate · dt
//	stepVol    = exp(volatility · √dt),  flipVol = 1 / stepVol
//	qUp        = (exp((rate − divRate)·dt) − flipVol) / (stepVol − flipVol)
//	qDown      = 1 − qUp
func Recalc(p *lattice.Params) error {
	periods := p.Get(ParamPeriods)
	years := p.Get(ParamNumYears)
	vol := p.Get(ParamVolatility)
	switch {
	case periods <= 0:
		return fmt.Errorf("%w: periods = %v", ErrDegenerate, periods)
	case years <= 0:
		return fmt.Errorf("%w: numYears = %v", ErrDegenerate, years)
	case vol <= 0:
		return fmt.Errorf("%w: volatility = %v", ErrDegenerate, vol)
	}

	dt := years / periods
	stepVol := math.Exp(vol * math.Sqrt(dt))
	flipVol := 1 / stepVol
	qUp := (math.Exp((p.Get(ParamRate)-p.Get(ParamDivRate))*dt) - flipVol) / (stepVol - flipVol)
	if !(qUp > 0 && qUp < 1) {
		return fmt.Errorf("%w: qUp = %v outside (0,1)", ErrDegenerate, qUp)
	}

	for _, d := range []struct {
		name string
		v    float64
	}{
		{DerivedPeriodRate, p.Get(ParamRate) * dt},
		{DerivedStepVol, stepVol},
		{DerivedFlipVol, flipVol},
		{DerivedQUp, qUp},
		{DerivedQDown, 1 - qUp},
	} {
		if err := p.Derive(d.name, d.v); err != nil {
			return err
		}
	}

	return nil
}

// Node is one state of the underlying on the lattice.
type Node struct {
	lattice.Base
	kind Kind

	// Price is the underlying at this node.
	Price float64
	// Value is the option value at this node.
	Value float64
}

var nodeAttrs = lattice.Accessors[*Node]{
	AttrPrice: func(n *Node) float64 { return n.Price },
	AttrValue: func(n *Node) float64 { return n.Value },
}

// LocalUpdate sets the underlying price and, at maturity, the payoff.
func (n *Node) LocalUpdate(p *lattice.Params) {
	n.Price = p.Get(ParamInitialPrice) * math.Pow(p.Get(DerivedStepVol), float64(n.Offset()))
	if n.IsTerminal() {
		n.Value = n.kind.payoff(n.Price, p.Get(ParamStrike))
	}
}

// BackInduct discounts the risk-neutral expectation of the children.
func (n *Node) BackInduct(p *lattice.Params, up, down *Node, _ *lattice.NoChain) {
	n.Value = (p.Get(DerivedQUp)*up.Value + p.Get(DerivedQDown)*down.Value) /
		math.Exp(p.Get(DerivedPeriodRate))
}

// Attr exposes price and value.
func (n *Node) Attr(name string) (float64, bool) {
	return nodeAttrs.Lookup(n, name)
}

// Kind returns the payoff the node evaluates at maturity.
func (n *Node) Kind() Kind {
	return n.kind
}

// newFactory returns a factory building nodes of the given payoff.
func newFactory(kind Kind) *lattice.Factory[*Node, *lattice.NoChain] {
	return lattice.NewFactory[*Node, *lattice.NoChain](
		func() *Node { return &Node{kind: kind} }, nil,
	).RegisterFormat(AttrValue, "%6.2f").
		RegisterFormat(AttrPrice, "%6.2f")
}

var (
	// PutFactory builds European put lattices.
	PutFactory = newFactory(Put)
	// CallFactory builds European call lattices.
	CallFactory = newFactory(Call)
)

// Factory returns the shared factory for kind.
func Factory(kind Kind) *lattice.Factory[*Node, *lattice.NoChain] {
	if kind == Call {
		return CallFactory
	}

	return PutFactory
}

// New returns an unbuilt lattice for kind.
func New(kind Kind, opts ...lattice.Option) *lattice.Lattice[*Node, *lattice.NoChain] {
	return lattice.New(Factory(kind), opts...)
}

// Price builds a lattice for overrides and returns the root value.
func Price(kind Kind, overrides map[string]float64, logger *slog.Logger) (float64, error) {
	p, err := NewParams(overrides, lattice.WithParamLogger(logger))
	if err != nil {
		return 0, err
	}
	l := New(kind, lattice.WithLogger(logger))
	if err = l.Update(p); err != nil {
		return 0, err
	}

	return l.Value(0, 0, AttrValue)
}
