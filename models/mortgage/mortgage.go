package mortgage

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/lattix/lattice"
)

// Parameter and attribute names.
const (
	ParamStartPrincipal = "startPrincipal"
	ParamMortRate       = "mortRate"
	ParamPeriods        = "periods"
	ParamInterestStart  = "interestStart"
	ParamInterestVol    = "interestVol"
	ParamInterestDrift  = "interestDrift"
	ParamPrepayCost     = "prepayCost"

	DerivedUpMult        = "upMult"
	DerivedDownMult      = "downMult"
	DerivedPeriodPayment = "periodPayment"

	AttrInterestRate    = "interestRate"
	AttrNonCallValue    = "nonCallValue"
	AttrCallValue       = "callValue"
	AttrRemainPrincipal = "remainPrincipal"
)

// ErrDegenerate indicates inputs for which the payment schedule is undefined.
var ErrDegenerate = errors.New("mortgage: degenerate parameters")

// Defaults returns a fresh copy of the model's declared inputs.
func Defaults() lattice.Defaults {
	return lattice.Defaults{
		ParamStartPrincipal: 100,
		ParamMortRate:       0.07,
		ParamPeriods:        30,
		ParamInterestStart:  0.03,
		ParamInterestVol:    0.20,
		ParamInterestDrift:  0,
		ParamPrepayCost:     0,
	}
}

// NewParams overlays overrides on Defaults and computes the schedule.
func NewParams(overrides map[string]float64, opts ...lattice.ParamOption) (*lattice.Params, error) {
	return lattice.NewParams(Defaults(), overrides, Recalc, opts...)
}

// Recalc derives the rate multipliers and the level payment:
//
//	upMult        = exp(interestDrift + interestVol)
//	downMult      = exp(interestDrift − interestVol)
//	periodPayment = startPrincipal · mortRate / (1 − (1 + mortRate)^−periods)
func Recalc(p *lattice.Params) error {
	rate := p.Get(ParamMortRate)
	periods := p.Get(ParamPeriods)
	switch {
	case rate <= -1:
		return fmt.Errorf("%w: mortRate = %v", ErrDegenerate, rate)
	case periods <= 0:
		return fmt.Errorf("%w: periods = %v", ErrDegenerate, periods)
	}

	drift, vol := p.Get(ParamInterestDrift), p.Get(ParamInterestVol)
	if err := p.Derive(DerivedUpMult, math.Exp(drift+vol)); err != nil {
		return err
	}
	if err := p.Derive(DerivedDownMult, math.Exp(drift-vol)); err != nil {
		return err
	}

	// A zero coupon degenerates to straight-line repayment.
	payment := p.Get(ParamStartPrincipal) / periods
	if rate != 0 {
		payment = p.Get(ParamStartPrincipal) * rate / (1 - math.Pow(1+rate, -periods))
	}

	return p.Derive(DerivedPeriodPayment, payment)
}

// Balance is the chain node holding the principal outstanding after the
// payment at its time step.
type Balance struct {
	lattice.ChainBase

	RemainPrincipal float64
}

// LocalUpdate retires the loan at the final step.
func (b *Balance) LocalUpdate(*lattice.Params) {
	if b.IsTerminal() {
		b.RemainPrincipal = 0
	}
}

// BackInduct discounts the next balance plus the next payment at the
// mortgage rate.
func (b *Balance) BackInduct(p *lattice.Params, next *Balance) {
	b.RemainPrincipal = (next.RemainPrincipal + p.Get(DerivedPeriodPayment)) /
		(1 + p.Get(ParamMortRate))
}

// Attr exposes remainPrincipal.
func (b *Balance) Attr(name string) (float64, bool) {
	if name == AttrRemainPrincipal {
		return b.RemainPrincipal, true
	}

	return 0, false
}

// Node is one short-rate state.
type Node struct {
	lattice.Base

	InterestRate float64
	NonCallValue float64
	CallValue    float64
}

var nodeAttrs = lattice.Accessors[*Node]{
	AttrInterestRate: func(n *Node) float64 { return n.InterestRate },
	AttrNonCallValue: func(n *Node) float64 { return n.NonCallValue },
	AttrCallValue:    func(n *Node) float64 { return n.CallValue },
}

// LocalUpdate sets the short rate; at maturity nothing is left to pay.
func (n *Node) LocalUpdate(p *lattice.Params) {
	n.InterestRate = p.Get(ParamInterestStart) * math.Pow(p.Get(DerivedUpMult), float64(n.Offset()))
	if n.IsTerminal() {
		n.NonCallValue = 0
		n.CallValue = 0
	}
}

// BackInduct values the remaining payments. The callable value is the
// lesser of holding on and paying off the outstanding balance.
func (n *Node) BackInduct(p *lattice.Params, up, down *Node, balance *Balance) {
	payment := p.Get(DerivedPeriodPayment)
	discount := 1 + n.InterestRate

	n.NonCallValue = (0.5*(up.NonCallValue+payment) + 0.5*(down.NonCallValue+payment)) / discount
	hold := (0.5*(up.CallValue+payment) + 0.5*(down.CallValue+payment)) / discount
	payoff := balance.RemainPrincipal * (1 + p.Get(ParamPrepayCost))
	n.CallValue = math.Min(payoff, hold)
}

// Attr exposes interestRate, nonCallValue and callValue.
func (n *Node) Attr(name string) (float64, bool) {
	return nodeAttrs.Lookup(n, name)
}

// Factory builds mortgage lattices with an amortization chain.
var Factory = lattice.NewFactory(
	func() *Node { return new(Node) },
	func() *Balance { return new(Balance) },
).RegisterFormat(AttrNonCallValue, "%6.2f").
	RegisterFormat(AttrCallValue, "%6.2f").
	RegisterFormat(AttrRemainPrincipal, "%6.2f").
	RegisterFormat(AttrInterestRate, "%6.4f")

// New returns an unbuilt mortgage lattice.
func New(opts ...lattice.Option) *lattice.Lattice[*Node, *Balance] {
	return lattice.New(Factory, opts...)
}

// Valuation summarises a mortgage lattice at its root.
type Valuation struct {
	NonCallValue  float64
	CallValue     float64
	OptionValue   float64 // NonCallValue − CallValue, what the prepayment right is worth
	PeriodPayment float64
}

// Value builds a lattice for overrides and reports the root values.
func Value(overrides map[string]float64, logger *slog.Logger) (Valuation, error) {
	p, err := NewParams(overrides, lattice.WithParamLogger(logger))
	if err != nil {
		return Valuation{}, err
	}
	l := New(lattice.WithLogger(logger))
	if err = l.Update(p); err != nil {
		return Valuation{}, err
	}
	root, err := l.Root()
	if err != nil {
		return Valuation{}, err
	}
	n := root.Node()

	return Valuation{
		NonCallValue:  n.NonCallValue,
		CallValue:     n.CallValue,
		OptionValue:   n.NonCallValue - n.CallValue,
		PeriodPayment: p.Get(DerivedPeriodPayment),
	}, nil
}
