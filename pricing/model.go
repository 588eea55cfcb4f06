package pricing

import (
	"errors"

	"github.com/katalvlaran/lattix/lattice"
	"github.com/katalvlaran/lattix/models/european"
	"github.com/katalvlaran/lattix/models/mortgage"
)

// Sentinel errors.
var (
	ErrUnknownModel   = errors.New("pricing: unknown model")
	ErrDuplicateModel = errors.New("pricing: model already registered")
	ErrUnknownParam   = errors.New("pricing: parameter not declared by model")
	ErrNoValues       = errors.New("pricing: empty sweep")
	ErrBadPlaces      = errors.New("pricing: decimal places out of range")
)

// Registered model names.
const (
	EuropeanPut  = "europeanPut"
	EuropeanCall = "europeanCall"
	Mortgage     = "mortgage"
)

// Model is a priceable lattice model.
type Model interface {
	// Name is the registry key.
	Name() string
	// Description is a one-line summary for listings.
	Description() string
	// Defaults returns a fresh copy of the declared inputs.
	Defaults() lattice.Defaults
	// NewParams overlays overrides on Defaults and recalculates.
	NewParams(overrides map[string]float64, opts ...lattice.ParamOption) (*lattice.Params, error)
	// NewEngine returns an unbuilt lattice for the model.
	NewEngine(opts ...lattice.Option) lattice.Engine
	// Headline is the root attribute reported as the price.
	Headline() string
	// Attributes lists the node attributes, headline first.
	Attributes() []string
	// ChainAttributes lists the chain attributes; empty for chainless models.
	ChainAttributes() []string
}

// model adapts one concrete node/chain pair to Model.
type model[N lattice.Node[N, C], C lattice.Chain[C]] struct {
	name        string
	description string
	defaults    func() lattice.Defaults
	recalc      lattice.RecalcFunc
	factory     *lattice.Factory[N, C]
	attrs       []string
	chainAttrs  []string
}

func (m *model[N, C]) Name() string { return m.name }
func (m *model[N, C]) Description() string { return m.description }
func (m *model[N, C]) Defaults() lattice.Defaults { return m.defaults() }
func (m *model[N, C]) Headline() string { return m.attrs[0] }

func (m *model[N, C]) NewParams(overrides map[string]float64, opts ...lattice.ParamOption) (*lattice.Params, error) {
	return lattice.NewParams(m.defaults(), overrides, m.recalc, opts...)
}

func (m *model[N, C]) NewEngine(opts ...lattice.Option) lattice.Engine {
	return lattice.New(m.factory, opts...)
}

func (m *model[N, C]) Attributes() []string {
	return append([]string(nil), m.attrs...)
}

func (m *model[N, C]) ChainAttributes() []string {
	return append([]string(nil), m.chainAttrs...)
}

// NewEuropean returns the European option model for kind.
func NewEuropean(kind european.Kind) Model {
	name, desc := EuropeanPut, "European put on a CRR binomial lattice"
	if kind == european.Call {
		name, desc = EuropeanCall, "European call on a CRR binomial lattice"
	}

	return &model[*european.Node, *lattice.NoChain]{
		name:        name,
		description: desc,
		defaults:    european.Defaults,
		recalc:      european.Recalc,
		factory:     european.Factory(kind),
		attrs:       []string{european.AttrValue, european.AttrPrice},
	}
}

// NewMortgage returns the callable mortgage model.
func NewMortgage() Model {
	return &model[*mortgage.Node, *mortgage.Balance]{
		name:        Mortgage,
		description: "level-payment mortgage with and without prepayment",
		defaults:    mortgage.Defaults,
		recalc:      mortgage.Recalc,
		factory:     mortgage.Factory,
		attrs: []string{
			mortgage.AttrCallValue,
			mortgage.AttrNonCallValue,
			mortgage.AttrInterestRate,
		},
		chainAttrs: []string{mortgage.AttrRemainPrincipal},
	}
}
