package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"github.com/katalvlaran/lattix/lattice"
)

const (
	// DefaultPlaces is the number of decimal places quotes are rounded to.
	DefaultPlaces int32 = 4
	// MaxPlaces bounds Options.Places; a float64 carries no more digits.
	MaxPlaces int32 = 15
)

// Options configures Price and Sweep.
type Options struct {
	// Logger receives parameter warnings and lattice debug lines.
	Logger *slog.Logger
	// Places is the rounding applied to reported values.
	Places int32
	// OnUpdate, when set, receives the engine counters once per successful
	// Price or Sweep.
	OnUpdate func(model string, stats lattice.Stats)
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns Options with the default logger and DefaultPlaces.
func DefaultOptions() Options {
	return Options{Logger: slog.Default(), Places: DefaultPlaces}
}

// WithLogger sets the logger; nil keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithPlaces sets the rounding of reported values. Price and Sweep
// reject values outside [0, MaxPlaces] with ErrBadPlaces.
func WithPlaces(places int32) Option {
	return func(o *Options) { o.Places = places }
}

// WithOnUpdate installs an update hook.
func WithOnUpdate(fn func(model string, stats lattice.Stats)) Option {
	return func(o *Options) { o.OnUpdate = fn }
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Places < 0 || o.Places > MaxPlaces {
		return o, fmt.Errorf("%w: %d not in [0, %d]", ErrBadPlaces, o.Places, MaxPlaces)
	}

	return o, nil
}

// Request selects what Price renders besides the root values.
type Request struct {
	// Render names a node attribute to draw as a grid; empty skips it.
	Render string
	// Layout is the grid shape for Render.
	Layout lattice.Layout
	// Chain lists chain attributes to draw; ignored for chainless models.
	Chain []string
}

// Result is one priced scenario.
type Result struct {
	Model        string                     `json:"model"`
	Periods      int                        `json:"periods"`
	Params       map[string]float64         `json:"params"`
	Value        decimal.Decimal            `json:"value"`
	Root         map[string]decimal.Decimal `json:"root"`
	Tree         string                     `json:"tree,omitempty"`
	Chain        string                     `json:"chain,omitempty"`
	Unrecognized []string                   `json:"unrecognized,omitempty"`
	Stats        lattice.Stats              `json:"-"`
}

// Price values one scenario of m: overrides on top of the model defaults.
//
// Steps:
//  1. Build and validate parameters.
//  2. Update a fresh engine.
//  3. Read the root attributes and round them.
//  4. Render the requested grid and chain rows.
//
// Complexity: O(P²) time and memory.
func Price(ctx context.Context, m Model, overrides map[string]float64, req Request, opts ...Option) (*Result, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	// 1. Parameters.
	p, err := m.NewParams(overrides, lattice.WithParamLogger(o.Logger))
	if err != nil {
		return nil, fmt.Errorf("pricing: %s: %w", m.Name(), err)
	}

	// 2. Lattice.
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	engine := m.NewEngine(lattice.WithLogger(o.Logger))
	if err = engine.Update(p); err != nil {
		return nil, fmt.Errorf("pricing: %s: %w", m.Name(), err)
	}

	// 3. Root values.
	res := &Result{
		Model:        m.Name(),
		Periods:      engine.Periods(),
		Params:       p.Values(),
		Root:         make(map[string]decimal.Decimal, len(m.Attributes())),
		Unrecognized: p.Unrecognized(),
		Stats:        engine.Stats(),
	}
	for _, attr := range m.Attributes() {
		v, err := engine.Value(0, 0, attr)
		if err != nil {
			return nil, err
		}
		if res.Root[attr], err = quote(attr, v, o.Places); err != nil {
			return nil, fmt.Errorf("pricing: %s: %w", m.Name(), err)
		}
	}
	res.Value = res.Root[m.Headline()]

	// 4. Renderings.
	if req.Render != "" {
		if res.Tree, err = engine.Render(req.Render, req.Layout); err != nil {
			return nil, err
		}
	}
	if len(req.Chain) > 0 && engine.UsesChain() {
		if res.Chain, err = engine.RenderChain(req.Chain...); err != nil {
			return nil, err
		}
	}
	if o.OnUpdate != nil {
		o.OnUpdate(m.Name(), res.Stats)
	}

	return res, nil
}

// quote rounds v for reporting. Non-finite values have no decimal form.
func quote(attr string, v float64, places int32) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s = %v", lattice.ErrNonFinite, attr, v)
	}

	return decimal.NewFromFloat(v).Round(places), nil
}

// Point is one sweep sample.
type Point struct {
	Input float64         `json:"input"`
	Value decimal.Decimal `json:"value"`
}

// SweepResult holds the headline value of m at every swept input.
type SweepResult struct {
	Model     string  `json:"model"`
	Parameter string  `json:"parameter"`
	Points    []Point `json:"points"`
	// Builds counts lattice constructions; 1 unless periods was swept.
	Builds uint64 `json:"builds"`
}

// Sweep prices m at base with name set to each of values in turn, reusing
// one engine so the graph is rebuilt only when the period count changes.
//
// Errors: ErrUnknownParam, ErrNoValues, ctx.Err() between points, and any
// parameter or update failure at a point.
// Complexity: O(len(values)·P²) time, O(P²) memory.
func Sweep(ctx context.Context, m Model, base map[string]float64, name string, values []float64, opts ...Option) (*SweepResult, error) {
	if _, declared := m.Defaults()[name]; !declared {
		return nil, fmt.Errorf("%w: %s has no %q", ErrUnknownParam, m.Name(), name)
	}
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	p, err := m.NewParams(base, lattice.WithParamLogger(o.Logger))
	if err != nil {
		return nil, fmt.Errorf("pricing: %s: %w", m.Name(), err)
	}
	engine := m.NewEngine(lattice.WithLogger(o.Logger))

	res := &SweepResult{Model: m.Name(), Parameter: name, Points: make([]Point, 0, len(values))}
	for _, x := range values {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		point := p.Clone()
		point.Set(name, x)
		if err = engine.Update(point); err != nil {
			return nil, fmt.Errorf("pricing: %s at %s=%g: %w", m.Name(), name, x, err)
		}

		v, err := engine.Value(0, 0, m.Headline())
		if err != nil {
			return nil, err
		}
		q, err := quote(m.Headline(), v, o.Places)
		if err != nil {
			return nil, fmt.Errorf("pricing: %s at %s=%g: %w", m.Name(), name, x, err)
		}
		res.Points = append(res.Points, Point{Input: x, Value: q})
	}
	stats := engine.Stats()
	res.Builds = stats.Builds
	if o.OnUpdate != nil {
		o.OnUpdate(m.Name(), stats)
	}

	return res, nil
}
