package lattice

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Defaults is a model's declared parameter table: name → default value.
type Defaults map[string]float64

// RecalcFunc computes a model's derived quantities from the current inputs.
// It must be pure and idempotent: read inputs via Get/Lookup, publish
// results via Derive, and touch nothing else.
type RecalcFunc func(p *Params) error

// ParamOption configures a Params at construction.
type ParamOption func(*Params)

// WithParamLogger sets the logger that receives unrecognized-parameter
// warnings. A nil logger is ignored.
func WithParamLogger(logger *slog.Logger) ParamOption {
	return func(p *Params) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Params holds a model's effective inputs and the derived quantities
// computed from them.
//
// Inputs come from the declared Defaults overlaid by caller overrides.
// Derived values are rebuilt from scratch by every Recalc, so a Params
// handed to Lattice.Update always carries values consistent with its inputs.
// Params is not safe for concurrent mutation.
type Params struct {
	defaults   Defaults
	inputs     map[string]float64
	derived    map[string]float64
	recalc     RecalcFunc
	logger     *slog.Logger
	unknown    []string
	generation uint64
}

// NewParams assembles effective values from defaults and overrides, warns
// about override names the defaults do not declare, then runs recalc.
//
// Unrecognized names are non-fatal: the value is kept and readable, the
// name is reported by Unrecognized. A nil defaults table accepts every
// override without warnings. A nil recalc means the model has no derived
// quantities.
//
// Returns an error wrapping ErrRecalc if the recalculation fails.
// Complexity: O(D + O·log O) plus the cost of recalc.
func NewParams(defaults Defaults, overrides map[string]float64, recalc RecalcFunc, opts ...ParamOption) (*Params, error) {
	p := &Params{
		defaults: defaults,
		inputs:   make(map[string]float64, len(defaults)+len(overrides)),
		derived:  make(map[string]float64),
		recalc:   recalc,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	// 1. Declared names: override wins over default.
	var (
		name string
		def  float64
		v    float64
		ok   bool
	)
	for name, def = range defaults {
		if v, ok = overrides[name]; !ok {
			v = def
		}
		p.inputs[name] = v
	}

	// 2. Undeclared names, in sorted order so warnings are deterministic.
	for _, name = range sortedKeys(overrides) {
		if _, ok = defaults[name]; ok {
			continue
		}
		p.Set(name, overrides[name])
	}

	// 3. Derived quantities.
	if err := p.Recalc(); err != nil {
		return nil, err
	}

	return p, nil
}

// declared reports whether name is part of the defaults table.
// With no defaults table every name counts as declared.
func (p *Params) declared(name string) bool {
	if p.defaults == nil {
		return true
	}
	_, ok := p.defaults[name]

	return ok
}

// Set stores an input value. Names outside the defaults table are accepted
// and warned about once per name, the same way NewParams treats them.
// Call Recalc (or Lattice.Update, which does) before relying on derived values.
func (p *Params) Set(name string, v float64) {
	p.inputs[name] = v
	if p.declared(name) {
		return
	}
	for _, u := range p.unknown {
		if u == name {
			return
		}
	}
	p.unknown = append(p.unknown, name)
	sort.Strings(p.unknown)
	p.logger.Warn("lattice: parameter not declared by model, value kept",
		slog.String("name", name),
		slog.Float64("value", v))
}

// Derive publishes a derived quantity. It rejects NaN and ±Inf with an
// error wrapping ErrNonFinite that names the quantity, so a degenerate
// input fails at the recalculation that produced it.
func (p *Params) Derive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v", ErrNonFinite, name, v)
	}
	p.derived[name] = v

	return nil
}

// Recalc discards all derived values and runs the model's recalculation.
// Calling it repeatedly with unchanged inputs yields identical values.
func (p *Params) Recalc() error {
	clear(p.derived)
	if p.recalc == nil {
		return nil
	}
	if err := p.recalc(p); err != nil {
		return fmt.Errorf("%w: %w", ErrRecalc, err)
	}

	return nil
}

// Lookup returns the named value, derived quantities first, then inputs.
func (p *Params) Lookup(name string) (float64, bool) {
	if v, ok := p.derived[name]; ok {
		return v, true
	}
	v, ok := p.inputs[name]

	return v, ok
}

// Get returns the named value, or 0 when the name holds no value.
func (p *Params) Get(name string) float64 {
	v, _ := p.Lookup(name)

	return v
}

// Int returns the named value as an int. It fails with ErrParamNotSet when
// the name holds no value and ErrNotInteger when the value is fractional.
func (p *Params) Int(name string) (int, error) {
	v, ok := p.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrParamNotSet, name)
	}
	if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
		return 0, fmt.Errorf("%w: %s = %v", ErrNotInteger, name, v)
	}

	return int(v), nil
}

// Periods returns the "periods" input, the number of lattice time steps.
// Errors wrap ErrBadPeriods.
func (p *Params) Periods() (int, error) {
	n, err := p.Int("periods")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadPeriods, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: periods = %d", ErrBadPeriods, n)
	}

	return n, nil
}

// Generation returns the traversal stamp of the last Lattice.Update that
// consumed this Params, or 0 if none has.
func (p *Params) Generation() uint64 {
	return p.generation
}

// Unrecognized returns the sorted names that were set but not declared.
func (p *Params) Unrecognized() []string {
	out := make([]string, len(p.unknown))
	copy(out, p.unknown)

	return out
}

// Names returns the sorted input names.
func (p *Params) Names() []string {
	return sortedKeys(p.inputs)
}

// Derived returns the sorted names of the derived quantities.
func (p *Params) Derived() []string {
	return sortedKeys(p.derived)
}

// Values returns a copy of all inputs and derived quantities.
func (p *Params) Values() map[string]float64 {
	out := make(map[string]float64, len(p.inputs)+len(p.derived))
	for k, v := range p.inputs {
		out[k] = v
	}
	for k, v := range p.derived {
		out[k] = v
	}

	return out
}

// Clone returns an independent copy: mutating the clone's inputs or derived
// values never affects p. The defaults table, recalc func and logger are shared.
// Complexity: O(inputs + derived).
func (p *Params) Clone() *Params {
	c := &Params{
		defaults:   p.defaults,
		inputs:     make(map[string]float64, len(p.inputs)),
		derived:    make(map[string]float64, len(p.derived)),
		recalc:     p.recalc,
		logger:     p.logger,
		unknown:    append([]string(nil), p.unknown...),
		generation: p.generation,
	}
	for k, v := range p.inputs {
		c.inputs[k] = v
	}
	for k, v := range p.derived {
		c.derived[k] = v
	}

	return c
}

// String renders all values as "{name: value, ...}" in name order.
func (p *Params) String() string {
	values := p.Values()
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range sortedKeys(values) {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(strconv.FormatFloat(values[k], 'g', -1, 64))
	}
	b.WriteByte('}')

	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
