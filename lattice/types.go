// Package lattice defines coordinates, layouts, options and sentinel errors
// shared by the lattice engine.
package lattice

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Sentinel errors for lattice and parameter operations.
var (
	// ErrNilParams indicates Update was called without a parameter set.
	ErrNilParams = errors.New("lattice: params is nil")

	// ErrBadPeriods indicates the period count is missing, negative, not
	// integral or above MaxPeriods.
	ErrBadPeriods = errors.New("lattice: periods must be a non-negative integer")

	// ErrRecalc wraps a failure reported by a model's recalculation step.
	ErrRecalc = errors.New("lattice: recalculation failed")

	// ErrNonFinite indicates a derived quantity evaluated to NaN or ±Inf.
	ErrNonFinite = errors.New("lattice: derived value is not finite")

	// ErrParamNotSet indicates a parameter lookup for a name that holds no value.
	ErrParamNotSet = errors.New("lattice: parameter not set")

	// ErrNotInteger indicates an integral parameter holds a fractional value.
	ErrNotInteger = errors.New("lattice: parameter is not an integer")

	// ErrNotBuilt indicates the lattice has no node graph yet.
	ErrNotBuilt = errors.New("lattice: lattice has not been built")

	// ErrOutOfRange indicates a (timeStep, state) pair outside the lattice.
	ErrOutOfRange = errors.New("lattice: coordinate out of range")

	// ErrNoChain indicates chain access on a model without a chain.
	ErrNoChain = errors.New("lattice: model does not use a chain")

	// ErrUnknownAttr indicates a node does not expose the requested attribute.
	ErrUnknownAttr = errors.New("lattice: unknown attribute")

	// ErrUnknownLayout indicates an unrecognized layout name.
	ErrUnknownLayout = errors.New("lattice: unknown layout")
)

// Identity attribute names resolved from a node's coordinate when the
// model itself does not expose them.
const (
	AttrTimeStep = "timeStep"
	AttrState    = "state"
	AttrOffset   = "offset"
)

// Coord identifies a lattice node: 0 ≤ State ≤ TimeStep ≤ periods.
type Coord struct {
	TimeStep int
	State    int
}

// Offset returns the signed number of half steps from the lattice center,
// 2*State − TimeStep. Models use it as the exponent of a step factor.
func (c Coord) Offset() int {
	return 2*c.State - c.TimeStep
}

// String renders the coordinate as "(t,s)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.TimeStep, c.State)
}

// identityAttr resolves the coordinate-derived attribute names.
func identityAttr(c Coord, name string) (float64, bool) {
	switch name {
	case AttrTimeStep:
		return float64(c.TimeStep), true
	case AttrState:
		return float64(c.State), true
	case AttrOffset:
		return float64(c.Offset()), true
	default:
		return 0, false
	}
}

// Layout selects how Render arranges the lattice rows.
type Layout int

const (
	// LayoutTree centers the lattice: one row per offset, from +P down to −P.
	LayoutTree Layout = iota
	// LayoutTriangle left-justifies the lattice: one row per state, from P down to 0.
	LayoutTriangle
)

// String returns the canonical layout name.
func (l Layout) String() string {
	switch l {
	case LayoutTree:
		return "tree"
	case LayoutTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout maps "tree" or "triangle" (case-insensitive) to a Layout.
// An empty name selects LayoutTree.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "tree":
		return LayoutTree, nil
	case "triangle", "right-triangle":
		return LayoutTriangle, nil
	default:
		return LayoutTree, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
}

// Option configures a Lattice at construction.
type Option func(*Options)

// Options holds the Lattice configuration.
type Options struct {
	// Logger receives rebuild diagnostics at debug level. Defaults to slog.Default().
	Logger *slog.Logger

	// OnVisit, if non-nil, is invoked once for every node processed by a
	// traversal, after its BackInduct step. Intended for instrumentation.
	OnVisit func(c Coord)
}

// DefaultOptions returns Options with the default logger and no hooks.
func DefaultOptions() Options {
	return Options{
		Logger:  slog.Default(),
		OnVisit: nil,
	}
}

// WithLogger sets the logger used by the Lattice. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithOnVisit installs fn as a per-node post-order hook.
func WithOnVisit(fn func(c Coord)) Option {
	return func(o *Options) {
		o.OnVisit = fn
	}
}

// Stats reports cumulative work done by one Lattice.
type Stats struct {
	// Builds counts node-graph constructions.
	Builds uint64
	// Traversals counts completed Update passes.
	Traversals uint64
	// LastVisits is the number of nodes processed by the latest traversal.
	LastVisits uint64
	// TotalVisits is the number of nodes processed across all traversals.
	TotalVisits uint64
}

// MaxPeriods bounds the period count Build accepts. The arena holds
// (P+1)(P+2)/2 nodes, about 134 million at the limit.
const MaxPeriods = 1 << 14

// NodeCount returns the number of lattice nodes for the given period count,
// (P+1)(P+2)/2. Negative periods yield 0.
func NodeCount(periods int) int {
	if periods < 0 {
		return 0
	}

	return (periods + 1) * (periods + 2) / 2
}

// index maps (t,s) to the dense triangular arena slot t(t+1)/2 + s.
// Complexity: O(1).
func index(t, s int) int {
	return t*(t+1)/2 + s
}
