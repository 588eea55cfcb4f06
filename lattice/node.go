package lattice

import "sort"

// Node is the contract a pricing model implements for lattice nodes.
// N is the model's own node type (usually a pointer) and C its chain type.
//
// Concrete types embed Base, which carries the identity the engine assigns
// at Build time. The engine calls LocalUpdate exactly once per node per
// Update, and BackInduct only on non-terminal nodes, after both children
// have completed their own LocalUpdate and BackInduct.
type Node[N any, C any] interface {
	// LocalUpdate computes the node's own quantities from its coordinate and
	// p alone, plus terminal conditions when IsTerminal reports true.
	LocalUpdate(p *Params)

	// BackInduct aggregates the already-updated children. chain is the
	// chain node at the same time step, or the zero C when the chain is inert.
	BackInduct(p *Params, up, down N, chain C)

	// Attr exposes a named numeric field for inspection and rendering.
	Attr(name string) (float64, bool)

	base() *Base
}

// Chain is the contract for one-dimensional nodes, one per time step, used
// for quantities that depend on elapsed time only.
type Chain[C any] interface {
	// LocalUpdate computes the node's own quantities, e.g. a terminal balance.
	LocalUpdate(p *Params)

	// BackInduct aggregates the already-updated successor. Never called on
	// the terminal chain node.
	BackInduct(p *Params, next C)

	// Attr exposes a named numeric field for inspection and rendering.
	Attr(name string) (float64, bool)

	chainBase() *ChainBase
}

// Base carries a lattice node's identity. Embed it in concrete node types;
// the engine fills it in when the node is built.
type Base struct {
	coord    Coord
	terminal bool
}

func (b *Base) base() *Base { return b }

// Coord returns the node's (timeStep, state) pair.
func (b *Base) Coord() Coord { return b.coord }

// TimeStep returns the node's time index.
func (b *Base) TimeStep() int { return b.coord.TimeStep }

// State returns the number of up moves taken to reach the node.
func (b *Base) State() int { return b.coord.State }

// Offset returns 2*State − TimeStep, the half-step distance from the center.
func (b *Base) Offset() int { return b.coord.Offset() }

// IsTerminal reports whether the node lies on the final time step.
func (b *Base) IsTerminal() bool { return b.terminal }

// ChainBase carries a chain node's identity. Embed it in concrete chain types.
type ChainBase struct {
	timeStep int
	initial  bool
	terminal bool
}

func (b *ChainBase) chainBase() *ChainBase { return b }

// TimeStep returns the chain node's time index.
func (b *ChainBase) TimeStep() int { return b.timeStep }

// IsInitial reports whether the node is the first of the chain.
func (b *ChainBase) IsInitial() bool { return b.initial }

// IsTerminal reports whether the node is the last of the chain.
func (b *ChainBase) IsTerminal() bool { return b.terminal }

// NoChain is the inert chain type for models without time-only quantities.
// A Factory built without a chain constructor never allocates it.
type NoChain struct {
	ChainBase
}

// LocalUpdate does nothing.
func (*NoChain) LocalUpdate(*Params) {}

// BackInduct does nothing.
func (*NoChain) BackInduct(*Params, *NoChain) {}

// Attr exposes nothing.
func (*NoChain) Attr(string) (float64, bool) { return 0, false }

// Accessors maps attribute names to field readers of T. Models use it to
// implement Attr without reflection:
//
//	var putAttrs = lattice.Accessors[*PutNode]{
//		"value": func(n *PutNode) float64 { return n.Value },
//	}
//
//	func (n *PutNode) Attr(name string) (float64, bool) { return putAttrs.Lookup(n, name) }
type Accessors[T any] map[string]func(T) float64

// Lookup reads the named attribute of n.
func (a Accessors[T]) Lookup(n T, name string) (float64, bool) {
	fn, ok := a[name]
	if !ok {
		return 0, false
	}

	return fn(n), true
}

// Names returns the registered attribute names in sorted order.
func (a Accessors[T]) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
