package lattice

import "fmt"

// Cell is a read-only view of one lattice node and its links.
// It stays valid until the next Build replaces the node graph.
type Cell[N Node[N, C], C Chain[C]] struct {
	lat *Lattice[N, C]
	idx int
}

// Root returns the node at (0,0).
func (l *Lattice[N, C]) Root() (Cell[N, C], error) {
	return l.At(0, 0)
}

// At returns the node at (timeStep, state).
// Errors: ErrNotBuilt, ErrOutOfRange.
func (l *Lattice[N, C]) At(timeStep, state int) (Cell[N, C], error) {
	if !l.built {
		return Cell[N, C]{}, ErrNotBuilt
	}
	if timeStep < 0 || timeStep > l.periods || state < 0 || state > timeStep {
		return Cell[N, C]{}, fmt.Errorf("%w: (%d,%d) with periods = %d", ErrOutOfRange, timeStep, state, l.periods)
	}

	return Cell[N, C]{lat: l, idx: index(timeStep, state)}, nil
}

// Value reads attr off the node at (timeStep, state). Coordinate names
// (timeStep, state, offset) resolve even if the model does not expose them.
func (l *Lattice[N, C]) Value(timeStep, state int, attr string) (float64, error) {
	c, err := l.At(timeStep, state)
	if err != nil {
		return 0, err
	}
	v, ok := c.Lookup(attr)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAttr, attr)
	}

	return v, nil
}

// Node returns the model's node.
func (c Cell[N, C]) Node() N { return c.lat.nodes[c.idx] }

// Coord returns the node's coordinate.
func (c Cell[N, C]) Coord() Coord { return c.Node().base().coord }

// IsTerminal reports whether the node lies on the final time step.
func (c Cell[N, C]) IsTerminal() bool { return c.lat.upper[c.idx] == none }

// Upper returns the child at (t+1, s+1); false on terminal nodes.
func (c Cell[N, C]) Upper() (Cell[N, C], bool) { return c.link(c.lat.upper) }

// Lower returns the child at (t+1, s); false on terminal nodes.
func (c Cell[N, C]) Lower() (Cell[N, C], bool) { return c.link(c.lat.lower) }

// PrevUpper returns the parent at (t-1, s), which reaches this node as its
// lower child; false for the root and for s == t.
func (c Cell[N, C]) PrevUpper() (Cell[N, C], bool) { return c.link(c.lat.prevUpper) }

// PrevLower returns the parent at (t-1, s-1), which reaches this node as
// its upper child; false for the root and for s == 0.
func (c Cell[N, C]) PrevLower() (Cell[N, C], bool) { return c.link(c.lat.prevLower) }

func (c Cell[N, C]) link(table []int) (Cell[N, C], bool) {
	j := table[c.idx]
	if j == none {
		return Cell[N, C]{}, false
	}

	return Cell[N, C]{lat: c.lat, idx: j}, true
}

// Chain returns the chain node sharing this node's time step; false when
// the chain is inert.
func (c Cell[N, C]) Chain() (C, bool) {
	var zero C
	if c.lat.chain == nil {
		return zero, false
	}

	return c.lat.chain[c.Coord().TimeStep], true
}

// Lookup reads a named attribute: the node's own fields first, then the
// coordinate names.
func (c Cell[N, C]) Lookup(name string) (float64, bool) {
	if v, ok := c.Node().Attr(name); ok {
		return v, true
	}

	return identityAttr(c.Coord(), name)
}

// Get reads a named attribute, returning def if neither the node nor its
// coordinate defines it.
func (c Cell[N, C]) Get(name string, def float64) float64 {
	if v, ok := c.Lookup(name); ok {
		return v
	}

	return def
}

// ChainCell is a read-only view of one chain node and its neighbours.
type ChainCell[N Node[N, C], C Chain[C]] struct {
	lat *Lattice[N, C]
	t   int
}

// ChainAt returns the chain node at timeStep.
// Errors: ErrNotBuilt, ErrNoChain, ErrOutOfRange.
func (l *Lattice[N, C]) ChainAt(timeStep int) (ChainCell[N, C], error) {
	if !l.built {
		return ChainCell[N, C]{}, ErrNotBuilt
	}
	if l.chain == nil {
		return ChainCell[N, C]{}, ErrNoChain
	}
	if timeStep < 0 || timeStep > l.periods {
		return ChainCell[N, C]{}, fmt.Errorf("%w: chain step %d with periods = %d", ErrOutOfRange, timeStep, l.periods)
	}

	return ChainCell[N, C]{lat: l, t: timeStep}, nil
}

// ChainValue reads attr off the chain node at timeStep.
func (l *Lattice[N, C]) ChainValue(timeStep int, attr string) (float64, error) {
	c, err := l.ChainAt(timeStep)
	if err != nil {
		return 0, err
	}
	v, ok := c.Lookup(attr)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAttr, attr)
	}

	return v, nil
}

// Node returns the model's chain node.
func (c ChainCell[N, C]) Node() C { return c.lat.chain[c.t] }

// TimeStep returns the chain node's time index.
func (c ChainCell[N, C]) TimeStep() int { return c.t }

// IsTerminal reports whether this is the last chain node.
func (c ChainCell[N, C]) IsTerminal() bool { return c.t == len(c.lat.chain)-1 }

// Next returns the successor; false on the last node.
func (c ChainCell[N, C]) Next() (ChainCell[N, C], bool) {
	if c.IsTerminal() {
		return ChainCell[N, C]{}, false
	}

	return ChainCell[N, C]{lat: c.lat, t: c.t + 1}, true
}

// Prev returns the predecessor; false on the first node.
func (c ChainCell[N, C]) Prev() (ChainCell[N, C], bool) {
	if c.t == 0 {
		return ChainCell[N, C]{}, false
	}

	return ChainCell[N, C]{lat: c.lat, t: c.t - 1}, true
}

// Lookup reads a named attribute: the node's own fields, then timeStep.
func (c ChainCell[N, C]) Lookup(name string) (float64, bool) {
	if v, ok := c.Node().Attr(name); ok {
		return v, true
	}
	if name == AttrTimeStep {
		return float64(c.t), true
	}

	return 0, false
}

// Get reads a named attribute, returning def when it is undefined.
func (c ChainCell[N, C]) Get(name string, def float64) float64 {
	if v, ok := c.Lookup(name); ok {
		return v
	}

	return def
}
