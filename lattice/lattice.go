package lattice

import (
	"fmt"
	"log/slog"
)

// none marks a missing link in the arena's edge tables.
const none = -1

// Lattice owns a recombining binomial node graph and drives the induction
// over it.
//
// Nodes live in a dense triangular arena: node (t,s) sits at t(t+1)/2+s.
// Edges are stored as arena indices in four parallel tables, so the shared
// children of the recombining graph need no owning references. Chain nodes,
// when the model uses them, live in a slice indexed by time step.
//
// A Lattice is single-threaded: Build and Update run to completion and
// mutate node state in place.
type Lattice[N Node[N, C], C Chain[C]] struct {
	factory *Factory[N, C]
	opts    Options

	periods    int
	built      bool
	generation uint64

	nodes     []N
	upper     []int // child at (t+1, s+1)
	lower     []int // child at (t+1, s)
	prevUpper []int // parent at (t-1, s), reaching this node as its lower child
	prevLower []int // parent at (t-1, s-1), reaching this node as its upper child
	stamps    []uint64

	chain []C

	stats Stats
}

// New returns an unbuilt Lattice for the factory's model. The first Update
// (or an explicit Build) constructs the node graph.
func New[N Node[N, C], C Chain[C]](factory *Factory[N, C], opts ...Option) *Lattice[N, C] {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Lattice[N, C]{factory: factory, opts: o}
}

// Build discards any existing node graph and constructs a fresh one for
// periods time steps: (periods+1)(periods+2)/2 lattice nodes and, if the
// model uses a chain, periods+1 chain nodes. Two builds never share nodes.
//
// Returns ErrBadPeriods for a period count outside [0, MaxPeriods].
// Complexity: O(P²) time and memory.
func (l *Lattice[N, C]) Build(periods int) error {
	if periods < 0 || periods > MaxPeriods {
		return fmt.Errorf("%w: periods = %d, limit %d", ErrBadPeriods, periods, MaxPeriods)
	}

	// 1. Allocate the arena and the chain.
	n := NodeCount(periods)
	nodes := make([]N, n)
	upper := make([]int, n)
	lower := make([]int, n)
	prevUpper := make([]int, n)
	prevLower := make([]int, n)
	var chain []C
	if l.factory.UsesChain() {
		chain = make([]C, periods+1)
	}

	var (
		t, s, i int
		b       *Base
	)
	for t = 0; t <= periods; t++ {
		if chain != nil {
			c := l.factory.newChain()
			cb := c.chainBase()
			cb.timeStep = t
			cb.initial = t == 0
			cb.terminal = t == periods
			chain[t] = c
		}
		for s = 0; s <= t; s++ {
			i = index(t, s)
			nodes[i] = l.factory.newNode()
			b = nodes[i].base()
			b.coord = Coord{TimeStep: t, State: s}
			b.terminal = t == periods
			upper[i], lower[i], prevUpper[i], prevLower[i] = none, none, none, none
		}
	}

	// 2. Link each non-terminal node to its two children and back.
	var up, down int
	for t = 0; t < periods; t++ {
		for s = 0; s <= t; s++ {
			i = index(t, s)
			up, down = index(t+1, s+1), index(t+1, s)
			upper[i] = up
			lower[i] = down
			prevLower[up] = i
			prevUpper[down] = i
		}
	}

	// 3. Swap in the new graph. Stamps start at zero, below any generation.
	l.periods = periods
	l.nodes = nodes
	l.upper, l.lower = upper, lower
	l.prevUpper, l.prevLower = prevUpper, prevLower
	l.stamps = make([]uint64, n)
	l.chain = chain
	l.built = true
	l.stats.Builds++

	l.opts.Logger.Debug("lattice: built",
		slog.Int("periods", periods),
		slog.Int("nodes", n),
		slog.Bool("chain", chain != nil))

	return nil
}

// Update recomputes every node for the parameter set p:
//
//  1. p.Recalc refreshes derived quantities.
//  2. The node graph is rebuilt if it is missing or p asks for a
//     different period count; otherwise the existing nodes are reused.
//  3. A new generation is stamped on the lattice and on p.
//  4. The chain, if in use, runs LocalUpdate first to last, then
//     BackInduct last to first.
//  5. A memoized post-order walk from the root runs LocalUpdate, visits
//     the upper then the lower child, and runs BackInduct.
//
// Every node is processed exactly once per call.
// Complexity: O(P²) time, O(P) stack.
func (l *Lattice[N, C]) Update(p *Params) error {
	if p == nil {
		return ErrNilParams
	}

	// 1. Derived values before any node reads them.
	if err := p.Recalc(); err != nil {
		return err
	}

	// 2. Shape.
	periods, err := p.Periods()
	if err != nil {
		return err
	}
	if !l.built || periods != l.periods {
		if err = l.Build(periods); err != nil {
			return err
		}
	}

	// 3. Generation.
	l.generation++
	p.generation = l.generation

	// 4. Chain sweep.
	if l.chain != nil {
		l.sweepChain(p)
	}

	// 5. Lattice induction.
	w := &inductionWalker[N, C]{
		lat:     l,
		params:  p,
		gen:     l.generation,
		onVisit: l.opts.OnVisit,
	}
	w.visit(0)

	l.stats.Traversals++
	l.stats.LastVisits = w.visits
	l.stats.TotalVisits += w.visits

	return nil
}

// sweepChain runs the chain's forward pass then its backward pass.
func (l *Lattice[N, C]) sweepChain(p *Params) {
	last := len(l.chain) - 1
	for t := 0; t <= last; t++ {
		l.chain[t].LocalUpdate(p)
	}
	for t := last - 1; t >= 0; t-- {
		l.chain[t].BackInduct(p, l.chain[t+1])
	}
}

// Factory returns the factory the lattice was created with.
func (l *Lattice[N, C]) Factory() *Factory[N, C] {
	return l.factory
}

// Built reports whether a node graph exists.
func (l *Lattice[N, C]) Built() bool {
	return l.built
}

// Periods returns the period count of the current node graph.
func (l *Lattice[N, C]) Periods() int {
	return l.periods
}

// Generation returns the stamp of the latest traversal, 0 before any Update.
func (l *Lattice[N, C]) Generation() uint64 {
	return l.generation
}

// NodeCount returns the number of lattice nodes currently built.
func (l *Lattice[N, C]) NodeCount() int {
	return len(l.nodes)
}

// ChainLen returns the number of chain nodes currently built.
func (l *Lattice[N, C]) ChainLen() int {
	return len(l.chain)
}

// UsesChain reports whether the model has a chain.
func (l *Lattice[N, C]) UsesChain() bool {
	return l.factory.UsesChain()
}

// Stats returns cumulative build and traversal counters.
func (l *Lattice[N, C]) Stats() Stats {
	return l.stats
}
