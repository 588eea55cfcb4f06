package lattice

// inductionWalker holds the state of one Update traversal.
type inductionWalker[N Node[N, C], C Chain[C]] struct {
	lat     *Lattice[N, C]
	params  *Params
	gen     uint64
	onVisit func(Coord)
	visits  uint64
}

// visit processes arena slot i in post order. A node whose stamp already
// equals the current generation was reached earlier through its other
// parent and is skipped, which keeps the walk linear in the node count.
func (w *inductionWalker[N, C]) visit(i int) {
	l := w.lat

	// 1. Memoization.
	if l.stamps[i] == w.gen {
		return
	}

	// 2. Forward, local.
	n := l.nodes[i]
	n.LocalUpdate(w.params)

	// 3. Children, then backward aggregation.
	if up := l.upper[i]; up != none {
		down := l.lower[i]
		w.visit(up)
		w.visit(down)

		var chain C
		if l.chain != nil {
			chain = l.chain[n.base().coord.TimeStep]
		}
		n.BackInduct(w.params, l.nodes[up], l.nodes[down], chain)
	}

	// 4. Stamp.
	l.stamps[i] = w.gen
	w.visits++
	if w.onVisit != nil {
		w.onVisit(n.base().coord)
	}
}
