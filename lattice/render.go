package lattice

import (
	"fmt"
	"strings"
)

// cellKey addresses one rendered cell: column (time step) and row.
type cellKey struct {
	col, row int
}

// Render formats attr across the whole lattice as a text grid: a header
// line with the attribute name, then one line per row. Columns are time
// steps, right-aligned to their widest value, each followed by two spaces.
//
// LayoutTree places node (t,s) on row Offset() and prints rows P..−P, which
// draws the familiar centered binomial tree. LayoutTriangle places it on
// row s and prints rows P..0.
//
// The attribute is formatted with the factory's registered verb.
// Errors: ErrNotBuilt, ErrUnknownAttr, ErrUnknownLayout.
// Complexity: O(P²).
func (l *Lattice[N, C]) Render(attr string, layout Layout) (string, error) {
	if !l.built {
		return "", ErrNotBuilt
	}
	var lo int
	switch layout {
	case LayoutTree:
		lo = -l.periods
	case LayoutTriangle:
		lo = 0
	default:
		return "", fmt.Errorf("%w: %v", ErrUnknownLayout, layout)
	}

	// 1. Format every node and track column widths.
	format := l.factory.Format(attr)
	cells := make(map[cellKey]string, len(l.nodes))
	widths := make([]int, l.periods+1)
	var (
		c   Cell[N, C]
		v   float64
		ok  bool
		row int
	)
	for i := range l.nodes {
		c = Cell[N, C]{lat: l, idx: i}
		if v, ok = c.Lookup(attr); !ok {
			return "", fmt.Errorf("%w: %q at %v", ErrUnknownAttr, attr, c.Coord())
		}
		coord := c.Coord()
		row = coord.Offset()
		if layout == LayoutTriangle {
			row = coord.State
		}
		s := fmt.Sprintf(format, v)
		cells[cellKey{coord.TimeStep, row}] = s
		widths[coord.TimeStep] = max(widths[coord.TimeStep], len(s))
	}

	// 2. Emit rows top to bottom.
	var b strings.Builder
	b.WriteString(attr)
	b.WriteByte('\n')
	for row = l.periods; row >= lo; row-- {
		for col, w := range widths {
			fmt.Fprintf(&b, "%*s  ", w, cells[cellKey{col, row}])
		}
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// RenderChain formats one row per attribute across the chain: a label
// column holding the attribute name, then one column per time step, with
// the same alignment rules as Render.
// Errors: ErrNotBuilt, ErrNoChain, ErrUnknownAttr.
func (l *Lattice[N, C]) RenderChain(attrs ...string) (string, error) {
	if !l.built {
		return "", ErrNotBuilt
	}
	if l.chain == nil {
		return "", ErrNoChain
	}

	// Column 0 is the label column; time step t is column t+1.
	widths := make([]int, len(l.chain)+1)
	cells := make(map[cellKey]string, len(attrs)*(len(l.chain)+1))
	var (
		v  float64
		ok bool
	)
	for row, attr := range attrs {
		cells[cellKey{0, row}] = attr
		widths[0] = max(widths[0], len(attr))
		format := l.factory.Format(attr)
		for t := range l.chain {
			cc := ChainCell[N, C]{lat: l, t: t}
			if v, ok = cc.Lookup(attr); !ok {
				return "", fmt.Errorf("%w: %q at chain step %d", ErrUnknownAttr, attr, t)
			}
			s := fmt.Sprintf(format, v)
			cells[cellKey{t + 1, row}] = s
			widths[t+1] = max(widths[t+1], len(s))
		}
	}

	var b strings.Builder
	for row := range attrs {
		for col, w := range widths {
			fmt.Fprintf(&b, "%*s  ", w, cells[cellKey{col, row}])
		}
		b.WriteByte('\n')
	}

	return b.String(), nil
}
