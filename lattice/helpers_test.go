package lattice_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lattix/lattice"
)

// pathNode counts the root-to-terminal paths through every node and records
// enough bookkeeping to check the traversal contract.
type pathNode struct {
	lattice.Base
	Paths     float64
	Level     float64
	Remaining float64
	Gen       uint64
	Visits    int
	Fresh     bool // both children were updated in this generation
}

var pathAttrs = lattice.Accessors[*pathNode]{
	"paths":     func(n *pathNode) float64 { return n.Paths },
	"level":     func(n *pathNode) float64 { return n.Level },
	"remaining": func(n *pathNode) float64 { return n.Remaining },
}

func (n *pathNode) LocalUpdate(p *lattice.Params) {
	n.Visits++
	n.Gen = p.Generation()
	n.Level = p.Get("scale") * float64(n.Offset())
	if n.IsTerminal() {
		n.Paths = 1
		n.Remaining = 0
		n.Fresh = true
	}
}

func (n *pathNode) BackInduct(p *lattice.Params, up, down *pathNode, chain *stepChain) {
	n.Paths = up.Paths + down.Paths
	n.Fresh = up.Gen == p.Generation() && down.Gen == p.Generation()
	n.Remaining = chain.Remaining
}

func (n *pathNode) Attr(name string) (float64, bool) { return pathAttrs.Lookup(n, name) }

// stepChain holds the time remaining until the final step.
type stepChain struct {
	lattice.ChainBase
	Remaining float64
}

func (c *stepChain) LocalUpdate(*lattice.Params) {
	if c.IsTerminal() {
		c.Remaining = 0
	}
}

func (c *stepChain) BackInduct(p *lattice.Params, next *stepChain) {
	c.Remaining = next.Remaining + p.Get("stepSize")
}

func (c *stepChain) Attr(name string) (float64, bool) {
	if name == "remaining" {
		return c.Remaining, true
	}

	return 0, false
}

// flatNode is a chain-less model exposing only its scaled offset.
type flatNode struct {
	lattice.Base
	Level float64
}

func (n *flatNode) LocalUpdate(p *lattice.Params) {
	n.Level = p.Get("scale") * float64(n.Offset())
}

func (n *flatNode) BackInduct(*lattice.Params, *flatNode, *flatNode, *lattice.NoChain) {}

func (n *flatNode) Attr(name string) (float64, bool) {
	if name == "level" {
		return n.Level, true
	}

	return 0, false
}

var testDefaults = lattice.Defaults{
	"periods":  4,
	"scale":    1,
	"stepSize": 1,
}

var errNegativeScale = errors.New("scale must not be negative")

func testRecalc(p *lattice.Params) error {
	scale := p.Get("scale")
	if scale < 0 {
		return errNegativeScale
	}

	return p.Derive("logScale", math.Log(scale))
}

func newPathFactory() *lattice.Factory[*pathNode, *stepChain] {
	return lattice.NewFactory(
		func() *pathNode { return new(pathNode) },
		func() *stepChain { return new(stepChain) },
	).RegisterFormat("level", "%3.0f")
}

func newFlatFactory() *lattice.Factory[*flatNode, *lattice.NoChain] {
	return lattice.NewFactory[*flatNode, *lattice.NoChain](
		func() *flatNode { return new(flatNode) }, nil,
	).RegisterFormat("level", "%3.0f")
}

// newParams builds test params with a discarding logger.
func newParams(t testing.TB, overrides map[string]float64) *lattice.Params {
	t.Helper()
	p, err := lattice.NewParams(testDefaults, overrides, testRecalc,
		lattice.WithParamLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	return p
}

// updated returns a path lattice already updated with overrides.
func updated(t testing.TB, overrides map[string]float64, opts ...lattice.Option) (*lattice.Lattice[*pathNode, *stepChain], *lattice.Params) {
	t.Helper()
	l := lattice.New(newPathFactory(), opts...)
	p := newParams(t, overrides)
	require.NoError(t, l.Update(p))

	return l, p
}

// allCells collects every cell of a built lattice.
func allCells(t testing.TB, l *lattice.Lattice[*pathNode, *stepChain]) []lattice.Cell[*pathNode, *stepChain] {
	t.Helper()
	out := make([]lattice.Cell[*pathNode, *stepChain], 0, l.NodeCount())
	for ts := 0; ts <= l.Periods(); ts++ {
		for s := 0; s <= ts; s++ {
			c, err := l.At(ts, s)
			require.NoError(t, err)
			out = append(out, c)
		}
	}

	return out
}
