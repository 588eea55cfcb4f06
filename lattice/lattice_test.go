package lattice_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lattix/lattice"
)

func TestBuild_NodeCounts(t *testing.T) {
	for periods := 0; periods <= 12; periods++ {
		l := lattice.New(newPathFactory())
		require.NoError(t, l.Build(periods))
		assert.Equal(t, (periods+1)*(periods+2)/2, l.NodeCount(), "periods=%d", periods)
		assert.Equal(t, lattice.NodeCount(periods), l.NodeCount())
		assert.Equal(t, periods+1, l.ChainLen(), "periods=%d", periods)
		assert.Equal(t, periods, l.Periods())
	}
}

func TestBuild_InertChainNotAllocated(t *testing.T) {
	l := lattice.New(newFlatFactory())
	require.NoError(t, l.Build(5))
	assert.Equal(t, 21, l.NodeCount())
	assert.Equal(t, 0, l.ChainLen())
	assert.False(t, l.UsesChain())

	_, err := l.ChainAt(0)
	assert.ErrorIs(t, err, lattice.ErrNoChain)
	_, err = l.RenderChain("level")
	assert.ErrorIs(t, err, lattice.ErrNoChain)
}

func TestBuild_NegativePeriods(t *testing.T) {
	l := lattice.New(newPathFactory())
	assert.ErrorIs(t, l.Build(-1), lattice.ErrBadPeriods)
	assert.False(t, l.Built())
}

func TestBuild_PeriodsLimit(t *testing.T) {
	l := lattice.New(newPathFactory())
	assert.ErrorIs(t, l.Build(lattice.MaxPeriods+1), lattice.ErrBadPeriods)
	assert.False(t, l.Built())

	for _, periods := range []float64{5e9, 1e300, math.Inf(1)} {
		require.NotPanics(t, func() {
			assert.ErrorIs(t, l.Update(newParams(t, map[string]float64{"periods": periods})), lattice.ErrBadPeriods)
		})
	}
	assert.False(t, l.Built())
}

func TestBuild_Recombination(t *testing.T) {
	const periods = 7
	l := lattice.New(newPathFactory())
	require.NoError(t, l.Build(periods))

	asUpper := make(map[lattice.Coord]int)
	asLower := make(map[lattice.Coord]int)
	for _, c := range allCells(t, l) {
		up, okUp := c.Upper()
		down, okDown := c.Lower()
		assert.Equal(t, !c.IsTerminal(), okUp)
		assert.Equal(t, !c.IsTerminal(), okDown)
		if c.IsTerminal() {
			continue
		}
		assert.Equal(t, lattice.Coord{TimeStep: c.Coord().TimeStep + 1, State: c.Coord().State + 1}, up.Coord())
		assert.Equal(t, lattice.Coord{TimeStep: c.Coord().TimeStep + 1, State: c.Coord().State}, down.Coord())
		asUpper[up.Coord()]++
		asLower[down.Coord()]++
	}

	for _, c := range allCells(t, l) {
		ts, s := c.Coord().TimeStep, c.Coord().State
		if ts == 0 {
			assert.Zero(t, asUpper[c.Coord()]+asLower[c.Coord()], "root has no parent")
			continue
		}
		// Reached as an upper child by (t-1,s-1) unless s == 0.
		wantUpper, wantLower := 1, 1
		if s == 0 {
			wantUpper = 0
		}
		if s == ts {
			wantLower = 0
		}
		assert.Equal(t, wantUpper, asUpper[c.Coord()], "as upper %v", c.Coord())
		assert.Equal(t, wantLower, asLower[c.Coord()], "as lower %v", c.Coord())

		pl, okPL := c.PrevLower()
		pu, okPU := c.PrevUpper()
		assert.Equal(t, wantUpper == 1, okPL)
		assert.Equal(t, wantLower == 1, okPU)
		if okPL {
			assert.Equal(t, lattice.Coord{TimeStep: ts - 1, State: s - 1}, pl.Coord())
		}
		if okPU {
			assert.Equal(t, lattice.Coord{TimeStep: ts - 1, State: s}, pu.Coord())
		}
	}
}

func TestBuild_CleanRebuild(t *testing.T) {
	l := lattice.New(newPathFactory())
	require.NoError(t, l.Build(3))
	first, err := l.Root()
	require.NoError(t, err)
	require.NoError(t, l.Build(3))
	second, err := l.Root()
	require.NoError(t, err)
	assert.NotSame(t, first.Node(), second.Node())
	assert.Equal(t, uint64(2), l.Stats().Builds)
}

func TestCell_Identity(t *testing.T) {
	l, _ := updated(t, nil)
	c, err := l.At(3, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Node().TimeStep())
	assert.Equal(t, 1, c.Node().State())
	assert.Equal(t, -1, c.Node().Offset())
	assert.False(t, c.Node().IsTerminal())
	assert.Equal(t, -1.0, c.Get(lattice.AttrOffset, 99))
	assert.Equal(t, 3.0, c.Get(lattice.AttrTimeStep, 99))
	assert.Equal(t, 1.0, c.Get(lattice.AttrState, 99))
	assert.Equal(t, 99.0, c.Get("missing", 99))

	ch, ok := c.Chain()
	require.True(t, ok)
	assert.Equal(t, 3, ch.TimeStep())

	_, err = l.At(3, 4)
	assert.ErrorIs(t, err, lattice.ErrOutOfRange)
	_, err = l.At(5, 0)
	assert.ErrorIs(t, err, lattice.ErrOutOfRange)
	_, err = l.Value(0, 0, "nope")
	assert.ErrorIs(t, err, lattice.ErrUnknownAttr)
}

func TestLattice_NotBuilt(t *testing.T) {
	l := lattice.New(newPathFactory())
	_, err := l.Root()
	assert.ErrorIs(t, err, lattice.ErrNotBuilt)
	_, err = l.ChainAt(0)
	assert.ErrorIs(t, err, lattice.ErrNotBuilt)
	_, err = l.Render("paths", lattice.LayoutTree)
	assert.ErrorIs(t, err, lattice.ErrNotBuilt)
	_, err = l.RenderChain("remaining")
	assert.ErrorIs(t, err, lattice.ErrNotBuilt)
	assert.Zero(t, l.Generation())
}

func TestUpdate_PathCounts(t *testing.T) {
	l, _ := updated(t, map[string]float64{"periods": 10})
	root, err := l.Value(0, 0, "paths")
	require.NoError(t, err)
	assert.Equal(t, math.Pow(2, 10), root)

	// Binomial coefficients on the final step.
	for s := 0; s <= 10; s++ {
		v, err := l.Value(10, s, "paths")
		require.NoError(t, err)
		assert.Equal(t, 1.0, v)
	}
	v, err := l.Value(2, 1, "paths")
	require.NoError(t, err)
	assert.Equal(t, math.Pow(2, 8), v)
}

func TestUpdate_VisitsEachNodeOnce(t *testing.T) {
	const periods = 20
	visits := make(map[lattice.Coord]int)
	l, p := updated(t, map[string]float64{"periods": periods},
		lattice.WithOnVisit(func(c lattice.Coord) { visits[c]++ }))

	assert.Len(t, visits, lattice.NodeCount(periods))
	for c, n := range visits {
		assert.Equal(t, 1, n, "hook visits at %v", c)
	}
	for _, c := range allCells(t, l) {
		assert.Equal(t, 1, c.Node().Visits, "LocalUpdate calls at %v", c.Coord())
	}
	assert.Equal(t, uint64(lattice.NodeCount(periods)), l.Stats().LastVisits)

	// A second pass touches every node exactly once more.
	require.NoError(t, l.Update(p))
	for _, c := range allCells(t, l) {
		assert.Equal(t, 2, c.Node().Visits, "LocalUpdate calls at %v", c.Coord())
	}
	assert.Equal(t, uint64(2*lattice.NodeCount(periods)), l.Stats().TotalVisits)
}

func TestUpdate_BackInductSeesUpdatedChildren(t *testing.T) {
	l, p := updated(t, nil)
	for pass := 0; pass < 3; pass++ {
		for _, c := range allCells(t, l) {
			assert.True(t, c.Node().Fresh, "pass %d at %v", pass, c.Coord())
			assert.Equal(t, p.Generation(), c.Node().Gen)
		}
		require.NoError(t, l.Update(p))
	}
}

func TestUpdate_GenerationStamping(t *testing.T) {
	l, p := updated(t, nil)
	assert.Equal(t, uint64(1), l.Generation())
	assert.Equal(t, uint64(1), p.Generation())

	other := p.Clone()
	require.NoError(t, l.Update(other))
	assert.Equal(t, uint64(2), l.Generation())
	assert.Equal(t, uint64(2), other.Generation())
	assert.Equal(t, uint64(1), p.Generation())
}

func TestUpdate_Idempotent(t *testing.T) {
	l, p := updated(t, map[string]float64{"periods": 9, "scale": 1.7})
	snapshot := func() map[lattice.Coord][3]float64 {
		out := make(map[lattice.Coord][3]float64)
		for _, c := range allCells(t, l) {
			n := c.Node()
			out[c.Coord()] = [3]float64{n.Paths, n.Level, n.Remaining}
		}

		return out
	}
	before := snapshot()
	require.NoError(t, l.Update(p))
	assert.Equal(t, before, snapshot())
}

func TestUpdate_ReusesGraphWhenShapeUnchanged(t *testing.T) {
	l, p := updated(t, map[string]float64{"periods": 6})
	before := allCells(t, l)

	p.Set("scale", 3)
	require.NoError(t, l.Update(p))
	after := allCells(t, l)

	require.Len(t, after, len(before))
	for i := range before {
		assert.Same(t, before[i].Node(), after[i].Node())
	}
	v, err := l.Value(6, 6, "level")
	require.NoError(t, err)
	assert.Equal(t, 18.0, v)
	assert.Equal(t, uint64(1), l.Stats().Builds)
}

func TestUpdate_RebuildsOnPeriodChange(t *testing.T) {
	l, p := updated(t, map[string]float64{"periods": 6})
	oldRoot, err := l.Root()
	require.NoError(t, err)
	oldNode := oldRoot.Node()

	p.Set("periods", 8)
	require.NoError(t, l.Update(p))
	assert.Equal(t, lattice.NodeCount(8), l.NodeCount())
	newRoot, err := l.Root()
	require.NoError(t, err)
	assert.NotSame(t, oldNode, newRoot.Node())
	assert.Equal(t, math.Pow(2, 8), newRoot.Node().Paths)
	assert.Equal(t, uint64(2), l.Stats().Builds)
}

func TestUpdate_ZeroPeriods(t *testing.T) {
	l, _ := updated(t, map[string]float64{"periods": 0})
	assert.Equal(t, 1, l.NodeCount())
	root, err := l.Root()
	require.NoError(t, err)
	assert.True(t, root.IsTerminal())
	assert.Equal(t, 1.0, root.Node().Paths)
}

func TestUpdate_Errors(t *testing.T) {
	l := lattice.New(newPathFactory())
	assert.ErrorIs(t, l.Update(nil), lattice.ErrNilParams)

	p := newParams(t, nil)
	p.Set("periods", 2.5)
	err := l.Update(p)
	assert.ErrorIs(t, err, lattice.ErrBadPeriods)
	assert.ErrorIs(t, err, lattice.ErrNotInteger)

	p.Set("periods", -3)
	assert.ErrorIs(t, l.Update(p), lattice.ErrBadPeriods)

	p.Set("periods", 3)
	p.Set("scale", 0)
	err = l.Update(p)
	assert.ErrorIs(t, err, lattice.ErrRecalc)
	assert.ErrorIs(t, err, lattice.ErrNonFinite)
	assert.Contains(t, err.Error(), "logScale")

	p.Set("scale", -1)
	err = l.Update(p)
	assert.ErrorIs(t, err, errNegativeScale)
	assert.False(t, l.Built(), "failed updates must not build")
}

func TestChain_Sweep(t *testing.T) {
	l, _ := updated(t, map[string]float64{"periods": 5, "stepSize": 0.5})
	for ts := 0; ts <= 5; ts++ {
		v, err := l.ChainValue(ts, "remaining")
		require.NoError(t, err)
		assert.InDelta(t, 0.5*float64(5-ts), v, 1e-12, "step %d", ts)
	}

	first, err := l.ChainAt(0)
	require.NoError(t, err)
	assert.True(t, first.Node().IsInitial())
	_, ok := first.Prev()
	assert.False(t, ok)
	next, ok := first.Next()
	require.True(t, ok)
	assert.Equal(t, 1, next.TimeStep())

	last, err := l.ChainAt(5)
	require.NoError(t, err)
	assert.True(t, last.IsTerminal())
	assert.True(t, last.Node().IsTerminal())
	_, ok = last.Next()
	assert.False(t, ok)
	assert.Equal(t, 5.0, last.Get(lattice.AttrTimeStep, -1))

	_, err = l.ChainAt(6)
	assert.ErrorIs(t, err, lattice.ErrOutOfRange)

	// Lattice nodes see the chain value of their own time step.
	v, err := l.Value(2, 1, "remaining")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 1e-12)
}

func TestEngine_Interface(t *testing.T) {
	var e lattice.Engine = lattice.New(newFlatFactory())
	require.NoError(t, e.Build(2))
	assert.Equal(t, 6, e.NodeCount())
}
