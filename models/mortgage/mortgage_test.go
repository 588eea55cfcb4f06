package mortgage_test

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lattix/lattice"
	"github.com/katalvlaran/lattix/models/mortgage"
)

const (
	defaultNonCall = 152.90711690847237
	defaultPayment = 8.058640351111118
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func updated(t *testing.T, overrides map[string]float64) (*lattice.Lattice[*mortgage.Node, *mortgage.Balance], *lattice.Params) {
	t.Helper()
	p, err := mortgage.NewParams(overrides, lattice.WithParamLogger(quietLogger()))
	require.NoError(t, err)
	l := mortgage.New(lattice.WithLogger(quietLogger()))
	require.NoError(t, l.Update(p))

	return l, p
}

func TestValue_DefaultScenario(t *testing.T) {
	v, err := mortgage.Value(nil, quietLogger())
	require.NoError(t, err)

	assert.InDelta(t, defaultPayment, v.PeriodPayment, 1e-9)
	assert.InDelta(t, defaultNonCall, v.NonCallValue, 1e-9)
	assert.InDelta(t, 100, v.CallValue, 1e-9)
	assert.InDelta(t, v.NonCallValue-v.CallValue, v.OptionValue, 1e-12)
}

// Short rates start well below the mortgage rate, so the straight loan is
// worth more than its face while the callable one is capped by the balance.
// The startPrincipal*(1+mortRate) bound is asserted on CallValue on purpose:
// NonCallValue is 152.9 at the defaults (DESIGN.md, "Mortgage default values").
func TestValue_CallCappedByPrincipal(t *testing.T) {
	for _, periods := range []float64{1, 2, 5, 30, 60} {
		v, err := mortgage.Value(map[string]float64{"periods": periods}, quietLogger())
		require.NoError(t, err)
		assert.False(t, math.IsNaN(v.NonCallValue) || math.IsInf(v.NonCallValue, 0))
		assert.Positive(t, v.NonCallValue)
		assert.LessOrEqual(t, v.CallValue, 100+1e-9, "periods=%v", periods)
		assert.Less(t, v.CallValue, 107.0)
		assert.GreaterOrEqual(t, v.OptionValue, -1e-9)
	}
}

func TestChain_Amortizes(t *testing.T) {
	l, p := updated(t, nil)
	require.Equal(t, 31, l.ChainLen())

	first, err := l.ChainValue(0, mortgage.AttrRemainPrincipal)
	require.NoError(t, err)
	assert.InDelta(t, 100, first, 1e-9)

	last, err := l.ChainValue(30, mortgage.AttrRemainPrincipal)
	require.NoError(t, err)
	assert.Zero(t, last)

	// Each payment covers the interest and retires some principal.
	rate, payment := p.Get(mortgage.ParamMortRate), p.Get(mortgage.DerivedPeriodPayment)
	prev := first
	for ts := 1; ts <= 30; ts++ {
		cur, err := l.ChainValue(ts, mortgage.AttrRemainPrincipal)
		require.NoError(t, err)
		assert.Less(t, cur, prev)
		assert.InDelta(t, prev*(1+rate)-payment, cur, 1e-9)
		prev = cur
	}
}

func TestChain_Render(t *testing.T) {
	l, _ := updated(t, map[string]float64{"periods": 2})

	got, err := l.RenderChain(mortgage.AttrRemainPrincipal)
	require.NoError(t, err)
	assert.Equal(t, "remainPrincipal  100.00   51.69    0.00  \n", got)
}

func TestNode_InterestRates(t *testing.T) {
	l, p := updated(t, map[string]float64{"periods": 4})
	up := p.Get(mortgage.DerivedUpMult)
	assert.InDelta(t, math.Exp(0.2), up, 1e-15)
	assert.InDelta(t, math.Exp(-0.2), p.Get(mortgage.DerivedDownMult), 1e-15)

	for ts := 0; ts <= 4; ts++ {
		for s := 0; s <= ts; s++ {
			c, err := l.At(ts, s)
			require.NoError(t, err)
			assert.InDelta(t, 0.03*math.Pow(up, float64(2*s-ts)), c.Node().InterestRate, 1e-12)
			if c.IsTerminal() {
				assert.Zero(t, c.Node().NonCallValue)
				assert.Zero(t, c.Node().CallValue)
			}
		}
	}
}

func TestNode_CallNeverAboveNonCall(t *testing.T) {
	l, _ := updated(t, map[string]float64{"periods": 12, "interestVol": 0.35})

	for ts := 0; ts <= 12; ts++ {
		for s := 0; s <= ts; s++ {
			c, err := l.At(ts, s)
			require.NoError(t, err)
			n := c.Node()
			assert.LessOrEqual(t, n.CallValue, n.NonCallValue+1e-9, "%v", c.Coord())
			balance, ok := c.Chain()
			require.True(t, ok)
			assert.LessOrEqual(t, n.CallValue, balance.RemainPrincipal+1e-9, "%v", c.Coord())
		}
	}
}

func TestValue_PrepayCost(t *testing.T) {
	v, err := mortgage.Value(map[string]float64{"prepayCost": 0.05}, quietLogger())
	require.NoError(t, err)
	assert.InDelta(t, 105, v.CallValue, 1e-9)
	assert.InDelta(t, defaultNonCall, v.NonCallValue, 1e-9)
}

func TestRecalc_ZeroCoupon(t *testing.T) {
	p, err := mortgage.NewParams(map[string]float64{"mortRate": 0, "periods": 4})
	require.NoError(t, err)
	assert.InDelta(t, 25, p.Get(mortgage.DerivedPeriodPayment), 1e-12)
}

func TestRecalc_Degenerate(t *testing.T) {
	for name, o := range map[string]map[string]float64{
		"zero periods":     {"periods": 0},
		"rate below -100%": {"mortRate": -1},
	} {
		_, err := mortgage.NewParams(o)
		assert.ErrorIs(t, err, lattice.ErrRecalc, name)
		assert.ErrorIs(t, err, mortgage.ErrDegenerate, name)
	}
}

func TestLattice_ReuseAcrossVolatility(t *testing.T) {
	l, p := updated(t, nil)
	before, err := l.Value(0, 0, mortgage.AttrNonCallValue)
	require.NoError(t, err)

	p.Set(mortgage.ParamInterestVol, 0.3)
	require.NoError(t, l.Update(p))
	after, err := l.Value(0, 0, mortgage.AttrNonCallValue)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
	assert.Equal(t, uint64(1), l.Stats().Builds)
	assert.Equal(t, uint64(2), l.Stats().Traversals)
	assert.Equal(t, uint64(lattice.NodeCount(30)), l.Stats().LastVisits)
}
