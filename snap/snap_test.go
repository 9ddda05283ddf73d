package snap_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/watershed/raster"
	"github.com/katalvlaran/watershed/snap"
)

func load(t *testing.T, name string) *raster.Grid {
	t.Helper()
	g, err := raster.LoadASCII(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	return g
}

func fixture(t *testing.T) snap.Input {
	return snap.Input{
		FlowArea:     load(t, "flowarea.asc"),
		FlowLines:    orb.MultiLineString{{{25, 25}, {25, 5}, {25, 0}}},
		Accumulation: load(t, "flowacc.asc"),
		Tolerance:    10,
	}
}

//----------------------------------------------------------------------------//
// PourPoint Tests
//----------------------------------------------------------------------------//

// TestPourPoint_FlowLine moves a point inside the flow area onto the line.
func TestPourPoint_FlowLine(t *testing.T) {
	in := fixture(t)

	p, m, err := snap.PourPoint(orb.Point{27, 12}, in)
	require.NoError(t, err)
	assert.Equal(t, snap.FlowLine, m)
	assert.InDelta(t, 25, p[0], 1e-9)
	assert.InDelta(t, 12, p[1], 1e-9)

	q, m, err := snap.PourPoint(p, in)
	require.NoError(t, err)
	assert.Equal(t, snap.FlowLine, m)
	assert.InDelta(t, p[0], q[0], 1e-9)
	assert.InDelta(t, p[1], q[1], 1e-9)
}

// TestPourPoint_NoFlowLine reports a missing line distinctly from no snap.
func TestPourPoint_NoFlowLine(t *testing.T) {
	in := fixture(t)
	in.FlowLines = nil

	p, m, err := snap.PourPoint(orb.Point{27, 12}, in)
	require.ErrorIs(t, err, snap.ErrNoFlowLine)
	assert.Equal(t, snap.None, m)
	assert.Equal(t, orb.Point{27, 12}, p)
}

// TestPourPoint_MaxAccumulation searches the window outside the flow area.
func TestPourPoint_MaxAccumulation(t *testing.T) {
	in := fixture(t)

	p, m, err := snap.PourPoint(orb.Point{5, 45}, in)
	require.NoError(t, err)
	assert.Equal(t, snap.MaxAccumulation, m)
	assert.Equal(t, orb.Point{15, 35}, p)
}

// TestPourPoint_Unchanged covers every case that leaves the point alone.
func TestPourPoint_Unchanged(t *testing.T) {
	base := fixture(t)
	cases := []struct {
		name  string
		p     orb.Point
		tweak func(*snap.Input)
	}{
		{"ZeroTolerance", orb.Point{5, 45}, func(in *snap.Input) { in.Tolerance = 0 }},
		{"WindowInsideCell", orb.Point{5, 45}, func(in *snap.Input) { in.Tolerance = 2 }},
		{"NoAccumulation", orb.Point{5, 45}, func(in *snap.Input) { in.Accumulation = nil }},
		{"OutsideGrid", orb.Point{-100, -100}, func(in *snap.Input) {}},
		{"NoLayers", orb.Point{27, 12}, func(in *snap.Input) { in.FlowArea, in.Accumulation = nil, nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.tweak(&in)
			p, m, err := snap.PourPoint(tc.p, in)
			require.NoError(t, err)
			assert.Equal(t, snap.None, m)
			assert.Equal(t, tc.p, p)
		})
	}
}

// TestPourPoint_NegativeTolerance is rejected.
func TestPourPoint_NegativeTolerance(t *testing.T) {
	in := fixture(t)
	in.Tolerance = -1
	_, _, err := snap.PourPoint(orb.Point{5, 45}, in)
	assert.ErrorIs(t, err, snap.ErrNegativeTolerance)

	in.Tolerance = math.NaN()
	_, _, err = snap.PourPoint(orb.Point{5, 45}, in)
	assert.ErrorIs(t, err, snap.ErrNegativeTolerance)
}

// TestPourPoint_IdempotentAtPeak: a point on the window maximum stays put.
func TestPourPoint_IdempotentAtPeak(t *testing.T) {
	acc, err := raster.New([][]float64{
		{1, 2, 1, 0},
		{2, 9, 2, 0},
		{1, 2, 1, 0},
		{0, 0, 0, 0},
	})
	require.NoError(t, err)
	in := snap.Input{Accumulation: acc, Tolerance: 1}

	p, m, err := snap.PourPoint(orb.Point{0.8, 3.2}, in)
	require.NoError(t, err)
	require.Equal(t, snap.MaxAccumulation, m)
	require.Equal(t, orb.Point{1.5, 2.5}, p)

	q, _, err := snap.PourPoint(p, in)
	require.NoError(t, err)
	assert.Equal(t, p, q)
}

//----------------------------------------------------------------------------//
// MaxInWindow Tests
//----------------------------------------------------------------------------//

// TestMaxInWindow_TieKeepsFirstInColumnOrder scans columns before rows.
func TestMaxInWindow_TieKeepsFirstInColumnOrder(t *testing.T) {
	g, err := raster.New([][]float64{
		{5, 9},
		{9, 1},
	})
	require.NoError(t, err)

	c, ok := snap.MaxInWindow(g, orb.Point{1, 1}, 1)
	require.True(t, ok)
	assert.Equal(t, raster.Cell{Col: 0, Row: 1}, c)
}

// TestMaxInWindow_WindowLargerThanGrid only scans the cells on the grid, so
// any tolerance past the grid edge gives the same answer.
func TestMaxInWindow_WindowLargerThanGrid(t *testing.T) {
	g, err := raster.New([][]float64{
		{1, 2, 1},
		{2, 9, 2},
		{1, 2, 1},
	})
	require.NoError(t, err)

	for _, tol := range []float64{1, 10, 1e4, 1e9, 1e300, math.Inf(1)} {
		c, ok := snap.MaxInWindow(g, orb.Point{1.5, 1.5}, tol)
		require.True(t, ok, "tol=%g", tol)
		assert.Equal(t, raster.Cell{Col: 1, Row: 1}, c, "tol=%g", tol)
	}

	// a far-away point whose window reaches the grid still finds it
	c, ok := snap.MaxInWindow(g, orb.Point{1e6, -1e6}, 2e6)
	require.True(t, ok)
	assert.Equal(t, raster.Cell{Col: 1, Row: 1}, c)

	// a window wholly off the grid holds nothing
	_, ok = snap.MaxInWindow(g, orb.Point{100, 100}, 5)
	assert.False(t, ok)
}

// TestMaxInWindow_ZeroAndAbsent: zero is a valid maximum, absent cells are
// skipped.
func TestMaxInWindow_ZeroAndAbsent(t *testing.T) {
	g, err := raster.New([][]float64{
		{-1, 0},
		{-1, -1},
	}, raster.WithNoData(-1))
	require.NoError(t, err)

	c, ok := snap.MaxInWindow(g, orb.Point{1, 1}, 1)
	require.True(t, ok)
	assert.Equal(t, raster.Cell{Col: 1, Row: 0}, c)

	g, err = raster.New([][]float64{{-1, -1}}, raster.WithNoData(-1))
	require.NoError(t, err)
	_, ok = snap.MaxInWindow(g, orb.Point{1, 0.5}, 1)
	assert.False(t, ok)
}

//----------------------------------------------------------------------------//
// NearestOnLines Tests
//----------------------------------------------------------------------------//

// TestNearestOnLines picks the closest of several lines and clamps to ends.
func TestNearestOnLines(t *testing.T) {
	lines := orb.MultiLineString{
		{{0, 2.5}, {4, 2.5}},
		{{10, 0}, {10, 10}},
		{{6, 6}},
	}
	cases := []struct {
		p    orb.Point
		want orb.Point
	}{
		{orb.Point{1.3, 2.9}, orb.Point{1.3, 2.5}},
		{orb.Point{-3, 2}, orb.Point{0, 2.5}},
		{orb.Point{9, 4}, orb.Point{10, 4}},
		{orb.Point{6.2, 5.9}, orb.Point{6, 6}},
	}
	for _, tc := range cases {
		got, ok := snap.NearestOnLines(lines, tc.p)
		require.True(t, ok)
		assert.InDelta(t, tc.want[0], got[0], 1e-9, "x for %v", tc.p)
		assert.InDelta(t, tc.want[1], got[1], 1e-9, "y for %v", tc.p)
	}

	_, ok := snap.NearestOnLines(orb.MultiLineString{{}}, orb.Point{})
	assert.False(t, ok)
}

// TestMethod_String names every method.
func TestMethod_String(t *testing.T) {
	assert.Equal(t, "none", snap.None.String())
	assert.Equal(t, "flow_line", snap.FlowLine.String())
	assert.Equal(t, "max_accumulation", snap.MaxAccumulation.String())
}
