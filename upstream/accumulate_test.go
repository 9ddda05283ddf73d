package upstream_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/watershed/d8"
	"github.com/katalvlaran/watershed/raster"
	"github.com/katalvlaran/watershed/upstream"
)

// AccumulateSuite exercises Accumulate on hand-built and fixture grids.
type AccumulateSuite struct {
	suite.Suite
}

func (s *AccumulateSuite) grid(values [][]float64) *raster.Grid {
	g, err := raster.New(values)
	require.NoError(s.T(), err)
	return g
}

// TestSouthColumn: only the cell directly north drains into the centre pit.
func (s *AccumulateSuite) TestSouthColumn() {
	g := s.grid([][]float64{
		{4, 4, 4},
		{4, 0, 4},
		{4, 4, 4},
	})
	occ, err := upstream.Accumulate(g, raster.Cell{Col: 1, Row: 1})
	require.NoError(s.T(), err)
	require.Equal(s.T(), []raster.Cell{{Col: 1, Row: 0}, {Col: 1, Row: 1}}, occ.Cells())
}

// TestConvergingBowl: every neighbour points at the centre.
func (s *AccumulateSuite) TestConvergingBowl() {
	g := s.grid([][]float64{
		{2, 4, 8},
		{1, 0, 16},
		{128, 64, 32},
	})
	occ, err := upstream.Accumulate(g, raster.Cell{Col: 1, Row: 1})
	require.NoError(s.T(), err)
	require.Equal(s.T(), 9, occ.Count())
}

// TestSeedOnly: nothing drains into the seed.
func (s *AccumulateSuite) TestSeedOnly() {
	g := s.grid([][]float64{
		{16, 0, 1},
	})
	occ, err := upstream.Accumulate(g, raster.Cell{Col: 1, Row: 0})
	require.NoError(s.T(), err)
	require.Equal(s.T(), []raster.Cell{{Col: 1, Row: 0}}, occ.Cells())
}

// TestNoDataNeighbours are never included, nor expanded through.
func (s *AccumulateSuite) TestNoDataNeighbours() {
	nan := math.NaN()
	g := s.grid([][]float64{
		{4, 4, 4},
		{nan, 4, 1},
		{0, 0, 0},
	})
	occ, err := upstream.Accumulate(g, raster.Cell{Col: 1, Row: 2})
	require.NoError(s.T(), err)
	require.Equal(s.T(), []raster.Cell{{Col: 1, Row: 0}, {Col: 1, Row: 1}, {Col: 1, Row: 2}}, occ.Cells())
}

// TestFixture checks the outlet and an interior confluence of the sample
// catchment, whose accumulation grid lists the upstream counts.
func (s *AccumulateSuite) TestFixture() {
	dir, err := raster.LoadASCII(filepath.Join("..", "testdata", "flowdir.asc"))
	require.NoError(s.T(), err)
	acc, err := raster.LoadASCII(filepath.Join("..", "testdata", "flowacc.asc"))
	require.NoError(s.T(), err)

	for _, seed := range []raster.Cell{{Col: 2, Row: 4}, {Col: 2, Row: 2}, {Col: 1, Row: 2}, {Col: 0, Row: 0}} {
		occ, err := upstream.Accumulate(dir, seed)
		require.NoError(s.T(), err)
		want, ok := acc.CellValue(seed)
		require.True(s.T(), ok)
		require.Equal(s.T(), int(want)+1, occ.Count(), "seed %s", seed)
	}
}

// TestEveryCellDrainsToSeed follows the D8 chain of each marked cell.
func (s *AccumulateSuite) TestEveryCellDrainsToSeed() {
	dir, err := raster.LoadASCII(filepath.Join("..", "testdata", "flowdir.asc"))
	require.NoError(s.T(), err)
	seed := raster.Cell{Col: 2, Row: 3}

	occ, err := upstream.Accumulate(dir, seed)
	require.NoError(s.T(), err)
	for _, c := range occ.Cells() {
		cur := c
		for i := 0; cur != seed; i++ {
			require.Less(s.T(), i, dir.Width*dir.Height, "cell %s never reaches seed", c)
			v, ok := dir.CellValue(cur)
			require.True(s.T(), ok)
			cur = d8.Decode(v).Next(cur)
		}
	}
}

// TestOnVisit sees every marked cell exactly once, seed first.
func (s *AccumulateSuite) TestOnVisit() {
	g := s.grid([][]float64{
		{2, 4, 8},
		{1, 0, 16},
		{128, 64, 32},
	})
	seen := map[raster.Cell]int{}
	var order []raster.Cell
	occ, err := upstream.Accumulate(g, raster.Cell{Col: 1, Row: 1},
		upstream.WithOnVisit(func(c raster.Cell) {
			seen[c]++
			order = append(order, c)
		}))
	require.NoError(s.T(), err)
	require.Len(s.T(), seen, occ.Count())
	for c, n := range seen {
		require.Equal(s.T(), 1, n, "cell %s", c)
	}
	require.Equal(s.T(), raster.Cell{Col: 1, Row: 1}, order[0])
}

// TestCancelled returns the context error.
func (s *AccumulateSuite) TestCancelled() {
	g := s.grid([][]float64{{1, 0}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := upstream.Accumulate(g, raster.Cell{Col: 1, Row: 0}, upstream.WithContext(ctx))
	require.ErrorIs(s.T(), err, context.Canceled)
}

// TestErrors rejects nil grids and seeds outside the grid.
func (s *AccumulateSuite) TestErrors() {
	_, err := upstream.Accumulate(nil, raster.Cell{})
	require.ErrorIs(s.T(), err, upstream.ErrNilGrid)

	g := s.grid([][]float64{{0}})
	_, err = upstream.Accumulate(g, raster.Cell{Col: 1, Row: 0})
	require.ErrorIs(s.T(), err, upstream.ErrSeedOutOfBounds)
}

// TestAccumulateSuite runs the suite.
func TestAccumulateSuite(t *testing.T) {
	suite.Run(t, new(AccumulateSuite))
}
