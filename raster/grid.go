package raster

import (
	"math"

	"github.com/paulmach/orb"
)

// Grid is a rectangular array of numeric cell values with a georeference
// and a no-data sentinel. It is immutable once built and safe for
// concurrent readers.
type Grid struct {
	Frame
	values []float64 // row-major, len == Width*Height
	noData float64
}

// New constructs a Grid from a non-empty, rectangular 2D slice indexed
// values[row][col]. It deep-copies the input to ensure immutability.
// Returns ErrEmptyGrid if values has no rows or no columns,
// ErrNonRectangular if any row length differs, ErrOptionViolation for
// invalid options.
// Algorithmic complexity: O(W×H) time and memory.
func New(values [][]float64, opts ...Option) (*Grid, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	h, w := len(values), len(values[0])
	for _, row := range values {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	// Deep copy to prevent external mutation
	flat := make([]float64, 0, w*h)
	for _, row := range values {
		flat = append(flat, row...)
	}

	return newGrid(frameFor(w, h, o), flat, o.NoData), nil
}

// frameFor resolves the origin default against the final dimensions.
func frameFor(w, h int, o Options) Frame {
	f := Frame{
		Width:     w,
		Height:    h,
		CellSizeX: o.CellSizeX,
		CellSizeY: o.CellSizeY,
		OriginX:   o.OriginX,
		OriginY:   o.OriginY,
	}
	if !o.originSet {
		f.OriginX = 0
		f.OriginY = float64(h) * o.CellSizeY
	}
	return f
}

func newGrid(f Frame, values []float64, noData float64) *Grid {
	return &Grid{Frame: f, values: values, noData: noData}
}

// NoData returns the no-data sentinel.
func (g *Grid) NoData() float64 {
	return g.noData
}

// Value returns the value stored at (col,row). ok is false when the cell is
// outside the grid, NaN, or equal to the no-data sentinel.
// Complexity: O(1).
func (g *Grid) Value(col, row int) (v float64, ok bool) {
	if !g.InBounds(col, row) {
		return 0, false
	}
	v = g.values[g.index(col, row)]
	if math.IsNaN(v) || v == g.noData {
		return 0, false
	}
	return v, true
}

// CellValue is Value addressed by Cell.
func (g *Grid) CellValue(c Cell) (float64, bool) {
	return g.Value(c.Col, c.Row)
}

// ValueAt returns the value of the cell containing world point p.
func (g *Grid) ValueAt(p orb.Point) (float64, bool) {
	return g.CellValue(g.MapToCell(p))
}
