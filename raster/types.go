package raster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Cell is an integer (column, row) grid index. Rows grow southwards.
// Cell is comparable and is used directly as a map key.
type Cell struct {
	Col, Row int
}

// String formats the cell as "col,row".
func (c Cell) String() string {
	return fmt.Sprintf("%d,%d", c.Col, c.Row)
}

// Add returns c shifted by (dc, dr).
func (c Cell) Add(dc, dr int) Cell {
	return Cell{Col: c.Col + dc, Row: c.Row + dr}
}

// Frame is the georeference shared by a Grid and every Occupancy derived
// from it. OriginX/OriginY is the world coordinate of the top-left corner of
// cell (0,0); world Y decreases as the row index grows.
type Frame struct {
	Width, Height        int
	CellSizeX, CellSizeY float64
	OriginX, OriginY     float64
}

// InBounds reports whether (col,row) lies within the frame.
// Complexity: O(1).
func (f Frame) InBounds(col, row int) bool {
	return col >= 0 && col < f.Width && row >= 0 && row < f.Height
}

// Contains reports whether the world point p falls inside a cell of the frame.
func (f Frame) Contains(p orb.Point) bool {
	c := f.MapToCell(p)
	return f.InBounds(c.Col, c.Row)
}

// MapToCell returns the cell containing world point p. The result may lie
// outside the frame; callers check with InBounds.
func (f Frame) MapToCell(p orb.Point) Cell {
	col := math.Floor((p[0] - f.OriginX) / f.CellSizeX)
	row := math.Floor((f.OriginY - p[1]) / f.CellSizeY)
	return Cell{Col: int(col), Row: int(row)}
}

// CellToMap returns the world coordinate of the centre of c.
func (f Frame) CellToMap(c Cell) orb.Point {
	return orb.Point{
		f.OriginX + (float64(c.Col)+0.5)*f.CellSizeX,
		f.OriginY - (float64(c.Row)+0.5)*f.CellSizeY,
	}
}

// Corner returns the world coordinate of lattice corner (x,y), the top-left
// corner of cell (x,y). Corners range over 0..Width by 0..Height.
func (f Frame) Corner(x, y int) orb.Point {
	return orb.Point{
		f.OriginX + float64(x)*f.CellSizeX,
		f.OriginY - float64(y)*f.CellSizeY,
	}
}

// Bound returns the world extent of the frame.
func (f Frame) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{f.OriginX, f.OriginY - float64(f.Height)*f.CellSizeY},
		Max: orb.Point{f.OriginX + float64(f.Width)*f.CellSizeX, f.OriginY},
	}
}

// index maps (col,row) to a row-major index: row*Width + col.
// Complexity: O(1).
func (f Frame) index(col, row int) int {
	return row*f.Width + col
}

// Coordinate converts a row-major index back to a Cell.
// Complexity: O(1).
func (f Frame) Coordinate(idx int) Cell {
	return Cell{Col: idx % f.Width, Row: idx / f.Width}
}

// Option configures grid construction via functional arguments.
// An invalid Option is recorded and surfaced as ErrOptionViolation by New.
type Option func(*Options)

// Options holds the georeference and no-data sentinel applied by New.
type Options struct {
	// CellSizeX, CellSizeY are world units per cell. Both must be > 0.
	CellSizeX, CellSizeY float64
	// OriginX, OriginY is the top-left corner. When unset, the grid is
	// placed with its lower-left corner at (0,0).
	OriginX, OriginY float64
	// NoData is the sentinel reported as absent by Value. NaN is always absent.
	NoData float64

	originSet bool
	err       error
}

// DefaultOptions returns unit cells, lower-left corner at the world origin
// and NaN as the no-data sentinel.
func DefaultOptions() Options {
	return Options{
		CellSizeX: 1,
		CellSizeY: 1,
		NoData:    math.NaN(),
	}
}

// WithCellSize sets the cell size in world units.
//
//	x, y > 0: accepted
//	otherwise: ErrOptionViolation
func WithCellSize(x, y float64) Option {
	return func(o *Options) {
		if !(x > 0) || !(y > 0) {
			o.err = fmt.Errorf("%w: cell size must be positive (%g, %g)", ErrOptionViolation, x, y)
			return
		}
		o.CellSizeX, o.CellSizeY = x, y
	}
}

// WithOrigin sets the world coordinate of the top-left grid corner.
func WithOrigin(x, y float64) Option {
	return func(o *Options) {
		o.OriginX, o.OriginY = x, y
		o.originSet = true
	}
}

// WithNoData sets the no-data sentinel.
func WithNoData(v float64) Option {
	return func(o *Options) {
		o.NoData = v
	}
}
