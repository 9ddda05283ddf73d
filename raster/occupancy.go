package raster

import "math"

// Occupancy is a boolean grid over a Frame; true marks a cell that belongs
// to the region being described. Cells outside the frame are never filled.
type Occupancy struct {
	Frame
	filled []bool
}

// NewOccupancy returns an empty Occupancy over f.
func NewOccupancy(f Frame) *Occupancy {
	return &Occupancy{Frame: f, filled: make([]bool, f.Width*f.Height)}
}

// Filled reports whether (col,row) is inside the frame and set.
// Complexity: O(1).
func (o *Occupancy) Filled(col, row int) bool {
	if !o.InBounds(col, row) {
		return false
	}
	return o.filled[o.index(col, row)]
}

// Set marks (col,row) as filled or unfilled. Out-of-bounds cells are ignored.
func (o *Occupancy) Set(col, row int, v bool) {
	if o.InBounds(col, row) {
		o.filled[o.index(col, row)] = v
	}
}

// Count returns the number of filled cells.
func (o *Occupancy) Count() int {
	n := 0
	for _, f := range o.filled {
		if f {
			n++
		}
	}
	return n
}

// Cells returns the filled cells in row-major order.
func (o *Occupancy) Cells() []Cell {
	var out []Cell
	for i, f := range o.filled {
		if f {
			out = append(out, o.Coordinate(i))
		}
	}
	return out
}

// Threshold selects the cells of g whose present value lies in [lo, hi].
// A NaN bound is unbounded on that side; absent cells are never selected.
// Complexity: O(W×H).
func Threshold(g *Grid, lo, hi float64) *Occupancy {
	occ := NewOccupancy(g.Frame)
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			v, ok := g.Value(col, row)
			if !ok {
				continue
			}
			if (math.IsNaN(lo) || v >= lo) && (math.IsNaN(hi) || v <= hi) {
				occ.filled[occ.index(col, row)] = true
			}
		}
	}
	return occ
}
