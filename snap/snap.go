package snap

import (
	"math"

	"github.com/katalvlaran/watershed/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PourPoint moves p according to the first applicable policy and reports
// which one was used.
//
// Behavior:
//  1. If in.FlowArea has a present value at p, p moves to the nearest point
//     on in.FlowLines. No line yields ErrNoFlowLine.
//  2. Otherwise the window [p-tol, p+tol] of in.Accumulation is searched.
//     A window of one cell, a nil grid or a window without present cells
//     leaves p unchanged with Method None.
//
// Complexity: O(V) for policy 1 (V = flow line vertices), O(k²) for
// policy 2 with k = window width in cells, at most the grid size.
func PourPoint(p orb.Point, in Input) (orb.Point, Method, error) {
	if !(in.Tolerance >= 0) {
		return p, None, ErrNegativeTolerance
	}
	if in.FlowArea != nil {
		if _, ok := in.FlowArea.ValueAt(p); ok {
			q, ok := NearestOnLines(in.FlowLines, p)
			if !ok {
				return p, None, ErrNoFlowLine
			}
			return q, FlowLine, nil
		}
	}
	if in.Accumulation == nil {
		return p, None, nil
	}
	c, ok := MaxInWindow(in.Accumulation, p, in.Tolerance)
	if !ok {
		return p, None, nil
	}
	return in.Accumulation.CellToMap(c), MaxAccumulation, nil
}

// MaxInWindow returns the cell with the strictly largest present value in
// the square window of half-width tol around p. Cells are scanned column by
// column, rows within a column, so ties keep the first cell seen.
// ok is false when the window spans a single cell or holds no present value.
// Only the part of the window overlapping the grid is scanned.
func MaxInWindow(g *raster.Grid, p orb.Point, tol float64) (best raster.Cell, ok bool) {
	// corners are held one cell outside the grid so huge tolerances stay
	// in int range without merging distinct on-grid cells
	b := g.Bound()
	clamp := func(v, lo, hi float64) float64 { return math.Max(lo, math.Min(v, hi)) }
	xlo, xhi := b.Min[0]-g.CellSizeX, b.Max[0]+g.CellSizeX
	ylo, yhi := b.Min[1]-g.CellSizeY, b.Max[1]+g.CellSizeY
	from := g.MapToCell(orb.Point{clamp(p[0]-tol, xlo, xhi), clamp(p[1]+tol, ylo, yhi)})
	to := g.MapToCell(orb.Point{clamp(p[0]+tol, xlo, xhi), clamp(p[1]-tol, ylo, yhi)})
	if from == to {
		return raster.Cell{}, false
	}
	from.Col, from.Row = max(from.Col, 0), max(from.Row, 0)
	to.Col, to.Row = min(to.Col, g.Width-1), min(to.Row, g.Height-1)

	var top float64
	for col := from.Col; col <= to.Col; col++ {
		for row := from.Row; row <= to.Row; row++ {
			v, present := g.Value(col, row)
			if !present {
				continue
			}
			if !ok || v > top {
				best, top, ok = raster.Cell{Col: col, Row: row}, v, true
			}
		}
	}
	return best, ok
}

// NearestOnLines returns the point of lines closest to p. ok is false when
// lines holds no vertex.
func NearestOnLines(lines orb.MultiLineString, p orb.Point) (orb.Point, bool) {
	var (
		best  orb.Point
		bestD float64
		found bool
	)
	for _, ls := range lines {
		var q orb.Point
		switch len(ls) {
		case 0:
			continue
		case 1:
			q = ls[0]
		default:
			_, i := planar.DistanceFromWithIndex(ls, p)
			if i < 0 {
				i = 0
			}
			if i > len(ls)-2 {
				i = len(ls) - 2
			}
			q = project(ls[i], ls[i+1], p)
		}
		if d := planar.DistanceSquared(p, q); !found || d < bestD {
			best, bestD, found = q, d, true
		}
	}
	return best, found
}

// project returns the point of segment ab closest to p.
func project(a, b, p orb.Point) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}
