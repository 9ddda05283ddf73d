package flowpath

import (
	"github.com/katalvlaran/watershed/d8"
	"github.com/katalvlaran/watershed/raster"
	"github.com/paulmach/orb"
)

// Trace follows the D8 codes of g downhill from start.
//
// Behavior:
//  1. A start inside the grid is moved to the centre of its cell.
//  2. Each step evaluates the current cell: outside the grid or no-data
//     stops with Boundary; an invalid code records the point and stops
//     with Sink.
//  3. A point is recorded whenever the displacement differs from the
//     previous step, so straight runs collapse to their end points.
//  4. Once the step counter exceeds maxSteps the trace stops with Budget.
//  5. The final point is always appended; the path has at least 2 points.
//
// Returns ErrNilGrid or ErrInvalidBudget for invalid input.
// Complexity: O(min(maxSteps, W×H)) time.
func Trace(g *raster.Grid, start orb.Point, maxSteps int) (Result, error) {
	if g == nil {
		return Result{}, ErrNilGrid
	}
	if maxSteps < 0 {
		return Result{}, ErrInvalidBudget
	}

	cell := g.MapToCell(start)
	p := start
	if g.InBounds(cell.Col, cell.Row) {
		p = g.CellToMap(cell)
	}

	res := Result{Path: orb.LineString{p}}
	var last d8.Offset
	for {
		res.Steps++
		v, ok := g.CellValue(cell)
		if !ok {
			res.Stop = Boundary
			break
		}
		dir := d8.Decode(v)
		off := dir.Offset()
		if off != last {
			res.Path = appendPoint(res.Path, p)
			last = off
		}
		if !dir.Valid() {
			res.Stop = Sink
			break
		}
		if res.Steps > maxSteps {
			res.Stop = Budget
			break
		}
		cell = dir.Next(cell)
		p = g.CellToMap(cell)
	}

	res.Path = appendPoint(res.Path, p)
	if len(res.Path) < 2 {
		res.Path = append(res.Path, p)
	}
	return res, nil
}

// TraceStages runs Trace on every stage with a grid, starting each one at
// the end point of the previous stage, and concatenates the paths.
// Steps are summed; Stop reports the last stage.
// Returns ErrNoStages if no stage has a grid.
func TraceStages(start orb.Point, stages ...Stage) (Result, error) {
	var out Result
	p := start
	ran := false
	for _, st := range stages {
		if st.Grid == nil {
			continue
		}
		r, err := Trace(st.Grid, p, st.MaxSteps)
		if err != nil {
			return Result{}, err
		}
		for _, q := range r.Path {
			out.Path = appendPoint(out.Path, q)
		}
		out.Steps += r.Steps
		out.Stop = r.Stop
		p = r.End()
		ran = true
	}
	if !ran {
		return Result{}, ErrNoStages
	}
	if len(out.Path) < 2 {
		out.Path = append(out.Path, p)
	}
	return out, nil
}

// appendPoint appends p unless it repeats the last point.
func appendPoint(ls orb.LineString, p orb.Point) orb.LineString {
	if n := len(ls); n > 0 && ls[n-1].Equal(p) {
		return ls
	}
	return append(ls, p)
}
