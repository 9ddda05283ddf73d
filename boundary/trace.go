package boundary

import (
	"github.com/katalvlaran/watershed/raster"
	"github.com/paulmach/orb"
)

// tracer holds the occupancy being traced and the consumed-cell grid.
type tracer struct {
	occ      *raster.Occupancy
	consumed []bool // row-major over occ.Frame
}

func newTracer(occ *raster.Occupancy) *tracer {
	return &tracer{occ: occ, consumed: make([]bool, occ.Width*occ.Height)}
}

// Trace returns the lattice rings bounding the filled cells of occ. Every
// ring is closed (first corner == last corner) and has at least 5 corners.
// A nil occupancy yields no rings.
// Complexity: O(W×H + P).
func Trace(occ *raster.Occupancy) [][]Corner {
	if occ == nil {
		return nil
	}
	t := newTracer(occ)
	var rings [][]Corner
	for x := 0; x <= occ.Width; x++ {
		for y := 0; y <= occ.Height; y++ {
			if t.isStart(x, y) {
				rings = append(rings, t.curve(x, y))
			}
		}
	}
	return rings
}

// Rings traces occ and maps every lattice corner to world coordinates with
// the occupancy's frame.
func Rings(occ *raster.Occupancy) RingSet {
	lattice := Trace(occ)
	out := make(RingSet, 0, len(lattice))
	for _, lr := range lattice {
		ring := make(orb.Ring, len(lr))
		for i, c := range lr {
			ring[i] = occ.Corner(c.X, c.Y)
		}
		out = append(out, ring)
	}
	return out
}

// isStart reports whether (x,y) begins a new ring.
func (t *tracer) isStart(x, y int) bool {
	return !t.isConsumed(x, y) && t.filled(x, y) && !t.filled(x-1, y)
}

func (t *tracer) filled(x, y int) bool {
	return t.occ.Filled(x, y)
}

func (t *tracer) isConsumed(x, y int) bool {
	if !t.occ.InBounds(x, y) {
		return false
	}
	return t.consumed[y*t.occ.Width+x]
}

func (t *tracer) consume(x, y int) {
	if t.occ.InBounds(x, y) {
		t.consumed[y*t.occ.Width+x] = true
	}
}

// curve walks one ring starting down the western edge of cell (sx,sy).
// The walk ends when it is back on the start corner and about to repeat
// the first edge.
func (t *tracer) curve(sx, sy int) []Corner {
	t.consume(sx, sy)
	ring := []Corner{{sx, sy}}
	x, y := sx, sy+1
	h := up
	// every directed lattice edge is taken at most once per ring
	limit := 4 * (t.occ.Width + 1) * (t.occ.Height + 1)
	for i := 0; i < limit; i++ {
		next := t.turn(x, y, h)
		if x == sx && y == sy && next == up {
			break
		}
		ring = append(ring, Corner{x, y})
		switch next {
		case up:
			y++
		case right:
			x++
		case down:
			y--
		case left:
			x--
		}
		h = next
	}

	if ring[len(ring)-1] != ring[0] {
		ring = append(ring, ring[0])
	}
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
	return ring
}

// turn applies the decision table for heading h at corner (x,y), looking at
// the two cells ahead, and consumes the cell whose edge is walked next.
func (t *tracer) turn(x, y int, h heading) heading {
	switch h {
	case up:
		switch {
		case t.filled(x-1, y) && t.filled(x, y):
			t.consume(x-1, y)
			return left
		case t.filled(x, y):
			t.consume(x, y)
			return up
		default:
			return right
		}
	case right:
		switch {
		case t.filled(x, y) && t.filled(x, y-1):
			t.consume(x, y)
			return up
		case t.filled(x, y-1):
			t.consume(x, y-1)
			return right
		default:
			return down
		}
	case down:
		switch {
		case t.filled(x, y-1) && t.filled(x-1, y-1):
			t.consume(x, y-1)
			return right
		case t.filled(x-1, y-1):
			t.consumeWestEdge(x-1, y-1)
			return down
		default:
			return left
		}
	default: // left
		switch {
		case t.filled(x-1, y-1) && t.filled(x-1, y):
			t.consumeWestEdge(x-1, y-1)
			return down
		case t.filled(x-1, y):
			t.consume(x-1, y)
			return left
		default:
			t.consume(x, y)
			return up
		}
	}
}

// consumeWestEdge consumes a cell passed on its eastern side only when its
// western edge cannot start another ring: it sits in column 0 or its
// western neighbour is filled.
func (t *tracer) consumeWestEdge(x, y int) {
	if x < 1 || t.filled(x-1, y) {
		t.consume(x, y)
	}
}
