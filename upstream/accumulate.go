package upstream

import (
	"github.com/katalvlaran/watershed/d8"
	"github.com/katalvlaran/watershed/raster"
)

// walker encapsulates mutable BFS state.
type walker struct {
	grid  *raster.Grid
	opts  Options
	queue []raster.Cell
	seen  []bool // row-major, same frame as grid
	out   *raster.Occupancy
}

// Accumulate marks every cell of g whose D8 chain drains into seed.
//
// Behavior:
//  1. Seed the FIFO queue and the seen set with seed.
//  2. Dequeue c, mark it, then test its eight neighbours n: n is enqueued
//     iff in bounds, unseen, and its code equals d8.Between(n, c).
//  3. Stop when the queue is empty.
//
// Returns ErrNilGrid, ErrSeedOutOfBounds, or the context error when
// cancelled via WithContext.
// Time: O(W·H·8). Memory: O(W·H).
func Accumulate(g *raster.Grid, seed raster.Cell, opts ...Option) (*raster.Occupancy, error) {
	if g == nil {
		return nil, ErrNilGrid
	}
	if !g.InBounds(seed.Col, seed.Row) {
		return nil, ErrSeedOutOfBounds
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	w := &walker{
		grid: g,
		opts: o,
		seen: make([]bool, g.Width*g.Height),
		out:  raster.NewOccupancy(g.Frame),
	}
	w.enqueue(seed)
	return w.out, w.loop()
}

func (w *walker) enqueue(c raster.Cell) {
	w.seen[c.Row*w.grid.Width+c.Col] = true
	w.queue = append(w.queue, c)
}

// loop processes the queue until empty or cancellation.
func (w *walker) loop() error {
	for qi := 0; qi < len(w.queue); qi++ {
		select {
		case <-w.opts.Ctx.Done():
			return w.opts.Ctx.Err()
		default:
		}

		c := w.queue[qi]
		w.out.Set(c.Col, c.Row, true)
		w.opts.OnVisit(c)
		w.enqueueInflow(c)
	}
	return nil
}

// enqueueInflow enqueues each unseen neighbour whose code drains into c.
func (w *walker) enqueueInflow(c raster.Cell) {
	for _, dir := range d8.All {
		n := dir.Next(c)
		if !w.grid.InBounds(n.Col, n.Row) || w.seen[n.Row*w.grid.Width+n.Col] {
			continue
		}
		v, ok := w.grid.CellValue(n)
		if !ok {
			continue
		}
		// n lies in direction dir from c, so it drains into c iff its code
		// points the opposite way.
		if d8.Decode(v) == dir.Inverse() {
			w.enqueue(n)
		}
	}
}
