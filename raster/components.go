package raster

// orthogonal lists the 4-connected neighbour offsets: E, S, W, N.
var orthogonal = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// Components returns the 4-connected regions of filled cells. Regions are
// ordered by their first cell in row-major order; cells within a region
// are in breadth-first order from that cell.
//
// Time:   O(W·H).
// Memory: O(W·H) for visited flags and output.
func (o *Occupancy) Components() [][]Cell {
	seen := make([]bool, len(o.filled))
	var comps [][]Cell

	for i0, f := range o.filled {
		if !f || seen[i0] {
			continue
		}
		queue := []int{i0}
		seen[i0] = true
		var comp []Cell

		for qi := 0; qi < len(queue); qi++ {
			c := o.Coordinate(queue[qi])
			comp = append(comp, c)
			for _, d := range orthogonal {
				col, row := c.Col+d[0], c.Row+d[1]
				if !o.Filled(col, row) {
					continue
				}
				if vi := o.index(col, row); !seen[vi] {
					seen[vi] = true
					queue = append(queue, vi)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}
