package upstream_test

import (
	"testing"

	"github.com/katalvlaran/watershed/raster"
	"github.com/katalvlaran/watershed/upstream"
)

// BenchmarkAccumulate measures a 1000×1000 grid where every column drains
// south into a bottom row that drains west to the outlet at (0, n-1).
// Complexity: O(W×H×8)
func BenchmarkAccumulate(b *testing.B) {
	const n = 1000
	values := make([][]float64, n)
	for r := 0; r < n; r++ {
		row := make([]float64, n)
		for c := 0; c < n; c++ {
			if r == n-1 {
				row[c] = 16 // west
			} else {
				row[c] = 4 // south
			}
		}
		values[r] = row
	}
	values[n-1][0] = 0
	g, err := raster.New(values)
	if err != nil {
		b.Fatalf("setup raster.New failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = upstream.Accumulate(g, raster.Cell{Col: 0, Row: n - 1})
	}
}
