package upstream_test

import (
	"fmt"

	"github.com/katalvlaran/watershed/raster"
	"github.com/katalvlaran/watershed/upstream"
)

// ExampleAccumulate marks the catchment of the outlet at the bottom of the
// middle column. The eastern column drains off the grid and is excluded.
//
//	Codes: 2=SE, 4=S, 1=E, 0=pit
func ExampleAccumulate() {
	g, _ := raster.New([][]float64{
		{2, 4, 1},
		{2, 4, 1},
		{1, 0, 1},
	})

	occ, _ := upstream.Accumulate(g, raster.Cell{Col: 1, Row: 2})
	fmt.Println("cells:", occ.Count())
	for row := 0; row < occ.Height; row++ {
		for col := 0; col < occ.Width; col++ {
			if occ.Filled(col, row) {
				fmt.Print("#")
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println()
	}
	// Output:
	// cells: 6
	// ##.
	// ##.
	// ##.
}
