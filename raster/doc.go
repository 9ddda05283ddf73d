// Package raster provides the read-only grid views every hydrology
// algorithm in this module operates on.
//
// What:
//
//   - Frame: width/height in cells, cell size and the world coordinate of the
//     top-left corner. Owns the cell <-> world transforms.
//   - Grid: a Frame plus row-major float64 cell values and a no-data sentinel.
//     Value(col,row) reports "absent" outside the grid or on no-data.
//   - Occupancy: a boolean grid over the same Frame; out-of-bounds cells are
//     always unfilled.
//   - Threshold: select the cells of a Grid whose value lies in [lo, hi].
//   - ReadASCII / LoadASCII: decode ESRI ASCII grids.
//
// Why:
//
//   - Flow tracing, upstream accumulation, pour-point snapping and boundary
//     tracing all share one bounds-checked accessor, so the "absent outside"
//     convention lives in exactly one place.
//
// Complexity:
//
//   - Value, Filled, MapToCell, CellToMap: O(1).
//   - New, Threshold, ReadASCII: O(W×H) time and memory.
//
// Errors:
//
//   - ErrEmptyGrid: input grid has no rows or no columns.
//   - ErrNonRectangular: rows have differing lengths.
//   - ErrOptionViolation: invalid cell size.
//   - ErrASCIIHeader, ErrASCIIData: malformed ASCII grid.
package raster
