// Package watershed traces water over raster terrain: where a drop flows,
// which cells drain through a point, and the polygons that outline them.
//
// What:
//
//   - raster/   georeferenced grids, boolean occupancy grids, ESRI ASCII input
//   - d8/       the eight-direction flow code table (E=1 to NE=128)
//   - flowpath/ downhill trace over one grid or a fine-then-coarse pair
//   - upstream/ reverse breadth-first accumulation of the draining cells
//   - boundary/ lattice boundary rings of an occupancy grid
//   - snap/     pour point snapping to flow lines or peak accumulation
//
// The internal/ packages wire these into a service: layer catalog with
// hot reload, configuration, logging, metrics and an HTTP API. The
// watershed command in cmd/watershed serves the API or runs a single
// operation.
//
// Quick example:
//
//	g, _ := raster.LoadASCII("flowdir.asc")
//	occ, _ := upstream.Accumulate(g, g.MapToCell(outlet))
//	rings := boundary.Rings(occ)
//
// Complexity:
//
//   - flowpath.Trace:      O(min(maxSteps, W×H))
//   - upstream.Accumulate: O(W×H×8) time, O(W×H) memory
//   - boundary.Trace:      O(W×H + P), P = total ring length
package watershed
