// Package flowpath traces the downhill path of water over a D8
// flow-direction grid.
//
// What:
//
//   - Trace walks from a start point, one cell per step, following the D8
//     code of the current cell until it leaves the grid (Boundary), reaches
//     a cell without a valid code (Sink) or exhausts its step budget
//     (Budget). The returned polyline keeps only the points where the flow
//     direction changes, plus the start and end points.
//   - TraceStages chains several traces: each stage starts where the
//     previous one stopped. This is how a fine-resolution tile hands a path
//     over to a coarse grid once the path leaves the tile.
//
// Complexity:
//
//   - Trace: O(min(maxSteps, W×H)) time, O(turns) memory.
//
// Errors:
//
//   - ErrNilGrid: nil flow-direction grid.
//   - ErrInvalidBudget: negative step budget.
//   - ErrNoStages: TraceStages was given no usable grid.
package flowpath
