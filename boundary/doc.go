// Package boundary converts a boolean occupancy grid into closed polygon
// rings that follow the cell edges.
//
// What:
//
//   - Cells are unit squares on an integer lattice of corners 0..W by 0..H;
//     corner (x,y) is the top-left corner of cell (x,y).
//   - A ring starts at every unconsumed corner (x,y) whose cell (x,y) is
//     filled while its western neighbour is not. Corners are scanned column
//     by column, top to bottom, so output order is deterministic.
//   - Each ring is walked by a four-heading automaton that keeps the filled
//     cells on one side, consumes the cells it passes so that no boundary is
//     emitted twice, closes the ring and reverses it. In world coordinates
//     outer boundaries come out clockwise and holes counter-clockwise.
//
// Regions touching only at a corner are traced as separate rings; a ring
// may visit a pinch corner twice.
//
// Complexity:
//
//   - Trace, Rings: O(W×H + P) time, where P is the total filled perimeter;
//     O(W×H) memory for the consumed grid.
package boundary
