// Package upstream computes the contributing area of an outlet cell on a
// D8 flow-direction grid.
//
// What:
//
//   - Accumulate runs a reverse breadth-first search from a seed cell: a
//     neighbour n of a reached cell c is reached too iff the code stored at n
//     drains exactly into c. The result is an Occupancy with every cell whose
//     downhill chain ends in the seed.
//
// Why:
//
//   - Watershed delineation: the filled cells are the upstream area of a pour
//     point; package boundary turns them into polygon rings.
//
// Complexity:
//
//   - Accumulate: O(W×H×8) time worst case, O(W×H) memory. Each
//     (cell, neighbour) pair is examined at most once.
//
// Errors:
//
//   - ErrNilGrid:          grid pointer is nil.
//   - ErrSeedOutOfBounds:  seed cell outside the grid.
//   - context.Canceled     when cancelled through WithContext.
package upstream
