// Package snap moves a user-supplied pour point onto a hydrologically
// meaningful location before the upstream area is computed.
//
// Two mutually exclusive policies:
//
//   - FlowLine: the point lies on a present cell of the flow-area raster, so
//     it is moved to the nearest position on the flow lines.
//   - MaxAccumulation: otherwise the cells within Tolerance world units of
//     the point are searched and the point moves to the centre of the cell
//     with the strictly largest accumulation (first one wins on ties, cells
//     scanned column by column). A window of a single cell leaves the point
//     unchanged.
//
// Snapping an already snapped point returns it unchanged.
package snap
