package raster

import "errors"

var (
	// ErrEmptyGrid indicates the input 2D slice is empty.
	ErrEmptyGrid = errors.New("raster: input grid must have at least one row and one column")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("raster: all rows must have the same length")
	// ErrOptionViolation indicates an invalid Option (e.g. non-positive cell size).
	ErrOptionViolation = errors.New("raster: invalid option supplied")
	// ErrASCIIHeader indicates a missing or malformed ASCII grid header.
	ErrASCIIHeader = errors.New("raster: malformed ascii grid header")
	// ErrASCIIData indicates the ASCII grid body does not match its header.
	ErrASCIIData = errors.New("raster: malformed ascii grid data")
)
