package upstream

import (
	"context"
	"errors"

	"github.com/katalvlaran/watershed/raster"
)

// Sentinel errors for accumulation.
var (
	// ErrNilGrid is returned if a nil grid pointer is passed.
	ErrNilGrid = errors.New("upstream: grid is nil")
	// ErrSeedOutOfBounds is returned when the seed cell lies outside the grid.
	ErrSeedOutOfBounds = errors.New("upstream: seed cell out of bounds")
)

// Option configures Accumulate via functional arguments.
type Option func(*Options)

// Options holds parameters and callbacks for Accumulate.
type Options struct {
	// Ctx allows cancellation; checked once per dequeued cell.
	Ctx context.Context

	// OnVisit is called for each cell as it is marked, in BFS order.
	OnVisit func(c raster.Cell)
}

// DefaultOptions returns Background context and a no-op OnVisit.
func DefaultOptions() Options {
	return Options{
		Ctx:     context.Background(),
		OnVisit: func(raster.Cell) {},
	}
}

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithOnVisit registers a callback run when a cell is marked.
func WithOnVisit(fn func(c raster.Cell)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnVisit = fn
		}
	}
}
