package flowpath

import (
	"errors"

	"github.com/katalvlaran/watershed/raster"
	"github.com/paulmach/orb"
)

// Sentinel errors for path tracing.
var (
	// ErrNilGrid is returned when a nil grid is passed to Trace.
	ErrNilGrid = errors.New("flowpath: grid is nil")
	// ErrInvalidBudget is returned for a negative step budget.
	ErrInvalidBudget = errors.New("flowpath: step budget cannot be negative")
	// ErrNoStages is returned when TraceStages has no stage with a grid.
	ErrNoStages = errors.New("flowpath: no stage with a grid")
)

// Termination tells why a trace stopped.
type Termination int

const (
	// Sink: the current cell carries no valid D8 code.
	Sink Termination = iota
	// Boundary: the path left the grid or entered a no-data cell.
	Boundary
	// Budget: the step counter exceeded the budget (runaway or cycle).
	Budget
)

// String returns "sink", "boundary" or "budget".
func (t Termination) String() string {
	switch t {
	case Sink:
		return "sink"
	case Boundary:
		return "boundary"
	case Budget:
		return "budget"
	}
	return "unknown"
}

// Result is the outcome of a trace.
//   - Path: world-coordinate polyline, at least two points.
//   - Steps: direction evaluations performed (never more than budget+1 per stage).
//   - Stop: why the last stage ended.
type Result struct {
	Path  orb.LineString
	Steps int
	Stop  Termination
}

// End returns the last point of the path.
func (r Result) End() orb.Point {
	return r.Path[len(r.Path)-1]
}

// Stage is one grid of a multi-resolution trace and its step budget.
// A stage with a nil Grid is skipped.
type Stage struct {
	Grid     *raster.Grid
	MaxSteps int
}
