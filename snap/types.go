package snap

import (
	"errors"

	"github.com/katalvlaran/watershed/raster"
	"github.com/paulmach/orb"
)

// Sentinel errors for snapping.
var (
	// ErrNoFlowLine is returned when the point lies in a flow area but no
	// flow line geometry is available to snap to.
	ErrNoFlowLine = errors.New("snap: no flow line to snap to")
	// ErrNegativeTolerance is returned for a negative or NaN search tolerance.
	ErrNegativeTolerance = errors.New("snap: tolerance cannot be negative")
)

// Method reports which policy moved (or kept) the point.
type Method int

const (
	// None: the point was left where it was.
	None Method = iota
	// FlowLine: moved to the nearest point on the flow lines.
	FlowLine
	// MaxAccumulation: moved to the centre of the highest-accumulation cell.
	MaxAccumulation
)

// String returns "none", "flow_line" or "max_accumulation".
func (m Method) String() string {
	switch m {
	case FlowLine:
		return "flow_line"
	case MaxAccumulation:
		return "max_accumulation"
	}
	return "none"
}

// Input carries the layers consulted by PourPoint. Any grid may be nil:
// a nil FlowArea disables the flow-line policy, a nil Accumulation disables
// the window search.
type Input struct {
	FlowArea     *raster.Grid
	FlowLines    orb.MultiLineString
	Accumulation *raster.Grid
	Tolerance    float64
}
