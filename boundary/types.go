package boundary

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Corner is a lattice corner: (X,Y) is the top-left corner of cell (X,Y).
type Corner struct {
	X, Y int
}

// String formats the corner as "x,y".
func (c Corner) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// RingSet is the ordered list of closed world-coordinate rings traced from
// one occupancy grid. Outer/hole classification is left to the consumer and
// can be read from each ring's orientation.
type RingSet []orb.Ring

// heading is the automaton state: the direction of the last lattice step.
// Up moves to y+1 (southwards in world space).
type heading uint8

const (
	up heading = iota
	right
	down
	left
)

func (h heading) String() string {
	return [...]string{"up", "right", "down", "left"}[h]
}
