// Package d8 defines the eight-direction (D8) flow encoding shared by the
// flow-path tracer and the upstream accumulator.
//
// A flow-direction grid stores, per cell, the neighbour its water drains
// to: East=1, Southeast=2, South=4, Southwest=8, West=16, Northwest=32,
// North=64, Northeast=128. Every other stored value, 0 included, is a
// sink. Offsets are expressed in raster index space, where rows grow
// southwards.
package d8

import (
	"github.com/katalvlaran/watershed/raster"
)

// Direction is a decoded D8 code.
type Direction uint8

// The eight D8 codes plus Invalid (sink, pit or unknown value).
const (
	Invalid   Direction = 0
	East      Direction = 1
	Southeast Direction = 2
	South     Direction = 4
	Southwest Direction = 8
	West      Direction = 16
	Northwest Direction = 32
	North     Direction = 64
	Northeast Direction = 128
)

// All lists the valid directions clockwise from East.
var All = [8]Direction{East, Southeast, South, Southwest, West, Northwest, North, Northeast}

// Offset is a one-cell displacement in raster index space.
type Offset struct {
	DCol, DRow int
}

// offsets is indexed by the bit position of the code (East=bit 0).
var offsets = [8]Offset{
	{1, 0},   // East
	{1, 1},   // Southeast
	{0, 1},   // South
	{-1, 1},  // Southwest
	{-1, 0},  // West
	{-1, -1}, // Northwest
	{0, -1},  // North
	{1, -1},  // Northeast
}

var names = [8]string{"E", "SE", "S", "SW", "W", "NW", "N", "NE"}

// Decode maps a stored cell value to a Direction. Non-integral values and
// anything other than the eight codes decode to Invalid.
func Decode(v float64) Direction {
	if v != float64(int64(v)) {
		return Invalid
	}
	d := Direction(int64(v) & 0xff)
	if float64(d) != v || !d.Valid() {
		return Invalid
	}
	return d
}

// Valid reports whether d is one of the eight codes.
func (d Direction) Valid() bool {
	return d != 0 && d&(d-1) == 0
}

// bit returns the position of the single set bit of a valid direction.
func (d Direction) bit() int {
	i := 0
	for v := d; v > 1; v >>= 1 {
		i++
	}
	return i
}

// Offset returns the displacement for d; Invalid yields the zero Offset.
func (d Direction) Offset() Offset {
	if !d.Valid() {
		return Offset{}
	}
	return offsets[d.bit()]
}

// Inverse returns the direction pointing back along d.
func (d Direction) Inverse() Direction {
	if !d.Valid() {
		return Invalid
	}
	return All[(d.bit()+4)%8]
}

// Next returns the cell c drains into when its code is d.
func (d Direction) Next(c raster.Cell) raster.Cell {
	o := d.Offset()
	return c.Add(o.DCol, o.DRow)
}

// String returns the compass abbreviation ("E", "SE", ...) or "invalid".
func (d Direction) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return names[d.bit()]
}

// Between returns the code a cell at from must carry to drain into the
// adjacent cell to. Non-adjacent or identical cells yield Invalid.
func Between(from, to raster.Cell) Direction {
	o := Offset{DCol: to.Col - from.Col, DRow: to.Row - from.Row}
	for i, off := range offsets {
		if off == o {
			return All[i]
		}
	}
	return Invalid
}
