package service

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/katalvlaran/watershed/boundary"
)

// Polygons groups traced rings into polygons. Clockwise rings are outer
// boundaries; each counter-clockwise ring is a hole of the smallest outer
// ring enclosing it. Output rings follow RFC 7946 winding: outer rings
// counter-clockwise, holes clockwise.
func Polygons(rings boundary.RingSet) orb.MultiPolygon {
	var (
		outers []orb.Ring
		holes  []orb.Ring
	)
	for _, r := range rings {
		switch r.Orientation() {
		case orb.CW:
			outers = append(outers, r.Clone())
		case orb.CCW:
			holes = append(holes, r.Clone())
		}
	}

	mp := make(orb.MultiPolygon, len(outers))
	areas := make([]float64, len(outers))
	bounds := make([]orb.Bound, len(outers))
	for i, r := range outers {
		mp[i] = orb.Polygon{r}
		areas[i] = math.Abs(planar.Area(r))
		bounds[i] = r.Bound()
	}

	for _, h := range holes {
		hb := h.Bound()
		best := -1
		for i, r := range outers {
			if !within(hb, bounds[i]) || !planar.RingContains(r, h[0]) {
				continue
			}
			if best < 0 || areas[i] < areas[best] {
				best = i
			}
		}
		if best < 0 {
			// not enclosed by any outer ring; keep its cells as a polygon
			h.Reverse()
			mp = append(mp, orb.Polygon{h})
			continue
		}
		mp[best] = append(mp[best], h)
	}

	for _, poly := range mp {
		for _, r := range poly {
			r.Reverse()
		}
	}
	return mp
}

func within(inner, outer orb.Bound) bool {
	return outer.Contains(inner.Min) && outer.Contains(inner.Max)
}
