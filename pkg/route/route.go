// Package route provides geometry helpers for waypoint lists before they
// are sent to the simulator.
package route

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"xpcgo/pkg/sim"
)

func toPoint(w sim.Waypoint) orb.Point {
	return orb.Point{float64(w.Lon), float64(w.Lat)}
}

// Legs returns the great-circle length in meters of each leg of the route.
func Legs(points []sim.Waypoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	legs := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		legs = append(legs, geo.Distance(toPoint(points[i-1]), toPoint(points[i])))
	}
	return legs
}

// TotalDistance returns the great-circle length in meters of the whole route.
func TotalDistance(points []sim.Waypoint) float64 {
	var total float64
	for _, leg := range Legs(points) {
		total += leg
	}
	return total
}

// Bound returns the geographic bounding box enclosing the route.
func Bound(points []sim.Waypoint) orb.Bound {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, toPoint(p))
	}
	return ls.Bound()
}
