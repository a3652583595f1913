package world

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/curbz/navgraph/pkg/geometry"
)

// gridKey is a one degree cell, identified by the floor of its south-west
// corner.
type gridKey struct {
	lat, lon int
}

func cellOf(p geometry.Point) gridKey {
	return gridKey{lat: int(math.Floor(p.Lat)), lon: int(math.Floor(p.Lon))}
}

// RegisterNavNodes builds the spatial index over airports and fixes and
// marks the world read-only. It runs once; later calls are ignored.
func (w *World) RegisterNavNodes() {
	if w.registered {
		w.log.Warn("nav nodes already registered")
		return
	}
	w.registered = true

	seen := make(map[NavNode]struct{})
	add := func(n NavNode) {
		if _, ok := seen[n]; ok || !HasLocation(n) {
			return
		}
		seen[n] = struct{}{}
		k := cellOf(n.Location())
		w.grid[k] = append(w.grid[k], n)
	}

	for _, a := range w.airportOrder {
		add(a)
		for _, f := range a.TerminalFixes() {
			add(f)
		}
	}
	for _, fixes := range w.fixes {
		for _, f := range fixes {
			add(f)
		}
	}

	if w.cacheSize > 0 {
		cache, err := lru.New[string, []*Airport](w.cacheSize)
		if err != nil {
			w.log.WithError(err).Warn("search cache disabled")
		} else {
			w.searchCache = cache
		}
	}

	w.log.WithField("cells", len(w.grid)).WithField("nodes", len(seen)).Info("nav nodes registered")
}

func (w *World) IsRegistered() bool {
	return w.registered
}

// VisitNodes calls fn for every node in the grid cells covering the
// rectangle spanned by upLeft and downRight. Cells are one degree wide,
// so fn may see nodes slightly outside the rectangle. Iteration stops
// when fn returns false.
func (w *World) VisitNodes(upLeft, downRight geometry.Point, fn func(NavNode) bool) {
	minLat := geometry.Clamp(math.Min(upLeft.Lat, downRight.Lat), -90, 90)
	maxLat := geometry.Clamp(math.Max(upLeft.Lat, downRight.Lat), -90, 90)
	minLon := geometry.Clamp(math.Min(upLeft.Lon, downRight.Lon), -180, 180)
	maxLon := geometry.Clamp(math.Max(upLeft.Lon, downRight.Lon), -180, 180)
	if math.IsNaN(minLat) || math.IsNaN(minLon) || math.IsNaN(maxLat) || math.IsNaN(maxLon) {
		return
	}

	lo := cellOf(geometry.Point{Lat: minLat, Lon: minLon})
	hi := cellOf(geometry.Point{Lat: maxLat, Lon: maxLon})
	for lat := lo.lat; lat <= hi.lat; lat++ {
		for lon := lo.lon; lon <= hi.lon; lon++ {
			for _, n := range w.grid[gridKey{lat: lat, lon: lon}] {
				if !fn(n) {
					return
				}
			}
		}
	}
}

// NodesWithin returns the indexed nodes no further than radius nautical
// miles from center.
func (w *World) NodesWithin(center geometry.Point, radiusNM float64) []NavNode {
	dLat := radiusNM / 60
	dLon := 360.0
	if c := math.Cos(center.Lat * math.Pi / 180); c > 0.01 {
		dLon = dLat / c
	}

	var out []NavNode
	w.VisitNodes(
		geometry.Point{Lat: center.Lat + dLat, Lon: center.Lon - dLon},
		geometry.Point{Lat: center.Lat - dLat, Lon: center.Lon + dLon},
		func(n NavNode) bool {
			if geometry.PointDistNM(center, n.Location()) <= radiusNM {
				out = append(out, n)
			}
			return true
		})
	return out
}
