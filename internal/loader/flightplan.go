package loader

import (
	"math"
	"strconv"

	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
	"github.com/curbz/navgraph/pkg/geometry"
)

// flightPlanResolver turns .fms waypoint rows into graph nodes without
// modifying the World. Rows that cannot be matched become detached
// user fixes at the row's position.
type flightPlanResolver struct {
	world *world.World
	nodes []world.NavNode
}

func (f *flightPlanResolver) accept(rec parser.WaypointRecord) error {
	pos := geometry.Point{Lat: rec.Lat, Lon: rec.Lon}
	node := f.lookup(rec, pos)
	if node == nil {
		id := rec.ID
		if id == "" {
			id = "WPT" + strconv.Itoa(len(f.nodes)+1)
		}
		fix := world.NewFix(id, nil, pos)
		fix.User = &world.UserFix{Name: id, Elevation: int(rec.Altitude)}
		node = fix
	}
	f.nodes = append(f.nodes, node)
	return nil
}

func (f *flightPlanResolver) lookup(rec parser.WaypointRecord, pos geometry.Point) world.NavNode {
	if rec.ID == "" || rec.Type == parser.WaypointLatLon {
		return nil
	}
	if rec.Type == parser.WaypointAirport {
		if apt := f.world.FindAirportByID(rec.ID); apt != nil {
			return apt
		}
		return nil
	}

	// ids repeat worldwide; take the candidate closest to where the plan
	// says the waypoint is, or to the previous waypoint
	ref := pos
	if !ref.IsValid() && len(f.nodes) > 0 {
		ref = f.nodes[len(f.nodes)-1].Location()
	}

	var best *world.Fix
	bestDist := math.Inf(1)
	for _, fix := range f.world.FixesByID(rec.ID) {
		if fix.IsUserFix() || !matchesWaypointType(fix, rec.Type) {
			continue
		}
		d := 0.0
		if ref.IsValid() {
			d = geometry.PointDistNM(ref, fix.Location())
		}
		if d < bestDist {
			best, bestDist = fix, d
		}
	}
	if best == nil {
		return nil
	}
	return best
}

func matchesWaypointType(fix *world.Fix, t parser.WaypointType) bool {
	switch t {
	case parser.WaypointNDB:
		return fix.NDB != nil
	case parser.WaypointVOR:
		return fix.VOR != nil || fix.DME != nil
	}
	return true
}
