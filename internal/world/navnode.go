package world

import "github.com/curbz/navgraph/pkg/geometry"

type NodeKind int

const (
	KindAirport NodeKind = iota
	KindFix
	KindRunway
)

func (k NodeKind) String() string {
	switch k {
	case KindAirport:
		return "airport"
	case KindFix:
		return "fix"
	case KindRunway:
		return "runway"
	}
	return "unknown"
}

// NavNode is anything that can take part in the connectivity graph. The
// set of implementations is closed: *Airport, *Fix and *Runway.
type NavNode interface {
	ID() string
	Location() geometry.Point
	Kind() NodeKind
}

// HasLocation reports whether n carries a usable position. Airports
// without runway or datum data do not.
func HasLocation(n NavNode) bool {
	return n != nil && n.Location().IsValid()
}

// Route is the "via" of a connection: an *Airway or a *Procedure.
type Route interface {
	Name() string
}

// Connection is a directed edge leaving a node.
type Connection struct {
	Via Route
	To  NavNode
}
