package world

import (
	"strings"

	"github.com/curbz/navgraph/pkg/geometry"
)

// apt.dat surface codes
const (
	SurfaceAsphalt  = 1
	SurfaceConcrete = 2
	SurfaceWater    = 13
)

// Runway is one runway end. Its location is the threshold.
type Runway struct {
	name     string
	airport  string
	location geometry.Point
	opposite *Runway

	Width        float64 // meters
	Surface      int
	Displacement float64 // meters
	Overrun      float64 // meters
	Elevation    int     // threshold elevation in feet, 0 when unknown
	ILS          *Fix
}

func NewRunway(name string, location geometry.Point) *Runway {
	return &Runway{name: strings.ToUpper(name), location: location}
}

// ID returns the name in CIFP notation, e.g. "RW16L".
func (r *Runway) ID() string {
	return "RW" + r.name
}

func (r *Runway) Name() string {
	return r.name
}

func (r *Runway) Location() geometry.Point {
	return r.location
}

func (r *Runway) Kind() NodeKind {
	return KindRunway
}

// Airport returns the id of the owning airport.
func (r *Runway) Airport() string {
	return r.airport
}

// Opposite returns the other end of the same strip.
func (r *Runway) Opposite() *Runway {
	return r.opposite
}

func (r *Runway) IsHard() bool {
	return r.Surface == SurfaceAsphalt || r.Surface == SurfaceConcrete
}

func (r *Runway) IsWater() bool {
	return r.Surface == SurfaceWater
}

// runwayNumber returns the two digit runway number ("09" for "9L").
func runwayNumber(name string) string {
	name = strings.TrimPrefix(strings.ToUpper(name), "RW")
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	num := name[:end]
	if len(num) == 1 {
		num = "0" + num
	}
	return num
}

// MatchesRunwaySpec reports whether runway (e.g. "16L") is selected by a
// CIFP runway spec: "ALL", an exact "RW16L", or "RW16B" selecting every
// parallel runway 16.
func MatchesRunwaySpec(spec, runway string) bool {
	spec = strings.ToUpper(strings.TrimSpace(spec))
	runway = strings.TrimPrefix(strings.ToUpper(runway), "RW")
	if spec == "ALL" {
		return true
	}
	spec = strings.TrimPrefix(spec, "RW")
	if spec == runway {
		return true
	}
	if strings.HasSuffix(spec, "B") {
		return runwayNumber(spec) == runwayNumber(runway) && runwayNumber(runway) != ""
	}
	return false
}
