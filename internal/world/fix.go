package world

import (
	"fmt"

	"github.com/curbz/navgraph/pkg/geometry"
)

type VOR struct {
	KHz       int
	Range     int // nm
	Variation float64
	Name      string
}

type NDB struct {
	KHz   int
	Range int
	Name  string
}

type DME struct {
	KHz       int
	Range     int
	Elevation int // feet
}

// ILS is the localizer of an instrument landing system. Category is 0
// for localizer-only installations.
type ILS struct {
	KHz      int
	Heading  float64
	Category int
	Airport  string
	Runway   string
	Name     string
}

type UserFixType int

const (
	UserFixVRP UserFixType = iota + 1
	UserFixPOI
	UserFixMarker
)

func (t UserFixType) String() string {
	switch t {
	case UserFixVRP:
		return "VRP"
	case UserFixPOI:
		return "POI"
	case UserFixMarker:
		return "Marker"
	}
	return "None"
}

type UserFix struct {
	Type      UserFixType
	Name      string
	Elevation int
}

// Fix is an enroute or terminal waypoint. Navaids are fixes with one or
// more of the optional attachments set.
type Fix struct {
	id       string
	region   *Region
	location geometry.Point
	global   bool

	Name string
	VOR  *VOR
	NDB  *NDB
	DME  *DME
	ILS  *ILS
	User *UserFix
}

// NewFix builds a detached fix. It becomes part of a World through
// World.AddFix, World.AddUserFix or Airport.AddTerminalFix.
func NewFix(id string, region *Region, location geometry.Point) *Fix {
	return &Fix{id: id, region: region, location: location}
}

func (f *Fix) ID() string {
	return f.id
}

func (f *Fix) Location() geometry.Point {
	return f.location
}

func (f *Fix) Kind() NodeKind {
	return KindFix
}

func (f *Fix) Region() *Region {
	return f.region
}

func (f *Fix) RegionID() string {
	if f.region == nil {
		return ""
	}
	return f.region.id
}

// IsGlobal reports whether the fix belongs to the enroute network.
// Terminal fixes are reachable only through their airport.
func (f *Fix) IsGlobal() bool {
	return f.global
}

func (f *Fix) IsNavaid() bool {
	return f.VOR != nil || f.NDB != nil || f.DME != nil || f.ILS != nil
}

func (f *Fix) IsUserFix() bool {
	return f.User != nil
}

func (f *Fix) String() string {
	return fmt.Sprintf("%s/%s", f.id, f.RegionID())
}
