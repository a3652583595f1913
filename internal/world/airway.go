package world

import "fmt"

type AirwayLevel int

const (
	LevelLower AirwayLevel = iota + 1
	LevelUpper
)

func (l AirwayLevel) String() string {
	switch l {
	case LevelLower:
		return "LOWER"
	case LevelUpper:
		return "UPPER"
	}
	return "UNKNOWN"
}

type Segment struct {
	From, To *Fix
	Base     int // hundreds of feet
	Top      int
}

// Airway is identified by name and level; the same name may exist at
// both levels.
type Airway struct {
	name     string
	level    AirwayLevel
	segments []Segment
}

func (a *Airway) Name() string {
	return a.name
}

func (a *Airway) Level() AirwayLevel {
	return a.level
}

// AddSegment records a directed segment. Connectivity is kept by the
// World; see World.ConnectTo.
func (a *Airway) AddSegment(s Segment) {
	a.segments = append(a.segments, s)
}

func (a *Airway) Segments() []Segment {
	return a.segments
}

func (a *Airway) String() string {
	return fmt.Sprintf("%s(%s)", a.name, a.level)
}
