package world

import (
	"math"
	"slices"
	"strings"

	"github.com/curbz/navgraph/pkg/geometry"
)

type Frequency struct {
	Type        int // apt.dat row code 50..56
	KHz         int
	Description string
}

type Airport struct {
	id       string
	location geometry.Point
	bounds   geometry.Rect

	Name      string
	Elevation int // feet
	Country   string
	Region    string
	ICAO      string
	Seaplane  bool
	Heliport  bool
	Closed    bool

	runways       []*Runway
	frequencies   []Frequency
	terminalFixes map[string]*Fix
	procedures    map[ProcedureKind]map[string]*Procedure
}

func newAirport(id string) *Airport {
	return &Airport{
		id:            id,
		location:      geometry.Point{Lat: math.NaN(), Lon: math.NaN()},
		terminalFixes: make(map[string]*Fix),
		procedures:    make(map[ProcedureKind]map[string]*Procedure),
	}
}

func (a *Airport) ID() string {
	return a.id
}

// Location is the datum position when one was set, else the centre of
// the runway bounds. It is NaN until either is known.
func (a *Airport) Location() geometry.Point {
	if a.location.IsValid() || a.bounds.IsEmpty() {
		return a.location
	}
	return a.bounds.Center()
}

func (a *Airport) SetLocation(p geometry.Point) {
	a.location = p
}

func (a *Airport) Kind() NodeKind {
	return KindAirport
}

// Bounds covers all runway thresholds.
func (a *Airport) Bounds() geometry.Rect {
	return a.bounds
}

// AddRunway adds both ends of one strip. The ends point at each other.
func (a *Airport) AddRunway(end1, end2 *Runway) {
	for _, r := range []*Runway{end1, end2} {
		if r == nil {
			continue
		}
		r.airport = a.id
		a.runways = append(a.runways, r)
		a.bounds.Extend(r.location)
	}
	if end1 != nil && end2 != nil {
		end1.opposite = end2
		end2.opposite = end1
	}
}

func (a *Airport) Runways() []*Runway {
	return a.runways
}

// Runway finds a runway end by name, with or without the "RW" prefix.
func (a *Airport) Runway(name string) *Runway {
	name = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "RW")
	for _, r := range a.runways {
		if r.name == name {
			return r
		}
	}
	return nil
}

// RunwaysMatching returns the runway ends selected by a CIFP runway spec.
func (a *Airport) RunwaysMatching(spec string) []*Runway {
	var out []*Runway
	for _, r := range a.runways {
		if MatchesRunwaySpec(spec, r.name) {
			out = append(out, r)
		}
	}
	return out
}

func (a *Airport) AddFrequency(f Frequency) {
	a.frequencies = append(a.frequencies, f)
}

func (a *Airport) Frequencies() []Frequency {
	return a.frequencies
}

// AddTerminalFix attaches a fix to the airport's terminal area. The fix
// keeps its global flag; a global fix attached here stays routable.
// The first fix registered under an id wins.
func (a *Airport) AddTerminalFix(f *Fix) *Fix {
	if existing, ok := a.terminalFixes[f.id]; ok {
		return existing
	}
	a.terminalFixes[f.id] = f
	return f
}

func (a *Airport) TerminalFix(id string) *Fix {
	return a.terminalFixes[id]
}

func (a *Airport) TerminalFixes() []*Fix {
	out := make([]*Fix, 0, len(a.terminalFixes))
	for _, f := range a.terminalFixes {
		out = append(out, f)
	}
	slices.SortFunc(out, func(x, y *Fix) int { return strings.Compare(x.id, y.id) })
	return out
}

// FindOrCreateProcedure returns the airport's procedure of the given kind
// and id, creating it on first use.
func (a *Airport) FindOrCreateProcedure(kind ProcedureKind, id string) *Procedure {
	byID := a.procedures[kind]
	if byID == nil {
		byID = make(map[string]*Procedure)
		a.procedures[kind] = byID
	}
	if p, ok := byID[id]; ok {
		return p
	}
	p := newProcedure(kind, id, a.id)
	byID[id] = p
	return p
}

func (a *Airport) Procedure(kind ProcedureKind, id string) *Procedure {
	return a.procedures[kind][id]
}

// Procedures returns the procedures of one kind sorted by id.
func (a *Airport) Procedures(kind ProcedureKind) []*Procedure {
	byID := a.procedures[kind]
	out := make([]*Procedure, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	slices.SortFunc(out, func(x, y *Procedure) int { return strings.Compare(x.id, y.id) })
	return out
}

func (a *Airport) SIDs() []*Procedure {
	return a.Procedures(ProcedureSID)
}

func (a *Airport) STARs() []*Procedure {
	return a.Procedures(ProcedureSTAR)
}

func (a *Airport) Approaches() []*Procedure {
	return a.Procedures(ProcedureApproach)
}

func (a *Airport) procedureCount() int {
	n := 0
	for _, byID := range a.procedures {
		n += len(byID)
	}
	return n
}

func (a *Airport) String() string {
	return a.id
}
