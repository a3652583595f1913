package parser

import (
	"math"
	"strconv"
)

type WaypointType int

const (
	WaypointAirport WaypointType = 1
	WaypointNDB     WaypointType = 2
	WaypointVOR     WaypointType = 3
	WaypointFix     WaypointType = 11
	WaypointLatLon  WaypointType = 28
)

// viaColumnVersion is the first .fms version whose rows carry an airway
// ("via") column between the id and the altitude.
const viaColumnVersion = 1100

type WaypointRecord struct {
	Type     WaypointType
	ID       string
	Via      string
	Altitude float64 // feet
	Lat, Lon float64
}

// FlightPlanParser decodes X-Plane .fms flight plans. Keyword lines of the
// 1100 format (ADEP, NUMENR, ...) and the bare count lines of version 3
// are skipped; only waypoint rows are reported.
type FlightPlanParser struct {
	recordSink[WaypointRecord]
	r *LineReader
}

func NewFlightPlanParser(r *LineReader) *FlightPlanParser {
	return &FlightPlanParser{r: r}
}

func (p *FlightPlanParser) Load() error {
	if err := p.r.ReadHeader(); err != nil {
		return err
	}
	return p.r.ForEachLine(p.parseLine)
}

func (p *FlightPlanParser) parseLine() error {
	code, err := strconv.Atoi(p.r.Word())
	if err != nil || p.r.EOL() {
		return nil
	}

	rec := WaypointRecord{Type: WaypointType(code), ID: p.r.Word()}
	if p.r.Version() >= viaColumnVersion {
		rec.Via = p.r.Word()
	}
	rec.Altitude = p.r.Double()
	rec.Lat = p.r.Double()
	rec.Lon = p.r.Double()

	if math.IsNaN(rec.Lat) || math.IsNaN(rec.Lon) {
		return p.fail(newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), "waypoint %s without position", rec.ID))
	}
	return p.accept(rec)
}
