package parser

import (
	"math"
	"strings"
)

type NavaidType int

const (
	NavaidNDB       NavaidType = 2
	NavaidVOR       NavaidType = 3
	NavaidILS       NavaidType = 4
	NavaidLOC       NavaidType = 5
	NavaidDME       NavaidType = 12
	NavaidDMEOnly   NavaidType = 13
	navaidEndOfFile NavaidType = 99
)

// regionColumnsVersion is the first earth_nav.dat version with terminal
// area and ICAO region columns.
const regionColumnsVersion = 1100

// NavaidRecord is one row of earth_nav.dat. KHz holds the frequency in
// kHz for every type; VHF rows are stored in the file in 10 kHz units.
type NavaidRecord struct {
	Type         NavaidType
	ID           string
	Lat, Lon     float64
	Elevation    int
	KHz          int
	Range        int
	Bearing      float64
	TerminalArea string
	Region       string
	Runway       string
	Name         string
}

// NavaidParser decodes earth_nav.dat. Files older than version 1100 carry
// no terminal-area or region columns; their navaids are reported as
// enroute with an empty region.
type NavaidParser struct {
	recordSink[NavaidRecord]
	r *LineReader
}

func NewNavaidParser(r *LineReader) *NavaidParser {
	return &NavaidParser{r: r}
}

func (p *NavaidParser) Load() error {
	if err := p.r.ReadHeader(); err != nil {
		return err
	}
	return ignoreEndOfData(p.r.ForEachLine(p.parseLine))
}

func (p *NavaidParser) parseLine() error {
	if p.r.EOL() {
		return nil
	}

	typ := NavaidType(p.r.Int())
	switch typ {
	case navaidEndOfFile:
		return errEndOfData
	case NavaidNDB, NavaidVOR, NavaidILS, NavaidLOC, NavaidDME, NavaidDMEOnly:
	default:
		// glideslopes, markers and GLS rows are not used
		return nil
	}

	rec := NavaidRecord{Type: typ}
	rec.Lat = p.r.Double()
	rec.Lon = p.r.Double()
	rec.Elevation = p.r.Int()
	rec.KHz = p.r.Int()
	if typ != NavaidNDB {
		rec.KHz *= 10
	}
	rec.Range = p.r.Int()
	rec.Bearing = p.r.Double()
	rec.ID = p.r.Word()

	isLocalizer := typ == NavaidILS || typ == NavaidLOC
	if p.r.Version() >= regionColumnsVersion {
		rec.TerminalArea = p.r.Word()
		rec.Region = p.r.Word()
		if isLocalizer {
			rec.Runway = p.r.Word()
		}
	} else if isLocalizer {
		rec.TerminalArea = p.r.Word()
		rec.Runway = p.r.Word()
	} else {
		rec.TerminalArea = EnrouteArea
	}
	rec.Name = p.r.RestOfLine()

	if isLocalizer && !math.IsNaN(rec.Bearing) {
		rec.Bearing = math.Mod(rec.Bearing, 360)
	}

	if rec.ID == "" || math.IsNaN(rec.Lat) || math.IsNaN(rec.Lon) {
		return p.fail(newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), "navaid without id or position"))
	}
	return p.accept(rec)
}

// ILSCategory derives the approach category from a localizer name such
// as "ILS-cat-II". Localizer-only installations report 0.
func ILSCategory(name string) int {
	upper := strings.ToUpper(name)
	i := strings.Index(upper, "CAT-")
	if i < 0 {
		return 0
	}
	cat := upper[i+4:]
	if j := strings.IndexAny(cat, " \t"); j >= 0 {
		cat = cat[:j]
	}
	switch cat {
	case "I":
		return 1
	case "II":
		return 2
	case "III", "IIIA", "IIIB", "IIIC":
		return 3
	}
	return 0
}
