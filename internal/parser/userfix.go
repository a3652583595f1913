package parser

import (
	"math"
	"strconv"
	"strings"
)

type UserFixKind int

const (
	UserFixNone UserFixKind = iota
	UserFixVRP
	UserFixPOI
	UserFixMarker
)

func (k UserFixKind) String() string {
	switch k {
	case UserFixVRP:
		return "VRP"
	case UserFixPOI:
		return "POI"
	case UserFixMarker:
		return "Marker"
	}
	return "None"
}

var userFixKinds = map[string]UserFixKind{
	"VRP":    UserFixVRP,
	"11":     UserFixVRP,
	"POI":    UserFixPOI,
	"8":      UserFixPOI,
	"MARKER": UserFixMarker,
	"9":      UserFixMarker,
	"10":     UserFixMarker,
}

func ParseUserFixKind(s string) UserFixKind {
	return userFixKinds[strings.ToUpper(strings.TrimSpace(s))]
}

type UserFixRecord struct {
	Kind      UserFixKind
	Name      string
	ID        string
	Lat, Lon  float64
	Elevation int
	Region    string
}

// UserFixParser decodes the user-maintained CSV waypoint list:
//
//	type,name,ident,lat,lon[,elevation[,region]]
//
// Lines starting with '#' are comments.
type UserFixParser struct {
	recordSink[UserFixRecord]
	r *LineReader
}

func NewUserFixParser(r *LineReader) *UserFixParser {
	return &UserFixParser{r: r}
}

func (p *UserFixParser) Load() error {
	return p.r.ForEachLine(p.parseLine)
}

func (p *UserFixParser) parseLine() error {
	if p.r.EOL() || strings.HasPrefix(strings.TrimSpace(p.r.Line()), "#") {
		return nil
	}

	kind := ParseUserFixKind(p.r.CSV())
	if kind == UserFixNone {
		return nil
	}

	rec := UserFixRecord{
		Kind: kind,
		Name: p.r.CSV(),
		ID:   strings.ToUpper(p.r.CSV()),
		Lat:  parseFloat(p.r.CSV()),
		Lon:  parseFloat(p.r.CSV()),
	}
	rec.Elevation, _ = strconv.Atoi(p.r.CSV())
	rec.Region = strings.ToUpper(p.r.CSV())

	if rec.ID == "" {
		rec.ID = "USER_FIX_" + strconv.Itoa(p.r.LineNumber())
	}
	if math.IsNaN(rec.Lat) || math.IsNaN(rec.Lon) {
		return p.fail(newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), "user fix %s without position", rec.ID))
	}
	return p.accept(rec)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
