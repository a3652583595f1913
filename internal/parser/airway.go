package parser

import (
	"strings"
)

type FixType int

const (
	FixTypeNDB FixType = 2
	FixTypeVHF FixType = 3
	FixTypeFix FixType = 11
)

type Direction int

const (
	DirectionNone Direction = iota
	DirectionForward
	DirectionBackward
)

type AltitudeLevel int

const (
	AltitudeHigh AltitudeLevel = iota + 1
	AltitudeLow
)

var fixTypeCodes = map[int]FixType{
	2:  FixTypeNDB,
	3:  FixTypeVHF,
	11: FixTypeFix,
}

var directionCodes = map[string]Direction{
	"N": DirectionNone,
	"F": DirectionForward,
	"B": DirectionBackward,
}

// The numeric level codes read inverted against their names; they are
// kept exactly as the data format defines them.
var altitudeLevelCodes = map[int]AltitudeLevel{
	1: AltitudeHigh,
	2: AltitudeLow,
}

type FixRef struct {
	ID     string
	Region string
	Type   FixType
}

// AirwayRecord is one segment of one airway between two fixes.
type AirwayRecord struct {
	Name      string
	Begin     FixRef
	End       FixRef
	Direction Direction
	Level     AltitudeLevel
	Base      int // hundreds of feet
	Top       int
}

// AirwayParser decodes earth_awy.dat. A segment whose name joins several
// airways with "-" is reported once per airway.
type AirwayParser struct {
	recordSink[AirwayRecord]
	r *LineReader
}

func NewAirwayParser(r *LineReader) *AirwayParser {
	return &AirwayParser{r: r}
}

func (p *AirwayParser) Load() error {
	if err := p.r.ReadHeader(); err != nil {
		return err
	}
	return ignoreEndOfData(p.r.ForEachLine(p.parseLine))
}

func (p *AirwayParser) parseLine() error {
	if p.r.EOL() {
		return nil
	}

	beginID := p.r.Word()
	if beginID == "99" && p.r.EOL() {
		return errEndOfData
	}

	var rec AirwayRecord
	var ok bool

	rec.Begin.ID = beginID
	rec.Begin.Region = p.r.Word()
	beginType := p.r.Int()
	rec.End.ID = p.r.Word()
	rec.End.Region = p.r.Word()
	endType := p.r.Int()
	dir := p.r.Word()
	level := p.r.Int()
	rec.Base = p.r.Int()
	rec.Top = p.r.Int()
	names := p.r.Word()

	if rec.Begin.Type, ok = fixTypeCodes[beginType]; !ok {
		return p.malformed("unknown fix type %d for %s", beginType, rec.Begin.ID)
	}
	if rec.End.Type, ok = fixTypeCodes[endType]; !ok {
		return p.malformed("unknown fix type %d for %s", endType, rec.End.ID)
	}
	if rec.Direction, ok = directionCodes[dir]; !ok {
		return p.malformed("unknown direction %q", dir)
	}
	if rec.Level, ok = altitudeLevelCodes[level]; !ok {
		return p.malformed("unknown altitude level %d", level)
	}
	if names == "" {
		return p.malformed("airway segment without a name")
	}

	for _, name := range strings.Split(names, "-") {
		if name == "" {
			continue
		}
		rec.Name = name
		if err := p.accept(rec); err != nil {
			return err
		}
	}
	return nil
}

func (p *AirwayParser) malformed(format string, args ...any) error {
	return p.fail(newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), format, args...))
}
