package parser

import (
	"strings"

	"github.com/mohae/deepcopy"
)

type AirportKind int

const (
	AirportLand     AirportKind = 1
	AirportSeaplane AirportKind = 16
	AirportHeliport AirportKind = 17
)

type RunwayKind int

const (
	RunwayLand RunwayKind = iota
	RunwayWater
)

// RunwayEnd is one threshold of a runway or waterway.
type RunwayEnd struct {
	Name         string
	Lat, Lon     float64
	Displacement float64 // meters
	Overrun      float64 // meters
}

type RunwayRecord struct {
	Kind    RunwayKind
	Width   float64 // meters
	Surface int
	Ends    [2]RunwayEnd
}

type HelipadRecord struct {
	Name     string
	Lat, Lon float64
	Heading  float64
	Length   float64
	Width    float64
	Surface  int
}

// FrequencyRecord is a radio frequency row. Code is normalized to the
// 50..56 range whichever row family it came from.
type FrequencyRecord struct {
	Code        int
	KHz         int
	Description string
}

type AirportRecord struct {
	Kind        AirportKind
	ID          string
	Name        string
	Elevation   int // feet
	Runways     []RunwayRecord
	Helipads    []HelipadRecord
	Frequencies []FrequencyRecord
	Metadata    map[string]string
}

type airportRow int

const (
	rowIgnored airportRow = iota
	rowAirportHeader
	rowLandRunway
	rowWaterRunway
	rowHelipad
	rowMetadata
	rowFrequency
	rowFrequency833
	rowEndOfFile
)

var airportRowCodes = map[int]airportRow{
	1:    rowAirportHeader,
	16:   rowAirportHeader,
	17:   rowAirportHeader,
	100:  rowLandRunway,
	101:  rowWaterRunway,
	102:  rowHelipad,
	1302: rowMetadata,
	50:   rowFrequency,
	51:   rowFrequency,
	52:   rowFrequency,
	53:   rowFrequency,
	54:   rowFrequency,
	55:   rowFrequency,
	56:   rowFrequency,
	1050: rowFrequency833,
	1051: rowFrequency833,
	1052: rowFrequency833,
	1053: rowFrequency833,
	1054: rowFrequency833,
	1055: rowFrequency833,
	1056: rowFrequency833,
	99:   rowEndOfFile,
}

// AirportParser decodes apt.dat files into one AirportRecord per airport.
type AirportParser struct {
	recordSink[AirportRecord]
	r   *LineReader
	cur AirportRecord
}

func NewAirportParser(r *LineReader) *AirportParser {
	return &AirportParser{r: r}
}

func (p *AirportParser) Load() error {
	if err := p.r.ReadHeader(); err != nil {
		return err
	}

	err := p.r.ForEachLine(p.parseLine)
	if err != nil {
		return err
	}
	return p.finish()
}

func (p *AirportParser) parseLine() error {
	code := p.r.Int()
	row := airportRowCodes[code]

	if row != rowAirportHeader && row != rowIgnored && row != rowEndOfFile && p.cur.ID == "" {
		return p.fail(newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(),
			"row code %d outside of an airport block", code))
	}

	switch row {
	case rowAirportHeader:
		if err := p.finish(); err != nil {
			return err
		}
		p.startAirport(AirportKind(code))
	case rowLandRunway:
		p.parseLandRunway()
	case rowWaterRunway:
		p.parseWaterRunway()
	case rowHelipad:
		p.parseHelipad()
	case rowMetadata:
		key := p.r.Word()
		if key != "" {
			if p.cur.Metadata == nil {
				p.cur.Metadata = make(map[string]string)
			}
			p.cur.Metadata[key] = p.r.RestOfLine()
		}
	case rowFrequency:
		p.cur.Frequencies = append(p.cur.Frequencies, FrequencyRecord{
			Code:        code,
			KHz:         p.r.Int() * 10,
			Description: p.r.RestOfLine(),
		})
	case rowFrequency833:
		p.cur.Frequencies = append(p.cur.Frequencies, FrequencyRecord{
			Code:        code - 1000,
			KHz:         p.r.Int(),
			Description: p.r.RestOfLine(),
		})
	case rowEndOfFile:
		return p.finish()
	}
	return nil
}

func (p *AirportParser) startAirport(kind AirportKind) {
	p.cur.Kind = kind
	p.cur.Elevation = p.r.Int()
	p.r.Word() // deprecated
	p.r.Word() // deprecated
	p.cur.ID = strings.ToUpper(p.r.Word())
	p.cur.Name = p.r.RestOfLine()
}

func (p *AirportParser) parseLandRunway() {
	rwy := RunwayRecord{Kind: RunwayLand}
	rwy.Width = p.r.Double()
	rwy.Surface = p.r.Int()
	p.r.Word() // shoulder
	p.r.Word() // smoothness
	p.r.Word() // centerline lights
	p.r.Word() // edge lights
	p.r.Word() // distance signs
	for i := range rwy.Ends {
		end := &rwy.Ends[i]
		end.Name = p.r.Word()
		end.Lat = p.r.Double()
		end.Lon = p.r.Double()
		end.Displacement = p.r.Double()
		end.Overrun = p.r.Double()
		p.r.Word() // markings
		p.r.Word() // approach lights
		p.r.Word() // touchdown zone lights
		p.r.Word() // REIL
	}
	p.cur.Runways = append(p.cur.Runways, rwy)
}

func (p *AirportParser) parseWaterRunway() {
	rwy := RunwayRecord{Kind: RunwayWater, Surface: 13}
	rwy.Width = p.r.Double()
	p.r.Word() // buoys
	for i := range rwy.Ends {
		end := &rwy.Ends[i]
		end.Name = p.r.Word()
		end.Lat = p.r.Double()
		end.Lon = p.r.Double()
	}
	p.cur.Runways = append(p.cur.Runways, rwy)
}

func (p *AirportParser) parseHelipad() {
	p.cur.Helipads = append(p.cur.Helipads, HelipadRecord{
		Name:    p.r.Word(),
		Lat:     p.r.Double(),
		Lon:     p.r.Double(),
		Heading: p.r.Double(),
		Length:  p.r.Double(),
		Width:   p.r.Double(),
		Surface: p.r.Int(),
	})
}

// finish hands the acceptor a snapshot of the accumulated airport and
// resets the accumulator for reuse.
func (p *AirportParser) finish() error {
	if p.cur.ID == "" {
		p.reset()
		return nil
	}
	snap := deepcopy.Copy(p.cur).(AirportRecord)
	p.reset()
	return p.accept(snap)
}

func (p *AirportParser) reset() {
	p.cur.Kind = 0
	p.cur.ID = ""
	p.cur.Name = ""
	p.cur.Elevation = 0
	p.cur.Runways = p.cur.Runways[:0]
	p.cur.Helipads = p.cur.Helipads[:0]
	p.cur.Frequencies = p.cur.Frequencies[:0]
	clear(p.cur.Metadata)
}
