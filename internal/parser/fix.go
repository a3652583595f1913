package parser

import (
	"math"
	"strconv"
)

// EnrouteArea is the terminal-area id of fixes usable by the enroute
// network. Any other value names the airport owning the fix.
const EnrouteArea = "ENRT"

type FixRecord struct {
	ID           string
	Lat, Lon     float64
	TerminalArea string
	Region       string
	TypeCode     int
	Name         string
}

// FixParser decodes earth_fix.dat.
type FixParser struct {
	recordSink[FixRecord]
	r *LineReader
}

func NewFixParser(r *LineReader) *FixParser {
	return &FixParser{r: r}
}

func (p *FixParser) Load() error {
	if err := p.r.ReadHeader(); err != nil {
		return err
	}
	return ignoreEndOfData(p.r.ForEachLine(p.parseLine))
}

func (p *FixParser) parseLine() error {
	first := p.r.Word()
	if first == "" {
		return nil
	}
	if first == "99" {
		return errEndOfData
	}

	lat, err := strconv.ParseFloat(first, 64)
	if err != nil {
		lat = math.NaN()
	}
	rec := FixRecord{
		Lat:          lat,
		Lon:          p.r.Double(),
		ID:           p.r.Word(),
		TerminalArea: p.r.Word(),
		Region:       p.r.Word(),
		TypeCode:     p.r.Int(),
		Name:         p.r.RestOfLine(),
	}

	if rec.ID == "" || math.IsNaN(rec.Lat) || math.IsNaN(rec.Lon) {
		return p.fail(newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), "fix without id or position"))
	}
	return p.accept(rec)
}
