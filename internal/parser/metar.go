package parser

import (
	"strings"
	"time"
)

// metarTimeLayout is the timestamp line preceding every report in
// METAR.rwx, e.g. "2024/03/11 14:50".
const metarTimeLayout = "2006/01/02 15:04"

type MetarRecord struct {
	ICAO   string
	Issued time.Time
	Raw    string
}

// MetarParser decodes X-Plane's METAR.rwx: a timestamp line followed by
// one or more report lines. Reports before the first timestamp carry a
// zero Issued time.
type MetarParser struct {
	recordSink[MetarRecord]
	r *LineReader

	issued time.Time
}

func NewMetarParser(r *LineReader) *MetarParser {
	return &MetarParser{r: r}
}

func (p *MetarParser) Load() error {
	return p.r.ForEachLine(p.parseLine)
}

func (p *MetarParser) parseLine() error {
	line := strings.TrimSpace(p.r.Line())
	if line == "" {
		return nil
	}
	if t, err := time.Parse(metarTimeLayout, line); err == nil {
		p.issued = t
		return nil
	}

	raw := strings.TrimSuffix(line, "=")
	icao := p.r.Word()
	if icao == "METAR" || icao == "SPECI" {
		icao = p.r.Word()
	}
	if len(icao) < 3 || len(icao) > 4 {
		return p.fail(newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), "report without station id"))
	}
	return p.accept(MetarRecord{ICAO: strings.ToUpper(icao), Issued: p.issued, Raw: raw})
}
