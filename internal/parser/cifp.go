package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/curbz/navgraph/pkg/geometry"
)

type CIFPKind int

const (
	CIFPUnknown CIFPKind = iota
	CIFPSID
	CIFPSTAR
	CIFPApproach
	CIFPPathData
	CIFPRunway
)

var cifpKinds = map[string]CIFPKind{
	"SID":   CIFPSID,
	"STAR":  CIFPSTAR,
	"APPCH": CIFPApproach,
	"PRDAT": CIFPPathData,
	"RWY":   CIFPRunway,
}

func (k CIFPKind) String() string {
	switch k {
	case CIFPSID:
		return "SID"
	case CIFPSTAR:
		return "STAR"
	case CIFPApproach:
		return "APPCH"
	case CIFPPathData:
		return "PRDAT"
	case CIFPRunway:
		return "RWY"
	}
	return "unknown"
}

// CIFPRow is one leg of a procedure, or one runway for RWY records.
type CIFPRow struct {
	Line           int
	Seq            int
	RouteType      string
	ID             string
	Transition     string
	FixID          string
	FixRegion      string
	FixSection     string
	FixSubsection  string
	Description    string
	PathTerminator string

	// RWY records only
	Elevation int
	Lat, Lon  float64
}

// CIFPGroup holds the consecutive rows sharing a record kind and route
// identifier. Classifying the rows into transitions is left to the
// loader; the parser only groups them.
type CIFPGroup struct {
	Kind CIFPKind
	ID   string
	Rows []CIFPRow
}

type cifpState int

const (
	cifpIdle cifpState = iota
	cifpAccumulating
)

type cifpEvent int

const (
	cifpKindChanged cifpEvent = iota
	cifpIDChanged
	cifpEndOfStream
)

// CIFPParser decodes one airport's CIFP file. The format has no block
// markers, so a group ends whenever the record kind or the route
// identifier changes, and at end of input.
type CIFPParser struct {
	recordSink[CIFPGroup]
	r *LineReader

	state   cifpState
	current CIFPGroup
}

func NewCIFPParser(r *LineReader) *CIFPParser {
	return &CIFPParser{r: r}
}

func (p *CIFPParser) Load() error {
	if err := p.r.ForEachLine(p.parseLine); err != nil {
		return err
	}
	return p.handle(cifpEndOfStream)
}

func (p *CIFPParser) parseLine() error {
	if p.r.EOL() {
		return nil
	}

	kind, ok := cifpKinds[p.r.Delimited(':')]
	if !ok {
		return nil
	}

	var row CIFPRow
	var err error
	if kind == CIFPRunway {
		row, err = p.parseRunway()
	} else {
		row, err = p.parseLeg()
	}
	if err != nil {
		return p.fail(err)
	}

	if p.state == cifpAccumulating {
		switch {
		case kind != p.current.Kind:
			err = p.handle(cifpKindChanged)
		case row.ID != p.current.ID:
			err = p.handle(cifpIDChanged)
		}
		if err != nil {
			return err
		}
	}
	if p.state == cifpIdle {
		p.state = cifpAccumulating
		p.current = CIFPGroup{Kind: kind, ID: row.ID}
	}
	p.current.Rows = append(p.current.Rows, row)
	return nil
}

// handle applies a boundary event. Every event closes an open group;
// events in the idle state are no-ops.
func (p *CIFPParser) handle(ev cifpEvent) error {
	if p.state == cifpIdle {
		return nil
	}
	group := p.current
	p.current = CIFPGroup{}
	p.state = cifpIdle
	return p.accept(group)
}

func splitFields(s string) []string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	fields := strings.Split(s, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func (p *CIFPParser) parseLeg() (CIFPRow, error) {
	f := splitFields(p.r.RestOfLine())
	if len(f) < 5 {
		return CIFPRow{}, newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), "procedure row has %d fields", len(f))
	}
	get := func(i int) string {
		if i < len(f) {
			return f[i]
		}
		return ""
	}
	seq, _ := strconv.Atoi(get(0))
	return CIFPRow{
		Line:           p.r.LineNumber(),
		Seq:            seq,
		RouteType:      get(1),
		ID:             get(2),
		Transition:     get(3),
		FixID:          get(4),
		FixRegion:      get(5),
		FixSection:     get(6),
		FixSubsection:  get(7),
		Description:    get(8),
		PathTerminator: get(11),
	}, nil
}

func (p *CIFPParser) parseRunway() (CIFPRow, error) {
	parts := strings.SplitN(p.r.RestOfLine(), ";", 2)
	f := splitFields(parts[0])
	if f[0] == "" {
		return CIFPRow{}, newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), "runway row without identifier")
	}

	row := CIFPRow{
		Line: p.r.LineNumber(),
		ID:   f[0],
		Lat:  math.NaN(),
		Lon:  math.NaN(),
	}
	if len(f) > 3 {
		row.Elevation, _ = strconv.Atoi(f[3])
	}
	if len(parts) > 1 {
		pos := splitFields(parts[1])
		if len(pos) >= 2 {
			row.Lat = geometry.ParseDMS(pos[0])
			row.Lon = geometry.ParseDMS(pos[1])
		}
	}
	return row, nil
}
