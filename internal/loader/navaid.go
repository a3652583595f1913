package loader

import (
	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
	"github.com/curbz/navgraph/pkg/geometry"
)

// NavaidLoader attaches earth_nav.dat radio data to fixes. VORs and NDBs
// are placed like waypoints; DMEs join the fix they are co-located with;
// localizers go to their airport and runway.
type NavaidLoader struct {
	base
}

func NewNavaidLoader(w *world.World, log logrus.FieldLogger, m *metrics.Metrics) *NavaidLoader {
	return &NavaidLoader{base: newBase(w, log, m, metrics.KindNavaid)}
}

func (l *NavaidLoader) Load(path string) error {
	return l.openAndLoad(path, func(r *parser.LineReader) recordParser {
		return l.parser(r)
	})
}

func (l *NavaidLoader) LoadFrom(r *parser.LineReader) error {
	return l.run(l.parser(r), r.Name())
}

func (l *NavaidLoader) parser(r *parser.LineReader) *parser.NavaidParser {
	p := parser.NewNavaidParser(r)
	p.SetAcceptor(l.accept)
	return p
}

func (l *NavaidLoader) accept(rec parser.NavaidRecord) error {
	if err := l.checkpoint(); err != nil {
		return err
	}

	regionID := rec.Region
	if regionID == "" {
		regionID = legacyRegion
	}
	region := l.world.FindOrCreateRegion(regionID)
	loc := geometry.Point{Lat: rec.Lat, Lon: rec.Lon}

	var ok bool
	switch rec.Type {
	case parser.NavaidVOR:
		ok = l.attach(rec, region, loc, func(f *world.Fix) {
			f.VOR = &world.VOR{KHz: rec.KHz, Range: rec.Range, Variation: rec.Bearing, Name: rec.Name}
		})
	case parser.NavaidNDB:
		ok = l.attach(rec, region, loc, func(f *world.Fix) {
			f.NDB = &world.NDB{KHz: rec.KHz, Range: rec.Range, Name: rec.Name}
		})
	case parser.NavaidDME, parser.NavaidDMEOnly:
		ok = l.attach(rec, region, loc, func(f *world.Fix) {
			f.DME = &world.DME{KHz: rec.KHz, Range: rec.Range, Elevation: rec.Elevation}
		})
	case parser.NavaidILS, parser.NavaidLOC:
		ok = l.attachLocalizer(rec, region, loc)
	}

	if ok {
		l.metrics.Loaded(l.kind)
	}
	return nil
}

// attach finds the fix the navaid belongs to, creating it when the
// region and id are new, and lets set fill in the radio data.
func (l *NavaidLoader) attach(rec parser.NavaidRecord, region *world.Region, loc geometry.Point, set func(*world.Fix)) bool {
	fix := world.NewFix(rec.ID, region, loc)
	if rec.Type != parser.NavaidDME && rec.Type != parser.NavaidDMEOnly {
		fix.Name = rec.Name
	}
	placed := place(&l.base, fix, rec.TerminalArea)
	if placed == nil {
		return false
	}
	if placed.Name == "" {
		placed.Name = rec.Name
	}
	set(placed)
	return true
}

func (l *NavaidLoader) attachLocalizer(rec parser.NavaidRecord, region *world.Region, loc geometry.Point) bool {
	apt := l.world.FindAirportByID(rec.TerminalArea)
	if apt == nil {
		l.log.WithField("localizer", rec.ID).WithField("airport", rec.TerminalArea).Debug("localizer for unknown airport")
		l.metrics.Rejected(l.kind, metrics.ReasonUnresolved)
		return false
	}

	fix := world.NewFix(rec.ID, region, loc)
	fix.Name = rec.Name
	fix.ILS = &world.ILS{
		KHz:      rec.KHz,
		Heading:  rec.Bearing,
		Category: parser.ILSCategory(rec.Name),
		Airport:  apt.ID(),
		Runway:   rec.Runway,
		Name:     rec.Name,
	}
	if placed := apt.AddTerminalFix(fix); placed != fix {
		if placed.ILS == nil {
			placed.ILS = fix.ILS
		}
		fix = placed
	}

	if rwy := apt.Runway(rec.Runway); rwy != nil {
		rwy.ILS = fix
	} else {
		l.log.WithField("localizer", rec.ID).WithField("runway", rec.Runway).Debug("localizer runway not found")
	}
	return true
}
