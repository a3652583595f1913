package loader

import (
	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
	"github.com/curbz/navgraph/pkg/geometry"
)

// legacyRegion holds navaids from files without region columns.
const legacyRegion = "--"

// FixLoader adds earth_fix.dat waypoints. Enroute fixes become global;
// terminal fixes are attached to their airport only.
type FixLoader struct {
	base
}

func NewFixLoader(w *world.World, log logrus.FieldLogger, m *metrics.Metrics) *FixLoader {
	return &FixLoader{base: newBase(w, log, m, metrics.KindFix)}
}

func (l *FixLoader) Load(path string) error {
	return l.openAndLoad(path, func(r *parser.LineReader) recordParser {
		return l.parser(r)
	})
}

func (l *FixLoader) LoadFrom(r *parser.LineReader) error {
	return l.run(l.parser(r), r.Name())
}

func (l *FixLoader) parser(r *parser.LineReader) *parser.FixParser {
	p := parser.NewFixParser(r)
	p.SetAcceptor(l.accept)
	return p
}

func (l *FixLoader) accept(rec parser.FixRecord) error {
	if err := l.checkpoint(); err != nil {
		return err
	}

	fix := world.NewFix(rec.ID, l.world.FindOrCreateRegion(rec.Region), geometry.Point{Lat: rec.Lat, Lon: rec.Lon})
	fix.Name = rec.Name
	if place(&l.base, fix, rec.TerminalArea) != nil {
		l.metrics.Loaded(l.kind)
	}
	return nil
}

// place adds fix to the World when area is the enroute area, or to the
// terminal area of the airport named by area. An existing fix with the
// same region and id is reused and returned instead of fix. nil is
// returned when the owning airport is unknown.
func place(b *base, fix *world.Fix, area string) *world.Fix {
	if area == parser.EnrouteArea || area == "" {
		return b.world.AddFix(fix)
	}

	apt := b.world.FindAirportByID(area)
	if apt == nil {
		b.log.WithField("fix", fix.String()).WithField("airport", area).Debug("terminal fix for unknown airport")
		b.metrics.Rejected(b.kind, metrics.ReasonUnresolved)
		return nil
	}
	if global := b.world.FindFixByRegionAndID(fix.RegionID(), fix.ID()); global != nil {
		fix = global
	}
	return apt.AddTerminalFix(fix)
}
