package loader

import (
	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
)

// earth_awy.dat level codes are named HIGH (1) and LOW (2), yet code 1
// segments are the lower airways. The mapping keeps that inversion.
var airwayLevels = map[parser.AltitudeLevel]world.AirwayLevel{
	parser.AltitudeHigh: world.LevelLower,
	parser.AltitudeLow:  world.LevelUpper,
}

// AirwayLoader connects fixes along earth_awy.dat segments. Segments
// with an unknown endpoint are dropped.
type AirwayLoader struct {
	base
}

func NewAirwayLoader(w *world.World, log logrus.FieldLogger, m *metrics.Metrics) *AirwayLoader {
	return &AirwayLoader{base: newBase(w, log, m, metrics.KindAirway)}
}

func (l *AirwayLoader) Load(path string) error {
	return l.openAndLoad(path, func(r *parser.LineReader) recordParser {
		return l.parser(r)
	})
}

func (l *AirwayLoader) LoadFrom(r *parser.LineReader) error {
	return l.run(l.parser(r), r.Name())
}

func (l *AirwayLoader) parser(r *parser.LineReader) *parser.AirwayParser {
	p := parser.NewAirwayParser(r)
	p.SetAcceptor(l.accept)
	return p
}

func (l *AirwayLoader) accept(rec parser.AirwayRecord) error {
	if err := l.checkpoint(); err != nil {
		return err
	}

	begin := l.world.FindFixByRegionAndID(rec.Begin.Region, rec.Begin.ID)
	end := l.world.FindFixByRegionAndID(rec.End.Region, rec.End.ID)
	if begin == nil || end == nil {
		ref := rec.Begin
		if begin != nil {
			ref = rec.End
		}
		l.log.WithError(&ResolveError{Fix: ref.ID, Region: ref.Region}).
			WithField("airway", rec.Name).Debug("dropping airway segment")
		l.metrics.Rejected(l.kind, metrics.ReasonUnresolved)
		return nil
	}

	awy := l.world.FindOrCreateAirway(rec.Name, airwayLevels[rec.Level])
	connect := func(from, to *world.Fix) {
		awy.AddSegment(world.Segment{From: from, To: to, Base: rec.Base, Top: rec.Top})
		l.world.ConnectTo(from, awy, to)
	}

	switch rec.Direction {
	case parser.DirectionForward:
		connect(begin, end)
	case parser.DirectionBackward:
		connect(end, begin)
	default:
		connect(begin, end)
		connect(end, begin)
	}
	l.metrics.Loaded(l.kind)
	return nil
}
