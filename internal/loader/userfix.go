package loader

import (
	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
	"github.com/curbz/navgraph/pkg/geometry"
)

var userFixTypes = map[parser.UserFixKind]world.UserFixType{
	parser.UserFixVRP:    world.UserFixVRP,
	parser.UserFixPOI:    world.UserFixPOI,
	parser.UserFixMarker: world.UserFixMarker,
}

// UserFixLoader adds user waypoints. Every row becomes a new fix in the
// user region, duplicates included.
type UserFixLoader struct {
	base
}

func NewUserFixLoader(w *world.World, log logrus.FieldLogger, m *metrics.Metrics) *UserFixLoader {
	return &UserFixLoader{base: newBase(w, log, m, metrics.KindUserFix)}
}

func (l *UserFixLoader) Load(path string) error {
	return l.openAndLoad(path, func(r *parser.LineReader) recordParser {
		return l.parser(r)
	})
}

func (l *UserFixLoader) LoadFrom(r *parser.LineReader) error {
	return l.run(l.parser(r), r.Name())
}

func (l *UserFixLoader) parser(r *parser.LineReader) *parser.UserFixParser {
	p := parser.NewUserFixParser(r)
	p.SetAcceptor(l.accept)
	return p
}

func (l *UserFixLoader) accept(rec parser.UserFixRecord) error {
	if err := l.checkpoint(); err != nil {
		return err
	}

	fix := world.NewFix(rec.ID, l.world.FindOrCreateRegion(world.UserRegion), geometry.Point{Lat: rec.Lat, Lon: rec.Lon})
	fix.Name = rec.Name
	fix.User = &world.UserFix{Type: userFixTypes[rec.Kind], Name: rec.Name, Elevation: rec.Elevation}
	l.world.AddUserFix(fix)
	l.metrics.Loaded(l.kind)
	return nil
}
