package loader

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
	"github.com/curbz/navgraph/pkg/geometry"
)

// AirportLoader adds apt.dat airports to the World. The first definition
// of an airport wins: the default dataset is loaded first, then custom
// scenery in priority order. A later definition only contributes runway
// surfaces, for runways whose end names pair up with a known runway.
type AirportLoader struct {
	base
}

func NewAirportLoader(w *world.World, log logrus.FieldLogger, m *metrics.Metrics) *AirportLoader {
	return &AirportLoader{base: newBase(w, log, m, metrics.KindAirport)}
}

// Load reads the default airport dataset.
func (l *AirportLoader) Load(path string) error {
	return l.openAndLoad(path, func(r *parser.LineReader) recordParser {
		return l.parser(r, false)
	})
}

// LoadCustom reads a custom scenery apt.dat.
func (l *AirportLoader) LoadCustom(path string) error {
	return l.openAndLoad(path, func(r *parser.LineReader) recordParser {
		return l.parser(r, true)
	})
}

// LoadFrom reads airports from an open reader.
func (l *AirportLoader) LoadFrom(r *parser.LineReader, custom bool) error {
	return l.run(l.parser(r, custom), r.Name())
}

func (l *AirportLoader) parser(r *parser.LineReader, custom bool) *parser.AirportParser {
	p := parser.NewAirportParser(r)
	p.SetAcceptor(func(rec parser.AirportRecord) error {
		return l.accept(rec, custom)
	})
	return p
}

func (l *AirportLoader) accept(rec parser.AirportRecord, custom bool) error {
	if err := l.checkpoint(); err != nil {
		return err
	}

	apt, created := l.world.FindOrCreateAirport(rec.ID)
	if !created {
		if custom {
			patched := patchSurfaces(apt, rec.Runways)
			l.log.WithField("airport", apt.ID()).WithField("runways", patched).Debug("airport already loaded, surfaces patched")
		}
		l.metrics.Rejected(l.kind, metrics.ReasonDuplicate)
		return nil
	}

	apt.Name = rec.Name
	apt.Elevation = rec.Elevation
	apt.Seaplane = rec.Kind == parser.AirportSeaplane
	apt.Heliport = rec.Kind == parser.AirportHeliport
	apt.Closed = strings.HasPrefix(rec.Name, "[X]")
	apt.Country = rec.Metadata["country"]
	apt.Region = rec.Metadata["region_code"]
	apt.ICAO = rec.Metadata["icao_code"]

	for _, rwy := range rec.Runways {
		apt.AddRunway(newRunway(rwy, 0), newRunway(rwy, 1))
	}
	for _, f := range rec.Frequencies {
		apt.AddFrequency(world.Frequency{Type: f.Code, KHz: f.KHz, Description: f.Description})
	}

	if datum, ok := datumOf(rec.Metadata); ok {
		apt.SetLocation(datum)
	} else if len(rec.Runways) == 0 && len(rec.Helipads) > 0 {
		apt.SetLocation(geometry.Point{Lat: rec.Helipads[0].Lat, Lon: rec.Helipads[0].Lon})
	}

	l.metrics.Loaded(l.kind)
	return nil
}

func newRunway(rec parser.RunwayRecord, i int) *world.Runway {
	end := rec.Ends[i]
	r := world.NewRunway(end.Name, geometry.Point{Lat: end.Lat, Lon: end.Lon})
	r.Width = rec.Width
	r.Surface = rec.Surface
	r.Displacement = end.Displacement
	r.Overrun = end.Overrun
	return r
}

// patchSurfaces copies the surface of each record runway onto the known
// runway with the same pair of end names, in either order.
func patchSurfaces(apt *world.Airport, runways []parser.RunwayRecord) int {
	patched := 0
	for _, rec := range runways {
		a, b := rec.Ends[0].Name, rec.Ends[1].Name
		for _, r := range apt.Runways() {
			opp := r.Opposite()
			if opp == nil || !strings.EqualFold(r.Name(), a) || !strings.EqualFold(opp.Name(), b) {
				continue
			}
			r.Surface = rec.Surface
			opp.Surface = rec.Surface
			patched++
		}
	}
	return patched
}

func datumOf(meta map[string]string) (geometry.Point, bool) {
	lat, err1 := strconv.ParseFloat(meta["datum_lat"], 64)
	lon, err2 := strconv.ParseFloat(meta["datum_lon"], 64)
	if err1 != nil || err2 != nil {
		return geometry.Point{}, false
	}
	p := geometry.Point{Lat: lat, Lon: lon}
	return p, p.IsValid()
}
