package loader

import (
	"sync/atomic"
	"time"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/pkg/util"
)

type Metar struct {
	ICAO   string
	Issued time.Time
	Raw    string
}

// metarStore publishes immutable report sets. Readers never block a
// reload and always see a complete set.
type metarStore struct {
	reports atomic.Pointer[map[string]Metar]
}

func (s *metarStore) get(icao string) (Metar, bool) {
	p := s.reports.Load()
	if p == nil {
		return Metar{}, false
	}
	m, ok := (*p)[util.NormalizeID(icao)]
	return m, ok
}

func (s *metarStore) replace(reports map[string]Metar) {
	s.reports.Store(&reports)
}

// snapshot returns a private copy of the current reports.
func (s *metarStore) snapshot() map[string]Metar {
	p := s.reports.Load()
	if p == nil {
		return map[string]Metar{}
	}
	return deepcopy.Copy(*p).(map[string]Metar)
}

// readMetars parses a METAR.rwx file, keeping the newest report per
// station. Reports with equal times are resolved in favour of the later
// line.
func readMetars(r *parser.LineReader, log logrus.FieldLogger, m *metrics.Metrics) (map[string]Metar, error) {
	reports := make(map[string]Metar)
	p := parser.NewMetarParser(r)
	p.SetAcceptor(func(rec parser.MetarRecord) error {
		if prev, ok := reports[rec.ICAO]; ok && prev.Issued.After(rec.Issued) {
			return nil
		}
		reports[rec.ICAO] = Metar{ICAO: rec.ICAO, Issued: rec.Issued, Raw: rec.Raw}
		m.Loaded(metrics.KindMetar)
		return nil
	})
	p.SetErrorHandler(func(err error) error {
		log.WithError(err).Debug("skipping METAR line")
		m.Rejected(metrics.KindMetar, metrics.ReasonMalformed)
		return nil
	})
	if err := p.Load(); err != nil {
		return nil, err
	}
	return reports, nil
}
