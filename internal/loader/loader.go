package loader

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
)

// base carries what every loader shares: the graph being built, which
// also holds the cancellation flag, a logger and the metrics sink.
type base struct {
	world   *world.World
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	kind    string
}

func newBase(w *world.World, log logrus.FieldLogger, m *metrics.Metrics, kind string) base {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return base{world: w, log: log.WithField("loader", kind), metrics: m, kind: kind}
}

// checkpoint is called between records.
func (b *base) checkpoint() error {
	if b.world.ShouldCancelLoading() {
		return world.ErrCancelled
	}
	return nil
}

// recordError is installed as the parser error handler: a bad record is
// logged and counted, and parsing continues.
func (b *base) recordError(err error) error {
	if cerr := b.checkpoint(); cerr != nil {
		return cerr
	}
	reason := metrics.ReasonMalformed
	if errors.Is(err, ErrUnresolvedReference) {
		reason = metrics.ReasonUnresolved
	}
	b.metrics.Rejected(b.kind, reason)

	entry := b.log.WithError(err)
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		entry = entry.WithFields(logrus.Fields{"file": pe.File, "line": pe.Line, "record": pe.Record})
	}
	entry.Warn("skipping record")
	return nil
}

type recordParser interface {
	SetErrorHandler(func(error) error)
	Load() error
}

// openAndLoad opens path, builds a parser on it and runs it.
func (b *base) openAndLoad(path string, build func(*parser.LineReader) recordParser) error {
	r, err := parser.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return b.run(build(r), path)
}

func (b *base) run(p recordParser, name string) error {
	p.SetErrorHandler(b.recordError)
	if err := p.Load(); err != nil {
		if errors.Is(err, world.ErrCancelled) {
			return err
		}
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	return nil
}
