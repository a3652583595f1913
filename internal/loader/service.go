package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
)

// Service runs the full load of a navigation graph and serves the
// independent METAR and flight plan loads next to it.
type Service struct {
	cfg     Config
	log     logrus.FieldLogger
	metrics *metrics.Metrics

	world   atomic.Pointer[world.World]
	loading atomic.Pointer[world.World]
	metar   metarStore
}

// NewService prepares a service for cfg. The World stays empty until
// Load is called.
func NewService(cfg Config, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{cfg: cfg.Resolved(), log: log, metrics: m}
	s.world.Store(s.newWorld())
	return s
}

func (s *Service) newWorld() *world.World {
	cacheSize := s.cfg.SearchCacheSize
	if cacheSize == 0 {
		cacheSize = world.DefaultSearchCacheSize
	}
	if s.cfg.DisableSearchCache {
		cacheSize = 0
	}
	return world.New(
		world.WithLogger(s.log),
		world.WithMaxSearchResults(s.cfg.MaxSearchResults),
		world.WithSearchCache(cacheSize),
	)
}

func (s *Service) Config() Config {
	return s.cfg
}

// World returns the graph of the last completed Load. It is registered
// and read-only, and stays valid while a later Load builds its successor.
// Before the first Load it is an empty World.
func (s *Service) World() *world.World {
	return s.world.Load()
}

func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// CancelLoading stops a running Load at its next record checkpoint. It
// does nothing when no Load is running.
func (s *Service) CancelLoading() {
	if w := s.loading.Load(); w != nil {
		w.CancelLoading()
	}
}

// Load builds a fresh World from the configured files: airports, fixes,
// navaids, airways, procedures, then user fixes. Missing or unreadable
// files are logged, and their errors joined into the result, while the
// remaining stages still run. The new World is published only once it
// is complete. Cancelling ctx, or calling CancelLoading, ends the load
// with world.ErrCancelled and keeps the previous World.
func (s *Service) Load(ctx context.Context) error {
	w := s.newWorld()
	if ctx.Err() != nil {
		w.CancelLoading()
	}
	s.loading.Store(w)
	defer s.loading.CompareAndSwap(w, nil)

	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			if ctx.Err() != nil {
				w.CancelLoading()
			}
		case <-done:
		}
		return nil
	})
	g.Go(func() error {
		defer close(done)
		return s.load(w)
	})
	err := g.Wait()
	if errors.Is(err, world.ErrCancelled) {
		return err
	}
	s.world.Store(w)
	return err
}

func (s *Service) load(w *world.World) error {
	finish := s.metrics.Stage("total")
	var errs []error

	stages := []struct {
		name string
		run  func(*world.World) []error
	}{
		{"airports", s.loadAirports},
		{"fixes", s.single(s.cfg.FixesFile, func(w *world.World, path string) error {
			return NewFixLoader(w, s.log, s.metrics).Load(path)
		})},
		{"navaids", s.single(s.cfg.NavaidsFile, func(w *world.World, path string) error {
			return NewNavaidLoader(w, s.log, s.metrics).Load(path)
		})},
		{"airways", s.single(s.cfg.AirwaysFile, func(w *world.World, path string) error {
			return NewAirwayLoader(w, s.log, s.metrics).Load(path)
		})},
		{"procedures", s.loadProcedures},
		{"user fixes", s.loadUserFixes},
	}

	for _, stage := range stages {
		if w.ShouldCancelLoading() {
			s.log.WithField("stage", stage.name).Info("loading cancelled")
			return world.ErrCancelled
		}
		stop := s.metrics.Stage(stage.name)
		stageErrs := stage.run(w)
		elapsed := stop()

		for _, err := range stageErrs {
			if errors.Is(err, world.ErrCancelled) {
				s.log.WithField("stage", stage.name).Info("loading cancelled")
				return world.ErrCancelled
			}
			s.log.WithError(err).WithField("stage", stage.name).Error("load stage failed")
			errs = append(errs, err)
		}
		s.log.WithField("stage", stage.name).WithField("elapsed", elapsed).Info("load stage finished")
	}

	w.RegisterNavNodes()
	stats := w.Stats()
	s.log.WithFields(logrus.Fields{
		"airports":   stats.Airports,
		"fixes":      stats.Fixes,
		"airways":    stats.Airways,
		"procedures": stats.Procedures,
		"elapsed":    finish(),
	}).Info("navigation data loaded")
	return errors.Join(errs...)
}

func (s *Service) single(path string, load func(*world.World, string) error) func(*world.World) []error {
	return func(w *world.World) []error {
		if err := load(w, path); err != nil {
			return []error{err}
		}
		return nil
	}
}

func (s *Service) loadAirports(w *world.World) []error {
	l := NewAirportLoader(w, s.log, s.metrics)

	var errs []error
	if err := l.Load(s.cfg.AirportsFile); err != nil {
		if errors.Is(err, world.ErrCancelled) {
			return []error{err}
		}
		errs = append(errs, err)
	}
	if s.cfg.SkipCustomScenery {
		return errs
	}

	for _, path := range s.DiscoverSceneries() {
		if err := l.LoadCustom(path); err != nil {
			if errors.Is(err, world.ErrCancelled) {
				return []error{err}
			}
			errs = append(errs, err)
		}
	}
	return errs
}

// loadProcedures loads one CIFP file per airport from the first CIFP
// directory that has one. Most airports have none, which is not an
// error.
func (s *Service) loadProcedures(w *world.World) []error {
	l := NewCIFPLoader(w, s.log, s.metrics)

	var errs []error
	w.ForEachAirport(func(apt *world.Airport) bool {
		if w.ShouldCancelLoading() {
			errs = []error{world.ErrCancelled}
			return false
		}
		path := s.cifpFile(apt.ID())
		if path == "" {
			s.log.WithField("airport", apt.ID()).Debug("no CIFP data")
			return true
		}
		if err := l.Load(apt, path); err != nil {
			if errors.Is(err, world.ErrCancelled) {
				errs = []error{err}
				return false
			}
			errs = append(errs, err)
		}
		return true
	})
	return errs
}

func (s *Service) cifpFile(icao string) string {
	for _, dir := range s.cfg.CIFPDirs {
		path := filepath.Join(dir, icao+".dat")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadUserFixes is optional: a missing file is skipped.
func (s *Service) loadUserFixes(w *world.World) []error {
	if _, err := os.Stat(s.cfg.UserFixesFile); errors.Is(err, os.ErrNotExist) {
		s.log.WithField("file", s.cfg.UserFixesFile).Debug("no user fixes")
		return nil
	}
	if err := NewUserFixLoader(w, s.log, s.metrics).Load(s.cfg.UserFixesFile); err != nil {
		return []error{err}
	}
	return nil
}

// DiscoverSceneries lists the custom scenery apt.dat files in priority
// order.
func (s *Service) DiscoverSceneries() []string {
	return DiscoverSceneries(s.cfg.SceneryIndex, s.cfg.XPlaneRoot, s.log)
}

// ReloadMetar re-reads the METAR file and swaps in the new reports. On
// failure the previous reports stay in place.
func (s *Service) ReloadMetar() error {
	r, err := parser.Open(s.cfg.MetarFile)
	if err != nil {
		return err
	}
	defer r.Close()

	reports, err := readMetars(r, s.log, s.metrics)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", s.cfg.MetarFile, err)
	}
	s.metar.replace(reports)
	s.log.WithField("stations", len(reports)).Info("METAR reports loaded")
	return nil
}

// Metar returns the newest report for a station.
func (s *Service) Metar(icao string) (Metar, bool) {
	return s.metar.get(icao)
}

// Metars returns a copy of all current reports.
func (s *Service) Metars() map[string]Metar {
	return s.metar.snapshot()
}

// LoadFlightPlan reads an X-Plane .fms file and resolves its waypoints
// against the World. The World is not modified.
func (s *Service) LoadFlightPlan(path string) ([]world.NavNode, error) {
	r, err := parser.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	res := &flightPlanResolver{world: s.World()}
	p := parser.NewFlightPlanParser(r)
	p.SetAcceptor(res.accept)
	p.SetErrorHandler(func(err error) error {
		s.log.WithError(err).Warn("skipping flight plan row")
		return nil
	})
	if err := p.Load(); err != nil {
		return nil, fmt.Errorf("failed to load flight plan %s: %w", path, err)
	}
	return res.nodes, nil
}
