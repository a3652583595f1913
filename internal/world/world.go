package world

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/pkg/util"
)

const (
	DefaultMaxSearchResults = 15
	DefaultSearchCacheSize  = 256
)

// World is the navigation graph. It is populated by the loaders on a
// single goroutine; after RegisterNavNodes it is read-only and safe for
// concurrent readers. Only the cancellation flag may be touched from
// other goroutines while a load is running.
type World struct {
	log logrus.FieldLogger

	regions      map[string]*Region
	airports     map[string]*Airport
	airportOrder []*Airport
	fixes        map[string][]*Fix
	userFixes    []*Fix
	airways      map[string][]*Airway
	connections  map[NavNode][]Connection
	edgeCount    int

	grid       map[gridKey][]NavNode
	registered bool

	maxResults  int
	cacheSize   int
	searchCache *lru.Cache[string, []*Airport]

	cancel atomic.Bool
}

type Option func(*World)

func WithLogger(log logrus.FieldLogger) Option {
	return func(w *World) {
		w.log = log
	}
}

// WithMaxSearchResults caps FindAirport results. Values below 1 keep the
// default.
func WithMaxSearchResults(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.maxResults = n
		}
	}
}

// WithSearchCache sets the number of FindAirport results memoised once
// the world is read-only. 0 disables the cache.
func WithSearchCache(size int) Option {
	return func(w *World) {
		w.cacheSize = size
	}
}

func New(opts ...Option) *World {
	w := &World{
		log:         logrus.StandardLogger(),
		regions:     make(map[string]*Region),
		airports:    make(map[string]*Airport),
		fixes:       make(map[string][]*Fix),
		airways:     make(map[string][]*Airway),
		connections: make(map[NavNode][]Connection),
		grid:        make(map[gridKey][]NavNode),
		maxResults:  DefaultMaxSearchResults,
		cacheSize:   DefaultSearchCacheSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FindOrCreateRegion returns the region with the given id, creating it on
// first reference.
func (w *World) FindOrCreateRegion(id string) *Region {
	if r, ok := w.regions[id]; ok {
		return r
	}
	r := &Region{id: id}
	w.regions[id] = r
	return r
}

func (w *World) Region(id string) *Region {
	return w.regions[id]
}

// FindOrCreateAirport returns the airport with the given id and whether
// it was created by this call.
func (w *World) FindOrCreateAirport(id string) (*Airport, bool) {
	id = util.NormalizeID(id)
	if a, ok := w.airports[id]; ok {
		return a, false
	}
	a := newAirport(id)
	w.airports[id] = a
	w.airportOrder = append(w.airportOrder, a)
	return a, true
}

// FindAirportByID looks up an airport ignoring case and whitespace.
func (w *World) FindAirportByID(id string) *Airport {
	return w.airports[util.NormalizeID(id)]
}

// ForEachAirport calls fn for every airport in load order until fn
// returns false.
func (w *World) ForEachAirport(fn func(*Airport) bool) {
	for _, a := range w.airportOrder {
		if !fn(a) {
			return
		}
	}
}

// AddFix adds a global fix. If a fix with the same region and id is
// already known, that instance is returned and f is discarded.
func (w *World) AddFix(f *Fix) *Fix {
	if existing := w.FindFixByRegionAndID(f.RegionID(), f.id); existing != nil {
		return existing
	}
	f.global = true
	w.fixes[f.id] = append(w.fixes[f.id], f)
	return f
}

// AddUserFix adds a user-supplied fix. User fixes are never merged, even
// with identical ids.
func (w *World) AddUserFix(f *Fix) {
	f.global = false
	w.userFixes = append(w.userFixes, f)
	w.fixes[f.id] = append(w.fixes[f.id], f)
}

func (w *World) UserFixes() []*Fix {
	return w.userFixes
}

// FindFixByRegionAndID returns nil when no such fix exists.
func (w *World) FindFixByRegionAndID(region, id string) *Fix {
	for _, f := range w.fixes[id] {
		if f.RegionID() == region {
			return f
		}
	}
	return nil
}

// FixesByID returns every global and user fix named id.
func (w *World) FixesByID(id string) []*Fix {
	return w.fixes[id]
}

// FindOrCreateAirway returns the airway with the given name and level.
func (w *World) FindOrCreateAirway(name string, level AirwayLevel) *Airway {
	for _, a := range w.airways[name] {
		if a.level == level {
			return a
		}
	}
	a := &Airway{name: name, level: level}
	w.airways[name] = append(w.airways[name], a)
	return a
}

func (w *World) Airway(name string, level AirwayLevel) *Airway {
	for _, a := range w.airways[name] {
		if a.level == level {
			return a
		}
	}
	return nil
}

func (w *World) AirwaysByName(name string) []*Airway {
	return w.airways[name]
}

// ConnectTo adds a directed edge from -> to.
func (w *World) ConnectTo(from NavNode, via Route, to NavNode) {
	w.connections[from] = append(w.connections[from], Connection{Via: via, To: to})
	w.edgeCount++
}

func (w *World) Connections(n NavNode) []Connection {
	return w.connections[n]
}

func (w *World) AreConnected(from, to NavNode) bool {
	for _, c := range w.connections[from] {
		if c.To == to {
			return true
		}
	}
	return false
}

// CancelLoading asks running loaders to stop at their next checkpoint.
// The flag is never cleared.
func (w *World) CancelLoading() {
	w.cancel.Store(true)
}

func (w *World) ShouldCancelLoading() bool {
	return w.cancel.Load()
}

type Stats struct {
	Regions     int
	Airports    int
	Fixes       int
	Navaids     int
	UserFixes   int
	Airways     int
	Procedures  int
	Connections int
	GridCells   int
}

func (w *World) Stats() Stats {
	s := Stats{
		Regions:     len(w.regions),
		Airports:    len(w.airports),
		UserFixes:   len(w.userFixes),
		Connections: w.edgeCount,
		GridCells:   len(w.grid),
	}
	for _, fixes := range w.fixes {
		for _, f := range fixes {
			if !f.global {
				continue
			}
			s.Fixes++
			if f.IsNavaid() {
				s.Navaids++
			}
		}
	}
	for _, airways := range w.airways {
		s.Airways += len(airways)
	}
	for _, a := range w.airportOrder {
		s.Procedures += a.procedureCount()
	}
	return s
}
