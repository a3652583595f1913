package world

import (
	"io"
	"math"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbz/navgraph/pkg/geometry"
)

func quietWorld(opts ...Option) *World {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(append([]Option{WithLogger(log)}, opts...)...)
}

func addFix(w *World, region, id string, lat, lon float64) *Fix {
	return w.AddFix(NewFix(id, w.FindOrCreateRegion(region), geometry.Point{Lat: lat, Lon: lon}))
}

func TestFindOrCreateAirportIsIdempotent(t *testing.T) {
	w := quietWorld()

	a, created := w.FindOrCreateAirport("KJFK")
	require.True(t, created)
	b, created := w.FindOrCreateAirport("KJFK")
	assert.False(t, created)
	assert.Same(t, a, b)

	c, _ := w.FindOrCreateAirport(" kj fk")
	assert.Same(t, a, c)
	assert.Same(t, a, w.FindAirportByID("kjfk"))
	assert.Nil(t, w.FindAirportByID("KLGA"))
}

func TestFindOrCreateRegion(t *testing.T) {
	w := quietWorld()
	assert.Same(t, w.FindOrCreateRegion("K1"), w.FindOrCreateRegion("K1"))
	assert.NotSame(t, w.FindOrCreateRegion("K1"), w.FindOrCreateRegion("K2"))
	assert.Nil(t, w.Region("ZZ"))
}

func TestFixLookup(t *testing.T) {
	w := quietWorld()
	k1 := addFix(w, "K1", "ALPHA", 47, -122)
	ed := addFix(w, "ED", "ALPHA", 50, 8)

	assert.Same(t, k1, w.FindFixByRegionAndID("K1", "ALPHA"))
	assert.Same(t, ed, w.FindFixByRegionAndID("ED", "ALPHA"))
	assert.Nil(t, w.FindFixByRegionAndID("LF", "ALPHA"))
	assert.Nil(t, w.FindFixByRegionAndID("K1", "BRAVO"))
	assert.Len(t, w.FixesByID("ALPHA"), 2)
	assert.True(t, k1.IsGlobal())

	// same region and id resolves to the existing instance
	again := addFix(w, "K1", "ALPHA", 10, 10)
	assert.Same(t, k1, again)
	assert.Len(t, w.FixesByID("ALPHA"), 2)
}

func TestUserFixesAreNeverMerged(t *testing.T) {
	w := quietWorld()
	region := w.FindOrCreateRegion(UserRegion)
	for i := 0; i < 2; i++ {
		f := NewFix("HOME", region, geometry.Point{Lat: 1, Lon: 1})
		f.User = &UserFix{Type: UserFixPOI, Name: "Home"}
		w.AddUserFix(f)
	}

	assert.Len(t, w.UserFixes(), 2)
	assert.Len(t, w.FixesByID("HOME"), 2)
	assert.False(t, w.UserFixes()[0].IsGlobal())
	assert.NotSame(t, w.UserFixes()[0], w.UserFixes()[1])
}

func TestFindOrCreateAirwayPerLevel(t *testing.T) {
	w := quietWorld()
	lower := w.FindOrCreateAirway("V1", LevelLower)
	upper := w.FindOrCreateAirway("V1", LevelUpper)

	assert.NotSame(t, lower, upper)
	assert.Same(t, lower, w.FindOrCreateAirway("V1", LevelLower))
	assert.Same(t, upper, w.Airway("V1", LevelUpper))
	assert.Len(t, w.AirwaysByName("V1"), 2)
	assert.Nil(t, w.Airway("V2", LevelLower))
}

func TestConnectivity(t *testing.T) {
	w := quietWorld()
	a := addFix(w, "ZZ", "A", 1, 1)
	b := addFix(w, "ZZ", "B", 2, 2)
	awy := w.FindOrCreateAirway("J1", LevelUpper)

	w.ConnectTo(a, awy, b)

	assert.True(t, w.AreConnected(a, b))
	assert.False(t, w.AreConnected(b, a))
	require.Len(t, w.Connections(a), 1)
	assert.Equal(t, Connection{Via: awy, To: b}, w.Connections(a)[0])
	assert.Empty(t, w.Connections(b))
	assert.Equal(t, 1, w.Stats().Connections)
}

func TestAirportRunways(t *testing.T) {
	w := quietWorld()
	apt, _ := w.FindOrCreateAirport("KSEA")
	assert.False(t, HasLocation(apt))

	r16 := NewRunway("16l", geometry.Point{Lat: 47.46, Lon: -122.31})
	r34 := NewRunway("34R", geometry.Point{Lat: 47.43, Lon: -122.31})
	apt.AddRunway(r16, r34)

	assert.Same(t, r16, apt.Runway("RW16L"))
	assert.Same(t, r34, apt.Runway("34r"))
	assert.Same(t, r34, r16.Opposite())
	assert.Equal(t, "RW16L", r16.ID())
	assert.Equal(t, "KSEA", r16.Airport())

	loc := apt.Location()
	require.True(t, HasLocation(apt))
	assert.InDelta(t, 47.445, loc.Lat, 1e-9)

	apt.SetLocation(geometry.Point{Lat: 47.449, Lon: -122.309})
	assert.InDelta(t, 47.449, apt.Location().Lat, 1e-9)
}

func TestRunwaysMatching(t *testing.T) {
	w := quietWorld()
	apt, _ := w.FindOrCreateAirport("KSEA")
	p := geometry.Point{Lat: 47, Lon: -122}
	apt.AddRunway(NewRunway("16L", p), NewRunway("34R", p))
	apt.AddRunway(NewRunway("16C", p), NewRunway("34C", p))
	apt.AddRunway(NewRunway("16R", p), NewRunway("34L", p))

	names := func(rs []*Runway) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Name())
		}
		return out
	}
	assert.Equal(t, []string{"16L", "16C", "16R"}, names(apt.RunwaysMatching("RW16B")))
	assert.Equal(t, []string{"34C"}, names(apt.RunwaysMatching("RW34C")))
	assert.Len(t, apt.RunwaysMatching("ALL"), 6)
	assert.Empty(t, apt.RunwaysMatching("RW09"))
}

func TestMatchesRunwaySpec(t *testing.T) {
	tests := []struct {
		spec, runway string
		want         bool
	}{
		{"ALL", "09", true},
		{"RW09", "09", true},
		{"RW09", "9", false},
		{"RW09B", "09L", true},
		{"RW09B", "09R", true},
		{"RW09B", "27L", false},
		{"RW27L", "RW27L", true},
		{"RW27L", "27R", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MatchesRunwaySpec(tc.spec, tc.runway), "%s vs %s", tc.spec, tc.runway)
	}
}

func TestTerminalFixes(t *testing.T) {
	w := quietWorld()
	apt, _ := w.FindOrCreateAirport("KSEA")
	local := NewFix("ALIAS", w.FindOrCreateRegion("K1"), geometry.Point{Lat: 47.39, Lon: -122.3})

	assert.Same(t, local, apt.AddTerminalFix(local))
	assert.Same(t, local, apt.AddTerminalFix(NewFix("ALIAS", w.FindOrCreateRegion("K1"), geometry.Point{})))
	assert.Same(t, local, apt.TerminalFix("ALIAS"))
	assert.False(t, local.IsGlobal())
	assert.Nil(t, w.FindFixByRegionAndID("K1", "ALIAS"))
}

func TestCancelLoading(t *testing.T) {
	w := quietWorld()
	assert.False(t, w.ShouldCancelLoading())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.CancelLoading()
	}()
	wg.Wait()

	assert.True(t, w.ShouldCancelLoading())
	w.CancelLoading()
	assert.True(t, w.ShouldCancelLoading())
}

func TestFindAirport(t *testing.T) {
	w := quietWorld(WithMaxSearchResults(3))
	for _, a := range []struct{ id, name string }{
		{"KBFI", "Boeing Field King Co Intl"},
		{"KSEA", "Seattle Tacoma Intl"},
		{"W55", "Kenmore Air Harbor Seattle"},
		{"S60", "Kenmore Air Harbor"},
		{"SEA", "Seattle Seaplane Base"},
		{"KPAE", "Snohomish Co Paine Fld"},
	} {
		apt, _ := w.FindOrCreateAirport(a.id)
		apt.Name = a.name
	}

	ids := func(as []*Airport) []string {
		var out []string
		for _, a := range as {
			out = append(out, a.ID())
		}
		return out
	}

	assert.Equal(t, []string{"KSEA"}, ids(w.FindAirport("ksea")))
	// exact id first, then name matches in id order, capped
	assert.Equal(t, []string{"SEA", "KSEA", "W55"}, ids(w.FindAirport("sea")))
	assert.Equal(t, []string{"S60", "W55"}, ids(w.FindAirport("KENMORE")))
	assert.Empty(t, w.FindAirport("  "))
	assert.Empty(t, w.FindAirport("nowhere"))
}

func TestFindAirportCacheAfterRegister(t *testing.T) {
	w := quietWorld()
	apt, _ := w.FindOrCreateAirport("KSEA")
	apt.Name = "Seattle Tacoma Intl"
	w.RegisterNavNodes()

	first := w.FindAirport("seattle")
	second := w.FindAirport("seattle")
	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, w.searchCache.Len())
}

func TestForEachAirportStops(t *testing.T) {
	w := quietWorld()
	for _, id := range []string{"A", "B", "C"} {
		w.FindOrCreateAirport(id)
	}
	var seen []string
	w.ForEachAirport(func(a *Airport) bool {
		seen = append(seen, a.ID())
		return a.ID() != "B"
	})
	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestStats(t *testing.T) {
	w := quietWorld()
	apt, _ := w.FindOrCreateAirport("KAAA")
	apt.FindOrCreateProcedure(ProcedureSID, "DEP1")
	vor := addFix(w, "ZZ", "VOR", 1, 1)
	vor.VOR = &VOR{KHz: 116800}
	addFix(w, "ZZ", "FIXA", 1, 2)
	w.FindOrCreateAirway("V1", LevelLower)
	w.AddUserFix(NewFix("U", w.FindOrCreateRegion(UserRegion), geometry.Point{Lat: math.NaN(), Lon: 0}))

	s := w.Stats()
	assert.Equal(t, 1, s.Airports)
	assert.Equal(t, 2, s.Fixes)
	assert.Equal(t, 1, s.Navaids)
	assert.Equal(t, 1, s.UserFixes)
	assert.Equal(t, 1, s.Airways)
	assert.Equal(t, 1, s.Procedures)
	assert.Equal(t, 2, s.Regions)
}
