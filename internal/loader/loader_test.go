package loader

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbz/navgraph/internal/logging"
	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
	"github.com/curbz/navgraph/pkg/geometry"
)

func lines(s string) *parser.LineReader {
	return parser.NewLineReader(strings.NewReader(s), "test.dat")
}

func testWorld() *world.World {
	return world.New(world.WithLogger(logging.Discard()))
}

// lineFeeder hands out one line per Read and calls onRead before the
// n-th line (1-based) is returned.
type lineFeeder struct {
	lines  []string
	next   int
	onRead func(n int)
}

func (f *lineFeeder) Read(p []byte) (int, error) {
	if f.next >= len(f.lines) {
		return 0, io.EOF
	}
	f.next++
	if f.onRead != nil {
		f.onRead(f.next)
	}
	return copy(p, f.lines[f.next-1]+"\n"), nil
}

func TestFixLoaderCancelledMidFile(t *testing.T) {
	w := testWorld()
	feeder := &lineFeeder{
		lines: []string{
			"I",
			"1100 Version",
			"1.0 1.0 AAAAA ENRT ZZ 0",
			"2.0 2.0 BBBBB ENRT ZZ 0",
			"3.0 3.0 CCCCC ENRT ZZ 0",
		},
		onRead: func(n int) {
			if n == 4 {
				w.CancelLoading()
			}
		},
	}

	l := NewFixLoader(w, logging.Discard(), nil)
	err := l.LoadFrom(parser.NewLineReader(feeder, "earth_fix.dat"))
	assert.ErrorIs(t, err, world.ErrCancelled)

	assert.NotNil(t, w.FindFixByRegionAndID("ZZ", "AAAAA"))
	assert.Nil(t, w.FindFixByRegionAndID("ZZ", "BBBBB"))
	assert.Nil(t, w.FindFixByRegionAndID("ZZ", "CCCCC"))
}

func TestLoadersStopWhenAlreadyCancelled(t *testing.T) {
	w := testWorld()
	w.CancelLoading()

	err := NewAirportLoader(w, logging.Discard(), nil).LoadFrom(lines("I\n1100 v\n1 10 0 0 KAAA Alpha\n99\n"), false)
	assert.ErrorIs(t, err, world.ErrCancelled)
	assert.Nil(t, w.FindAirportByID("KAAA"))

	err = NewUserFixLoader(w, logging.Discard(), nil).LoadFrom(lines("VRP,A,A1,1,1\n"))
	assert.ErrorIs(t, err, world.ErrCancelled)
	assert.Empty(t, w.UserFixes())
}

func TestAirportLoaderFirstDefinitionWins(t *testing.T) {
	w := testWorld()
	m := metrics.New()
	l := NewAirportLoader(w, logging.Discard(), m)

	require.NoError(t, l.LoadFrom(lines(`I
1100 v
1 10 0 0 KAAA Alpha
100 30 1 0 0 0 0 0 09 10.5 20.4 0 0 0 0 0 0 27 10.5 20.6 0 0 0 0 0 0
1 20 0 0 KAAA Alpha Again
100 30 2 0 0 0 0 0 09 10.5 20.4 0 0 0 0 0 0 27 10.5 20.6 0 0 0 0 0 0
99
`), false))

	apt := w.FindAirportByID("KAAA")
	require.NotNil(t, apt)
	assert.Equal(t, "Alpha", apt.Name)
	assert.Equal(t, 10, apt.Elevation)
	// a repeated default definition does not patch anything
	assert.Equal(t, world.SurfaceAsphalt, apt.Runway("09").Surface)
	assert.Len(t, apt.Runways(), 2)

	samples, err := m.Counters()
	require.NoError(t, err)
	assert.Contains(t, samples, metrics.Sample{Name: "navgraph_records_rejected_total", Label: "airport/duplicate", Value: 1})
}

func TestAirportLoaderCustomPatchesSurfaces(t *testing.T) {
	w := testWorld()
	l := NewAirportLoader(w, logging.Discard(), nil)
	require.NoError(t, l.LoadFrom(lines(`I
1100 v
1 10 0 0 KAAA Alpha
100 30 1 0 0 0 0 0 09 10.5 20.4 0 0 0 0 0 0 27 10.5 20.6 0 0 0 0 0 0
100 30 1 0 0 0 0 0 18 10.6 20.5 0 0 0 0 0 0 36 10.4 20.5 0 0 0 0 0 0
`), false))
	require.NoError(t, l.LoadFrom(lines(`I
1100 v
1 10 0 0 KAAA Alpha Custom
100 30 13 0 0 0 0 0 09 10.5 20.4 0 0 0 0 0 0 27 10.5 20.6 0 0 0 0 0 0
100 30 2 0 0 0 0 0 05 10.6 20.5 0 0 0 0 0 0 23 10.4 20.5 0 0 0 0 0 0
`), true))

	apt := w.FindAirportByID("KAAA")
	assert.Equal(t, "Alpha", apt.Name)
	assert.True(t, apt.Runway("27").IsWater())
	assert.Equal(t, world.SurfaceAsphalt, apt.Runway("18").Surface)
	assert.Nil(t, apt.Runway("05"))
}

func TestAirportLoaderAttributes(t *testing.T) {
	w := testWorld()
	l := NewAirportLoader(w, logging.Discard(), nil)
	require.NoError(t, l.LoadFrom(lines(`I
1100 v
1 10 0 0 KAAA [X] Closed Field
1302 country Nowhere
1302 icao_code KAAA
1054 118900 TWR
100 30 1 0 0 0 0 0 09 10.0 20.0 0 0 0 0 0 0 27 10.0 21.0 0 0 0 0 0 0
16 0 0 0 W01 Lake
17 5 0 0 H01 Pad
102 H1 30.0 40.0 90.0 20.0 20.0 1 0 0 0.25 0
99
`), false))

	kaaa := w.FindAirportByID("KAAA")
	require.NotNil(t, kaaa)
	assert.True(t, kaaa.Closed)
	assert.Equal(t, "Nowhere", kaaa.Country)
	assert.Equal(t, "KAAA", kaaa.ICAO)
	require.Len(t, kaaa.Frequencies(), 1)
	assert.Equal(t, 118900, kaaa.Frequencies()[0].KHz)
	// no datum: center of the runway bounds
	assert.InDelta(t, 20.5, kaaa.Location().Lon, 1e-9)

	assert.True(t, w.FindAirportByID("W01").Seaplane)
	assert.False(t, w.FindAirportByID("W01").Location().IsValid())

	heli := w.FindAirportByID("H01")
	assert.True(t, heli.Heliport)
	assert.InDelta(t, 30.0, heli.Location().Lat, 1e-9)
}

func TestFixLoaderTerminalFixes(t *testing.T) {
	w := testWorld()
	apt, _ := w.FindOrCreateAirport("KAAA")

	require.NoError(t, NewFixLoader(w, logging.Discard(), nil).LoadFrom(lines(`I
1100 v
1.0 1.0 SHARE ENRT ZZ 0
1.0 1.0 SHARE KAAA ZZ 0
1.1 1.1 LOCAL KAAA ZZ 0
1.1 1.1 LOCAL ENRT ZZ 0
1.2 1.2 LOST KXXX ZZ 0
`)))

	share := w.FindFixByRegionAndID("ZZ", "SHARE")
	require.NotNil(t, share)
	assert.Same(t, share, apt.TerminalFix("SHARE"))

	// a terminal fix loaded before its enroute twin stays a separate instance
	local := apt.TerminalFix("LOCAL")
	require.NotNil(t, local)
	assert.False(t, local.IsGlobal())
	assert.NotSame(t, local, w.FindFixByRegionAndID("ZZ", "LOCAL"))

	assert.Empty(t, w.FixesByID("LOST"))
}

func TestNavaidLoaderLegacyRegion(t *testing.T) {
	w := testWorld()
	require.NoError(t, NewNavaidLoader(w, logging.Discard(), nil).LoadFrom(lines(
		"I\n810 Version\n2 47.6 -122.3 0 362 50 0.0 BF NOLLA NDB\n4 47.4 -122.3 356 11090 18 180.5 ISNQ KSEA 16L ILS-cat-I\n")))

	ndb := w.FindFixByRegionAndID(legacyRegion, "BF")
	require.NotNil(t, ndb)
	require.NotNil(t, ndb.NDB)
	assert.Equal(t, 362, ndb.NDB.KHz)
	assert.True(t, ndb.IsNavaid())

	// the localizer's airport is unknown
	assert.Empty(t, w.FixesByID("ISNQ"))
}

func TestAirwayLoaderUnresolvedEndpoint(t *testing.T) {
	w := testWorld()
	a := w.AddFix(world.NewFix("AAAAA", w.FindOrCreateRegion("ZZ"), geometry.Point{Lat: 1, Lon: 1}))
	m := metrics.New()

	require.NoError(t, NewAirwayLoader(w, logging.Discard(), m).LoadFrom(lines(
		"I\n1100 v\nAAAAA ZZ 11 BBBBB ZZ 11 N 1 0 180 V1\n")))

	assert.Empty(t, w.Connections(a))
	assert.Nil(t, w.Airway("V1", world.LevelLower))

	samples, err := m.Counters()
	require.NoError(t, err)
	assert.Contains(t, samples, metrics.Sample{Name: "navgraph_records_rejected_total", Label: "airway/unresolved", Value: 1})
}

func cifpAirport(t *testing.T) (*world.World, *world.Airport) {
	t.Helper()
	w := testWorld()
	apt, _ := w.FindOrCreateAirport("KAAA")
	apt.AddRunway(
		world.NewRunway("09", geometry.Point{Lat: 10, Lon: 20}),
		world.NewRunway("27", geometry.Point{Lat: 10, Lon: 20.1}),
	)
	w.AddFix(world.NewFix("ENTRY", w.FindOrCreateRegion("ZZ"), geometry.Point{Lat: 10.2, Lon: 20.2}))
	apt.AddTerminalFix(world.NewFix("FINAL", w.FindOrCreateRegion("ZZ"), geometry.Point{Lat: 10, Lon: 19.9}))
	return w, apt
}

func TestCIFPLoaderUnknownRunwaySkipsLeg(t *testing.T) {
	w, apt := cifpAirport(t)
	require.NoError(t, NewCIFPLoader(w, logging.Discard(), nil).LoadFrom(apt, lines(
		"STAR:010,2,ARR1, ,ENTRY,ZZ,E,A,E, ,,IF,\nSTAR:020,2,ARR1, ,RW04,ZZ,P,G,E, ,,TF,\nSTAR:030,2,ARR1, ,FINAL,ZZ,P,C,E, ,,TF,\n")))

	star := apt.Procedure(world.ProcedureSTAR, "ARR1")
	require.NotNil(t, star)
	assert.Equal(t, []string{"ENTRY", "FINAL"}, ids(star.CommonRoute("")))
}

func TestCIFPLoaderUnresolvedFixDropsProcedure(t *testing.T) {
	w, apt := cifpAirport(t)
	require.NoError(t, NewCIFPLoader(w, logging.Discard(), nil).LoadFrom(apt, lines(
		"SID:010,1,DEP1,RW09,RW09,ZZ,P,G, ,,,VA,\nSID:020,2,DEP1, ,GHOST,ZZ,E,A,E, ,,TF,\nSID:010,2,DEP2, ,ENTRY,ZZ,E,A,E, ,,TF,\n")))

	assert.Nil(t, apt.Procedure(world.ProcedureSID, "DEP1"))
	require.NotNil(t, apt.Procedure(world.ProcedureSID, "DEP2"))
	assert.True(t, w.AreConnected(apt, w.FindFixByRegionAndID("ZZ", "ENTRY")))
}

func TestCIFPLoaderTerminalFixesStayOffTheNetwork(t *testing.T) {
	w, apt := cifpAirport(t)
	l := NewCIFPLoader(w, logging.Discard(), nil)
	input := "APPCH:010,A,R09,FINAL,FINAL,ZZ,P,C,E, ,,IF,\nAPPCH:020,R,R09, ,RW09,ZZ,P,G,E, ,,TF,\n"
	require.NoError(t, l.LoadFrom(apt, lines(input)))

	appr := apt.Procedure(world.ProcedureApproach, "R09")
	require.NotNil(t, appr)
	assert.Empty(t, w.Connections(apt.TerminalFix("FINAL")))

	// loading the same file again adds no duplicate edges
	entry := w.FindFixByRegionAndID("ZZ", "ENTRY")
	require.NoError(t, l.LoadFrom(apt, lines("STAR:010,2,ARR1, ,ENTRY,ZZ,E,A,E, ,,IF,\n")))
	require.NoError(t, l.LoadFrom(apt, lines("STAR:010,2,ARR1, ,ENTRY,ZZ,E,A,E, ,,IF,\n")))
	assert.Len(t, w.Connections(entry), 1)
}

func TestCIFPLoaderAirportSelfReference(t *testing.T) {
	w, apt := cifpAirport(t)
	require.NoError(t, NewCIFPLoader(w, logging.Discard(), nil).LoadFrom(apt, lines(
		"SID:010,,DEP3,ALL,KAAA,ZZ,P,A, ,,,VA,\nSID:010,1,DEP4, ,KAAA,ZZ,P,A, ,,,VA,\n")))

	// route type "" has no SID role
	assert.Nil(t, apt.Procedure(world.ProcedureSID, "DEP3"))

	sid := apt.Procedure(world.ProcedureSID, "DEP4")
	require.NotNil(t, sid)
	assert.Equal(t, []string{"ALL"}, sid.RunwayTransitions())
	assert.Same(t, apt, sid.RunwayTransition("ALL")[0])
}

func TestCIFPLoaderRunwayWildcards(t *testing.T) {
	w := testWorld()
	apt, _ := w.FindOrCreateAirport("KAAA")
	apt.AddRunway(
		world.NewRunway("09L", geometry.Point{Lat: 10, Lon: 20}),
		world.NewRunway("27R", geometry.Point{Lat: 10, Lon: 20.1}),
	)
	apt.AddRunway(
		world.NewRunway("09R", geometry.Point{Lat: 9.9, Lon: 20}),
		world.NewRunway("27L", geometry.Point{Lat: 9.9, Lon: 20.1}),
	)

	require.NoError(t, NewCIFPLoader(w, logging.Discard(), nil).LoadFrom(apt, lines(
		"SID:010,1,DEP5,RW09B,RW09B,ZZ,P,G, ,,,VA,\nSID:010,1,DEP6,ALL,ALL,ZZ,P,G, ,,,VA,\nSID:010,1,DEP7,RW18B,RW18B,ZZ,P,G, ,,,VA,\n")))

	dep5 := apt.Procedure(world.ProcedureSID, "DEP5")
	require.NotNil(t, dep5)
	assert.Equal(t, []string{"RW09B"}, dep5.RunwayTransitions())
	assert.Same(t, apt.Runway("09L"), dep5.RunwayTransition("RW09B")[0])

	dep6 := apt.Procedure(world.ProcedureSID, "DEP6")
	require.NotNil(t, dep6)
	assert.Same(t, apt.Runways()[0], dep6.RunwayTransition("ALL")[0])

	// no runway 18 at all: the only leg is skipped
	assert.Nil(t, apt.Procedure(world.ProcedureSID, "DEP7"))
}

func TestUserFixLoaderKeepsDuplicates(t *testing.T) {
	w := testWorld()
	require.NoError(t, NewUserFixLoader(w, logging.Discard(), nil).LoadFrom(lines(
		"VRP,Tower,TWR1,10.5,20.5,300\nPOI,Tower,TWR1,10.5,20.5\nbad,row\n")))

	fixes := w.UserFixes()
	require.Len(t, fixes, 2)
	assert.NotSame(t, fixes[0], fixes[1])
	for _, f := range fixes {
		assert.Equal(t, world.UserRegion, f.RegionID())
		assert.True(t, f.IsUserFix())
	}
	assert.Equal(t, world.UserFixVRP, fixes[0].User.Type)
	assert.Equal(t, 300, fixes[0].User.Elevation)
	assert.Equal(t, world.UserFixPOI, fixes[1].User.Type)
}

func TestDiscoverSceneries(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, xplaneTree)
	index := filepath.Join(root, "Custom Scenery", "scenery_packs.ini")

	got := DiscoverSceneries(index, root, logging.Discard())
	assert.Equal(t, []string{
		filepath.Join(root, "Custom Scenery", "KAAA Custom", "Earth nav data", "apt.dat"),
	}, got)

	assert.Nil(t, DiscoverSceneries(filepath.Join(root, "missing.ini"), root, logging.Discard()))
}

func TestReadMetarsKeepsNewest(t *testing.T) {
	input := `2024/03/11 15:50
KAAA 111550Z 28012KT 9999 SCT030 21/10 Q1014

2024/03/11 14:50
KAAA 111450Z 27010KT 9999 FEW030 20/10 Q1015
KBBB 111450Z 00000KT CAVOK 18/08 Q1016
`
	reports, err := readMetars(lines(input), logging.Discard(), nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Contains(t, reports["KAAA"].Raw, "28012KT")
	assert.Equal(t, 14, reports["KBBB"].Issued.Hour())
}

func TestConfigResolved(t *testing.T) {
	cfg := Config{
		XPlaneRoot:  "/xp",
		FixesFile:   "/data/earth_fix.dat",
		NavaidsFile: "nav/earth_nav.dat",
	}.Resolved()

	assert.Equal(t, filepath.Join("/xp", "Global Scenery", "Global Airports", "Earth nav data", "apt.dat"), cfg.AirportsFile)
	assert.Equal(t, "/data/earth_fix.dat", cfg.FixesFile)
	assert.Equal(t, filepath.Join("/xp", "nav", "earth_nav.dat"), cfg.NavaidsFile)
	assert.Equal(t, []string{
		filepath.Join("/xp", "Custom Data", "CIFP"),
		filepath.Join("/xp", "Resources", "default data", "CIFP"),
	}, cfg.CIFPDirs)
	assert.Equal(t, filepath.Join("/xp", "METAR.rwx"), cfg.MetarFile)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`navgraph:
  xplane_root: /opt/X-Plane 12
  cifp_dirs: [CIFP]
  skip_custom_scenery: true
  max_search_results: 5
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/X-Plane 12", cfg.XPlaneRoot)
	assert.Equal(t, []string{"CIFP"}, cfg.CIFPDirs)
	assert.True(t, cfg.SkipCustomScenery)
	assert.Equal(t, 5, cfg.MaxSearchResults)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolveError(t *testing.T) {
	err := error(&ResolveError{Airport: "KAAA", Procedure: "DEP1", Fix: "GHOST", Region: "ZZ"})
	assert.True(t, errors.Is(err, ErrUnresolvedReference))
	assert.Equal(t, "unresolved reference: fix GHOST/ZZ in DEP1 at KAAA", err.Error())
	assert.Equal(t, "unresolved reference: fix GHOST/ZZ", (&ResolveError{Fix: "GHOST", Region: "ZZ"}).Error())
}
