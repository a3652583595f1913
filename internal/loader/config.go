package loader

import (
	"github.com/curbz/navgraph/pkg/util"
)

// X-Plane 12 locations, relative to the X-Plane root.
const (
	defaultAirportsFile  = "Global Scenery/Global Airports/Earth nav data/apt.dat"
	defaultFixesFile     = "Resources/default data/earth_fix.dat"
	defaultNavaidsFile   = "Resources/default data/earth_nav.dat"
	defaultAirwaysFile   = "Resources/default data/earth_awy.dat"
	defaultSceneryIndex  = "Custom Scenery/scenery_packs.ini"
	defaultUserFixesFile = "Custom Data/user_fixes.csv"
	defaultMetarFile     = "METAR.rwx"
)

var defaultCIFPDirs = []string{"Custom Data/CIFP", "Resources/default data/CIFP"}

type config struct {
	NavGraph Config `yaml:"navgraph"`
}

// Config is the navgraph section of config.yaml. Relative paths are
// resolved against XPlaneRoot; empty paths use the X-Plane defaults.
type Config struct {
	XPlaneRoot         string   `yaml:"xplane_root"`
	AirportsFile       string   `yaml:"airports_file"`
	FixesFile          string   `yaml:"fixes_file"`
	NavaidsFile        string   `yaml:"navaids_file"`
	AirwaysFile        string   `yaml:"airways_file"`
	CIFPDirs           []string `yaml:"cifp_dirs"`
	SceneryIndex       string   `yaml:"scenery_index"`
	UserFixesFile      string   `yaml:"user_fixes_file"`
	MetarFile          string   `yaml:"metar_file"`
	SkipCustomScenery  bool     `yaml:"skip_custom_scenery"`
	MaxSearchResults   int      `yaml:"max_search_results"`
	SearchCacheSize    int      `yaml:"search_cache_size"`
	DisableSearchCache bool     `yaml:"disable_search_cache"`
}

// LoadConfig reads the navgraph section from a config file.
func LoadConfig(path string) (Config, error) {
	cfg, err := util.LoadConfig[config](path)
	if err != nil {
		return Config{}, err
	}
	return cfg.NavGraph, nil
}

// Resolved returns a copy with defaults applied and every path made
// absolute or rooted at XPlaneRoot.
func (c Config) Resolved() Config {
	root := c.XPlaneRoot
	r := c
	r.AirportsFile = util.ResolvePath(root, c.AirportsFile, defaultAirportsFile)
	r.FixesFile = util.ResolvePath(root, c.FixesFile, defaultFixesFile)
	r.NavaidsFile = util.ResolvePath(root, c.NavaidsFile, defaultNavaidsFile)
	r.AirwaysFile = util.ResolvePath(root, c.AirwaysFile, defaultAirwaysFile)
	r.SceneryIndex = util.ResolvePath(root, c.SceneryIndex, defaultSceneryIndex)
	r.UserFixesFile = util.ResolvePath(root, c.UserFixesFile, defaultUserFixesFile)
	r.MetarFile = util.ResolvePath(root, c.MetarFile, defaultMetarFile)

	dirs := c.CIFPDirs
	if len(dirs) == 0 {
		dirs = defaultCIFPDirs
	}
	r.CIFPDirs = make([]string, 0, len(dirs))
	for _, d := range dirs {
		r.CIFPDirs = append(r.CIFPDirs, util.ResolvePath(root, d, ""))
	}
	return r
}
