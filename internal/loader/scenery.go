package loader

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/parser"
)

// sceneryAptFile is the airport file inside a scenery pack.
var sceneryAptFile = filepath.Join("Earth nav data", "apt.dat")

// DiscoverSceneries reads scenery_packs.ini and returns the apt.dat files
// of the enabled packs in priority order. Pack paths are relative to
// root unless absolute. A missing or unreadable index yields no files
// and a warning.
func DiscoverSceneries(index, root string, log logrus.FieldLogger) []string {
	r, err := parser.Open(index)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.WithField("file", index).Warn("scenery index not found, custom scenery not loaded")
		} else {
			log.WithError(err).Warn("cannot open scenery index")
		}
		return nil
	}
	defer r.Close()

	var files []string
	p := parser.NewSceneryParser(r)
	p.SetAcceptor(func(e parser.SceneryEntry) error {
		if !e.Enabled || e.Global {
			return nil
		}
		dir := filepath.FromSlash(e.Path)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		apt := filepath.Join(dir, sceneryAptFile)
		if _, err := os.Stat(apt); err != nil {
			return nil
		}
		files = append(files, apt)
		return nil
	})
	p.SetErrorHandler(func(err error) error {
		log.WithError(err).Warn("skipping scenery entry")
		return nil
	})
	if err := p.Load(); err != nil {
		log.WithError(err).Warn("cannot read scenery index, custom scenery not loaded")
		return nil
	}
	return files
}
