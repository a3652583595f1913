package parser

import "strings"

// GlobalAirportsPack marks the entry for X-Plane's bundled airport pack,
// which duplicates the default apt.dat.
const GlobalAirportsPack = "*GLOBAL_AIRPORTS*"

type SceneryEntry struct {
	Path    string
	Enabled bool
	Global  bool
}

// SceneryParser decodes scenery_packs.ini. Entries are reported in file
// order, which is the priority order X-Plane applies.
type SceneryParser struct {
	recordSink[SceneryEntry]
	r *LineReader
}

func NewSceneryParser(r *LineReader) *SceneryParser {
	return &SceneryParser{r: r}
}

func (p *SceneryParser) Load() error {
	if err := p.r.ReadHeader(); err != nil {
		return err
	}
	return p.r.ForEachLine(p.parseLine)
}

func (p *SceneryParser) parseLine() error {
	var entry SceneryEntry
	switch p.r.Word() {
	case "SCENERY_PACK":
		entry.Enabled = true
	case "SCENERY_PACK_DISABLED":
	default:
		// "SCENERY" marker, blank lines and unknown keys
		return nil
	}

	entry.Path = strings.TrimRight(strings.ReplaceAll(p.r.RestOfLine(), "\\", "/"), "/")
	if entry.Path == "" {
		return p.fail(newMalformed(p.r.Name(), p.r.LineNumber(), p.r.Line(), "scenery pack without path"))
	}
	entry.Global = entry.Path == GlobalAirportsPack
	return p.accept(entry)
}
