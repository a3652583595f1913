package world

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/curbz/navgraph/pkg/util"
)

// FindAirport searches by keyword. An airport whose id equals the
// keyword comes first, followed by airports whose name contains the
// keyword ignoring case, in id order. At most the configured maximum
// number of results is returned.
func (w *World) FindAirport(keyword string) []*Airport {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}

	if w.searchCache != nil {
		if hit, ok := w.searchCache.Get(keyword); ok {
			return hit
		}
	}

	var result []*Airport
	exact := w.FindAirportByID(keyword)
	if exact != nil {
		result = append(result, exact)
	}

	fold := cases.Fold()
	needle := fold.String(keyword)
	var named []*Airport
	for _, a := range w.airportOrder {
		if a == exact || a.Name == "" {
			continue
		}
		if strings.Contains(fold.String(a.Name), needle) {
			named = append(named, a)
		}
	}
	slices.SortFunc(named, func(x, y *Airport) int { return strings.Compare(x.id, y.id) })
	result = append(result, named...)

	if len(result) > w.maxResults {
		result = result[:w.maxResults]
	}
	if w.searchCache != nil {
		w.searchCache.Add(keyword, result)
	}
	return result
}

// FindNavNodes resolves an identifier to airports, global fixes and user
// fixes, in that order.
func (w *World) FindNavNodes(id string) []NavNode {
	var out []NavNode
	if a := w.FindAirportByID(id); a != nil {
		out = append(out, a)
	}
	for _, f := range w.fixes[util.NormalizeID(id)] {
		out = append(out, f)
	}
	return out
}
