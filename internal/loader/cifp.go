package loader

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/curbz/navgraph/internal/metrics"
	"github.com/curbz/navgraph/internal/parser"
	"github.com/curbz/navgraph/internal/world"
)

type legRole int

const (
	roleSkip legRole = iota
	roleRunwayTransition
	roleCommonRoute
	roleEnrouteTransition
	roleApproachTransition
	roleFinalApproach
	roleMissedApproach
)

// ARINC 424 route types. Conventional, RNAV and FMS variants of the same
// part share a role; "0" (engine out) legs are not used.
var (
	sidRoles = map[string]legRole{
		"1": roleRunwayTransition, "4": roleRunwayTransition, "F": roleRunwayTransition, "T": roleRunwayTransition,
		"2": roleCommonRoute, "5": roleCommonRoute, "M": roleCommonRoute,
		"3": roleEnrouteTransition, "6": roleEnrouteTransition, "S": roleEnrouteTransition, "V": roleEnrouteTransition,
	}
	starRoles = map[string]legRole{
		"1": roleEnrouteTransition, "4": roleEnrouteTransition, "7": roleEnrouteTransition, "F": roleEnrouteTransition,
		"2": roleCommonRoute, "5": roleCommonRoute, "8": roleCommonRoute, "M": roleCommonRoute,
		"3": roleRunwayTransition, "6": roleRunwayTransition, "9": roleRunwayTransition, "S": roleRunwayTransition,
	}
)

func approachRole(routeType string) legRole {
	switch routeType {
	case "A":
		return roleApproachTransition
	case "Z":
		return roleMissedApproach
	case "":
		return roleSkip
	}
	return roleFinalApproach
}

const allTransitions = "ALL"

var procedureKinds = map[parser.CIFPKind]world.ProcedureKind{
	parser.CIFPSID:      world.ProcedureSID,
	parser.CIFPSTAR:     world.ProcedureSTAR,
	parser.CIFPApproach: world.ProcedureApproach,
}

// CIFPLoader builds the procedures of one airport from its CIFP file.
// A procedure referencing an unknown fix is dropped as a whole; the rest
// of the file still loads.
type CIFPLoader struct {
	base
}

func NewCIFPLoader(w *world.World, log logrus.FieldLogger, m *metrics.Metrics) *CIFPLoader {
	return &CIFPLoader{base: newBase(w, log, m, metrics.KindProcedure)}
}

func (l *CIFPLoader) Load(apt *world.Airport, path string) error {
	return l.openAndLoad(path, func(r *parser.LineReader) recordParser {
		return l.parser(apt, r)
	})
}

func (l *CIFPLoader) LoadFrom(apt *world.Airport, r *parser.LineReader) error {
	return l.run(l.parser(apt, r), r.Name())
}

func (l *CIFPLoader) parser(apt *world.Airport, r *parser.LineReader) *parser.CIFPParser {
	p := parser.NewCIFPParser(r)
	p.SetAcceptor(func(g parser.CIFPGroup) error {
		return l.accept(apt, g)
	})
	return p
}

func (l *CIFPLoader) accept(apt *world.Airport, g parser.CIFPGroup) error {
	if err := l.checkpoint(); err != nil {
		return err
	}

	switch g.Kind {
	case parser.CIFPRunway:
		l.applyRunways(apt, g)
		return nil
	case parser.CIFPSID, parser.CIFPSTAR, parser.CIFPApproach:
	default:
		// PRDAT path point records are not modelled
		return nil
	}

	proc, err := l.assemble(apt, procedureKinds[g.Kind], g)
	if err != nil {
		if errors.Is(err, ErrUnresolvedReference) {
			return l.recordError(err)
		}
		return err
	}
	if proc == nil {
		l.log.WithField("airport", apt.ID()).WithField("procedure", g.ID).Debug("procedure has no usable legs")
		return nil
	}
	l.connect(apt, proc)
	l.metrics.Loaded(l.kind)
	return nil
}

// applyRunways copies threshold elevations from RWY records.
func (l *CIFPLoader) applyRunways(apt *world.Airport, g parser.CIFPGroup) {
	for _, row := range g.Rows {
		rwy := apt.Runway(row.ID)
		if rwy == nil {
			l.log.WithField("airport", apt.ID()).WithField("runway", row.ID).Debug("CIFP runway not in airport data")
			continue
		}
		if row.Elevation != 0 {
			rwy.Elevation = row.Elevation
		}
	}
}

type leg struct {
	role legRole
	key  string
	node world.NavNode
}

// assemble resolves every leg before touching the airport so that a
// procedure with an unresolved fix leaves no trace. A procedure without
// legs is not created.
func (l *CIFPLoader) assemble(apt *world.Airport, kind world.ProcedureKind, g parser.CIFPGroup) (*world.Procedure, error) {
	legs := make([]leg, 0, len(g.Rows))
	missed := false
	for _, row := range g.Rows {
		role := l.roleOf(kind, row.RouteType)
		if role == roleSkip {
			continue
		}
		node, err := l.resolve(apt, g.ID, row)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}

		// legs after the runway of a final approach belong to the missed approach
		if role == roleFinalApproach && missed {
			role = roleMissedApproach
		}
		if role == roleFinalApproach && node.Kind() != world.KindFix {
			missed = true
		}
		legs = append(legs, leg{role: role, key: row.Transition, node: node})
	}
	if len(legs) == 0 {
		return nil, nil
	}

	proc := apt.FindOrCreateProcedure(kind, g.ID)
	for _, lg := range legs {
		switch lg.role {
		case roleRunwayTransition:
			proc.AddRunwayTransition(runwayKey(lg.key), lg.node)
		case roleCommonRoute:
			proc.AddCommonRoute(lg.key, lg.node)
		case roleEnrouteTransition:
			proc.AddEnrouteTransition(lg.key, lg.node)
		case roleApproachTransition:
			proc.AddApproachTransition(lg.key, lg.node)
		case roleFinalApproach:
			proc.AddFinalApproach(lg.node)
		case roleMissedApproach:
			proc.AddMissedApproach(lg.node)
		}
	}
	return proc, nil
}

func (l *CIFPLoader) roleOf(kind world.ProcedureKind, routeType string) legRole {
	switch kind {
	case world.ProcedureSID:
		return sidRoles[routeType]
	case world.ProcedureSTAR:
		return starRoles[routeType]
	}
	return approachRole(routeType)
}

// runwayKey normalises a runway transition key; an empty key applies to
// all runways.
func runwayKey(key string) string {
	if key == "" {
		return allTransitions
	}
	return strings.ToUpper(key)
}

// resolve finds the node for one leg, trying in order: a global fix with
// the same region and id, a terminal fix of the airport, the airport
// itself and, for "RW" ids and "ALL", one of its runways. A wildcard such
// as "RW09B" resolves to the first matching runway end. Legs without a
// fix and runways missing from the airport data yield a nil node.
func (l *CIFPLoader) resolve(apt *world.Airport, proc string, row parser.CIFPRow) (world.NavNode, error) {
	id := row.FixID
	if id == "" {
		return nil, nil
	}
	if f := l.world.FindFixByRegionAndID(row.FixRegion, id); f != nil {
		return f, nil
	}
	if f := apt.TerminalFix(id); f != nil {
		return f, nil
	}
	if id == apt.ID() {
		return apt, nil
	}
	if strings.HasPrefix(id, "RW") || id == allTransitions {
		if rwy := apt.Runway(id); rwy != nil {
			return rwy, nil
		}
		if matches := apt.RunwaysMatching(id); len(matches) > 0 {
			return matches[0], nil
		}
		l.log.WithField("airport", apt.ID()).WithField("procedure", proc).WithField("runway", id).Debug("skipping leg to unknown runway")
		return nil, nil
	}
	return nil, &ResolveError{Airport: apt.ID(), Procedure: proc, Fix: id, Region: row.FixRegion}
}

// connect links the procedure into the route network: SIDs lead from the
// airport to their exit fixes, STARs and approaches from their entry
// fixes to the airport. Only global fixes are linked, so terminal fixes
// never become part of the enroute network.
func (l *CIFPLoader) connect(apt *world.Airport, proc *world.Procedure) {
	var ends []world.NavNode
	pick := func(nodes []world.NavNode, last bool) {
		if len(nodes) == 0 {
			return
		}
		if last {
			ends = append(ends, nodes[len(nodes)-1])
		} else {
			ends = append(ends, nodes[0])
		}
	}

	switch proc.Kind() {
	case world.ProcedureSID:
		for _, name := range proc.EnrouteTransitions() {
			pick(proc.EnrouteTransition(name), true)
		}
		if len(ends) == 0 {
			for _, key := range proc.CommonRoutes() {
				pick(proc.CommonRoute(key), true)
			}
		}
	case world.ProcedureSTAR:
		for _, name := range proc.EnrouteTransitions() {
			pick(proc.EnrouteTransition(name), false)
		}
		if len(ends) == 0 {
			for _, key := range proc.CommonRoutes() {
				pick(proc.CommonRoute(key), false)
			}
		}
	case world.ProcedureApproach:
		for _, name := range proc.ApproachTransitions() {
			pick(proc.ApproachTransition(name), false)
		}
		pick(proc.FinalApproach(), false)
	}

	for _, n := range ends {
		fix, ok := n.(*world.Fix)
		if !ok || !fix.IsGlobal() {
			continue
		}
		from, to := world.NavNode(fix), world.NavNode(apt)
		if proc.Kind() == world.ProcedureSID {
			from, to = to, from
		}
		if !hasEdge(l.world, from, proc, to) {
			l.world.ConnectTo(from, proc, to)
		}
	}
}

func hasEdge(w *world.World, from world.NavNode, via world.Route, to world.NavNode) bool {
	for _, c := range w.Connections(from) {
		if c.Via == via && c.To == to {
			return true
		}
	}
	return false
}
