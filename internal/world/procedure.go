package world

import (
	"slices"
	"strings"
)

type ProcedureKind int

const (
	ProcedureSID ProcedureKind = iota + 1
	ProcedureSTAR
	ProcedureApproach
)

func (k ProcedureKind) String() string {
	switch k {
	case ProcedureSID:
		return "SID"
	case ProcedureSTAR:
		return "STAR"
	case ProcedureApproach:
		return "APPROACH"
	}
	return "UNKNOWN"
}

// allTransitions selects the common route shared by every runway or
// transition.
const allTransitions = "ALL"

// Procedure is a SID, STAR or approach. Its legs are grouped into named
// fix sequences:
//
//	SID:      runway transition + common route + enroute transition
//	STAR:     enroute transition + common route + runway transition
//	Approach: approach transition + final approach
//
// Runway transitions and common routes are keyed by CIFP runway spec
// ("RW16L", "RW16B", "ALL") or, for common routes, by "" when the route
// applies unconditionally.
type Procedure struct {
	kind    ProcedureKind
	id      string
	airport string

	runwayTransitions   map[string][]NavNode
	commonRoutes        map[string][]NavNode
	enrouteTransitions  map[string][]NavNode
	approachTransitions map[string][]NavNode
	finalApproach       []NavNode
	missedApproach      []NavNode
}

func newProcedure(kind ProcedureKind, id, airport string) *Procedure {
	return &Procedure{
		kind:                kind,
		id:                  id,
		airport:             airport,
		runwayTransitions:   make(map[string][]NavNode),
		commonRoutes:        make(map[string][]NavNode),
		enrouteTransitions:  make(map[string][]NavNode),
		approachTransitions: make(map[string][]NavNode),
	}
}

func (p *Procedure) Kind() ProcedureKind {
	return p.kind
}

func (p *Procedure) ID() string {
	return p.id
}

func (p *Procedure) Name() string {
	return p.id
}

// Airport returns the id of the owning airport.
func (p *Procedure) Airport() string {
	return p.airport
}

// AddRunwayTransition appends legs to the transition for a runway spec.
func (p *Procedure) AddRunwayTransition(spec string, nodes ...NavNode) {
	p.runwayTransitions[spec] = append(p.runwayTransitions[spec], nodes...)
}

func (p *Procedure) AddCommonRoute(key string, nodes ...NavNode) {
	p.commonRoutes[key] = append(p.commonRoutes[key], nodes...)
}

func (p *Procedure) AddEnrouteTransition(name string, nodes ...NavNode) {
	p.enrouteTransitions[name] = append(p.enrouteTransitions[name], nodes...)
}

func (p *Procedure) AddApproachTransition(name string, nodes ...NavNode) {
	p.approachTransitions[name] = append(p.approachTransitions[name], nodes...)
}

func (p *Procedure) AddFinalApproach(nodes ...NavNode) {
	p.finalApproach = append(p.finalApproach, nodes...)
}

func (p *Procedure) AddMissedApproach(nodes ...NavNode) {
	p.missedApproach = append(p.missedApproach, nodes...)
}

func (p *Procedure) RunwayTransitions() []string {
	return sortedKeys(p.runwayTransitions)
}

func (p *Procedure) CommonRoutes() []string {
	return sortedKeys(p.commonRoutes)
}

func (p *Procedure) EnrouteTransitions() []string {
	return sortedKeys(p.enrouteTransitions)
}

func (p *Procedure) ApproachTransitions() []string {
	return sortedKeys(p.approachTransitions)
}

func (p *Procedure) RunwayTransition(spec string) []NavNode {
	return p.runwayTransitions[spec]
}

func (p *Procedure) CommonRoute(key string) []NavNode {
	return p.commonRoutes[key]
}

func (p *Procedure) EnrouteTransition(name string) []NavNode {
	return p.enrouteTransitions[name]
}

func (p *Procedure) ApproachTransition(name string) []NavNode {
	return p.approachTransitions[name]
}

func (p *Procedure) FinalApproach() []NavNode {
	return p.finalApproach
}

func (p *Procedure) MissedApproach() []NavNode {
	return p.missedApproach
}

// ServesRunway reports whether runway is selected by a runway transition
// or a runway keyed common route. Procedures without runway keys serve
// every runway.
func (p *Procedure) ServesRunway(runway string) bool {
	keyed := false
	for _, m := range []map[string][]NavNode{p.runwayTransitions, p.commonRoutes} {
		for k := range m {
			if !strings.HasPrefix(k, "RW") {
				continue
			}
			keyed = true
			if MatchesRunwaySpec(k, runway) {
				return true
			}
		}
	}
	_, all := p.runwayTransitions[allTransitions]
	return !keyed || all
}

// Sequence returns the ordered nodes flown for the given runway and
// transition. Either may be empty to skip that part. ok is false when a
// named transition does not exist.
func (p *Procedure) Sequence(runway, transition string) (nodes []NavNode, ok bool) {
	var enroute []NavNode
	if transition != "" {
		switch p.kind {
		case ProcedureApproach:
			enroute, ok = p.approachTransitions[transition]
		default:
			enroute, ok = p.enrouteTransitions[transition]
		}
		if !ok {
			return nil, false
		}
	}

	var rwy []NavNode
	if runway != "" {
		rwy = p.lookupRunway(p.runwayTransitions, runway)
	}
	common := p.commonRoute(runway)

	switch p.kind {
	case ProcedureSID:
		nodes = concatNodes(rwy, common, enroute)
	case ProcedureSTAR:
		nodes = concatNodes(enroute, common, rwy)
	case ProcedureApproach:
		nodes = concatNodes(enroute, p.finalApproach)
	}
	return nodes, true
}

func (p *Procedure) commonRoute(runway string) []NavNode {
	if runway != "" {
		if nodes := p.lookupRunway(p.commonRoutes, runway); nodes != nil {
			return nodes
		}
	}
	if nodes, ok := p.commonRoutes[""]; ok {
		return nodes
	}
	return p.commonRoutes[allTransitions]
}

// lookupRunway prefers an exact runway key over wildcards.
func (p *Procedure) lookupRunway(m map[string][]NavNode, runway string) []NavNode {
	runway = strings.TrimPrefix(strings.ToUpper(runway), "RW")
	if nodes, ok := m["RW"+runway]; ok {
		return nodes
	}
	for _, key := range sortedKeys(m) {
		if key != allTransitions && strings.HasPrefix(key, "RW") && MatchesRunwaySpec(key, runway) {
			return m[key]
		}
	}
	if runway != "" {
		if nodes, ok := m[allTransitions]; ok {
			return nodes
		}
	}
	return nil
}

// concatNodes joins parts dropping a node repeated at a part boundary.
func concatNodes(parts ...[]NavNode) []NavNode {
	var out []NavNode
	for _, part := range parts {
		for _, n := range part {
			if len(out) > 0 && out[len(out)-1] == n {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

func sortedKeys(m map[string][]NavNode) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (p *Procedure) String() string {
	return p.kind.String() + " " + p.id + " at " + p.airport
}
