package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sanonone/stradadb/internal/facade"
	"github.com/sanonone/stradadb/internal/guidance"
	"github.com/sanonone/stradadb/internal/search"
	"github.com/sanonone/stradadb/pkg/metrics"
)

// routeCacheSize bounds the per-plugin LRU of solved legs. A leg is keyed by
// its snapped node pair, so repeated queries between popular endpoints skip
// the search entirely.
const routeCacheSize = 1024

type legKey struct {
	from, to facade.NodeID
}

// ViaRoutePlugin answers the viaroute service: shortest path through two or
// more via points, with per-turn guidance derived from road classifications.
// This is the one built-in plugin exercising the full stack: snapping, the
// bidirectional heap search and the obviousness heuristics.
type ViaRoutePlugin struct {
	queryDataFacade facade.DataFacade
	legCache        *lru.Cache[legKey, shortestPath]
}

func NewViaRoutePlugin(df facade.DataFacade) *ViaRoutePlugin {
	cache, err := lru.New[legKey, shortestPath](routeCacheSize)
	if err != nil {
		// only reachable with a non-positive size constant
		panic(err)
	}
	return &ViaRoutePlugin{queryDataFacade: df, legCache: cache}
}

func (p *ViaRoutePlugin) GetDescriptor() string { return "viaroute" }

type routeSummary struct {
	TotalWeight   float64 `json:"total_weight"`
	TotalDistance float64 `json:"total_distance_meters"`
	NumberOfNodes int     `json:"number_of_nodes"`
}

type routeInstruction struct {
	// index into route_geometry of the decision point
	GeometryIndex int        `json:"geometry_index"`
	Position      [2]float64 `json:"position"`
	// "fork" when the continuation and the alternative are within one
	// priority step of each other, "turn" otherwise
	Type string `json:"type"`
}

type viaRouteResponse struct {
	Status             int                `json:"status"`
	StatusMessage      string             `json:"status_message"`
	RouteSummary       routeSummary       `json:"route_summary"`
	ViaPoints          [][2]float64       `json:"via_points"`
	RouteGeometry      [][2]float64       `json:"route_geometry"`
	Instructions       []routeInstruction `json:"route_instructions"`
	FoundAlternative   bool               `json:"found_alternative"`
	AlternativeSummary *routeSummary      `json:"alternative_summary,omitempty"`
}

func (p *ViaRoutePlugin) HandleRequest(params RouteParameters, reply *Reply) {
	df := p.queryDataFacade
	if len(params.Coordinates) < 2 {
		writeMessage(reply, StatusBadRequest, StatusBadRequest, "viaroute needs at least two loc parameters")
		return
	}

	// snap every via point to the network
	snapped := make([]facade.NodeID, len(params.Coordinates))
	viaPoints := make([][2]float64, len(params.Coordinates))
	for i, c := range params.Coordinates {
		node, _, ok := df.NearestNode(c)
		if !ok {
			writeMessage(reply, StatusBadRequest, StatusBadRequest, "cannot snap coordinate to the network")
			return
		}
		snapped[i] = node
		at := df.GetCoordinateOfNode(node)
		viaPoints[i] = [2]float64{at.Lat, at.Lon}
	}

	engineData := search.Acquire()
	defer search.Release(engineData)
	numberOfNodes := df.GetNumberOfNodes()

	var route []facade.NodeID
	var totalWeight float64
	for leg := 0; leg+1 < len(snapped); leg++ {
		path, found := p.solveLeg(engineData, numberOfNodes, snapped[leg], snapped[leg+1])
		if !found {
			metrics.NoRouteTotal.Inc()
			writeMessage(reply, StatusOK, ResultNoRoute, "cannot find route between points")
			return
		}
		totalWeight += path.weight
		if leg == 0 {
			route = append(route, path.nodes...)
		} else {
			// drop the joint node shared with the previous leg
			route = append(route, path.nodes[1:]...)
		}
	}

	response := viaRouteResponse{
		Status:        ResultOK,
		StatusMessage: "found route between points",
		ViaPoints:     viaPoints,
		RouteGeometry: make([][2]float64, len(route)),
		Instructions:  buildInstructions(df, route),
	}
	totalDistance := 0.0
	for i, node := range route {
		at := df.GetCoordinateOfNode(node)
		response.RouteGeometry[i] = [2]float64{at.Lat, at.Lon}
		if i > 0 {
			totalDistance += facade.Haversine(df.GetCoordinateOfNode(route[i-1]), at)
		}
	}
	response.RouteSummary = routeSummary{
		TotalWeight:   totalWeight,
		TotalDistance: totalDistance,
		NumberOfNodes: len(route),
	}

	if params.Alternatives && len(snapped) == 2 {
		if alt, ok := p.alternativeRoute(engineData, numberOfNodes, route); ok {
			response.FoundAlternative = true
			response.AlternativeSummary = &alt
		}
	}

	metrics.RoutesServed.Inc()
	writeJSON(reply, StatusOK, response)
}

// solveLeg answers one source/target pair, preferring the leg cache over a
// fresh search. Cached paths are shared read-only slices.
func (p *ViaRoutePlugin) solveLeg(engineData *search.SearchEngineData, numberOfNodes int, from, to facade.NodeID) (shortestPath, bool) {
	key := legKey{from: from, to: to}
	if path, ok := p.legCache.Get(key); ok {
		return path, true
	}

	engineData.InitializeOrClearFirstThreadLocalStorage(numberOfNodes)
	path, found := bidirectionalDijkstra(p.queryDataFacade, engineData.ForwardHeap, engineData.BackwardHeap, from, to, nil)
	if found {
		p.legCache.Add(key, path)
	}
	return path, found
}

// alternativeRoute probes for a second route by rerunning the search on the
// second heap pair with the primary route's midpoint forbidden.
func (p *ViaRoutePlugin) alternativeRoute(engineData *search.SearchEngineData, numberOfNodes int, primary []facade.NodeID) (routeSummary, bool) {
	if len(primary) < 3 {
		return routeSummary{}, false
	}
	avoid := primary[len(primary)/2]
	source, target := primary[0], primary[len(primary)-1]
	if avoid == source || avoid == target {
		return routeSummary{}, false
	}

	engineData.InitializeOrClearSecondThreadLocalStorage(numberOfNodes)
	path, found := bidirectionalDijkstra(p.queryDataFacade, engineData.ForwardHeap2, engineData.BackwardHeap2,
		source, target, func(n facade.NodeID) bool { return n == avoid })
	if !found {
		return routeSummary{}, false
	}

	df := p.queryDataFacade
	distance := 0.0
	for i := 1; i < len(path.nodes); i++ {
		distance += facade.Haversine(df.GetCoordinateOfNode(path.nodes[i-1]), df.GetCoordinateOfNode(path.nodes[i]))
	}
	return routeSummary{
		TotalWeight:   path.weight,
		TotalDistance: distance,
		NumberOfNodes: len(path.nodes),
	}, true
}

// findOutEdge locates the directed edge from -> to in the adjacency. The
// first match wins; parallel edges with different classes are rare enough
// not to matter for guidance.
func findOutEdge(df facade.DataFacade, from, to facade.NodeID) (facade.Edge, bool) {
	begin, end := df.GetOutEdgeRange(from)
	for e := begin; e < end; e++ {
		if edge := df.GetOutEdge(e); edge.Target == to {
			return edge, true
		}
	}
	return facade.Edge{}, false
}

// buildInstructions walks the route and emits an instruction at every
// interior node where some departing road keeps the continuation from being
// the obvious choice. Obvious continuations produce nothing, which is the
// whole point of the road classification heuristics.
func buildInstructions(df facade.DataFacade, route []facade.NodeID) []routeInstruction {
	instructions := []routeInstruction{}
	for i := 1; i+1 < len(route); i++ {
		inEdge, ok := findOutEdge(df, route[i-1], route[i])
		if !ok {
			continue
		}
		contEdge, ok := findOutEdge(df, route[i], route[i+1])
		if !ok {
			continue
		}

		needsDecision := false
		isFork := false
		begin, end := df.GetOutEdgeRange(route[i])
		for e := begin; e < end; e++ {
			other := df.GetOutEdge(e)
			if other.Target == route[i+1] || other.Target == route[i-1] {
				continue
			}
			if guidance.ObviousByRoadClass(inEdge.Classification, contEdge.Classification, other.Classification) {
				continue
			}
			needsDecision = true
			if guidance.CanBeSeenAsFork(contEdge.Classification, other.Classification) {
				isFork = true
			}
		}
		if !needsDecision {
			continue
		}

		at := df.GetCoordinateOfNode(route[i])
		kind := "turn"
		if isFork {
			kind = "fork"
		}
		instructions = append(instructions, routeInstruction{
			GeometryIndex: i,
			Position:      [2]float64{at.Lat, at.Lon},
			Type:          kind,
		})
	}
	return instructions
}
