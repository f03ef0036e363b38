package engine

import (
	"encoding/json"
	"testing"

	"github.com/sanonone/stradadb/internal/facade"
)

func newTestViaRoute(t *testing.T) *ViaRoutePlugin {
	t.Helper()
	f, err := facade.NewInternalDataFacade(testNetwork())
	if err != nil {
		t.Fatal(err)
	}
	return NewViaRoutePlugin(f)
}

func runViaRoute(t *testing.T, p *ViaRoutePlugin, params RouteParameters) viaRouteResponse {
	t.Helper()
	var reply Reply
	p.HandleRequest(params, &reply)
	var response viaRouteResponse
	if err := json.Unmarshal(reply.Content, &response); err != nil {
		t.Fatalf("reply is not valid JSON: %v (%q)", err, reply.Content)
	}
	return response
}

func TestViaRouteShortestPath(t *testing.T) {
	p := newTestViaRoute(t)

	response := runViaRoute(t, p, RouteParameters{
		Service: "viaroute",
		Coordinates: []facade.Coordinate{
			{Lat: 45.000, Lon: 7.600}, // node 0
			{Lat: 45.003, Lon: 7.603}, // node 3
		},
	})

	if response.Status != ResultOK {
		t.Fatalf("status = %d (%s)", response.Status, response.StatusMessage)
	}
	// the fast line 0-1-2-3 (weight 30) must win over the slow 1-3 shortcut
	if response.RouteSummary.TotalWeight != 30 {
		t.Errorf("total weight = %v, want 30", response.RouteSummary.TotalWeight)
	}
	if response.RouteSummary.NumberOfNodes != 4 {
		t.Errorf("route has %d nodes, want 4", response.RouteSummary.NumberOfNodes)
	}
	first := response.RouteGeometry[0]
	last := response.RouteGeometry[len(response.RouteGeometry)-1]
	if first != [2]float64{45.000, 7.600} || last != [2]float64{45.003, 7.603} {
		t.Errorf("geometry endpoints = %v .. %v", first, last)
	}
}

func TestViaRouteGuidanceSuppression(t *testing.T) {
	p := newTestViaRoute(t)

	response := runViaRoute(t, p, RouteParameters{
		Coordinates: []facade.Coordinate{
			{Lat: 45.000, Lon: 7.600},
			{Lat: 45.003, Lon: 7.603},
		},
	})

	// node 1 is a decision point: the residential 1-3 shortcut competes
	// with continuing on the secondary; node 2 offers nothing besides the
	// continuation, so it must stay silent
	if len(response.Instructions) != 1 {
		t.Fatalf("instructions = %+v, want exactly one at node 1", response.Instructions)
	}
	instruction := response.Instructions[0]
	if instruction.GeometryIndex != 1 || instruction.Type != "turn" {
		t.Errorf("instruction = %+v, want a turn at geometry index 1", instruction)
	}
}

func TestViaRouteThroughViaPoint(t *testing.T) {
	p := newTestViaRoute(t)

	// forcing the route through node 3 makes it take the slow shortcut back
	response := runViaRoute(t, p, RouteParameters{
		Coordinates: []facade.Coordinate{
			{Lat: 45.000, Lon: 7.600}, // node 0
			{Lat: 45.003, Lon: 7.603}, // node 3
			{Lat: 45.001, Lon: 7.601}, // node 1
		},
	})

	if response.Status != ResultOK {
		t.Fatalf("status = %d", response.Status)
	}
	// 0-1-2-3 (30) plus the cheaper of 3-2-1 (20) and 3-1 (32)
	if response.RouteSummary.TotalWeight != 50 {
		t.Errorf("total weight = %v, want 50", response.RouteSummary.TotalWeight)
	}
	// joint nodes are not duplicated in the geometry
	if response.RouteSummary.NumberOfNodes != 6 {
		t.Errorf("route has %d nodes, want 6 (0 1 2 3 2 1)", response.RouteSummary.NumberOfNodes)
	}
}

func TestViaRouteNoRoute(t *testing.T) {
	p := newTestViaRoute(t)

	response := runViaRoute(t, p, RouteParameters{
		Coordinates: []facade.Coordinate{
			{Lat: 45.000, Lon: 7.600}, // node 0
			{Lat: 46.500, Lon: 8.500}, // the isolated node 4
		},
	})

	if response.Status != ResultNoRoute {
		t.Errorf("status = %d, want %d for the unreachable node", response.Status, ResultNoRoute)
	}
}

func TestViaRouteRejectsSinglePoint(t *testing.T) {
	p := newTestViaRoute(t)
	var reply Reply
	p.HandleRequest(RouteParameters{
		Coordinates: []facade.Coordinate{{Lat: 45, Lon: 7.6}},
	}, &reply)
	if reply.Status != StatusBadRequest {
		t.Errorf("one coordinate should be a bad request, got %d", reply.Status)
	}
}

func TestViaRouteAlternative(t *testing.T) {
	p := newTestViaRoute(t)

	response := runViaRoute(t, p, RouteParameters{
		Alternatives: true,
		Coordinates: []facade.Coordinate{
			{Lat: 45.000, Lon: 7.600},
			{Lat: 45.003, Lon: 7.603},
		},
	})

	// avoiding the primary route's midpoint (node 2) leaves 0-1-3
	if !response.FoundAlternative {
		t.Fatal("the 1-3 shortcut should yield an alternative")
	}
	if response.AlternativeSummary.TotalWeight != 42 {
		t.Errorf("alternative weight = %v, want 42", response.AlternativeSummary.TotalWeight)
	}
	if response.AlternativeSummary.NumberOfNodes != 3 {
		t.Errorf("alternative spans %d nodes, want 3", response.AlternativeSummary.NumberOfNodes)
	}
}

func TestViaRouteLegCache(t *testing.T) {
	p := newTestViaRoute(t)
	params := RouteParameters{
		Coordinates: []facade.Coordinate{
			{Lat: 45.000, Lon: 7.600},
			{Lat: 45.003, Lon: 7.603},
		},
	}

	first := runViaRoute(t, p, params)
	if !p.legCache.Contains(legKey{from: 0, to: 3}) {
		t.Fatal("solved leg should be cached")
	}
	second := runViaRoute(t, p, params)
	if first.RouteSummary != second.RouteSummary {
		t.Errorf("cached answer differs: %+v vs %+v", first.RouteSummary, second.RouteSummary)
	}
}
