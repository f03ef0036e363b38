package engine

import (
	"github.com/sanonone/stradadb/internal/facade"
	"github.com/sanonone/stradadb/internal/guidance"
)

// HelloWorldPlugin answers the hello service with a static body. It touches
// no network data; handy as a liveness probe through the full dispatch path.
type HelloWorldPlugin struct{}

func NewHelloWorldPlugin() *HelloWorldPlugin { return &HelloWorldPlugin{} }

func (p *HelloWorldPlugin) GetDescriptor() string { return "hello" }

func (p *HelloWorldPlugin) HandleRequest(params RouteParameters, reply *Reply) {
	writeJSON(reply, StatusOK, map[string]any{
		"title":  "Hello, World!",
		"status": ResultOK,
	})
}

// LocatePlugin answers the locate service: the network node nearest to a
// coordinate and its position.
type LocatePlugin struct {
	queryDataFacade facade.DataFacade
}

func NewLocatePlugin(df facade.DataFacade) *LocatePlugin {
	return &LocatePlugin{queryDataFacade: df}
}

func (p *LocatePlugin) GetDescriptor() string { return "locate" }

func (p *LocatePlugin) HandleRequest(params RouteParameters, reply *Reply) {
	if len(params.Coordinates) != 1 {
		writeMessage(reply, StatusBadRequest, StatusBadRequest, "locate needs exactly one loc parameter")
		return
	}
	node, meters, ok := p.queryDataFacade.NearestNode(params.Coordinates[0])
	if !ok {
		writeMessage(reply, StatusBadRequest, StatusBadRequest, "network is empty")
		return
	}
	at := p.queryDataFacade.GetCoordinateOfNode(node)
	writeJSON(reply, StatusOK, map[string]any{
		"status":            ResultOK,
		"mapped_coordinate": [2]float64{at.Lat, at.Lon},
		"distance_meters":   meters,
	})
}

// NearestPlugin answers the nearest service. On top of what locate returns
// it reports the most significant road departing from the snapped node, so
// callers can tell a motorway junction from a parking aisle.
type NearestPlugin struct {
	queryDataFacade facade.DataFacade
}

func NewNearestPlugin(df facade.DataFacade) *NearestPlugin {
	return &NearestPlugin{queryDataFacade: df}
}

func (p *NearestPlugin) GetDescriptor() string { return "nearest" }

func (p *NearestPlugin) HandleRequest(params RouteParameters, reply *Reply) {
	if len(params.Coordinates) != 1 {
		writeMessage(reply, StatusBadRequest, StatusBadRequest, "nearest needs exactly one loc parameter")
		return
	}
	df := p.queryDataFacade
	node, meters, ok := df.NearestNode(params.Coordinates[0])
	if !ok {
		writeMessage(reply, StatusBadRequest, StatusBadRequest, "network is empty")
		return
	}

	// pick the highest priority road touching the node
	strongest := guidance.DefaultRoadClassification()
	begin, end := df.GetOutEdgeRange(node)
	for e := begin; e < end; e++ {
		if c := df.GetOutEdge(e).Classification; c.GetPriority() < strongest.GetPriority() {
			strongest = c
		}
	}

	at := df.GetCoordinateOfNode(node)
	writeJSON(reply, StatusOK, map[string]any{
		"status":            ResultOK,
		"mapped_coordinate": [2]float64{at.Lat, at.Lon},
		"distance_meters":   meters,
		"road_class":        strongest.String(),
		"road_priority":     strongest.GetPriority(),
	})
}

// TimestampPlugin reports the dataset build timestamp.
type TimestampPlugin struct {
	queryDataFacade facade.DataFacade
}

func NewTimestampPlugin(df facade.DataFacade) *TimestampPlugin {
	return &TimestampPlugin{queryDataFacade: df}
}

func (p *TimestampPlugin) GetDescriptor() string { return "timestamp" }

func (p *TimestampPlugin) HandleRequest(params RouteParameters, reply *Reply) {
	writeJSON(reply, StatusOK, map[string]any{
		"status":    ResultOK,
		"timestamp": p.queryDataFacade.GetTimestamp(),
	})
}
