// Package facade provides read-only access to a preprocessed road network.
//
// Two implementations exist: InternalDataFacade decodes the dataset fully
// into process memory, SharedDataFacade maps an externally produced snapshot
// file and decodes records on access. Both are immutable once constructed
// and safe for unsynchronized concurrent reads, which is what lets query
// handlers share one facade without locks.
package facade

import "github.com/sanonone/stradadb/internal/guidance"

// NodeID identifies a graph node, EdgeID a directed edge. Both index the
// contiguous arrays of the preprocessed dataset.
type (
	NodeID = uint32
	EdgeID = uint32
)

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Edge is one directed adjacency entry. In the outgoing arrays Target is the
// head of the edge; in the incoming arrays it is the tail, so a backward
// search can expand it the same way.
type Edge struct {
	Target         NodeID
	Weight         float64
	Classification guidance.RoadClassification
}

// DataFacade is the read-only network view consumed by query plugins.
//
// Implementations must stay stable for the lifetime of the engine that owns
// them; live dataset swaps happen by constructing a new facade, never by
// mutating one in place.
type DataFacade interface {
	GetNumberOfNodes() int
	GetNumberOfEdges() int

	// GetOutEdgeRange returns the half-open index range of node's outgoing
	// edges inside the outgoing edge array.
	GetOutEdgeRange(node NodeID) (EdgeID, EdgeID)
	GetOutEdge(e EdgeID) Edge

	// GetInEdgeRange and GetInEdge mirror the outgoing accessors over the
	// reverse adjacency, for the backward half of bidirectional searches.
	GetInEdgeRange(node NodeID) (EdgeID, EdgeID)
	GetInEdge(e EdgeID) Edge

	GetCoordinateOfNode(node NodeID) Coordinate

	// GetTimestamp identifies the dataset build, e.g. an extract date.
	GetTimestamp() string

	// NearestNode returns the network node closest to c and its distance in
	// meters. ok is false only for an empty network.
	NearestNode(c Coordinate) (node NodeID, meters float64, ok bool)

	// Close releases any resources backing the facade, such as a mapping.
	Close() error
}
