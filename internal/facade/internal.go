package facade

import (
	"encoding/gob"
	"fmt"
	"os"
	"strings"

	"github.com/sanonone/stradadb/internal/guidance"
)

// Path map keys naming the dataset files a facade loads. An internal facade
// reads the nodes/edges/timestamp files, a shared facade only the snapshot.
const (
	PathNodes     = "nodes"
	PathEdges     = "edges"
	PathTimestamp = "timestamp"
	PathSnapshot  = "snapshot"
)

// DatasetEdge is one directed edge as stored on disk. The classification is
// kept in its packed two-byte form so the file layout matches what the
// preprocessing pipeline emits.
type DatasetEdge struct {
	Target         NodeID
	Weight         float64
	Classification [2]byte
}

// Dataset is the decoded on-disk network: node coordinates plus the outgoing
// adjacency in compressed sparse row form (FirstOut has one entry per node
// plus a final sentinel, indexing into Edges).
type Dataset struct {
	Coordinates []Coordinate
	FirstOut    []EdgeID
	Edges       []DatasetEdge
	Timestamp   string
}

type nodesFile struct {
	Coordinates []Coordinate
}

type edgesFile struct {
	FirstOut []EdgeID
	Edges    []DatasetEdge
}

// SaveDataset writes a dataset to the files named in paths. The timestamp
// file is skipped when no path is given for it. This is the writing half
// used by the preprocessing tooling and by tests.
func SaveDataset(paths map[string]string, d Dataset) error {
	if err := writeGob(paths[PathNodes], nodesFile{Coordinates: d.Coordinates}); err != nil {
		return fmt.Errorf("writing nodes file: %w", err)
	}
	if err := writeGob(paths[PathEdges], edgesFile{FirstOut: d.FirstOut, Edges: d.Edges}); err != nil {
		return fmt.Errorf("writing edges file: %w", err)
	}
	if path := paths[PathTimestamp]; path != "" {
		if err := os.WriteFile(path, []byte(d.Timestamp), 0644); err != nil {
			return fmt.Errorf("writing timestamp file: %w", err)
		}
	}
	return nil
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(v)
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}

// InternalDataFacade holds the whole network in process memory. Next to the
// outgoing adjacency it keeps a reverse adjacency, built once at load, so
// the backward half of a bidirectional search expands incoming edges as
// cheaply as the forward half expands outgoing ones.
type InternalDataFacade struct {
	coords    []Coordinate
	firstOut  []EdgeID
	outEdges  []Edge
	firstIn   []EdgeID
	inEdges   []Edge
	timestamp string
	spatial   *spatialIndex
}

// LoadInternalDataFacade reads the dataset files named in paths. Any load or
// validation failure is fatal for the caller; there is no degraded mode.
func LoadInternalDataFacade(paths map[string]string) (*InternalDataFacade, error) {
	var nodes nodesFile
	if err := readGob(paths[PathNodes], &nodes); err != nil {
		return nil, fmt.Errorf("loading nodes file: %w", err)
	}
	var edges edgesFile
	if err := readGob(paths[PathEdges], &edges); err != nil {
		return nil, fmt.Errorf("loading edges file: %w", err)
	}

	timestamp := "n/a"
	if path := paths[PathTimestamp]; path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading timestamp file: %w", err)
		}
		timestamp = strings.TrimSpace(string(raw))
	}

	return NewInternalDataFacade(Dataset{
		Coordinates: nodes.Coordinates,
		FirstOut:    edges.FirstOut,
		Edges:       edges.Edges,
		Timestamp:   timestamp,
	})
}

// NewInternalDataFacade builds a facade from an already decoded dataset.
func NewInternalDataFacade(d Dataset) (*InternalDataFacade, error) {
	numNodes := len(d.Coordinates)
	if len(d.FirstOut) != numNodes+1 {
		return nil, fmt.Errorf("dataset: first-out table has %d entries for %d nodes", len(d.FirstOut), numNodes)
	}
	if numNodes > 0 && int(d.FirstOut[numNodes]) != len(d.Edges) {
		return nil, fmt.Errorf("dataset: first-out sentinel %d does not match %d edges", d.FirstOut[numNodes], len(d.Edges))
	}
	for n := 0; n < numNodes; n++ {
		if d.FirstOut[n] > d.FirstOut[n+1] {
			return nil, fmt.Errorf("dataset: first-out table not monotonic at node %d", n)
		}
	}
	for i, e := range d.Edges {
		if int(e.Target) >= numNodes {
			return nil, fmt.Errorf("dataset: edge %d targets node %d of %d", i, e.Target, numNodes)
		}
	}

	f := &InternalDataFacade{
		coords:    d.Coordinates,
		firstOut:  d.FirstOut,
		outEdges:  make([]Edge, len(d.Edges)),
		timestamp: d.Timestamp,
	}
	for i, e := range d.Edges {
		f.outEdges[i] = Edge{
			Target:         e.Target,
			Weight:         e.Weight,
			Classification: guidance.UnpackRoadClassification(e.Classification),
		}
	}
	f.firstIn, f.inEdges = reverseAdjacency(numNodes, f.firstOut, f.outEdges)
	f.spatial = buildSpatialIndex(numNodes, f.GetCoordinateOfNode)
	return f, nil
}

// reverseAdjacency turns an outgoing CSR into an incoming one. The incoming
// edge records carry the source node in their Target field.
func reverseAdjacency(numNodes int, firstOut []EdgeID, outEdges []Edge) ([]EdgeID, []Edge) {
	firstIn := make([]EdgeID, numNodes+1)
	for _, e := range outEdges {
		firstIn[e.Target+1]++
	}
	for n := 1; n <= numNodes; n++ {
		firstIn[n] += firstIn[n-1]
	}

	inEdges := make([]Edge, len(outEdges))
	fill := make([]EdgeID, numNodes)
	for source := 0; source < numNodes; source++ {
		for e := firstOut[source]; e < firstOut[source+1]; e++ {
			edge := outEdges[e]
			slot := firstIn[edge.Target] + fill[edge.Target]
			fill[edge.Target]++
			inEdges[slot] = Edge{
				Target:         NodeID(source),
				Weight:         edge.Weight,
				Classification: edge.Classification,
			}
		}
	}
	return firstIn, inEdges
}

func (f *InternalDataFacade) GetNumberOfNodes() int { return len(f.coords) }

func (f *InternalDataFacade) GetNumberOfEdges() int { return len(f.outEdges) }

func (f *InternalDataFacade) GetOutEdgeRange(node NodeID) (EdgeID, EdgeID) {
	return f.firstOut[node], f.firstOut[node+1]
}

func (f *InternalDataFacade) GetOutEdge(e EdgeID) Edge { return f.outEdges[e] }

func (f *InternalDataFacade) GetInEdgeRange(node NodeID) (EdgeID, EdgeID) {
	return f.firstIn[node], f.firstIn[node+1]
}

func (f *InternalDataFacade) GetInEdge(e EdgeID) Edge { return f.inEdges[e] }

func (f *InternalDataFacade) GetCoordinateOfNode(node NodeID) Coordinate { return f.coords[node] }

func (f *InternalDataFacade) GetTimestamp() string { return f.timestamp }

func (f *InternalDataFacade) NearestNode(c Coordinate) (NodeID, float64, bool) {
	return f.spatial.nearest(c, f.GetCoordinateOfNode)
}

func (f *InternalDataFacade) Close() error { return nil }
