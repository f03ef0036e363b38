package facade

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/x448/float16"
	"golang.org/x/sys/unix"

	"github.com/sanonone/stradadb/internal/guidance"
)

// Snapshot format, little endian throughout:
//
//	magic      8 bytes "STRDSNP1"
//	numNodes   uint32
//	numEdges   uint32
//	tsLen      uint16, followed by the timestamp bytes
//	coords     numNodes x (lat float64, lon float64)
//	firstOut   (numNodes+1) x uint32
//	outEdges   numEdges x edge record
//	firstIn    (numNodes+1) x uint32
//	inEdges    numEdges x edge record
//
// An edge record is 8 bytes: target uint32, weight float16, packed road
// classification 2 bytes. Weights are quantized to half precision; the
// resolution loss is far below the noise in any travel time estimate and
// halves the edge section size.
const (
	snapshotMagic   = "STRDSNP1"
	coordRecordSize = 16
	edgeRecordSize  = 8
)

// WriteSnapshot serializes f into the single-file format SharedDataFacade
// maps. Produced by the preprocessing tooling; the query side only reads it.
func WriteSnapshot(w io.Writer, f *InternalDataFacade) error {
	bw := bufio.NewWriter(w)
	numNodes := f.GetNumberOfNodes()
	numEdges := f.GetNumberOfEdges()

	var scratch [16]byte
	bw.WriteString(snapshotMagic)
	binary.LittleEndian.PutUint32(scratch[0:4], uint32(numNodes))
	binary.LittleEndian.PutUint32(scratch[4:8], uint32(numEdges))
	binary.LittleEndian.PutUint16(scratch[8:10], uint16(len(f.timestamp)))
	bw.Write(scratch[:10])
	bw.WriteString(f.timestamp)

	for _, c := range f.coords {
		binary.LittleEndian.PutUint64(scratch[0:8], math.Float64bits(c.Lat))
		binary.LittleEndian.PutUint64(scratch[8:16], math.Float64bits(c.Lon))
		bw.Write(scratch[:16])
	}

	writeOffsets := func(offsets []EdgeID) {
		for _, o := range offsets {
			binary.LittleEndian.PutUint32(scratch[0:4], o)
			bw.Write(scratch[:4])
		}
	}
	writeEdges := func(edges []Edge) {
		for _, e := range edges {
			binary.LittleEndian.PutUint32(scratch[0:4], e.Target)
			binary.LittleEndian.PutUint16(scratch[4:6], float16.Fromfloat32(float32(e.Weight)).Bits())
			packed := e.Classification.Pack()
			scratch[6] = packed[0]
			scratch[7] = packed[1]
			bw.Write(scratch[:8])
		}
	}
	writeOffsets(f.firstOut)
	writeEdges(f.outEdges)
	writeOffsets(f.firstIn)
	writeEdges(f.inEdges)

	return bw.Flush()
}

// SharedDataFacade serves queries straight from a memory-mapped snapshot.
// Records are decoded on access; nothing but the spatial index is
// materialized, so many processes can share one page-cached copy.
type SharedDataFacade struct {
	data   []byte // full snapshot, possibly a mapping
	mapped []byte // non-nil when data must be munmap'd on Close

	numNodes  int
	numEdges  int
	timestamp string

	coordsOff   int
	firstOutOff int
	outEdgesOff int
	firstInOff  int
	inEdgesOff  int

	spatial *spatialIndex
}

// OpenSharedDataFacade maps the snapshot file at path read-only.
func OpenSharedDataFacade(path string) (*SharedDataFacade, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mapping snapshot %s: %w", path, err)
	}

	f, err := NewSharedDataFacade(data)
	if err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	f.mapped = data
	return f, nil
}

// NewSharedDataFacade parses an in-memory snapshot image. The facade keeps
// referencing data, so the caller must not modify it afterwards.
func NewSharedDataFacade(data []byte) (*SharedDataFacade, error) {
	if len(data) < len(snapshotMagic)+10 {
		return nil, fmt.Errorf("truncated header")
	}
	if string(data[:len(snapshotMagic)]) != snapshotMagic {
		return nil, fmt.Errorf("bad magic, not a snapshot file")
	}
	off := len(snapshotMagic)
	numNodes := int(binary.LittleEndian.Uint32(data[off:]))
	numEdges := int(binary.LittleEndian.Uint32(data[off+4:]))
	tsLen := int(binary.LittleEndian.Uint16(data[off+8:]))
	off += 10

	if len(data) < off+tsLen {
		return nil, fmt.Errorf("truncated timestamp")
	}
	f := &SharedDataFacade{
		data:      data,
		numNodes:  numNodes,
		numEdges:  numEdges,
		timestamp: string(data[off : off+tsLen]),
	}
	off += tsLen

	f.coordsOff = off
	off += numNodes * coordRecordSize
	f.firstOutOff = off
	off += (numNodes + 1) * 4
	f.outEdgesOff = off
	off += numEdges * edgeRecordSize
	f.firstInOff = off
	off += (numNodes + 1) * 4
	f.inEdgesOff = off
	off += numEdges * edgeRecordSize

	if len(data) < off {
		return nil, fmt.Errorf("snapshot shorter than its header claims: %d < %d", len(data), off)
	}

	if err := f.validateAdjacency(f.firstOutOff, f.outEdgesOff); err != nil {
		return nil, fmt.Errorf("outgoing adjacency: %w", err)
	}
	if err := f.validateAdjacency(f.firstInOff, f.inEdgesOff); err != nil {
		return nil, fmt.Errorf("incoming adjacency: %w", err)
	}

	f.spatial = buildSpatialIndex(numNodes, f.GetCoordinateOfNode)
	return f, nil
}

// validateAdjacency checks one CSR section of the snapshot the same way
// NewInternalDataFacade checks a decoded dataset: the offset table must be
// monotonic and end at the edge count, and every edge must target an
// existing node. Without this an off snapshot would index-panic at query
// time instead of failing at load.
func (f *SharedDataFacade) validateAdjacency(firstOff, edgesOff int) error {
	prev := EdgeID(0)
	for n := 0; n <= f.numNodes; n++ {
		o := binary.LittleEndian.Uint32(f.data[firstOff+n*4:])
		if o < prev {
			return fmt.Errorf("offset table not monotonic at node %d", n)
		}
		prev = o
	}
	if int(prev) != f.numEdges {
		return fmt.Errorf("offset sentinel %d does not match %d edges", prev, f.numEdges)
	}
	for e := 0; e < f.numEdges; e++ {
		target := binary.LittleEndian.Uint32(f.data[edgesOff+e*edgeRecordSize:])
		if int(target) >= f.numNodes {
			return fmt.Errorf("edge %d targets node %d of %d", e, target, f.numNodes)
		}
	}
	return nil
}

func (f *SharedDataFacade) GetNumberOfNodes() int { return f.numNodes }

func (f *SharedDataFacade) GetNumberOfEdges() int { return f.numEdges }

func (f *SharedDataFacade) offsetAt(base int, i NodeID) EdgeID {
	return binary.LittleEndian.Uint32(f.data[base+int(i)*4:])
}

func (f *SharedDataFacade) edgeAt(base int, e EdgeID) Edge {
	rec := f.data[base+int(e)*edgeRecordSize:]
	return Edge{
		Target: binary.LittleEndian.Uint32(rec[0:4]),
		Weight: float64(float16.Frombits(binary.LittleEndian.Uint16(rec[4:6])).Float32()),
		Classification: guidance.UnpackRoadClassification(
			[2]byte{rec[6], rec[7]},
		),
	}
}

func (f *SharedDataFacade) GetOutEdgeRange(node NodeID) (EdgeID, EdgeID) {
	return f.offsetAt(f.firstOutOff, node), f.offsetAt(f.firstOutOff, node+1)
}

func (f *SharedDataFacade) GetOutEdge(e EdgeID) Edge { return f.edgeAt(f.outEdgesOff, e) }

func (f *SharedDataFacade) GetInEdgeRange(node NodeID) (EdgeID, EdgeID) {
	return f.offsetAt(f.firstInOff, node), f.offsetAt(f.firstInOff, node+1)
}

func (f *SharedDataFacade) GetInEdge(e EdgeID) Edge { return f.edgeAt(f.inEdgesOff, e) }

func (f *SharedDataFacade) GetCoordinateOfNode(node NodeID) Coordinate {
	rec := f.data[f.coordsOff+int(node)*coordRecordSize:]
	return Coordinate{
		Lat: math.Float64frombits(binary.LittleEndian.Uint64(rec[0:8])),
		Lon: math.Float64frombits(binary.LittleEndian.Uint64(rec[8:16])),
	}
}

func (f *SharedDataFacade) GetTimestamp() string { return f.timestamp }

func (f *SharedDataFacade) NearestNode(c Coordinate) (NodeID, float64, bool) {
	return f.spatial.nearest(c, f.GetCoordinateOfNode)
}

// Close unmaps the snapshot. The facade must not be used afterwards.
func (f *SharedDataFacade) Close() error {
	if f.mapped == nil {
		return nil
	}
	mapped := f.mapped
	f.mapped = nil
	f.data = nil
	return unix.Munmap(mapped)
}
