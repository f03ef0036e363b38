package facade

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/sanonone/stradadb/internal/guidance"
)

// testDataset builds a small network of four nodes on a line with a shortcut:
//
//	0 -- 1 -- 2 -- 3
//	      \________/
//
// All roads are bidirectional, so every undirected link appears as two
// directed edges.
func testDataset() Dataset {
	secondary := guidance.NewRoadClassification(false, false, false, guidance.PrioritySecondary, 2).Pack()
	residential := guidance.NewRoadClassification(false, false, false, guidance.PriorityMainResidential, 1).Pack()

	return Dataset{
		Coordinates: []Coordinate{
			{Lat: 45.000, Lon: 7.600},
			{Lat: 45.001, Lon: 7.601},
			{Lat: 45.002, Lon: 7.602},
			{Lat: 45.003, Lon: 7.603},
		},
		FirstOut: []EdgeID{0, 1, 4, 6, 8},
		Edges: []DatasetEdge{
			{Target: 1, Weight: 10, Classification: secondary},   // 0 -> 1
			{Target: 0, Weight: 10, Classification: secondary},   // 1 -> 0
			{Target: 2, Weight: 10, Classification: secondary},   // 1 -> 2
			{Target: 3, Weight: 32, Classification: residential}, // 1 -> 3
			{Target: 1, Weight: 10, Classification: secondary},   // 2 -> 1
			{Target: 3, Weight: 10, Classification: secondary},   // 2 -> 3
			{Target: 2, Weight: 10, Classification: secondary},   // 3 -> 2
			{Target: 1, Weight: 32, Classification: residential}, // 3 -> 1
		},
		Timestamp: "2026-08-28T00:00:00Z",
	}
}

func TestInternalFacadeSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paths := map[string]string{
		PathNodes:     filepath.Join(dir, "net.nodes"),
		PathEdges:     filepath.Join(dir, "net.edges"),
		PathTimestamp: filepath.Join(dir, "net.timestamp"),
	}

	if err := SaveDataset(paths, testDataset()); err != nil {
		t.Fatal(err)
	}
	f, err := LoadInternalDataFacade(paths)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.GetNumberOfNodes() != 4 || f.GetNumberOfEdges() != 8 {
		t.Fatalf("loaded %d nodes / %d edges, want 4 / 8", f.GetNumberOfNodes(), f.GetNumberOfEdges())
	}
	if got := f.GetTimestamp(); got != "2026-08-28T00:00:00Z" {
		t.Errorf("timestamp = %q", got)
	}

	begin, end := f.GetOutEdgeRange(1)
	if end-begin != 3 {
		t.Fatalf("node 1 has %d outgoing edges, want 3", end-begin)
	}
	edge := f.GetOutEdge(begin + 2) // 1 -> 3
	if edge.Target != 3 || edge.Weight != 32 {
		t.Errorf("edge 1->3 = %+v", edge)
	}
	if edge.Classification.GetClass() != guidance.PriorityMainResidential {
		t.Errorf("classification survived as %v", edge.Classification)
	}
}

func TestInternalFacadeMissingTimestampDefaults(t *testing.T) {
	dir := t.TempDir()
	paths := map[string]string{
		PathNodes: filepath.Join(dir, "net.nodes"),
		PathEdges: filepath.Join(dir, "net.edges"),
	}
	if err := SaveDataset(paths, testDataset()); err != nil {
		t.Fatal(err)
	}
	f, err := LoadInternalDataFacade(paths)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.GetTimestamp(); got != "n/a" {
		t.Errorf("timestamp without file = %q, want n/a", got)
	}
}

func TestInternalFacadeRejectsCorruptDataset(t *testing.T) {
	d := testDataset()
	d.FirstOut = d.FirstOut[:3]
	if _, err := NewInternalDataFacade(d); err == nil {
		t.Error("short first-out table must fail construction")
	}

	d = testDataset()
	d.Edges[0].Target = 99
	if _, err := NewInternalDataFacade(d); err == nil {
		t.Error("out-of-range edge target must fail construction")
	}
}

func TestReverseAdjacency(t *testing.T) {
	f, err := NewInternalDataFacade(testDataset())
	if err != nil {
		t.Fatal(err)
	}

	// node 3 is reachable from 1 (weight 32) and from 2 (weight 10)
	begin, end := f.GetInEdgeRange(3)
	if end-begin != 2 {
		t.Fatalf("node 3 has %d incoming edges, want 2", end-begin)
	}
	sources := map[NodeID]float64{}
	for e := begin; e < end; e++ {
		in := f.GetInEdge(e)
		sources[in.Target] = in.Weight
	}
	if sources[1] != 32 || sources[2] != 10 {
		t.Errorf("incoming edges of node 3 = %v", sources)
	}
}

func TestSharedFacadeMatchesInternal(t *testing.T) {
	internal, err := NewInternalDataFacade(testDataset())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, internal); err != nil {
		t.Fatal(err)
	}
	shared, err := NewSharedDataFacade(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	defer shared.Close()

	if shared.GetNumberOfNodes() != internal.GetNumberOfNodes() ||
		shared.GetNumberOfEdges() != internal.GetNumberOfEdges() ||
		shared.GetTimestamp() != internal.GetTimestamp() {
		t.Fatal("snapshot header does not match the source facade")
	}

	for n := NodeID(0); int(n) < internal.GetNumberOfNodes(); n++ {
		ic, sc := internal.GetCoordinateOfNode(n), shared.GetCoordinateOfNode(n)
		if ic != sc {
			t.Fatalf("node %d coordinate %v != %v", n, ic, sc)
		}

		ib, ie := internal.GetOutEdgeRange(n)
		sb, se := shared.GetOutEdgeRange(n)
		if ib != sb || ie != se {
			t.Fatalf("node %d edge range differs", n)
		}
		for e := ib; e < ie; e++ {
			iEdge, sEdge := internal.GetOutEdge(e), shared.GetOutEdge(e)
			if iEdge.Target != sEdge.Target {
				t.Fatalf("edge %d target %d != %d", e, iEdge.Target, sEdge.Target)
			}
			if !iEdge.Classification.Equal(sEdge.Classification) {
				t.Fatalf("edge %d classification %v != %v", e, iEdge.Classification, sEdge.Classification)
			}
			// weights go through half precision in the snapshot
			if math.Abs(iEdge.Weight-sEdge.Weight) > 0.01*iEdge.Weight {
				t.Fatalf("edge %d weight %v != %v", e, iEdge.Weight, sEdge.Weight)
			}
		}
	}
}

func TestSharedFacadeRejectsCorruptAdjacency(t *testing.T) {
	internal, err := NewInternalDataFacade(testDataset())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, internal); err != nil {
		t.Fatal(err)
	}

	numNodes := internal.GetNumberOfNodes()
	firstOutOff := len(snapshotMagic) + 10 + len(internal.GetTimestamp()) + numNodes*coordRecordSize
	outEdgesOff := firstOutOff + (numNodes+1)*4

	// a well-sized snapshot whose first edge targets a node that does not
	// exist must fail at load, not panic at query time
	image := append([]byte(nil), buf.Bytes()...)
	binary.LittleEndian.PutUint32(image[outEdgesOff:], 99)
	if _, err := NewSharedDataFacade(image); err == nil {
		t.Error("out-of-range edge target must fail to parse")
	}

	// same for a decreasing offset table
	image = append([]byte(nil), buf.Bytes()...)
	binary.LittleEndian.PutUint32(image[firstOutOff+4:], 7)
	if _, err := NewSharedDataFacade(image); err == nil {
		t.Error("non-monotonic offset table must fail to parse")
	}
}

func TestSharedFacadeRejectsGarbage(t *testing.T) {
	if _, err := NewSharedDataFacade([]byte("not a snapshot at all")); err == nil {
		t.Error("bad magic must fail")
	}
	if _, err := NewSharedDataFacade([]byte("STRDSNP1")); err == nil {
		t.Error("truncated header must fail")
	}
}

func TestNearestNode(t *testing.T) {
	f, err := NewInternalDataFacade(testDataset())
	if err != nil {
		t.Fatal(err)
	}

	// right on top of node 2
	node, meters, ok := f.NearestNode(Coordinate{Lat: 45.002, Lon: 7.602})
	if !ok || node != 2 {
		t.Fatalf("NearestNode = %d ok=%v, want node 2", node, ok)
	}
	if meters > 1 {
		t.Errorf("distance to an exact hit = %v m", meters)
	}

	// slightly off node 0
	node, _, ok = f.NearestNode(Coordinate{Lat: 44.9999, Lon: 7.5999})
	if !ok || node != 0 {
		t.Errorf("NearestNode = %d ok=%v, want node 0", node, ok)
	}
}

func TestHaversine(t *testing.T) {
	// one degree of latitude is roughly 111 km
	a := Coordinate{Lat: 45, Lon: 7}
	b := Coordinate{Lat: 46, Lon: 7}
	if d := Haversine(a, b); math.Abs(d-111195) > 500 {
		t.Errorf("1 degree latitude = %v m, want about 111 km", d)
	}
	if d := Haversine(a, a); d != 0 {
		t.Errorf("zero distance = %v", d)
	}
}
