package facade

import "github.com/tidwall/btree"

// spatialCandidates bounds how many Z-order neighbors are refined with real
// distances per lookup direction. The curve occasionally places two nearby
// points far apart, so we look at a generous window rather than just one.
const spatialCandidates = 48

type nodeItem struct {
	key  uint64
	node NodeID
}

// spatialIndex orders all network nodes along the Z-order curve in a B-tree.
// A nearest lookup walks the tree outwards from the query position in both
// curve directions and refines the candidates by haversine distance.
type spatialIndex struct {
	tree *btree.BTreeG[nodeItem]
}

func nodeItemLess(a, b nodeItem) bool {
	if a.key != b.key {
		return a.key < b.key
	}
	return a.node < b.node
}

// buildSpatialIndex indexes numNodes nodes whose positions come from coord.
func buildSpatialIndex(numNodes int, coord func(NodeID) Coordinate) *spatialIndex {
	tree := btree.NewBTreeG(nodeItemLess)
	for n := 0; n < numNodes; n++ {
		id := NodeID(n)
		tree.Set(nodeItem{key: mortonCode(coord(id)), node: id})
	}
	return &spatialIndex{tree: tree}
}

// nearest returns the node closest to c and its distance in meters.
func (s *spatialIndex) nearest(c Coordinate, coord func(NodeID) Coordinate) (NodeID, float64, bool) {
	if s.tree.Len() == 0 {
		return 0, 0, false
	}

	pivot := nodeItem{key: mortonCode(c)}
	var best NodeID
	bestDist := -1.0
	consider := func(item nodeItem) {
		d := Haversine(c, coord(item.node))
		if bestDist < 0 || d < bestDist {
			best, bestDist = item.node, d
		}
	}

	count := 0
	s.tree.Ascend(pivot, func(item nodeItem) bool {
		consider(item)
		count++
		return count < spatialCandidates
	})
	count = 0
	s.tree.Descend(pivot, func(item nodeItem) bool {
		consider(item)
		count++
		return count < spatialCandidates
	})

	return best, bestDist, true
}
