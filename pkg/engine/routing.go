package engine

import (
	"math"

	"github.com/sanonone/stradadb/internal/facade"
	"github.com/sanonone/stradadb/internal/search"
)

// shortestPath is one leg's search result: total weight plus the node
// sequence from source to target inclusive.
type shortestPath struct {
	weight float64
	nodes  []facade.NodeID
}

// bidirectionalDijkstra runs a forward search from source over outgoing
// edges and a backward search from target over incoming edges until their
// frontiers can no longer improve on the best meeting point. The heaps must
// be freshly initialized; the caller owns them exclusively.
//
// exclude, when non-nil, removes nodes from consideration. The alternative
// route probe uses it to steer the second pass away from the primary route.
func bidirectionalDijkstra(df facade.DataFacade, forward, backward *search.QueryHeap,
	source, target facade.NodeID, exclude func(facade.NodeID) bool) (shortestPath, bool) {

	if source == target {
		return shortestPath{nodes: []facade.NodeID{source}}, true
	}

	forward.Insert(source, 0, search.HeapData{Parent: source})
	backward.Insert(target, 0, search.HeapData{Parent: target})

	best := math.Inf(1)
	var middle facade.NodeID

	heapMin := func(q *search.QueryHeap) float64 {
		if q.Empty() {
			return math.Inf(1)
		}
		return q.Min()
	}

	for !forward.Empty() || !backward.Empty() {
		if heapMin(forward)+heapMin(backward) >= best {
			break
		}
		if heapMin(forward) <= heapMin(backward) {
			routingStep(forward, backward, &best, &middle, exclude, df.GetOutEdgeRange, df.GetOutEdge)
		} else {
			routingStep(backward, forward, &best, &middle, exclude, df.GetInEdgeRange, df.GetInEdge)
		}
	}

	if math.IsInf(best, 1) {
		return shortestPath{}, false
	}

	return shortestPath{
		weight: best,
		nodes:  unpackPath(forward, backward, source, target, middle),
	}, true
}

// routingStep settles the minimum node of one direction and relaxes its
// edges. A node settled by both directions is a meeting candidate; the best
// one seen so far is tracked in best/middle.
func routingStep(heap, otherHeap *search.QueryHeap,
	best *float64, middle *facade.NodeID, exclude func(facade.NodeID) bool,
	edgeRange func(facade.NodeID) (facade.EdgeID, facade.EdgeID),
	edgeAt func(facade.EdgeID) facade.Edge) {

	node := heap.DeleteMin()
	weight := heap.GetKey(node)

	if otherHeap.WasInserted(node) {
		if candidate := weight + otherHeap.GetKey(node); candidate < *best {
			*best = candidate
			*middle = node
		}
	}

	begin, end := edgeRange(node)
	for e := begin; e < end; e++ {
		edge := edgeAt(e)
		to := edge.Target
		if exclude != nil && exclude(to) {
			continue
		}
		toWeight := weight + edge.Weight

		switch {
		case !heap.WasInserted(to):
			heap.Insert(to, toWeight, search.HeapData{Parent: node})
		case !heap.WasRemoved(to) && toWeight < heap.GetKey(to):
			heap.DecreaseKey(to, toWeight, search.HeapData{Parent: node})
		}
	}
}

// unpackPath rebuilds source -> ... -> middle -> ... -> target from the
// parent pointers recorded in both heaps.
func unpackPath(forward, backward *search.QueryHeap, source, target, middle facade.NodeID) []facade.NodeID {
	var upper []facade.NodeID
	for at := middle; ; {
		upper = append(upper, at)
		if at == source {
			break
		}
		at = forward.GetData(at).Parent
	}
	// upper is middle -> source, flip it in place
	for i, j := 0, len(upper)-1; i < j; i, j = i+1, j-1 {
		upper[i], upper[j] = upper[j], upper[i]
	}

	if middle != target {
		for at := backward.GetData(middle).Parent; ; {
			upper = append(upper, at)
			if at == target {
				break
			}
			at = backward.GetData(at).Parent
		}
	}
	return upper
}
