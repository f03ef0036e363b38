// Package search provides the reusable working storage for graph searches:
// an indexed binary heap keyed by node identity plus the per-query
// SearchEngineData bundle of forward/backward heap pairs.
//
// A heap is owned by exactly one query at a time. There is no locking in
// here: isolation comes from never sharing an instance across goroutines and
// from a full Clear before every reuse.
package search

// NodeID identifies a graph node. It matches the facade's node identity.
type NodeID = uint32

// HeapData is the payload carried with every heap node: the parent on the
// best known path. A search reconstructs its result by walking these.
type HeapData struct {
	Parent NodeID
}

type heapElement struct {
	node   NodeID
	weight float64
	// insertion sequence, breaks weight ties so extraction order is
	// reproducible for identical input sequences
	seq  uint32
	data HeapData
	// position in the heap slice, -1 once the node has been settled
	pos int32
}

// QueryHeap is a min-heap over node weights with auxiliary lookup by node.
// It supports the classic Dijkstra triple: insert, decrease-key and
// delete-min, plus queries on settled nodes.
//
// The zero value is not usable, call NewQueryHeap.
type QueryHeap struct {
	elements []heapElement
	heap     []int32 // indexes into elements, heap-ordered by (weight, seq)
	index    map[NodeID]int32
	capacity int
}

// NewQueryHeap creates a heap sized for searches over numberOfNodes node
// identities. The size is a capacity hint: inserting more nodes still works,
// it just allocates.
func NewQueryHeap(numberOfNodes int) *QueryHeap {
	if numberOfNodes < 1 {
		numberOfNodes = 1
	}
	return &QueryHeap{
		elements: make([]heapElement, 0, numberOfNodes),
		heap:     make([]int32, 0, numberOfNodes),
		index:    make(map[NodeID]int32, numberOfNodes),
		capacity: numberOfNodes,
	}
}

// Capacity returns the node count the heap was sized for.
func (q *QueryHeap) Capacity() int { return q.capacity }

// Size returns the number of pending (not yet settled) nodes.
func (q *QueryHeap) Size() int { return len(q.heap) }

// Empty reports whether no pending nodes remain.
func (q *QueryHeap) Empty() bool { return len(q.heap) == 0 }

// Clear drops every pending and settled node but keeps the backing storage,
// so the next query pays no allocation.
func (q *QueryHeap) Clear() {
	q.elements = q.elements[:0]
	q.heap = q.heap[:0]
	clear(q.index)
}

// Insert adds a node with the given weight and payload. The node must not
// already be in the heap; use WasInserted to check and DecreaseKey to update.
func (q *QueryHeap) Insert(node NodeID, weight float64, data HeapData) {
	handle := int32(len(q.elements))
	q.elements = append(q.elements, heapElement{
		node:   node,
		weight: weight,
		seq:    uint32(handle),
		data:   data,
		pos:    int32(len(q.heap)),
	})
	q.heap = append(q.heap, handle)
	q.index[node] = handle
	q.up(len(q.heap) - 1)
}

// WasInserted reports whether the node was ever inserted during this query,
// whether it is still pending or already settled.
func (q *QueryHeap) WasInserted(node NodeID) bool {
	_, ok := q.index[node]
	return ok
}

// WasRemoved reports whether the node has been settled by DeleteMin.
func (q *QueryHeap) WasRemoved(node NodeID) bool {
	handle, ok := q.index[node]
	return ok && q.elements[handle].pos < 0
}

// GetKey returns the current (or, for settled nodes, final) weight of an
// inserted node.
func (q *QueryHeap) GetKey(node NodeID) float64 {
	return q.elements[q.index[node]].weight
}

// GetData returns a mutable reference to the payload of an inserted node.
func (q *QueryHeap) GetData(node NodeID) *HeapData {
	return &q.elements[q.index[node]].data
}

// DecreaseKey lowers the weight of a pending node and updates its payload.
func (q *QueryHeap) DecreaseKey(node NodeID, weight float64, data HeapData) {
	handle := q.index[node]
	el := &q.elements[handle]
	el.weight = weight
	el.data = data
	q.up(int(el.pos))
}

// Min returns the smallest pending weight. The heap must not be empty.
func (q *QueryHeap) Min() float64 {
	return q.elements[q.heap[0]].weight
}

// MinElement returns the node holding the smallest pending weight.
func (q *QueryHeap) MinElement() NodeID {
	return q.elements[q.heap[0]].node
}

// DeleteMin settles and returns the node with the smallest pending weight.
// Its weight and payload stay queryable through GetKey and GetData.
func (q *QueryHeap) DeleteMin() NodeID {
	top := q.heap[0]
	last := len(q.heap) - 1
	q.heap[0] = q.heap[last]
	q.elements[q.heap[0]].pos = 0
	q.heap = q.heap[:last]
	if last > 0 {
		q.down(0)
	}
	q.elements[top].pos = -1
	return q.elements[top].node
}

func (q *QueryHeap) less(a, b int32) bool {
	ea, eb := &q.elements[a], &q.elements[b]
	if ea.weight != eb.weight {
		return ea.weight < eb.weight
	}
	return ea.seq < eb.seq
}

func (q *QueryHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(q.heap[i], q.heap[parent]) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *QueryHeap) down(i int) {
	n := len(q.heap)
	for {
		smallest := i
		if l := 2*i + 1; l < n && q.less(q.heap[l], q.heap[smallest]) {
			smallest = l
		}
		if r := 2*i + 2; r < n && q.less(q.heap[r], q.heap[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}

func (q *QueryHeap) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.elements[q.heap[i]].pos = int32(i)
	q.elements[q.heap[j]].pos = int32(j)
}
