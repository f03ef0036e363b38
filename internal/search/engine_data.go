package search

import "sync"

// SearchEngineData bundles the heap storage one query execution needs. Three
// independent forward/backward pairs exist so a single query can advance up
// to three bidirectional passes at once: the plain route, an alternative
// probe and a map-matching style pass.
//
// An instance belongs to exactly one goroutine for the duration of one query.
// Acquire one from the pool, initialize the pairs you need, run the search,
// then Release it.
type SearchEngineData struct {
	ForwardHeap   *QueryHeap
	BackwardHeap  *QueryHeap
	ForwardHeap2  *QueryHeap
	BackwardHeap2 *QueryHeap
	ForwardHeap3  *QueryHeap
	BackwardHeap3 *QueryHeap

	// heap (re)allocations since construction, for reuse diagnostics
	allocations int
}

// initializeOrClear makes *slot ready for a fresh search over numberOfNodes
// nodes: allocate on first use, otherwise clear in place, reallocating only
// when the node count outgrew the existing capacity. Truncating instead of
// growing would corrupt the next search, so growth always reallocates.
func (d *SearchEngineData) initializeOrClear(slot **QueryHeap, numberOfNodes int) {
	if *slot == nil || (*slot).Capacity() < numberOfNodes {
		*slot = NewQueryHeap(numberOfNodes)
		d.allocations++
		return
	}
	(*slot).Clear()
}

// InitializeOrClearFirstThreadLocalStorage prepares the primary
// forward/backward heap pair. Call it once per query before seeding the
// heaps; it is idempotent.
func (d *SearchEngineData) InitializeOrClearFirstThreadLocalStorage(numberOfNodes int) {
	d.initializeOrClear(&d.ForwardHeap, numberOfNodes)
	d.initializeOrClear(&d.BackwardHeap, numberOfNodes)
}

// InitializeOrClearSecondThreadLocalStorage prepares the second heap pair,
// used for alternative route probes running alongside the primary search.
func (d *SearchEngineData) InitializeOrClearSecondThreadLocalStorage(numberOfNodes int) {
	d.initializeOrClear(&d.ForwardHeap2, numberOfNodes)
	d.initializeOrClear(&d.BackwardHeap2, numberOfNodes)
}

// InitializeOrClearThirdThreadLocalStorage prepares the third heap pair.
func (d *SearchEngineData) InitializeOrClearThirdThreadLocalStorage(numberOfNodes int) {
	d.initializeOrClear(&d.ForwardHeap3, numberOfNodes)
	d.initializeOrClear(&d.BackwardHeap3, numberOfNodes)
}

// Allocations returns how many heap allocations this instance has performed.
// A steady value across queries of non-growing size means storage is being
// reused as intended.
func (d *SearchEngineData) Allocations() int { return d.allocations }

// The pool keeps SearchEngineData instances warm across requests handled by
// the same worker, preserving the allocation-avoidance the per-query clear
// is designed around.
var pool = sync.Pool{
	New: func() any { return new(SearchEngineData) },
}

// Acquire returns a SearchEngineData for exclusive use by the calling
// request. The heaps inside may hold stale state from a previous request;
// the InitializeOrClear calls take care of that.
func Acquire() *SearchEngineData {
	return pool.Get().(*SearchEngineData)
}

// Release returns an instance to the pool. The caller must not touch it,
// or any heap obtained from it, afterwards.
func Release(d *SearchEngineData) {
	pool.Put(d)
}
