package hybridastar

import (
	"container/heap"
)

// openEntry is a queued reference to a node. The keys are copied so that a later improvement of the
// same cell does not reorder entries already in the heap; superseded entries are skipped when popped.
type openEntry struct {
	f, h    float64
	changes int
	seq     int
	node    int
}

// less orders by f, then lower h, then fewer direction switches, then insertion order.
func (e openEntry) less(o openEntry) bool {
	if e.f != o.f {
		return e.f < o.f
	}
	if e.h != o.h {
		return e.h < o.h
	}
	if e.changes != o.changes {
		return e.changes < o.changes
	}
	return e.seq < o.seq
}

type entryHeap []openEntry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(openEntry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// openSet is a min priority queue of nodes that tolerates stale duplicates.
type openSet struct {
	entries entryHeap
	seq     int
}

func (os *openSet) reset() {
	os.entries = os.entries[:0]
	os.seq = 0
}

func (os *openSet) Len() int {
	return os.entries.Len()
}

func (os *openSet) Push(idx int, n *node) {
	heap.Push(&os.entries, openEntry{f: n.f(), h: n.h, changes: n.changes, seq: os.seq, node: idx})
	os.seq++
}

// Pop removes and returns the smallest entry. ok is false when the set is empty.
func (os *openSet) Pop() (openEntry, bool) {
	if os.entries.Len() == 0 {
		return openEntry{}, false
	}
	return heap.Pop(&os.entries).(openEntry), true
}
