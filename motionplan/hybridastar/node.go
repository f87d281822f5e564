package hybridastar

import (
	"go.parkplan.dev/planner/spatialmath"
)

// noParent marks the start node.
const noParent = -1

// node is one search state. Nodes live in the searcher's arena and refer to their parent by index.
type node struct {
	cell   Cell
	pose   spatialmath.Pose
	g, h   float64
	parent int
	// motion that reached this node from its parent.
	prim Primitive
	// samples along prim, ending at pose. Empty for the start node.
	samples []spatialmath.Pose
	// number of travel direction switches between the start and this node.
	changes int
}

func (n *node) f() float64 {
	return n.g + n.h
}

// nodeArena owns every node created during one search.
type nodeArena struct {
	nodes []node
}

func (a *nodeArena) reset() {
	clear(a.nodes)
	a.nodes = a.nodes[:0]
}

func (a *nodeArena) add(n node) int {
	a.nodes = append(a.nodes, n)
	return len(a.nodes) - 1
}

func (a *nodeArena) get(i int) *node {
	return &a.nodes[i]
}

// branch returns the indices from the start node to i inclusive.
func (a *nodeArena) branch(i int) []int {
	var idx []int
	for ; i != noParent; i = a.nodes[i].parent {
		idx = append(idx, i)
	}
	for l, r := 0, len(idx)-1; l < r; l, r = l+1, r-1 {
		idx[l], idx[r] = idx[r], idx[l]
	}
	return idx
}
