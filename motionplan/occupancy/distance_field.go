package occupancy

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// neighborhood lists the 8-connected offsets in a fixed order so expansion is deterministic.
var neighborhood = [8][2]int{
	{1, 0}, {0, 1}, {-1, 0}, {0, -1},
	{1, 1}, {-1, 1}, {-1, -1}, {1, -1},
}

// freeSpace exposes the free cells of a Grid as an implicit weighted graph. Node ids are flattened
// cell indices; edges join 8-connected free cells and weigh the distance between their centres.
type freeSpace struct {
	g *Grid
}

func (fs freeSpace) From(id int64) graph.Nodes {
	ix, iy := fs.g.unflatten(int(id))
	if fs.g.Occupied(ix, iy) {
		return graph.Empty
	}
	nodes := make([]graph.Node, 0, len(neighborhood))
	for _, d := range neighborhood {
		nx, ny := ix+d[0], iy+d[1]
		if fs.g.Occupied(nx, ny) {
			continue
		}
		nodes = append(nodes, simple.Node(fs.g.flatten(nx, ny)))
	}
	return iterator.NewOrderedNodes(nodes)
}

func (fs freeSpace) Edge(uid, vid int64) graph.Edge {
	w, ok := fs.Weight(uid, vid)
	if !ok || uid == vid {
		return nil
	}
	return simple.WeightedEdge{F: simple.Node(uid), T: simple.Node(vid), W: w}
}

func (fs freeSpace) Weight(xid, yid int64) (float64, bool) {
	if xid == yid {
		return 0, true
	}
	x1, y1 := fs.g.unflatten(int(xid))
	x2, y2 := fs.g.unflatten(int(yid))
	dx, dy := x2-x1, y2-y1
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
		return math.Inf(1), false
	}
	if fs.g.Occupied(x1, y1) || fs.g.Occupied(x2, y2) {
		return math.Inf(1), false
	}
	if dx != 0 && dy != 0 {
		return math.Sqrt2 * fs.g.resolution, true
	}
	return fs.g.resolution, true
}

// DistanceField holds shortest 8-connected distances through free space from one goal cell to every
// cell reachable from it. It ignores vehicle curvature and so underestimates drivable distance, while
// still accounting for walls the vehicle has to go around. Queries are measured between cell centres
// and then reduced by one cell diagonal, so they never exceed the distance between the points themselves.
type DistanceField struct {
	grid     *Grid
	goal     r2.Point
	shortest path.Shortest
	valid    bool
}

// DistanceField computes the distance field towards goal. If the goal lies outside the grid or on an
// occupied cell every query returns +Inf.
func (g *Grid) DistanceField(goal r2.Point) *DistanceField {
	df := &DistanceField{grid: g, goal: goal}
	ix, iy, ok := g.Index(goal)
	if !ok || g.Occupied(ix, iy) {
		return df
	}
	df.shortest = path.DijkstraFrom(simple.Node(g.flatten(ix, iy)), freeSpace{g: g})
	df.valid = true
	return df
}

// Goal returns the point the field was computed towards.
func (df *DistanceField) Goal() r2.Point { return df.goal }

// Distance returns a lower bound on the free-space distance from p to the goal, or +Inf when p cannot
// reach it.
func (df *DistanceField) Distance(p r2.Point) float64 {
	w := df.CellDistance(p)
	if math.IsInf(w, 1) {
		return w
	}
	return math.Max(0, w-math.Sqrt2*df.grid.resolution)
}

// CellDistance returns the 8-connected distance from the centre of p's cell to the centre of the goal
// cell, or +Inf when p cannot reach it.
func (df *DistanceField) CellDistance(p r2.Point) float64 {
	if !df.valid {
		return math.Inf(1)
	}
	ix, iy, ok := df.grid.Index(p)
	if !ok {
		return math.Inf(1)
	}
	return df.shortest.WeightTo(int64(df.grid.flatten(ix, iy)))
}
