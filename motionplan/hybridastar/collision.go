package hybridastar

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats"

	"go.parkplan.dev/planner/motionplan/occupancy"
	"go.parkplan.dev/planner/spatialmath"
)

// collisionChecker validates sampled poses against the obstacle grid. Without a footprint each pose is
// a point; with one, a lattice of points no further apart than one map cell covers the rectangle.
type collisionChecker struct {
	grid *occupancy.Grid
	// offsets are footprint points in the vehicle frame. nil means a point check.
	offsets []r2.Point
	checks  int
}

func newCollisionChecker(grid *occupancy.Grid, footprint Footprint) *collisionChecker {
	cc := &collisionChecker{grid: grid}
	if footprint.IsZero() {
		return cc
	}
	res := grid.Resolution()
	along := floats.Span(
		make([]float64, int(math.Ceil(footprint.Length/res))+1),
		-footprint.RearOverhang,
		footprint.Length-footprint.RearOverhang,
	)
	across := floats.Span(make([]float64, int(math.Ceil(footprint.Width/res))+1), -footprint.Width/2, footprint.Width/2)
	cc.offsets = make([]r2.Point, 0, len(along)*len(across))
	for _, x := range along {
		for _, y := range across {
			cc.offsets = append(cc.offsets, r2.Point{X: x, Y: y})
		}
	}
	return cc
}

// IsFree reports whether every pose is collision free. It stops at the first pose in collision.
// Poses outside the grid collide.
func (cc *collisionChecker) IsFree(poses []spatialmath.Pose) bool {
	for _, pose := range poses {
		cc.checks++
		if !cc.poseFree(pose) {
			return false
		}
	}
	return true
}

func (cc *collisionChecker) poseFree(pose spatialmath.Pose) bool {
	if cc.offsets == nil {
		return !cc.grid.IsOccupied(pose.Point)
	}
	for _, off := range cc.offsets {
		if cc.grid.IsOccupied(pose.Transform(off)) {
			return false
		}
	}
	return true
}
