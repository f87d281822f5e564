package hybridastar

import (
	"math"

	"go.parkplan.dev/planner/motionplan/curves"
	"go.parkplan.dev/planner/motionplan/occupancy"
	"go.parkplan.dev/planner/spatialmath"
)

// heuristic estimates cost-to-go as the larger of two lower bounds: the obstacle aware holonomic
// distance from the goal's distance field, and the obstacle free analytic curve length.
type heuristic struct {
	goal   spatialmath.Pose
	field  *occupancy.DistanceField
	family curves.Family
}

// Estimate returns h for pose. reachable is false when no obstacle free route joins pose to the goal.
func (h *heuristic) Estimate(pose spatialmath.Pose) (estimate float64, reachable bool) {
	holonomic := h.field.Distance(pose.Point)
	if math.IsInf(holonomic, 1) {
		return holonomic, false
	}
	estimate = holonomic
	if path, ok := h.family.Shortest(pose, h.goal); ok {
		estimate = math.Max(estimate, path.Length())
	}
	return estimate, true
}
