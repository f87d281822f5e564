package hybridastar

import (
	"math"

	"go.parkplan.dev/planner/motionplan/curves"
	"go.parkplan.dev/planner/spatialmath"
)

// shotGenerator tries to close the gap to the goal with an analytic curve once a node is near enough.
type shotGenerator struct {
	family   curves.Family
	distance float64
	step     float64
	checker  *collisionChecker
	attempts int

	steeringPenalty  float64
	reversingPenalty float64
}

func newShotGenerator(family curves.Family, opts Options, checker *collisionChecker) *shotGenerator {
	return &shotGenerator{
		family:   family,
		distance: opts.ShotDistance,
		step:     opts.sampleStep(),
		checker:  checker,

		steeringPenalty:  opts.SteeringPenalty,
		reversingPenalty: opts.ReversingPenalty,
	}
}

// InRange reports whether a shot from pose to goal should be attempted.
func (sg *shotGenerator) InRange(pose, goal spatialmath.Pose) bool {
	return pose.Distance(goal) <= sg.distance
}

// Try connects from to goal and returns the curve with its samples when every sample is collision free.
// The final sample is exactly goal.
func (sg *shotGenerator) Try(from, goal spatialmath.Pose) (*curves.Path, []spatialmath.Pose, bool) {
	sg.attempts++
	path, ok := sg.family.Shortest(from, goal)
	if !ok {
		return nil, nil, false
	}
	samples := path.Sample(sg.step)
	if len(samples) == 0 {
		samples = []spatialmath.Pose{goal}
	}
	samples[len(samples)-1] = goal
	if !sg.checker.IsFree(samples) {
		return nil, nil, false
	}
	return path, samples, true
}

// Cost weighs a shot like primitives: turning segments pay the steering penalty and reverse segments
// the reversing penalty.
func (sg *shotGenerator) Cost(path *curves.Path) float64 {
	var cost float64
	for _, seg := range path.Segments {
		c := math.Abs(seg.Length)
		if seg.Steer != curves.SteerStraight {
			c *= sg.steeringPenalty
		}
		if seg.Length < 0 {
			c *= sg.reversingPenalty
		}
		cost += c
	}
	return cost
}
