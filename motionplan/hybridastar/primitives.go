package hybridastar

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go.parkplan.dev/planner/motionplan/curves"
	"go.parkplan.dev/planner/spatialmath"
)

// Direction is the sense of travel along a primitive.
type Direction int8

// Directions of travel. The zero value is used for the start node, which was not reached by any motion.
const (
	Reverse Direction = -1
	Forward Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "none"
	}
}

// Primitive is one fixed-length constant-curvature motion.
type Primitive struct {
	// SteerIndex counts steering steps from straight, negative to the right, in [-n, n].
	SteerIndex int
	// Steer is the steering angle in radians, positive to the left.
	Steer     float64
	Direction Direction
	// Curvature is tan(Steer)/WheelBase.
	Curvature float64
}

// primitiveSet holds every primitive available at an expansion, in a fixed order, together with the
// costs used to weigh them.
type primitiveSet struct {
	primitives            []Primitive
	segmentLength         float64
	samples               int
	steeringPenalty       float64
	reversingPenalty      float64
	steeringChangePenalty float64
}

// newPrimitiveSet enumerates 2*(2n+1) primitives: all forward steering angles from full right to full
// left, then the same angles in reverse.
func newPrimitiveSet(opts Options) *primitiveSet {
	n := opts.SteeringAngleDiscreteNum
	maxSteer := opts.MaxSteer()
	set := &primitiveSet{
		primitives:            make([]Primitive, 0, 2*(2*n+1)),
		segmentLength:         opts.SegmentLength,
		samples:               opts.SegmentLengthDiscreteNum,
		steeringPenalty:       opts.SteeringPenalty,
		reversingPenalty:      opts.ReversingPenalty,
		steeringChangePenalty: opts.SteeringChangePenalty,
	}
	for _, dir := range []Direction{Forward, Reverse} {
		for i := -n; i <= n; i++ {
			steer := maxSteer * float64(i) / float64(n)
			set.primitives = append(set.primitives, Primitive{
				SteerIndex: i,
				Steer:      steer,
				Direction:  dir,
				Curvature:  math.Tan(steer) / opts.WheelBase,
			})
		}
	}
	return set
}

// Apply returns the pose reached by driving prim from pose.
func (ps *primitiveSet) Apply(pose spatialmath.Pose, prim Primitive) spatialmath.Pose {
	return curves.Arc(pose, prim.Curvature, float64(prim.Direction)*ps.segmentLength)
}

// Sample returns evenly spaced poses along prim driven from pose, excluding pose itself and ending at
// Apply(pose, prim).
func (ps *primitiveSet) Sample(pose spatialmath.Pose, prim Primitive) []spatialmath.Pose {
	distances := floats.Span(make([]float64, ps.samples+1), 0, float64(prim.Direction)*ps.segmentLength)
	poses := make([]spatialmath.Pose, 0, ps.samples)
	for _, s := range distances[1:] {
		poses = append(poses, curves.Arc(pose, prim.Curvature, s))
	}
	return poses
}

// StepCost returns the cost of driving prim after a motion that used parentSteerIndex.
func (ps *primitiveSet) StepCost(prim Primitive, parentSteerIndex int) float64 {
	cost := ps.segmentLength
	if prim.SteerIndex != 0 {
		cost *= ps.steeringPenalty
	}
	if prim.Direction == Reverse {
		cost *= ps.reversingPenalty
	}
	if prim.SteerIndex != parentSteerIndex {
		cost += ps.steeringChangePenalty
	}
	return cost
}
