package hybridastar

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.parkplan.dev/planner/motionplan/curves"
	"go.parkplan.dev/planner/motionplan/occupancy"
	"go.parkplan.dev/planner/spatialmath"
	"go.parkplan.dev/planner/utils"
)

func TestOptionsValidate(t *testing.T) {
	opts := NewDefaultOptions()
	test.That(t, opts.Validate(), test.ShouldBeNil)
	test.That(t, opts.TurningRadius(), test.ShouldAlmostEqual, 1/math.Tan(utils.DegToRad(10)))

	opts.WheelBase = 0
	opts.SegmentLengthDiscreteNum = 0
	opts.AnalyticCurve = "clothoid"
	err := opts.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 3)

	var cfgErr *ConfigurationError
	test.That(t, errors.As(err, &cfgErr), test.ShouldBeTrue)
	test.That(t, cfgErr.Field, test.ShouldEqual, "wheel_base")

	opts = NewDefaultOptions()
	opts.Footprint = Footprint{Length: 2, Width: -1}
	test.That(t, opts.Validate(), test.ShouldNotBeNil)

	opts = NewDefaultOptions()
	opts.SteeringAngle = 90
	test.That(t, opts.Validate(), test.ShouldNotBeNil)
}

func TestDiscretizer(t *testing.T) {
	d := newDiscretizer(occupancy.Bounds{XMin: -10, XMax: 10, YMin: -10, YMax: 10}, 1, 72)

	test.That(t, d.ToCell(spatialmath.NewPose(-10, -10, 0)), test.ShouldResemble, Cell{X: 0, Y: 0, Theta: 0})
	test.That(t, d.ToCell(spatialmath.NewPoseDegrees(0.5, -0.5, 91)), test.ShouldResemble, Cell{X: 10, Y: 9, Theta: 18})
	test.That(t, d.ToCell(spatialmath.NewPoseDegrees(0, 0, 359.9)).Theta, test.ShouldEqual, 71)
	test.That(t, d.ToCell(spatialmath.NewPoseDegrees(0, 0, -2)).Theta, test.ShouldEqual, 71)
	test.That(t, d.ToCell(spatialmath.NewPoseDegrees(0, 0, 4.9)).Theta, test.ShouldEqual, 0)

	for _, c := range []Cell{{0, 0, 0}, {3, 17, 71}, {19, 19, 35}} {
		center := d.CellCenterPose(c)
		test.That(t, d.ToCell(center), test.ShouldResemble, c)
	}
	center := d.CellCenterPose(Cell{X: 2, Y: 3, Theta: 0})
	test.That(t, center.X(), test.ShouldAlmostEqual, -7.5)
	test.That(t, center.Y(), test.ShouldAlmostEqual, -6.5)
	test.That(t, center.Theta, test.ShouldAlmostEqual, utils.DegToRad(2.5))
}

func TestPrimitiveSet(t *testing.T) {
	opts := NewDefaultOptions()
	ps := newPrimitiveSet(opts)
	test.That(t, len(ps.primitives), test.ShouldEqual, 6)

	opts.SteeringAngleDiscreteNum = 2
	test.That(t, len(newPrimitiveSet(opts).primitives), test.ShouldEqual, 10)

	var straight, left Primitive
	for _, prim := range ps.primitives {
		if prim.Direction != Forward {
			continue
		}
		switch prim.SteerIndex {
		case 0:
			straight = prim
		case 1:
			left = prim
		}
	}
	test.That(t, straight.Curvature, test.ShouldEqual, 0.)
	test.That(t, left.Steer, test.ShouldAlmostEqual, utils.DegToRad(10))
	test.That(t, left.Curvature, test.ShouldAlmostEqual, math.Tan(utils.DegToRad(10)))

	start := spatialmath.NewPose(1, 2, 0)
	end := ps.Apply(start, straight)
	test.That(t, end.X(), test.ShouldAlmostEqual, 2.6)
	test.That(t, end.Y(), test.ShouldAlmostEqual, 2)

	samples := ps.Sample(start, left)
	test.That(t, len(samples), test.ShouldEqual, 8)
	test.That(t, samples[7].AlmostEqual(ps.Apply(start, left), 1e-12, 1e-12), test.ShouldBeTrue)
	test.That(t, samples[7].Theta, test.ShouldAlmostEqual, 1.6*math.Tan(utils.DegToRad(10)))
	prev := start
	for _, s := range samples {
		test.That(t, s.Distance(prev), test.ShouldBeLessThanOrEqualTo, 0.2+1e-9)
		prev = s
	}

	back := Primitive{SteerIndex: 0, Direction: Reverse}
	end = ps.Apply(start, back)
	test.That(t, end.X(), test.ShouldAlmostEqual, -0.6)
}

func TestStepCost(t *testing.T) {
	ps := newPrimitiveSet(NewDefaultOptions())
	forward := Primitive{SteerIndex: 0, Direction: Forward}
	leftForward := Primitive{SteerIndex: 1, Direction: Forward}
	leftReverse := Primitive{SteerIndex: 1, Direction: Reverse}
	rightReverse := Primitive{SteerIndex: -1, Direction: Reverse}

	test.That(t, ps.StepCost(forward, 0), test.ShouldAlmostEqual, 1.6)
	test.That(t, ps.StepCost(leftForward, 0), test.ShouldAlmostEqual, 1.6*1.5+2)
	test.That(t, ps.StepCost(leftForward, 1), test.ShouldAlmostEqual, 1.6*1.5)
	test.That(t, ps.StepCost(leftReverse, 1), test.ShouldAlmostEqual, 1.6*1.5*2)
	test.That(t, ps.StepCost(rightReverse, 1), test.ShouldAlmostEqual, 1.6*1.5*2+2)
	test.That(t, ps.StepCost(forward, -1), test.ShouldAlmostEqual, 1.6+2)
}

func TestOpenSetOrdering(t *testing.T) {
	var os openSet
	nodes := []node{
		{g: 5, h: 5, changes: 0}, // f 10, high h
		{g: 7, h: 3, changes: 1}, // f 10, low h, one switch
		{g: 7, h: 3, changes: 0}, // f 10, low h, no switch
		{g: 1, h: 2, changes: 3}, // f 3
		{g: 7, h: 3, changes: 0}, // duplicate of 2, pushed later
	}
	for i := range nodes {
		os.Push(i, &nodes[i])
	}
	test.That(t, os.Len(), test.ShouldEqual, 5)

	var order []int
	for {
		e, ok := os.Pop()
		if !ok {
			break
		}
		order = append(order, e.node)
	}
	test.That(t, order, test.ShouldResemble, []int{3, 2, 4, 1, 0})

	os.reset()
	_, ok := os.Pop()
	test.That(t, ok, test.ShouldBeFalse)
}

func TestNodeArenaBranch(t *testing.T) {
	var a nodeArena
	root := a.add(node{parent: noParent})
	child := a.add(node{parent: root})
	a.add(node{parent: root})
	leaf := a.add(node{parent: child})
	test.That(t, a.branch(leaf), test.ShouldResemble, []int{root, child, leaf})
	test.That(t, a.branch(root), test.ShouldResemble, []int{root})

	a.reset()
	test.That(t, len(a.nodes), test.ShouldEqual, 0)
}

func TestCollisionChecker(t *testing.T) {
	grid, err := occupancy.NewGrid(occupancy.Bounds{XMin: 0, XMax: 10, YMin: 0, YMax: 10}, 0.2)
	test.That(t, err, test.ShouldBeNil)
	// obstacle 0.5 m to the left of the pose at (5, 5) facing +x
	ix, iy, ok := grid.Index(r2.Point{X: 5.1, Y: 5.5})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, grid.SetObstacle(ix, iy), test.ShouldBeNil)

	pose := spatialmath.NewPose(5, 5, 0)
	point := newCollisionChecker(grid, Footprint{})
	test.That(t, point.IsFree([]spatialmath.Pose{pose}), test.ShouldBeTrue)

	box := newCollisionChecker(grid, Footprint{Length: 2, Width: 1.4, RearOverhang: 0.3})
	test.That(t, box.IsFree([]spatialmath.Pose{pose}), test.ShouldBeFalse)
	// rotated to face +y the obstacle is ahead of the rear axle, 0.1 m to the right: still inside.
	test.That(t, box.IsFree([]spatialmath.Pose{spatialmath.NewPose(5, 5, math.Pi/2)}), test.ShouldBeFalse)
	// facing -y the obstacle is 0.5 m behind the rear axle, past the overhang.
	test.That(t, box.IsFree([]spatialmath.Pose{spatialmath.NewPose(5, 5, -math.Pi/2)}), test.ShouldBeTrue)

	// the first sample in collision ends the check
	poses := []spatialmath.Pose{pose, spatialmath.NewPose(5.1, 5.5, 0), spatialmath.NewPose(1, 1, 0)}
	point.checks = 0
	test.That(t, point.IsFree(poses), test.ShouldBeFalse)
	test.That(t, point.checks, test.ShouldEqual, 2)

	test.That(t, point.IsFree([]spatialmath.Pose{spatialmath.NewPose(10, 5, 0)}), test.ShouldBeFalse)
	test.That(t, point.IsFree([]spatialmath.Pose{spatialmath.NewPose(-0.01, 5, 0)}), test.ShouldBeFalse)
}

func newTestHeuristic(t *testing.T, grid *occupancy.Grid, goal spatialmath.Pose) *heuristic {
	t.Helper()
	family, err := curves.NewFamily(curves.ReedsSheppName, NewDefaultOptions().TurningRadius())
	test.That(t, err, test.ShouldBeNil)
	return &heuristic{goal: goal, field: grid.DistanceField(goal.Point), family: family}
}

func TestHeuristicTakesLargerBound(t *testing.T) {
	grid, err := occupancy.NewGrid(occupancy.Bounds{XMin: 0, XMax: 20, YMin: 0, YMax: 10}, 1)
	test.That(t, err, test.ShouldBeNil)
	// wall at x in [10, 11) from the bottom edge up to y = 8
	for iy := 0; iy < 8; iy++ {
		test.That(t, grid.SetObstacle(10, iy), test.ShouldBeNil)
	}
	goal := spatialmath.NewPose(14, 2, 0)
	h := newTestHeuristic(t, grid, goal)

	t.Run("wall makes the field larger", func(t *testing.T) {
		pose := spatialmath.NewPose(6, 2, 0)
		curve, ok := h.family.Shortest(pose, goal)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, curve.Length(), test.ShouldAlmostEqual, 8.)

		estimate, reachable := h.Estimate(pose)
		test.That(t, reachable, test.ShouldBeTrue)
		test.That(t, estimate, test.ShouldEqual, h.field.Distance(pose.Point))
		test.That(t, estimate, test.ShouldBeGreaterThan, curve.Length())
	})

	t.Run("heading makes the curve larger", func(t *testing.T) {
		pose := spatialmath.NewPose(16, 2, math.Pi)
		curve, ok := h.family.Shortest(pose, goal)
		test.That(t, ok, test.ShouldBeTrue)
		field := h.field.Distance(pose.Point)
		test.That(t, field, test.ShouldBeLessThanOrEqualTo, 2.)

		estimate, reachable := h.Estimate(pose)
		test.That(t, reachable, test.ShouldBeTrue)
		test.That(t, estimate, test.ShouldEqual, curve.Length())
		test.That(t, estimate, test.ShouldBeGreaterThan, field)
	})
}

func TestHeuristicUnreachable(t *testing.T) {
	grid, err := occupancy.NewGrid(occupancy.Bounds{XMin: 0, XMax: 10, YMin: 0, YMax: 10}, 1)
	test.That(t, err, test.ShouldBeNil)
	// ring of obstacles around the cells with x, y in [6, 9)
	for i := 5; i <= 9; i++ {
		for _, c := range [][2]int{{i, 5}, {i, 9}, {5, i}, {9, i}} {
			test.That(t, grid.SetObstacle(c[0], c[1]), test.ShouldBeNil)
		}
	}
	h := newTestHeuristic(t, grid, spatialmath.NewPose(1, 1, 0))

	estimate, reachable := h.Estimate(spatialmath.NewPose(7.5, 7.5, 0))
	test.That(t, reachable, test.ShouldBeFalse)
	test.That(t, math.IsInf(estimate, 1), test.ShouldBeTrue)

	_, reachable = h.Estimate(spatialmath.NewPose(3, 3, 0))
	test.That(t, reachable, test.ShouldBeTrue)
}
