package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestNewPoseNormalizesHeading(t *testing.T) {
	p := NewPose(1, 2, -math.Pi/2)
	test.That(t, p.X(), test.ShouldEqual, 1.)
	test.That(t, p.Y(), test.ShouldEqual, 2.)
	test.That(t, p.Theta, test.ShouldAlmostEqual, 3*math.Pi/2)

	p = NewPoseDegrees(0, 0, 450)
	test.That(t, p.Theta, test.ShouldAlmostEqual, math.Pi/2)
}

func TestTransformAndRelative(t *testing.T) {
	p := NewPose(1, 1, math.Pi/2)
	world := p.Transform(r2.Point{X: 2, Y: 0})
	test.That(t, world.X, test.ShouldAlmostEqual, 1.)
	test.That(t, world.Y, test.ShouldAlmostEqual, 3.)

	rel := p.Relative(NewPose(1, 3, math.Pi))
	test.That(t, rel.X(), test.ShouldAlmostEqual, 2.)
	test.That(t, rel.Y(), test.ShouldAlmostEqual, 0.)
	test.That(t, rel.Theta, test.ShouldAlmostEqual, math.Pi/2)
}

func TestAlmostEqual(t *testing.T) {
	a := NewPose(0, 0, 0.001)
	b := NewPose(0.0005, 0, 2*math.Pi-0.001)
	test.That(t, a.AlmostEqual(b, 1e-3, 1e-2), test.ShouldBeTrue)
	test.That(t, a.AlmostEqual(b, 1e-4, 1e-2), test.ShouldBeFalse)
	test.That(t, a.Distance(NewPose(3, 4, 0)), test.ShouldAlmostEqual, 5.)
}
