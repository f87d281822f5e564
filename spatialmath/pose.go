// Package spatialmath defines planar poses used by the planner.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"go.parkplan.dev/planner/utils"
)

// Pose is a position on the plane together with a heading. Headings are kept in [0, 2pi).
type Pose struct {
	Point r2.Point
	Theta float64
}

// NewPose returns a Pose at x, y facing theta radians; theta is normalized into [0, 2pi).
func NewPose(x, y, theta float64) Pose {
	return Pose{Point: r2.Point{X: x, Y: y}, Theta: utils.WrapTo2Pi(theta)}
}

// NewPoseDegrees is like NewPose but takes the heading in degrees.
func NewPoseDegrees(x, y, thetaDeg float64) Pose {
	return NewPose(x, y, utils.DegToRad(thetaDeg))
}

// X returns the x coordinate.
func (p Pose) X() float64 { return p.Point.X }

// Y returns the y coordinate.
func (p Pose) Y() float64 { return p.Point.Y }

// Heading returns the unit vector the pose faces.
func (p Pose) Heading() r2.Point {
	return r2.Point{X: math.Cos(p.Theta), Y: math.Sin(p.Theta)}
}

// Distance returns the euclidean distance between the positions of two poses.
func (p Pose) Distance(o Pose) float64 {
	return p.Point.Sub(o.Point).Norm()
}

// Transform maps a point expressed in the pose's local frame (x forward, y left) into the world frame.
func (p Pose) Transform(local r2.Point) r2.Point {
	c, s := math.Cos(p.Theta), math.Sin(p.Theta)
	return r2.Point{
		X: p.Point.X + c*local.X - s*local.Y,
		Y: p.Point.Y + s*local.X + c*local.Y,
	}
}

// Relative expresses o in the local frame of p. The returned Theta is the heading change in [0, 2pi).
func (p Pose) Relative(o Pose) Pose {
	d := o.Point.Sub(p.Point)
	c, s := math.Cos(p.Theta), math.Sin(p.Theta)
	return NewPose(c*d.X+s*d.Y, -s*d.X+c*d.Y, o.Theta-p.Theta)
}

// AlmostEqual reports whether two poses match within linear tolerance eps and angular tolerance epsTheta.
func (p Pose) AlmostEqual(o Pose, eps, epsTheta float64) bool {
	return p.Distance(o) <= eps && utils.AngleDiff(p.Theta, o.Theta) <= epsTheta
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.1f°)", p.Point.X, p.Point.Y, utils.RadToDeg(p.Theta))
}
