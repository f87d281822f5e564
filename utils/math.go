// Package utils contains small numeric helpers shared across the planner.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// WrapTo2Pi returns the given angle in the [0, 2pi) range.
func WrapTo2Pi(theta float64) float64 {
	wrapped := theta - 2*math.Pi*math.Floor(theta/(2*math.Pi))
	// Floor can leave exactly 2pi behind for tiny negative inputs.
	if wrapped >= 2*math.Pi {
		return 0
	}
	return wrapped
}

// WrapToPi returns the given angle in the [-pi, pi) range.
func WrapToPi(theta float64) float64 {
	return WrapTo2Pi(theta+math.Pi) - math.Pi
}

// AngleDiff returns the smallest absolute difference between two angles, in radians.
// The arguments are commutative.
func AngleDiff(a1, a2 float64) float64 {
	return math.Abs(WrapToPi(a1 - a2))
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Square returns n*n.
func Square(n float64) float64 {
	return n * n
}

// Sign returns -1 for negative inputs and 1 otherwise.
func Sign(n float64) float64 {
	if n < 0 {
		return -1
	}
	return 1
}
