// Package occupancy holds the binary obstacle grid the planner checks motions against,
// together with the obstacle-aware distance field used to guide search.
package occupancy

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ErrOutOfBounds is returned when a cell or point lies outside the configured extents.
var ErrOutOfBounds = errors.New("outside map bounds")

// Bounds is an axis aligned extent on the plane. The lower edges are inclusive and the upper edges exclusive.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Validate returns an error if the bounds are empty, inverted or not finite.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("bounds %v are not finite", b)
		}
	}
	if b.XMax <= b.XMin || b.YMax <= b.YMin {
		return errors.Errorf("bounds %v are degenerate", b)
	}
	return nil
}

// Contains reports whether p lies within the bounds.
func (b Bounds) Contains(p r2.Point) bool {
	return p.X >= b.XMin && p.X < b.XMax && p.Y >= b.YMin && p.Y < b.YMax
}

// Size returns the extent along each axis.
func (b Bounds) Size() r2.Point {
	return r2.Point{X: b.XMax - b.XMin, Y: b.YMax - b.YMin}
}

// Cells returns the number of columns and rows of square cells of side resolution needed to cover the bounds.
func (b Bounds) Cells(resolution float64) (width, height int) {
	size := b.Size()
	return cellCount(size.X, resolution), cellCount(size.Y, resolution)
}

// cellCount returns how many cells of the given resolution cover length. Lengths that are an exact
// multiple of the resolution up to floating point noise do not gain an extra cell.
func cellCount(length, resolution float64) int {
	return int(math.Ceil(length/resolution - 1e-9))
}
