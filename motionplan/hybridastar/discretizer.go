package hybridastar

import (
	"fmt"
	"math"

	"go.parkplan.dev/planner/motionplan/occupancy"
	"go.parkplan.dev/planner/spatialmath"
	"go.parkplan.dev/planner/utils"
)

// Cell is a discrete search state: a square of the state grid and a heading sector.
// Cells are compared by value and used directly as map keys.
type Cell struct {
	X, Y  int
	Theta int
}

func (c Cell) String() string {
	return fmt.Sprintf("[%d %d %d]", c.X, c.Y, c.Theta)
}

// discretizer maps continuous poses onto search cells at the state grid resolution.
type discretizer struct {
	bounds     occupancy.Bounds
	resolution float64
	bins       int
	binWidth   float64
}

func newDiscretizer(bounds occupancy.Bounds, resolution float64, headingBins int) *discretizer {
	return &discretizer{
		bounds:     bounds,
		resolution: resolution,
		bins:       headingBins,
		binWidth:   2 * math.Pi / float64(headingBins),
	}
}

// ToCell returns the cell containing pose.
func (d *discretizer) ToCell(pose spatialmath.Pose) Cell {
	bin := int(math.Floor(utils.WrapTo2Pi(pose.Theta)/d.binWidth)) % d.bins
	if bin < 0 {
		bin += d.bins
	}
	return Cell{
		X:     int(math.Floor((pose.X() - d.bounds.XMin) / d.resolution)),
		Y:     int(math.Floor((pose.Y() - d.bounds.YMin) / d.resolution)),
		Theta: bin,
	}
}

// CellCenterPose returns the pose at the centre of cell, facing the middle of its heading sector.
func (d *discretizer) CellCenterPose(c Cell) spatialmath.Pose {
	return spatialmath.NewPose(
		d.bounds.XMin+(float64(c.X)+0.5)*d.resolution,
		d.bounds.YMin+(float64(c.Y)+0.5)*d.resolution,
		(float64(c.Theta)+0.5)*d.binWidth,
	)
}
