package costmap

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// ObstacleSetter receives obstacle cells at the planner's map grid resolution.
type ObstacleSetter interface {
	SetObstacle(ix, iy int) error
}

// Populate rasterises grid into target. The target grid covers grid.Bounds() with square cells of side
// mapResolution; every target cell whose centre falls on an obstacle of grid is set. It returns the
// number of cells set.
func Populate(target ObstacleSetter, grid *OccupancyGrid, mapResolution float64) (int, error) {
	if err := grid.Validate(); err != nil {
		return 0, err
	}
	if !(mapResolution > 0) {
		return 0, errors.Errorf("map grid resolution must be positive, got %v", mapResolution)
	}
	bounds := grid.Bounds()
	width, height := bounds.Cells(mapResolution)
	var set int
	for ix := 0; ix < width; ix++ {
		for iy := 0; iy < height; iy++ {
			center := r2.Point{
				X: bounds.XMin + (float64(ix)+0.5)*mapResolution,
				Y: bounds.YMin + (float64(iy)+0.5)*mapResolution,
			}
			if !grid.IsOccupied(center) {
				continue
			}
			if err := target.SetObstacle(ix, iy); err != nil {
				return set, errors.Wrapf(err, "setting obstacle (%d, %d)", ix, iy)
			}
			set++
		}
	}
	return set, nil
}
