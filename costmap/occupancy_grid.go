// Package costmap loads occupancy maps from disk and rasterises them into the planner's obstacle grid.
package costmap

import (
	"encoding/json"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.parkplan.dev/planner/motionplan/occupancy"
)

// Occupancy values carried in OccupancyGrid.Data.
const (
	Free     int8 = 0
	Occupied int8 = 100
	Unknown  int8 = -1
)

// OccupancyGrid is a map as published by a mapping system: Width x Height cells of side Resolution,
// stored row major starting at the cell whose lower left corner is Origin. Nonzero cells are obstacles,
// including unknown (negative) cells unless UnknownIsFree is set.
type OccupancyGrid struct {
	Origin        r2.Point
	Width         int
	Height        int
	Resolution    float64
	Data          []int8
	UnknownIsFree bool
}

// Validate checks that the grid is well formed.
func (g *OccupancyGrid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Errorf("map must have positive dimensions, got %dx%d", g.Width, g.Height)
	}
	if !(g.Resolution > 0) || math.IsInf(g.Resolution, 0) {
		return errors.Errorf("map resolution must be positive, got %v", g.Resolution)
	}
	if len(g.Data) != g.Width*g.Height {
		return errors.Errorf("map has %d cells of data, expected %dx%d", len(g.Data), g.Width, g.Height)
	}
	return nil
}

// Bounds returns the extent covered by the map, from Origin to Origin plus its size.
func (g *OccupancyGrid) Bounds() occupancy.Bounds {
	return occupancy.Bounds{
		XMin: g.Origin.X,
		XMax: g.Origin.X + float64(g.Width)*g.Resolution,
		YMin: g.Origin.Y,
		YMax: g.Origin.Y + float64(g.Height)*g.Resolution,
	}
}

// IsOccupied reports whether the map cell containing p is an obstacle. Points off the map are obstacles.
func (g *OccupancyGrid) IsOccupied(p r2.Point) bool {
	ix := int(math.Floor((p.X - g.Origin.X) / g.Resolution))
	iy := int(math.Floor((p.Y - g.Origin.Y) / g.Resolution))
	if ix < 0 || ix >= g.Width || iy < 0 || iy >= g.Height {
		return true
	}
	v := g.Data[iy*g.Width+ix]
	if v < 0 {
		return !g.UnknownIsFree
	}
	return v != Free
}

// OccupiedCount returns the number of cells IsOccupied treats as obstacles.
func (g *OccupancyGrid) OccupiedCount() int {
	var n int
	for _, v := range g.Data {
		if v > 0 || (v < 0 && !g.UnknownIsFree) {
			n++
		}
	}
	return n
}

// jsonGrid mirrors the JSON encoding of a nav_msgs/OccupancyGrid message.
type jsonGrid struct {
	Info struct {
		Resolution float64 `json:"resolution"`
		Width      int     `json:"width"`
		Height     int     `json:"height"`
		Origin     struct {
			Position struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"position"`
		} `json:"origin"`
	} `json:"info"`
	Data []int8 `json:"data"`
}

// LoadJSON reads an occupancy grid stored as a JSON encoded nav_msgs/OccupancyGrid.
func LoadJSON(path string) (*OccupancyGrid, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw jsonGrid
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "decoding occupancy grid %q", path)
	}
	grid := &OccupancyGrid{
		Origin:     r2.Point{X: raw.Info.Origin.Position.X, Y: raw.Info.Origin.Position.Y},
		Width:      raw.Info.Width,
		Height:     raw.Info.Height,
		Resolution: raw.Info.Resolution,
		Data:       raw.Data,
	}
	if err := grid.Validate(); err != nil {
		return nil, errors.Wrapf(err, "occupancy grid %q", path)
	}
	return grid, nil
}
