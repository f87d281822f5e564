package occupancy

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Grid is a binary occupancy grid over Bounds at a fixed resolution. It is populated once per map and
// treated as read only afterwards; a new map replaces the grid rather than patching it.
type Grid struct {
	bounds     Bounds
	resolution float64
	width      int
	height     int
	cells      []bool
	occupied   int
}

// NewGrid returns an empty grid covering bounds with square cells of the given side length.
func NewGrid(bounds Bounds, resolution float64) (*Grid, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return nil, errors.Errorf("grid resolution must be positive, got %v", resolution)
	}
	width, height := bounds.Cells(resolution)
	return &Grid{
		bounds:     bounds,
		resolution: resolution,
		width:      width,
		height:     height,
		cells:      make([]bool, width*height),
	}, nil
}

// Bounds returns the extents the grid covers.
func (g *Grid) Bounds() Bounds { return g.bounds }

// Resolution returns the side length of one cell.
func (g *Grid) Resolution() float64 { return g.resolution }

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// OccupiedCount returns the number of distinct occupied cells.
func (g *Grid) OccupiedCount() int { return g.occupied }

// InRange reports whether (ix, iy) addresses a cell of the grid.
func (g *Grid) InRange(ix, iy int) bool {
	return ix >= 0 && ix < g.width && iy >= 0 && iy < g.height
}

// Index returns the cell containing p. ok is false when p lies outside the grid.
func (g *Grid) Index(p r2.Point) (ix, iy int, ok bool) {
	if !g.bounds.Contains(p) {
		return 0, 0, false
	}
	ix = int(math.Floor((p.X - g.bounds.XMin) / g.resolution))
	iy = int(math.Floor((p.Y - g.bounds.YMin) / g.resolution))
	return ix, iy, g.InRange(ix, iy)
}

// CellCenter returns the centre of cell (ix, iy).
func (g *Grid) CellCenter(ix, iy int) r2.Point {
	return r2.Point{
		X: g.bounds.XMin + (float64(ix)+0.5)*g.resolution,
		Y: g.bounds.YMin + (float64(iy)+0.5)*g.resolution,
	}
}

// SetObstacle marks cell (ix, iy) occupied. Marking a cell twice has no further effect.
func (g *Grid) SetObstacle(ix, iy int) error {
	if !g.InRange(ix, iy) {
		return errors.Wrapf(ErrOutOfBounds, "cell (%d, %d) of %dx%d grid", ix, iy, g.width, g.height)
	}
	i := g.flatten(ix, iy)
	if !g.cells[i] {
		g.cells[i] = true
		g.occupied++
	}
	return nil
}

// Occupied reports whether cell (ix, iy) is occupied. Cells outside the grid are reported occupied.
func (g *Grid) Occupied(ix, iy int) bool {
	if !g.InRange(ix, iy) {
		return true
	}
	return g.cells[g.flatten(ix, iy)]
}

// IsOccupied reports whether the cell containing p is occupied. Points outside the grid are reported occupied.
func (g *Grid) IsOccupied(p r2.Point) bool {
	ix, iy, ok := g.Index(p)
	if !ok {
		return true
	}
	return g.cells[g.flatten(ix, iy)]
}

func (g *Grid) flatten(ix, iy int) int {
	return iy*g.width + ix
}

func (g *Grid) unflatten(i int) (ix, iy int) {
	return i % g.width, i / g.width
}
