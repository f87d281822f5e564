package main

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.parkplan.dev/planner/motionplan/hybridastar"
	"go.parkplan.dev/planner/motionplan/occupancy"
)

var (
	obstacleColor = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	pathColors    = []color.Color{
		color.RGBA{R: 31, G: 119, B: 180, A: 255},
		color.RGBA{R: 214, G: 39, B: 40, A: 255},
		color.RGBA{R: 44, G: 160, B: 44, A: 255},
		color.RGBA{R: 148, G: 103, B: 189, A: 255},
	}
)

// obstaclePoints returns the centre of every occupied cell.
func obstaclePoints(grid *occupancy.Grid) plotter.XYs {
	pts := make(plotter.XYs, 0, grid.OccupiedCount())
	for iy := 0; iy < grid.Height(); iy++ {
		for ix := 0; ix < grid.Width(); ix++ {
			if grid.Occupied(ix, iy) {
				c := grid.CellCenter(ix, iy)
				pts = append(pts, plotter.XY{X: c.X, Y: c.Y})
			}
		}
	}
	return pts
}

func pathPoints(plan *hybridastar.Plan) plotter.XYs {
	path := plan.Path()
	pts := make(plotter.XYs, len(path))
	for i, p := range path {
		pts[i] = plotter.XY{X: p.X(), Y: p.Y()}
	}
	return pts
}

// newMapPlot draws the obstacle grid and each plan's path with its start and goal marked.
func newMapPlot(bounds occupancy.Bounds, grid *occupancy.Grid, plans []*hybridastar.Plan) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "parking plans"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.X.Min, p.X.Max = bounds.XMin, bounds.XMax
	p.Y.Min, p.Y.Max = bounds.YMin, bounds.YMax

	if grid.OccupiedCount() > 0 {
		obstacles, err := plotter.NewScatter(obstaclePoints(grid))
		if err != nil {
			return nil, errors.Wrap(err, "plotting obstacles")
		}
		obstacles.GlyphStyle.Shape = draw.BoxGlyph{}
		obstacles.GlyphStyle.Color = obstacleColor
		obstacles.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(obstacles)
	}

	for i, plan := range plans {
		pts := pathPoints(plan)
		if len(pts) < 2 {
			continue
		}
		col := pathColors[i%len(pathColors)]
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "plotting plan %d", i)
		}
		line.Color = col
		line.Width = vg.Points(1)

		ends, err := plotter.NewScatter(plotter.XYs{pts[0], pts[len(pts)-1]})
		if err != nil {
			return nil, errors.Wrapf(err, "plotting plan %d", i)
		}
		ends.GlyphStyle.Shape = draw.CircleGlyph{}
		ends.GlyphStyle.Color = col
		ends.GlyphStyle.Radius = vg.Points(3)
		p.Add(line, ends)
	}
	return p, nil
}

// savePlot renders the map and plans to a file; the extension picks the image format.
func savePlot(path string, bounds occupancy.Bounds, grid *occupancy.Grid, plans []*hybridastar.Plan) error {
	p, err := newMapPlot(bounds, grid, plans)
	if err != nil {
		return err
	}
	size := bounds.Size()
	width := 8 * vg.Inch
	height := width
	if size.X > 0 {
		height = vg.Length(size.Y/size.X) * width
	}
	if err := p.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "saving plot %q", path)
	}
	return nil
}
