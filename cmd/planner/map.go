package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"go.parkplan.dev/planner/costmap"
	"go.parkplan.dev/planner/motionplan/hybridastar"
)

// MapAction prints what the planner sees of the configured map and optionally plots it.
func MapAction(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	planner, grid, err := newMapPlanner(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, mapTable(grid, planner))
	if out := c.String(flagPlot); out != "" {
		if err := savePlot(out, grid.Bounds(), planner.Grid(), nil); err != nil {
			return err
		}
		logger.Infof("plot written to %s", out)
	}
	return nil
}

func mapTable(grid *costmap.OccupancyGrid, planner *hybridastar.Planner) string {
	bounds := grid.Bounds()
	fine := planner.Grid()
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Grid", "Cells", "Resolution", "Occupied"})
	t.AppendRow(table.Row{"map", fmt.Sprintf("%dx%d", grid.Width, grid.Height), grid.Resolution, grid.OccupiedCount()})
	t.AppendRow(table.Row{
		"planner",
		fmt.Sprintf("%dx%d", fine.Width(), fine.Height()),
		fine.Resolution(),
		fine.OccupiedCount(),
	})
	t.AppendFooter(table.Row{
		"bounds",
		fmt.Sprintf("x [%.2f, %.2f]", bounds.XMin, bounds.XMax),
		fmt.Sprintf("y [%.2f, %.2f]", bounds.YMin, bounds.YMax),
		"",
	})
	return t.Render()
}
