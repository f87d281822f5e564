package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.parkplan.dev/planner/config"
	"go.parkplan.dev/planner/costmap"
	"go.parkplan.dev/planner/logging"
	"go.parkplan.dev/planner/motionplan/hybridastar"
	"go.parkplan.dev/planner/spatialmath"
)

// queryResult is the outcome of one query as written by the plan command.
type queryResult struct {
	Name             string        `json:"name"`
	Start            config.Pose   `json:"start"`
	Goal             config.Pose   `json:"goal"`
	Cost             float64       `json:"cost,omitempty"`
	Length           float64       `json:"length,omitempty"`
	DirectionChanges int           `json:"direction_changes,omitempty"`
	Expanded         int           `json:"expanded,omitempty"`
	Path             []config.Pose `json:"path,omitempty"`
	Error            string        `json:"error,omitempty"`

	plan *hybridastar.Plan
}

// PlanAction runs the configured queries, or the one given on the command line, and writes the
// results in the requested format.
func PlanAction(c *cli.Context) error {
	format := c.String(flagFormat)
	if !lo.Contains([]string{formatTable, formatJSON, formatCSV}, format) {
		return errors.Errorf("unknown output format %q", format)
	}
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	queries, err := selectQueries(cfg.Queries, c.String(flagStart), c.String(flagGoal), c.String(flagName))
	if err != nil {
		return err
	}

	planner, grid, err := newMapPlanner(cfg, logger)
	if err != nil {
		return err
	}
	results, err := runQueries(c.Context, planner, queries, logger)
	if err != nil {
		return err
	}
	if err := writeResults(c.App.Writer, format, results); err != nil {
		return err
	}
	if out := c.String(flagPlot); out != "" {
		plans := lo.FilterMap(results, func(r queryResult, _ int) (*hybridastar.Plan, bool) {
			return r.plan, r.plan != nil
		})
		if err := savePlot(out, grid.Bounds(), planner.Grid(), plans); err != nil {
			return err
		}
		logger.Infof("plot written to %s", out)
	}

	if failed := lo.CountBy(results, func(r queryResult) bool { return r.Error != "" }); failed > 0 {
		return errors.Errorf("%d of %d queries failed", failed, len(results))
	}
	return nil
}

// parsePose reads a pose written as x,y,degrees.
func parsePose(s string) (config.Pose, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return config.Pose{}, errors.Errorf("pose %q must be x,y,degrees", s)
	}
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return config.Pose{}, errors.Wrapf(err, "pose %q", s)
		}
		values[i] = v
	}
	return config.Pose{X: values[0], Y: values[1], ThetaDegrees: values[2]}, nil
}

// selectQueries returns the single command line query when start and goal are given, otherwise the
// configured queries, optionally narrowed to one name.
func selectQueries(configured []config.Query, start, goal, name string) ([]config.Query, error) {
	if start != "" || goal != "" {
		if start == "" || goal == "" {
			return nil, errors.New("--start and --goal must be given together")
		}
		s, err := parsePose(start)
		if err != nil {
			return nil, err
		}
		g, err := parsePose(goal)
		if err != nil {
			return nil, err
		}
		return []config.Query{{Name: "cli", Start: s, Goal: g}}, nil
	}

	queries := lo.Map(configured, func(q config.Query, i int) config.Query {
		if q.Name == "" {
			q.Name = fmt.Sprintf("query-%d", i)
		}
		return q
	})
	if name != "" {
		queries = lo.Filter(queries, func(q config.Query, _ int) bool { return q.Name == name })
		if len(queries) == 0 {
			return nil, errors.Errorf("no query named %q", name)
		}
	}
	if len(queries) == 0 {
		return nil, errors.New("no queries configured; pass --start and --goal")
	}
	return queries, nil
}

// newMapPlanner loads the configured map and returns a planner whose obstacle grid has been filled
// from it.
func newMapPlanner(cfg *config.Config, logger logging.Logger) (*hybridastar.Planner, *costmap.OccupancyGrid, error) {
	grid, err := cfg.Map.LoadMap()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading map %q", cfg.Map.Path)
	}
	planner, err := hybridastar.NewPlanner(cfg.PlannerOptions, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := planner.Init(grid.Bounds(), grid.Resolution, cfg.PlannerOptions.MapGridResolution); err != nil {
		return nil, nil, err
	}
	n, err := costmap.Populate(planner, grid, cfg.PlannerOptions.MapGridResolution)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugw("map loaded",
		"path", cfg.Map.Path,
		"width", grid.Width,
		"height", grid.Height,
		"resolution", grid.Resolution,
		"obstacle_cells", n,
	)
	return planner, grid, nil
}

// runQueries plans every query in turn. A planning failure is recorded on its result; any other error
// stops the run.
func runQueries(
	ctx context.Context,
	planner *hybridastar.Planner,
	queries []config.Query,
	logger logging.Logger,
) ([]queryResult, error) {
	results := make([]queryResult, 0, len(queries))
	for _, q := range queries {
		res := queryResult{Name: q.Name, Start: q.Start, Goal: q.Goal}
		plan, err := planner.Search(ctx, q.Start.Pose(), q.Goal.Pose())
		switch {
		case err == nil:
			res.plan = plan
			res.Cost = plan.Cost
			res.Length = plan.Length()
			res.DirectionChanges = plan.DirectionChanges()
			res.Expanded = plan.Expanded
			res.Path = lo.Map(plan.Path(), func(p spatialmath.Pose, _ int) config.Pose {
				return config.FromPose(p)
			})
		case hybridastar.IsPlanningFailure(err):
			logger.Warnw("query failed", "query", q.Name, "error", err)
			res.Error = err.Error()
		default:
			return nil, errors.Wrapf(err, "query %q", q.Name)
		}
		results = append(results, res)
	}
	return results, nil
}

func writeResults(w io.Writer, format string, results []queryResult) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case formatCSV:
		return writeCSV(w, results)
	default:
		_, err := fmt.Fprintln(w, resultTable(results))
		return err
	}
}

// writeCSV writes one row per path pose of every successful query.
func writeCSV(w io.Writer, results []queryResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"query", "index", "x", "y", "theta_degrees"}); err != nil {
		return err
	}
	for _, res := range results {
		for i, p := range res.Path {
			row := []string{
				res.Name,
				strconv.Itoa(i),
				strconv.FormatFloat(p.X, 'f', 4, 64),
				strconv.FormatFloat(p.Y, 'f', 4, 64),
				strconv.FormatFloat(p.ThetaDegrees, 'f', 2, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPose(p config.Pose) string {
	return fmt.Sprintf("(%.2f, %.2f, %.1f°)", p.X, p.Y, p.ThetaDegrees)
}

// resultTable summarises each query on one row.
func resultTable(results []queryResult) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Query", "Start", "Goal", "Cost", "Length", "Reversals", "Expanded", "Result"})
	for i, res := range results {
		if res.Error != "" {
			t.AppendRow(table.Row{i, res.Name, formatPose(res.Start), formatPose(res.Goal), "", "", "", "", res.Error})
			continue
		}
		t.AppendRow(table.Row{
			i,
			res.Name,
			formatPose(res.Start),
			formatPose(res.Goal),
			fmt.Sprintf("%.3f", res.Cost),
			fmt.Sprintf("%.3f", res.Length),
			res.DirectionChanges,
			res.Expanded,
			"ok",
		})
	}
	return t.Render()
}
