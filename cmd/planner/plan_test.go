package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.parkplan.dev/planner/config"
	"go.parkplan.dev/planner/logging"
)

func TestParsePose(t *testing.T) {
	p, err := parsePose("1.5, -2,90")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, config.Pose{X: 1.5, Y: -2, ThetaDegrees: 90})

	_, err = parsePose("1,2")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = parsePose("1,two,3")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSelectQueries(t *testing.T) {
	configured := []config.Query{
		{Start: config.Pose{X: 1}, Goal: config.Pose{X: 2}},
		{Name: "bay", Start: config.Pose{X: 3}, Goal: config.Pose{X: 4}},
	}

	queries, err := selectQueries(configured, "", "", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, queries, test.ShouldHaveLength, 2)
	test.That(t, queries[0].Name, test.ShouldEqual, "query-0")
	test.That(t, queries[1].Name, test.ShouldEqual, "bay")
	test.That(t, configured[0].Name, test.ShouldEqual, "")

	queries, err = selectQueries(configured, "", "", "bay")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, queries, test.ShouldHaveLength, 1)
	test.That(t, queries[0].Start.X, test.ShouldEqual, 3.)

	queries, err = selectQueries(configured, "0,0,0", "5,0,180", "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, queries, test.ShouldResemble, []config.Query{
		{Name: "cli", Start: config.Pose{}, Goal: config.Pose{X: 5, ThetaDegrees: 180}},
	})

	_, err = selectQueries(configured, "0,0,0", "", "")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = selectQueries(configured, "", "", "missing")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = selectQueries(nil, "", "", "")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWriteResults(t *testing.T) {
	results := []queryResult{
		{
			Name:  "ok",
			Start: config.Pose{X: 0},
			Goal:  config.Pose{X: 1},
			Cost:  1,
			Path:  []config.Pose{{X: 0}, {X: 0.5}, {X: 1}},
		},
		{Name: "bad", Error: "endpoint is in collision"},
	}

	var buf bytes.Buffer
	test.That(t, writeResults(&buf, formatCSV, results), test.ShouldBeNil)
	rows, err := csv.NewReader(&buf).ReadAll()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rows, test.ShouldHaveLength, 4)
	test.That(t, rows[0], test.ShouldResemble, []string{"query", "index", "x", "y", "theta_degrees"})
	test.That(t, rows[2], test.ShouldResemble, []string{"ok", "1", "0.5000", "0.0000", "0.00"})

	buf.Reset()
	test.That(t, writeResults(&buf, formatTable, results), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "endpoint is in collision")
	test.That(t, buf.String(), test.ShouldContainSubstring, "1.000")
}

// writeLot writes an empty 20m x 10m map and a config with the given queries next to it.
func writeLot(t *testing.T, queries string) string {
	t.Helper()
	dir := t.TempDir()
	cells := strings.TrimSuffix(strings.Repeat("0,", 200), ",")
	grid := fmt.Sprintf(`{"info": {"resolution": 1, "width": 20, "height": 10}, "data": [%s]}`, cells)
	test.That(t, os.WriteFile(filepath.Join(dir, "lot.json"), []byte(grid), 0o600), test.ShouldBeNil)

	cfg := fmt.Sprintf(`{"map": {"path": "lot.json"}, "log_level": "error", "queries": %s}`, queries)
	path := filepath.Join(dir, "planner.json")
	test.That(t, os.WriteFile(path, []byte(cfg), 0o600), test.ShouldBeNil)
	return path
}

func TestPlanCommand(t *testing.T) {
	cfgPath := writeLot(t, `[{"name": "straight", "start": {"x": 2, "y": 5}, "goal": {"x": 6, "y": 5}}]`)
	plotPath := filepath.Join(t.TempDir(), "plans.png")

	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{
		"planner", "--config", cfgPath, "plan", "--format", "json", "--plot", plotPath,
	})
	test.That(t, err, test.ShouldBeNil)

	var results []queryResult
	test.That(t, json.Unmarshal(out.Bytes(), &results), test.ShouldBeNil)
	test.That(t, results, test.ShouldHaveLength, 1)
	res := results[0]
	test.That(t, res.Name, test.ShouldEqual, "straight")
	test.That(t, res.Error, test.ShouldEqual, "")
	test.That(t, res.Cost, test.ShouldAlmostEqual, 4.)
	test.That(t, res.Path[0].X, test.ShouldAlmostEqual, 2.)
	test.That(t, res.Path[len(res.Path)-1].X, test.ShouldAlmostEqual, 6.)
	test.That(t, res.Path[len(res.Path)-1].Y, test.ShouldAlmostEqual, 5.)

	info, err := os.Stat(plotPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}

func TestPlanCommandReportsFailures(t *testing.T) {
	cfgPath := writeLot(t, `[
		{"name": "fits", "start": {"x": 2, "y": 5}, "goal": {"x": 5, "y": 5}},
		{"name": "off map", "start": {"x": 2, "y": 5}, "goal": {"x": 25, "y": 5}}
	]`)

	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{"planner", "--config", cfgPath, "plan"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "1 of 2 queries failed")
	test.That(t, out.String(), test.ShouldContainSubstring, "fits")
	test.That(t, out.String(), test.ShouldContainSubstring, "off map")

	err = newApp(&out, &errOut).Run([]string{"planner", "--config", cfgPath, "plan", "--format", "xml"})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMapCommand(t *testing.T) {
	cfgPath := writeLot(t, `[]`)
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{"planner", "--config", cfgPath, "map"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "20x10")
	test.That(t, out.String(), test.ShouldContainSubstring, "100x50")
}

func TestLogFile(t *testing.T) {
	cfgPath := writeLot(t, `[]`)
	logPath := filepath.Join(t.TempDir(), "planner.log")
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{"planner", "--config", cfgPath, "--debug", "--log-file", logPath, "map"})
	test.That(t, err, test.ShouldBeNil)
	// the closed file must not be reopened by later writes to the global logger
	logging.Global().Info("after exit")

	//nolint:gosec
	contents, err := os.ReadFile(logPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, `"msg":"map loaded"`)
	test.That(t, string(contents), test.ShouldContainSubstring, `"obstacle_cells":0`)
	test.That(t, string(contents), test.ShouldNotContainSubstring, "after exit")
}
