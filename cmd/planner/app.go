package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.parkplan.dev/planner/config"
	"go.parkplan.dev/planner/logging"
)

const (
	// Flags.
	flagConfig  = "config"
	flagDebug   = "debug"
	flagLogFile = "log-file"
	flagStart   = "start"
	flagGoal    = "goal"
	flagFormat  = "format"
	flagPlot    = "plot"
	flagName    = "name"

	metaLogCloser = "log-closer"

	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "planner",
		Usage:           "plan parking maneuvers on occupancy maps",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagConfig,
				Aliases:  []string{"c"},
				Required: true,
				Usage:    "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write JSON logs to a rotating `FILE`",
			},
		},
		Before: setupLogger,
		After:  closeLogger,
		Commands: []*cli.Command{
			{
				Name:      "plan",
				Usage:     "plan between the configured queries or a single start and goal",
				UsageText: "planner --config FILE plan [--start x,y,deg --goal x,y,deg] [--format table|json|csv] [--plot out.png]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagStart,
						Usage: "start pose as `x,y,degrees`; requires --goal",
					},
					&cli.StringFlag{
						Name:  flagGoal,
						Usage: "goal pose as `x,y,degrees`; requires --start",
					},
					&cli.StringFlag{
						Name:  flagName,
						Usage: "only run the configured query with this name",
					},
					&cli.StringFlag{
						Name:  flagFormat,
						Value: formatTable,
						Usage: "output format: table, json or csv",
					},
					&cli.StringFlag{
						Name:  flagPlot,
						Usage: "render the map and every plan to `FILE` (png, svg or pdf)",
					},
				},
				Action: PlanAction,
			},
			{
				Name:  "map",
				Usage: "describe the configured map as the planner sees it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagPlot,
						Usage: "render the obstacle grid to `FILE`",
					},
				},
				Action: MapAction,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	level := logging.INFO
	if c.Bool(flagDebug) {
		level = logging.DEBUG
	}
	var (
		logger logging.Logger
		closer io.Closer
	)
	if path := c.String(flagLogFile); path != "" {
		logger, closer = logging.NewLoggerWithFile("planner", level, logging.FileConfig{
			Path:       path,
			MaxSizeMB:  64,
			MaxBackups: 2,
			Compress:   true,
		})
	} else {
		logger = logging.NewLogger("planner")
		logger.SetLevel(level)
	}
	logging.ReplaceGlobal(logger)
	c.App.Metadata = map[string]interface{}{metaLogCloser: closer}
	return nil
}

// closeLogger releases the log file, if any, and leaves a logger behind that discards everything.
func closeLogger(c *cli.Context) error {
	logging.ReplaceGlobal(logging.NewBlankLogger("planner"))
	if closer, ok := c.App.Metadata[metaLogCloser].(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// loadConfig reads the global config flag and applies the configured log level unless debug was asked for.
func loadConfig(c *cli.Context) (*config.Config, logging.Logger, error) {
	logger := logging.Global()
	cfg, err := config.Read(c.Context, c.String(flagConfig), logger)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading config %q", c.String(flagConfig))
	}
	if !c.Bool(flagDebug) {
		logger.SetLevel(cfg.Level())
	}
	return cfg, logger, nil
}
