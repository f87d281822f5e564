// Package config defines the file format used to configure the planner and the queries it runs.
package config

import (
	"math"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.parkplan.dev/planner/costmap"
	"go.parkplan.dev/planner/logging"
	"go.parkplan.dev/planner/motionplan/hybridastar"
	"go.parkplan.dev/planner/spatialmath"
	"go.parkplan.dev/planner/utils"
)

// Map file formats.
const (
	FormatJSON      = "json"
	FormatMapServer = "map_server"
)

// AttributeMap holds free form attributes decoded later into a typed structure.
type AttributeMap map[string]interface{}

// Config is the top level planner configuration.
type Config struct {
	ConfigFilePath string `json:"-"`

	Map      MapConfig    `json:"map"`
	Planner  AttributeMap `json:"planner,omitempty"`
	LogLevel string       `json:"log_level,omitempty"`
	Queries  []Query      `json:"queries,omitempty"`

	// PlannerOptions are the planner attributes decoded over the defaults. Set by Ensure.
	PlannerOptions hybridastar.Options `json:"-"`
}

// MapConfig says where the map comes from and how to rasterise it.
type MapConfig struct {
	Path string `json:"path"`

	// Format is json or map_server. When empty it is inferred from the file extension.
	Format string `json:"format,omitempty"`

	// MapGridResolution overrides the planner's obstacle grid resolution when positive.
	MapGridResolution float64 `json:"map_grid_resolution,omitempty"`

	// UnknownIsFree lets the planner drive through unknown cells, which are obstacles by default.
	UnknownIsFree bool `json:"unknown_is_free,omitempty"`
}

// Pose is a pose as written in configuration, with the heading in degrees.
type Pose struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	ThetaDegrees float64 `json:"theta_degrees"`
}

// Pose converts to a planner pose.
func (p Pose) Pose() spatialmath.Pose {
	return spatialmath.NewPoseDegrees(p.X, p.Y, p.ThetaDegrees)
}

// FromPose converts a planner pose to its configuration form.
func FromPose(p spatialmath.Pose) Pose {
	return Pose{X: p.X(), Y: p.Y(), ThetaDegrees: utils.RadToDeg(p.Theta)}
}

// Query is one start and goal pair to plan between.
type Query struct {
	Name  string `json:"name,omitempty"`
	Start Pose   `json:"start"`
	Goal  Pose   `json:"goal"`
}

// Ensure resolves defaults and relative paths, decodes the planner attributes and validates the
// result, returning every problem found.
func (c *Config) Ensure(logger logging.Logger) error {
	if c.Map.Path != "" && !filepath.IsAbs(c.Map.Path) && c.ConfigFilePath != "" {
		c.Map.Path = filepath.Join(filepath.Dir(c.ConfigFilePath), c.Map.Path)
	}
	if c.Map.Format == "" {
		c.Map.Format = inferFormat(c.Map.Path)
	}

	var err error
	opts, decodeErr := DecodePlannerOptions(c.Planner)
	if decodeErr != nil {
		err = multierr.Append(err, decodeErr)
	} else {
		if c.Map.MapGridResolution > 0 {
			opts.MapGridResolution = c.Map.MapGridResolution
		}
		c.PlannerOptions = opts
		err = multierr.Append(err, opts.Validate())
	}

	if c.Map.Path == "" {
		err = multierr.Append(err, errors.New("map.path is required"))
	}
	switch c.Map.Format {
	case FormatJSON, FormatMapServer:
	default:
		err = multierr.Append(err, errors.Errorf("map.format %q must be %q or %q", c.Map.Format, FormatJSON, FormatMapServer))
	}
	if _, levelErr := logging.LevelFromString(c.LogLevel); levelErr != nil {
		err = multierr.Append(err, levelErr)
	}
	if err == nil {
		logger.Debugw("config ensured",
			"map", c.Map.Path,
			"format", c.Map.Format,
			"queries", len(c.Queries),
		)
	}
	return err
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() logging.Level {
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// DecodePlannerOptions decodes planner attributes over the default options. Unknown attributes are
// rejected so that misspelt keys do not silently fall back to defaults, and integer attributes must
// be whole numbers.
func DecodePlannerOptions(attributes AttributeMap) (hybridastar.Options, error) {
	opts := hybridastar.NewDefaultOptions()
	if len(attributes) == 0 {
		return opts, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &opts,
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncKind(rejectFractionalInts),
	})
	if err != nil {
		return opts, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return opts, errors.Wrap(err, "decoding planner attributes")
	}
	return opts, nil
}

// rejectFractionalInts stops mapstructure from truncating JSON numbers into integer fields.
func rejectFractionalInts(from, to reflect.Kind, data interface{}) (interface{}, error) {
	if from != reflect.Float64 && from != reflect.Float32 {
		return data, nil
	}
	switch to {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	v := reflect.ValueOf(data).Float()
	if v != math.Trunc(v) {
		return nil, errors.Errorf("%v is not a whole number", v)
	}
	return data, nil
}

// LoadMap reads the configured map and applies the unknown cell policy.
func (m MapConfig) LoadMap() (*costmap.OccupancyGrid, error) {
	var (
		grid *costmap.OccupancyGrid
		err  error
	)
	switch m.Format {
	case FormatMapServer:
		grid, err = costmap.LoadMapServer(m.Path)
	default:
		grid, err = costmap.LoadJSON(m.Path)
	}
	if err != nil {
		return nil, err
	}
	grid.UnknownIsFree = m.UnknownIsFree
	return grid, nil
}

func inferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatMapServer
	case ".json":
		return FormatJSON
	default:
		return ""
	}
}
