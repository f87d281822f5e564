package costmap

import (
	"image"
	// registered for maps saved as PNG.
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/golang/geo/r2"
	// registers PGM and the other netpbm formats written by map_saver.
	_ "github.com/jbuchbinder/gopnm"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	// maps exported from image editors.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"gopkg.in/yaml.v3"
)

// MapServerConfig is the YAML description that accompanies a map image saved by a ROS map server.
type MapServerConfig struct {
	Image          string    `yaml:"image"`
	Resolution     float64   `yaml:"resolution"`
	Origin         []float64 `yaml:"origin"`
	Negate         int       `yaml:"negate"`
	OccupiedThresh float64   `yaml:"occupied_thresh"`
	FreeThresh     float64   `yaml:"free_thresh"`
}

// Validate checks the fields used to interpret the image.
func (c *MapServerConfig) Validate() error {
	var err error
	if c.Image == "" {
		err = multierr.Append(err, errors.New("image is required"))
	}
	if !(c.Resolution > 0) {
		err = multierr.Append(err, errors.Errorf("resolution must be positive, got %v", c.Resolution))
	}
	if len(c.Origin) < 2 {
		err = multierr.Append(err, errors.Errorf("origin needs at least x and y, got %v", c.Origin))
	}
	if !(c.FreeThresh >= 0 && c.FreeThresh <= c.OccupiedThresh && c.OccupiedThresh <= 1) {
		err = multierr.Append(err, errors.Errorf(
			"thresholds must satisfy 0 <= free_thresh (%v) <= occupied_thresh (%v) <= 1", c.FreeThresh, c.OccupiedThresh))
	}
	return err
}

// LoadMapServer reads a map saved in ROS map_server format: a YAML file naming a grayscale image
// relative to itself. Each pixel is classified by its darkness p, where p = (255 - value) / 255 unless
// negate is set: p > occupied_thresh is an obstacle, p < free_thresh is free, anything else unknown.
// Image rows run top to bottom, so the last row is the one at the origin.
func LoadMapServer(yamlPath string) (*OccupancyGrid, error) {
	//nolint:gosec
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, err
	}
	var cfg MapServerConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding map description %q", yamlPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "map description %q", yamlPath)
	}

	imagePath := cfg.Image
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(yamlPath), imagePath)
	}
	//nolint:gosec
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding map image %q", imagePath)
	}
	grid := FromImage(img, cfg)
	if err := grid.Validate(); err != nil {
		return nil, errors.Wrapf(err, "map image %q (%s)", imagePath, format)
	}
	return grid, nil
}

// FromImage converts a map image into an occupancy grid using the thresholds in cfg.
func FromImage(img image.Image, cfg MapServerConfig) *OccupancyGrid {
	bounds := img.Bounds()
	grid := &OccupancyGrid{
		Origin:     r2.Point{X: cfg.Origin[0], Y: cfg.Origin[1]},
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Resolution: cfg.Resolution,
		Data:       make([]int8, bounds.Dx()*bounds.Dy()),
	}
	for row := 0; row < grid.Height; row++ {
		iy := grid.Height - 1 - row
		for ix := 0; ix < grid.Width; ix++ {
			gray, _, _, _ := img.At(bounds.Min.X+ix, bounds.Min.Y+row).RGBA()
			// RGBA scales channels to 16 bits.
			value := float64(gray>>8) / 255
			darkness := 1 - value
			if cfg.Negate != 0 {
				darkness = value
			}
			cell := Unknown
			switch {
			case darkness > cfg.OccupiedThresh:
				cell = Occupied
			case darkness < cfg.FreeThresh:
				cell = Free
			}
			grid.Data[iy*grid.Width+ix] = cell
		}
	}
	return grid
}
