package hybridastar

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"go.parkplan.dev/planner/motionplan/curves"
	"go.parkplan.dev/planner/utils"
)

// default values for planner options.
const (
	// maximum steering angle either side of straight, in degrees.
	defaultSteeringAngle = 10.

	// number of steering angles per side in addition to straight.
	defaultSteeringAngleDiscreteNum = 1

	// distance between front and rear axles, in meters.
	defaultWheelBase = 1.

	// arc length of one motion primitive, in meters.
	defaultSegmentLength = 1.6

	// number of collision samples along one motion primitive.
	defaultSegmentLengthDiscreteNum = 8

	defaultSteeringPenalty       = 1.5
	defaultSteeringChangePenalty = 2.
	defaultReversingPenalty      = 2.

	// straight-line distance to the goal under which an analytic shot is attempted.
	defaultShotDistance = 5.

	// resolution of the obstacle grid, in meters.
	defaultMapGridResolution = 0.2

	// number of heading sectors in a search cell. 5 degree bins.
	defaultHeadingBins = 72
)

// Footprint is a rectangular vehicle outline in the rear axle frame. The rectangle spans
// [-RearOverhang, Length-RearOverhang] along the heading and [-Width/2, Width/2] across it.
type Footprint struct {
	Length       float64 `json:"length"`
	Width        float64 `json:"width"`
	RearOverhang float64 `json:"rear_overhang"`
}

// IsZero reports whether no footprint is configured, in which case poses are checked as points.
func (f Footprint) IsZero() bool {
	return f == Footprint{}
}

// Options are the tunable parameters of the planner. Angles are in degrees, distances in meters.
type Options struct {
	SteeringAngle            float64   `json:"steering_angle"`
	SteeringAngleDiscreteNum int       `json:"steering_angle_discrete_num"`
	WheelBase                float64   `json:"wheel_base"`
	SegmentLength            float64   `json:"segment_length"`
	SegmentLengthDiscreteNum int       `json:"segment_length_discrete_num"`
	SteeringPenalty          float64   `json:"steering_penalty"`
	SteeringChangePenalty    float64   `json:"steering_change_penalty"`
	ReversingPenalty         float64   `json:"reversing_penalty"`
	ShotDistance             float64   `json:"shot_distance"`
	MapGridResolution        float64   `json:"map_grid_resolution"`
	HeadingBins              int       `json:"heading_bins"`
	AnalyticCurve            string    `json:"analytic_curve"`
	MaxExpansions            int       `json:"max_expansions"`
	Footprint                Footprint `json:"footprint"`
}

// NewDefaultOptions returns the options the planner uses when nothing else is configured.
func NewDefaultOptions() Options {
	return Options{
		SteeringAngle:            defaultSteeringAngle,
		SteeringAngleDiscreteNum: defaultSteeringAngleDiscreteNum,
		WheelBase:                defaultWheelBase,
		SegmentLength:            defaultSegmentLength,
		SegmentLengthDiscreteNum: defaultSegmentLengthDiscreteNum,
		SteeringPenalty:          defaultSteeringPenalty,
		SteeringChangePenalty:    defaultSteeringChangePenalty,
		ReversingPenalty:         defaultReversingPenalty,
		ShotDistance:             defaultShotDistance,
		MapGridResolution:        defaultMapGridResolution,
		HeadingBins:              defaultHeadingBins,
		AnalyticCurve:            curves.ReedsSheppName,
	}
}

// Validate returns every problem with the options combined into one error.
func (o Options) Validate() error {
	var err error
	positive := func(field string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			err = multierr.Append(err, NewConfigurationError(field, "must be positive and finite"))
		}
	}
	atLeast := func(field string, v, lower float64) {
		if !(v >= lower) || math.IsInf(v, 0) {
			err = multierr.Append(err, NewConfigurationError(field, fmt.Sprintf("must be finite and at least %v", lower)))
		}
	}

	if !(o.SteeringAngle > 0 && o.SteeringAngle < 90) {
		err = multierr.Append(err, NewConfigurationError("steering_angle", "must be within (0, 90) degrees"))
	}
	if o.SteeringAngleDiscreteNum < 1 {
		err = multierr.Append(err, NewConfigurationError("steering_angle_discrete_num", "must be at least 1"))
	}
	positive("wheel_base", o.WheelBase)
	positive("segment_length", o.SegmentLength)
	if o.SegmentLengthDiscreteNum < 1 {
		err = multierr.Append(err, NewConfigurationError("segment_length_discrete_num", "must be at least 1"))
	}
	atLeast("steering_penalty", o.SteeringPenalty, 1)
	atLeast("reversing_penalty", o.ReversingPenalty, 1)
	atLeast("steering_change_penalty", o.SteeringChangePenalty, 0)
	positive("shot_distance", o.ShotDistance)
	positive("map_grid_resolution", o.MapGridResolution)
	if o.HeadingBins < 4 {
		err = multierr.Append(err, NewConfigurationError("heading_bins", "must be at least 4"))
	}
	switch o.AnalyticCurve {
	case curves.ReedsSheppName, curves.DubinsName, "":
	default:
		err = multierr.Append(err, NewConfigurationError("analytic_curve", "must be reeds_shepp or dubins"))
	}
	if o.MaxExpansions < 0 {
		err = multierr.Append(err, NewConfigurationError("max_expansions", "must not be negative"))
	}
	if !o.Footprint.IsZero() {
		positive("footprint.length", o.Footprint.Length)
		positive("footprint.width", o.Footprint.Width)
		atLeast("footprint.rear_overhang", o.Footprint.RearOverhang, 0)
	}
	return err
}

// MaxSteer returns the steering limit in radians.
func (o Options) MaxSteer() float64 {
	return utils.DegToRad(o.SteeringAngle)
}

// TurningRadius returns the minimum turning radius of the vehicle at full lock.
func (o Options) TurningRadius() float64 {
	return o.WheelBase / math.Tan(o.MaxSteer())
}

// sampleStep is the spacing used to sample analytic curves, matching primitive sampling.
func (o Options) sampleStep() float64 {
	return o.SegmentLength / float64(o.SegmentLengthDiscreteNum)
}
