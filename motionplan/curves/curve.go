// Package curves computes closed-form shortest paths for vehicles with a minimum turning radius.
// Two families are provided: Reeds-Shepp curves, which may drive in reverse, and forward-only Dubins curves.
package curves

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"go.parkplan.dev/planner/spatialmath"
)

// Steer is the turning direction held through a segment.
type Steer int8

// Steering directions. The values double as the sign of the segment curvature.
const (
	SteerRight    Steer = -1
	SteerStraight Steer = 0
	SteerLeft     Steer = 1
)

func (s Steer) String() string {
	switch s {
	case SteerLeft:
		return "L"
	case SteerRight:
		return "R"
	default:
		return "S"
	}
}

// Segment is one constant-curvature piece of a Path. Length is signed: negative lengths are driven in reverse.
type Segment struct {
	Steer  Steer
	Length float64
}

// Path is a sequence of segments starting at Start, driven with turning radius Radius.
type Path struct {
	Start    spatialmath.Pose
	Radius   float64
	Segments []Segment
}

// Length returns the total distance travelled along the path, counting reverse motion as positive.
func (p *Path) Length() float64 {
	var total float64
	for _, seg := range p.Segments {
		total += math.Abs(seg.Length)
	}
	return total
}

// Word describes the path as steering letters with + for forward and - for reverse, e.g. "L+S+R-".
func (p *Path) Word() string {
	var sb strings.Builder
	for _, seg := range p.Segments {
		sb.WriteString(seg.Steer.String())
		if seg.Length < 0 {
			sb.WriteByte('-')
		} else {
			sb.WriteByte('+')
		}
	}
	return sb.String()
}

// HasReverse reports whether any segment is driven in reverse.
func (p *Path) HasReverse() bool {
	for _, seg := range p.Segments {
		if seg.Length < 0 {
			return true
		}
	}
	return false
}

// End returns the pose reached at the end of the path.
func (p *Path) End() spatialmath.Pose {
	return p.Interpolate(p.Length())
}

// Interpolate returns the pose after travelling distance s along the path. s is clamped to [0, Length].
func (p *Path) Interpolate(s float64) spatialmath.Pose {
	pose := p.Start
	if s <= 0 {
		return pose
	}
	for _, seg := range p.Segments {
		l := math.Abs(seg.Length)
		step := math.Min(s, l)
		if seg.Length < 0 {
			step = -step
		}
		pose = Arc(pose, float64(seg.Steer)/p.Radius, step)
		s -= l
		if s <= 0 {
			break
		}
	}
	return pose
}

// Sample returns poses spaced at most step apart along the path, excluding the start pose and
// including the end pose. A zero-length path yields no samples.
func (p *Path) Sample(step float64) []spatialmath.Pose {
	length := p.Length()
	if length <= 0 || !(step > 0) {
		return nil
	}
	n := int(math.Ceil(length/step - 1e-9))
	if n < 1 {
		n = 1
	}
	poses := make([]spatialmath.Pose, 0, n)
	for i := 1; i <= n; i++ {
		poses = append(poses, p.Interpolate(length*float64(i)/float64(n)))
	}
	return poses
}

// Arc moves pose a signed distance s along a circle of the given curvature (positive turns left).
// Zero curvature moves along a straight line.
func Arc(pose spatialmath.Pose, curvature, s float64) spatialmath.Pose {
	x, y, theta := pose.X(), pose.Y(), pose.Theta
	if curvature == 0 {
		return spatialmath.NewPose(x+s*math.Cos(theta), y+s*math.Sin(theta), theta)
	}
	dtheta := curvature * s
	return spatialmath.NewPose(
		x+(math.Sin(theta+dtheta)-math.Sin(theta))/curvature,
		y+(math.Cos(theta)-math.Cos(theta+dtheta))/curvature,
		theta+dtheta,
	)
}

// Family computes shortest paths between poses for one curve family.
type Family interface {
	// Name identifies the family, as accepted by NewFamily.
	Name() string
	// Shortest returns the shortest path from start to goal. ok is false when the family has no path.
	Shortest(start, goal spatialmath.Pose) (path *Path, ok bool)
}

// Family names accepted by NewFamily.
const (
	ReedsSheppName = "reeds_shepp"
	DubinsName     = "dubins"
)

// NewFamily returns the named curve family with the given turning radius.
func NewFamily(name string, radius float64) (Family, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, errors.Errorf("turning radius must be positive and finite, got %v", radius)
	}
	switch name {
	case ReedsSheppName, "":
		return &ReedsShepp{Radius: radius}, nil
	case DubinsName:
		return &Dubins{Radius: radius}, nil
	default:
		return nil, errors.Errorf("unknown curve family %q", name)
	}
}

// normalize expresses goal in start's frame scaled to a unit turning radius.
func normalize(start, goal spatialmath.Pose, radius float64) (x, y, phi float64) {
	rel := start.Relative(goal)
	return rel.X() / radius, rel.Y() / radius, rel.Theta
}

// mod2pi wraps x into [-pi, pi] keeping the sign convention of math.Mod.
func mod2pi(x float64) float64 {
	v := math.Mod(x, 2*math.Pi)
	if v < -math.Pi {
		v += 2 * math.Pi
	} else if v > math.Pi {
		v -= 2 * math.Pi
	}
	return v
}

func polar(x, y float64) (r, theta float64) {
	return math.Hypot(x, y), math.Atan2(y, x)
}
