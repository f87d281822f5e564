package hybridastar

import (
	"go.parkplan.dev/planner/motionplan/curves"
	"go.parkplan.dev/planner/spatialmath"
)

// SegmentKind says how one waypoint is joined to the next.
type SegmentKind int

const (
	// SegmentPrimitive is a single motion primitive.
	SegmentPrimitive SegmentKind = iota
	// SegmentShot is the analytic curve closing the path to the goal.
	SegmentShot
)

func (k SegmentKind) String() string {
	if k == SegmentShot {
		return "shot"
	}
	return "primitive"
}

// MarshalText encodes the kind by name.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment joins two consecutive waypoints of a Plan.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	// Primitive is the motion driven when Kind is SegmentPrimitive.
	Primitive Primitive `json:"-"`
	// Curve is the analytic curve when Kind is SegmentShot.
	Curve *curves.Path `json:"-"`
	// Poses are collision checked samples along the segment. The first waypoint is not included; the
	// last pose is the next waypoint.
	Poses []spatialmath.Pose `json:"poses"`
}

// Plan is a successful search result. Waypoints holds the start, every expanded node on the solution
// branch and the goal; Segments[i] joins Waypoints[i] to Waypoints[i+1].
type Plan struct {
	Waypoints []spatialmath.Pose `json:"waypoints"`
	Segments  []Segment          `json:"segments"`
	// Cost is the accumulated step cost including penalties.
	Cost float64 `json:"cost"`
	// Expanded is the number of cells the search expanded.
	Expanded int `json:"expanded"`
}

// Path returns the dense pose sequence from the start to the goal.
func (p *Plan) Path() []spatialmath.Pose {
	if len(p.Waypoints) == 0 {
		return nil
	}
	n := 1
	for _, seg := range p.Segments {
		n += len(seg.Poses)
	}
	path := make([]spatialmath.Pose, 0, n)
	path = append(path, p.Waypoints[0])
	for _, seg := range p.Segments {
		path = append(path, seg.Poses...)
	}
	return path
}

// Start returns the first pose of the plan.
func (p *Plan) Start() spatialmath.Pose {
	return p.Waypoints[0]
}

// Goal returns the last pose of the plan.
func (p *Plan) Goal() spatialmath.Pose {
	return p.Waypoints[len(p.Waypoints)-1]
}

// Length approximates the distance driven along the plan by summing the chords between samples.
func (p *Plan) Length() float64 {
	var total float64
	prev := p.Waypoints[0]
	for _, pose := range p.Path()[1:] {
		total += prev.Distance(pose)
		prev = pose
	}
	return total
}

// DirectionChanges returns the number of switches between forward and reverse travel.
func (p *Plan) DirectionChanges() int {
	var changes int
	var last Direction
	record := func(d Direction) {
		if last != 0 && d != last {
			changes++
		}
		last = d
	}
	for _, seg := range p.Segments {
		if seg.Kind == SegmentPrimitive {
			record(seg.Primitive.Direction)
			continue
		}
		for _, cs := range seg.Curve.Segments {
			if cs.Length < 0 {
				record(Reverse)
			} else if cs.Length > 0 {
				record(Forward)
			}
		}
	}
	return changes
}
