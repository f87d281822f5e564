package curves

import (
	"math"

	"go.parkplan.dev/planner/spatialmath"
)

// dubinsWord solves one Dubins word for normalized inputs and returns its three segment lengths.
type dubinsWord struct {
	steers [3]Steer
	solve  func(alpha, beta, d float64) (t, p, q float64, ok bool)
}

// Words are tried in this order; the first of equally short words wins.
var dubinsWords = []dubinsWord{
	{[3]Steer{SteerLeft, SteerStraight, SteerLeft}, dubinsLSL},
	{[3]Steer{SteerRight, SteerStraight, SteerRight}, dubinsRSR},
	{[3]Steer{SteerLeft, SteerStraight, SteerRight}, dubinsLSR},
	{[3]Steer{SteerRight, SteerStraight, SteerLeft}, dubinsRSL},
	{[3]Steer{SteerRight, SteerLeft, SteerRight}, dubinsRLR},
	{[3]Steer{SteerLeft, SteerRight, SteerLeft}, dubinsLRL},
}

// Dubins computes shortest forward-only paths with a minimum turning radius.
type Dubins struct {
	Radius float64
}

// Name returns DubinsName.
func (d *Dubins) Name() string { return DubinsName }

// Shortest returns the minimum length Dubins path from start to goal.
func (d *Dubins) Shortest(start, goal spatialmath.Pose) (*Path, bool) {
	all := d.AllPaths(start, goal)
	if len(all) == 0 {
		return nil, false
	}
	best := all[0]
	for _, p := range all[1:] {
		if p.Length() < best.Length() {
			best = p
		}
	}
	return best, true
}

// AllPaths returns every feasible Dubins word from start to goal in a fixed order.
func (d *Dubins) AllPaths(start, goal spatialmath.Pose) []*Path {
	dx, dy := goal.X()-start.X(), goal.Y()-start.Y()
	dist := math.Hypot(dx, dy) / d.Radius
	heading := 0.
	if dist > 0 {
		heading = wrap2pi(math.Atan2(dy, dx))
	}
	alpha := wrap2pi(start.Theta - heading)
	beta := wrap2pi(goal.Theta - heading)

	paths := make([]*Path, 0, len(dubinsWords))
	for _, w := range dubinsWords {
		t, p, q, ok := w.solve(alpha, beta, dist)
		if !ok {
			continue
		}
		segments := make([]Segment, 0, 3)
		for i, length := range [3]float64{t, p, q} {
			if length == 0 {
				continue
			}
			segments = append(segments, Segment{Steer: w.steers[i], Length: length * d.Radius})
		}
		paths = append(paths, &Path{Start: start, Radius: d.Radius, Segments: segments})
	}
	return paths
}

// wrap2pi wraps into [0, 2pi).
func wrap2pi(theta float64) float64 {
	v := math.Mod(theta, 2*math.Pi)
	if v < 0 {
		v += 2 * math.Pi
	}
	if v >= 2*math.Pi {
		v = 0
	}
	return v
}

func dubinsLSL(alpha, beta, d float64) (t, p, q float64, ok bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	pSq := 2 + d*d - 2*math.Cos(alpha-beta) + 2*d*(sa-sb)
	if pSq < 0 {
		return 0, 0, 0, false
	}
	tmp := math.Atan2(cb-ca, d+sa-sb)
	return wrap2pi(tmp - alpha), math.Sqrt(pSq), wrap2pi(beta - tmp), true
}

func dubinsRSR(alpha, beta, d float64) (t, p, q float64, ok bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	pSq := 2 + d*d - 2*math.Cos(alpha-beta) + 2*d*(sb-sa)
	if pSq < 0 {
		return 0, 0, 0, false
	}
	tmp := math.Atan2(ca-cb, d-sa+sb)
	return wrap2pi(alpha - tmp), math.Sqrt(pSq), wrap2pi(tmp - beta), true
}

func dubinsLSR(alpha, beta, d float64) (t, p, q float64, ok bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	pSq := -2 + d*d + 2*math.Cos(alpha-beta) + 2*d*(sa+sb)
	if pSq < 0 {
		return 0, 0, 0, false
	}
	p = math.Sqrt(pSq)
	tmp := math.Atan2(-ca-cb, d+sa+sb) - math.Atan2(-2, p)
	return wrap2pi(tmp - alpha), p, wrap2pi(tmp - beta), true
}

func dubinsRSL(alpha, beta, d float64) (t, p, q float64, ok bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	pSq := -2 + d*d + 2*math.Cos(alpha-beta) - 2*d*(sa+sb)
	if pSq < 0 {
		return 0, 0, 0, false
	}
	p = math.Sqrt(pSq)
	tmp := math.Atan2(ca+cb, d-sa-sb) - math.Atan2(2, p)
	return wrap2pi(alpha - tmp), p, wrap2pi(beta - tmp), true
}

func dubinsRLR(alpha, beta, d float64) (t, p, q float64, ok bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	tmp := (6 - d*d + 2*math.Cos(alpha-beta) + 2*d*(sa-sb)) / 8
	if math.Abs(tmp) > 1 {
		return 0, 0, 0, false
	}
	phi := math.Atan2(ca-cb, d-sa+sb)
	p = wrap2pi(2*math.Pi - math.Acos(tmp))
	t = wrap2pi(alpha - phi + wrap2pi(p/2))
	q = wrap2pi(alpha - beta - t + wrap2pi(p))
	return t, p, q, true
}

func dubinsLRL(alpha, beta, d float64) (t, p, q float64, ok bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	tmp := (6 - d*d + 2*math.Cos(alpha-beta) + 2*d*(sb-sa)) / 8
	if math.Abs(tmp) > 1 {
		return 0, 0, 0, false
	}
	phi := math.Atan2(ca-cb, d+sa-sb)
	p = wrap2pi(2*math.Pi - math.Acos(tmp))
	t = wrap2pi(-alpha - phi + p/2)
	q = wrap2pi(wrap2pi(beta) - alpha - t + wrap2pi(p))
	return t, p, q, true
}
