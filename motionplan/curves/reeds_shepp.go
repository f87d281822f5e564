package curves

import (
	"math"

	"go.parkplan.dev/planner/spatialmath"
)

// rsZero absorbs rounding when checking segment signs.
const rsZero = 10 * 2.220446049250313e-16

const (
	lt = SteerLeft
	rt = SteerRight
	st = SteerStraight
)

// rsWords are the steering patterns of the Reeds-Shepp families. Segment signs (direction of travel)
// are carried by the lengths, so one pattern covers every gear combination of its family.
var rsWords = [18][]Steer{
	{lt, rt, lt},
	{rt, lt, rt},
	{lt, rt, lt, rt},
	{rt, lt, rt, lt},
	{lt, rt, st, lt},
	{rt, lt, st, rt},
	{lt, st, rt, lt},
	{rt, st, lt, rt},
	{lt, rt, st, rt},
	{rt, lt, st, lt},
	{rt, st, rt, lt},
	{lt, st, lt, rt},
	{lt, st, rt},
	{rt, st, lt},
	{lt, st, lt},
	{rt, st, rt},
	{lt, rt, st, lt, rt},
	{rt, lt, st, rt, lt},
}

// ReedsShepp computes shortest paths for a car that may drive forwards and backwards with a minimum
// turning radius. Every pair of poses is connected.
type ReedsShepp struct {
	Radius float64
}

// Name returns ReedsSheppName.
func (rs *ReedsShepp) Name() string { return ReedsSheppName }

// Shortest returns the minimum length Reeds-Shepp path from start to goal.
func (rs *ReedsShepp) Shortest(start, goal spatialmath.Pose) (*Path, bool) {
	x, y, phi := normalize(start, goal, rs.Radius)
	best := rsSearch{length: math.Inf(1), word: -1}
	best.csc(x, y, phi)
	best.ccc(x, y, phi)
	best.cccc(x, y, phi)
	best.ccsc(x, y, phi)
	best.ccscc(x, y, phi)
	if best.word < 0 {
		return nil, false
	}

	word := rsWords[best.word]
	segments := make([]Segment, 0, len(word))
	for i, steer := range word {
		if best.lengths[i] == 0 {
			continue
		}
		segments = append(segments, Segment{Steer: steer, Length: best.lengths[i] * rs.Radius})
	}
	return &Path{Start: start, Radius: rs.Radius, Segments: segments}, true
}

// rsSearch keeps the shortest candidate seen so far. Candidates are evaluated in a fixed order and only
// strictly shorter ones replace the incumbent, so ties always resolve the same way.
type rsSearch struct {
	length  float64
	word    int
	lengths []float64
}

func (rs *rsSearch) consider(word int, lengths ...float64) {
	var total float64
	for _, v := range lengths {
		total += math.Abs(v)
	}
	if total < rs.length {
		rs.length = total
		rs.word = word
		rs.lengths = lengths
	}
}

func tauOmega(u, v, xi, eta, phi float64) (tau, omega float64) {
	delta := mod2pi(u - v)
	a := math.Sin(u) - math.Sin(delta)
	b := math.Cos(u) - math.Cos(delta) - 1
	t1 := math.Atan2(eta*a-xi*b, xi*a+eta*b)
	t2 := 2*(math.Cos(delta)-math.Cos(v)-math.Cos(u)) + 3
	if t2 < 0 {
		tau = mod2pi(t1 + math.Pi)
	} else {
		tau = mod2pi(t1)
	}
	omega = mod2pi(tau - u + v - phi)
	return tau, omega
}

// The solvers below follow the numbered formulas of Reeds and Shepp, "Optimal paths for a car that goes
// both forwards and backwards" (1990), section 8, with the published corrections.

// lpSpLp is formula 8.1.
func lpSpLp(x, y, phi float64) (t, u, v float64, ok bool) {
	u, t = polar(x-math.Sin(phi), y-1+math.Cos(phi))
	if t >= -rsZero {
		v = mod2pi(phi - t)
		if v >= -rsZero {
			return t, u, v, true
		}
	}
	return 0, 0, 0, false
}

// lpSpRp is formula 8.2.
func lpSpRp(x, y, phi float64) (t, u, v float64, ok bool) {
	u1, t1 := polar(x+math.Sin(phi), y-1-math.Cos(phi))
	u1 *= u1
	if u1 < 4 {
		return 0, 0, 0, false
	}
	u = math.Sqrt(u1 - 4)
	t = mod2pi(t1 + math.Atan2(2, u))
	v = mod2pi(t - phi)
	return t, u, v, t >= -rsZero && v >= -rsZero
}

// lpRmL is formula 8.3/8.4.
func lpRmL(x, y, phi float64) (t, u, v float64, ok bool) {
	u1, theta := polar(x-math.Sin(phi), y-1+math.Cos(phi))
	if u1 > 4 {
		return 0, 0, 0, false
	}
	u = -2 * math.Asin(0.25*u1)
	t = mod2pi(theta + 0.5*u + math.Pi)
	v = mod2pi(phi - t + u)
	return t, u, v, t >= -rsZero && u <= rsZero
}

// lpRupLumRm is formula 8.7.
func lpRupLumRm(x, y, phi float64) (t, u, v float64, ok bool) {
	xi, eta := x+math.Sin(phi), y-1-math.Cos(phi)
	rho := 0.25 * (2 + math.Hypot(xi, eta))
	if rho > 1 {
		return 0, 0, 0, false
	}
	u = math.Acos(rho)
	t, v = tauOmega(u, -u, xi, eta, phi)
	return t, u, v, t >= -rsZero && v <= rsZero
}

// lpRumLumRp is formula 8.8.
func lpRumLumRp(x, y, phi float64) (t, u, v float64, ok bool) {
	xi, eta := x+math.Sin(phi), y-1-math.Cos(phi)
	rho := (20 - xi*xi - eta*eta) / 16
	if rho < 0 || rho > 1 {
		return 0, 0, 0, false
	}
	u = -math.Acos(rho)
	if u < -0.5*math.Pi {
		return 0, 0, 0, false
	}
	t, v = tauOmega(u, u, xi, eta, phi)
	return t, u, v, t >= -rsZero && v >= -rsZero
}

// lpRmSmLm is formula 8.9.
func lpRmSmLm(x, y, phi float64) (t, u, v float64, ok bool) {
	rho, theta := polar(x-math.Sin(phi), y-1+math.Cos(phi))
	if rho < 2 {
		return 0, 0, 0, false
	}
	root := math.Sqrt(rho*rho - 4)
	u = 2 - root
	t = mod2pi(theta + math.Atan2(root, -2))
	v = mod2pi(phi - 0.5*math.Pi - t)
	return t, u, v, t >= -rsZero && u <= rsZero && v <= rsZero
}

// lpRmSmRm is formula 8.10.
func lpRmSmRm(x, y, phi float64) (t, u, v float64, ok bool) {
	xi, eta := x+math.Sin(phi), y-1-math.Cos(phi)
	rho, theta := polar(-eta, xi)
	if rho < 2 {
		return 0, 0, 0, false
	}
	t = theta
	u = 2 - rho
	v = mod2pi(t + 0.5*math.Pi - phi)
	return t, u, v, t >= -rsZero && u <= rsZero && v <= rsZero
}

// lpRmSLmRp is formula 8.11.
func lpRmSLmRp(x, y, phi float64) (t, u, v float64, ok bool) {
	xi, eta := x+math.Sin(phi), y-1-math.Cos(phi)
	rho, _ := polar(xi, eta)
	if rho < 2 {
		return 0, 0, 0, false
	}
	u = 4 - math.Sqrt(rho*rho-4)
	if u > rsZero {
		return 0, 0, 0, false
	}
	t = mod2pi(math.Atan2((4-u)*xi-2*eta, -2*xi+(u-4)*eta))
	v = mod2pi(t - phi)
	return t, u, v, t >= -rsZero && v >= -rsZero
}

// Each family is tried on the goal as given, time-flipped (-x, y, -phi), reflected (x, -y, -phi) and
// both; flipping negates the segment lengths and reflecting swaps left and right in the word.

func (rs *rsSearch) csc(x, y, phi float64) {
	if t, u, v, ok := lpSpLp(x, y, phi); ok {
		rs.consider(14, t, u, v)
	}
	if t, u, v, ok := lpSpLp(-x, y, -phi); ok {
		rs.consider(14, -t, -u, -v)
	}
	if t, u, v, ok := lpSpLp(x, -y, -phi); ok {
		rs.consider(15, t, u, v)
	}
	if t, u, v, ok := lpSpLp(-x, -y, phi); ok {
		rs.consider(15, -t, -u, -v)
	}
	if t, u, v, ok := lpSpRp(x, y, phi); ok {
		rs.consider(12, t, u, v)
	}
	if t, u, v, ok := lpSpRp(-x, y, -phi); ok {
		rs.consider(12, -t, -u, -v)
	}
	if t, u, v, ok := lpSpRp(x, -y, -phi); ok {
		rs.consider(13, t, u, v)
	}
	if t, u, v, ok := lpSpRp(-x, -y, phi); ok {
		rs.consider(13, -t, -u, -v)
	}
}

func (rs *rsSearch) ccc(x, y, phi float64) {
	if t, u, v, ok := lpRmL(x, y, phi); ok {
		rs.consider(0, t, u, v)
	}
	if t, u, v, ok := lpRmL(-x, y, -phi); ok {
		rs.consider(0, -t, -u, -v)
	}
	if t, u, v, ok := lpRmL(x, -y, -phi); ok {
		rs.consider(1, t, u, v)
	}
	if t, u, v, ok := lpRmL(-x, -y, phi); ok {
		rs.consider(1, -t, -u, -v)
	}

	// backwards
	xb := x*math.Cos(phi) + y*math.Sin(phi)
	yb := x*math.Sin(phi) - y*math.Cos(phi)
	if t, u, v, ok := lpRmL(xb, yb, phi); ok {
		rs.consider(0, v, u, t)
	}
	if t, u, v, ok := lpRmL(-xb, yb, -phi); ok {
		rs.consider(0, -v, -u, -t)
	}
	if t, u, v, ok := lpRmL(xb, -yb, -phi); ok {
		rs.consider(1, v, u, t)
	}
	if t, u, v, ok := lpRmL(-xb, -yb, phi); ok {
		rs.consider(1, -v, -u, -t)
	}
}

func (rs *rsSearch) cccc(x, y, phi float64) {
	if t, u, v, ok := lpRupLumRm(x, y, phi); ok {
		rs.consider(2, t, u, -u, v)
	}
	if t, u, v, ok := lpRupLumRm(-x, y, -phi); ok {
		rs.consider(2, -t, -u, u, -v)
	}
	if t, u, v, ok := lpRupLumRm(x, -y, -phi); ok {
		rs.consider(3, t, u, -u, v)
	}
	if t, u, v, ok := lpRupLumRm(-x, -y, phi); ok {
		rs.consider(3, -t, -u, u, -v)
	}

	if t, u, v, ok := lpRumLumRp(x, y, phi); ok {
		rs.consider(2, t, u, u, v)
	}
	if t, u, v, ok := lpRumLumRp(-x, y, -phi); ok {
		rs.consider(2, -t, -u, -u, -v)
	}
	if t, u, v, ok := lpRumLumRp(x, -y, -phi); ok {
		rs.consider(3, t, u, u, v)
	}
	if t, u, v, ok := lpRumLumRp(-x, -y, phi); ok {
		rs.consider(3, -t, -u, -u, -v)
	}
}

func (rs *rsSearch) ccsc(x, y, phi float64) {
	const half = 0.5 * math.Pi
	if t, u, v, ok := lpRmSmLm(x, y, phi); ok {
		rs.consider(4, t, -half, u, v)
	}
	if t, u, v, ok := lpRmSmLm(-x, y, -phi); ok {
		rs.consider(4, -t, half, -u, -v)
	}
	if t, u, v, ok := lpRmSmLm(x, -y, -phi); ok {
		rs.consider(5, t, -half, u, v)
	}
	if t, u, v, ok := lpRmSmLm(-x, -y, phi); ok {
		rs.consider(5, -t, half, -u, -v)
	}

	if t, u, v, ok := lpRmSmRm(x, y, phi); ok {
		rs.consider(8, t, -half, u, v)
	}
	if t, u, v, ok := lpRmSmRm(-x, y, -phi); ok {
		rs.consider(8, -t, half, -u, -v)
	}
	if t, u, v, ok := lpRmSmRm(x, -y, -phi); ok {
		rs.consider(9, t, -half, u, v)
	}
	if t, u, v, ok := lpRmSmRm(-x, -y, phi); ok {
		rs.consider(9, -t, half, -u, -v)
	}

	// backwards
	xb := x*math.Cos(phi) + y*math.Sin(phi)
	yb := x*math.Sin(phi) - y*math.Cos(phi)
	if t, u, v, ok := lpRmSmLm(xb, yb, phi); ok {
		rs.consider(6, v, u, -half, t)
	}
	if t, u, v, ok := lpRmSmLm(-xb, yb, -phi); ok {
		rs.consider(6, -v, -u, half, -t)
	}
	if t, u, v, ok := lpRmSmLm(xb, -yb, -phi); ok {
		rs.consider(7, v, u, -half, t)
	}
	if t, u, v, ok := lpRmSmLm(-xb, -yb, phi); ok {
		rs.consider(7, -v, -u, half, -t)
	}

	if t, u, v, ok := lpRmSmRm(xb, yb, phi); ok {
		rs.consider(10, v, u, -half, t)
	}
	if t, u, v, ok := lpRmSmRm(-xb, yb, -phi); ok {
		rs.consider(10, -v, -u, half, -t)
	}
	if t, u, v, ok := lpRmSmRm(xb, -yb, -phi); ok {
		rs.consider(11, v, u, -half, t)
	}
	if t, u, v, ok := lpRmSmRm(-xb, -yb, phi); ok {
		rs.consider(11, -v, -u, half, -t)
	}
}

func (rs *rsSearch) ccscc(x, y, phi float64) {
	const half = 0.5 * math.Pi
	if t, u, v, ok := lpRmSLmRp(x, y, phi); ok {
		rs.consider(16, t, -half, u, -half, v)
	}
	if t, u, v, ok := lpRmSLmRp(-x, y, -phi); ok {
		rs.consider(16, -t, half, -u, half, -v)
	}
	if t, u, v, ok := lpRmSLmRp(x, -y, -phi); ok {
		rs.consider(17, t, -half, u, -half, v)
	}
	if t, u, v, ok := lpRmSLmRp(-x, -y, phi); ok {
		rs.consider(17, -t, half, -u, half, -v)
	}
}
