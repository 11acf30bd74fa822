package geom

import "math"

// CmpEpsilon is the tolerance of IsEqualApprox and IsZeroApprox.
const CmpEpsilon = 0.00001

// IsEqualApprox reports whether a and b are equal within a tolerance
// relative to a.
func IsEqualApprox(a, b float32) bool {
	if a == b {
		return true
	}
	tolerance := float32(CmpEpsilon) * abs32(a)
	if tolerance < CmpEpsilon {
		tolerance = CmpEpsilon
	}
	return abs32(a-b) < tolerance
}

// IsZeroApprox reports whether s is within CmpEpsilon of zero.
func IsZeroApprox(s float32) bool { return abs32(s) < CmpEpsilon }

// Lerp interpolates linearly between from and to.
func Lerp(from, to, weight float32) float32 { return from + (to-from)*weight }

// InverseLerp returns the weight at which Lerp(from, to, weight) is value.
func InverseLerp(from, to, value float32) float32 { return (value - from) / (to - from) }

// RangeLerp maps value from the range [istart, istop] onto [ostart, ostop].
func RangeLerp(value, istart, istop, ostart, ostop float32) float32 {
	return Lerp(ostart, ostop, InverseLerp(istart, istop, value))
}

// LerpAngle interpolates between two angles in radians along the shorter
// arc.
func LerpAngle(from, to, weight float32) float32 {
	diff := math.Mod(float64(to-from), 2*math.Pi)
	dist := math.Mod(2*diff, 2*math.Pi) - diff
	return from + float32(dist)*weight
}

// Ease applies the engine's easing curve to s, clamped to [0, 1]. Positive
// curves ease in (above 1) or out (below 1); negative curves ease in and
// out; zero is a constant 0.
func Ease(s, curve float32) float32 {
	s = min(max(s, 0), 1)
	switch {
	case curve > 0 && curve < 1:
		return 1 - pow32(1-s, 1/curve)
	case curve > 0:
		return pow32(s, curve)
	case curve < 0 && s < 0.5:
		return pow32(s*2, -curve) * 0.5
	case curve < 0:
		return (1-pow32(1-(s-0.5)*2, -curve))*0.5 + 0.5
	}
	return 0
}

// Smoothstep returns the Hermite interpolation of s between from and to.
func Smoothstep(from, to, s float32) float32 {
	if IsEqualApprox(from, to) {
		return from
	}
	s = min(max((s-from)/(to-from), 0), 1)
	return s * s * (3 - 2*s)
}

// MoveToward moves from toward to by at most delta.
func MoveToward(from, to, delta float32) float32 {
	if abs32(to-from) <= delta {
		return to
	}
	if to < from {
		return from - delta
	}
	return from + delta
}

// Stepify snaps value to the nearest multiple of step. A zero step leaves
// value unchanged.
func Stepify(value, step float32) float32 {
	if step == 0 {
		return value
	}
	return float32(math.Floor(float64(value/step)+0.5)) * step
}

// StepDecimals returns the number of decimal places of step, up to 9.
func StepDecimals(step float32) int {
	sd := [...]float32{0.9999, 0.09999, 0.009999, 0.0009999, 0.00009999,
		0.000009999, 0.0000009999, 0.00000009999, 0.000000009999, 0.0000000009999}
	a := abs32(step)
	decs := a - float32(int32(a))
	for i, v := range sd {
		if decs >= v {
			return i
		}
	}
	return 0
}

// Wrapf wraps value into [lo, hi).
func Wrapf(value, lo, hi float32) float32 {
	r := hi - lo
	if IsZeroApprox(r) {
		return lo
	}
	return value - r*float32(math.Floor(float64((value-lo)/r)))
}

// Wrapi wraps value into [lo, hi).
func Wrapi(value, lo, hi int64) int64 {
	r := hi - lo
	if r == 0 {
		return lo
	}
	return lo + ((value-lo)%r+r)%r
}

// Posmod is a modulo whose result has the sign of b.
func Posmod(a, b int64) int64 {
	v := a % b
	if (v < 0 && b > 0) || (v > 0 && b < 0) {
		v += b
	}
	return v
}

// Fposmod is Posmod for floats.
func Fposmod(x, y float32) float32 {
	v := float32(math.Mod(float64(x), float64(y)))
	if (v < 0 && y > 0) || (v > 0 && y < 0) {
		v += y
	}
	return v + 0
}

// NearestPo2 returns the smallest power of two not below value, or 0 for
// values below 1.
func NearestPo2(value int64) int64 {
	if value <= 0 {
		return 0
	}
	p := int64(1)
	for p < value {
		p <<= 1
	}
	return p
}

// DB2Linear converts decibels to a linear energy ratio.
func DB2Linear(db float32) float32 { return float32(math.Exp(float64(db) * 0.11512925464970228)) }

// Linear2DB converts a linear energy ratio to decibels.
func Linear2DB(nrg float32) float32 { return float32(math.Log(float64(nrg)) * 8.685889638065037) }

// Cartesian2Polar returns the length and angle of (x, y).
func Cartesian2Polar(x, y float32) (r, theta float32) {
	return float32(math.Hypot(float64(x), float64(y))), float32(math.Atan2(float64(y), float64(x)))
}

// Polar2Cartesian returns the point at length r and angle theta.
func Polar2Cartesian(r, theta float32) (x, y float32) {
	s, c := math.Sincos(float64(theta))
	return r * float32(c), r * float32(s)
}

func abs32(f float32) float32 { return float32(math.Abs(float64(f))) }

func pow32(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) }
