package common

import "math"

// Epsilon is the smallest positive float32 step, used where a zero would be
// ambiguous (queue ordering, divisions by a time scale).
const Epsilon = 1.1920929e-7

const (
	degRad = math.Pi / 180
	radDeg = 180 / math.Pi
)

// Vec2 is a 2D point or direction in skeleton or screen space.
type Vec2 struct {
	X, Y float64
}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func CosDeg(deg float64) float64 {
	return math.Cos(deg * degRad)
}

func SinDeg(deg float64) float64 {
	return math.Sin(deg * degRad)
}

// Atan2Deg returns atan2(y, x) in degrees.
func Atan2Deg(y, x float64) float64 {
	return math.Atan2(y, x) * radDeg
}

// WrapDegrees folds an angle delta into (-180, 180].
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Mod is a float modulo that is never negative for a positive divisor.
func Mod(v, m float64) float64 {
	if m == 0 {
		return 0
	}
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}
