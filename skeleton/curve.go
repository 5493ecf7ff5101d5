package skeleton

import "math"

type CurveKind uint8

const (
	CurveLinear CurveKind = iota
	CurveStepped
	CurveBezier
)

// Curve shapes the interpolation from one key to the next. Bezier control
// points are normalised to the key interval.
type Curve struct {
	Kind               CurveKind
	CX1, CY1, CX2, CY2 float64
}

// Percent maps linear progress p in [0, 1] to eased progress.
func (c Curve) Percent(p float64) float64 {
	switch c.Kind {
	case CurveStepped:
		return 0
	case CurveBezier:
		return bezierY(c, bezierT(c, p))
	default:
		return p
	}
}

// bezierT solves x(t) = x for t by bisection; x(t) is monotonic for control
// points in [0, 1].
func bezierT(c Curve, x float64) float64 {
	lo, hi := 0.0, 1.0
	t := x
	for i := 0; i < 24; i++ {
		cx := cubic(c.CX1, c.CX2, t)
		if math.Abs(cx-x) < 1e-6 {
			break
		}
		if cx < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}

func bezierY(c Curve, t float64) float64 {
	return cubic(c.CY1, c.CY2, t)
}

// cubic evaluates a 1D cubic bezier from 0 to 1 with inner control points
// p1 and p2.
func cubic(p1, p2, t float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}
