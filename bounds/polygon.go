package bounds

import (
	"math"

	"github.com/jakecoffman/cp"
)

// PolygonContainsPoint uses the even-odd rule.
func PolygonContainsPoint(poly []cp.Vector, x, y float64) bool {
	inside := false
	prev := len(poly) - 1
	for i := range poly {
		vi, vp := poly[i], poly[prev]
		if (vi.Y < y && vp.Y >= y) || (vp.Y < y && vi.Y >= y) {
			if vi.X+(y-vi.Y)/(vp.Y-vi.Y)*(vp.X-vi.X) < x {
				inside = !inside
			}
		}
		prev = i
	}
	return inside
}

// PolygonIntersectsSegment reports whether any polygon edge crosses the
// segment. A segment entirely inside the polygon does not intersect it.
func PolygonIntersectsSegment(poly []cp.Vector, x1, y1, x2, y2 float64) bool {
	if len(poly) == 0 {
		return false
	}
	width12, height12 := x1-x2, y1-y2
	det1 := x1*y2 - y1*x2
	x3, y3 := poly[len(poly)-1].X, poly[len(poly)-1].Y
	for _, v := range poly {
		x4, y4 := v.X, v.Y
		det2 := x3*y4 - y3*x4
		width34, height34 := x3-x4, y3-y4
		det3 := width12*height34 - height12*width34
		if det3 != 0 {
			x := (det1*width34 - width12*det2) / det3
			if within(x, x3, x4) && within(x, x1, x2) {
				y := (det1*height34 - height12*det2) / det3
				if within(y, y3, y4) && within(y, y1, y2) {
					return true
				}
			}
		}
		x3, y3 = x4, y4
	}
	return false
}

// within allows a little slack so axis-aligned edges still match after the
// intersection math rounds.
func within(v, a, b float64) bool {
	const slack = 1e-9
	return v >= math.Min(a, b)-slack && v <= math.Max(a, b)+slack
}
