// Package bounds keeps per-frame hit polygons for a posed skeleton.
package bounds

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/skeletal/skeleton"
)

// empty is an inverted box that contains nothing and grows with Expand.
var empty = cp.BB{L: cp.INFINITY, B: cp.INFINITY, R: -cp.INFINITY, T: -cp.INFINITY}

var everything = cp.BB{L: -cp.INFINITY, B: -cp.INFINITY, R: cp.INFINITY, T: cp.INFINITY}

type entry struct {
	slot       *skeleton.Slot
	attachment skeleton.Attachment
	polygon    []cp.Vector
	bb         cp.BB
}

// Bounds holds one world-space polygon per visible region or mesh attachment
// on an active bone, in slot order. Polygon storage is reused across updates.
type Bounds struct {
	entries []entry
	pool    [][]cp.Vector
	bb      cp.BB
}

func New() *Bounds {
	return &Bounds{bb: empty}
}

// Update rebuilds the polygons from the skeleton's current world transforms.
// Without updateAABB the overall box accepts everything.
func (b *Bounds) Update(sk *skeleton.Skeleton, updateAABB bool) {
	if b == nil {
		return
	}
	for _, e := range b.entries {
		b.pool = append(b.pool, e.polygon[:0])
	}
	b.entries = b.entries[:0]
	b.bb = empty
	if sk == nil {
		return
	}

	for _, slot := range sk.Slots {
		if !slot.Bone.Active() {
			continue
		}
		switch a := slot.Attachment().(type) {
		case *skeleton.RegionAttachment:
			poly := b.obtain()
			for _, v := range a.ComputeWorldVertices(slot.Bone) {
				poly = append(poly, cp.Vector{X: v.X, Y: v.Y})
			}
			b.add(slot, a, poly)
		case *skeleton.MeshAttachment:
			poly := b.obtain()
			hull := a.Hull()
			for i := 0; i+1 < len(hull); i += 2 {
				v := slot.Bone.LocalToWorld(hull[i], hull[i+1])
				poly = append(poly, cp.Vector{X: v.X, Y: v.Y})
			}
			b.add(slot, a, poly)
		}
	}

	if !updateAABB {
		b.bb = everything
	}
}

func (b *Bounds) obtain() []cp.Vector {
	if n := len(b.pool); n > 0 {
		poly := b.pool[n-1]
		b.pool = b.pool[:n-1]
		return poly
	}
	return make([]cp.Vector, 0, 8)
}

func (b *Bounds) add(slot *skeleton.Slot, a skeleton.Attachment, poly []cp.Vector) {
	bb := empty
	for _, v := range poly {
		bb = bb.Expand(v)
	}
	b.entries = append(b.entries, entry{slot: slot, attachment: a, polygon: poly, bb: bb})
	b.bb = b.bb.Merge(bb)
}

// Len returns the number of polygons.
func (b *Bounds) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// AABB returns the box around every polygon.
func (b *Bounds) AABB() cp.BB {
	if b == nil {
		return empty
	}
	return b.bb
}

func (b *Bounds) AABBContainsPoint(x, y float64) bool {
	return b.Len() > 0 && b.bb.ContainsVect(cp.Vector{X: x, Y: y})
}

func (b *Bounds) AABBIntersectsSegment(x1, y1, x2, y2 float64) bool {
	return b.Len() > 0 && b.bb.IntersectsSegment(cp.Vector{X: x1, Y: y1}, cp.Vector{X: x2, Y: y2})
}

// ContainsPoint returns the first attachment whose polygon contains the
// point, or nil.
func (b *Bounds) ContainsPoint(x, y float64) skeleton.Attachment {
	if b == nil {
		return nil
	}
	p := cp.Vector{X: x, Y: y}
	for _, e := range b.entries {
		if e.bb.ContainsVect(p) && PolygonContainsPoint(e.polygon, x, y) {
			return e.attachment
		}
	}
	return nil
}

// IntersectsSegment returns the first attachment whose polygon edges cross
// the segment, or nil.
func (b *Bounds) IntersectsSegment(x1, y1, x2, y2 float64) skeleton.Attachment {
	if b == nil {
		return nil
	}
	p1, p2 := cp.Vector{X: x1, Y: y1}, cp.Vector{X: x2, Y: y2}
	for _, e := range b.entries {
		if e.bb.IntersectsSegment(p1, p2) && PolygonIntersectsSegment(e.polygon, x1, y1, x2, y2) {
			return e.attachment
		}
	}
	return nil
}

// Hit rejects against the overall box first, then searches the polygons.
func (b *Bounds) Hit(x, y float64) skeleton.Attachment {
	if !b.AABBContainsPoint(x, y) {
		return nil
	}
	return b.ContainsPoint(x, y)
}

// HitSegment is Hit for a segment.
func (b *Bounds) HitSegment(x1, y1, x2, y2 float64) skeleton.Attachment {
	if !b.AABBIntersectsSegment(x1, y1, x2, y2) {
		return nil
	}
	return b.IntersectsSegment(x1, y1, x2, y2)
}

// Polygon returns the world polygon recorded for an attachment, or nil.
func (b *Bounds) Polygon(a skeleton.Attachment) []cp.Vector {
	if b == nil {
		return nil
	}
	for _, e := range b.entries {
		if e.attachment == a {
			return e.polygon
		}
	}
	return nil
}

// Slot returns the slot the attachment was found on, or nil.
func (b *Bounds) Slot(a skeleton.Attachment) *skeleton.Slot {
	if b == nil {
		return nil
	}
	for _, e := range b.entries {
		if e.attachment == a {
			return e.slot
		}
	}
	return nil
}
