package skeleton

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/common"
)

// Bone is the per-instance pose of a BoneData. A, B, C, D and WorldX, WorldY
// form the world affine transform computed by UpdateWorldTransform.
type Bone struct {
	Data     *BoneData
	Skeleton *Skeleton
	Parent   *Bone
	Children []*Bone

	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	ShearX   float64
	ShearY   float64

	A, B, C, D     float64
	WorldX, WorldY float64

	active bool
}

func newBone(data *BoneData, s *Skeleton, parent *Bone) *Bone {
	b := &Bone{Data: data, Skeleton: s, Parent: parent}
	b.SetToSetupPose()
	return b
}

// Active reports whether the bone takes part in the current skin.
func (b *Bone) Active() bool {
	return b != nil && b.active
}

func (b *Bone) SetToSetupPose() {
	d := b.Data
	b.X, b.Y = d.X, d.Y
	b.Rotation = d.Rotation
	b.ScaleX, b.ScaleY = d.ScaleX, d.ScaleY
	b.ShearX, b.ShearY = d.ShearX, d.ShearY
}

// UpdateWorldTransform composes the local pose with the parent's world
// transform. The parent must already be up to date.
func (b *Bone) UpdateWorldTransform() {
	rotationY := b.Rotation + 90 + b.ShearY
	la := common.CosDeg(b.Rotation+b.ShearX) * b.ScaleX
	lb := common.CosDeg(rotationY) * b.ScaleY
	lc := common.SinDeg(b.Rotation+b.ShearX) * b.ScaleX
	ld := common.SinDeg(rotationY) * b.ScaleY

	p := b.Parent
	if p == nil {
		s := b.Skeleton
		sx, sy := s.ScaleX, s.ScaleY
		b.A, b.B = la*sx, lb*sx
		b.C, b.D = lc*sy, ld*sy
		b.WorldX = b.X*sx + s.X
		b.WorldY = b.Y*sy + s.Y
		return
	}

	b.WorldX = p.A*b.X + p.B*b.Y + p.WorldX
	b.WorldY = p.C*b.X + p.D*b.Y + p.WorldY
	b.A = p.A*la + p.B*lc
	b.B = p.A*lb + p.B*ld
	b.C = p.C*la + p.D*lc
	b.D = p.C*lb + p.D*ld
}

// GeoM returns the world transform as an ebiten geometry matrix.
func (b *Bone) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, b.A)
	g.SetElement(0, 1, b.B)
	g.SetElement(0, 2, b.WorldX)
	g.SetElement(1, 0, b.C)
	g.SetElement(1, 1, b.D)
	g.SetElement(1, 2, b.WorldY)
	return g
}

// LocalToWorld maps a point in bone space to skeleton world space.
func (b *Bone) LocalToWorld(x, y float64) common.Vec2 {
	g := b.GeoM()
	wx, wy := g.Apply(x, y)
	return common.Vec2{X: wx, Y: wy}
}

// WorldRotationX returns the world rotation of the bone's X axis in degrees.
func (b *Bone) WorldRotationX() float64 {
	return common.Atan2Deg(b.C, b.A)
}
