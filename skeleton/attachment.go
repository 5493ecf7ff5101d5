package skeleton

import (
	"github.com/milk9111/skeletal/common"
)

// AttachmentKind tags the closed set of attachment variants.
type AttachmentKind uint8

const (
	KindRegion AttachmentKind = iota
	KindMesh
	KindBoundingBox
	KindPoint
	KindOther
)

func (k AttachmentKind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindMesh:
		return "mesh"
	case KindBoundingBox:
		return "boundingbox"
	case KindPoint:
		return "point"
	default:
		return "other"
	}
}

// Attachment is implemented only by the variants in this file.
type Attachment interface {
	Name() string
	Kind() AttachmentKind
	sealed()
}

// RegionAttachment is a textured quad placed relative to its slot's bone.
type RegionAttachment struct {
	name     string
	Path     string
	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	Width    float64
	Height   float64
	Color    common.Color
	Region   *AtlasRegion

	offsets [8]float64
	uvs     [8]float32
}

func NewRegionAttachment(name string) *RegionAttachment {
	return &RegionAttachment{name: name, Path: name, ScaleX: 1, ScaleY: 1, Color: common.White}
}

func (a *RegionAttachment) Name() string         { return a.name }
func (a *RegionAttachment) Kind() AttachmentKind { return KindRegion }
func (a *RegionAttachment) sealed()              {}

// UpdateOffsets recomputes the local corners. Call after changing geometry.
// Corner order is bottom-left, upper-left, upper-right, bottom-right.
func (a *RegionAttachment) UpdateOffsets() {
	hw := a.Width / 2 * a.ScaleX
	hh := a.Height / 2 * a.ScaleY
	cos, sin := common.CosDeg(a.Rotation), common.SinDeg(a.Rotation)
	corners := [4][2]float64{{-hw, -hh}, {-hw, hh}, {hw, hh}, {hw, -hh}}
	for i, c := range corners {
		a.offsets[i*2] = c[0]*cos - c[1]*sin + a.X
		a.offsets[i*2+1] = c[0]*sin + c[1]*cos + a.Y
	}
}

// SetRegion binds the atlas region and derives the corner texture coordinates.
func (a *RegionAttachment) SetRegion(r *AtlasRegion) {
	a.Region = r
	if r == nil {
		a.uvs = [8]float32{0, 1, 0, 0, 1, 0, 1, 1}
		return
	}
	a.uvs = [8]float32{r.U, r.V2, r.U, r.V, r.U2, r.V, r.U2, r.V2}
}

// Offsets returns the local corner positions as x,y pairs.
func (a *RegionAttachment) Offsets() [8]float64 { return a.offsets }

// UVs returns the corner texture coordinates as u,v pairs.
func (a *RegionAttachment) UVs() [8]float32 { return a.uvs }

// ComputeWorldVertices transforms the four corners by the bone's world
// transform.
func (a *RegionAttachment) ComputeWorldVertices(bone *Bone) [4]common.Vec2 {
	var out [4]common.Vec2
	g := bone.GeoM()
	for i := range out {
		x, y := g.Apply(a.offsets[i*2], a.offsets[i*2+1])
		out[i] = common.Vec2{X: x, Y: y}
	}
	return out
}

// MeshAttachment is a textured triangle list. Vertices are local to the slot's
// bone as x,y pairs.
type MeshAttachment struct {
	name       string
	Path       string
	Vertices   []float64
	RegionUVs  []float32
	Triangles  []uint16
	HullLength int
	Color      common.Color
	Region     *AtlasRegion

	uvs []float32
}

func NewMeshAttachment(name string) *MeshAttachment {
	return &MeshAttachment{name: name, Path: name, Color: common.White}
}

func (a *MeshAttachment) Name() string         { return a.name }
func (a *MeshAttachment) Kind() AttachmentKind { return KindMesh }
func (a *MeshAttachment) sealed()              {}

// WorldVerticesLength is the number of floats ComputeWorldVertices produces.
func (a *MeshAttachment) WorldVerticesLength() int { return len(a.Vertices) }

// SetRegion binds the atlas region and maps RegionUVs into page space.
func (a *MeshAttachment) SetRegion(r *AtlasRegion) {
	a.Region = r
	a.uvs = make([]float32, len(a.RegionUVs))
	if r == nil {
		copy(a.uvs, a.RegionUVs)
		return
	}
	w, h := r.U2-r.U, r.V2-r.V
	for i := 0; i+1 < len(a.RegionUVs); i += 2 {
		a.uvs[i] = r.U + a.RegionUVs[i]*w
		a.uvs[i+1] = r.V + a.RegionUVs[i+1]*h
	}
}

func (a *MeshAttachment) UVs() []float32 { return a.uvs }

// ComputeWorldVertices appends the world position of every mesh vertex to
// out and returns it.
func (a *MeshAttachment) ComputeWorldVertices(slot *Slot, out []common.Vec2) []common.Vec2 {
	return localToWorld(slot.Bone, a.Vertices, out)
}

// Hull returns the outline vertices (the first HullLength floats), or every
// vertex when no hull length is set.
func (a *MeshAttachment) Hull() []float64 {
	if a.HullLength <= 0 || a.HullLength > len(a.Vertices) {
		return a.Vertices
	}
	return a.Vertices[:a.HullLength]
}

// BoundingBoxAttachment is an invisible polygon used as a hit region.
type BoundingBoxAttachment struct {
	name     string
	Vertices []float64
	Color    common.Color
}

func NewBoundingBoxAttachment(name string) *BoundingBoxAttachment {
	return &BoundingBoxAttachment{name: name, Color: common.White}
}

func (a *BoundingBoxAttachment) Name() string         { return a.name }
func (a *BoundingBoxAttachment) Kind() AttachmentKind { return KindBoundingBox }
func (a *BoundingBoxAttachment) sealed()              {}

func (a *BoundingBoxAttachment) ComputeWorldVertices(slot *Slot, out []common.Vec2) []common.Vec2 {
	return localToWorld(slot.Bone, a.Vertices, out)
}

// PointAttachment marks a named position and direction on a bone.
type PointAttachment struct {
	name     string
	X, Y     float64
	Rotation float64
}

func NewPointAttachment(name string) *PointAttachment {
	return &PointAttachment{name: name}
}

func (a *PointAttachment) Name() string         { return a.name }
func (a *PointAttachment) Kind() AttachmentKind { return KindPoint }
func (a *PointAttachment) sealed()              {}

func (a *PointAttachment) ComputeWorldPosition(bone *Bone) common.Vec2 {
	g := bone.GeoM()
	x, y := g.Apply(a.X, a.Y)
	return common.Vec2{X: x, Y: y}
}

// ComputeWorldRotation returns the point's direction in world degrees.
func (a *PointAttachment) ComputeWorldRotation(bone *Bone) float64 {
	cos, sin := common.CosDeg(a.Rotation), common.SinDeg(a.Rotation)
	x := cos*bone.A + sin*bone.B
	y := cos*bone.C + sin*bone.D
	return common.Atan2Deg(y, x)
}

// OtherAttachment stands in for attachment types this runtime carries but
// neither draws nor hit-tests (clipping, path).
type OtherAttachment struct {
	name string
	Type string
}

func NewOtherAttachment(name, typ string) *OtherAttachment {
	return &OtherAttachment{name: name, Type: typ}
}

func (a *OtherAttachment) Name() string         { return a.name }
func (a *OtherAttachment) Kind() AttachmentKind { return KindOther }
func (a *OtherAttachment) sealed()              {}

func localToWorld(bone *Bone, local []float64, out []common.Vec2) []common.Vec2 {
	g := bone.GeoM()
	for i := 0; i+1 < len(local); i += 2 {
		x, y := g.Apply(local[i], local[i+1])
		out = append(out, common.Vec2{X: x, Y: y})
	}
	return out
}
