package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/common"
	"github.com/milk9111/skeletal/skeleton"
)

// Options describe where and how a skeleton is drawn.
type Options struct {
	// NodeWorld maps skeleton space to scene space; ViewProjection maps scene
	// space to the target.
	NodeWorld      ebiten.GeoM
	ViewProjection ebiten.GeoM
	Opacity        float64
	DepthWrite     bool
	Effect         *ebiten.Shader
	// Debug receives bounding-box outlines when set.
	Debug DebugSink
}

// Builder emits one batch per visible slot. It keeps scratch buffers between
// calls and is not safe for concurrent use.
type Builder struct {
	batch   Batch
	world   []common.Vec2
	outline []common.Vec2
}

// Build walks the draw order and pushes a batch for every region and mesh
// attachment. Bounding boxes go to opts.Debug; other attachments are skipped.
func (b *Builder) Build(sk *skeleton.Skeleton, opts Options, out Submitter) {
	if b == nil || sk == nil || out == nil {
		return
	}
	view := opts.NodeWorld
	view.Concat(opts.ViewProjection)

	for _, slot := range sk.DrawOrder {
		att := slot.Attachment()
		if att == nil {
			continue
		}
		state := StateFor(BlendFuncFor(slot.Data.Blend), opts.DepthWrite)
		tint := sk.Color.Mul(slot.Color)
		tint.A *= float32(opts.Opacity)

		switch a := att.(type) {
		case *skeleton.RegionAttachment:
			m := slot.Bone.GeoM()
			m.Concat(view)
			offsets, uvs := a.Offsets(), a.UVs()
			abgr := tint.ToABGR()

			b.batch.Vertices = b.batch.Vertices[:0]
			for i := 0; i < 4; i++ {
				x, y := m.Apply(offsets[i*2], offsets[i*2+1])
				b.batch.Vertices = append(b.batch.Vertices, Vertex{
					X: float32(x), Y: float32(y),
					U: uvs[i*2], V: uvs[i*2+1],
					ABGR: abgr,
				})
			}
			b.batch.Indices = quadIndices
			b.push(out, pageTexture(a.Region), opts.Effect, state)

		case *skeleton.MeshAttachment:
			m := slot.Bone.GeoM()
			m.Concat(view)
			uvs := a.UVs()
			abgr := tint.ToABGR()

			b.batch.Vertices = b.batch.Vertices[:0]
			for i := 0; i+1 < len(a.Vertices); i += 2 {
				x, y := m.Apply(a.Vertices[i], a.Vertices[i+1])
				v := Vertex{X: float32(x), Y: float32(y), ABGR: abgr}
				if i+1 < len(uvs) {
					v.U, v.V = uvs[i], uvs[i+1]
				}
				b.batch.Vertices = append(b.batch.Vertices, v)
			}
			b.batch.Indices = a.Triangles
			b.push(out, pageTexture(a.Region), opts.Effect, state)

		case *skeleton.BoundingBoxAttachment:
			if opts.Debug == nil {
				continue
			}
			b.world = a.ComputeWorldVertices(slot, b.world[:0])
			if len(b.world) == 0 {
				continue
			}
			b.outline = append(b.outline[:0], b.world...)
			b.outline = append(b.outline, b.world[0])
			opts.Debug.AddPolygon(b.outline, DebugColor)
		}
	}
}

func (b *Builder) push(out Submitter, tex *ebiten.Image, effect *ebiten.Shader, state RenderState) {
	b.batch.Texture = tex
	b.batch.Effect = effect
	b.batch.State = state
	out.Push(&b.batch)
}

func pageTexture(r *skeleton.AtlasRegion) *ebiten.Image {
	if r == nil || r.Page == nil {
		return nil
	}
	return r.Page.Texture
}
