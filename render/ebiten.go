package render

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/skeletal/common"
)

var (
	whiteOnce  sync.Once
	whiteImage *ebiten.Image
)

// white is the source for untextured batches.
func white() *ebiten.Image {
	whiteOnce.Do(func() {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
	})
	return whiteImage
}

// EbitenRenderer submits batches to an ebiten image. Depth flags are
// ignored; ebiten has no depth buffer and draw order already resolves
// overlap.
type EbitenRenderer struct {
	Target    *ebiten.Image
	LineWidth float32

	verts []ebiten.Vertex
}

func NewEbitenRenderer(target *ebiten.Image) *EbitenRenderer {
	return &EbitenRenderer{Target: target, LineWidth: 1}
}

func (r *EbitenRenderer) Push(b *Batch) {
	if r == nil || r.Target == nil || b == nil || len(b.Vertices) == 0 || len(b.Indices) == 0 {
		return
	}

	src := b.Texture
	w, h := float32(1), float32(1)
	if src != nil {
		size := src.Bounds().Size()
		w, h = float32(size.X), float32(size.Y)
	}

	r.verts = r.verts[:0]
	for _, v := range b.Vertices {
		c := common.ColorFromABGR(v.ABGR)
		r.verts = append(r.verts, ebiten.Vertex{
			DstX:   v.X,
			DstY:   v.Y,
			SrcX:   v.U * w,
			SrcY:   v.V * h,
			ColorR: c.R,
			ColorG: c.G,
			ColorB: c.B,
			ColorA: c.A,
		})
	}

	if src == nil {
		src = white()
	}
	blend := b.State.Blend.ToEbiten()
	if b.Effect != nil {
		op := &ebiten.DrawTrianglesShaderOptions{Blend: blend}
		op.Images[0] = src
		r.Target.DrawTrianglesShader(r.verts, b.Indices, b.Effect, op)
		return
	}
	op := &ebiten.DrawTrianglesOptions{Blend: blend}
	r.Target.DrawTriangles(r.verts, b.Indices, src, op)
}

func (r *EbitenRenderer) PushLines(points []common.Vec2, c color.Color) {
	if r == nil || r.Target == nil {
		return
	}
	for i := 1; i < len(points); i++ {
		p0, p1 := points[i-1], points[i]
		vector.StrokeLine(r.Target, float32(p0.X), float32(p0.Y), float32(p1.X), float32(p1.Y), r.LineWidth, c, true)
	}
}
