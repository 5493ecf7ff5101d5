// Package render turns a posed skeleton into textured triangle batches.
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/common"
	"golang.org/x/image/colornames"
)

// DebugColor outlines bounding boxes.
var DebugColor = colornames.Cyan

// StateFlag is a bit in a batch's render state.
type StateFlag uint32

const (
	WriteRGB StateFlag = 1 << iota
	WriteA
	WriteZ
	DepthTestLess
	MSAA
)

// RenderState carries the fixed-function state for one batch.
type RenderState struct {
	Flags StateFlag
	Blend BlendFunc
}

func (s RenderState) Has(f StateFlag) bool {
	return s.Flags&f == f
}

// StateFor builds the state for a slot's blend function.
func StateFor(blend BlendFunc, depthWrite bool) RenderState {
	flags := WriteRGB | WriteA | MSAA
	if depthWrite {
		flags |= WriteZ | DepthTestLess
	}
	return RenderState{Flags: flags, Blend: blend}
}

// Vertex is a clip-space position with texture coordinates normalised to the
// page and a packed 0xAABBGGRR color.
type Vertex struct {
	X, Y float32
	U, V float32
	ABGR uint32
}

// Batch is one draw submission. Its slices are reused by the builder and are
// only valid during Push.
type Batch struct {
	Vertices []Vertex
	Indices  []uint16
	Texture  *ebiten.Image
	Effect   *ebiten.Shader
	State    RenderState
}

// Submitter receives batches in draw order.
type Submitter interface {
	Push(b *Batch)
	// PushLines draws a polyline through target-space points.
	PushLines(points []common.Vec2, c color.Color)
}

// DebugSink collects outline polygons in skeleton space. points is reused
// after the call returns.
type DebugSink interface {
	AddPolygon(points []common.Vec2, c color.Color)
}

// quadIndices triangulates a region's corners.
var quadIndices = []uint16{0, 1, 2, 2, 3, 0}
