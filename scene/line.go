package scene

import (
	"image/color"

	"github.com/milk9111/skeletal/common"
)

type polyline struct {
	points []common.Vec2
	color  color.Color
}

// Line draws polylines given in its parent's space.
type Line struct {
	Node
	lines  []polyline
	scaled []common.Vec2
}

func NewLine() *Line {
	l := &Line{}
	l.Init()
	return l
}

// Add appends a polyline; the points are copied.
func (l *Line) Add(points []common.Vec2, c color.Color) {
	l.lines = append(l.lines, polyline{points: append([]common.Vec2(nil), points...), color: c})
}

// AddPolygon lets a Line collect debug outlines.
func (l *Line) AddPolygon(points []common.Vec2, c color.Color) {
	l.Add(points, c)
}

func (l *Line) Clear() {
	l.lines = l.lines[:0]
}

// Len returns the number of polylines.
func (l *Line) Len() int {
	return len(l.lines)
}

func (l *Line) Render(f *Frame) {
	if f == nil || f.Renderer == nil {
		return
	}
	m := l.World()
	m.Concat(f.ViewProjection)
	for _, pl := range l.lines {
		l.scaled = l.scaled[:0]
		for _, p := range pl.points {
			x, y := m.Apply(p.X, p.Y)
			l.scaled = append(l.scaled, common.Vec2{X: x, Y: y})
		}
		f.Renderer.PushLines(l.scaled, pl.color)
	}
}
