// Package scene is a minimal 2D node tree: transforms, opacity, visibility
// and a visit-then-render frame walk.
package scene

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/render"
)

// Frame is what one tick of the tree sees.
type Frame struct {
	// Delta is the elapsed time in seconds since the previous frame.
	Delta float64
	// ViewProjection maps scene space to the render target.
	ViewProjection ebiten.GeoM
	Renderer       render.Submitter
}

// Element is anything that can live in the tree. Types embed Node and
// override Visit and Render; overrides should call the embedded Node.Visit.
type Element interface {
	Base() *Node
	Visit(f *Frame)
	Render(f *Frame)
}

// Node is the embeddable base element.
type Node struct {
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Angle    float64 // degrees, clockwise on screen
	Opacity  float64
	Visible  bool
	Tag      string
	parent   *Node
	children []Element

	world       ebiten.GeoM
	realOpacity float64
}

// NewNode returns a visible node with unit scale and opacity.
func NewNode() *Node {
	n := &Node{}
	n.Init()
	return n
}

// Init resets the transform for a Node embedded by value.
func (n *Node) Init() {
	n.ScaleX, n.ScaleY = 1, 1
	n.Opacity = 1
	n.Visible = true
	n.realOpacity = 1
}

func (n *Node) Base() *Node { return n }

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Children() []Element { return n.children }

// AddChild appends e, detaching it from any previous parent.
func (n *Node) AddChild(e Element) {
	if n == nil || e == nil {
		return
	}
	b := e.Base()
	if b.parent != nil {
		b.parent.RemoveChild(e)
	}
	b.parent = n
	n.children = append(n.children, e)
}

// RemoveChild detaches e and reports whether it was a child.
func (n *Node) RemoveChild(e Element) bool {
	if n == nil || e == nil {
		return false
	}
	for i, c := range n.children {
		if c == e {
			n.children = append(n.children[:i], n.children[i+1:]...)
			e.Base().parent = nil
			return true
		}
	}
	return false
}

// ReplaceChild puts e in old's place in the child list, detaching old.
func (n *Node) ReplaceChild(old, e Element) bool {
	if n == nil || old == nil || e == nil || old == e || old.Base().parent != n {
		return false
	}
	if b := e.Base(); b.parent != nil {
		b.parent.RemoveChild(e)
	}
	for i, c := range n.children {
		if c == old {
			n.children[i] = e
			old.Base().parent = nil
			e.Base().parent = n
			return true
		}
	}
	return false
}

// World returns the transform from this node's space to scene space, as of
// the last Visit.
func (n *Node) World() ebiten.GeoM { return n.world }

// RealOpacity is the opacity multiplied down from the root.
func (n *Node) RealOpacity() float64 { return n.realOpacity }

// Local returns the node's own transform: scale, then rotate, then move.
func (n *Node) Local() ebiten.GeoM {
	var g ebiten.GeoM
	g.Scale(n.ScaleX, n.ScaleY)
	if n.Angle != 0 {
		g.Rotate(n.Angle * math.Pi / 180)
	}
	g.Translate(n.X, n.Y)
	return g
}

// Visit refreshes the world transform and opacity, then visits children.
func (n *Node) Visit(f *Frame) {
	n.world = n.Local()
	n.realOpacity = n.Opacity
	if p := n.parent; p != nil {
		n.world.Concat(p.world)
		n.realOpacity *= p.realOpacity
	}
	for _, c := range n.children {
		c.Visit(f)
	}
}

// Render draws nothing; drawable elements override it.
func (n *Node) Render(*Frame) {}

// Draw visits the tree rooted at root and then renders every visible element
// parent first, children in insertion order.
func Draw(root Element, f *Frame) {
	if root == nil {
		return
	}
	root.Visit(f)
	renderTree(root, f)
}

func renderTree(e Element, f *Frame) {
	if !e.Base().Visible {
		return
	}
	e.Render(f)
	for _, c := range e.Base().children {
		renderTree(c, f)
	}
}
