package scene

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/milk9111/skeletal/common"
	"github.com/milk9111/skeletal/render"
)

type order struct {
	Node
	name string
	log  *[]string
}

func newOrder(name string, log *[]string) *order {
	o := &order{name: name, log: log}
	o.Init()
	return o
}

func (o *order) Render(*Frame) { *o.log = append(*o.log, o.name) }

type lineRecorder struct {
	lines [][]common.Vec2
}

func (r *lineRecorder) Push(*render.Batch) {}

func (r *lineRecorder) PushLines(points []common.Vec2, _ color.Color) {
	r.lines = append(r.lines, append([]common.Vec2(nil), points...))
}

func TestNodeWorldTransform(t *testing.T) {
	root := NewNode()
	root.X, root.Y = 100, 50
	root.ScaleX, root.ScaleY = 2, 2
	root.Opacity = 0.5

	child := NewNode()
	child.X = 10
	child.Angle = 90
	child.Opacity = 0.5
	root.AddChild(child)

	Draw(root, &Frame{})

	world := child.World()
	x, y := world.Apply(1, 0)
	if math.Abs(x-120) > 1e-9 || math.Abs(y-52) > 1e-9 {
		t.Fatalf("child point at (%v, %v), want (120, 52)", x, y)
	}
	if child.RealOpacity() != 0.25 {
		t.Fatalf("opacity %v, want 0.25", child.RealOpacity())
	}
}

func TestDrawOrderAndVisibility(t *testing.T) {
	var log []string
	root := newOrder("root", &log)
	a := newOrder("a", &log)
	b := newOrder("b", &log)
	a1 := newOrder("a1", &log)
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(a1)

	Draw(root, &Frame{})
	want := []string{"root", "a", "a1", "b"}
	if len(log) != len(want) {
		t.Fatalf("rendered %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("rendered %v, want %v", log, want)
		}
	}

	log = log[:0]
	a.Visible = false
	Draw(root, &Frame{})
	if len(log) != 2 || log[1] != "b" {
		t.Fatalf("hidden subtree should be skipped, got %v", log)
	}
}

func TestReparent(t *testing.T) {
	p1, p2 := NewNode(), NewNode()
	c := NewNode()
	p1.AddChild(c)
	p2.AddChild(c)
	if len(p1.Children()) != 0 || len(p2.Children()) != 1 || c.Parent() != p2 {
		t.Fatalf("child should move to the new parent")
	}
	if !p2.RemoveChild(c) || c.Parent() != nil || p2.RemoveChild(c) {
		t.Fatalf("RemoveChild should detach once")
	}
}

func TestLineRendersInParentSpace(t *testing.T) {
	parent := NewNode()
	parent.X = 5
	line := NewLine()
	parent.AddChild(line)
	line.Add([]common.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}, color.White)

	rec := &lineRecorder{}
	f := &Frame{Renderer: rec}
	f.ViewProjection.Translate(0, 100)
	Draw(parent, f)

	if len(rec.lines) != 1 {
		t.Fatalf("expected 1 polyline, got %d", len(rec.lines))
	}
	if got := rec.lines[0][1]; got != (common.Vec2{X: 6, Y: 101}) {
		t.Fatalf("second point %v, want (6, 101)", got)
	}

	line.Clear()
	rec.lines = nil
	Draw(parent, f)
	if len(rec.lines) != 0 || line.Len() != 0 {
		t.Fatalf("cleared line should draw nothing")
	}
}

func TestClock(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewClock(func() time.Time { return now })

	now = now.Add(16 * time.Millisecond)
	if d := c.Tick(); math.Abs(d-0.016) > 1e-9 {
		t.Fatalf("delta %v, want 0.016", d)
	}
	now = now.Add(5 * time.Second)
	if d := c.Tick(); d != c.MaxDelta {
		t.Fatalf("long stall should clamp to %v, got %v", c.MaxDelta, d)
	}
	now = now.Add(-time.Second)
	if d := c.Tick(); d != 0 {
		t.Fatalf("time going backwards should give 0, got %v", d)
	}
}

func TestReplaceChild(t *testing.T) {
	var log []string
	root := NewNode()
	a, b, c := newOrder("a", &log), newOrder("b", &log), newOrder("c", &log)
	root.AddChild(a)
	root.AddChild(b)

	if !root.ReplaceChild(a, c) {
		t.Fatalf("replace should succeed")
	}
	if a.Parent() != nil || c.Parent() != root {
		t.Fatalf("parents not updated")
	}
	Draw(root, &Frame{})
	if len(log) != 2 || log[0] != "c" || log[1] != "b" {
		t.Fatalf("replacement should keep the slot, got %v", log)
	}
	if root.ReplaceChild(a, c) {
		t.Fatalf("replacing a detached node should fail")
	}

	if !root.ReplaceChild(c, b) || len(root.Children()) != 1 || root.Children()[0] != Element(b) {
		t.Fatalf("replacing with a sibling should not duplicate it, got %d children", len(root.Children()))
	}
}
