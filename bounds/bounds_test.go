package bounds

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/skeletal/internal/fixture"
	"github.com/milk9111/skeletal/skeleton"
)

func posed(t *testing.T, skin string) *skeleton.Skeleton {
	t.Helper()
	sk := skeleton.New(fixture.Data(t))
	if skin != "" {
		if !sk.SetSkinByName(skin) {
			t.Fatalf("skin %s missing", skin)
		}
		sk.SetSlotsToSetupPose()
	}
	sk.UpdateWorldTransform()
	return sk
}

func name(a skeleton.Attachment) string {
	if a == nil {
		return ""
	}
	return a.Name()
}

func TestUpdateCollectsDrawablePolygons(t *testing.T) {
	cases := []struct {
		name string
		skin string
		want int
	}{
		{"default", "", 2},
		{"red_activates_hat", "red", 3},
		{"blue_mesh_arm", "blue", 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sk := posed(t, c.skin)
			b := New()
			b.Update(sk, true)
			if b.Len() != c.want {
				t.Fatalf("expected %d polygons, got %d", c.want, b.Len())
			}
			hitbox := sk.FindSlot("hitbox").Attachment()
			if hitbox == nil || b.Polygon(hitbox) != nil {
				t.Fatalf("bounding boxes must not be part of the bounds")
			}
			// Reusing pooled storage must not change the result.
			b.Update(sk, true)
			if b.Len() != c.want {
				t.Fatalf("second update: expected %d polygons, got %d", c.want, b.Len())
			}
		})
	}
}

func TestAABB(t *testing.T) {
	b := New()
	if b.AABBContainsPoint(0, 0) {
		t.Fatalf("empty bounds contain nothing")
	}
	b.Update(posed(t, ""), true)
	want := cp.BB{L: -10, B: -10, R: 10, T: 34}
	got := b.AABB()
	if !near(got.L, want.L) || !near(got.B, want.B) || !near(got.R, want.R) || !near(got.T, want.T) {
		t.Fatalf("aabb %v, want %v", got, want)
	}

	b.Update(posed(t, ""), false)
	if !b.AABBContainsPoint(1e6, -1e6) {
		t.Fatalf("without an aabb update every point passes the coarse test")
	}
}

func TestContainsPoint(t *testing.T) {
	b := New()
	b.Update(posed(t, ""), true)
	cases := []struct {
		name string
		x, y float64
		want string
	}{
		{"body_center", 0, 0, "body"},
		{"arm_tip", 5, 33, "arm"},
		{"between", 0, 33, ""},
		{"outside_aabb", -20, 0, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := name(b.Hit(c.x, c.y)); got != c.want {
				t.Fatalf("Hit(%v, %v) = %q, want %q", c.x, c.y, got, c.want)
			}
		})
	}
}

func TestIntersectsSegment(t *testing.T) {
	b := New()
	b.Update(posed(t, ""), true)
	cases := []struct {
		name           string
		x1, y1, x2, y2 float64
		want           string
	}{
		{"through_body", -20, 0, 20, 0, "body"},
		{"inside_body", -1, 0, 1, 0, ""},
		{"through_arm", 0, 32, 20, 32, "arm"},
		{"miss", -20, 50, 20, 50, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := name(b.HitSegment(c.x1, c.y1, c.x2, c.y2)); got != c.want {
				t.Fatalf("HitSegment = %q, want %q", got, c.want)
			}
		})
	}
}

func TestHitRejectsOnAABBFirst(t *testing.T) {
	sk := posed(t, "")
	b := New()
	b.Update(sk, true)
	if name(b.ContainsPoint(0, 0)) != "body" {
		t.Fatalf("polygon test should find the body")
	}
	// Move the coarse box away; the polygons must not be consulted.
	b.bb = cp.BB{L: 100, B: 100, R: 200, T: 200}
	if got := b.Hit(0, 0); got != nil {
		t.Fatalf("point outside the aabb must miss, got %q", got.Name())
	}
	if got := b.HitSegment(-20, 0, 20, 0); got != nil {
		t.Fatalf("segment outside the aabb must miss, got %q", got.Name())
	}
}

func TestPolygonContainsPoint(t *testing.T) {
	square := []cp.Vector{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	concave := []cp.Vector{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 5, Y: 5}, {X: 0, Y: 10}}
	cases := []struct {
		name string
		poly []cp.Vector
		x, y float64
		want bool
	}{
		{"square_in", square, 5, 5, true},
		{"square_out", square, 15, 5, false},
		{"concave_notch", concave, 5, 8, false},
		{"concave_body", concave, 5, 2, true},
		{"empty", nil, 0, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := PolygonContainsPoint(c.poly, c.x, c.y); got != c.want {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
