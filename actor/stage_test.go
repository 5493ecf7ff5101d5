package actor

import (
	"errors"
	"testing"

	"github.com/milk9111/skeletal/prefabs"
	"github.com/milk9111/skeletal/scene"
)

func TestStageHitTest(t *testing.T) {
	s := NewStage(newCache(), nil, nil)
	back, err := s.Add(prefabs.ActorSpec{Name: "back", Skeleton: "hero"})
	if err != nil {
		t.Fatalf("add back: %v", err)
	}
	front, err := s.Add(prefabs.ActorSpec{Name: "front", Skeleton: "hero", Transform: prefabs.TransformSpec{X: 5}})
	if err != nil {
		t.Fatalf("add front: %v", err)
	}
	scene.Draw(s.Root, &scene.Frame{})

	cases := []struct {
		x, y  float64
		actor *Actor
		hit   string
	}{
		{0, 0, front, "body"},
		{-8, 0, back, "body"},
		{40, 0, nil, ""},
	}
	for _, c := range cases {
		a, hit := s.HitTest(c.x, c.y)
		if a != c.actor || hit != c.hit {
			t.Fatalf("HitTest(%v, %v) = %v %q, want %v %q", c.x, c.y, a, hit, c.actor, c.hit)
		}
	}

	front.Puppet.Visible = false
	if a, _ := s.HitTest(0, 0); a != back {
		t.Fatalf("hidden actors should be skipped")
	}
}

func TestStageRemove(t *testing.T) {
	cache := newCache()
	s := NewStage(cache, nil, nil)
	a, err := s.Add(prefabs.ActorSpec{Name: "a", Skeleton: "hero"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.Find("a") != a || s.Find("b") != nil {
		t.Fatalf("find failed")
	}
	if !s.Remove(a) || s.Remove(a) {
		t.Fatalf("Remove should succeed once")
	}
	if len(s.Root.Children()) != 0 || cache.Len() != 0 {
		t.Fatalf("removed actor still held: %d children, %d definitions", len(s.Root.Children()), cache.Len())
	}
}

func TestStageReloadSkeleton(t *testing.T) {
	cache := newCache()
	s := NewStage(cache, nil, nil)
	if _, err := s.Add(prefabs.ActorSpec{Name: "below", Skeleton: "hero"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	old, err := s.Add(prefabs.ActorSpec{Name: "a", Skeleton: "hero", Look: "red", Animation: "walk", Loop: true})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	oldData := old.Puppet.Data

	n, err := s.Reload(prefabs.Change{Path: "hero.skel.yaml", Kind: prefabs.ChangeSkeleton})
	if err != nil || n != 2 {
		t.Fatalf("reload = %d, %v; want 2 actors", n, err)
	}
	next := s.Find("a")
	if next == old || old.Puppet.State != nil {
		t.Fatalf("old actor should be replaced and destroyed")
	}
	if next.Puppet.Data == oldData || cache.Refs(next.Puppet.Data) != 2 || cache.Refs(oldData) != 0 {
		t.Fatalf("reload should share one fresh definition")
	}
	if next.Puppet.Look() != "red" || next.Puppet.Current() != "walk" {
		t.Fatalf("spec not reapplied")
	}
	if children := s.Root.Children(); len(children) != 2 || children[1] != next.Puppet {
		t.Fatalf("reloaded actor should keep its draw position")
	}

	if n, err := s.Reload(prefabs.Change{Path: "other.skel.yaml", Kind: prefabs.ChangeSkeleton}); n != 0 || err != nil {
		t.Fatalf("unrelated file reloaded %d actors, %v", n, err)
	}
}

func TestStageReloadScript(t *testing.T) {
	src := []byte(`
on_start := func(engine, state) { engine.play("walk", true) }
on_event := func(engine, state, event) {}
`)
	broken := false
	scripts := func(name string) ([]byte, error) {
		if broken {
			return nil, errors.New("unreadable")
		}
		return src, nil
	}
	s := NewStage(newCache(), nil, scripts)
	a, err := s.Add(prefabs.ActorSpec{Name: "a", Skeleton: "hero", Script: "walker.tengo"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add(prefabs.ActorSpec{Name: "plain", Skeleton: "hero"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	n, err := s.Reload(prefabs.Change{Path: "/game/prefabs/scripts/walker.tengo", Kind: prefabs.ChangeScript})
	if err != nil || n != 1 {
		t.Fatalf("reload = %d, %v; want 1", n, err)
	}
	if s.Find("a") == a || s.Find("a").Puppet.Current() != "walk" {
		t.Fatalf("scripted actor not rebuilt")
	}

	broken = true
	kept := s.Find("a")
	n, err = s.Reload(prefabs.Change{Path: "prefabs/scripts/walker.tengo", Kind: prefabs.ChangeScript})
	if err == nil || n != 0 {
		t.Fatalf("expected a failed reload, got %d, %v", n, err)
	}
	if s.Find("a") != kept || kept.Puppet.State == nil {
		t.Fatalf("failed reload should keep the running actor")
	}
}

func TestStageReloadAssets(t *testing.T) {
	cache := newCache()
	assets := &fakeAssets{}
	s := NewStage(cache, assets, nil)
	old, err := s.Add(prefabs.ActorSpec{Name: "a", Skeleton: "hero"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	n, err := s.Reload(prefabs.Change{Path: "/game/assets/hero.png", Kind: prefabs.ChangeTexture})
	if err != nil || n != 1 {
		t.Fatalf("texture reload = %d, %v", n, err)
	}
	if s.Find("a") == old || cache.Refs(old.Puppet.Data) != 0 {
		t.Fatalf("texture change should rebuild with a fresh definition")
	}

	n, err = s.Reload(prefabs.Change{Path: "/game/assets/footstep.wav", Kind: prefabs.ChangeSound})
	if err != nil || n != 0 {
		t.Fatalf("sound reload = %d, %v", n, err)
	}
	if len(assets.invalidated) != 2 || assets.invalidated[0] != "hero.png" || assets.invalidated[1] != "footstep.wav" {
		t.Fatalf("invalidated %v", assets.invalidated)
	}
}

func TestLoadStage(t *testing.T) {
	spec, err := prefabs.LoadStageSpec("stage.yaml")
	if err != nil {
		t.Fatalf("load stage spec: %v", err)
	}
	cache := newCache()
	s, err := LoadStage(cache, &fakeAssets{}, prefabs.LoadScript, spec)
	if err != nil {
		t.Fatalf("load stage: %v", err)
	}
	actors := s.Actors()
	if len(actors) != 2 || actors[0].Name != "hero-left" || actors[1].Name != "hero-right" {
		t.Fatalf("unexpected actors %v", actors)
	}
	if s.Root.ScaleX != 2 {
		t.Fatalf("zoom not applied")
	}
	right := actors[1].Puppet
	if right.Look() != "blue" || !right.Fliped() || right.Speed() != 0.75 || right.Opacity != 0.8 {
		t.Fatalf("overrides not applied")
	}

	n, err := s.Reload(prefabs.Change{Path: "prefabs/hero.yaml", Kind: prefabs.ChangeSpec})
	if err != nil || n != 2 {
		t.Fatalf("prefab reload = %d, %v", n, err)
	}
	if s.Actors()[1].Puppet.Look() != "blue" {
		t.Fatalf("overrides lost on reload")
	}

	s.Destroy()
	if cache.Len() != 0 || len(s.Actors()) != 0 {
		t.Fatalf("destroy should release everything")
	}
}
