package script

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/milk9111/skeletal/internal/fixture"
	"github.com/milk9111/skeletal/puppet"
	"github.com/milk9111/skeletal/skeleton"
)

const shooter = `
events := ["fire", "footstep"]

on_start := func(engine, state) {
	state.ends = 0
	state.fired = ""
	engine.play("shoot", false)
}

on_event := func(engine, state, event) {
	if event.name == "AnimationEnd" {
		state.ends += 1
		state.last = event.animation
		if event.animation == "shoot" {
			engine.play("walk", false)
		}
	} else if event.name == "fire" {
		state.fired = event["string"]
		p := engine.key_point("muzzle")
		state.muzzle_x = p[0]
		state.hit = engine.contains_point(0, 0)
	}
}
`

func newPuppet(t *testing.T) *puppet.Puppet {
	t.Helper()
	p, err := puppet.New(skeleton.NewCache(fixture.Loader(), nil), "hero")
	if err != nil {
		t.Fatalf("new puppet: %v", err)
	}
	return p
}

func TestBehaviorDrivesPuppet(t *testing.T) {
	p := newPuppet(t)
	b, err := Load("shooter", []byte(shooter), p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := b.Events(), []string{"AnimationEnd", "fire", "footstep"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if p.Current() != "shoot" {
		t.Fatalf("on_start should play shoot, current %q", p.Current())
	}

	p.Advance(0.15)
	p.Advance(0.3)

	state := b.State()
	if state["fired"] != "pew" {
		t.Fatalf("fired = %v", state["fired"])
	}
	if x, ok := state["muzzle_x"].(float64); !ok || math.Abs(x-5) > 1e-9 {
		t.Fatalf("muzzle_x = %v", state["muzzle_x"])
	}
	if state["hit"] != "body" {
		t.Fatalf("hit = %v", state["hit"])
	}
	if state["ends"] != 1 || state["last"] != "shoot" {
		t.Fatalf("ends = %v, last = %v", state["ends"], state["last"])
	}
	if p.Current() != "walk" {
		t.Fatalf("AnimationEnd handler should chain walk, current %q", p.Current())
	}
}

func TestBehaviorClose(t *testing.T) {
	p := newPuppet(t)
	b, err := Load("shooter", []byte(shooter), p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	b.Close()
	p.Advance(0.5)
	if state := b.State(); state["ends"] != 0 || state["fired"] != "" {
		t.Fatalf("closed behavior still handled events: %v", state)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"no_handler", `on_start := func(engine, state) {}`, ErrNoEventHandler},
		{"syntax", `on_event := func(engine, state, event) {`, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(c.name, []byte(c.src), newPuppet(t))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if c.wantErr != nil && !errors.Is(err, c.wantErr) {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
		})
	}

	if _, err := Load("nil", []byte(shooter), nil); err == nil {
		t.Fatalf("expected an error for a nil puppet")
	}
}

func TestStartRuntimeError(t *testing.T) {
	src := `
on_start := func(engine, state) {
	x := 0
	state.y = 1 / x
}
on_event := func(engine, state, event) {}
`
	b, err := Load("divide", []byte(src), newPuppet(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := b.Start(); err == nil {
		t.Fatalf("expected a runtime error from on_start")
	}
}

func TestStartIsOptional(t *testing.T) {
	b, err := Load("quiet", []byte(`on_event := func(engine, state, event) {}`), newPuppet(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := b.Start(); err != nil {
		t.Fatalf("start without on_start: %v", err)
	}
}
