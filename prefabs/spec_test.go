package prefabs

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadActorSpec(t *testing.T) {
	spec, err := LoadActorSpec("prefabs/hero.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Name != "hero" || spec.Ref() != "hero" || spec.Look != "red" {
		t.Fatalf("unexpected spec %+v", spec)
	}
	if !spec.Loop || spec.Animation != "idle" || spec.Recovery != 0.1 {
		t.Fatalf("playback fields not decoded: %+v", spec)
	}
	if spec.HitTest == nil || !*spec.HitTest {
		t.Fatalf("hit_test should be set")
	}
	if sx, sy := spec.Transform.Scale(); sx != 1 || sy != 1 {
		t.Fatalf("unset scale should default to 1, got %v,%v", sx, sy)
	}
	if _, err := LoadScript(spec.Script); err != nil {
		t.Fatalf("script %s: %v", spec.Script, err)
	}
}

func TestActorSpecRef(t *testing.T) {
	spec := ActorSpec{Skeleton: "hero.skel.yaml", Atlas: "shared.atlas.yaml"}
	if got := spec.Ref(); got != "hero.skel.yaml|shared.atlas.yaml" {
		t.Fatalf("Ref() = %q", got)
	}
}

func TestActorSpecValidate(t *testing.T) {
	if err := (ActorSpec{Name: "ghost"}).Validate(); !errors.Is(err, ErrNoSkeleton) {
		t.Fatalf("expected ErrNoSkeleton, got %v", err)
	}
	neg := -1.0
	if err := (ActorSpec{Skeleton: "hero", Speed: &neg}).Validate(); err == nil {
		t.Fatalf("expected an error for a negative speed")
	}
}

func TestYAMLColor(t *testing.T) {
	var out struct {
		Color YAMLColor `yaml:"color"`
	}
	if err := yaml.Unmarshal([]byte(`color: "#ff000080"`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Color.R != 1 || out.Color.G != 0 || out.Color.A < 0.5 || out.Color.A > 0.51 {
		t.Fatalf("unexpected color %+v", out.Color)
	}
	if err := yaml.Unmarshal([]byte("color: [1, 2]"), &out); err == nil {
		t.Fatalf("expected an error for a non-scalar color")
	}

	b, err := yaml.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back struct {
		Color YAMLColor `yaml:"color"`
	}
	if err := yaml.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	if back.Color.ToABGR() != out.Color.ToABGR() {
		t.Fatalf("color changed through yaml: %s", b)
	}
}

func TestStageResolve(t *testing.T) {
	stage, err := LoadStageSpec("stage.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stage.Zoom != 2 || stage.Background == nil || len(stage.Actors) != 2 {
		t.Fatalf("unexpected stage %+v", stage)
	}

	left, err := stage.Actors[0].Resolve()
	if err != nil {
		t.Fatalf("resolve left: %v", err)
	}
	if left.Name != "hero-left" || left.Transform.X != -80 || left.Look != "red" || left.Script != "hero.tengo" {
		t.Fatalf("left not merged: %+v", left)
	}

	right, err := stage.Actors[1].Resolve()
	if err != nil {
		t.Fatalf("resolve right: %v", err)
	}
	if right.Look != "blue" || !right.Fliped || right.Speed == nil || *right.Speed != 0.75 {
		t.Fatalf("right not merged: %+v", right)
	}
	if right.Transform.X != 80 || right.Transform.OpacityOrOne() != 0.8 || !right.Loop {
		t.Fatalf("right transform not merged: %+v", right.Transform)
	}
}

func TestStageResolveErrors(t *testing.T) {
	if _, err := (StageActorSpec{Prefab: "missing.yaml"}).Resolve(); err == nil {
		t.Fatalf("expected an error for a missing prefab")
	}
	bad := StageActorSpec{Prefab: "hero.yaml", Overrides: map[string]any{"skeleton": ""}}
	if _, err := bad.Resolve(); !errors.Is(err, ErrNoSkeleton) {
		t.Fatalf("expected ErrNoSkeleton, got %v", err)
	}
}

func TestPaths(t *testing.T) {
	cases := []struct {
		in     string
		prefab string
		script string
	}{
		{"hero.yaml", "hero.yaml", "scripts/hero.yaml"},
		{"prefabs/hero.yaml", "hero.yaml", "scripts/hero.yaml"},
		{"/src/game/prefabs/scripts/hero.tengo", "scripts/hero.tengo", "scripts/hero.tengo"},
		{"hero.tengo", "hero.tengo", "scripts/hero.tengo"},
	}
	for _, c := range cases {
		if got := cleanPrefabPath(c.in); got != c.prefab {
			t.Fatalf("cleanPrefabPath(%q) = %q, want %q", c.in, got, c.prefab)
		}
		if got := cleanScriptPath(c.in); got != c.script {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", c.in, got, c.script)
		}
	}
	if !SameFile("/src/game/prefabs/scripts/hero.tengo", ScriptPath("hero.tengo")) {
		t.Fatalf("script paths should match")
	}
	if SameFile("", "") {
		t.Fatalf("empty paths never match")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]ChangeKind{
		"prefabs/hero.yaml":          ChangeSpec,
		"prefabs/scripts/hero.tengo": ChangeScript,
		"assets/hero.skel.yaml":      ChangeSkeleton,
		"assets/HERO.atlas.yaml":     ChangeAtlas,
		"assets/hero.png":            ChangeTexture,
		"assets/footstep.wav":        ChangeSound,
		"assets/notes.txt":           ChangeUnknown,
	}
	for path, want := range cases {
		if got := Classify(path); got != want {
			t.Fatalf("Classify(%q) = %v, want %v", path, got, want)
		}
	}
}
