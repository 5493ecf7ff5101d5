package skeleton_test

import (
	"errors"
	"testing"

	"github.com/milk9111/skeletal/internal/fixture"
	"github.com/milk9111/skeletal/skeleton"
)

func TestBuildFixture(t *testing.T) {
	data := fixture.Data(t)

	if data.DefaultSkin == nil || data.DefaultSkin.Name != "default" {
		t.Fatalf("expected the default skin to be bound")
	}
	if got := data.FindSlot("arm").Blend; got != skeleton.BlendAdditive {
		t.Fatalf("arm blend %v, want additive", got)
	}
	if c := data.FindSlot("arm").Color; c.R != 1 || c.G != 0 || c.A < 0.5 || c.A > 0.51 {
		t.Fatalf("arm color %+v", c)
	}

	durations := map[string]float64{"idle": 2, "walk": 0.5, "wave": 1, "shoot": 0.4, "swap": 0.2}
	for name, want := range durations {
		a := data.FindAnimation(name)
		if a == nil {
			t.Fatalf("animation %s missing", name)
		}
		if a.Duration != want {
			t.Fatalf("%s duration %v, want %v", name, a.Duration, want)
		}
	}
	if data.FindAnimation("missing") != nil || data.FindSkin("missing") != nil || data.FindEvent("missing") != nil {
		t.Fatalf("missing lookups should return nil")
	}
	if ev := data.FindEvent("footstep"); ev.AudioPath != "footstep.wav" || ev.Volume != 0.5 {
		t.Fatalf("footstep audio %q volume %v", ev.AudioPath, ev.Volume)
	}
	if ev := data.FindEvent("fire"); ev.AudioPath != "" || ev.Volume != 1 {
		t.Fatalf("fire should be silent at full volume, got %q %v", ev.AudioPath, ev.Volume)
	}

	region := data.DefaultSkin.Attachment(data.FindSlotIndex("body"), "body").(*skeleton.RegionAttachment)
	if region.Region == nil || region.Region.Page.Name != "hero" {
		t.Fatalf("body region not bound to the atlas page")
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "parent_declared_later",
			yaml:    "bones:\n  - {name: child, parent: root}\n  - {name: root}\n",
			wantErr: skeleton.ErrUnknownBone,
		},
		{
			name:    "slot_bone_missing",
			yaml:    "bones:\n  - {name: root}\nslots:\n  - {name: s, bone: nope}\n",
			wantErr: skeleton.ErrUnknownBone,
		},
		{
			name:    "skin_slot_missing",
			yaml:    "bones:\n  - {name: root}\nskins:\n  - name: default\n    attachments:\n      - {slot: nope, name: a}\n",
			wantErr: skeleton.ErrUnknownSlot,
		},
		{
			name:    "event_missing",
			yaml:    "bones:\n  - {name: root}\nanimations:\n  - name: a\n    events:\n      - {time: 0, name: nope}\n",
			wantErr: skeleton.ErrUnknownEvent,
		},
		{
			name:    "region_missing",
			yaml:    "bones:\n  - {name: root}\nslots:\n  - {name: s, bone: root}\nskins:\n  - name: default\n    attachments:\n      - {slot: s, name: nothing, width: 1, height: 1}\n",
			wantErr: skeleton.ErrUnknownRegion,
		},
		{
			name: "bad_blend",
			yaml: "bones:\n  - {name: root}\nslots:\n  - {name: s, bone: root, blend: overlay}\n",
		},
		{
			name: "bad_curve",
			yaml: "bones:\n  - {name: root}\nanimations:\n  - name: a\n    bones:\n      - bone: root\n        rotate:\n          - {time: 0, angle: 0, curve: wobble}\n",
		},
		{
			name: "short_bounding_box",
			yaml: "bones:\n  - {name: root}\nslots:\n  - {name: s, bone: root}\nskins:\n  - name: default\n    attachments:\n      - {slot: s, name: bb, type: boundingbox, vertices: [0, 0, 1, 1]}\n",
		},
		{
			name: "mesh_partial_triangle",
			yaml: "bones:\n  - {name: root}\nslots:\n  - {name: s, bone: root}\nskins:\n  - name: default\n    attachments:\n      - {slot: s, name: arm, type: mesh, vertices: [0, 0, 1, 0, 1, 1], uvs: [0, 0, 1, 0, 1, 1], triangles: [0, 1, 2, 2]}\n",
		},
		{
			name: "draw_order_slot_twice",
			yaml: "bones:\n  - {name: root}\nslots:\n  - {name: s, bone: root}\nanimations:\n  - name: a\n    draw_order:\n      - time: 0\n        offsets:\n          - {slot: s, offset: 0}\n          - {slot: s, offset: 0}\n",
		},
	}

	atlas, err := skeleton.ParseAtlas([]byte(fixture.Atlas), "", nil)
	if err != nil {
		t.Fatalf("parse atlas: %v", err)
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := skeleton.ParseSpec([]byte(c.yaml))
			if err == nil {
				_, err = spec.Build(atlas)
			}
			if err == nil {
				t.Fatalf("expected an error")
			}
			if c.wantErr != nil && !errors.Is(err, c.wantErr) {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
		})
	}
}

func TestBuildWithoutAtlas(t *testing.T) {
	spec, err := skeleton.ParseSpec([]byte(fixture.Skeleton))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := spec.Build(nil)
	if err != nil {
		t.Fatalf("build without atlas: %v", err)
	}
	region := data.DefaultSkin.Attachment(data.FindSlotIndex("body"), "body").(*skeleton.RegionAttachment)
	if region.Region != nil {
		t.Fatalf("region should stay unbound without an atlas")
	}
	if uvs := region.UVs(); uvs[4] != 1 || uvs[5] != 0 {
		t.Fatalf("unbound region should use the full texture, got %v", uvs)
	}
}

func TestParseAtlasNeedsPageSize(t *testing.T) {
	_, err := skeleton.ParseAtlas([]byte("pages:\n  - {name: p, file: p.png}\n"), "", nil)
	if err == nil {
		t.Fatalf("expected an error for a page with no size and no texture")
	}
}
