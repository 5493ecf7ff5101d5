// Package fixture holds a small skeleton definition shared by tests.
package fixture

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/milk9111/skeletal/skeleton"
)

// Atlas is a single untextured page with one region per image.
const Atlas = `
pages:
  - name: hero
    file: hero.png
    width: 128
    height: 64
    regions:
      - {name: body, x: 0, y: 0, width: 32, height: 64}
      - {name: body-red, x: 32, y: 0, width: 32, height: 64}
      - {name: arm, x: 64, y: 0, width: 16, height: 8}
      - {name: hat, x: 80, y: 0, width: 16, height: 16}
`

// Skeleton has a root, a body with an arm, and a skin-required hat bone.
// The default skin carries the body, the arm, a bounding box and a point.
const Skeleton = `
name: hero
bones:
  - {name: root}
  - {name: body, parent: root, y: 10, length: 20}
  - {name: arm, parent: body, x: 5, y: 15, rotation: 90}
  - {name: hat, parent: body, y: 40, skin_required: true}
slots:
  - {name: body, bone: body, attachment: body}
  - {name: arm, bone: arm, attachment: arm, blend: additive, color: ff000080}
  - {name: hat, bone: hat, attachment: hat}
  - {name: hitbox, bone: root, attachment: hitbox}
  - {name: muzzle, bone: arm}
skins:
  - name: default
    attachments:
      - {slot: body, name: body, width: 20, height: 40}
      - {slot: arm, name: arm, x: 4, width: 10, height: 4}
      - {slot: hitbox, name: hitbox, type: boundingbox, vertices: [-10, 0, 10, 0, 10, 50, -10, 50]}
      - {slot: muzzle, name: muzzle, type: point, x: 10, y: 0, rotation: 45}
      - {slot: muzzle, name: flash, type: point, x: 12, y: 1}
  - name: red
    bones: [hat]
    attachments:
      - {slot: hat, name: hat, width: 8, height: 8}
      - {slot: body, name: body, path: body-red, width: 22, height: 40}
  - name: blue
    attachments:
      - {slot: body, name: body, width: 24, height: 40}
      - slot: arm
        name: arm
        type: mesh
        vertices: [0, -2, 10, -2, 10, 2, 0, 2]
        uvs: [0, 1, 1, 1, 1, 0, 0, 0]
        triangles: [0, 1, 2, 2, 3, 0]
        hull: 4
events:
  - {name: footstep, int: 1, audio: footstep.wav, volume: 0.5}
  - {name: fire, string: bang}
animations:
  - name: idle
    bones:
      - bone: body
        rotate:
          - {time: 0, angle: 0}
          - {time: 1, angle: 10}
          - {time: 2, angle: 0}
  - name: walk
    bones:
      - bone: body
        translate:
          - {time: 0, x: 0, y: 0}
          - {time: 0.5, x: 10, y: 0}
    events:
      - {time: 0.25, name: footstep}
  - name: wave
    bones:
      - bone: arm
        rotate:
          - {time: 0, angle: 0}
          - {time: 1, angle: 90}
    slots:
      - slot: arm
        color:
          - {time: 0, color: ffffffff}
          - {time: 1, color: 00ff00ff}
  - name: shoot
    bones:
      - bone: arm
        rotate:
          - {time: 0, angle: 0, curve: stepped}
          - {time: 0.4, angle: -30}
    slots:
      - slot: arm
        attachment:
          - {time: 0.2, name: ""}
    events:
      - {time: 0.1, name: fire, string: pew}
  - name: swap
    bones:
      - bone: root
        scale:
          - {time: 0}
          - {time: 0.2, x: 2, y: 2}
    draw_order:
      - time: 0
        offsets:
          - {slot: body, offset: 1}
`

// Data builds the fixture definition bound to the untextured atlas.
func Data(tb testing.TB) *skeleton.Data {
	tb.Helper()
	atlas, err := skeleton.ParseAtlas([]byte(Atlas), "", nil)
	if err != nil {
		tb.Fatalf("parse atlas: %v", err)
	}
	spec, err := skeleton.ParseSpec([]byte(Skeleton))
	if err != nil {
		tb.Fatalf("parse skeleton: %v", err)
	}
	data, err := spec.Build(atlas)
	if err != nil {
		tb.Fatalf("build skeleton: %v", err)
	}
	return data
}

// Loader serves the fixture files under the names hero.skel.yaml and
// hero.atlas.yaml.
func Loader() skeleton.Loader {
	return skeleton.LoaderFunc(func(p string) ([]byte, error) {
		switch p {
		case "hero" + skeleton.SkeletonExt:
			return []byte(Skeleton), nil
		case "hero" + skeleton.AtlasExt:
			return []byte(Atlas), nil
		}
		return nil, fmt.Errorf("fixture: %s: %w", p, fs.ErrNotExist)
	})
}
