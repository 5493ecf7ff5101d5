package skeleton

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/milk9111/skeletal/common"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownBone   = errors.New("skeleton: unknown bone")
	ErrUnknownSlot   = errors.New("skeleton: unknown slot")
	ErrUnknownEvent  = errors.New("skeleton: unknown event")
	ErrUnknownRegion = errors.New("skeleton: region not found in atlas")
)

// Spec is the YAML form of a skeleton definition.
type Spec struct {
	Name       string          `yaml:"name"`
	Bones      []BoneSpec      `yaml:"bones"`
	Slots      []SlotSpec      `yaml:"slots"`
	Skins      []SkinSpec      `yaml:"skins"`
	Events     []EventSpec     `yaml:"events"`
	Animations []AnimationSpec `yaml:"animations"`
}

type BoneSpec struct {
	Name         string   `yaml:"name"`
	Parent       string   `yaml:"parent"`
	Length       float64  `yaml:"length"`
	X            float64  `yaml:"x"`
	Y            float64  `yaml:"y"`
	Rotation     float64  `yaml:"rotation"`
	ScaleX       *float64 `yaml:"scale_x"`
	ScaleY       *float64 `yaml:"scale_y"`
	ShearX       float64  `yaml:"shear_x"`
	ShearY       float64  `yaml:"shear_y"`
	SkinRequired bool     `yaml:"skin_required"`
}

type SlotSpec struct {
	Name       string `yaml:"name"`
	Bone       string `yaml:"bone"`
	Color      string `yaml:"color"`
	Attachment string `yaml:"attachment"`
	Blend      string `yaml:"blend"`
}

type SkinSpec struct {
	Name        string           `yaml:"name"`
	Bones       []string         `yaml:"bones"`
	Attachments []AttachmentSpec `yaml:"attachments"`
}

// AttachmentSpec describes one skin entry. Type is one of region (default),
// mesh, boundingbox, point, clipping or path.
type AttachmentSpec struct {
	Slot      string    `yaml:"slot"`
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"`
	Path      string    `yaml:"path"`
	X         float64   `yaml:"x"`
	Y         float64   `yaml:"y"`
	Rotation  float64   `yaml:"rotation"`
	ScaleX    *float64  `yaml:"scale_x"`
	ScaleY    *float64  `yaml:"scale_y"`
	Width     float64   `yaml:"width"`
	Height    float64   `yaml:"height"`
	Color     string    `yaml:"color"`
	Vertices  []float64 `yaml:"vertices"`
	UVs       []float32 `yaml:"uvs"`
	Triangles []uint16  `yaml:"triangles"`
	Hull      int       `yaml:"hull"`
}

type EventSpec struct {
	Name   string   `yaml:"name"`
	Int    int      `yaml:"int"`
	Float  float64  `yaml:"float"`
	String string   `yaml:"string"`
	Audio  string   `yaml:"audio"`
	Volume *float64 `yaml:"volume"`
}

type AnimationSpec struct {
	Name      string             `yaml:"name"`
	Bones     []BoneTimelineSpec `yaml:"bones"`
	Slots     []SlotTimelineSpec `yaml:"slots"`
	DrawOrder []DrawOrderKeySpec `yaml:"draw_order"`
	Events    []EventKeySpec     `yaml:"events"`
}

type BoneTimelineSpec struct {
	Bone      string    `yaml:"bone"`
	Rotate    []KeySpec `yaml:"rotate"`
	Translate []KeySpec `yaml:"translate"`
	Scale     []KeySpec `yaml:"scale"`
	Shear     []KeySpec `yaml:"shear"`
}

// KeySpec is a value keyframe. Angle is used by rotate keys; X and Y by the
// others. Scale keys default X and Y to 1.
type KeySpec struct {
	Time  float64   `yaml:"time"`
	Angle float64   `yaml:"angle"`
	X     *float64  `yaml:"x"`
	Y     *float64  `yaml:"y"`
	Curve CurveSpec `yaml:"curve"`
}

type SlotTimelineSpec struct {
	Slot       string              `yaml:"slot"`
	Attachment []AttachmentKeySpec `yaml:"attachment"`
	Color      []ColorKeySpec      `yaml:"color"`
}

type AttachmentKeySpec struct {
	Time float64 `yaml:"time"`
	Name string  `yaml:"name"`
}

type ColorKeySpec struct {
	Time  float64   `yaml:"time"`
	Color string    `yaml:"color"`
	Curve CurveSpec `yaml:"curve"`
}

type DrawOrderKeySpec struct {
	Time    float64      `yaml:"time"`
	Offsets []OffsetSpec `yaml:"offsets"`
}

type OffsetSpec struct {
	Slot   string `yaml:"slot"`
	Offset int    `yaml:"offset"`
}

type EventKeySpec struct {
	Time   float64  `yaml:"time"`
	Name   string   `yaml:"name"`
	Int    *int     `yaml:"int"`
	Float  *float64 `yaml:"float"`
	String *string  `yaml:"string"`
	Volume *float64 `yaml:"volume"`
}

// CurveSpec accepts "linear", "stepped" or a [cx1, cy1, cx2, cy2] list.
type CurveSpec struct {
	Curve
}

func (c *CurveSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		switch strings.ToLower(value.Value) {
		case "", "linear":
			c.Kind = CurveLinear
		case "stepped":
			c.Kind = CurveStepped
		default:
			return fmt.Errorf("unknown curve %q", value.Value)
		}
		return nil
	case yaml.SequenceNode:
		var pts []float64
		if err := value.Decode(&pts); err != nil {
			return err
		}
		if len(pts) != 4 {
			return fmt.Errorf("bezier curve needs 4 values, got %d", len(pts))
		}
		c.Kind = CurveBezier
		c.CX1, c.CY1, c.CX2, c.CY2 = pts[0], pts[1], pts[2], pts[3]
		return nil
	default:
		return fmt.Errorf("curve: unexpected yaml node kind %d", value.Kind)
	}
}

// ParseSpec decodes a YAML skeleton definition.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("skeleton: unmarshal: %w", err)
	}
	return &spec, nil
}

// Build resolves names and produces an immutable Data. atlas may be nil, in
// which case textured attachments stay unbound.
func (spec *Spec) Build(atlas *Atlas) (*Data, error) {
	d := &Data{Name: spec.Name, Atlas: atlas}

	for i, bs := range spec.Bones {
		bd := &BoneData{
			Index:        i,
			Name:         bs.Name,
			Length:       bs.Length,
			X:            bs.X,
			Y:            bs.Y,
			Rotation:     bs.Rotation,
			ScaleX:       orOne(bs.ScaleX),
			ScaleY:       orOne(bs.ScaleY),
			ShearX:       bs.ShearX,
			ShearY:       bs.ShearY,
			SkinRequired: bs.SkinRequired,
		}
		if bs.Parent != "" {
			// Parents must be declared first.
			bd.Parent = d.FindBone(bs.Parent)
			if bd.Parent == nil {
				return nil, fmt.Errorf("bone %s parent %s: %w", bs.Name, bs.Parent, ErrUnknownBone)
			}
		}
		d.Bones = append(d.Bones, bd)
	}

	for i, ss := range spec.Slots {
		bone := d.FindBone(ss.Bone)
		if bone == nil {
			return nil, fmt.Errorf("slot %s bone %s: %w", ss.Name, ss.Bone, ErrUnknownBone)
		}
		color, err := common.ParseHexColor(ss.Color)
		if err != nil {
			return nil, fmt.Errorf("skeleton: slot %s: %w", ss.Name, err)
		}
		blend, err := ParseBlendMode(ss.Blend)
		if err != nil {
			return nil, fmt.Errorf("skeleton: slot %s: %w", ss.Name, err)
		}
		d.Slots = append(d.Slots, &SlotData{
			Index:          i,
			Name:           ss.Name,
			Bone:           bone,
			Color:          color,
			AttachmentName: ss.Attachment,
			Blend:          blend,
		})
	}

	for _, sk := range spec.Skins {
		skin, err := buildSkin(d, sk, atlas)
		if err != nil {
			return nil, err
		}
		d.Skins = append(d.Skins, skin)
		if skin.Name == "default" {
			d.DefaultSkin = skin
		}
	}

	for _, es := range spec.Events {
		ed := &EventData{Name: es.Name, Int: es.Int, Float: es.Float, String: es.String, AudioPath: es.Audio, Volume: 1}
		if es.Volume != nil {
			ed.Volume = *es.Volume
		}
		d.Events = append(d.Events, ed)
	}

	for _, as := range spec.Animations {
		anim, err := buildAnimation(d, as)
		if err != nil {
			return nil, err
		}
		d.Animations = append(d.Animations, anim)
	}
	return d, nil
}

func buildSkin(d *Data, sk SkinSpec, atlas *Atlas) (*Skin, error) {
	skin := NewSkin(sk.Name)
	for _, name := range sk.Bones {
		b := d.FindBone(name)
		if b == nil {
			return nil, fmt.Errorf("skin %s bone %s: %w", sk.Name, name, ErrUnknownBone)
		}
		skin.Bones = append(skin.Bones, b)
	}
	for _, as := range sk.Attachments {
		slot := d.FindSlot(as.Slot)
		if slot == nil {
			return nil, fmt.Errorf("skin %s slot %s: %w", sk.Name, as.Slot, ErrUnknownSlot)
		}
		a, err := buildAttachment(as, atlas)
		if err != nil {
			return nil, fmt.Errorf("skeleton: skin %s attachment %s: %w", sk.Name, as.Name, err)
		}
		skin.SetAttachment(slot.Index, as.Name, a)
	}
	return skin, nil
}

func buildAttachment(as AttachmentSpec, atlas *Atlas) (Attachment, error) {
	color, err := common.ParseHexColor(as.Color)
	if err != nil {
		return nil, err
	}
	path := as.Path
	if path == "" {
		path = as.Name
	}

	switch strings.ToLower(as.Type) {
	case "", "region":
		a := NewRegionAttachment(as.Name)
		a.Path = path
		a.X, a.Y = as.X, as.Y
		a.Rotation = as.Rotation
		a.ScaleX, a.ScaleY = orOne(as.ScaleX), orOne(as.ScaleY)
		a.Width, a.Height = as.Width, as.Height
		a.Color = color
		region, err := findRegion(atlas, path)
		if err != nil {
			return nil, err
		}
		a.SetRegion(region)
		a.UpdateOffsets()
		return a, nil
	case "mesh":
		if len(as.Vertices)%2 != 0 || len(as.UVs) != len(as.Vertices) {
			return nil, fmt.Errorf("mesh needs matching x,y vertices and uvs")
		}
		if len(as.Triangles)%3 != 0 {
			return nil, fmt.Errorf("mesh triangles must be a multiple of 3, got %d", len(as.Triangles))
		}
		for _, idx := range as.Triangles {
			if int(idx) >= len(as.Vertices)/2 {
				return nil, fmt.Errorf("mesh triangle index %d out of range", idx)
			}
		}
		a := NewMeshAttachment(as.Name)
		a.Path = path
		a.Vertices = as.Vertices
		a.RegionUVs = as.UVs
		a.Triangles = as.Triangles
		a.HullLength = as.Hull * 2
		a.Color = color
		region, err := findRegion(atlas, path)
		if err != nil {
			return nil, err
		}
		a.SetRegion(region)
		return a, nil
	case "boundingbox":
		if len(as.Vertices) < 6 || len(as.Vertices)%2 != 0 {
			return nil, fmt.Errorf("bounding box needs at least 3 x,y vertices")
		}
		a := NewBoundingBoxAttachment(as.Name)
		a.Vertices = as.Vertices
		a.Color = color
		return a, nil
	case "point":
		a := NewPointAttachment(as.Name)
		a.X, a.Y = as.X, as.Y
		a.Rotation = as.Rotation
		return a, nil
	case "clipping", "path":
		return NewOtherAttachment(as.Name, strings.ToLower(as.Type)), nil
	default:
		return nil, fmt.Errorf("unknown attachment type %q", as.Type)
	}
}

func findRegion(atlas *Atlas, path string) (*AtlasRegion, error) {
	if atlas == nil {
		return nil, nil
	}
	r := atlas.FindRegion(path)
	if r == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownRegion)
	}
	return r, nil
}

func buildAnimation(d *Data, as AnimationSpec) (*Animation, error) {
	var timelines []Timeline
	duration := 0.0
	track := func(t float64) {
		if t > duration {
			duration = t
		}
	}

	for _, bt := range as.Bones {
		bone := d.FindBone(bt.Bone)
		if bone == nil {
			return nil, fmt.Errorf("animation %s bone %s: %w", as.Name, bt.Bone, ErrUnknownBone)
		}
		if len(bt.Rotate) > 0 {
			keys := valueKeys(bt.Rotate, 0, true)
			track(keys[len(keys)-1].Time)
			timelines = append(timelines, &RotateTimeline{BoneIndex: bone.Index, Keys: keys})
		}
		if len(bt.Translate) > 0 {
			keys := valueKeys(bt.Translate, 0, false)
			track(keys[len(keys)-1].Time)
			timelines = append(timelines, &TranslateTimeline{BoneIndex: bone.Index, Keys: keys})
		}
		if len(bt.Scale) > 0 {
			keys := valueKeys(bt.Scale, 1, false)
			track(keys[len(keys)-1].Time)
			timelines = append(timelines, &ScaleTimeline{BoneIndex: bone.Index, Keys: keys})
		}
		if len(bt.Shear) > 0 {
			keys := valueKeys(bt.Shear, 0, false)
			track(keys[len(keys)-1].Time)
			timelines = append(timelines, &ShearTimeline{BoneIndex: bone.Index, Keys: keys})
		}
	}

	for _, st := range as.Slots {
		slot := d.FindSlot(st.Slot)
		if slot == nil {
			return nil, fmt.Errorf("animation %s slot %s: %w", as.Name, st.Slot, ErrUnknownSlot)
		}
		if len(st.Attachment) > 0 {
			keys := make([]AttachmentKey, len(st.Attachment))
			for i, k := range st.Attachment {
				keys[i] = AttachmentKey{Time: k.Time, Name: k.Name}
			}
			sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
			track(keys[len(keys)-1].Time)
			timelines = append(timelines, &AttachmentTimeline{SlotIndex: slot.Index, Keys: keys})
		}
		if len(st.Color) > 0 {
			keys := make([]ColorKey, len(st.Color))
			for i, k := range st.Color {
				c, err := common.ParseHexColor(k.Color)
				if err != nil {
					return nil, fmt.Errorf("skeleton: animation %s slot %s: %w", as.Name, st.Slot, err)
				}
				keys[i] = ColorKey{Time: k.Time, Color: c, Curve: k.Curve.Curve}
			}
			sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
			track(keys[len(keys)-1].Time)
			timelines = append(timelines, &ColorTimeline{SlotIndex: slot.Index, Keys: keys})
		}
	}

	if len(as.DrawOrder) > 0 {
		keys := make([]DrawOrderKey, len(as.DrawOrder))
		for i, k := range as.DrawOrder {
			order, err := drawOrderFromOffsets(d, k.Offsets)
			if err != nil {
				return nil, fmt.Errorf("animation %s draw order: %w", as.Name, err)
			}
			keys[i] = DrawOrderKey{Time: k.Time, Order: order}
		}
		sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
		track(keys[len(keys)-1].Time)
		timelines = append(timelines, &DrawOrderTimeline{Keys: keys})
	}

	if len(as.Events) > 0 {
		events := make([]*Event, len(as.Events))
		for i, k := range as.Events {
			ed := d.FindEvent(k.Name)
			if ed == nil {
				return nil, fmt.Errorf("animation %s event %s: %w", as.Name, k.Name, ErrUnknownEvent)
			}
			e := &Event{Data: ed, Time: k.Time, Int: ed.Int, Float: ed.Float, String: ed.String, Volume: ed.Volume}
			if k.Int != nil {
				e.Int = *k.Int
			}
			if k.Float != nil {
				e.Float = *k.Float
			}
			if k.String != nil {
				e.String = *k.String
			}
			if k.Volume != nil {
				e.Volume = *k.Volume
			}
			events[i] = e
		}
		sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })
		track(events[len(events)-1].Time)
		timelines = append(timelines, &EventTimeline{Events: events})
	}

	return NewAnimation(as.Name, timelines, duration), nil
}

func valueKeys(specs []KeySpec, def float64, angle bool) []ValueKey {
	keys := make([]ValueKey, len(specs))
	for i, k := range specs {
		vk := ValueKey{Time: k.Time, Curve: k.Curve.Curve}
		if angle {
			vk.X = k.Angle
		} else {
			vk.X, vk.Y = orDefault(k.X, def), orDefault(k.Y, def)
		}
		keys[i] = vk
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
	return keys
}

// drawOrderFromOffsets expands per-slot offsets into a full draw order. Slots
// without an offset keep their relative order in the remaining positions.
func drawOrderFromOffsets(d *Data, offsets []OffsetSpec) ([]int, error) {
	if len(offsets) == 0 {
		return nil, nil
	}
	type move struct{ slot, offset int }
	moves := make([]move, 0, len(offsets))
	for _, o := range offsets {
		idx := d.FindSlotIndex(o.Slot)
		if idx < 0 {
			return nil, fmt.Errorf("slot %s: %w", o.Slot, ErrUnknownSlot)
		}
		moves = append(moves, move{slot: idx, offset: o.Offset})
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].slot < moves[j].slot })

	n := len(d.Slots)
	order := make([]int, n)
	for i := range order {
		order[i] = -1
	}
	unchanged := make([]int, 0, n)
	original := 0
	for _, m := range moves {
		if m.slot < original {
			return nil, fmt.Errorf("slot %s listed twice", d.Slots[m.slot].Name)
		}
		for original != m.slot {
			unchanged = append(unchanged, original)
			original++
		}
		target := original + m.offset
		if target < 0 || target >= n || order[target] != -1 {
			return nil, fmt.Errorf("slot %s offset %d out of range", d.Slots[m.slot].Name, m.offset)
		}
		order[target] = original
		original++
	}
	for original < n {
		unchanged = append(unchanged, original)
		original++
	}
	u := len(unchanged)
	for i := n - 1; i >= 0; i-- {
		if order[i] == -1 {
			u--
			order[i] = unchanged[u]
		}
	}
	return order, nil
}

func orOne(v *float64) float64 {
	return orDefault(v, 1)
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
