package skeleton

import (
	"math"
	"sort"

	"github.com/milk9111/skeletal/common"
)

type timelineType int

const (
	timelineRotate timelineType = iota
	timelineTranslate
	timelineScale
	timelineShear
	timelineColor
	timelineAttachment
	timelineDrawOrder
	timelineEvent
)

func propertyID(t timelineType, index int) int {
	return int(t)<<24 | index
}

// keyIndex returns the index of the last key whose time is <= t, or -1.
func keyIndex(n int, timeAt func(int) float64, t float64) int {
	return sort.Search(n, func(i int) bool { return timeAt(i) > t }) - 1
}

// ValueKey is a keyframe for rotate (X holds the angle), translate, scale and
// shear timelines.
type ValueKey struct {
	Time  float64
	X, Y  float64
	Curve Curve
}

// sampleValue interpolates keys at t. t must be at or after the first key.
func sampleValue(keys []ValueKey, t float64, angle bool) (float64, float64) {
	i := keyIndex(len(keys), func(i int) float64 { return keys[i].Time }, t)
	if i >= len(keys)-1 {
		k := keys[len(keys)-1]
		return k.X, k.Y
	}
	k0, k1 := keys[i], keys[i+1]
	span := k1.Time - k0.Time
	p := 0.0
	if span > 0 {
		p = k0.Curve.Percent((t - k0.Time) / span)
	}
	if angle {
		return k0.X + common.WrapDegrees(k1.X-k0.X)*p, 0
	}
	return common.Lerp(k0.X, k1.X, p), common.Lerp(k0.Y, k1.Y, p)
}

// RotateTimeline animates a bone's rotation as an offset from setup, in
// degrees.
type RotateTimeline struct {
	BoneIndex int
	Keys      []ValueKey
}

func (t *RotateTimeline) PropertyID() int { return propertyID(timelineRotate, t.BoneIndex) }

func (t *RotateTimeline) Apply(s *Skeleton, _, time float64, _ *[]*Event, alpha float64, blend MixBlend, _ MixDirection) {
	bone := s.Bones[t.BoneIndex]
	if !bone.active || len(t.Keys) == 0 {
		return
	}
	setup := bone.Data.Rotation
	if time < t.Keys[0].Time {
		switch blend {
		case MixSetup:
			bone.Rotation = setup
		case MixFirst:
			bone.Rotation += common.WrapDegrees(setup-bone.Rotation) * alpha
		}
		return
	}

	r, _ := sampleValue(t.Keys, time, true)
	switch blend {
	case MixSetup:
		bone.Rotation = setup + common.WrapDegrees(r)*alpha
	case MixFirst, MixReplace:
		bone.Rotation += common.WrapDegrees(setup+r-bone.Rotation) * alpha
	case MixAdd:
		bone.Rotation += r * alpha
	}
}

// TranslateTimeline animates a bone's position as an offset from setup.
type TranslateTimeline struct {
	BoneIndex int
	Keys      []ValueKey
}

func (t *TranslateTimeline) PropertyID() int { return propertyID(timelineTranslate, t.BoneIndex) }

func (t *TranslateTimeline) Apply(s *Skeleton, _, time float64, _ *[]*Event, alpha float64, blend MixBlend, _ MixDirection) {
	bone := s.Bones[t.BoneIndex]
	if !bone.active || len(t.Keys) == 0 {
		return
	}
	applyOffset(&bone.X, &bone.Y, bone.Data.X, bone.Data.Y, t.Keys, time, alpha, blend)
}

// ShearTimeline animates a bone's shear as an offset from setup, in degrees.
type ShearTimeline struct {
	BoneIndex int
	Keys      []ValueKey
}

func (t *ShearTimeline) PropertyID() int { return propertyID(timelineShear, t.BoneIndex) }

func (t *ShearTimeline) Apply(s *Skeleton, _, time float64, _ *[]*Event, alpha float64, blend MixBlend, _ MixDirection) {
	bone := s.Bones[t.BoneIndex]
	if !bone.active || len(t.Keys) == 0 {
		return
	}
	applyOffset(&bone.ShearX, &bone.ShearY, bone.Data.ShearX, bone.Data.ShearY, t.Keys, time, alpha, blend)
}

func applyOffset(x, y *float64, setupX, setupY float64, keys []ValueKey, time, alpha float64, blend MixBlend) {
	if time < keys[0].Time {
		switch blend {
		case MixSetup:
			*x, *y = setupX, setupY
		case MixFirst:
			*x += (setupX - *x) * alpha
			*y += (setupY - *y) * alpha
		}
		return
	}

	vx, vy := sampleValue(keys, time, false)
	switch blend {
	case MixSetup:
		*x = setupX + vx*alpha
		*y = setupY + vy*alpha
	case MixFirst, MixReplace:
		*x += (setupX + vx - *x) * alpha
		*y += (setupY + vy - *y) * alpha
	case MixAdd:
		*x += vx * alpha
		*y += vy * alpha
	}
}

// ScaleTimeline animates a bone's scale as a multiplier of the setup scale.
type ScaleTimeline struct {
	BoneIndex int
	Keys      []ValueKey
}

func (t *ScaleTimeline) PropertyID() int { return propertyID(timelineScale, t.BoneIndex) }

func (t *ScaleTimeline) Apply(s *Skeleton, _, time float64, _ *[]*Event, alpha float64, blend MixBlend, _ MixDirection) {
	bone := s.Bones[t.BoneIndex]
	if !bone.active || len(t.Keys) == 0 {
		return
	}
	setupX, setupY := bone.Data.ScaleX, bone.Data.ScaleY
	if time < t.Keys[0].Time {
		switch blend {
		case MixSetup:
			bone.ScaleX, bone.ScaleY = setupX, setupY
		case MixFirst:
			bone.ScaleX += (setupX - bone.ScaleX) * alpha
			bone.ScaleY += (setupY - bone.ScaleY) * alpha
		}
		return
	}

	mx, my := sampleValue(t.Keys, time, false)
	x, y := mx*setupX, my*setupY
	switch blend {
	case MixSetup:
		bone.ScaleX = setupX + (x-setupX)*alpha
		bone.ScaleY = setupY + (y-setupY)*alpha
	case MixFirst, MixReplace:
		bone.ScaleX += (x - bone.ScaleX) * alpha
		bone.ScaleY += (y - bone.ScaleY) * alpha
	case MixAdd:
		bone.ScaleX += (x - setupX) * alpha
		bone.ScaleY += (y - setupY) * alpha
	}
}

type ColorKey struct {
	Time  float64
	Color common.Color
	Curve Curve
}

// ColorTimeline animates a slot's tint.
type ColorTimeline struct {
	SlotIndex int
	Keys      []ColorKey
}

func (t *ColorTimeline) PropertyID() int { return propertyID(timelineColor, t.SlotIndex) }

func (t *ColorTimeline) Apply(s *Skeleton, _, time float64, _ *[]*Event, alpha float64, blend MixBlend, _ MixDirection) {
	slot := s.Slots[t.SlotIndex]
	if !slot.Bone.active || len(t.Keys) == 0 {
		return
	}
	setup := slot.Data.Color
	if time < t.Keys[0].Time {
		switch blend {
		case MixSetup:
			slot.Color = setup
		case MixFirst:
			slot.Color = slot.Color.Lerp(setup, float32(alpha))
		}
		return
	}

	i := keyIndex(len(t.Keys), func(i int) float64 { return t.Keys[i].Time }, time)
	c := t.Keys[len(t.Keys)-1].Color
	if i < len(t.Keys)-1 {
		k0, k1 := t.Keys[i], t.Keys[i+1]
		p := 0.0
		if span := k1.Time - k0.Time; span > 0 {
			p = k0.Curve.Percent((time - k0.Time) / span)
		}
		c = k0.Color.Lerp(k1.Color, float32(p))
	}

	if alpha == 1 && blend != MixAdd {
		slot.Color = c
		return
	}
	if blend == MixSetup {
		slot.Color = setup
	}
	slot.Color = slot.Color.Lerp(c, float32(alpha))
}

type AttachmentKey struct {
	Time float64
	// Name of the attachment; empty clears the slot.
	Name string
}

// AttachmentTimeline swaps a slot's attachment. Keys are stepped.
type AttachmentTimeline struct {
	SlotIndex int
	Keys      []AttachmentKey
}

func (t *AttachmentTimeline) PropertyID() int { return propertyID(timelineAttachment, t.SlotIndex) }

func (t *AttachmentTimeline) Apply(s *Skeleton, _, time float64, _ *[]*Event, _ float64, blend MixBlend, dir MixDirection) {
	slot := s.Slots[t.SlotIndex]
	if !slot.Bone.active || len(t.Keys) == 0 {
		return
	}
	if dir == MixOut && blend == MixSetup {
		t.setAttachment(s, slot, slot.Data.AttachmentName)
		return
	}
	if time < t.Keys[0].Time {
		if blend == MixSetup || blend == MixFirst {
			t.setAttachment(s, slot, slot.Data.AttachmentName)
		}
		return
	}
	i := keyIndex(len(t.Keys), func(i int) float64 { return t.Keys[i].Time }, time)
	t.setAttachment(s, slot, t.Keys[i].Name)
}

func (t *AttachmentTimeline) setAttachment(s *Skeleton, slot *Slot, name string) {
	if name == "" {
		slot.SetAttachment(nil)
		return
	}
	slot.SetAttachment(s.Attachment(t.SlotIndex, name))
}

type DrawOrderKey struct {
	Time float64
	// Order lists slot indices back to front; nil restores setup order.
	Order []int
}

// DrawOrderTimeline rearranges the skeleton's draw order. Keys are stepped.
type DrawOrderTimeline struct {
	Keys []DrawOrderKey
}

func (t *DrawOrderTimeline) PropertyID() int { return propertyID(timelineDrawOrder, 0) }

func (t *DrawOrderTimeline) Apply(s *Skeleton, _, time float64, _ *[]*Event, _ float64, blend MixBlend, dir MixDirection) {
	if len(t.Keys) == 0 {
		return
	}
	if dir == MixOut && blend == MixSetup {
		copy(s.DrawOrder, s.Slots)
		return
	}
	if time < t.Keys[0].Time {
		if blend == MixSetup || blend == MixFirst {
			copy(s.DrawOrder, s.Slots)
		}
		return
	}
	i := keyIndex(len(t.Keys), func(i int) float64 { return t.Keys[i].Time }, time)
	order := t.Keys[i].Order
	if order == nil {
		copy(s.DrawOrder, s.Slots)
		return
	}
	for j, slotIndex := range order {
		s.DrawOrder[j] = s.Slots[slotIndex]
	}
}

// EventTimeline fires keyframe events whose time lies in (lastTime, time].
type EventTimeline struct {
	Events []*Event
}

func (t *EventTimeline) PropertyID() int { return propertyID(timelineEvent, 0) }

func (t *EventTimeline) Apply(s *Skeleton, lastTime, time float64, fired *[]*Event, alpha float64, blend MixBlend, dir MixDirection) {
	if fired == nil || len(t.Events) == 0 {
		return
	}
	n := len(t.Events)
	if lastTime > time {
		// Looped: fire the tail of the previous pass first.
		t.Apply(s, lastTime, math.MaxFloat64, fired, alpha, blend, dir)
		lastTime = -1
	} else if lastTime >= t.Events[n-1].Time {
		return
	}
	if time < t.Events[0].Time {
		return
	}

	i := 0
	if lastTime >= t.Events[0].Time {
		i = keyIndex(n, func(i int) float64 { return t.Events[i].Time }, lastTime) + 1
	}
	for ; i < n && time >= t.Events[i].Time; i++ {
		*fired = append(*fired, t.Events[i])
	}
}
