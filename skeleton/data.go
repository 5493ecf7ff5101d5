package skeleton

import (
	"fmt"
	"strings"

	"github.com/milk9111/skeletal/common"
)

// BlendMode selects how a slot's attachment is composited.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendMultiply
	BlendScreen
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendAdditive:
		return "additive"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	default:
		return fmt.Sprintf("blend(%d)", int(m))
	}
}

// ParseBlendMode maps a definition string to a BlendMode. Empty means normal.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return BlendNormal, nil
	case "additive":
		return BlendAdditive, nil
	case "multiply":
		return BlendMultiply, nil
	case "screen":
		return BlendScreen, nil
	default:
		return BlendNormal, fmt.Errorf("unknown blend mode %q", s)
	}
}

// BoneData is the setup pose of one bone.
type BoneData struct {
	Index        int
	Name         string
	Parent       *BoneData
	Length       float64
	X, Y         float64
	Rotation     float64
	ScaleX       float64
	ScaleY       float64
	ShearX       float64
	ShearY       float64
	SkinRequired bool
}

// SlotData is the setup state of one slot.
type SlotData struct {
	Index          int
	Name           string
	Bone           *BoneData
	Color          common.Color
	AttachmentName string
	Blend          BlendMode
}

// EventData holds the default values of a keyframe event. AudioPath names
// a sound to play when the event fires; it is empty for silent events.
type EventData struct {
	Name      string
	Int       int
	Float     float64
	String    string
	AudioPath string
	Volume    float64
}

// Data is the immutable definition shared by every Skeleton built from it.
// Bones are ordered so that a parent always precedes its children.
type Data struct {
	Name        string
	Bones       []*BoneData
	Slots       []*SlotData
	Skins       []*Skin
	DefaultSkin *Skin
	Events      []*EventData
	Animations  []*Animation
	Atlas       *Atlas
}

func (d *Data) FindBone(name string) *BoneData {
	if d == nil {
		return nil
	}
	for _, b := range d.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (d *Data) FindSlot(name string) *SlotData {
	if d == nil {
		return nil
	}
	for _, s := range d.Slots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// FindSlotIndex returns the slot's index or -1.
func (d *Data) FindSlotIndex(name string) int {
	if s := d.FindSlot(name); s != nil {
		return s.Index
	}
	return -1
}

func (d *Data) FindSkin(name string) *Skin {
	if d == nil {
		return nil
	}
	for _, s := range d.Skins {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (d *Data) FindEvent(name string) *EventData {
	if d == nil {
		return nil
	}
	for _, e := range d.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (d *Data) FindAnimation(name string) *Animation {
	if d == nil {
		return nil
	}
	for _, a := range d.Animations {
		if a.Name == name {
			return a
		}
	}
	return nil
}
