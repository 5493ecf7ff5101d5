package skeleton

import (
	"github.com/milk9111/skeletal/common"
)

// Skeleton is the mutable instance of a Data. Its bone and slot slices are
// sized once from the definition and never resized.
type Skeleton struct {
	Data      *Data
	Bones     []*Bone
	Slots     []*Slot
	DrawOrder []*Slot
	Skin      *Skin
	Color     common.Color
	X, Y      float64
	ScaleX    float64
	ScaleY    float64
}

// New builds an instance in the setup pose with no skin.
func New(data *Data) *Skeleton {
	s := &Skeleton{Data: data, Color: common.White, ScaleX: 1, ScaleY: 1}

	s.Bones = make([]*Bone, len(data.Bones))
	for i, bd := range data.Bones {
		var parent *Bone
		if bd.Parent != nil {
			parent = s.Bones[bd.Parent.Index]
		}
		b := newBone(bd, s, parent)
		if parent != nil {
			parent.Children = append(parent.Children, b)
		}
		s.Bones[i] = b
	}

	s.Slots = make([]*Slot, len(data.Slots))
	s.DrawOrder = make([]*Slot, len(data.Slots))
	for i, sd := range data.Slots {
		slot := &Slot{Data: sd, Bone: s.Bones[sd.Bone.Index]}
		s.Slots[i] = slot
		s.DrawOrder[i] = slot
	}

	s.updateCache()
	s.SetSlotsToSetupPose()
	return s
}

// updateCache recomputes which bones are active for the current skin.
func (s *Skeleton) updateCache() {
	for _, b := range s.Bones {
		active := !b.Data.SkinRequired || (s.Skin != nil && s.Skin.HasBone(b.Data))
		if b.Parent != nil && !b.Parent.active {
			active = false
		}
		b.active = active
	}
}

// UpdateWorldTransform recomputes every active bone's world transform.
func (s *Skeleton) UpdateWorldTransform() {
	for _, b := range s.Bones {
		if b.active {
			b.UpdateWorldTransform()
		}
	}
}

func (s *Skeleton) SetToSetupPose() {
	s.SetBonesToSetupPose()
	s.SetSlotsToSetupPose()
}

func (s *Skeleton) SetBonesToSetupPose() {
	for _, b := range s.Bones {
		b.SetToSetupPose()
	}
}

// SetSlotsToSetupPose restores draw order, slot colors and default
// attachments.
func (s *Skeleton) SetSlotsToSetupPose() {
	copy(s.DrawOrder, s.Slots)
	for _, slot := range s.Slots {
		slot.SetToSetupPose()
	}
}

// SetSkin switches skins. A nil skin leaves only the default skin. Slot
// attachments are not touched; callers reset slots when they need to.
func (s *Skeleton) SetSkin(skin *Skin) {
	s.Skin = skin
	s.updateCache()
}

// SetSkinByName applies a skin from the definition and reports whether it
// was found.
func (s *Skeleton) SetSkinByName(name string) bool {
	skin := s.Data.FindSkin(name)
	if skin == nil {
		return false
	}
	s.SetSkin(skin)
	return true
}

// Attachment looks the name up in the current skin, then the default skin.
func (s *Skeleton) Attachment(slotIndex int, name string) Attachment {
	if s.Skin != nil {
		if a := s.Skin.Attachment(slotIndex, name); a != nil {
			return a
		}
	}
	if s.Data.DefaultSkin != nil {
		return s.Data.DefaultSkin.Attachment(slotIndex, name)
	}
	return nil
}

// SetAttachment assigns a named attachment to a slot. An empty name clears
// it. It reports false when the slot or attachment is unknown.
func (s *Skeleton) SetAttachment(slotName, attachmentName string) bool {
	idx := s.FindSlotIndex(slotName)
	if idx < 0 {
		return false
	}
	if attachmentName == "" {
		s.Slots[idx].SetAttachment(nil)
		return true
	}
	a := s.Attachment(idx, attachmentName)
	if a == nil {
		return false
	}
	s.Slots[idx].SetAttachment(a)
	return true
}

func (s *Skeleton) FindBone(name string) *Bone {
	for _, b := range s.Bones {
		if b.Data.Name == name {
			return b
		}
	}
	return nil
}

func (s *Skeleton) FindSlot(name string) *Slot {
	for _, slot := range s.Slots {
		if slot.Data.Name == name {
			return slot
		}
	}
	return nil
}

// FindSlotIndex returns the slot's index or -1.
func (s *Skeleton) FindSlotIndex(name string) int {
	return s.Data.FindSlotIndex(name)
}

// RootBone returns the first bone, or nil for an empty definition.
func (s *Skeleton) RootBone() *Bone {
	if len(s.Bones) == 0 {
		return nil
	}
	return s.Bones[0]
}
