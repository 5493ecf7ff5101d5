package skeleton

import "github.com/milk9111/skeletal/common"

// Slot is the per-instance state of a SlotData.
type Slot struct {
	Data  *SlotData
	Bone  *Bone
	Color common.Color

	attachment Attachment
}

func (s *Slot) Attachment() Attachment {
	if s == nil {
		return nil
	}
	return s.attachment
}

func (s *Slot) SetAttachment(a Attachment) {
	if s == nil {
		return
	}
	s.attachment = a
}

// SetToSetupPose restores the color and the default attachment, resolved
// through the skeleton's current skin first.
func (s *Slot) SetToSetupPose() {
	s.Color = s.Data.Color
	if s.Data.AttachmentName == "" {
		s.attachment = nil
		return
	}
	s.attachment = s.Bone.Skeleton.Attachment(s.Data.Index, s.Data.AttachmentName)
}
