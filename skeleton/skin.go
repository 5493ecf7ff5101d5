package skeleton

// SkinEntry is one attachment keyed by slot index and name.
type SkinEntry struct {
	SlotIndex  int
	Name       string
	Attachment Attachment
}

type skinKey struct {
	slot int
	name string
}

// Skin maps (slot, name) to attachments. Entries keep insertion order so
// per-slot lookups are deterministic.
type Skin struct {
	Name  string
	Bones []*BoneData

	entries []SkinEntry
	index   map[skinKey]int
}

func NewSkin(name string) *Skin {
	return &Skin{Name: name, index: make(map[skinKey]int)}
}

// SetAttachment adds or replaces the attachment for (slotIndex, name).
func (s *Skin) SetAttachment(slotIndex int, name string, a Attachment) {
	if s == nil || a == nil {
		return
	}
	if s.index == nil {
		s.index = make(map[skinKey]int)
	}
	key := skinKey{slot: slotIndex, name: name}
	if i, ok := s.index[key]; ok {
		s.entries[i].Attachment = a
		return
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, SkinEntry{SlotIndex: slotIndex, Name: name, Attachment: a})
}

// Attachment returns the attachment for (slotIndex, name) or nil.
func (s *Skin) Attachment(slotIndex int, name string) Attachment {
	if s == nil {
		return nil
	}
	i, ok := s.index[skinKey{slot: slotIndex, name: name}]
	if !ok {
		return nil
	}
	return s.entries[i].Attachment
}

// AttachmentsForSlot returns the slot's entries in insertion order.
func (s *Skin) AttachmentsForSlot(slotIndex int) []SkinEntry {
	if s == nil {
		return nil
	}
	var out []SkinEntry
	for _, e := range s.entries {
		if e.SlotIndex == slotIndex {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns every entry in insertion order.
func (s *Skin) Entries() []SkinEntry {
	if s == nil {
		return nil
	}
	return append([]SkinEntry(nil), s.entries...)
}

// AddSkin merges other into s. Bones are unioned and attachments from other
// replace those already present under the same key.
func (s *Skin) AddSkin(other *Skin) {
	if s == nil || other == nil {
		return
	}
	for _, b := range other.Bones {
		if !s.HasBone(b) {
			s.Bones = append(s.Bones, b)
		}
	}
	for _, e := range other.entries {
		s.SetAttachment(e.SlotIndex, e.Name, e.Attachment)
	}
}

func (s *Skin) HasBone(b *BoneData) bool {
	if s == nil {
		return false
	}
	for _, sb := range s.Bones {
		if sb == b {
			return true
		}
	}
	return false
}
