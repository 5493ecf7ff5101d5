package animation

import (
	"math"

	"github.com/milk9111/skeletal/skeleton"
)

// emptyAnimation has no timelines; mixing to it fades the previous entry
// out to the setup pose.
var emptyAnimation = skeleton.NewAnimation("<empty>", nil, 0)

// State advances and applies animation tracks to a skeleton. It is not safe
// for concurrent use.
type State struct {
	Data      *StateData
	TimeScale float64

	tracks    []*TrackEntry
	events    []*skeleton.Event
	queue     eventQueue
	listeners []Listener
	seen      map[int]struct{}
}

func NewState(data *StateData) *State {
	s := &State{Data: data, TimeScale: 1, seen: make(map[int]struct{})}
	s.queue.state = s
	return s
}

// AddListener registers a listener for every entry on every track.
func (s *State) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Current returns the entry playing on a track, or nil.
func (s *State) Current(track int) *TrackEntry {
	if track < 0 || track >= len(s.tracks) {
		return nil
	}
	return s.tracks[track]
}

// Tracks returns the track slots; entries may be nil.
func (s *State) Tracks() []*TrackEntry {
	return s.tracks
}

// Update advances every track by delta seconds scaled by TimeScale.
func (s *State) Update(delta float64) {
	delta *= s.TimeScale
	for i, current := range s.tracks {
		if current == nil {
			continue
		}

		current.AnimationLast = current.nextAnimationLast
		current.TrackLast = current.nextTrackLast

		currentDelta := delta * current.TimeScale

		if current.Delay > 0 {
			current.Delay -= currentDelta
			if current.Delay > 0 {
				continue
			}
			currentDelta = -current.Delay
			current.Delay = 0
		}

		if next := current.Next; next != nil {
			// The next entry starts once the current one has played past its delay.
			nextTime := current.TrackLast - next.Delay
			if nextTime >= 0 {
				next.Delay = 0
				if current.TimeScale != 0 {
					next.TrackTime += (nextTime/current.TimeScale + delta) * next.TimeScale
				}
				current.TrackTime += currentDelta
				s.setCurrent(i, next, true)
				for next.MixingFrom != nil {
					next.MixTime += delta
					next = next.MixingFrom
				}
				continue
			}
		} else if current.TrackLast >= current.TrackEnd && current.MixingFrom == nil {
			s.tracks[i] = nil
			s.queue.end(current)
			s.disposeNext(current)
			continue
		}

		if current.MixingFrom != nil && s.updateMixingFrom(current, delta) {
			// Every entry it was mixing from is done.
			from := current.MixingFrom
			current.MixingFrom = nil
			if from != nil {
				from.MixingTo = nil
			}
			for from != nil {
				s.queue.end(from)
				from = from.MixingFrom
			}
		}

		current.TrackTime += currentDelta
	}
	s.queue.drain()
}

// updateMixingFrom reports whether to and everything it mixes from are done.
func (s *State) updateMixingFrom(to *TrackEntry, delta float64) bool {
	from := to.MixingFrom
	if from == nil {
		return true
	}

	finished := s.updateMixingFrom(from, delta)

	from.AnimationLast = from.nextAnimationLast
	from.TrackLast = from.nextTrackLast

	if to.MixTime > 0 && to.MixTime >= to.MixDuration {
		to.MixingFrom = from.MixingFrom
		if from.MixingFrom != nil {
			from.MixingFrom.MixingTo = to
		}
		to.interruptAlpha = from.interruptAlpha
		s.queue.end(from)
		return finished
	}

	from.TrackTime += delta * from.TimeScale
	to.MixTime += delta
	return false
}

// Apply poses the skeleton from every track and reports whether anything was
// applied. World transforms are not updated.
func (s *State) Apply(sk *skeleton.Skeleton) bool {
	if sk == nil {
		return false
	}
	clear(s.seen)

	applied := false
	for i, current := range s.tracks {
		if current == nil || current.Delay > 0 {
			continue
		}
		applied = true

		blend := current.MixBlend
		if i == 0 {
			blend = skeleton.MixFirst
		}

		mix := current.Alpha
		if current.MixingFrom != nil {
			mix *= s.applyMixingFrom(current, sk, blend)
		} else if current.TrackTime >= current.TrackEnd && current.Next == nil {
			// Last application of this entry: settle to the setup pose.
			mix = 0
		}

		animationLast, animationTime := current.AnimationLast, current.AnimationTime()
		if i == 0 && mix == 1 {
			for _, tl := range current.Animation.Timelines {
				s.seen[tl.PropertyID()] = struct{}{}
				tl.Apply(sk, animationLast, animationTime, &s.events, 1, blend, skeleton.MixIn)
			}
		} else {
			for _, tl := range current.Animation.Timelines {
				tb := blend
				if !s.markSeen(tl.PropertyID()) {
					tb = skeleton.MixSetup
				}
				tl.Apply(sk, animationLast, animationTime, &s.events, mix, tb, skeleton.MixIn)
			}
		}

		s.queueEvents(current, animationTime)
		s.events = s.events[:0]
		current.nextAnimationLast = animationTime
		current.nextTrackLast = current.TrackTime
	}

	s.queue.drain()
	return applied
}

// markSeen records a property and reports whether an older entry already
// keyed it during this Apply.
func (s *State) markSeen(id int) bool {
	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = struct{}{}
	return false
}

// applyMixingFrom applies the entries to is mixing out of, oldest first, and
// returns to's mix percentage.
func (s *State) applyMixingFrom(to *TrackEntry, sk *skeleton.Skeleton, blend skeleton.MixBlend) float64 {
	from := to.MixingFrom
	if from.MixingFrom != nil {
		s.applyMixingFrom(from, sk, blend)
	}

	var mix float64
	if to.MixDuration == 0 {
		mix = 1
		if blend == skeleton.MixFirst {
			blend = skeleton.MixSetup
		}
	} else {
		mix = math.Min(1, to.MixTime/to.MixDuration)
		if blend != skeleton.MixFirst {
			blend = from.MixBlend
		}
	}

	animationLast, animationTime := from.AnimationLast, from.AnimationTime()
	alphaHold := from.Alpha * to.interruptAlpha
	alphaMix := alphaHold * (1 - mix)

	from.totalAlpha = 0
	for _, tl := range from.Animation.Timelines {
		id := tl.PropertyID()
		subsequent := s.markSeen(id)

		tb, alpha, dir := skeleton.MixSetup, alphaMix, skeleton.MixIn
		if subsequent {
			tb = blend
		} else if to.Animation.HasTimeline(id) {
			// The next entry keys this property too; hold it so the pose
			// does not dip toward setup during the fade.
			alpha = alphaHold
		}

		switch tl.(type) {
		case *skeleton.AttachmentTimeline, *skeleton.DrawOrderTimeline:
			if subsequent {
				continue
			}
			dir = skeleton.MixOut
		case *skeleton.EventTimeline:
			continue
		}

		tl.Apply(sk, animationLast, animationTime, nil, alpha, tb, dir)
		from.totalAlpha += alpha
	}

	if to.MixDuration > 0 {
		s.queueEvents(from, animationTime)
	}
	s.events = s.events[:0]
	from.nextAnimationLast = animationTime
	from.nextTrackLast = from.TrackTime

	return mix
}

// queueEvents queues the keyframe events gathered for entry and a Complete
// when a pass finished since the last application.
func (s *State) queueEvents(entry *TrackEntry, animationTime float64) {
	start, end := entry.AnimationStart, entry.AnimationEnd
	duration := end - start
	trackLastWrapped := 0.0
	if duration != 0 {
		trackLastWrapped = math.Mod(entry.TrackLast, duration)
	}

	// Events from the previous pass come before the Complete.
	i, n := 0, len(s.events)
	for ; i < n; i++ {
		e := s.events[i]
		if e.Time < trackLastWrapped {
			break
		}
		if e.Time > end {
			continue
		}
		s.queue.event(entry, e)
	}

	var complete bool
	if entry.Loop {
		complete = duration == 0 || trackLastWrapped > math.Mod(entry.TrackTime, duration)
	} else {
		complete = animationTime >= end && entry.AnimationLast < end
	}
	if complete {
		s.queue.complete(entry)
	}

	for ; i < n; i++ {
		e := s.events[i]
		if e.Time < start {
			continue
		}
		s.queue.event(entry, e)
	}
}

// ClearTracks removes every track, firing End for each entry.
func (s *State) ClearTracks() {
	draining := s.queue.draining
	s.queue.draining = true
	for i := range s.tracks {
		s.ClearTrack(i)
	}
	s.tracks = s.tracks[:0]
	s.queue.draining = draining
	s.queue.drain()
}

// ClearTrack removes a track's entries, firing End for the current entry and
// every entry it was mixing from. The skeleton keeps its last pose.
func (s *State) ClearTrack(track int) {
	if track < 0 || track >= len(s.tracks) {
		return
	}
	current := s.tracks[track]
	if current == nil {
		return
	}

	s.queue.end(current)
	s.disposeNext(current)

	entry := current
	for {
		from := entry.MixingFrom
		if from == nil {
			break
		}
		s.queue.end(from)
		entry.MixingFrom = nil
		entry.MixingTo = nil
		entry = from
	}

	s.tracks[track] = nil
	s.queue.drain()
}

func (s *State) setCurrent(index int, current *TrackEntry, interrupt bool) {
	from := s.expandToIndex(index)
	s.tracks[index] = current

	if from != nil {
		if interrupt {
			s.queue.interrupt(from)
		}
		current.MixingFrom = from
		from.MixingTo = current
		current.MixTime = 0

		// Carry over how far an interrupted cross-fade had come.
		if from.MixingFrom != nil && from.MixDuration > 0 {
			current.interruptAlpha *= math.Min(1, from.MixTime/from.MixDuration)
		}
	}

	s.queue.start(current)
}

// SetAnimationByName is SetAnimation with a name lookup; it returns nil when
// the animation does not exist.
func (s *State) SetAnimationByName(track int, name string, loop bool) *TrackEntry {
	return s.SetAnimation(track, s.Data.Skeleton.FindAnimation(name), loop)
}

// SetAnimation makes anim current on a track, mixing from the entry it
// replaces. Queued entries are discarded.
func (s *State) SetAnimation(track int, anim *skeleton.Animation, loop bool) *TrackEntry {
	if anim == nil || track < 0 {
		return nil
	}

	interrupt := true
	current := s.expandToIndex(track)
	if current != nil {
		if current.nextTrackLast == -1 {
			// Never applied, so replace it rather than mix from it.
			s.tracks[track] = current.MixingFrom
			s.queue.interrupt(current)
			s.queue.end(current)
			s.disposeNext(current)
			current = current.MixingFrom
			interrupt = false
		} else {
			s.disposeNext(current)
		}
	}

	entry := s.trackEntry(track, anim, loop, current)
	s.setCurrent(track, entry, interrupt)
	s.queue.drain()
	return entry
}

// AddAnimationByName is AddAnimation with a name lookup.
func (s *State) AddAnimationByName(track int, name string, loop bool, delay float64) *TrackEntry {
	return s.AddAnimation(track, s.Data.Skeleton.FindAnimation(name), loop, delay)
}

// AddAnimation queues anim after the last entry on a track. A delay <= 0 is
// relative to the end of the previous entry, minus the mix duration.
func (s *State) AddAnimation(track int, anim *skeleton.Animation, loop bool, delay float64) *TrackEntry {
	if anim == nil || track < 0 {
		return nil
	}

	last := s.expandToIndex(track)
	if last != nil {
		for last.Next != nil {
			last = last.Next
		}
	}

	entry := s.trackEntry(track, anim, loop, last)

	if last == nil {
		s.setCurrent(track, entry, true)
		s.queue.drain()
	} else {
		last.Next = entry
		if delay <= 0 {
			duration := last.AnimationEnd - last.AnimationStart
			if duration != 0 {
				if last.Loop {
					delay += duration * float64(1+int(last.TrackTime/duration))
				} else {
					delay += math.Max(duration, last.TrackTime)
				}
				delay -= s.Data.Mix(last.Animation, anim)
			} else {
				delay = last.TrackTime
			}
		}
	}

	entry.Delay = delay
	return entry
}

// SetEmptyAnimation mixes the track out to the setup pose over mixDuration.
func (s *State) SetEmptyAnimation(track int, mixDuration float64) *TrackEntry {
	entry := s.SetAnimation(track, emptyAnimation, false)
	if entry == nil {
		return nil
	}
	entry.MixDuration = mixDuration
	entry.TrackEnd = mixDuration
	return entry
}

// AddEmptyAnimation queues a mix out to the setup pose.
func (s *State) AddEmptyAnimation(track int, mixDuration, delay float64) *TrackEntry {
	if delay <= 0 {
		delay -= mixDuration
	}
	entry := s.AddAnimation(track, emptyAnimation, false, delay)
	if entry == nil {
		return nil
	}
	entry.MixDuration = mixDuration
	entry.TrackEnd = mixDuration
	return entry
}

func (s *State) expandToIndex(index int) *TrackEntry {
	if index < len(s.tracks) {
		return s.tracks[index]
	}
	for len(s.tracks) <= index {
		s.tracks = append(s.tracks, nil)
	}
	return nil
}

func (s *State) trackEntry(track int, anim *skeleton.Animation, loop bool, last *TrackEntry) *TrackEntry {
	e := &TrackEntry{
		Animation:         anim,
		TrackIndex:        track,
		Loop:              loop,
		TrackLast:         -1,
		nextTrackLast:     -1,
		TrackEnd:          math.MaxFloat64,
		AnimationEnd:      anim.Duration,
		AnimationLast:     -1,
		nextAnimationLast: -1,
		TimeScale:         1,
		Alpha:             1,
		interruptAlpha:    1,
		MixBlend:          skeleton.MixReplace,
	}
	if last != nil {
		e.MixDuration = s.Data.Mix(last.Animation, anim)
	}
	return e
}

func (s *State) disposeNext(entry *TrackEntry) {
	for next := entry.Next; next != nil; next = next.Next {
		s.queue.dispose(next)
	}
	entry.Next = nil
}
