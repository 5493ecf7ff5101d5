package animation

import (
	"math"

	"github.com/milk9111/skeletal/skeleton"
)

// TrackEntry is one queued or playing animation on a track. The animation is
// borrowed from the skeleton definition.
type TrackEntry struct {
	Animation  *skeleton.Animation
	TrackIndex int
	Loop       bool
	Listener   Listener

	// Next is queued to start after this entry; MixingFrom is the entry this
	// one is cross-fading out of.
	Next       *TrackEntry
	MixingFrom *TrackEntry
	MixingTo   *TrackEntry

	Delay          float64
	TrackTime      float64
	TrackLast      float64
	TrackEnd       float64
	AnimationStart float64
	AnimationEnd   float64
	AnimationLast  float64
	TimeScale      float64
	Alpha          float64
	MixTime        float64
	MixDuration    float64
	MixBlend       skeleton.MixBlend

	nextTrackLast     float64
	nextAnimationLast float64
	interruptAlpha    float64
	totalAlpha        float64
}

// AnimationTime returns the animation-local time for the current track time.
func (e *TrackEntry) AnimationTime() float64 {
	if e.Loop {
		d := e.AnimationEnd - e.AnimationStart
		if d == 0 {
			return e.AnimationStart
		}
		return math.Mod(e.TrackTime, d) + e.AnimationStart
	}
	return math.Min(e.TrackTime+e.AnimationStart, e.AnimationEnd)
}

// IsComplete reports whether at least one full pass has been played.
func (e *TrackEntry) IsComplete() bool {
	return e.TrackTime >= e.AnimationEnd-e.AnimationStart
}

// Name returns the animation's name, or "" for a nil entry.
func (e *TrackEntry) Name() string {
	if e == nil || e.Animation == nil {
		return ""
	}
	return e.Animation.Name
}

// IsEmpty reports whether the entry plays the empty animation used for
// mixing to or from the setup pose.
func (e *TrackEntry) IsEmpty() bool {
	return e != nil && e.Animation == emptyAnimation
}
