package skeleton

import (
	"github.com/milk9111/skeletal/common"
)

// MixBlend controls how a timeline combines with the current pose.
type MixBlend int

const (
	// MixSetup blends from the setup pose, ignoring the current pose.
	MixSetup MixBlend = iota
	// MixFirst blends from the current pose; before the first key it blends
	// back toward the setup pose.
	MixFirst
	// MixReplace blends from the current pose; before the first key it does
	// nothing.
	MixReplace
	// MixAdd adds the timeline's value to the current pose.
	MixAdd
)

// MixDirection tells timelines whether their entry is mixing in or out.
type MixDirection int

const (
	MixIn MixDirection = iota
	MixOut
)

// Event is one firing of a keyframe event.
type Event struct {
	Data   *EventData
	Time   float64
	Int    int
	Float  float64
	String string
	Volume float64
}

// Name returns the event's definition name.
func (e *Event) Name() string {
	if e == nil || e.Data == nil {
		return ""
	}
	return e.Data.Name
}

// Timeline animates one property of a skeleton over time.
type Timeline interface {
	// PropertyID identifies the animated property; two timelines with the
	// same ID write the same value.
	PropertyID() int
	Apply(s *Skeleton, lastTime, time float64, events *[]*Event, alpha float64, blend MixBlend, dir MixDirection)
}

// Animation is a named set of timelines.
type Animation struct {
	Name      string
	Duration  float64
	Timelines []Timeline

	ids map[int]struct{}
}

func NewAnimation(name string, timelines []Timeline, duration float64) *Animation {
	a := &Animation{Name: name, Duration: duration, Timelines: timelines, ids: make(map[int]struct{}, len(timelines))}
	for _, tl := range timelines {
		a.ids[tl.PropertyID()] = struct{}{}
	}
	return a
}

func (a *Animation) HasTimeline(id int) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[id]
	return ok
}

// Apply poses the skeleton at time. lastTime is the previous time applied and
// bounds which events fire; pass -1 to fire events at time 0.
func (a *Animation) Apply(s *Skeleton, lastTime, time float64, loop bool, events *[]*Event, alpha float64, blend MixBlend, dir MixDirection) {
	if a == nil || s == nil {
		return
	}
	if loop && a.Duration != 0 {
		time = common.Mod(time, a.Duration)
		if lastTime > 0 {
			lastTime = common.Mod(lastTime, a.Duration)
		}
	}
	for _, tl := range a.Timelines {
		tl.Apply(s, lastTime, time, events, alpha, blend, dir)
	}
}
