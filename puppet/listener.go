package puppet

import (
	"github.com/milk9111/skeletal/animation"
	"github.com/milk9111/skeletal/skeleton"
)

// listener turns track notifications into puppet events. owner is a back
// reference only; Destroy clears it before the state is torn down.
type listener struct {
	owner *Puppet
}

func (l *listener) OnTrackEvent(_ *animation.State, typ animation.EventType, entry *animation.TrackEntry, ev *skeleton.Event) {
	p := l.owner
	if p == nil {
		return
	}
	name := entry.Name()

	switch typ {
	case animation.EventEnd:
		// A newer Play may already own the name.
		if p.current == name {
			p.current = ""
		}
	case animation.EventEvent:
		if ev == nil {
			return
		}
		p.events.emit(Event{Name: ev.Name(), Animation: name, Puppet: p, Data: ev})
	case animation.EventComplete:
		p.events.emit(Event{Name: AnimationEnd, Animation: name, Puppet: p})
		p.lastCompleted = name
	case animation.EventInterrupt:
		p.lastCompleted = ""
	case animation.EventStart, animation.EventDispose:
	}
}

func (l *listener) detach() {
	l.owner = nil
}
