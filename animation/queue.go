package animation

import "github.com/milk9111/skeletal/skeleton"

// EventType is a track entry lifecycle notification.
type EventType int

const (
	// EventStart fires when an entry becomes current.
	EventStart EventType = iota
	// EventInterrupt fires when another entry replaces a current one.
	EventInterrupt
	// EventEnd fires when an entry is no longer applied.
	EventEnd
	// EventDispose fires when an entry will never be used again.
	EventDispose
	// EventComplete fires each time a pass of the animation finishes.
	EventComplete
	// EventEvent fires for a keyframe event.
	EventEvent
)

func (t EventType) String() string {
	switch t {
	case EventStart:
		return "start"
	case EventInterrupt:
		return "interrupt"
	case EventEnd:
		return "end"
	case EventDispose:
		return "dispose"
	case EventComplete:
		return "complete"
	case EventEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Listener receives track entry notifications. event is only set for
// EventEvent.
type Listener interface {
	OnTrackEvent(state *State, typ EventType, entry *TrackEntry, event *skeleton.Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(state *State, typ EventType, entry *TrackEntry, event *skeleton.Event)

func (f ListenerFunc) OnTrackEvent(state *State, typ EventType, entry *TrackEntry, event *skeleton.Event) {
	f(state, typ, entry, event)
}

type queuedEvent struct {
	typ   EventType
	entry *TrackEntry
	event *skeleton.Event
}

// eventQueue defers notifications until the state is consistent. Listeners
// may change the state while the queue drains; anything they enqueue is
// delivered in the same drain.
type eventQueue struct {
	state    *State
	items    []queuedEvent
	draining bool
}

func (q *eventQueue) push(typ EventType, entry *TrackEntry, event *skeleton.Event) {
	q.items = append(q.items, queuedEvent{typ: typ, entry: entry, event: event})
}

func (q *eventQueue) start(e *TrackEntry) {
	q.push(EventStart, e, nil)
}

func (q *eventQueue) interrupt(e *TrackEntry) {
	q.push(EventInterrupt, e, nil)
}

func (q *eventQueue) end(e *TrackEntry) {
	q.push(EventEnd, e, nil)
}

func (q *eventQueue) dispose(e *TrackEntry) {
	q.push(EventDispose, e, nil)
}

func (q *eventQueue) complete(e *TrackEntry) {
	q.push(EventComplete, e, nil)
}

func (q *eventQueue) event(e *TrackEntry, ev *skeleton.Event) {
	q.push(EventEvent, e, ev)
}

func (q *eventQueue) drain() {
	if q.draining {
		return
	}
	q.draining = true
	for i := 0; i < len(q.items); i++ {
		it := q.items[i]
		switch it.typ {
		case EventEnd:
			q.notify(it.typ, it.entry, nil)
			// An ended entry is also disposed.
			q.notify(EventDispose, it.entry, nil)
			it.entry.Listener = nil
		case EventDispose:
			q.notify(it.typ, it.entry, nil)
			it.entry.Listener = nil
		default:
			q.notify(it.typ, it.entry, it.event)
		}
	}
	q.items = q.items[:0]
	q.draining = false
}

func (q *eventQueue) notify(typ EventType, entry *TrackEntry, ev *skeleton.Event) {
	if entry.Listener != nil {
		entry.Listener.OnTrackEvent(q.state, typ, entry, ev)
	}
	for _, l := range q.state.listeners {
		l.OnTrackEvent(q.state, typ, entry, ev)
	}
}
