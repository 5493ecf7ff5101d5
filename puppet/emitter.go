package puppet

import "github.com/milk9111/skeletal/skeleton"

// AnimationEnd is emitted each time an animation pass completes.
const AnimationEnd = "AnimationEnd"

// Event is what a puppet emits. Data is set for keyframe events only.
type Event struct {
	Name      string
	Animation string
	Puppet    *Puppet
	Data      *skeleton.Event
}

// Handler receives emitted events.
type Handler func(Event)

type handlerEntry struct {
	id uint64
	fn Handler
}

// Subscription cancels a handler registered with On.
type Subscription struct {
	e    *emitter
	name string
	id   uint64
}

// Cancel removes the handler. It is safe to call more than once and from
// inside the handler itself.
func (s Subscription) Cancel() {
	if s.e == nil {
		return
	}
	s.e.off(s.name, s.id)
}

type emitter struct {
	next     uint64
	handlers map[string][]handlerEntry
}

func (e *emitter) on(name string, fn Handler) Subscription {
	if fn == nil {
		return Subscription{}
	}
	if e.handlers == nil {
		e.handlers = make(map[string][]handlerEntry)
	}
	e.next++
	e.handlers[name] = append(e.handlers[name], handlerEntry{id: e.next, fn: fn})
	return Subscription{e: e, name: name, id: e.next}
}

func (e *emitter) off(name string, id uint64) {
	list := e.handlers[name]
	for i, h := range list {
		if h.id != id {
			continue
		}
		out := make([]handlerEntry, 0, len(list)-1)
		out = append(out, list[:i]...)
		out = append(out, list[i+1:]...)
		if len(out) == 0 {
			delete(e.handlers, name)
		} else {
			e.handlers[name] = out
		}
		return
	}
}

// emit calls the handlers registered when emit starts. off never mutates a
// handler slice in place, so handlers may subscribe or cancel while running.
func (e *emitter) emit(ev Event) {
	for _, h := range e.handlers[ev.Name] {
		h.fn(ev)
	}
}

func (e *emitter) clear() {
	e.handlers = nil
}
